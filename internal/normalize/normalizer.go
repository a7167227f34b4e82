// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package normalize

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/multipark/parkops/internal/models"
)

// Field alias tables. For each target column the candidate source field
// names are probed in order and the first present, non-null value wins.
// The source partitions never agreed on a schema, so every spelling that has
// been observed in production exports is listed.
var (
	aliasLicensePlate = []string{"licensePlate", "license_plate", "carLicensePlate", "plate"}
	aliasFirstName    = []string{"name", "firstName", "first_name"}
	aliasLastName     = []string{"lastname", "lastName", "last_name", "surname"}
	aliasEmail        = []string{"email", "emailClient", "mail"}
	aliasPhone        = []string{"phoneNumber", "phone_number", "phone", "contact"}
	aliasPrice        = []string{"bookingPrice", "price"}
	aliasStatus       = []string{"stats", "status", "state"}
	aliasCheckIn      = []string{"checkIn", "checkin", "check_in", "checkInDate"}
	aliasCheckOut     = []string{"checkOut", "checkout", "check_out", "checkOutDate"}
	aliasParqueID     = []string{"parqueID", "parkId", "park_id"}
	aliasParkingRow   = []string{"row", "parkingRow", "alocation_row"}
	aliasParkingSpot  = []string{"spot", "parkingSpot", "alocation_spot"}
	aliasActionUser   = []string{"actionUser", "user", "condutorRecolha"}
	aliasActionDesc   = []string{"action", "actionDescription", "actionDetails"}
	aliasActionDate   = []string{"actionDate", "action_date"}
)

// statusTable maps the free-text source vocabulary onto the closed target
// enum. Lookup is case-insensitive over the trimmed input.
var statusTable = map[string]models.ReservationStatus{
	"reservado":    models.StatusReservado,
	"em recolha":   models.StatusEmRecolha,
	"recolhido":    models.StatusRecolhido,
	"em entrega":   models.StatusEmEntrega,
	"em movimento": models.StatusEmMovimento,
	"entregue":     models.StatusEntregue,
	"cancelado":    models.StatusCancelado,
}

// dateLayouts are the localized timestamp encodings seen in source
// documents: day-first dates with 24h time, with and without the comma.
var dateLayouts = []string{
	"02/01/2006, 15:04",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Normalizer converts source documents into reservation rows. The clock is
// injectable so tests get stable audit columns; NewNormalizer wires the real
// one.
type Normalizer struct {
	clock func() time.Time
}

// NewNormalizer returns a normalizer stamping audit columns with wall-clock
// time.
func NewNormalizer() *Normalizer {
	return &Normalizer{clock: time.Now}
}

// NewNormalizerWithClock returns a normalizer with a fixed clock for tests.
func NewNormalizerWithClock(clock func() time.Time) *Normalizer {
	return &Normalizer{clock: clock}
}

// Normalize maps one source document onto the target row shape. It is total:
// every field has a fallback and no input can make it fail.
func (n *Normalizer) Normalize(doc models.Document, key models.PartitionKey) models.Reservation {
	now := n.clock().UTC()
	bookingID := bookingIDFor(doc)

	row := models.Reservation{
		BookingID:          bookingID,
		CidadeCliente:      key.City,
		ParkName:           key.Brand,
		LicensePlate:       licensePlate(doc, bookingID),
		NameCliente:        probeString(doc, aliasFirstName),
		LastnameCliente:    probeString(doc, aliasLastName),
		EmailCliente:       strings.TrimSpace(probeString(doc, aliasEmail)),
		PhoneNumberCliente: strings.TrimSpace(probeString(doc, aliasPhone)),
		BookingPrice:       parsePrice(probe(doc, aliasPrice)),
		EstadoReservaAtual: mapStatus(probeString(doc, aliasStatus)),
		CheckInPrevisto:    parseTimestamp(probe(doc, aliasCheckIn)),
		CheckOutPrevisto:   parseTimestamp(probe(doc, aliasCheckOut)),
		ParqueID:           parqueID(doc, key),
		ParkingRow:         probeString(doc, aliasParkingRow),
		ParkingSpot:        probeString(doc, aliasParkingSpot),
		ActionUser:         probeString(doc, aliasActionUser),
		ActionDescription:  probeString(doc, aliasActionDesc),
		ActionDate:         parseTimestamp(probe(doc, aliasActionDate)),
		Source:             models.SourceMarker,
		SyncStatus:         models.SyncStatusSynced,
		CreatedAtDB:        now,
		UpdatedAtDB:        now,
	}
	return row
}

// bookingIDFor derives the natural key. The source document id is used
// directly; the rare export rows without an id get a deterministic
// fingerprint of their fields so the key stays stable across runs.
func bookingIDFor(doc models.Document) string {
	if id := strings.TrimSpace(doc.ID); id != "" {
		return id
	}

	names := make([]string, 0, len(doc.Fields))
	for name := range doc.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	h := fnv.New64a()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0})
		h.Write([]byte(doc.Fields[name].AsString()))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("anon-%016x", h.Sum64())
}

// licensePlate uppercases and trims the plate, synthesizing FB-<id> when the
// document has none so the not-null constraint always holds.
func licensePlate(doc models.Document, bookingID string) string {
	plate := strings.ToUpper(strings.TrimSpace(probeString(doc, aliasLicensePlate)))
	if plate == "" {
		return "FB-" + bookingID
	}
	return plate
}

// parqueID prefers an explicit park id field, falling back to the partition
// brand.
func parqueID(doc models.Document, key models.PartitionKey) string {
	if id := probeString(doc, aliasParqueID); id != "" {
		return id
	}
	return key.Brand
}

// probe returns the first present, non-null value among the candidate field
// names.
func probe(doc models.Document, candidates []string) models.Value {
	for _, name := range candidates {
		if v := doc.Field(name); !v.IsNull() {
			return v
		}
	}
	return models.NullValue()
}

func probeString(doc models.Document, candidates []string) string {
	return probe(doc, candidates).AsString()
}

// parsePrice coerces a price field to a non-negative decimal. Strings are
// stripped of everything but digits, '.' and ',', with ',' normalized to
// '.'. Unparsable and absent values yield nil, never NaN and never an error.
func parsePrice(v models.Value) *float64 {
	if num, ok := v.AsNumber(); ok {
		if num < 0 {
			return nil
		}
		return &num
	}
	if v.Kind != models.KindString {
		return nil
	}

	var b strings.Builder
	for _, r := range v.Str {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == ',':
			b.WriteRune('.')
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || price < 0 {
		return nil
	}
	return &price
}

// mapStatus resolves a free-text status against the closed enum, defaulting
// to reservado for anything unknown.
func mapStatus(raw string) models.ReservationStatus {
	if status, ok := statusTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return models.StatusReservado
}

// parseTimestamp converts the localized "DD/MM/YYYY, HH:MM" encoding to an
// absolute UTC timestamp. Already-typed timestamps pass through; anything
// malformed yields nil.
func parseTimestamp(v models.Value) *time.Time {
	if t, ok := v.AsTime(); ok {
		utc := t.UTC()
		return &utc
	}
	if v.Kind != models.KindString {
		return nil
	}

	raw := strings.TrimSpace(v.Str)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	return nil
}
