// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package normalize

import (
	"testing"
	"time"

	"github.com/multipark/parkops/internal/models"
)

var testClock = func() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func testKey() models.PartitionKey {
	return models.PartitionKey{City: "lisbon", Brand: "airpark"}
}

func docWith(id string, fields map[string]models.Value) models.Document {
	return models.Document{ID: id, Fields: fields}
}

// TestNormalizePriceRobustness covers the price coercion contract: localized
// decimals parse, garbage and absence become nil, never an error.
func TestNormalizePriceRobustness(t *testing.T) {
	tests := []struct {
		name     string
		value    models.Value
		expected *float64
	}{
		{name: "comma decimal", value: models.StringValue("45,50"), expected: f(45.50)},
		{name: "plain number", value: models.NumberValue(45.5), expected: f(45.5)},
		{name: "empty string", value: models.StringValue(""), expected: nil},
		{name: "garbage", value: models.StringValue("abc"), expected: nil},
		{name: "currency suffix", value: models.StringValue("30,00 EUR"), expected: f(30.0)},
		{name: "currency prefix", value: models.StringValue("€ 12.5"), expected: f(12.5)},
		{name: "negative number", value: models.NumberValue(-3), expected: nil},
		{name: "thousands separators do not parse", value: models.StringValue("1.234,56"), expected: nil},
		{name: "absent", value: models.NullValue(), expected: nil},
	}

	n := NewNormalizerWithClock(testClock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := n.Normalize(docWith("b-1", map[string]models.Value{"bookingPrice": tt.value}), testKey())
			if tt.expected == nil {
				if row.BookingPrice != nil {
					t.Errorf("expected nil price, got %v", *row.BookingPrice)
				}
				return
			}
			if row.BookingPrice == nil {
				t.Fatalf("expected price %v, got nil", *tt.expected)
			}
			if *row.BookingPrice != *tt.expected {
				t.Errorf("expected price %v, got %v", *tt.expected, *row.BookingPrice)
			}
		})
	}
}

// TestNormalizePriceAliasOrder checks that bookingPrice wins over price.
func TestNormalizePriceAliasOrder(t *testing.T) {
	n := NewNormalizerWithClock(testClock)
	row := n.Normalize(docWith("b-1", map[string]models.Value{
		"bookingPrice": models.StringValue("10,00"),
		"price":        models.StringValue("99,99"),
	}), testKey())

	if row.BookingPrice == nil || *row.BookingPrice != 10.0 {
		t.Errorf("expected bookingPrice alias to win with 10.00, got %v", row.BookingPrice)
	}
}

// TestNormalizeStatusClosure verifies every output status is a member of the
// closed enum and unknown inputs degrade to reservado.
func TestNormalizeStatusClosure(t *testing.T) {
	tests := []struct {
		input    string
		expected models.ReservationStatus
	}{
		{"reservado", models.StatusReservado},
		{"em recolha", models.StatusEmRecolha},
		{"Recolhido", models.StatusRecolhido},
		{"em entrega", models.StatusEmEntrega},
		{"EM MOVIMENTO", models.StatusEmMovimento},
		{"entregue", models.StatusEntregue},
		{"cancelado", models.StatusCancelado},
		{"", models.StatusReservado},
		{"no-show", models.StatusReservado},
		{"???", models.StatusReservado},
		{"  em recolha  ", models.StatusEmRecolha},
	}

	n := NewNormalizerWithClock(testClock)
	for _, tt := range tests {
		t.Run("status "+tt.input, func(t *testing.T) {
			row := n.Normalize(docWith("b-1", map[string]models.Value{"stats": models.StringValue(tt.input)}), testKey())
			if row.EstadoReservaAtual != tt.expected {
				t.Errorf("status %q: expected %s, got %s", tt.input, tt.expected, row.EstadoReservaAtual)
			}
			if !row.EstadoReservaAtual.IsValid() {
				t.Errorf("status %q escaped the closed enum: %s", tt.input, row.EstadoReservaAtual)
			}
		})
	}
}

// TestNormalizeDates covers the localized timestamp format and its failure
// modes.
func TestNormalizeDates(t *testing.T) {
	tests := []struct {
		name     string
		value    models.Value
		expected *time.Time
	}{
		{
			name:     "localized with comma",
			value:    models.StringValue("25/12/2026, 14:30"),
			expected: tp(time.Date(2026, 12, 25, 14, 30, 0, 0, time.UTC)),
		},
		{
			name:     "localized without comma",
			value:    models.StringValue("01/02/2026 08:05"),
			expected: tp(time.Date(2026, 2, 1, 8, 5, 0, 0, time.UTC)),
		},
		{
			name:     "date only",
			value:    models.StringValue("15/06/2026"),
			expected: tp(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)),
		},
		{
			name:     "native timestamp passes through",
			value:    models.TimeValue(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)),
			expected: tp(time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)),
		},
		{name: "month-first rejected when day overflows", value: models.StringValue("12/25/2026, 14:30"), expected: nil},
		{name: "garbage", value: models.StringValue("next tuesday"), expected: nil},
		{name: "empty", value: models.StringValue(""), expected: nil},
		{name: "absent", value: models.NullValue(), expected: nil},
	}

	n := NewNormalizerWithClock(testClock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := n.Normalize(docWith("b-1", map[string]models.Value{"checkIn": tt.value}), testKey())
			if tt.expected == nil {
				if row.CheckInPrevisto != nil {
					t.Errorf("expected nil check-in, got %v", row.CheckInPrevisto)
				}
				return
			}
			if row.CheckInPrevisto == nil {
				t.Fatalf("expected check-in %v, got nil", tt.expected)
			}
			if !row.CheckInPrevisto.Equal(*tt.expected) {
				t.Errorf("expected check-in %v, got %v", tt.expected, row.CheckInPrevisto)
			}
		})
	}
}

// TestNormalizeLicensePlate checks the uppercase/trim rule and the FB-<id>
// synthesis fallback.
func TestNormalizeLicensePlate(t *testing.T) {
	tests := []struct {
		name     string
		fields   map[string]models.Value
		expected string
	}{
		{
			name:     "uppercased and trimmed",
			fields:   map[string]models.Value{"licensePlate": models.StringValue("  aa-12-bb ")},
			expected: "AA-12-BB",
		},
		{
			name:     "alias fallback",
			fields:   map[string]models.Value{"license_plate": models.StringValue("cc-34-dd")},
			expected: "CC-34-DD",
		},
		{
			name:     "missing plate synthesized",
			fields:   map[string]models.Value{},
			expected: "FB-res-42",
		},
		{
			name:     "whitespace plate synthesized",
			fields:   map[string]models.Value{"licensePlate": models.StringValue("   ")},
			expected: "FB-res-42",
		},
	}

	n := NewNormalizerWithClock(testClock)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := n.Normalize(docWith("res-42", tt.fields), testKey())
			if row.LicensePlate != tt.expected {
				t.Errorf("expected plate %q, got %q", tt.expected, row.LicensePlate)
			}
		})
	}
}

// TestNormalizeKeyStability verifies booking_id is deterministic and
// non-empty for every document, including ones without a source id.
func TestNormalizeKeyStability(t *testing.T) {
	n := NewNormalizerWithClock(testClock)

	withID := docWith("client-7", map[string]models.Value{"name": models.StringValue("Ana")})
	if got := n.Normalize(withID, testKey()).BookingID; got != "client-7" {
		t.Errorf("expected booking_id client-7, got %q", got)
	}

	anon := docWith("", map[string]models.Value{
		"name":         models.StringValue("Ana"),
		"licensePlate": models.StringValue("AA-00-AA"),
	})
	first := n.Normalize(anon, testKey()).BookingID
	second := n.Normalize(anon, testKey()).BookingID

	if first == "" {
		t.Fatal("booking_id must never be empty")
	}
	if first != second {
		t.Errorf("booking_id not deterministic: %q vs %q", first, second)
	}

	other := docWith("", map[string]models.Value{
		"name":         models.StringValue("Rui"),
		"licensePlate": models.StringValue("BB-11-BB"),
	})
	if n.Normalize(other, testKey()).BookingID == first {
		t.Error("different documents produced the same synthesized booking_id")
	}
}

// TestNormalizeStamps verifies the constant and audit columns.
func TestNormalizeStamps(t *testing.T) {
	n := NewNormalizerWithClock(testClock)
	row := n.Normalize(docWith("b-9", nil), testKey())

	if row.Source != models.SourceMarker {
		t.Errorf("expected source %q, got %q", models.SourceMarker, row.Source)
	}
	if row.SyncStatus != models.SyncStatusSynced {
		t.Errorf("expected sync_status %q, got %q", models.SyncStatusSynced, row.SyncStatus)
	}
	if !row.CreatedAtDB.Equal(testClock()) || !row.UpdatedAtDB.Equal(testClock()) {
		t.Errorf("audit columns not stamped from clock: created=%v updated=%v", row.CreatedAtDB, row.UpdatedAtDB)
	}
	if row.CidadeCliente != "lisbon" || row.ParkName != "airpark" {
		t.Errorf("partition fields not applied: city=%q park=%q", row.CidadeCliente, row.ParkName)
	}
	if row.ParqueID != "airpark" {
		t.Errorf("expected parque_id to fall back to brand, got %q", row.ParqueID)
	}
}

// TestNormalizeDeterminism: same document and partition always yield the
// same row (clock held fixed).
func TestNormalizeDeterminism(t *testing.T) {
	n := NewNormalizerWithClock(testClock)
	doc := docWith("b-3", map[string]models.Value{
		"name":         models.StringValue("Ana"),
		"lastname":     models.StringValue("Silva"),
		"bookingPrice": models.StringValue("45,50"),
		"stats":        models.StringValue("em recolha"),
		"checkIn":      models.StringValue("25/12/2026, 14:30"),
		"licensePlate": models.StringValue("aa-12-bb"),
	})

	a := n.Normalize(doc, testKey())
	b := n.Normalize(doc, testKey())

	if a.BookingID != b.BookingID || a.LicensePlate != b.LicensePlate ||
		a.EstadoReservaAtual != b.EstadoReservaAtual ||
		*a.BookingPrice != *b.BookingPrice ||
		!a.CheckInPrevisto.Equal(*b.CheckInPrevisto) {
		t.Error("normalize is not deterministic for identical inputs")
	}
}

func f(v float64) *float64 { return &v }

func tp(t time.Time) *time.Time { return &t }
