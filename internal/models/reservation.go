// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package models

import "time"

// ReservationStatus is the closed vocabulary of estado_reserva_atual.
// Unmapped source statuses degrade to StatusReservado, never to an arbitrary
// string.
type ReservationStatus string

// Reservation lifecycle states.
const (
	StatusReservado   ReservationStatus = "reservado"
	StatusEmRecolha   ReservationStatus = "em_recolha"
	StatusRecolhido   ReservationStatus = "recolhido"
	StatusEmEntrega   ReservationStatus = "em_entrega"
	StatusEmMovimento ReservationStatus = "em_movimento"
	StatusEntregue    ReservationStatus = "entregue"
	StatusCancelado   ReservationStatus = "cancelado"
)

// ValidStatuses lists every member of the closed enum.
var ValidStatuses = []ReservationStatus{
	StatusReservado,
	StatusEmRecolha,
	StatusRecolhido,
	StatusEmEntrega,
	StatusEmMovimento,
	StatusEntregue,
	StatusCancelado,
}

// IsValid reports enum membership.
func (s ReservationStatus) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// SourceMarker identifies rows written by the sync engine, so the dashboard
// can distinguish them from rows entered by hand.
const SourceMarker = "sync_engine"

// SyncStatusSynced is stamped on every row the normalizer produces.
const SyncStatusSynced = "synced"

// Reservation is the normalized target row, one per reservation, keyed by
// the natural BookingID. Identifier-like fields are unbounded text in the
// target schema; optional numeric and timestamp columns are pointers so they
// can persist as NULL.
type Reservation struct {
	BookingID          string            `json:"booking_id"`
	CidadeCliente      string            `json:"cidade_cliente"`
	ParkName           string            `json:"park_name"`
	LicensePlate       string            `json:"license_plate"`
	NameCliente        string            `json:"name_cliente"`
	LastnameCliente    string            `json:"lastname_cliente"`
	EmailCliente       string            `json:"email_cliente"`
	PhoneNumberCliente string            `json:"phone_number_cliente"`
	BookingPrice       *float64          `json:"booking_price"`
	EstadoReservaAtual ReservationStatus `json:"estado_reserva_atual"`
	CheckInPrevisto    *time.Time        `json:"check_in_previsto"`
	CheckOutPrevisto   *time.Time        `json:"check_out_previsto"`
	ParqueID           string            `json:"parque_id"`
	ParkingRow         string            `json:"parking_row"`
	ParkingSpot        string            `json:"parking_spot"`
	ActionUser         string            `json:"action_user"`
	ActionDescription  string            `json:"action_description"`
	ActionDate         *time.Time        `json:"action_date"`
	Source             string            `json:"source"`
	SyncStatus         string            `json:"sync_status"`
	CreatedAtDB        time.Time         `json:"created_at_db"`
	UpdatedAtDB        time.Time         `json:"updated_at_db"`
}
