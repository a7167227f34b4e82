// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package target

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/multipark/parkops/internal/logging"
	"github.com/multipark/parkops/internal/models"
)

// ErrNotFound is returned by FindByBookingID when no row carries the key.
var ErrNotFound = errors.New("reservation not found")

// WriteError is the structured failure of an insert or update: the offending
// natural key, the operation, and the underlying cause.
type WriteError struct {
	BookingID string
	Op        string
	Err       error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("target %s failed for booking_id %q: %v", e.Op, e.BookingID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store is the write contract consumed by the sync unit.
type Store interface {
	FindByBookingID(ctx context.Context, bookingID string) (*models.Reservation, error)
	Insert(ctx context.Context, row *models.Reservation) error
	Update(ctx context.Context, bookingID string, row *models.Reservation) error
}

// DB is the subset of pgxpool.Pool the store uses, split out so tests can
// substitute a fake.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store against the reservations table.
type PostgresStore struct {
	db DB
}

// Connect opens a pgx pool against the target store and verifies it with a
// ping. Like the source credential, a bad DSN is startup-fatal.
func Connect(ctx context.Context, dsn string, connectTimeout time.Duration) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("target store DSN not configured")
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open target pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping target store: %w", err)
	}

	logging.Info().Msg("Target store connected")
	return pool, nil
}

// NewPostgresStore wraps a pool (or a fake in tests).
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// schemaSQL bootstraps the canonical reservations table. booking_id is the
// primary key, which is the uniqueness guarantee every write relies on.
// Identifier-like fields are TEXT on purpose.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS reservations (
	booking_id           TEXT PRIMARY KEY,
	cidade_cliente       TEXT,
	park_name            TEXT,
	license_plate        TEXT NOT NULL,
	name_cliente         TEXT,
	lastname_cliente     TEXT,
	email_cliente        TEXT,
	phone_number_cliente TEXT,
	booking_price        DOUBLE PRECISION,
	estado_reserva_atual TEXT NOT NULL DEFAULT 'reservado',
	check_in_previsto    TIMESTAMPTZ,
	check_out_previsto   TIMESTAMPTZ,
	parque_id            TEXT,
	parking_row          TEXT,
	parking_spot         TEXT,
	action_user          TEXT,
	action_description   TEXT,
	action_date          TIMESTAMPTZ,
	source               TEXT,
	sync_status          TEXT,
	created_at_db        TIMESTAMPTZ NOT NULL,
	updated_at_db        TIMESTAMPTZ NOT NULL
)`

// InitSchema creates the reservations table when absent.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("init reservations schema: %w", err)
	}
	return nil
}

const selectSQL = `
SELECT booking_id, cidade_cliente, park_name, license_plate, name_cliente,
       lastname_cliente, email_cliente, phone_number_cliente, booking_price,
       estado_reserva_atual, check_in_previsto, check_out_previsto, parque_id,
       parking_row, parking_spot, action_user, action_description, action_date,
       source, sync_status, created_at_db, updated_at_db
FROM reservations
WHERE booking_id = @booking_id`

// FindByBookingID returns the row for the natural key, or ErrNotFound.
func (s *PostgresStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Reservation, error) {
	var (
		row    models.Reservation
		status string
	)
	err := s.db.QueryRow(ctx, selectSQL, pgx.NamedArgs{"booking_id": bookingID}).Scan(
		&row.BookingID, &row.CidadeCliente, &row.ParkName, &row.LicensePlate,
		&row.NameCliente, &row.LastnameCliente, &row.EmailCliente,
		&row.PhoneNumberCliente, &row.BookingPrice, &status,
		&row.CheckInPrevisto, &row.CheckOutPrevisto, &row.ParqueID,
		&row.ParkingRow, &row.ParkingSpot, &row.ActionUser,
		&row.ActionDescription, &row.ActionDate, &row.Source, &row.SyncStatus,
		&row.CreatedAtDB, &row.UpdatedAtDB,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, bookingID)
	}
	if err != nil {
		return nil, fmt.Errorf("find booking_id %q: %w", bookingID, err)
	}
	row.EstadoReservaAtual = models.ReservationStatus(status)
	return &row, nil
}

const insertSQL = `
INSERT INTO reservations (
	booking_id, cidade_cliente, park_name, license_plate, name_cliente,
	lastname_cliente, email_cliente, phone_number_cliente, booking_price,
	estado_reserva_atual, check_in_previsto, check_out_previsto, parque_id,
	parking_row, parking_spot, action_user, action_description, action_date,
	source, sync_status, created_at_db, updated_at_db
) VALUES (
	@booking_id, @cidade_cliente, @park_name, @license_plate, @name_cliente,
	@lastname_cliente, @email_cliente, @phone_number_cliente, @booking_price,
	@estado_reserva_atual, @check_in_previsto, @check_out_previsto, @parque_id,
	@parking_row, @parking_spot, @action_user, @action_description, @action_date,
	@source, @sync_status, @created_at_db, @updated_at_db
)`

// Insert writes a new row. Never a blind upsert: the caller has already
// decided this key is absent, and a race shows up as a unique violation
// counted like any other write failure.
func (s *PostgresStore) Insert(ctx context.Context, row *models.Reservation) error {
	if _, err := s.db.Exec(ctx, insertSQL, namedArgs(row)); err != nil {
		return &WriteError{BookingID: row.BookingID, Op: "insert", Err: err}
	}
	return nil
}

const updateSQL = `
UPDATE reservations SET
	cidade_cliente = @cidade_cliente,
	park_name = @park_name,
	license_plate = @license_plate,
	name_cliente = @name_cliente,
	lastname_cliente = @lastname_cliente,
	email_cliente = @email_cliente,
	phone_number_cliente = @phone_number_cliente,
	booking_price = @booking_price,
	estado_reserva_atual = @estado_reserva_atual,
	check_in_previsto = @check_in_previsto,
	check_out_previsto = @check_out_previsto,
	parque_id = @parque_id,
	parking_row = @parking_row,
	parking_spot = @parking_spot,
	action_user = @action_user,
	action_description = @action_description,
	action_date = @action_date,
	source = @source,
	sync_status = @sync_status,
	updated_at_db = @updated_at_db
WHERE booking_id = @booking_id`

// Update rewrites an existing row in place. created_at_db is preserved;
// updated_at_db moves forward.
func (s *PostgresStore) Update(ctx context.Context, bookingID string, row *models.Reservation) error {
	args := namedArgs(row)
	args["booking_id"] = bookingID

	tag, err := s.db.Exec(ctx, updateSQL, args)
	if err != nil {
		return &WriteError{BookingID: bookingID, Op: "update", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &WriteError{BookingID: bookingID, Op: "update", Err: ErrNotFound}
	}
	return nil
}

// namedArgs maps a reservation row onto the SQL parameter set shared by
// insert and update.
func namedArgs(row *models.Reservation) pgx.NamedArgs {
	return pgx.NamedArgs{
		"booking_id":           row.BookingID,
		"cidade_cliente":       row.CidadeCliente,
		"park_name":            row.ParkName,
		"license_plate":        row.LicensePlate,
		"name_cliente":         row.NameCliente,
		"lastname_cliente":     row.LastnameCliente,
		"email_cliente":        row.EmailCliente,
		"phone_number_cliente": row.PhoneNumberCliente,
		"booking_price":        row.BookingPrice,
		"estado_reserva_atual": string(row.EstadoReservaAtual),
		"check_in_previsto":    row.CheckInPrevisto,
		"check_out_previsto":   row.CheckOutPrevisto,
		"parque_id":            row.ParqueID,
		"parking_row":          row.ParkingRow,
		"parking_spot":         row.ParkingSpot,
		"action_user":          row.ActionUser,
		"action_description":   row.ActionDescription,
		"action_date":          row.ActionDate,
		"source":               row.Source,
		"sync_status":          row.SyncStatus,
		"created_at_db":        row.CreatedAtDB,
		"updated_at_db":        row.UpdatedAtDB,
	}
}
