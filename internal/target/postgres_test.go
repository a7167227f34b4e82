// ParkOps - Parking Operations Dashboard and Reservation Sync
// Copyright 2026 Multipark Operations
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/multipark/parkops

package target

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/multipark/parkops/internal/models"
)

// fakeDB records executed SQL and scripts results.
type fakeDB struct {
	execSQL  []string
	execArgs []any
	execErr  error
	execTag  pgconn.CommandTag
	row      pgx.Row
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = append(f.execSQL, sql)
	f.execArgs = append(f.execArgs, args...)
	return f.execTag, f.execErr
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.row
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...any) error { return r.err }

func TestFindByBookingIDNotFound(t *testing.T) {
	s := NewPostgresStore(&fakeDB{row: errRow{err: pgx.ErrNoRows}})

	_, err := s.FindByBookingID(context.Background(), "missing-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "missing-1") {
		t.Errorf("error should carry the offending key: %v", err)
	}
}

func TestInsertWrapsFailureAsWriteError(t *testing.T) {
	db := &fakeDB{execErr: errors.New("duplicate key value violates unique constraint")}
	s := NewPostgresStore(db)

	err := s.Insert(context.Background(), &models.Reservation{BookingID: "res-1"})

	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected WriteError, got %T (%v)", err, err)
	}
	if we.BookingID != "res-1" || we.Op != "insert" {
		t.Errorf("WriteError fields: %+v", we)
	}
}

func TestUpdateZeroRowsIsWriteError(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("UPDATE 0")}
	s := NewPostgresStore(db)

	err := s.Update(context.Background(), "res-2", &models.Reservation{BookingID: "res-2"})

	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected WriteError for zero-row update, got %v", err)
	}
	if we.Op != "update" || !errors.Is(err, ErrNotFound) {
		t.Errorf("expected update/ErrNotFound, got op=%q err=%v", we.Op, we.Err)
	}
}

func TestNamedArgsCoverAllColumns(t *testing.T) {
	price := 45.5
	checkIn := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	row := &models.Reservation{
		BookingID:          "res-3",
		LicensePlate:       "AA-12-BB",
		BookingPrice:       &price,
		EstadoReservaAtual: models.StatusEmRecolha,
		CheckInPrevisto:    &checkIn,
		Source:             models.SourceMarker,
		SyncStatus:         models.SyncStatusSynced,
	}

	args := namedArgs(row)

	for _, col := range []string{
		"booking_id", "cidade_cliente", "park_name", "license_plate",
		"name_cliente", "lastname_cliente", "email_cliente",
		"phone_number_cliente", "booking_price", "estado_reserva_atual",
		"check_in_previsto", "check_out_previsto", "parque_id", "parking_row",
		"parking_spot", "action_user", "action_description", "action_date",
		"source", "sync_status", "created_at_db", "updated_at_db",
	} {
		if _, ok := args[col]; !ok {
			t.Errorf("named args missing column %s", col)
		}
	}
	if got := args["estado_reserva_atual"]; got != "em_recolha" {
		t.Errorf("status should persist as its string form, got %v", got)
	}
}

func TestSchemaUsesTextIdentifiers(t *testing.T) {
	db := &fakeDB{execTag: pgconn.NewCommandTag("CREATE TABLE")}
	s := NewPostgresStore(db)

	if err := s.InitSchema(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.execSQL) != 1 {
		t.Fatalf("expected one schema statement, got %d", len(db.execSQL))
	}
	schema := db.execSQL[0]
	if !strings.Contains(schema, "booking_id           TEXT PRIMARY KEY") {
		t.Error("booking_id must be TEXT and the primary key")
	}
	for _, frag := range []string{"license_plate        TEXT NOT NULL", "parque_id            TEXT", "TIMESTAMPTZ"} {
		if !strings.Contains(schema, frag) {
			t.Errorf("schema missing %q", frag)
		}
	}
}
