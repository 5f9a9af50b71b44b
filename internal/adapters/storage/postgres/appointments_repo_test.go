package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"vet-appointments/internal/domain/appointments"
)

func testAppointment() appointments.Appointment {
	start := time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC)
	return appointments.Appointment{
		ID:          "appt-1",
		Reason:      "control anual",
		ScheduledAt: start,
		Status:      appointments.StatusScheduled,
		CreatedAt:   start.Add(-48 * time.Hour),
		UpdatedAt:   start.Add(-48 * time.Hour),
		CenterID:    "center-1",
		RoomID:      "room-1",
		VetID:       "vet-1",
		OwnerID:     "owner-1",
		PetID:       "pet-1",
		SlotID:      "slot-1",
	}
}

func TestAppointmentsRepo_CreateReservingSlot_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE time_slots").
		WithArgs(a.SlotID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewAppointmentsRepo(db)
	if err := repo.CreateReservingSlot(context.Background(), a); err != nil {
		t.Fatalf("CreateReservingSlot returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentsRepo_CreateReservingSlot_SlotTakenRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	a := testAppointment()

	// el UPDATE condicional no afecta filas: el slot ya no está libre
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE time_slots").
		WithArgs(a.SlotID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	repo := NewAppointmentsRepo(db)
	if err := repo.CreateReservingSlot(context.Background(), a); !errors.Is(err, appointments.ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentsRepo_CreateReservingSlot_MapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	a := testAppointment()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE time_slots").
		WithArgs(a.SlotID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO appointments").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	repo := NewAppointmentsRepo(db)
	if err := repo.CreateReservingSlot(context.Background(), a); !errors.Is(err, appointments.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentsRepo_UpdateReleasingSlot_FreesSlotInTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	a := testAppointment()
	a.Status = appointments.StatusCanceled
	a.CancelReason = "viaje"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE time_slots").
		WithArgs(a.SlotID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewAppointmentsRepo(db)
	if err := repo.UpdateReleasingSlot(context.Background(), a); err != nil {
		t.Fatalf("UpdateReleasingSlot returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppointmentsRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE appointments").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewAppointmentsRepo(db)
	if err := repo.Update(context.Background(), testAppointment()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAppointmentsRepo_ListAttendedByPet_StableOrderQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	cols := []string{
		"id", "reason", "scheduled_at", "status",
		"created_at", "updated_at", "cancel_reason",
		"center_id", "room_id", "vet_id", "owner_id", "pet_id", "slot_id",
		"findings", "tests_performed", "treatment",
	}

	t1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(cols).
		AddRow("appt-1", "control", t1, "attended", t1, t1, "",
			"center-1", "room-1", "vet-1", "owner-1", "pet-1", "slot-1",
			"sin hallazgos", "", "")

	// el orden estable lo garantiza la query, no el caller
	mock.ExpectQuery("ORDER BY scheduled_at ASC, id ASC").
		WithArgs("pet-1").
		WillReturnRows(rows)

	repo := NewAppointmentsRepo(db)
	got, err := repo.ListAttendedByPet(context.Background(), "pet-1")
	if err != nil {
		t.Fatalf("ListAttendedByPet returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 appointment, got %d", len(got))
	}
	if got[0].Status != appointments.StatusAttended || got[0].Findings != "sin hallazgos" {
		t.Fatalf("scan lost fields: %+v", got[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
