package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"vet-appointments/internal/domain/appointments"
)

type AppointmentsRepo struct {
	db *sql.DB
}

func NewAppointmentsRepo(db *sql.DB) *AppointmentsRepo {
	return &AppointmentsRepo{db: db}
}

const apptColumns = `
	id, reason, scheduled_at, status,
	created_at, updated_at, cancel_reason,
	center_id, room_id, vet_id, owner_id, pet_id, slot_id,
	findings, tests_performed, treatment
`

// CreateReservingSlot reserva el slot y crea la cita en una transacción.
// El UPDATE condicional (status='free') es el punto de serialización:
// de dos requests concurrentes por el mismo slot, solo una afecta filas.
func (r *AppointmentsRepo) CreateReservingSlot(ctx context.Context, a appointments.Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE time_slots
		SET status = 'reserved'
		WHERE id = $1 AND status = 'free'
	`, a.SlotID)
	if err != nil {
		return mapConflict(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return appointments.ErrSlotUnavailable
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO appointments (`+apptColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
	`,
		a.ID,
		a.Reason,
		a.ScheduledAt,
		string(a.Status),
		a.CreatedAt,
		a.UpdatedAt,
		a.CancelReason,
		a.CenterID,
		a.RoomID,
		a.VetID,
		a.OwnerID,
		a.PetID,
		a.SlotID,
		a.Findings,
		a.TestsPerformed,
		a.Treatment,
	); err != nil {
		return mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return mapConflict(err)
	}
	return nil
}

// UpdateReleasingSlot persiste la cita y libera su slot en una transacción.
func (r *AppointmentsRepo) UpdateReleasingSlot(ctx context.Context, a appointments.Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := execUpdate(ctx, tx, a); err != nil {
		return err
	}

	if a.SlotID != "" {
		if _, err := tx.ExecContext(ctx, `
			UPDATE time_slots
			SET status = 'free'
			WHERE id = $1
		`, a.SlotID); err != nil {
			return mapConflict(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return mapConflict(err)
	}
	return nil
}

func (r *AppointmentsRepo) Update(ctx context.Context, a appointments.Appointment) error {
	return execUpdate(ctx, r.db, a)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func execUpdate(ctx context.Context, db execer, a appointments.Appointment) error {
	res, err := db.ExecContext(ctx, `
		UPDATE appointments SET
			reason = $2, scheduled_at = $3, status = $4,
			updated_at = $5, cancel_reason = $6,
			findings = $7, tests_performed = $8, treatment = $9
		WHERE id = $1
	`,
		a.ID,
		a.Reason,
		a.ScheduledAt,
		string(a.Status),
		a.UpdatedAt,
		a.CancelReason,
		a.Findings,
		a.TestsPerformed,
		a.Treatment,
	)
	if err != nil {
		return mapConflict(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AppointmentsRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return appointments.Appointment{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE id = $1
	`, id)

	a, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return appointments.Appointment{}, ErrNotFound
	}
	return a, err
}

func (r *AppointmentsRepo) ListByOwner(ctx context.Context, ownerID string) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "owner_id = $1", ownerID)
}

func (r *AppointmentsRepo) ListByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "vet_id = $1", vetID)
}

func (r *AppointmentsRepo) ListAttendedByPet(ctx context.Context, petID string) ([]appointments.Appointment, error) {
	return r.listWhere(ctx, "pet_id = $1 AND status = 'attended'", petID)
}

func (r *AppointmentsRepo) HasAnyForPet(ctx context.Context, petID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM appointments WHERE pet_id = $1
	`, petID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AppointmentsRepo) listWhere(ctx context.Context, where string, arg any) ([]appointments.Appointment, error) {
	// Orden estable: cronológico + id como desempate, independiente del
	// orden de inserción de escritores concurrentes.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+apptColumns+`
		FROM appointments
		WHERE `+where+`
		ORDER BY scheduled_at ASC, id ASC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]appointments.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row rowScanner) (appointments.Appointment, error) {
	var a appointments.Appointment
	var status string

	if err := row.Scan(
		&a.ID,
		&a.Reason,
		&a.ScheduledAt,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.CancelReason,
		&a.CenterID,
		&a.RoomID,
		&a.VetID,
		&a.OwnerID,
		&a.PetID,
		&a.SlotID,
		&a.Findings,
		&a.TestsPerformed,
		&a.Treatment,
	); err != nil {
		return appointments.Appointment{}, err
	}

	a.Status = appointments.Status(status)
	return a, nil
}

// mapConflict traduce contención de Postgres al sentinel del dominio:
// unique violation (23505), serialization failure (40001) y deadlock (40P01).
// El caller reintenta con estado fresco; acá no se reintenta nada.
func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505", "40001", "40P01":
			return appointments.ErrConflict
		}
	}
	return err
}
