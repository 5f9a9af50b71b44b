package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"vet-appointments/internal/domain/slots"
)

type SlotsRepo struct {
	db *sql.DB
}

func NewSlotsRepo(db *sql.DB) *SlotsRepo {
	return &SlotsRepo{db: db}
}

// BulkCreate inserta el batch en una transacción, validando solapamiento
// contra lo ya persistido del mismo vet/consultorio. Entra entero o nada.
func (r *SlotsRepo) BulkCreate(ctx context.Context, batch []slots.TimeSlot) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, s := range batch {
		var n int
		err := tx.QueryRowContext(ctx, `
			SELECT count(*)
			FROM time_slots
			WHERE vet_id = $1 AND room_id = $2
			  AND starts_at < $4 AND ends_at > $3
		`, s.VetID, s.RoomID, s.StartsAt, s.EndsAt).Scan(&n)
		if err != nil {
			return err
		}
		if n > 0 {
			return slots.ErrOverlap
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO time_slots (id, vet_id, center_id, room_id, starts_at, ends_at, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`,
			s.ID,
			s.VetID,
			s.CenterID,
			s.RoomID,
			s.StartsAt,
			s.EndsAt,
			string(s.Status),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *SlotsRepo) GetByID(ctx context.Context, id string) (slots.TimeSlot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return slots.TimeSlot{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, vet_id, center_id, room_id, starts_at, ends_at, status
		FROM time_slots
		WHERE id = $1
	`, id)

	s, err := scanSlot(row)
	if err == sql.ErrNoRows {
		return slots.TimeSlot{}, ErrNotFound
	}
	return s, err
}

func (r *SlotsRepo) ListByVetRange(ctx context.Context, vetID string, from, to time.Time) ([]slots.TimeSlot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, vet_id, center_id, room_id, starts_at, ends_at, status
		FROM time_slots
		WHERE vet_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at ASC, room_id ASC
	`, vetID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]slots.TimeSlot, 0)
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSlot(row rowScanner) (slots.TimeSlot, error) {
	var s slots.TimeSlot
	var status string

	if err := row.Scan(
		&s.ID,
		&s.VetID,
		&s.CenterID,
		&s.RoomID,
		&s.StartsAt,
		&s.EndsAt,
		&status,
	); err != nil {
		return slots.TimeSlot{}, err
	}

	s.Status = slots.Status(status)
	return s, nil
}
