package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"vet-appointments/internal/domain/centers"
)

type CentersRepo struct {
	db *sql.DB
}

func NewCentersRepo(db *sql.DB) *CentersRepo {
	return &CentersRepo{db: db}
}

func (r *CentersRepo) Create(ctx context.Context, c centers.Center) error {
	rooms, err := json.Marshal(c.Rooms)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO centers (
			id, name, address, email, phone,
			open_hm, close_hm, rooms,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		c.ID,
		c.Name,
		c.Address,
		c.Email,
		c.Phone,
		c.OpenHM,
		c.CloseHM,
		rooms,
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CentersRepo) GetByID(ctx context.Context, id string) (centers.Center, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return centers.Center{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, email, phone, open_hm, close_hm, rooms, created_at, updated_at
		FROM centers
		WHERE id = $1
	`, id)

	c, err := scanCenter(row)
	if err == sql.ErrNoRows {
		return centers.Center{}, ErrNotFound
	}
	return c, err
}

func (r *CentersRepo) List(ctx context.Context) ([]centers.Center, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, email, phone, open_hm, close_hm, rooms, created_at, updated_at
		FROM centers
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]centers.Center, 0)
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCenter(row rowScanner) (centers.Center, error) {
	var c centers.Center
	var rooms []byte

	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.Email,
		&c.Phone,
		&c.OpenHM,
		&c.CloseHM,
		&rooms,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return centers.Center{}, err
	}

	if len(rooms) > 0 {
		if err := json.Unmarshal(rooms, &c.Rooms); err != nil {
			return centers.Center{}, err
		}
	}
	return c, nil
}
