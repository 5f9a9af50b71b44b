package centers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("center not found")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name    string
	Address string
	Email   string
	Phone   string
	OpenHM  string
	CloseHM string
	Rooms   []string // nombres de consultorios
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Center, error) {
	name := strings.TrimSpace(in.Name)
	addr := strings.TrimSpace(in.Address)
	if name == "" || addr == "" {
		return Center{}, ErrInvalidInput
	}

	open := strings.TrimSpace(in.OpenHM)
	closeHM := strings.TrimSpace(in.CloseHM)
	if open == "" {
		open = "09:00"
	}
	if closeHM == "" {
		closeHM = "17:00"
	}

	rooms := make([]Room, 0, len(in.Rooms))
	for _, rn := range in.Rooms {
		rn = strings.TrimSpace(rn)
		if rn == "" {
			continue
		}
		rooms = append(rooms, Room{ID: uuid.NewString(), Name: rn})
	}

	now := s.now()
	c := Center{
		ID:        uuid.NewString(),
		Name:      name,
		Address:   addr,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		OpenHM:    open,
		CloseHM:   closeHM,
		Rooms:     rooms,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Center{}, err
	}
	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Center, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Center{}, ErrInvalidInput
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Center{}, ErrNotFound
	}
	return c, nil
}

// WorkingHours expone la franja de atención del centro; la agenda la usa
// como ventana por defecto cuando no se indica una.
func (s *Service) WorkingHours(ctx context.Context, centerID string) (string, string, error) {
	c, err := s.GetByID(ctx, centerID)
	if err != nil {
		return "", "", err
	}
	return c.OpenHM, c.CloseHM, nil
}

func (s *Service) List(ctx context.Context) ([]Center, error) {
	return s.repo.List(ctx)
}
