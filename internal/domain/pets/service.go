package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrInactive     = errors.New("pet is inactive")
)

// AppointmentChecker evita el ciclo de imports pets <-> appointments:
// el módulo de citas lo implementa y el router lo inyecta.
type AppointmentChecker interface {
	HasAnyForPet(ctx context.Context, petID string) (bool, error)
}

type Service struct {
	repo  Repository
	appts AppointmentChecker
	now   func() time.Time
}

func NewService(repo Repository, appts AppointmentChecker) *Service {
	return &Service{
		repo:  repo,
		appts: appts,
		now:   time.Now,
	}
}

type CreateInput struct {
	Name      string
	Species   string
	Breed     string
	Sex       string
	BirthDate *time.Time
	WeightKg  float64
	Notes     string
}

func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Pet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return Pet{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Species) == "" {
		return Pet{}, ErrInvalidInput
	}
	if in.WeightKg < 0 {
		return Pet{}, ErrInvalidInput
	}

	now := s.now()
	p := Pet{
		ID:          uuid.NewString(),
		OwnerUserID: strings.TrimSpace(ownerUserID),
		Name:        strings.TrimSpace(in.Name),
		Species:     strings.TrimSpace(in.Species),
		Breed:       strings.TrimSpace(in.Breed),
		Sex:         strings.TrimSpace(in.Sex),
		BirthDate:   in.BirthDate,
		WeightKg:    in.WeightKg,
		Notes:       strings.TrimSpace(in.Notes),
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrInvalidInput
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Pet, error) {
	return s.repo.ListByOwner(ctx, ownerUserID)
}

type UpdateInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Name     *string
	Breed    *string
	Sex      *string
	WeightKg *float64
	Notes    *string
}

// UpdateProfile aplica un PATCH parcial. Una mascota inactiva es de solo
// lectura: su perfil ya no se edita.
func (s *Service) UpdateProfile(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if !p.Active {
		return Pet{}, ErrInactive
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = name
	}
	if in.Breed != nil {
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.Sex != nil {
		p.Sex = strings.TrimSpace(*in.Sex)
	}
	if in.WeightKg != nil {
		if *in.WeightKg < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.WeightKg = *in.WeightKg
	}
	if in.Notes != nil {
		p.Notes = strings.TrimSpace(*in.Notes)
	}

	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

// Remove borra la mascota solo si nunca tuvo citas; con citas se
// desactiva para preservar el historial. Devuelve la mascota resultante
// (vacía si hubo borrado físico) y si quedó desactivada.
func (s *Service) Remove(ctx context.Context, id string) (Pet, bool, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return Pet{}, false, err
	}

	has := false
	if s.appts != nil {
		has, err = s.appts.HasAnyForPet(ctx, p.ID)
		if err != nil {
			return Pet{}, false, err
		}
	}

	if !has {
		if err := s.repo.Delete(ctx, p.ID); err != nil {
			return Pet{}, false, err
		}
		return Pet{}, false, nil
	}

	if !p.Active {
		// Idempotente
		return p, true, nil
	}

	p.Active = false
	p.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, false, err
	}
	return p, true, nil
}

// OwnerOf expone el ownerUserID de una mascota.
// Lo usan otros módulos para autorizar sin acoplarse al modelo completo.
func (s *Service) OwnerOf(ctx context.Context, petID string) (string, error) {
	p, err := s.GetByID(ctx, petID)
	if err != nil {
		return "", err
	}
	return p.OwnerUserID, nil
}
