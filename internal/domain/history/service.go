package history

import (
	"context"
	"errors"
	"strings"
	"time"

	"vet-appointments/internal/domain/appointments"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// Order define el orden de la vista.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// Entry es una entrada de historial: proyección de solo lectura de una
// cita atendida. El historial solo crece vía la transición attend.
type Entry struct {
	AppointmentID string
	Reason        string
	ScheduledAt   time.Time
	AttendedAt    time.Time

	VetID    string
	CenterID string

	Findings       string
	TestsPerformed string
	Treatment      string
}

// Reader es lo único que el historial necesita del módulo de citas.
type Reader interface {
	ListAttendedByPet(ctx context.Context, petID string) ([]appointments.Appointment, error)
}

type Service struct {
	appts Reader
}

func NewService(appts Reader) *Service {
	return &Service{appts: appts}
}

// ListForPet devuelve el historial clínico de la mascota, cronológico
// ascendente por defecto (el repo ya garantiza orden estable).
func (s *Service) ListForPet(ctx context.Context, petID string, order Order) ([]Entry, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return nil, ErrInvalidInput
	}

	items, err := s.appts.ListAttendedByPet(ctx, petID)
	if err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(items))
	for _, a := range items {
		out = append(out, Entry{
			AppointmentID:  a.ID,
			Reason:         a.Reason,
			ScheduledAt:    a.ScheduledAt,
			AttendedAt:     a.UpdatedAt,
			VetID:          a.VetID,
			CenterID:       a.CenterID,
			Findings:       a.Findings,
			TestsPerformed: a.TestsPerformed,
			Treatment:      a.Treatment,
		})
	}

	if order == OrderDesc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}

	return out, nil
}
