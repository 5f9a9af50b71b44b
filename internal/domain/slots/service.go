package slots

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-appointments/internal/platform/metrics"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// HoursSource resuelve la franja de atención de un centro. La implementa
// centers.Service; el interface vive aquí para no acoplar los paquetes.
type HoursSource interface {
	WorkingHours(ctx context.Context, centerID string) (openHM, closeHM string, err error)
}

type Service struct {
	repo    Repository
	hours   HoursSource
	metrics *metrics.AppointmentMetrics
	now     func() time.Time
}

func NewService(repo Repository, hours HoursSource, m *metrics.AppointmentMetrics) *Service {
	return &Service{
		repo:    repo,
		hours:   hours,
		metrics: m,
		now:     time.Now,
	}
}

type ScheduleInput struct {
	CenterID string
	RoomID   string

	From string // YYYY-MM-DD
	To   string // YYYY-MM-DD

	StartHM      string // "09:00"
	EndHM        string // "17:00"
	EveryMinutes int
}

// ScheduleRange genera y persiste la agenda de un veterinario para un rango
// de fechas. La generación es pura; la persistencia valida solapamientos.
func (s *Service) ScheduleRange(ctx context.Context, vetID string, in ScheduleInput) ([]TimeSlot, error) {
	vetID = strings.TrimSpace(vetID)
	if vetID == "" {
		return nil, ErrInvalidInput
	}

	from, err := time.Parse("2006-01-02", strings.TrimSpace(in.From))
	if err != nil {
		return nil, ErrInvalidInput
	}
	to, err := time.Parse("2006-01-02", strings.TrimSpace(in.To))
	if err != nil {
		return nil, ErrInvalidInput
	}

	centerID := strings.TrimSpace(in.CenterID)
	startHM := strings.TrimSpace(in.StartHM)
	endHM := strings.TrimSpace(in.EndHM)

	// Franja omitida: se toma la de atención del centro.
	if (startHM == "" || endHM == "") && centerID != "" && s.hours != nil {
		openHM, closeHM, err := s.hours.WorkingHours(ctx, centerID)
		if err != nil {
			return nil, ErrInvalidInput
		}
		if startHM == "" {
			startHM = openHM
		}
		if endHM == "" {
			endHM = closeHM
		}
	}

	batch, err := Generate(GenerateInput{
		VetID:    vetID,
		CenterID: centerID,
		RoomID:   strings.TrimSpace(in.RoomID),
		From:     from,
		To:       to,
		Window:   Window{StartHM: startHM, EndHM: endHM},
		Every:    time.Duration(in.EveryMinutes) * time.Minute,
	})
	if err != nil {
		return nil, err
	}

	for i := range batch {
		batch[i].ID = uuid.NewString()
	}

	if err := s.repo.BulkCreate(ctx, batch); err != nil {
		return nil, err
	}

	s.metrics.ObserveSlotsGenerated(len(batch))
	return batch, nil
}

// Availability devuelve lo reservable del veterinario agrupado por día.
// from/to acotan la consulta cuando vienen informados; el rango efectivo
// siempre queda recortado al horizonte de reserva.
func (s *Service) Availability(ctx context.Context, vetID string, from, to time.Time) ([]DayGroup, error) {
	vetID = strings.TrimSpace(vetID)
	if vetID == "" {
		return nil, ErrInvalidInput
	}

	now := s.now()
	lo, hi := now, now.Add(Horizon)
	if !from.IsZero() && from.After(lo) {
		lo = from
	}
	if !to.IsZero() && to.Before(hi) {
		hi = to
	}
	if !hi.After(lo) {
		return []DayGroup{}, nil
	}

	raw, err := s.repo.ListByVetRange(ctx, vetID, lo, hi)
	if err != nil {
		return nil, err
	}

	return GroupByDay(Available(raw, now)), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (TimeSlot, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return TimeSlot{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}
