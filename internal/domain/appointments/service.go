package appointments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"vet-appointments/internal/domain/slots"
	"vet-appointments/internal/platform/logger"
	"vet-appointments/internal/platform/metrics"
)

var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrNotFound                  = errors.New("appointment not found")
	ErrSlotUnavailable           = errors.New("slot unavailable")
	ErrInvalidTransition         = errors.New("invalid status transition")
	ErrCancellationWindowExpired = errors.New("cancellation window expired")
	ErrMissingReason             = errors.New("reason required")
	ErrImmutableHistory          = errors.New("attended appointment is immutable")
	ErrConflict                  = errors.New("concurrent write conflict")
)

const (
	// CancelLead: tiempo mínimo restante para poder cancelar.
	// Al límite exacto la cancelación falla (inclusive-fail).
	CancelLead = 3 * time.Hour

	// DefaultReason se aplica cuando el dueño no indica motivo.
	DefaultReason = "consulta general"
)

// SlotSource lee slots; lo satisfacen slots.Repository y slots.Service.
type SlotSource interface {
	GetByID(ctx context.Context, id string) (slots.TimeSlot, error)
}

type Service struct {
	repo     Repository
	slotSrc  SlotSource
	notifier Notifier
	log      logger.Logger
	metrics  *metrics.AppointmentMetrics
	now      func() time.Time
}

func NewService(repo Repository, slotSrc SlotSource, notifier Notifier, log logger.Logger, m *metrics.AppointmentMetrics) *Service {
	if log == nil {
		log = logger.NewFromEnv()
	}
	return &Service{
		repo:     repo,
		slotSrc:  slotSrc,
		notifier: notifier,
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

type CreateInput struct {
	OwnerID string
	PetID   string
	VetID   string
	SlotID  string
	Reason  string
}

// Create reserva un slot libre y crea la cita en estado scheduled.
// Chequeo y reserva son una sola unidad en el repo: ante dos requests
// concurrentes por el mismo slot, exactamente una gana.
func (s *Service) Create(ctx context.Context, in CreateInput) (Appointment, error) {
	ownerID := strings.TrimSpace(in.OwnerID)
	petID := strings.TrimSpace(in.PetID)
	vetID := strings.TrimSpace(in.VetID)
	slotID := strings.TrimSpace(in.SlotID)
	if ownerID == "" || petID == "" || vetID == "" || slotID == "" {
		return Appointment{}, ErrInvalidInput
	}

	slot, err := s.slotSrc.GetByID(ctx, slotID)
	if err != nil {
		return Appointment{}, ErrSlotUnavailable
	}
	if slot.VetID != vetID {
		return Appointment{}, ErrInvalidInput
	}

	now := s.now()
	if slot.Status != slots.StatusFree {
		s.metrics.ObserveBookingDenied("slot_taken")
		return Appointment{}, ErrSlotUnavailable
	}
	// Reglas de reserva: futuro estricto, antelación mínima y horizonte.
	if until := slot.StartsAt.Sub(now); until < slots.MinLead || until > slots.Horizon {
		s.metrics.ObserveBookingDenied("outside_window")
		return Appointment{}, ErrSlotUnavailable
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = DefaultReason
	}

	a := Appointment{
		ID:          uuid.NewString(),
		Reason:      reason,
		ScheduledAt: slot.StartsAt,
		Status:      StatusScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
		CenterID:    slot.CenterID,
		RoomID:      slot.RoomID,
		VetID:       vetID,
		OwnerID:     ownerID,
		PetID:       petID,
		SlotID:      slotID,
	}

	if err := s.repo.CreateReservingSlot(ctx, a); err != nil {
		if errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrConflict) {
			s.metrics.ObserveBookingDenied("race_lost")
		}
		return Appointment{}, err
	}

	s.metrics.ObserveTransition(string(StatusScheduled))
	s.notifyCreated(ctx, a)
	return a, nil
}

// Confirm pasa una cita scheduled a confirmed. Sin restricción horaria.
func (s *Service) Confirm(ctx context.Context, id string) (Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status != StatusScheduled {
		return Appointment{}, ErrInvalidTransition
	}

	a.Status = StatusConfirmed
	a.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.metrics.ObserveTransition(string(StatusConfirmed))
	return a, nil
}

type AttendInput struct {
	Findings       string
	TestsPerformed string
	Treatment      string
}

// Attend cierra la cita adjuntando los campos clínicos. Una vez atendida
// la cita queda inmutable y pasa a formar parte del historial de la mascota.
func (s *Service) Attend(ctx context.Context, id string, in AttendInput) (Appointment, error) {
	a, err := s.get(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status == StatusAttended {
		return Appointment{}, ErrImmutableHistory
	}
	if a.Status != StatusScheduled && a.Status != StatusConfirmed {
		return Appointment{}, ErrInvalidTransition
	}

	a.Status = StatusAttended
	a.Findings = strings.TrimSpace(in.Findings)
	a.TestsPerformed = strings.TrimSpace(in.TestsPerformed)
	a.Treatment = strings.TrimSpace(in.Treatment)
	a.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.metrics.ObserveTransition(string(StatusAttended))
	return a, nil
}

// Cancel aplica la misma regla de ventana para dueño y veterinario:
// solo con más de CancelLead de antelación. Libera el slot vinculado.
func (s *Service) Cancel(ctx context.Context, id, reason string) (Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Appointment{}, ErrMissingReason
	}

	a, err := s.get(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status != StatusScheduled && a.Status != StatusConfirmed {
		return Appointment{}, ErrInvalidTransition
	}

	now := s.now()
	if a.ScheduledAt.Sub(now) <= CancelLead {
		return Appointment{}, ErrCancellationWindowExpired
	}

	a.Status = StatusCanceled
	a.CancelReason = reason
	a.UpdatedAt = now

	if err := s.release(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.metrics.ObserveTransition(string(StatusCanceled))
	s.notifyCanceled(ctx, a, reason)
	return a, nil
}

// Reject: rechazo del lado veterinario antes de confirmar.
// También libera el slot para que otro dueño pueda tomar la hora.
func (s *Service) Reject(ctx context.Context, id, reason string) (Appointment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return Appointment{}, ErrMissingReason
	}

	a, err := s.get(ctx, id)
	if err != nil {
		return Appointment{}, err
	}
	if a.Status != StatusScheduled {
		return Appointment{}, ErrInvalidTransition
	}

	a.Status = StatusRejected
	a.CancelReason = reason
	a.UpdatedAt = s.now()

	if err := s.release(ctx, a); err != nil {
		return Appointment{}, err
	}

	s.metrics.ObserveTransition(string(StatusRejected))
	s.notifyCanceled(ctx, a, reason)
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Appointment, error) {
	return s.get(ctx, id)
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListByVet(ctx context.Context, vetID string) ([]Appointment, error) {
	return s.repo.ListByVet(ctx, vetID)
}

// ListAttendedByPet alimenta la proyección de historial clínico.
func (s *Service) ListAttendedByPet(ctx context.Context, petID string) ([]Appointment, error) {
	return s.repo.ListAttendedByPet(ctx, petID)
}

// HasAnyForPet lo usa el módulo pets para decidir baja lógica vs borrado.
func (s *Service) HasAnyForPet(ctx context.Context, petID string) (bool, error) {
	return s.repo.HasAnyForPet(ctx, petID)
}

func (s *Service) get(ctx context.Context, id string) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidInput
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Appointment{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) release(ctx context.Context, a Appointment) error {
	if a.SlotID == "" {
		return s.repo.Update(ctx, a)
	}
	return s.repo.UpdateReleasingSlot(ctx, a)
}

func (s *Service) notifyCreated(ctx context.Context, a Appointment) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AppointmentCreated(ctx, a); err != nil {
		s.log.Warn("notify created failed", map[string]any{"appointment_id": a.ID, "err": err.Error()})
	}
}

func (s *Service) notifyCanceled(ctx context.Context, a Appointment, reason string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.AppointmentCanceled(ctx, a, reason); err != nil {
		s.log.Warn("notify canceled failed", map[string]any{"appointment_id": a.ID, "err": err.Error()})
	}
}
