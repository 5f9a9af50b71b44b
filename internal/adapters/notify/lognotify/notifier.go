package lognotify

import (
	"context"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/logger"
)

// Notifier deja registro de los eventos de cita en el log.
// Es el default en dev, donde no hay canal de notificaciones real.
type Notifier struct {
	log logger.Logger
}

func New(log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewFromEnv()
	}
	return &Notifier{log: log}
}

func (n *Notifier) AppointmentCreated(ctx context.Context, a appointments.Appointment) error {
	n.log.Info("appointment created", map[string]any{
		"appointment_id": a.ID,
		"vet_id":         a.VetID,
		"owner_id":       a.OwnerID,
		"scheduled_at":   a.ScheduledAt,
	})
	return nil
}

func (n *Notifier) AppointmentCanceled(ctx context.Context, a appointments.Appointment, reason string) error {
	n.log.Info("appointment canceled", map[string]any{
		"appointment_id": a.ID,
		"vet_id":         a.VetID,
		"owner_id":       a.OwnerID,
		"reason":         reason,
	})
	return nil
}
