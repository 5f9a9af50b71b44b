package appointments

import "context"

// Notifier recibe hooks del ciclo de vida de citas (correo, webhook, etc.).
// Fire-and-forget: el service loggea el error y nunca revierte la transición.
type Notifier interface {
	AppointmentCreated(ctx context.Context, a Appointment) error
	AppointmentCanceled(ctx context.Context, a Appointment, reason string) error
}
