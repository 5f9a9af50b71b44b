package appointments

import "context"

type Repository interface {
	// CreateReservingSlot persiste la cita y pasa su slot a reserved como una
	// sola unidad. Si el slot ya no está libre devuelve ErrSlotUnavailable;
	// contención de escritura concurrente devuelve ErrConflict.
	CreateReservingSlot(ctx context.Context, a Appointment) error

	// UpdateReleasingSlot persiste la cita y libera su slot (reserved -> free)
	// como una sola unidad. Mismas garantías que CreateReservingSlot.
	UpdateReleasingSlot(ctx context.Context, a Appointment) error

	Update(ctx context.Context, a Appointment) error
	GetByID(ctx context.Context, id string) (Appointment, error)

	ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error)
	ListByVet(ctx context.Context, vetID string) ([]Appointment, error)

	// ListAttendedByPet devuelve solo citas atendidas, orden cronológico
	// ascendente por ScheduledAt (estable ante escritores concurrentes).
	ListAttendedByPet(ctx context.Context, petID string) ([]Appointment, error)

	HasAnyForPet(ctx context.Context, petID string) (bool, error)
}
