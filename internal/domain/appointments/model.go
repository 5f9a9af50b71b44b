package appointments

import "time"

// Appointment representa una cita médica.
// Creada por el dueño contra un slot libre; el veterinario la confirma,
// la atiende (adjuntando hallazgos) o la rechaza; cualquiera de las dos
// partes puede cancelarla dentro de la ventana permitida.
type Appointment struct {
	ID     string
	Reason string

	ScheduledAt time.Time
	Status      Status

	CreatedAt time.Time
	UpdatedAt time.Time

	// Motivo de cancelación o rechazo, según el estado terminal.
	CancelReason string

	CenterID string
	RoomID   string // opcional
	VetID    string
	OwnerID  string
	PetID    string
	SlotID   string // opcional: vínculo al slot reservado

	// Campos clínicos: solo se escriben al atender y quedan inmutables.
	Findings       string
	TestsPerformed string
	Treatment      string
}
