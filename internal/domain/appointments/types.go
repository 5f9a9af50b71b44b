package appointments

// Status define el ciclo de vida de una cita.
// Scheduled -> Confirmed -> Attended es el camino feliz.
// Canceled solo desde Scheduled/Confirmed; Rejected solo desde Scheduled.
// Attended, Canceled y Rejected son terminales.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusAttended  Status = "attended"
	StatusCanceled  Status = "canceled"
	StatusRejected  Status = "rejected"
)

// Terminal reporta si el estado no admite más transiciones.
func (s Status) Terminal() bool {
	switch s {
	case StatusAttended, StatusCanceled, StatusRejected:
		return true
	default:
		return false
	}
}
