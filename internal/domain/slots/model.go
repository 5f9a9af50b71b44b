package slots

import "time"

// Status define el estado de un slot de agenda.
// @Enum free, reserved, blocked, out_of_range
type Status string

const (
	StatusFree       Status = "free"
	StatusReserved   Status = "reserved"
	StatusBlocked    Status = "blocked"
	StatusOutOfRange Status = "out_of_range"
)

// TimeSlot representa un intervalo reservable de un veterinario.
// Invariante: StartsAt < EndsAt; slots del mismo vet/consultorio no se solapan.
type TimeSlot struct {
	ID    string
	VetID string

	CenterID string // opcional
	RoomID   string // opcional

	StartsAt time.Time
	EndsAt   time.Time

	Status Status
}

// Window es la franja diaria de atención en formato "HH:MM".
type Window struct {
	StartHM string
	EndHM   string
}

// Overlaps reporta si dos slots se pisan (intervalos semiabiertos [start, end)).
func Overlaps(a, b TimeSlot) bool {
	return a.StartsAt.Before(b.EndsAt) && b.StartsAt.Before(a.EndsAt)
}
