package slots

import "time"

const (
	// MinLead: antelación mínima entre reserva e inicio del slot.
	MinLead = 24 * time.Hour

	// Horizon: ventana máxima hacia adelante para reservar.
	Horizon = 14 * 24 * time.Hour
)

// Available filtra lo que un dueño puede reservar ahora mismo:
// status free, inicio estrictamente futuro, dentro del horizonte y
// respetando la antelación mínima. Preserva el orden de entrada.
func Available(in []TimeSlot, now time.Time) []TimeSlot {
	out := make([]TimeSlot, 0, len(in))
	for _, s := range in {
		if s.Status != StatusFree {
			continue
		}
		if !s.StartsAt.After(now) {
			continue
		}
		until := s.StartsAt.Sub(now)
		if until < MinLead || until > Horizon {
			continue
		}
		out = append(out, s)
	}
	return out
}

// DayGroup agrupa slots por día calendario (vista derivada para UI).
type DayGroup struct {
	Date  string // YYYY-MM-DD del inicio del slot
	Slots []TimeSlot
}

// GroupByDay agrupa en orden cronológico. Asume entrada ordenada por inicio,
// que es lo que producen el generador y los repos.
func GroupByDay(in []TimeSlot) []DayGroup {
	out := make([]DayGroup, 0)
	for _, s := range in {
		key := s.StartsAt.Format("2006-01-02")
		if n := len(out); n > 0 && out[n-1].Date == key {
			out[n-1].Slots = append(out[n-1].Slots, s)
			continue
		}
		out = append(out, DayGroup{Date: key, Slots: []TimeSlot{s}})
	}
	return out
}
