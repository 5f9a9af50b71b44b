package slots

import (
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidRange    = errors.New("invalid date range")
	ErrInvalidDuration = errors.New("invalid slot duration")
	ErrInvalidWindow   = errors.New("invalid daily window")
)

const (
	// MaxRangeDays limita cuántos días de agenda se generan por request.
	MaxRangeDays = 14

	MinSlotDuration = 15 * time.Minute
	MaxSlotDuration = 120 * time.Minute
)

// GenerateInput describe una franja de trabajo de un veterinario.
// From/To son fechas (la hora se ignora); Window es la franja diaria.
type GenerateInput struct {
	VetID    string
	CenterID string
	RoomID   string

	From time.Time
	To   time.Time

	Window Window
	Every  time.Duration
}

// GenerateSeq produce la secuencia de slots candidatos (status free), lazy y
// re-iterable, ordenada por inicio ascendente. Ningún slot cruza la medianoche
// ni termina después del fin de la franja diaria.
// No persiste nada; los IDs los asigna quien persista.
func GenerateSeq(in GenerateInput) (iter.Seq[TimeSlot], error) {
	if in.Every < MinSlotDuration || in.Every > MaxSlotDuration {
		return nil, ErrInvalidDuration
	}

	from := dateOnly(in.From)
	to := dateOnly(in.To)
	if from.IsZero() || to.IsZero() || to.Before(from) {
		return nil, ErrInvalidRange
	}
	if to.Sub(from) > (MaxRangeDays-1)*24*time.Hour {
		return nil, ErrInvalidRange
	}

	sh, sm, err := parseHM(in.Window.StartHM)
	if err != nil {
		return nil, err
	}
	eh, em, err := parseHM(in.Window.EndHM)
	if err != nil {
		return nil, err
	}
	if eh*60+em <= sh*60+sm {
		return nil, ErrInvalidWindow
	}

	return func(yield func(TimeSlot) bool) {
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			winStart := time.Date(day.Year(), day.Month(), day.Day(), sh, sm, 0, 0, day.Location())
			winEnd := time.Date(day.Year(), day.Month(), day.Day(), eh, em, 0, 0, day.Location())

			// Se descarta el slot cuyo fin excedería la franja.
			for cur := winStart; !cur.Add(in.Every).After(winEnd); cur = cur.Add(in.Every) {
				s := TimeSlot{
					VetID:    in.VetID,
					CenterID: in.CenterID,
					RoomID:   in.RoomID,
					StartsAt: cur,
					EndsAt:   cur.Add(in.Every),
					Status:   StatusFree,
				}
				if !yield(s) {
					return
				}
			}
		}
	}, nil
}

// Generate materializa GenerateSeq en un slice.
func Generate(in GenerateInput) ([]TimeSlot, error) {
	seq, err := GenerateSeq(in)
	if err != nil {
		return nil, err
	}
	out := make([]TimeSlot, 0)
	for s := range seq {
		out = append(out, s)
	}
	return out, nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseHM(hm string) (h, m int, err error) {
	parts := strings.SplitN(strings.TrimSpace(hm), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, hm)
	}
	h, err = strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, hm)
	}
	m, err = strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidWindow, hm)
	}
	return h, m, nil
}
