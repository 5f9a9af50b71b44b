package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/domain/slots"
)

// SchedulingStore guarda slots y citas bajo un solo mutex: la sección
// "chequear slot libre + reservar + crear cita" es indivisible, igual que
// la liberación del slot al cancelar. Es el equivalente in-memory de la
// transacción del adapter postgres.
type SchedulingStore struct {
	mu    sync.RWMutex
	slots map[string]slots.TimeSlot
	appts map[string]appointments.Appointment
}

func NewSchedulingStore() *SchedulingStore {
	return &SchedulingStore{
		slots: make(map[string]slots.TimeSlot),
		appts: make(map[string]appointments.Appointment),
	}
}

func (st *SchedulingStore) Slots() slots.Repository {
	return &slotRepo{st: st}
}

func (st *SchedulingStore) Appointments() appointments.Repository {
	return &apptRepo{st: st}
}

// -------------------------
// slots.Repository
// -------------------------

type slotRepo struct {
	st *SchedulingStore
}

func (r *slotRepo) BulkCreate(ctx context.Context, batch []slots.TimeSlot) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	// Validación completa antes de escribir: el batch entra entero o no entra.
	for _, s := range batch {
		if strings.TrimSpace(s.ID) == "" {
			return errors.New("slot id required")
		}
		if _, exists := st.slots[s.ID]; exists {
			return errors.New("slot already exists")
		}
		for _, cur := range st.slots {
			if cur.VetID != s.VetID || cur.RoomID != s.RoomID {
				continue
			}
			if slots.Overlaps(cur, s) {
				return slots.ErrOverlap
			}
		}
	}

	for _, s := range batch {
		st.slots[s.ID] = s
	}
	return nil
}

func (r *slotRepo) GetByID(ctx context.Context, id string) (slots.TimeSlot, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.slots[id]
	if !ok {
		return slots.TimeSlot{}, ErrNotFound
	}
	return s, nil
}

func (r *slotRepo) ListByVetRange(ctx context.Context, vetID string, from, to time.Time) ([]slots.TimeSlot, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]slots.TimeSlot, 0)
	for _, s := range st.slots {
		if s.VetID != vetID {
			continue
		}
		if s.StartsAt.Before(from) || !s.StartsAt.Before(to) {
			continue
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].RoomID < out[j].RoomID
	})

	return out, nil
}

// -------------------------
// appointments.Repository
// -------------------------

type apptRepo struct {
	st *SchedulingStore
}

func (r *apptRepo) CreateReservingSlot(ctx context.Context, a appointments.Appointment) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("appointment id required")
	}
	if _, exists := st.appts[a.ID]; exists {
		return appointments.ErrConflict
	}

	s, ok := st.slots[a.SlotID]
	if !ok {
		return appointments.ErrSlotUnavailable
	}
	if s.Status != slots.StatusFree {
		// El perdedor de una carrera por el mismo slot cae aquí.
		return appointments.ErrSlotUnavailable
	}

	s.Status = slots.StatusReserved
	st.slots[a.SlotID] = s
	st.appts[a.ID] = a
	return nil
}

func (r *apptRepo) UpdateReleasingSlot(ctx context.Context, a appointments.Appointment) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.appts[a.ID]; !exists {
		return ErrNotFound
	}

	if a.SlotID != "" {
		if s, ok := st.slots[a.SlotID]; ok {
			s.Status = slots.StatusFree
			st.slots[a.SlotID] = s
		}
	}

	st.appts[a.ID] = a
	return nil
}

func (r *apptRepo) Update(ctx context.Context, a appointments.Appointment) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.appts[a.ID]; !exists {
		return ErrNotFound
	}
	st.appts[a.ID] = a
	return nil
}

func (r *apptRepo) GetByID(ctx context.Context, id string) (appointments.Appointment, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()

	a, ok := st.appts[id]
	if !ok {
		return appointments.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (r *apptRepo) ListByOwner(ctx context.Context, ownerID string) ([]appointments.Appointment, error) {
	return r.list(func(a appointments.Appointment) bool { return a.OwnerID == ownerID })
}

func (r *apptRepo) ListByVet(ctx context.Context, vetID string) ([]appointments.Appointment, error) {
	return r.list(func(a appointments.Appointment) bool { return a.VetID == vetID })
}

func (r *apptRepo) ListAttendedByPet(ctx context.Context, petID string) ([]appointments.Appointment, error) {
	return r.list(func(a appointments.Appointment) bool {
		return a.PetID == petID && a.Status == appointments.StatusAttended
	})
}

func (r *apptRepo) HasAnyForPet(ctx context.Context, petID string) (bool, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()

	for _, a := range st.appts {
		if a.PetID == petID {
			return true, nil
		}
	}
	return false, nil
}

func (r *apptRepo) list(keep func(appointments.Appointment) bool) ([]appointments.Appointment, error) {
	st := r.st
	st.mu.RLock()
	defer st.mu.RUnlock()

	out := make([]appointments.Appointment, 0)
	for _, a := range st.appts {
		if keep(a) {
			out = append(out, a)
		}
	}

	// Orden cronológico por fecha de cita; ID como desempate estable.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})

	return out, nil
}
