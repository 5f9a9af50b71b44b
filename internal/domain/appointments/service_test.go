package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vet-appointments/internal/domain/slots"
)

// -------------------------
// Test store (slots + citas bajo un mutex, como el adapter in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testStore struct {
	mu    sync.Mutex
	slots map[string]slots.TimeSlot
	appts map[string]Appointment
}

func newTestStore() *testStore {
	return &testStore{
		slots: map[string]slots.TimeSlot{},
		appts: map[string]Appointment{},
	}
}

func (st *testStore) addSlot(s slots.TimeSlot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.slots[s.ID] = s
}

func (st *testStore) slotStatus(id string) slots.Status {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.slots[id].Status
}

type testSlotSrc struct{ st *testStore }

func (s *testSlotSrc) GetByID(ctx context.Context, id string) (slots.TimeSlot, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	slot, ok := s.st.slots[id]
	if !ok {
		return slots.TimeSlot{}, errRepoNotFound
	}
	return slot, nil
}

type testRepo struct{ st *testStore }

func (r *testRepo) CreateReservingSlot(ctx context.Context, a Appointment) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.slots[a.SlotID]
	if !ok || s.Status != slots.StatusFree {
		return ErrSlotUnavailable
	}
	s.Status = slots.StatusReserved
	st.slots[a.SlotID] = s
	st.appts[a.ID] = a
	return nil
}

func (r *testRepo) UpdateReleasingSlot(ctx context.Context, a Appointment) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.appts[a.ID]; !ok {
		return errRepoNotFound
	}
	if s, ok := st.slots[a.SlotID]; ok {
		s.Status = slots.StatusFree
		st.slots[a.SlotID] = s
	}
	st.appts[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Appointment) error {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.appts[a.ID]; !ok {
		return errRepoNotFound
	}
	st.appts[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Appointment, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	a, ok := st.appts[id]
	if !ok {
		return Appointment{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.OwnerID == ownerID })
}

func (r *testRepo) ListByVet(ctx context.Context, vetID string) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.VetID == vetID })
}

func (r *testRepo) ListAttendedByPet(ctx context.Context, petID string) ([]Appointment, error) {
	return r.list(func(a Appointment) bool { return a.PetID == petID && a.Status == StatusAttended })
}

func (r *testRepo) HasAnyForPet(ctx context.Context, petID string) (bool, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, a := range st.appts {
		if a.PetID == petID {
			return true, nil
		}
	}
	return false, nil
}

func (r *testRepo) list(keep func(Appointment) bool) ([]Appointment, error) {
	st := r.st
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]Appointment, 0)
	for _, a := range st.appts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

// -------------------------
// Helpers
// -------------------------

type failingNotifier struct{ calls int }

func (n *failingNotifier) AppointmentCreated(ctx context.Context, a Appointment) error {
	n.calls++
	return errors.New("notify: downstream unavailable")
}

func (n *failingNotifier) AppointmentCanceled(ctx context.Context, a Appointment, reason string) error {
	n.calls++
	return errors.New("notify: downstream unavailable")
}

func newTestService(st *testStore) *Service {
	return NewService(&testRepo{st: st}, &testSlotSrc{st: st}, nil, nil, nil)
}

func freeSlot(id string, start time.Time) slots.TimeSlot {
	return slots.TimeSlot{
		ID:       id,
		VetID:    "vet-1",
		CenterID: "center-1",
		RoomID:   "room-1",
		StartsAt: start,
		EndsAt:   start.Add(30 * time.Minute),
		Status:   slots.StatusFree,
	}
}

func mustCreate(t *testing.T, svc *Service, slotID string) Appointment {
	t.Helper()
	a, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-1",
		PetID:   "pet-1",
		VetID:   "vet-1",
		SlotID:  slotID,
		Reason:  "control anual",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return a
}

// -------------------------
// Tests
// -------------------------

func TestService_Create_ReservesSlot_AndDefaultsReason(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	start := now.Add(48 * time.Hour)
	st.addSlot(freeSlot("slot-1", start))

	a, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-1",
		PetID:   "pet-1",
		VetID:   "vet-1",
		SlotID:  "slot-1",
		Reason:  "   ",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if a.Status != StatusScheduled {
		t.Fatalf("expected scheduled, got %s", a.Status)
	}
	if a.Reason != DefaultReason {
		t.Fatalf("expected default reason, got %q", a.Reason)
	}
	if !a.ScheduledAt.Equal(start) {
		t.Fatalf("expected ScheduledAt = slot start")
	}
	if a.CenterID != "center-1" || a.RoomID != "room-1" {
		t.Fatalf("expected center/room copied from slot")
	}
	if st.slotStatus("slot-1") != slots.StatusReserved {
		t.Fatalf("expected slot reserved after create")
	}
}

func TestService_Create_ValidatesInput(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))

	cases := []CreateInput{
		{PetID: "pet-1", VetID: "vet-1", SlotID: "slot-1"},
		{OwnerID: "owner-1", VetID: "vet-1", SlotID: "slot-1"},
		{OwnerID: "owner-1", PetID: "pet-1", SlotID: "slot-1"},
		{OwnerID: "owner-1", PetID: "pet-1", VetID: "vet-1"},
	}
	for i, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}

	// vet que no corresponde al slot
	if _, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-1", PetID: "pet-1", VetID: "vet-2", SlotID: "slot-1",
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("wrong vet: expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Create_RejectsOutsideBookingWindow(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	st.addSlot(freeSlot("too-soon", now.Add(6*time.Hour)))
	st.addSlot(freeSlot("past", now.Add(-time.Hour)))
	st.addSlot(freeSlot("beyond", now.Add(15*24*time.Hour)))

	for _, slotID := range []string{"too-soon", "past", "beyond"} {
		_, err := svc.Create(context.Background(), CreateInput{
			OwnerID: "owner-1", PetID: "pet-1", VetID: "vet-1", SlotID: slotID,
		})
		if !errors.Is(err, ErrSlotUnavailable) {
			t.Fatalf("slot %s: expected ErrSlotUnavailable, got %v", slotID, err)
		}
		if st.slotStatus(slotID) != slots.StatusFree {
			t.Fatalf("slot %s: rejected booking must not reserve the slot", slotID)
		}
	}
}

func TestService_Create_SlotTaken(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))

	mustCreate(t, svc, "slot-1")

	_, err := svc.Create(context.Background(), CreateInput{
		OwnerID: "owner-2", PetID: "pet-2", VetID: "vet-1", SlotID: "slot-1",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable for taken slot, got %v", err)
	}
}

func TestService_Create_ConcurrentSameSlot_ExactlyOneWinner(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))

	const n = 16
	results := make(chan error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), CreateInput{
				OwnerID: "owner-1",
				PetID:   "pet-1",
				VetID:   "vet-1",
				SlotID:  "slot-1",
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable):
			losses++
		default:
			t.Fatalf("unexpected error from concurrent create: %v", err)
		}
	}

	if wins != 1 {
		t.Fatalf("expected exactly 1 winner, got %d (losses=%d)", wins, losses)
	}
	if st.slotStatus("slot-1") != slots.StatusReserved {
		t.Fatalf("expected slot reserved after race")
	}
}

func TestService_Confirm_OnlyFromScheduled(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))

	a := mustCreate(t, svc, "slot-1")

	confirmed, err := svc.Confirm(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("Confirm returned error: %v", err)
	}
	if confirmed.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}

	// doble confirm: transición inválida y estado intacto
	if _, err := svc.Confirm(context.Background(), a.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double confirm, got %v", err)
	}
	cur, err := svc.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if cur.Status != StatusConfirmed {
		t.Fatalf("double confirm must not change state, got %s", cur.Status)
	}
}

func TestService_Attend_RecordsClinicalFields(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))

	a := mustCreate(t, svc, "slot-1")
	if _, err := svc.Confirm(context.Background(), a.ID); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}

	attendedAt := now.Add(48 * time.Hour)
	svc.now = func() time.Time { return attendedAt }

	attended, err := svc.Attend(context.Background(), a.ID, AttendInput{
		Findings:       "  otitis externa ",
		TestsPerformed: "citología de oído",
		Treatment:      "gotas óticas 7 días",
	})
	if err != nil {
		t.Fatalf("Attend returned error: %v", err)
	}
	if attended.Status != StatusAttended {
		t.Fatalf("expected attended, got %s", attended.Status)
	}
	if attended.Findings != "otitis externa" {
		t.Fatalf("expected trimmed findings, got %q", attended.Findings)
	}
	if !attended.UpdatedAt.Equal(attendedAt) {
		t.Fatalf("expected UpdatedAt = attend time")
	}

	// una cita atendida es inmutable
	if _, err := svc.Attend(context.Background(), a.ID, AttendInput{Findings: "otro"}); !errors.Is(err, ErrImmutableHistory) {
		t.Fatalf("expected ErrImmutableHistory, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), a.ID, "ya no"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition canceling attended, got %v", err)
	}
}

func TestService_Attend_DirectFromScheduled(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))

	a := mustCreate(t, svc, "slot-1")

	// walk-in: el vet atiende sin confirmación previa
	attended, err := svc.Attend(context.Background(), a.ID, AttendInput{Findings: "sano"})
	if err != nil {
		t.Fatalf("Attend from scheduled returned error: %v", err)
	}
	if attended.Status != StatusAttended {
		t.Fatalf("expected attended, got %s", attended.Status)
	}
}

func TestService_Cancel_WindowBoundary(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	start := base.Add(48 * time.Hour)

	svc.now = func() time.Time { return base }
	st.addSlot(freeSlot("slot-1", start))
	a := mustCreate(t, svc, "slot-1")

	// exactamente 3h antes: ya no se puede
	svc.now = func() time.Time { return start.Add(-CancelLead) }
	if _, err := svc.Cancel(context.Background(), a.ID, "imprevisto"); !errors.Is(err, ErrCancellationWindowExpired) {
		t.Fatalf("at boundary: expected ErrCancellationWindowExpired, got %v", err)
	}
	if st.slotStatus("slot-1") != slots.StatusReserved {
		t.Fatalf("failed cancel must not release the slot")
	}

	// 2h59m59s... un segundo más de margen: sí se puede
	svc.now = func() time.Time { return start.Add(-CancelLead - time.Second) }
	canceled, err := svc.Cancel(context.Background(), a.ID, "imprevisto")
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if canceled.Status != StatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if canceled.CancelReason != "imprevisto" {
		t.Fatalf("expected cancel reason recorded, got %q", canceled.CancelReason)
	}
	if st.slotStatus("slot-1") != slots.StatusFree {
		t.Fatalf("expected slot released after cancel")
	}
}

func TestService_Cancel_RequiresReason(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))
	a := mustCreate(t, svc, "slot-1")

	if _, err := svc.Cancel(context.Background(), a.ID, "   "); !errors.Is(err, ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}
}

func TestService_Reject_OnlyScheduled_ReleasesSlot(t *testing.T) {
	st := newTestStore()
	svc := newTestService(st)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))
	st.addSlot(freeSlot("slot-2", now.Add(49*time.Hour)))

	a := mustCreate(t, svc, "slot-1")

	if _, err := svc.Reject(context.Background(), a.ID, ""); !errors.Is(err, ErrMissingReason) {
		t.Fatalf("expected ErrMissingReason, got %v", err)
	}

	rejected, err := svc.Reject(context.Background(), a.ID, "agenda bloqueada")
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if st.slotStatus("slot-1") != slots.StatusFree {
		t.Fatalf("expected slot released after reject")
	}

	// confirmada ya no se rechaza
	b := mustCreate(t, svc, "slot-2")
	if _, err := svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("Confirm error: %v", err)
	}
	if _, err := svc.Reject(context.Background(), b.ID, "tarde"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition rejecting confirmed, got %v", err)
	}
}

func TestService_NotifierFailure_DoesNotAffectOutcome(t *testing.T) {
	st := newTestStore()
	notifier := &failingNotifier{}
	svc := NewService(&testRepo{st: st}, &testSlotSrc{st: st}, notifier, nil, nil)

	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	st.addSlot(freeSlot("slot-1", now.Add(48*time.Hour)))

	a := mustCreate(t, svc, "slot-1")
	if notifier.calls != 1 {
		t.Fatalf("expected notifier called once, got %d", notifier.calls)
	}

	canceled, err := svc.Cancel(context.Background(), a.ID, "cambio de planes")
	if err != nil {
		t.Fatalf("Cancel returned error despite notifier failure: %v", err)
	}
	if canceled.Status != StatusCanceled {
		t.Fatalf("expected canceled, got %s", canceled.Status)
	}
	if notifier.calls != 2 {
		t.Fatalf("expected notifier called twice, got %d", notifier.calls)
	}
}

func TestService_GetByID_Unknown(t *testing.T) {
	svc := newTestService(newTestStore())

	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetByID(context.Background(), "  "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank id, got %v", err)
	}
}
