package slots

import (
	"testing"
	"time"
)

func slotAt(id string, start time.Time, status Status) TimeSlot {
	return TimeSlot{
		ID:       id,
		VetID:    "vet-1",
		StartsAt: start,
		EndsAt:   start.Add(30 * time.Minute),
		Status:   status,
	}
}

func TestAvailable_FiltersByStatusLeadAndHorizon(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	in := []TimeSlot{
		slotAt("past", now.Add(-2*time.Hour), StatusFree),
		slotAt("too-soon", now.Add(6*time.Hour), StatusFree),
		slotAt("at-lead", now.Add(MinLead), StatusFree), // justo 24h: entra
		slotAt("ok-1", now.Add(48*time.Hour), StatusFree),
		slotAt("reserved", now.Add(49*time.Hour), StatusReserved),
		slotAt("blocked", now.Add(50*time.Hour), StatusBlocked),
		slotAt("at-horizon", now.Add(Horizon), StatusFree), // justo 14d: entra
		slotAt("beyond", now.Add(Horizon+time.Minute), StatusFree),
	}

	got := Available(in, now)

	want := []string{"at-lead", "ok-1", "at-horizon"}
	if len(got) != len(want) {
		ids := make([]string, 0, len(got))
		for _, s := range got {
			ids = append(ids, s.ID)
		}
		t.Fatalf("expected %v, got %v", want, ids)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestAvailable_EmptyInput(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	if got := Available(nil, now); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}

func TestGroupByDay_GroupsChronologically(t *testing.T) {
	d1 := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)

	in := []TimeSlot{
		slotAt("a", d1, StatusFree),
		slotAt("b", d1.Add(time.Hour), StatusFree),
		slotAt("c", d2, StatusFree),
	}

	groups := GroupByDay(in)
	if len(groups) != 2 {
		t.Fatalf("expected 2 day groups, got %d", len(groups))
	}
	if groups[0].Date != "2026-06-01" || len(groups[0].Slots) != 2 {
		t.Fatalf("unexpected first group: %s with %d slots", groups[0].Date, len(groups[0].Slots))
	}
	if groups[1].Date != "2026-06-02" || len(groups[1].Slots) != 1 {
		t.Fatalf("unexpected second group: %s with %d slots", groups[1].Date, len(groups[1].Slots))
	}
	if groups[0].Slots[0].ID != "a" || groups[0].Slots[1].ID != "b" {
		t.Fatalf("order within group not preserved")
	}
}

func TestOverlaps_HalfOpenIntervals(t *testing.T) {
	base := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	a := slotAt("a", base, StatusFree)                  // 09:00-09:30
	b := slotAt("b", base.Add(30*time.Minute), StatusFree) // 09:30-10:00
	c := slotAt("c", base.Add(15*time.Minute), StatusFree) // 09:15-09:45

	// contiguos no solapan
	if Overlaps(a, b) {
		t.Fatalf("contiguous slots should not overlap")
	}
	if !Overlaps(a, c) || !Overlaps(c, b) {
		t.Fatalf("expected overlap for intersecting slots")
	}
	if !Overlaps(a, a) {
		t.Fatalf("slot should overlap itself")
	}
}
