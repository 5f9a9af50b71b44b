package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/httpclient"
)

func TestNotifier_AppointmentCreated_PostsEvent(t *testing.T) {
	var got event
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWithClient(Config{URL: srv.URL, Token: "secreto"}, httpclient.New(2*time.Second))

	a := appointments.Appointment{
		ID:          "appt-1",
		Status:      appointments.StatusScheduled,
		ScheduledAt: time.Date(2026, 6, 3, 9, 0, 0, 0, time.UTC),
		VetID:       "vet-1",
		OwnerID:     "owner-1",
		PetID:       "pet-1",
	}
	if err := n.AppointmentCreated(context.Background(), a); err != nil {
		t.Fatalf("AppointmentCreated returned error: %v", err)
	}

	if got.Event != "appointment.created" {
		t.Fatalf("expected appointment.created, got %q", got.Event)
	}
	if got.AppointmentID != "appt-1" || got.Status != "scheduled" {
		t.Fatalf("unexpected event payload: %+v", got)
	}
	if gotAuth != "Bearer secreto" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
}

func TestNotifier_AppointmentCanceled_IncludesReason(t *testing.T) {
	var got event

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(Config{URL: srv.URL})

	a := appointments.Appointment{ID: "appt-1", Status: appointments.StatusCanceled}
	if err := n.AppointmentCanceled(context.Background(), a, "dueño de viaje"); err != nil {
		t.Fatalf("AppointmentCanceled returned error: %v", err)
	}
	if got.Event != "appointment.canceled" || got.Reason != "dueño de viaje" {
		t.Fatalf("unexpected event payload: %+v", got)
	}
}

func TestNotifier_ReceiverError_Propagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "teapot", http.StatusTeapot)
	}))
	defer srv.Close()

	n := New(Config{URL: srv.URL})

	err := n.AppointmentCreated(context.Background(), appointments.Appointment{ID: "appt-1"})
	var httpErr *httpclient.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.StatusCode != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", httpErr.StatusCode)
	}
}

func TestNotifier_NotConfigured(t *testing.T) {
	n := New(Config{})
	if err := n.AppointmentCreated(context.Background(), appointments.Appointment{ID: "x"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
