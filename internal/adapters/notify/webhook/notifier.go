package webhook

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-appointments/internal/domain/appointments"
	"vet-appointments/internal/platform/httpclient"
)

var (
	ErrNotConfigured = errors.New("webhook notifier not configured")
)

// Config del notificador webhook.
// URL normalmente viene de NOTIFY_WEBHOOK_URL en quien lo instancie.
type Config struct {
	URL     string
	Token   string // opcional: se manda como Bearer
	Timeout time.Duration
}

// Notifier POSTea los eventos de cita como JSON a un endpoint externo.
// El delivery real (correo, push) es responsabilidad del receptor.
type Notifier struct {
	url    string
	token  string
	client *httpclient.Client
}

func New(cfg Config) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{
		url:    strings.TrimSpace(cfg.URL),
		token:  strings.TrimSpace(cfg.Token),
		client: httpclient.New(timeout),
	}
}

// NewWithClient permite inyectar el http client (tests).
func NewWithClient(cfg Config, client *httpclient.Client) *Notifier {
	n := New(cfg)
	if client != nil {
		n.client = client
	}
	return n
}

type event struct {
	Event         string    `json:"event"`
	AppointmentID string    `json:"appointment_id"`
	Status        string    `json:"status"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	VetID         string    `json:"vet_id"`
	OwnerID       string    `json:"owner_id"`
	PetID         string    `json:"pet_id"`
	Reason        string    `json:"reason,omitempty"`
}

func (n *Notifier) AppointmentCreated(ctx context.Context, a appointments.Appointment) error {
	return n.post(ctx, event{
		Event:         "appointment.created",
		AppointmentID: a.ID,
		Status:        string(a.Status),
		ScheduledAt:   a.ScheduledAt,
		VetID:         a.VetID,
		OwnerID:       a.OwnerID,
		PetID:         a.PetID,
	})
}

func (n *Notifier) AppointmentCanceled(ctx context.Context, a appointments.Appointment, reason string) error {
	return n.post(ctx, event{
		Event:         "appointment.canceled",
		AppointmentID: a.ID,
		Status:        string(a.Status),
		ScheduledAt:   a.ScheduledAt,
		VetID:         a.VetID,
		OwnerID:       a.OwnerID,
		PetID:         a.PetID,
		Reason:        reason,
	})
}

func (n *Notifier) post(ctx context.Context, ev event) error {
	if n == nil || n.url == "" {
		return ErrNotConfigured
	}

	headers := map[string]string{}
	if n.token != "" {
		headers["Authorization"] = "Bearer " + n.token
	}

	return n.client.DoJSON(ctx, http.MethodPost, n.url, headers, ev, nil)
}
