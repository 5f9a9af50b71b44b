package history

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"vet-appointments/internal/domain/pets"
	"vet-appointments/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	// Historial clínico de la mascota (dueño o staff). Solo lectura:
	// el historial crece únicamente vía la transición attend.
	r.Get("/pets/{petID}/history", listHandler(svc, petsSvc))
}

type entryResponse struct {
	AppointmentID string    `json:"appointment_id"`
	Reason        string    `json:"reason"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	AttendedAt    time.Time `json:"attended_at"`

	VetID    string `json:"vet_id"`
	CenterID string `json:"center_id,omitempty"`

	Findings       string `json:"findings,omitempty"`
	TestsPerformed string `json:"tests_performed,omitempty"`
	Treatment      string `json:"treatment,omitempty"`
}

func listHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		petID := chi.URLParam(r, "petID")
		ownerID, err := petsSvc.OwnerOf(r.Context(), petID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID && !claims.IsStaff() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		order := OrderAsc
		if strings.EqualFold(r.URL.Query().Get("order"), "desc") {
			order = OrderDesc
		}

		items, err := svc.ListForPet(r.Context(), petID, order)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, entryResponse{
				AppointmentID:  e.AppointmentID,
				Reason:         e.Reason,
				ScheduledAt:    e.ScheduledAt,
				AttendedAt:     e.AttendedAt,
				VetID:          e.VetID,
				CenterID:       e.CenterID,
				Findings:       e.Findings,
				TestsPerformed: e.TestsPerformed,
				Treatment:      e.Treatment,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
