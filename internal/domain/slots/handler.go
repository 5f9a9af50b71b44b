package slots

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-appointments/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/vets/{vetID}/slots", func(sr chi.Router) {
		// Publicar agenda (el propio vet, o admin)
		sr.Post("/", scheduleHandler(svc))

		// Disponibilidad agrupada por día (cualquier usuario autenticado)
		sr.Get("/", availabilityHandler(svc))
	})
}

type scheduleRequest struct {
	CenterID     string `json:"center_id"`
	RoomID       string `json:"room_id"`
	From         string `json:"from"` // YYYY-MM-DD
	To           string `json:"to"`   // YYYY-MM-DD
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	EveryMinutes int    `json:"every_minutes"`
}

type slotResponse struct {
	ID       string    `json:"id"`
	VetID    string    `json:"vet_id"`
	CenterID string    `json:"center_id,omitempty"`
	RoomID   string    `json:"room_id,omitempty"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   string    `json:"status"`
}

type dayGroupResponse struct {
	Date  string         `json:"date"`
	Slots []slotResponse `json:"slots"`
}

func scheduleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		vetID := chi.URLParam(r, "vetID")

		// Un vet solo publica su propia agenda; admin puede publicar ajena.
		if !claims.IsStaff() || (claims.UserID != vetID && !claims.IsAdmin()) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req scheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		batch, err := svc.ScheduleRange(r.Context(), vetID, ScheduleInput{
			CenterID:     req.CenterID,
			RoomID:       req.RoomID,
			From:         req.From,
			To:           req.To,
			StartHM:      req.StartTime,
			EndHM:        req.EndTime,
			EveryMinutes: req.EveryMinutes,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrInvalidWindow), errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrOverlap):
				http.Error(w, err.Error(), http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		out := make([]slotResponse, 0, len(batch))
		for _, s := range batch {
			out = append(out, toSlotResponse(s))
		}

		writeJSON(w, http.StatusCreated, out)
	}
}

func availabilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var from, to time.Time
		if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "from must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			from = t
		}
		if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
			t, err := time.Parse("2006-01-02", v)
			if err != nil {
				http.Error(w, "to must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			// "to" es inclusivo: se consulta hasta el final de ese día.
			to = t.AddDate(0, 0, 1)
		}

		groups, err := svc.Availability(r.Context(), chi.URLParam(r, "vetID"), from, to)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dayGroupResponse, 0, len(groups))
		for _, g := range groups {
			dg := dayGroupResponse{Date: g.Date, Slots: make([]slotResponse, 0, len(g.Slots))}
			for _, s := range g.Slots {
				dg.Slots = append(dg.Slots, toSlotResponse(s))
			}
			out = append(out, dg)
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func toSlotResponse(s TimeSlot) slotResponse {
	return slotResponse{
		ID:       s.ID,
		VetID:    s.VetID,
		CenterID: s.CenterID,
		RoomID:   s.RoomID,
		StartsAt: s.StartsAt,
		EndsAt:   s.EndsAt,
		Status:   string(s.Status),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
