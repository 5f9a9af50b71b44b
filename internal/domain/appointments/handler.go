package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"vet-appointments/internal/domain/pets"
	"vet-appointments/internal/middleware"
	"vet-appointments/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, petsSvc *pets.Service) {
	r.Route("/appointments", func(ar chi.Router) {
		// Reservar (el requester queda como dueño de la cita)
		ar.Post("/", createHandler(svc, petsSvc))

		// Mis citas: por rol (dueño ve las suyas, vet ve su agenda)
		ar.Get("/", listMineHandler(svc))

		ar.Get("/{apptID}", getHandler(svc))

		// Lado veterinario
		ar.Post("/{apptID}/confirm", confirmHandler(svc))
		ar.Post("/{apptID}/attend", attendHandler(svc))
		ar.Post("/{apptID}/reject", rejectHandler(svc))

		// Cualquiera de las dos partes, dentro de la ventana
		ar.Post("/{apptID}/cancel", cancelHandler(svc))
	})
}

type createRequest struct {
	PetID  string `json:"pet_id"`
	VetID  string `json:"vet_id"`
	SlotID string `json:"slot_id"`
	Reason string `json:"reason"`
}

type attendRequest struct {
	Findings       string `json:"findings"`
	TestsPerformed string `json:"tests_performed"`
	Treatment      string `json:"treatment"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

type appointmentResponse struct {
	ID          string    `json:"id"`
	Reason      string    `json:"reason"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	CancelReason string `json:"cancel_reason,omitempty"`

	CenterID string `json:"center_id,omitempty"`
	RoomID   string `json:"room_id,omitempty"`
	VetID    string `json:"vet_id"`
	OwnerID  string `json:"owner_id"`
	PetID    string `json:"pet_id"`
	SlotID   string `json:"slot_id,omitempty"`

	Findings       string `json:"findings,omitempty"`
	TestsPerformed string `json:"tests_performed,omitempty"`
	Treatment      string `json:"treatment,omitempty"`
}

func createHandler(svc *Service, petsSvc *pets.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		// La mascota debe ser del requester (admin puede reservar por otros)
		ownerID, err := petsSvc.OwnerOf(r.Context(), req.PetID)
		if err != nil {
			http.Error(w, "pet not found", http.StatusNotFound)
			return
		}
		if ownerID != claims.UserID && !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, err := svc.Create(r.Context(), CreateInput{
			OwnerID: ownerID,
			PetID:   req.PetID,
			VetID:   req.VetID,
			SlotID:  req.SlotID,
			Reason:  req.Reason,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toResponse(a))
	}
}

func listMineHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var (
			items []Appointment
			err   error
		)
		if claims.Role == auth.RoleVet {
			items, err = svc.ListByVet(r.Context(), claims.UserID)
		} else {
			items, err = svc.ListByOwner(r.Context(), claims.UserID)
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toResponse(a))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "apptID"))
		if err != nil {
			writeError(w, err)
			return
		}

		if !isParticipant(claims, a) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func confirmHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "apptID")
		if !authorizeVetSide(w, r, svc, claims, id) {
			return
		}

		a, err := svc.Confirm(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func attendHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "apptID")
		if !authorizeVetSide(w, r, svc, claims, id) {
			return
		}

		var req attendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Attend(r.Context(), id, AttendInput{
			Findings:       req.Findings,
			TestsPerformed: req.TestsPerformed,
			Treatment:      req.Treatment,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func rejectHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "apptID")
		if !authorizeVetSide(w, r, svc, claims, id) {
			return
		}

		var req reasonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Reject(r.Context(), id, req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func cancelHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id := chi.URLParam(r, "apptID")
		current, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !isParticipant(claims, current) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req reasonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Cancel(r.Context(), id, req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponse(a))
	}
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

// isParticipant: dueño o veterinario de la cita; admin siempre.
func isParticipant(claims auth.Claims, a Appointment) bool {
	return claims.UserID == a.OwnerID || claims.UserID == a.VetID || claims.IsAdmin()
}

// authorizeVetSide: solo el veterinario de la cita (o admin).
func authorizeVetSide(w http.ResponseWriter, r *http.Request, svc *Service, claims auth.Claims, id string) bool {
	a, err := svc.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return false
	}
	if claims.UserID != a.VetID && !claims.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMissingReason):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrSlotUnavailable),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrCancellationWindowExpired),
		errors.Is(err, ErrImmutableHistory),
		errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:             a.ID,
		Reason:         a.Reason,
		ScheduledAt:    a.ScheduledAt,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		CancelReason:   a.CancelReason,
		CenterID:       a.CenterID,
		RoomID:         a.RoomID,
		VetID:          a.VetID,
		OwnerID:        a.OwnerID,
		PetID:          a.PetID,
		SlotID:         a.SlotID,
		Findings:       a.Findings,
		TestsPerformed: a.TestsPerformed,
		Treatment:      a.Treatment,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
