package centers

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
	r.Route("/centers", func(cr chi.Router) {
		// Alta de centros: solo admin
		cr.Post("/", createCenterHandler(svc))

		cr.Get("/", listCentersHandler(svc))
		cr.Get("/{centerID}", getCenterHandler(svc))
	})
}

type createCenterRequest struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	Email   string   `json:"email"`
	Phone   string   `json:"phone"`
	OpenHM  string   `json:"open_time"`
	CloseHM string   `json:"close_time"`
	Rooms   []string `json:"rooms"`
}

type roomResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type centerResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Address   string         `json:"address"`
	Email     string         `json:"email,omitempty"`
	Phone     string         `json:"phone,omitempty"`
	OpenHM    string         `json:"open_time"`
	CloseHM   string         `json:"close_time"`
	Rooms     []roomResponse `json:"rooms"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func createCenterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createCenterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), CreateInput{
			Name:    req.Name,
			Address: req.Address,
			Email:   req.Email,
			Phone:   req.Phone,
			OpenHM:  req.OpenHM,
			CloseHM: req.CloseHM,
			Rooms:   req.Rooms,
		})
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toCenterResponse(c))
	}
}

func listCentersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]centerResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCenterResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getCenterHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "centerID"))
		if err != nil {
			http.Error(w, "center not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toCenterResponse(c))
	}
}

func toCenterResponse(c Center) centerResponse {
	rooms := make([]roomResponse, 0, len(c.Rooms))
	for _, rm := range c.Rooms {
		rooms = append(rooms, roomResponse{ID: rm.ID, Name: rm.Name})
	}
	return centerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		Email:     c.Email,
		Phone:     c.Phone,
		OpenHM:    c.OpenHM,
		CloseHM:   c.CloseHM,
		Rooms:     rooms,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
