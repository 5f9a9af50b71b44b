package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"vet-appointments/internal/domain/centers"
)

type centerRepo struct {
	mu   sync.RWMutex
	byID map[string]centers.Center
}

func NewCenterRepo() centers.Repository {
	return &centerRepo{
		byID: make(map[string]centers.Center),
	}
}

func (r *centerRepo) Create(ctx context.Context, c centers.Center) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("center id required")
	}
	if _, exists := r.byID[c.ID]; exists {
		return errors.New("center already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *centerRepo) GetByID(ctx context.Context, id string) (centers.Center, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return centers.Center{}, ErrNotFound
	}
	return c, nil
}

func (r *centerRepo) List(ctx context.Context) ([]centers.Center, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]centers.Center, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}
