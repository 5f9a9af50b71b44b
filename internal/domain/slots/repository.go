package slots

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrOverlap: el batch pisa slots ya persistidos del mismo vet/consultorio.
	ErrOverlap = errors.New("slot overlap")
)

type Repository interface {
	// BulkCreate persiste un batch generado. Falla completo con ErrOverlap
	// si algún slot se solapa con los existentes del mismo vet/consultorio.
	BulkCreate(ctx context.Context, batch []TimeSlot) error

	GetByID(ctx context.Context, id string) (TimeSlot, error)

	// ListByVetRange devuelve slots con inicio en [from, to), orden ascendente
	// por inicio y luego consultorio.
	ListByVetRange(ctx context.Context, vetID string, from, to time.Time) ([]TimeSlot, error)
}
