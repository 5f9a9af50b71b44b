package centers

import "context"

type Repository interface {
	Create(ctx context.Context, c Center) error
	GetByID(ctx context.Context, id string) (Center, error)
	List(ctx context.Context) ([]Center, error)
}
