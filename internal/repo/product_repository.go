package repo

import (
	"context"
	"errors"

	"github.com/rogerio-castellano/product-catalog/internal/models"
)

// ErrProductNotFound is returned when a product is not found in the repository.
var ErrProductNotFound = errors.New("product not found")

// UpdateResult reports how a conditional update ended.
type UpdateResult int

const (
	// UpdateOK means the record matched the expected version and was written.
	UpdateOK UpdateResult = iota
	// UpdateConflict means the version changed since it was read, or the
	// backend cannot tell a stale version from a missing record.
	UpdateConflict
	// UpdateGone means the record no longer exists.
	UpdateGone
)

func (r UpdateResult) String() string {
	switch r {
	case UpdateOK:
		return "ok"
	case UpdateConflict:
		return "conflict"
	case UpdateGone:
		return "gone"
	default:
		return "unknown"
	}
}

// ProductRepository defines the interface for product data operations.
type ProductRepository interface {
	GetByID(ctx context.Context, id int) (models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	// Create assigns the product a new id and version 1.
	Create(ctx context.Context, product models.Product) (models.Product, error)
	// UpdateIfMatching writes product only if the stored version still equals
	// product.Version, bumping the version on success.
	UpdateIfMatching(ctx context.Context, product models.Product) (UpdateResult, error)
	Remove(ctx context.Context, product models.Product) error
}
