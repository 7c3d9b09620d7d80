package repository

import (
	"context"

	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id string) (*entity.Category, error)
	Update(ctx context.Context, c *entity.Category) error
	List(ctx context.Context, activeOnly bool) ([]*entity.Category, error)
	// InUse indica si algún ítem referencia la categoría.
	InUse(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, s *entity.Supplier) error
	GetByID(ctx context.Context, id string) (*entity.Supplier, error)
	Update(ctx context.Context, s *entity.Supplier) error
	List(ctx context.Context, activeOnly bool) ([]*entity.Supplier, error)
	InUse(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
