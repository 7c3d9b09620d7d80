package repository

import (
	"context"

	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// GoodsOutFilter filtros del listado de solicitudes.
type GoodsOutFilter struct {
	Status      string
	RequestedBy string
	ItemID      string
}

// GoodsOutRequestRepository define el puerto de persistencia de solicitudes de salida.
// GetByID y GetForUpdate devuelven (nil, nil) si no existe.
type GoodsOutRequestRepository interface {
	Create(ctx context.Context, r *entity.GoodsOutRequest) error
	GetByID(ctx context.Context, id string) (*entity.GoodsOutRequest, error)
	GetForUpdate(ctx context.Context, id string) (*entity.GoodsOutRequest, error)
	// UpdateDecision persiste status, approved_by, approved_at, rejection_reason y completed_at.
	UpdateDecision(ctx context.Context, r *entity.GoodsOutRequest) error
	List(ctx context.Context, f GoodsOutFilter, limit, offset int) ([]*entity.GoodsOutRequest, int, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
