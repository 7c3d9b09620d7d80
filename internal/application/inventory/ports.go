package inventory

import (
	"context"

	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// TxRepos repositorios atados a la misma transacción.
type TxRepos struct {
	Items     repository.InventoryItemRepository
	Movements repository.MovementRepository
	GoodsOut  repository.GoodsOutRequestRepository
}

// UnitOfWork ejecuta fn dentro de una transacción de BD: Commit si fn devuelve nil,
// Rollback si devuelve error o entra en pánico. Es la única forma de escribir stock.
type UnitOfWork interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}
