package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// ItemFilter filtros del listado de ítems. Campos vacíos no filtran.
type ItemFilter struct {
	Search     string // sku, nombre, marca o modelo (ILIKE)
	CategoryID string
	SupplierID string
	Status     string
	Condition  string
	LowStock   bool
}

// InventoryItemRepository define el puerto de persistencia para InventoryItem (DIP).
// GetByID y GetForUpdate devuelven (nil, nil) si el ítem no existe.
type InventoryItemRepository interface {
	Create(ctx context.Context, item *entity.InventoryItem) error
	GetByID(ctx context.Context, id string) (*entity.InventoryItem, error)
	// GetForUpdate bloquea la fila hasta el fin de la transacción (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error)
	GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error)
	// GetByCode busca por SKU, código de barras o QR (lo que lee un escáner).
	GetByCode(ctx context.Context, code string) (*entity.InventoryItem, error)
	// Update persiste campos descriptivos; nunca toca quantity_in_stock.
	Update(ctx context.Context, item *entity.InventoryItem) error
	// UpdateStock es la única escritura del snapshot de cantidad.
	UpdateStock(ctx context.Context, id string, quantity int64, purchasePrice decimal.Decimal) error
	// Delete borra el ítem junto con sus solicitudes de salida y su historial de movimientos.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ItemFilter, limit, offset int) ([]*entity.InventoryItem, int, error)
}
