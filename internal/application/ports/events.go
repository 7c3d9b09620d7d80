package ports

import (
	"context"

	"github.com/jhoicas/ispstock-api/internal/application/dto"
)

// Eventos emitidos al colaborador de notificaciones en tiempo real.
const (
	EventInventoryUpdate  = "inventory_update"
	EventGoodsOutCreated  = "good_out_request_created"
	EventGoodsOutApproved = "good_out_request_approved"
	EventGoodsOutRejected = "good_out_request_rejected"
)

// Acciones de EventInventoryUpdate.
const (
	ActionCreate          = "create"
	ActionUpdate          = "update"
	ActionStockAdjustment = "stock_adjustment"
	ActionDelete          = "delete"
)

// EventPublisher puerto de salida hacia el canal de notificaciones.
// Se invoca solo después del commit; no bloquea ni devuelve error al caso de uso.
type EventPublisher interface {
	Publish(ctx context.Context, event string, payload any)
}

// InventoryUpdate payload de EventInventoryUpdate.
type InventoryUpdate struct {
	Action   string                `json:"action"`
	ItemID   string                `json:"item_id"`
	Item     *dto.ItemResponse     `json:"item,omitempty"`
	Movement *dto.MovementResponse `json:"movement,omitempty"`
}

// GoodsOutUpdate payload de los eventos de solicitudes de salida.
type GoodsOutUpdate struct {
	Request  *dto.GoodsOutResponse `json:"request"`
	Movement *dto.MovementResponse `json:"movement,omitempty"`
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) {}
