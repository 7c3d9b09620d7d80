package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/ports"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/inventory"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
)

// AdjustStockUseCase es la única vía autorizada para cambiar quantity_in_stock desde la API.
// Registro y ledger se escriben en la misma transacción con bloqueo de fila.
type AdjustStockUseCase struct {
	uow     UnitOfWork
	events  ports.EventPublisher
	metrics ports.MetricsRecorder
	log     zerolog.Logger
}

// NewAdjustStockUseCase construye el caso de uso.
func NewAdjustStockUseCase(uow UnitOfWork, events ports.EventPublisher, metrics ports.MetricsRecorder, log zerolog.Logger) *AdjustStockUseCase {
	return &AdjustStockUseCase{uow: uow, events: events, metrics: metrics, log: log}
}

// AdjustStockInput entrada del ajuste.
type AdjustStockInput struct {
	Actor   policy.Actor
	ItemID  string
	Request dto.AdjustStockRequest
}

// AdjustStock valida, abre la transacción, aplica el movimiento y publica el evento tras el Commit.
func (uc *AdjustStockUseCase) AdjustStock(ctx context.Context, in AdjustStockInput) (*MovementResult, error) {
	if err := policy.Can(in.Actor, policy.StockAdjust, policy.Resource{}); err != nil {
		return nil, err
	}
	req := in.Request
	req.Reason = strings.TrimSpace(req.Reason)
	if err := validateAdjust(in.ItemID, req); err != nil {
		return nil, err
	}
	kind, err := inventory.KindFor(req.MovementType, req.Quantity)
	if err != nil {
		return nil, err
	}

	var res *MovementResult
	err = uc.uow.Run(ctx, func(repos TxRepos) error {
		r, err := ApplyMovementInTx(ctx, repos, MovementSpec{
			ItemID:          in.ItemID,
			Kind:            kind,
			UserID:          in.Actor.ID,
			Reason:          req.Reason,
			Notes:           req.Notes,
			UnitCost:        req.UnitCost,
			ReferenceNumber: req.ReferenceNumber,
		})
		res = r
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.StockRejected("insufficient_stock")
		}
		return nil, err
	}

	uc.metrics.StockMovement(res.Movement.Type, res.Adjustment)
	uc.log.Info().
		Str("item_id", res.Item.ID).
		Int64("movement_id", res.Movement.ID).
		Str("movement_type", res.Movement.Type).
		Int64("before", res.PreviousStock).
		Int64("after", res.NewStock).
		Str("actor_id", in.Actor.ID).
		Msg("stock ajustado")
	uc.events.Publish(ctx, ports.EventInventoryUpdate, ports.InventoryUpdate{
		Action:   ports.ActionStockAdjustment,
		ItemID:   res.Item.ID,
		Item:     dto.NewItemResponse(res.Item),
		Movement: dto.NewMovementResponse(res.Movement),
	})
	return res, nil
}

func validateAdjust(itemID string, req dto.AdjustStockRequest) error {
	verr := &domain.ValidationError{}
	if itemID == "" {
		verr.Add("id", "requerido")
	}
	if req.Reason == "" {
		verr.Add("reason", "requerido")
	} else if len([]rune(req.Reason)) > 500 {
		verr.Add("reason", "máximo 500 caracteres")
	}
	if len([]rune(req.Notes)) > 1000 {
		verr.Add("notes", "máximo 1000 caracteres")
	}
	if len(req.ReferenceNumber) > 50 {
		verr.Add("reference_number", "máximo 50 caracteres")
	}
	if req.UnitCost != nil && req.UnitCost.LessThan(decimal.Zero) {
		verr.Add("unit_cost", "no puede ser negativo")
	}
	return verr.OrNil()
}
