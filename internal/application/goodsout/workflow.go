// Package goodsout implementa el flujo de solicitudes de salida de mercancía:
// pending → approved | rejected. La aprobación descuenta stock con el mismo
// procedimiento transaccional que el ajuste manual.
package goodsout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/application/ports"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	domaininv "github.com/jhoicas/ispstock-api/internal/domain/inventory"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// Textos que se guardan en solicitudes y movimientos.
const (
	InstallationReasonPrefix = "Instalación - "
	LocationNotesPrefix      = "Ubicación: "
	ApprovedReasonPrefix     = "Salida aprobada - "
	ReferencePrefix          = "REQ-"
	DefaultRejectionReason   = "Rechazada sin motivo especificado"
	CancelledReason          = "Cancelada por el solicitante"
)

// WorkflowUseCase casos de uso del flujo de salidas.
type WorkflowUseCase struct {
	uow      inventory.UnitOfWork
	items    repository.InventoryItemRepository
	requests repository.GoodsOutRequestRepository
	events   ports.EventPublisher
	metrics  ports.MetricsRecorder
	log      zerolog.Logger
}

// NewWorkflowUseCase construye el caso de uso.
func NewWorkflowUseCase(
	uow inventory.UnitOfWork,
	items repository.InventoryItemRepository,
	requests repository.GoodsOutRequestRepository,
	events ports.EventPublisher,
	metrics ports.MetricsRecorder,
	log zerolog.Logger,
) *WorkflowUseCase {
	return &WorkflowUseCase{uow: uow, items: items, requests: requests, events: events, metrics: metrics, log: log}
}

// ApproveResult solicitud aprobada y el movimiento de salida que produjo.
type ApproveResult struct {
	Request  *entity.GoodsOutRequest
	Movement *inventory.MovementResult
}

// Create registra una solicitud pending. El chequeo de stock aquí es orientativo; se repite al aprobar.
func (uc *WorkflowUseCase) Create(ctx context.Context, actor policy.Actor, in dto.CreateGoodsOutRequest) (*entity.GoodsOutRequest, error) {
	if err := policy.Can(actor, policy.GoodsOutCreate, policy.Resource{}); err != nil {
		return nil, err
	}
	qty := int64(1)
	if in.Quantity != nil {
		qty = *in.Quantity
	}
	usage := strings.TrimSpace(in.UsageDescription)

	verr := &domain.ValidationError{}
	if in.ItemID == "" {
		verr.Add("item_id", "requerido")
	}
	if qty <= 0 {
		verr.Add("quantity", "debe ser mayor que cero")
	}
	if usage == "" {
		verr.Add("usage_description", "requerido")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	item, err := uc.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("ítem")
	}
	if item.QuantityInStock < qty {
		return nil, &domain.InsufficientStockError{ItemID: item.ID, Available: item.QuantityInStock, Requested: qty}
	}

	now := time.Now().UTC()
	req := &entity.GoodsOutRequest{
		ID:           uuid.New().String(),
		ItemID:       item.ID,
		RequestedBy:  actor.ID,
		Quantity:     qty,
		Reason:       InstallationReasonPrefix + usage,
		CustomerInfo: in.CustomerInfo,
		Status:       entity.GoodsOutPending,
		RequestedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if loc := strings.TrimSpace(in.CustomerLocation); loc != "" {
		req.Notes = LocationNotesPrefix + loc
	}
	if err := uc.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	uc.metrics.GoodsOutTransition(entity.GoodsOutPending)
	uc.log.Info().Str("request_id", req.ID).Str("item_id", req.ItemID).Int64("quantity", qty).Str("actor_id", actor.ID).Msg("solicitud de salida creada")
	uc.events.Publish(ctx, ports.EventGoodsOutCreated, ports.GoodsOutUpdate{Request: dto.NewGoodsOutResponse(req)})
	return req, nil
}

// Approve re-verifica el stock y, en una sola transacción, registra la salida y marca la solicitud como approved.
// Si el stock ya no alcanza devuelve InsufficientStockError y la solicitud queda pending.
func (uc *WorkflowUseCase) Approve(ctx context.Context, actor policy.Actor, id string) (*ApproveResult, error) {
	if err := policy.Can(actor, policy.GoodsOutApprove, policy.Resource{}); err != nil {
		return nil, err
	}

	var out ApproveResult
	err := uc.uow.Run(ctx, func(repos inventory.TxRepos) error {
		req, err := repos.GoodsOut.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.NotFound("solicitud")
		}
		if !req.IsPending() {
			return domain.InvalidState(fmt.Sprintf("la solicitud está %s", req.Status))
		}

		res, err := inventory.ApplyMovementInTx(ctx, repos, inventory.MovementSpec{
			ItemID:          req.ItemID,
			Kind:            domaininv.Out{Qty: req.Quantity},
			UserID:          actor.ID,
			Reason:          ApprovedReasonPrefix + req.Reason,
			Notes:           fmt.Sprintf("Solicitud %s de %s", req.ID, req.RequestedBy),
			ReferenceNumber: ReferencePrefix + req.ID,
		})
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		req.Status = entity.GoodsOutApproved
		req.ApprovedBy = actor.ID
		req.ApprovedAt = &now
		req.UpdatedAt = now
		if err := repos.GoodsOut.UpdateDecision(ctx, req); err != nil {
			return err
		}
		out.Request = req
		out.Movement = res
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.metrics.StockRejected("goods_out_insufficient_stock")
		}
		return nil, err
	}

	uc.metrics.GoodsOutTransition(entity.GoodsOutApproved)
	uc.metrics.StockMovement(out.Movement.Movement.Type, out.Movement.Adjustment)
	uc.log.Info().
		Str("request_id", out.Request.ID).
		Str("item_id", out.Request.ItemID).
		Int64("movement_id", out.Movement.Movement.ID).
		Int64("after", out.Movement.NewStock).
		Str("actor_id", actor.ID).
		Msg("solicitud de salida aprobada")
	movement := dto.NewMovementResponse(out.Movement.Movement)
	uc.events.Publish(ctx, ports.EventGoodsOutApproved, ports.GoodsOutUpdate{
		Request:  dto.NewGoodsOutResponse(out.Request),
		Movement: movement,
	})
	uc.events.Publish(ctx, ports.EventInventoryUpdate, ports.InventoryUpdate{
		Action:   ports.ActionStockAdjustment,
		ItemID:   out.Movement.Item.ID,
		Item:     dto.NewItemResponse(out.Movement.Item),
		Movement: movement,
	})
	return &out, nil
}

// Reject cierra una solicitud pending sin efecto en el ledger.
func (uc *WorkflowUseCase) Reject(ctx context.Context, actor policy.Actor, id, reason string) (*entity.GoodsOutRequest, error) {
	if err := policy.Can(actor, policy.GoodsOutReject, policy.Resource{}); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}
	req, err := uc.decide(ctx, id, nil, actor.ID, reason)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("actor_id", actor.ID).Msg("solicitud de salida rechazada")
	return req, nil
}

// Cancel permite al solicitante retirar su propia solicitud mientras siga pending.
func (uc *WorkflowUseCase) Cancel(ctx context.Context, actor policy.Actor, id string) (*entity.GoodsOutRequest, error) {
	req, err := uc.decide(ctx, id, func(req *entity.GoodsOutRequest) error {
		return policy.Can(actor, policy.GoodsOutCancel, policy.Resource{OwnerID: req.RequestedBy})
	}, "", CancelledReason)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("request_id", req.ID).Str("actor_id", actor.ID).Msg("solicitud de salida cancelada")
	return req, nil
}

// decide bloquea la solicitud, aplica authorize (si no es nil) y la pasa a rejected.
// deciderID vacío es una cancelación del solicitante: approved_by y approved_at quedan sin valor.
func (uc *WorkflowUseCase) decide(
	ctx context.Context,
	id string,
	authorize func(req *entity.GoodsOutRequest) error,
	deciderID, reason string,
) (*entity.GoodsOutRequest, error) {
	var out *entity.GoodsOutRequest
	err := uc.uow.Run(ctx, func(repos inventory.TxRepos) error {
		req, err := repos.GoodsOut.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.NotFound("solicitud")
		}
		if authorize != nil {
			if err := authorize(req); err != nil {
				return err
			}
		}
		if !req.IsPending() {
			return domain.InvalidState(fmt.Sprintf("la solicitud está %s", req.Status))
		}
		now := time.Now().UTC()
		req.Status = entity.GoodsOutRejected
		req.RejectionReason = reason
		if deciderID != "" {
			req.ApprovedBy = deciderID
			req.ApprovedAt = &now
		}
		req.UpdatedAt = now
		if err := repos.GoodsOut.UpdateDecision(ctx, req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.GoodsOutTransition(entity.GoodsOutRejected)
	uc.events.Publish(ctx, ports.EventGoodsOutRejected, ports.GoodsOutUpdate{Request: dto.NewGoodsOutResponse(out)})
	return out, nil
}

// GetByID devuelve la solicitud si el actor es su dueño o tiene rol elevado.
func (uc *WorkflowUseCase) GetByID(ctx context.Context, actor policy.Actor, id string) (*entity.GoodsOutRequest, error) {
	req, err := uc.requests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.NotFound("solicitud")
	}
	if err := policy.Can(actor, policy.GoodsOutRead, policy.Resource{OwnerID: req.RequestedBy}); err != nil {
		return nil, err
	}
	return req, nil
}

// ListFilter filtros de GET /api/good-out-requests.
type ListFilter struct {
	Status      string
	RequestedBy string
	ItemID      string
	MyRequests  bool
}

// List lista solicitudes. Sin permiso de lectura global solo se ven las propias.
func (uc *WorkflowUseCase) List(ctx context.Context, actor policy.Actor, f ListFilter, page dto.PageRequest) ([]*entity.GoodsOutRequest, int, error) {
	page.DefaultPage()
	rf := repository.GoodsOutFilter{Status: f.Status, RequestedBy: f.RequestedBy, ItemID: f.ItemID}
	if f.MyRequests || policy.Can(actor, policy.GoodsOutReadAll, policy.Resource{}) != nil {
		rf.RequestedBy = actor.ID
	}
	if rf.Status != "" && !isValidStatus(rf.Status) {
		return nil, 0, domain.NewValidationError("status", "debe ser pending, approved, rejected o completed")
	}
	return uc.requests.List(ctx, rf, page.Limit, page.Offset)
}

// PendingCount número de solicitudes esperando decisión.
func (uc *WorkflowUseCase) PendingCount(ctx context.Context, actor policy.Actor) (int, error) {
	if err := policy.Can(actor, policy.GoodsOutReadAll, policy.Resource{}); err != nil {
		return 0, err
	}
	return uc.requests.CountByStatus(ctx, entity.GoodsOutPending)
}

func isValidStatus(s string) bool {
	switch s {
	case entity.GoodsOutPending, entity.GoodsOutApproved, entity.GoodsOutRejected, entity.GoodsOutCompleted:
		return true
	}
	return false
}
