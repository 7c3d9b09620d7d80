package dto

import (
	"time"

	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// CreateGoodsOutRequest body para POST /api/good-out-requests. Quantity ausente = 1.
type CreateGoodsOutRequest struct {
	ItemID           string               `json:"item_id"`
	Quantity         *int64               `json:"quantity"`
	UsageDescription string               `json:"usage_description"`
	CustomerLocation string               `json:"customer_location"`
	CustomerInfo     *entity.CustomerInfo `json:"customer_info"`
}

// RejectGoodsOutRequest body para PUT /api/good-out-requests/:id/reject.
type RejectGoodsOutRequest struct {
	RejectionReason string `json:"rejection_reason"`
}

// GoodsOutResponse salida de una solicitud.
type GoodsOutResponse struct {
	ID              string               `json:"id"`
	ItemID          string               `json:"item_id"`
	RequestedBy     string               `json:"requested_by"`
	Quantity        int64                `json:"quantity"`
	Reason          string               `json:"reason"`
	Notes           string               `json:"notes,omitempty"`
	CustomerInfo    *entity.CustomerInfo `json:"customer_info,omitempty"`
	Status          string               `json:"status"`
	ApprovedBy      string               `json:"approved_by,omitempty"`
	RejectionReason string               `json:"rejection_reason,omitempty"`
	RequestedAt     time.Time            `json:"requested_at"`
	ApprovedAt      *time.Time           `json:"approved_at,omitempty"`
	CompletedAt     *time.Time           `json:"completed_at,omitempty"`
}

// ApproveGoodsOutResponse data de la aprobación.
type ApproveGoodsOutResponse struct {
	Request       *GoodsOutResponse `json:"request"`
	Movement      *MovementResponse `json:"movement"`
	PreviousStock int64             `json:"previous_stock"`
	NewStock      int64             `json:"new_stock"`
}

// PendingCountResponse data de GET /api/good-out-requests/pending/count.
type PendingCountResponse struct {
	Count int `json:"count"`
}

// NewGoodsOutResponse mapea la entidad.
func NewGoodsOutResponse(r *entity.GoodsOutRequest) *GoodsOutResponse {
	if r == nil {
		return nil
	}
	return &GoodsOutResponse{
		ID:              r.ID,
		ItemID:          r.ItemID,
		RequestedBy:     r.RequestedBy,
		Quantity:        r.Quantity,
		Reason:          r.Reason,
		Notes:           r.Notes,
		CustomerInfo:    r.CustomerInfo,
		Status:          r.Status,
		ApprovedBy:      r.ApprovedBy,
		RejectionReason: r.RejectionReason,
		RequestedAt:     r.RequestedAt,
		ApprovedAt:      r.ApprovedAt,
		CompletedAt:     r.CompletedAt,
	}
}

// NewGoodsOutList mapea una lista de solicitudes.
func NewGoodsOutList(list []*entity.GoodsOutRequest) []*GoodsOutResponse {
	out := make([]*GoodsOutResponse, 0, len(list))
	for _, r := range list {
		out = append(out, NewGoodsOutResponse(r))
	}
	return out
}
