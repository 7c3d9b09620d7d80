package entity

import "time"

// Estados de una solicitud de salida de mercancía.
const (
	GoodsOutPending   = "pending"
	GoodsOutApproved  = "approved"
	GoodsOutRejected  = "rejected"
	GoodsOutCompleted = "completed" // estado terminal definido; ningún flujo lo alcanza todavía
)

// CustomerInfo datos opcionales del cliente donde se instala el material.
type CustomerInfo struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

// GoodsOutRequest solicitud de un técnico para retirar stock, sujeta a aprobación.
type GoodsOutRequest struct {
	ID              string
	ItemID          string
	RequestedBy     string
	Quantity        int64
	Reason          string
	Notes           string
	CustomerInfo    *CustomerInfo
	Status          string
	ApprovedBy      string
	RejectionReason string
	RequestedAt     time.Time
	ApprovedAt      *time.Time
	CompletedAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsPending indica si la solicitud sigue abierta.
func (r *GoodsOutRequest) IsPending() bool { return r.Status == GoodsOutPending }
