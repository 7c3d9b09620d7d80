package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// CreateItemRequest body para POST /api/inventory.
type CreateItemRequest struct {
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	CategoryID      string          `json:"category_id"`
	SupplierID      string          `json:"supplier_id"`
	Brand           string          `json:"brand"`
	Model           string          `json:"model"`
	SerialNumber    string          `json:"serial_number"`
	Barcode         string          `json:"barcode"`
	QRCode          string          `json:"qr_code"`
	ImageURL        string          `json:"image_url"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	QuantityInStock int64           `json:"quantity_in_stock"`
	MinimumStock    int64           `json:"minimum_stock"`
	MaximumStock    *int64          `json:"maximum_stock"`
	Unit            string          `json:"unit"`
	Location        string          `json:"location"`
	Condition       string          `json:"condition"`
	Status          string          `json:"status"`
	Specifications  json.RawMessage `json:"specifications" swaggertype:"object"`
	Notes           string          `json:"notes"`
}

// UpdateItemRequest body para PUT /api/inventory/:id. QuantityInStock existe solo para rechazarlo.
type UpdateItemRequest struct {
	SKU             *string          `json:"sku"`
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	CategoryID      *string          `json:"category_id"`
	SupplierID      *string          `json:"supplier_id"`
	Brand           *string          `json:"brand"`
	Model           *string          `json:"model"`
	SerialNumber    *string          `json:"serial_number"`
	Barcode         *string          `json:"barcode"`
	QRCode          *string          `json:"qr_code"`
	ImageURL        *string          `json:"image_url"`
	PurchasePrice   *decimal.Decimal `json:"purchase_price"`
	SellingPrice    *decimal.Decimal `json:"selling_price"`
	QuantityInStock *int64           `json:"quantity_in_stock" swaggerignore:"true"`
	MinimumStock    *int64           `json:"minimum_stock"`
	MaximumStock    *int64           `json:"maximum_stock"`
	Unit            *string          `json:"unit"`
	Location        *string          `json:"location"`
	Condition       *string          `json:"condition"`
	Status          *string          `json:"status"`
	Specifications  json.RawMessage  `json:"specifications" swaggertype:"object"`
	Notes           *string          `json:"notes"`
}

// AdjustStockRequest body para POST /api/inventory/:id/adjust-stock.
// Para in/out Quantity es la magnitud; para adjustment es el nuevo stock absoluto.
type AdjustStockRequest struct {
	Quantity        int64            `json:"quantity"`
	MovementType    string           `json:"movement_type"`
	Reason          string           `json:"reason"`
	Notes           string           `json:"notes"`
	UnitCost        *decimal.Decimal `json:"unit_cost"`
	ReferenceNumber string           `json:"reference_number"`
}

// ItemResponse salida de un ítem.
type ItemResponse struct {
	ID              string          `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	CategoryID      string          `json:"category_id"`
	SupplierID      string          `json:"supplier_id,omitempty"`
	Brand           string          `json:"brand,omitempty"`
	Model           string          `json:"model,omitempty"`
	SerialNumber    string          `json:"serial_number,omitempty"`
	Barcode         string          `json:"barcode,omitempty"`
	QRCode          string          `json:"qr_code,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	QuantityInStock int64           `json:"quantity_in_stock"`
	MinimumStock    int64           `json:"minimum_stock"`
	MaximumStock    *int64          `json:"maximum_stock,omitempty"`
	Unit            string          `json:"unit"`
	Location        string          `json:"location,omitempty"`
	Condition       string          `json:"condition"`
	Status          string          `json:"status"`
	LowStock        bool            `json:"low_stock"`
	Specifications  json.RawMessage `json:"specifications,omitempty" swaggertype:"object"`
	Notes           string          `json:"notes,omitempty"`
	CreatedBy       string          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// MovementResponse salida de una entrada del ledger.
type MovementResponse struct {
	ID              int64            `json:"id"`
	ItemID          string           `json:"item_id"`
	UserID          string           `json:"user_id,omitempty"`
	MovementType    string           `json:"movement_type"`
	Quantity        int64            `json:"quantity"`
	QuantityBefore  int64            `json:"quantity_before"`
	QuantityAfter   int64            `json:"quantity_after"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceNumber string           `json:"reference_number,omitempty"`
	Reason          string           `json:"reason"`
	Notes           string           `json:"notes,omitempty"`
	MovementDate    time.Time        `json:"movement_date"`
}

// AdjustStockResponse data de la respuesta de ajuste.
type AdjustStockResponse struct {
	Item          *ItemResponse     `json:"item"`
	Movement      *MovementResponse `json:"movement"`
	PreviousStock int64             `json:"previous_stock"`
	NewStock      int64             `json:"new_stock"`
	Adjustment    int64             `json:"adjustment"`
}

// ItemStockSummary cabecera de GET /api/inventory/:id/movements.
type ItemStockSummary struct {
	ID           string `json:"id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	CurrentStock int64  `json:"current_stock"`
}

// ItemMovementsResponse data de GET /api/inventory/:id/movements.
type ItemMovementsResponse struct {
	Item      ItemStockSummary    `json:"item"`
	Movements []*MovementResponse `json:"movements"`
}

// NewItemResponse mapea la entidad a su salida HTTP.
func NewItemResponse(i *entity.InventoryItem) *ItemResponse {
	if i == nil {
		return nil
	}
	return &ItemResponse{
		ID:              i.ID,
		SKU:             i.SKU,
		Name:            i.Name,
		Description:     i.Description,
		CategoryID:      i.CategoryID,
		SupplierID:      i.SupplierID,
		Brand:           i.Brand,
		Model:           i.Model,
		SerialNumber:    i.SerialNumber,
		Barcode:         i.Barcode,
		QRCode:          i.QRCode,
		ImageURL:        i.ImageURL,
		PurchasePrice:   i.PurchasePrice,
		SellingPrice:    i.SellingPrice,
		QuantityInStock: i.QuantityInStock,
		MinimumStock:    i.MinimumStock,
		MaximumStock:    i.MaximumStock,
		Unit:            i.Unit,
		Location:        i.Location,
		Condition:       i.Condition,
		Status:          i.Status,
		LowStock:        i.IsLowStock(),
		Specifications:  i.Specifications,
		Notes:           i.Notes,
		CreatedBy:       i.CreatedBy,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// NewItemList mapea una lista de ítems.
func NewItemList(items []*entity.InventoryItem) []*ItemResponse {
	out := make([]*ItemResponse, 0, len(items))
	for _, i := range items {
		out = append(out, NewItemResponse(i))
	}
	return out
}

// NewMovementResponse mapea una entrada del ledger.
func NewMovementResponse(m *entity.InventoryMovement) *MovementResponse {
	if m == nil {
		return nil
	}
	return &MovementResponse{
		ID:              m.ID,
		ItemID:          m.ItemID,
		UserID:          m.UserID,
		MovementType:    m.Type,
		Quantity:        m.Quantity,
		QuantityBefore:  m.QuantityBefore,
		QuantityAfter:   m.QuantityAfter,
		UnitCost:        m.UnitCost,
		ReferenceNumber: m.ReferenceNumber,
		Reason:          m.Reason,
		Notes:           m.Notes,
		MovementDate:    m.MovementDate,
	}
}

// NewMovementList mapea una lista de movimientos.
func NewMovementList(list []*entity.InventoryMovement) []*MovementResponse {
	out := make([]*MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, NewMovementResponse(m))
	}
	return out
}
