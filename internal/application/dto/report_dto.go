package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LowStockItemDTO ítem bajo el mínimo.
type LowStockItemDTO struct {
	ItemID       string `json:"item_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	CategoryName string `json:"category_name,omitempty"`
	Quantity     int64  `json:"quantity_in_stock"`
	MinimumStock int64  `json:"minimum_stock"`
	Shortage     int64  `json:"shortage"`
}

// MovementStatsDTO resumen de actividad del ledger.
type MovementStatsDTO struct {
	ByType   []TypeCountDTO  `json:"by_type"`
	LastDays []DailyCountDTO `json:"last_7_days"`
	TopItems []TopItemDTO    `json:"top_items"`
	ValueIn  decimal.Decimal `json:"value_in"`
	ValueOut decimal.Decimal `json:"value_out"`
	From     *time.Time      `json:"from,omitempty"`
	To       *time.Time      `json:"to,omitempty"`
}

// TypeCountDTO conteo por tipo de movimiento.
type TypeCountDTO struct {
	MovementType string `json:"movement_type"`
	Count        int64  `json:"count"`
	Quantity     int64  `json:"total_quantity"`
}

// DailyCountDTO movimientos de un día (YYYY-MM-DD).
type DailyCountDTO struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// TopItemDTO ítem con más movimientos.
type TopItemDTO struct {
	ItemID string `json:"item_id"`
	SKU    string `json:"sku"`
	Name   string `json:"name"`
	Count  int64  `json:"movement_count"`
}

// StockVarianceDTO comparación ledger vs snapshot de un ítem.
type StockVarianceDTO struct {
	ItemID      string `json:"item_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Snapshot    int64  `json:"snapshot"`
	LedgerStock int64  `json:"ledger_stock"`
	Variance    int64  `json:"variance"`
	Entries     int64  `json:"entries"`
	BrokenLinks int64  `json:"broken_links"`
	Consistent  bool   `json:"consistent"`
}

// StockVarianceReport resultado de GET /api/reports/stock-variance.
type StockVarianceReport struct {
	CheckedItems      int                `json:"checked_items"`
	InconsistentItems int                `json:"inconsistent_items"`
	Items             []StockVarianceDTO `json:"items"`
}

// StockAgingDTO días sin movimiento de un ítem.
type StockAgingDTO struct {
	ItemID         string     `json:"item_id"`
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	Quantity       int64      `json:"quantity_in_stock"`
	LastMovementAt *time.Time `json:"last_movement_at,omitempty"`
	DaysIdle       int        `json:"days_idle"`
	Bucket         string     `json:"bucket"` // 0-30, 31-90, 91-180, 180+
}

// ValuationDTO valorización por categoría.
type ValuationDTO struct {
	CategoryID    string          `json:"category_id"`
	CategoryName  string          `json:"category_name"`
	Items         int64           `json:"items"`
	Units         int64           `json:"units"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
	SellingValue  decimal.Decimal `json:"selling_value"`
}

// ValuationReport resultado de GET /api/reports/valuation.
type ValuationReport struct {
	Categories         []ValuationDTO  `json:"categories"`
	TotalPurchaseValue decimal.Decimal `json:"total_purchase_value"`
	TotalSellingValue  decimal.Decimal `json:"total_selling_value"`
}
