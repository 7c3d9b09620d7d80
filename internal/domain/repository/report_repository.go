package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LowStockRow ítem activo con stock en o por debajo del mínimo.
type LowStockRow struct {
	ItemID       string
	SKU          string
	Name         string
	CategoryName string
	Quantity     int64
	MinimumStock int64
	Shortage     int64 // minimum_stock - quantity_in_stock
}

// TypeCount conteo y cantidad absoluta movida por tipo.
type TypeCount struct {
	MovementType string
	Count        int64
	Quantity     int64
}

// DailyCount movimientos por día.
type DailyCount struct {
	Day   time.Time
	Count int64
}

// ItemMovementCount ítems con más movimientos.
type ItemMovementCount struct {
	ItemID string
	SKU    string
	Name   string
	Count  int64
}

// LedgerSummary estado del ledger de un ítem comparado con su snapshot.
type LedgerSummary struct {
	ItemID      string
	SKU         string
	Name        string
	Snapshot    int64
	Entries     int64
	SumDelta    int64
	FirstBefore int64
	LastAfter   int64
	BrokenLinks int64 // entradas cuyo before no coincide con el after anterior
}

// AgingRow antigüedad desde el último movimiento.
type AgingRow struct {
	ItemID         string
	SKU            string
	Name           string
	Quantity       int64
	LastMovementAt *time.Time
	CreatedAt      time.Time
}

// ValuationRow valorización del stock por categoría.
type ValuationRow struct {
	CategoryID    string
	CategoryName  string
	Items         int64
	Units         int64
	PurchaseValue decimal.Decimal
	SellingValue  decimal.Decimal
}

// ReportRepository consultas read-only sobre registro + ledger.
type ReportRepository interface {
	LowStock(ctx context.Context, limit, offset int) ([]LowStockRow, int, error)
	CountsByType(ctx context.Context, from, to *time.Time) ([]TypeCount, error)
	DailyCounts(ctx context.Context, since time.Time) ([]DailyCount, error)
	TopMovedItems(ctx context.Context, since time.Time, limit int) ([]ItemMovementCount, error)
	// MovementValue suma |quantity| * unit_cost de entradas y salidas con costo.
	MovementValue(ctx context.Context, from, to *time.Time) (in, out decimal.Decimal, err error)
	LedgerSummaries(ctx context.Context) ([]LedgerSummary, error)
	StockAging(ctx context.Context) ([]AgingRow, error)
	Valuation(ctx context.Context) ([]ValuationRow, error)
}
