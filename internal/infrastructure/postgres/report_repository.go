package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

var _ repository.ReportRepository = (*ReportRepo)(nil)

// ReportRepo consultas de solo lectura sobre registro de ítems y ledger.
type ReportRepo struct {
	pool *pgxpool.Pool
}

// NewReportRepository construye el adaptador de reportes.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

// LowStock ítems activos con quantity_in_stock <= minimum_stock, mayor faltante primero.
func (r *ReportRepo) LowStock(ctx context.Context, limit, offset int) ([]repository.LowStockRow, int, error) {
	const filter = `FROM inventory_items i WHERE i.status = 'active' AND i.quantity_in_stock <= i.minimum_stock`
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) `+filter).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("report.LowStock count: %w", err)
	}

	const query = `
	SELECT
	    i.id,
	    i.sku,
	    i.name,
	    COALESCE(c.name, '')                        AS category_name,
	    i.quantity_in_stock,
	    i.minimum_stock,
	    i.minimum_stock - i.quantity_in_stock       AS shortage
	FROM inventory_items i
	LEFT JOIN categories c ON c.id = i.category_id
	WHERE i.status = 'active' AND i.quantity_in_stock <= i.minimum_stock
	ORDER BY shortage DESC, i.sku
	LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("report.LowStock: %w", err)
	}
	defer rows.Close()
	out := make([]repository.LowStockRow, 0)
	for rows.Next() {
		var row repository.LowStockRow
		if err := rows.Scan(&row.ItemID, &row.SKU, &row.Name, &row.CategoryName, &row.Quantity, &row.MinimumStock, &row.Shortage); err != nil {
			return nil, 0, fmt.Errorf("report.LowStock scan: %w", err)
		}
		out = append(out, row)
	}
	return out, total, rows.Err()
}

// CountsByType conteo y cantidad absoluta por tipo en el rango (nil = sin límite).
func (r *ReportRepo) CountsByType(ctx context.Context, from, to *time.Time) ([]repository.TypeCount, error) {
	const query = `
	SELECT movement_type, COUNT(*), COALESCE(SUM(ABS(quantity)), 0)
	FROM inventory_movements
	WHERE ($1::timestamptz IS NULL OR movement_date >= $1)
	  AND ($2::timestamptz IS NULL OR movement_date <= $2)
	GROUP BY movement_type
	ORDER BY movement_type`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("report.CountsByType: %w", err)
	}
	defer rows.Close()
	out := make([]repository.TypeCount, 0)
	for rows.Next() {
		var row repository.TypeCount
		if err := rows.Scan(&row.MovementType, &row.Count, &row.Quantity); err != nil {
			return nil, fmt.Errorf("report.CountsByType scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DailyCounts movimientos por día UTC desde since.
func (r *ReportRepo) DailyCounts(ctx context.Context, since time.Time) ([]repository.DailyCount, error) {
	const query = `
	SELECT date_trunc('day', movement_date AT TIME ZONE 'UTC') AS day, COUNT(*)
	FROM inventory_movements
	WHERE movement_date >= $1
	GROUP BY day
	ORDER BY day`

	rows, err := r.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("report.DailyCounts: %w", err)
	}
	defer rows.Close()
	out := make([]repository.DailyCount, 0)
	for rows.Next() {
		var row repository.DailyCount
		if err := rows.Scan(&row.Day, &row.Count); err != nil {
			return nil, fmt.Errorf("report.DailyCounts scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopMovedItems ítems con más movimientos desde since.
func (r *ReportRepo) TopMovedItems(ctx context.Context, since time.Time, limit int) ([]repository.ItemMovementCount, error) {
	const query = `
	SELECT i.id, i.sku, i.name, COUNT(m.id) AS movements
	FROM inventory_movements m
	JOIN inventory_items i ON i.id = m.item_id
	WHERE m.movement_date >= $1
	GROUP BY i.id, i.sku, i.name
	ORDER BY movements DESC, i.sku
	LIMIT $2`

	rows, err := r.pool.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("report.TopMovedItems: %w", err)
	}
	defer rows.Close()
	out := make([]repository.ItemMovementCount, 0)
	for rows.Next() {
		var row repository.ItemMovementCount
		if err := rows.Scan(&row.ItemID, &row.SKU, &row.Name, &row.Count); err != nil {
			return nil, fmt.Errorf("report.TopMovedItems scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// MovementValue valor de entradas y salidas con costo unitario registrado.
func (r *ReportRepo) MovementValue(ctx context.Context, from, to *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	const query = `
	SELECT
	    COALESCE(SUM(ABS(quantity) * unit_cost) FILTER (WHERE movement_type = 'in'),  0) AS value_in,
	    COALESCE(SUM(ABS(quantity) * unit_cost) FILTER (WHERE movement_type = 'out'), 0) AS value_out
	FROM inventory_movements
	WHERE unit_cost IS NOT NULL
	  AND ($1::timestamptz IS NULL OR movement_date >= $1)
	  AND ($2::timestamptz IS NULL OR movement_date <= $2)`

	var in, out decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&in, &out); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("report.MovementValue: %w", err)
	}
	return in, out, nil
}

// LedgerSummaries un resumen por ítem. broken_links cuenta entradas cuyo quantity_before
// no coincide con el quantity_after de la entrada anterior (LAG por id).
func (r *ReportRepo) LedgerSummaries(ctx context.Context) ([]repository.LedgerSummary, error) {
	const query = `
	WITH chain AS (
	    SELECT
	        item_id,
	        id,
	        quantity,
	        quantity_before,
	        quantity_after,
	        LAG(quantity_after) OVER (PARTITION BY item_id ORDER BY id)        AS prev_after,
	        ROW_NUMBER()        OVER (PARTITION BY item_id ORDER BY id)        AS rn_asc,
	        ROW_NUMBER()        OVER (PARTITION BY item_id ORDER BY id DESC)   AS rn_desc
	    FROM inventory_movements
	)
	SELECT
	    i.id,
	    i.sku,
	    i.name,
	    i.quantity_in_stock,
	    COUNT(ch.id)                                                         AS entries,
	    COALESCE(SUM(ch.quantity), 0)                                        AS sum_delta,
	    COALESCE(MAX(ch.quantity_before) FILTER (WHERE ch.rn_asc = 1), 0)    AS first_before,
	    COALESCE(MAX(ch.quantity_after)  FILTER (WHERE ch.rn_desc = 1), 0)   AS last_after,
	    COUNT(*) FILTER (WHERE ch.prev_after IS NOT NULL AND ch.prev_after <> ch.quantity_before) AS broken_links
	FROM inventory_items i
	LEFT JOIN chain ch ON ch.item_id = i.id
	GROUP BY i.id, i.sku, i.name, i.quantity_in_stock
	ORDER BY i.sku`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report.LedgerSummaries: %w", err)
	}
	defer rows.Close()
	out := make([]repository.LedgerSummary, 0)
	for rows.Next() {
		var row repository.LedgerSummary
		if err := rows.Scan(&row.ItemID, &row.SKU, &row.Name, &row.Snapshot, &row.Entries,
			&row.SumDelta, &row.FirstBefore, &row.LastAfter, &row.BrokenLinks); err != nil {
			return nil, fmt.Errorf("report.LedgerSummaries scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// StockAging último movimiento de cada ítem con stock.
func (r *ReportRepo) StockAging(ctx context.Context) ([]repository.AgingRow, error) {
	const query = `
	SELECT i.id, i.sku, i.name, i.quantity_in_stock, MAX(m.movement_date) AS last_movement, i.created_at
	FROM inventory_items i
	LEFT JOIN inventory_movements m ON m.item_id = i.id
	WHERE i.quantity_in_stock > 0
	GROUP BY i.id, i.sku, i.name, i.quantity_in_stock, i.created_at
	ORDER BY i.sku`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report.StockAging: %w", err)
	}
	defer rows.Close()
	out := make([]repository.AgingRow, 0)
	for rows.Next() {
		var row repository.AgingRow
		if err := rows.Scan(&row.ItemID, &row.SKU, &row.Name, &row.Quantity, &row.LastMovementAt, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("report.StockAging scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Valuation stock activo por categoría a costo promedio y a precio de venta.
func (r *ReportRepo) Valuation(ctx context.Context) ([]repository.ValuationRow, error) {
	const query = `
	SELECT
	    c.id,
	    c.name,
	    COUNT(i.id)                                      AS items,
	    COALESCE(SUM(i.quantity_in_stock), 0)            AS units,
	    COALESCE(SUM(i.quantity_in_stock * i.purchase_price), 0) AS purchase_value,
	    COALESCE(SUM(i.quantity_in_stock * i.selling_price), 0)  AS selling_value
	FROM inventory_items i
	JOIN categories c ON c.id = i.category_id
	WHERE i.status = 'active'
	GROUP BY c.id, c.name
	ORDER BY c.name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("report.Valuation: %w", err)
	}
	defer rows.Close()
	out := make([]repository.ValuationRow, 0)
	for rows.Next() {
		var row repository.ValuationRow
		if err := rows.Scan(&row.CategoryID, &row.CategoryName, &row.Items, &row.Units, &row.PurchaseValue, &row.SellingValue); err != nil {
			return nil, fmt.Errorf("report.Valuation scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
