// Package analytics contiene los reportes read-only sobre el registro de ítems y el ledger:
// stock bajo, estadísticas de movimientos, varianza ledger/snapshot, antigüedad y valorización.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

const (
	statsTopItems = 10 // ítems en el ranking de movimientos
	statsDays     = 7  // días de la serie diaria
)

// ReportUseCase reportes de inventario. No escribe nada.
type ReportUseCase struct {
	repo repository.ReportRepository
	now  func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(repo repository.ReportRepository) *ReportUseCase {
	return &ReportUseCase{repo: repo, now: time.Now}
}

// LowStock ítems activos con stock en o por debajo del mínimo, mayor faltante primero.
func (uc *ReportUseCase) LowStock(ctx context.Context, actor policy.Actor, page dto.PageRequest) ([]dto.LowStockItemDTO, int, error) {
	if err := policy.Can(actor, policy.ReportRead, policy.Resource{}); err != nil {
		return nil, 0, err
	}
	page.DefaultPage()
	rows, total, err := uc.repo.LowStock(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("low stock: %w", err)
	}
	out := make([]dto.LowStockItemDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.LowStockItemDTO{
			ItemID:       r.ItemID,
			SKU:          r.SKU,
			Name:         r.Name,
			CategoryName: r.CategoryName,
			Quantity:     r.Quantity,
			MinimumStock: r.MinimumStock,
			Shortage:     r.Shortage,
		})
	}
	return out, total, nil
}

// MovementStats resume la actividad del ledger.
//
// Cuatro consultas en paralelo:
//  1. CountsByType(from, to)      → ByType
//  2. DailyCounts(últimos 7 días) → LastDays
//  3. TopMovedItems(7 días, 10)   → TopItems
//  4. MovementValue(from, to)     → ValueIn / ValueOut
func (uc *ReportUseCase) MovementStats(ctx context.Context, actor policy.Actor, from, to *time.Time) (*dto.MovementStatsDTO, error) {
	if err := policy.Can(actor, policy.ReportRead, policy.Resource{}); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(statsDays - 1))

	type countsResult struct {
		rows []repository.TypeCount
		err  error
	}
	type dailyResult struct {
		rows []repository.DailyCount
		err  error
	}
	type topResult struct {
		rows []repository.ItemMovementCount
		err  error
	}
	type valueResult struct {
		in, out decimal.Decimal
		err     error
	}

	countsCh := make(chan countsResult, 1)
	dailyCh := make(chan dailyResult, 1)
	topCh := make(chan topResult, 1)
	valueCh := make(chan valueResult, 1)

	go func() {
		rows, err := uc.repo.CountsByType(ctx, from, to)
		countsCh <- countsResult{rows, err}
	}()
	go func() {
		rows, err := uc.repo.DailyCounts(ctx, since)
		dailyCh <- dailyResult{rows, err}
	}()
	go func() {
		rows, err := uc.repo.TopMovedItems(ctx, since, statsTopItems)
		topCh <- topResult{rows, err}
	}()
	go func() {
		in, out, err := uc.repo.MovementValue(ctx, from, to)
		valueCh <- valueResult{in, out, err}
	}()

	counts := <-countsCh
	daily := <-dailyCh
	top := <-topCh
	value := <-valueCh

	if counts.err != nil {
		return nil, fmt.Errorf("stats: conteo por tipo: %w", counts.err)
	}
	if daily.err != nil {
		return nil, fmt.Errorf("stats: serie diaria: %w", daily.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("stats: top ítems: %w", top.err)
	}
	if value.err != nil {
		return nil, fmt.Errorf("stats: valor movido: %w", value.err)
	}

	out := &dto.MovementStatsDTO{
		ByType:   make([]dto.TypeCountDTO, 0, len(counts.rows)),
		LastDays: fillDays(since, statsDays, daily.rows),
		TopItems: make([]dto.TopItemDTO, 0, len(top.rows)),
		ValueIn:  value.in.Round(2),
		ValueOut: value.out.Round(2),
		From:     from,
		To:       to,
	}
	for _, c := range counts.rows {
		out.ByType = append(out.ByType, dto.TypeCountDTO{MovementType: c.MovementType, Count: c.Count, Quantity: c.Quantity})
	}
	for _, t := range top.rows {
		out.TopItems = append(out.TopItems, dto.TopItemDTO{ItemID: t.ItemID, SKU: t.SKU, Name: t.Name, Count: t.Count})
	}
	return out, nil
}

// fillDays completa con ceros los días sin movimientos.
func fillDays(since time.Time, days int, rows []repository.DailyCount) []dto.DailyCountDTO {
	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format("2006-01-02")] += r.Count
	}
	out := make([]dto.DailyCountDTO, 0, days)
	for i := 0; i < days; i++ {
		d := since.AddDate(0, 0, i).Format("2006-01-02")
		out = append(out, dto.DailyCountDTO{Date: d, Count: byDay[d]})
	}
	return out
}

// StockVariance reproduce el ledger de cada ítem y lo compara con su snapshot.
// Un ítem es consistente si la cadena before/after no tiene saltos y el último after coincide con el snapshot.
func (uc *ReportUseCase) StockVariance(ctx context.Context, actor policy.Actor, onlyInconsistent bool) (*dto.StockVarianceReport, error) {
	if err := policy.Can(actor, policy.ReportRead, policy.Resource{}); err != nil {
		return nil, err
	}
	rows, err := uc.repo.LedgerSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock variance: %w", err)
	}
	report := &dto.StockVarianceReport{Items: make([]dto.StockVarianceDTO, 0)}
	for _, r := range rows {
		v := Variance(r)
		report.CheckedItems++
		if !v.Consistent {
			report.InconsistentItems++
		}
		if onlyInconsistent && v.Consistent {
			continue
		}
		report.Items = append(report.Items, v)
	}
	return report, nil
}

// Variance clasifica el resumen de ledger de un ítem. El stock según ledger es la suma de
// deltas desde cero; la cadena debe arrancar en 0 y terminar en el snapshot.
func Variance(r repository.LedgerSummary) dto.StockVarianceDTO {
	ledger := r.SumDelta
	consistent := r.BrokenLinks == 0 && ledger == r.Snapshot
	if r.Entries > 0 {
		consistent = consistent && r.FirstBefore == 0 && r.LastAfter == r.Snapshot
	}
	return dto.StockVarianceDTO{
		ItemID:      r.ItemID,
		SKU:         r.SKU,
		Name:        r.Name,
		Snapshot:    r.Snapshot,
		LedgerStock: ledger,
		Variance:    r.Snapshot - ledger,
		Entries:     r.Entries,
		BrokenLinks: r.BrokenLinks,
		Consistent:  consistent,
	}
}

// StockAging días sin movimiento por ítem con stock, agrupados en tramos.
func (uc *ReportUseCase) StockAging(ctx context.Context, actor policy.Actor) ([]dto.StockAgingDTO, error) {
	if err := policy.Can(actor, policy.ReportRead, policy.Resource{}); err != nil {
		return nil, err
	}
	rows, err := uc.repo.StockAging(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock aging: %w", err)
	}
	now := uc.now()
	out := make([]dto.StockAgingDTO, 0, len(rows))
	for _, r := range rows {
		ref := r.CreatedAt
		if r.LastMovementAt != nil {
			ref = *r.LastMovementAt
		}
		days := int(now.Sub(ref).Hours() / 24)
		if days < 0 {
			days = 0
		}
		out = append(out, dto.StockAgingDTO{
			ItemID:         r.ItemID,
			SKU:            r.SKU,
			Name:           r.Name,
			Quantity:       r.Quantity,
			LastMovementAt: r.LastMovementAt,
			DaysIdle:       days,
			Bucket:         agingBucket(days),
		})
	}
	return out, nil
}

func agingBucket(days int) string {
	switch {
	case days <= 30:
		return "0-30"
	case days <= 90:
		return "31-90"
	case days <= 180:
		return "91-180"
	default:
		return "180+"
	}
}

// Valuation valoriza el stock por categoría a costo promedio y a precio de venta.
func (uc *ReportUseCase) Valuation(ctx context.Context, actor policy.Actor) (*dto.ValuationReport, error) {
	if err := policy.Can(actor, policy.ReportRead, policy.Resource{}); err != nil {
		return nil, err
	}
	rows, err := uc.repo.Valuation(ctx)
	if err != nil {
		return nil, fmt.Errorf("valuation: %w", err)
	}
	report := &dto.ValuationReport{
		Categories:         make([]dto.ValuationDTO, 0, len(rows)),
		TotalPurchaseValue: decimal.Zero,
		TotalSellingValue:  decimal.Zero,
	}
	for _, r := range rows {
		report.Categories = append(report.Categories, dto.ValuationDTO{
			CategoryID:    r.CategoryID,
			CategoryName:  r.CategoryName,
			Items:         r.Items,
			Units:         r.Units,
			PurchaseValue: r.PurchaseValue.Round(2),
			SellingValue:  r.SellingValue.Round(2),
		})
		report.TotalPurchaseValue = report.TotalPurchaseValue.Add(r.PurchaseValue)
		report.TotalSellingValue = report.TotalSellingValue.Add(r.SellingValue)
	}
	report.TotalPurchaseValue = report.TotalPurchaseValue.Round(2)
	report.TotalSellingValue = report.TotalSellingValue.Round(2)
	return report, nil
}
