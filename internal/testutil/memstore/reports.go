package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// ReportRepo agrega sobre el estado en memoria con la misma semántica que las consultas SQL.
type ReportRepo struct{ s *Store }

func (r *ReportRepo) LowStock(ctx context.Context, limit, offset int) ([]repository.LowStockRow, int, error) {
	var rows []repository.LowStockRow
	r.s.read(func(st *state) {
		for _, it := range st.items {
			if it.Status != entity.ItemStatusActive || !it.IsLowStock() {
				continue
			}
			row := repository.LowStockRow{
				ItemID:       it.ID,
				SKU:          it.SKU,
				Name:         it.Name,
				Quantity:     it.QuantityInStock,
				MinimumStock: it.MinimumStock,
				Shortage:     it.MinimumStock - it.QuantityInStock,
			}
			if c, ok := st.categories[it.CategoryID]; ok {
				row.CategoryName = c.Name
			}
			rows = append(rows, row)
		}
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Shortage != rows[j].Shortage {
			return rows[i].Shortage > rows[j].Shortage
		}
		return rows[i].SKU < rows[j].SKU
	})
	return page(rows, limit, offset), len(rows), nil
}

func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func (r *ReportRepo) CountsByType(ctx context.Context, from, to *time.Time) ([]repository.TypeCount, error) {
	byType := map[string]*repository.TypeCount{}
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			if !inRange(m.MovementDate, from, to) {
				continue
			}
			tc, ok := byType[m.Type]
			if !ok {
				tc = &repository.TypeCount{MovementType: m.Type}
				byType[m.Type] = tc
			}
			tc.Count++
			tc.Quantity += abs(m.Quantity)
		}
	})
	out := make([]repository.TypeCount, 0, len(byType))
	for _, tc := range byType {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MovementType < out[j].MovementType })
	return out, nil
}

func (r *ReportRepo) DailyCounts(ctx context.Context, since time.Time) ([]repository.DailyCount, error) {
	byDay := map[time.Time]int64{}
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			if m.MovementDate.Before(since) {
				continue
			}
			d := m.MovementDate.UTC()
			byDay[time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)]++
		}
	})
	out := make([]repository.DailyCount, 0, len(byDay))
	for day, n := range byDay {
		out = append(out, repository.DailyCount{Day: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out, nil
}

func (r *ReportRepo) TopMovedItems(ctx context.Context, since time.Time, limit int) ([]repository.ItemMovementCount, error) {
	counts := map[string]int64{}
	var out []repository.ItemMovementCount
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			if !m.MovementDate.Before(since) {
				counts[m.ItemID]++
			}
		}
		for id, n := range counts {
			row := repository.ItemMovementCount{ItemID: id, Count: n}
			if it, ok := st.items[id]; ok {
				row.SKU, row.Name = it.SKU, it.Name
			}
			out = append(out, row)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].SKU < out[j].SKU
	})
	return page(out, limit, 0), nil
}

func (r *ReportRepo) MovementValue(ctx context.Context, from, to *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	in, out := decimal.Zero, decimal.Zero
	r.s.read(func(st *state) {
		for _, m := range st.movements {
			if m.UnitCost == nil || !inRange(m.MovementDate, from, to) {
				continue
			}
			v := m.UnitCost.Mul(decimal.NewFromInt(abs(m.Quantity)))
			switch m.Type {
			case entity.MovementTypeIn:
				in = in.Add(v)
			case entity.MovementTypeOut:
				out = out.Add(v)
			}
		}
	})
	return in, out, nil
}

func (r *ReportRepo) LedgerSummaries(ctx context.Context) ([]repository.LedgerSummary, error) {
	var out []repository.LedgerSummary
	r.s.read(func(st *state) {
		history := map[string][]*entity.InventoryMovement{}
		for _, m := range st.movements {
			history[m.ItemID] = append(history[m.ItemID], m)
		}
		for _, it := range st.items {
			sum := repository.LedgerSummary{ItemID: it.ID, SKU: it.SKU, Name: it.Name, Snapshot: it.QuantityInStock}
			entries := history[it.ID]
			sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
			for i, m := range entries {
				if i == 0 {
					sum.FirstBefore = m.QuantityBefore
				} else if entries[i-1].QuantityAfter != m.QuantityBefore {
					sum.BrokenLinks++
				}
				sum.Entries++
				sum.SumDelta += m.Quantity
				sum.LastAfter = m.QuantityAfter
			}
			out = append(out, sum)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *ReportRepo) StockAging(ctx context.Context) ([]repository.AgingRow, error) {
	var out []repository.AgingRow
	r.s.read(func(st *state) {
		last := map[string]time.Time{}
		for _, m := range st.movements {
			if t, ok := last[m.ItemID]; !ok || m.MovementDate.After(t) {
				last[m.ItemID] = m.MovementDate
			}
		}
		for _, it := range st.items {
			if it.QuantityInStock <= 0 {
				continue
			}
			row := repository.AgingRow{ItemID: it.ID, SKU: it.SKU, Name: it.Name, Quantity: it.QuantityInStock, CreatedAt: it.CreatedAt}
			if t, ok := last[it.ID]; ok {
				t := t
				row.LastMovementAt = &t
			}
			out = append(out, row)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *ReportRepo) Valuation(ctx context.Context) ([]repository.ValuationRow, error) {
	byCat := map[string]*repository.ValuationRow{}
	r.s.read(func(st *state) {
		for _, it := range st.items {
			if it.Status != entity.ItemStatusActive {
				continue
			}
			row, ok := byCat[it.CategoryID]
			if !ok {
				row = &repository.ValuationRow{CategoryID: it.CategoryID, PurchaseValue: decimal.Zero, SellingValue: decimal.Zero}
				if c, ok := st.categories[it.CategoryID]; ok {
					row.CategoryName = c.Name
				}
				byCat[it.CategoryID] = row
			}
			qty := decimal.NewFromInt(it.QuantityInStock)
			row.Items++
			row.Units += it.QuantityInStock
			row.PurchaseValue = row.PurchaseValue.Add(it.PurchasePrice.Mul(qty))
			row.SellingValue = row.SellingValue.Add(it.SellingPrice.Mul(qty))
		}
	})
	out := make([]repository.ValuationRow, 0, len(byCat))
	for _, row := range byCat {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CategoryName < out[j].CategoryName })
	return out, nil
}
