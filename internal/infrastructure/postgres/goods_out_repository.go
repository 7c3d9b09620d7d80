package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

var _ repository.GoodsOutRequestRepository = (*GoodsOutRequestRepo)(nil)

const goodsOutColumns = `id, item_id, requested_by, quantity, reason, notes, customer_info, status,
	approved_by, rejection_reason, requested_at, approved_at, completed_at, created_at, updated_at`

// GoodsOutRequestRepo solicitudes de salida sobre PostgreSQL (usable con pool o tx).
type GoodsOutRequestRepo struct {
	q Querier
}

// NewGoodsOutRequestRepository construye el adaptador.
func NewGoodsOutRequestRepository(q Querier) *GoodsOutRequestRepo {
	return &GoodsOutRequestRepo{q: q}
}

func scanGoodsOut(row pgx.Row) (*entity.GoodsOutRequest, error) {
	var g entity.GoodsOutRequest
	var approvedBy *string
	err := row.Scan(&g.ID, &g.ItemID, &g.RequestedBy, &g.Quantity, &g.Reason, &g.Notes, &g.CustomerInfo, &g.Status,
		&approvedBy, &g.RejectionReason, &g.RequestedAt, &g.ApprovedAt, &g.CompletedAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.ApprovedBy = deref(approvedBy)
	return &g, nil
}

// Create persiste una solicitud pending.
func (r *GoodsOutRequestRepo) Create(ctx context.Context, g *entity.GoodsOutRequest) error {
	if !validID(g.ItemID) {
		return domain.NotFound("ítem")
	}
	query := `
		INSERT INTO goods_out_requests (` + goodsOutColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		g.ID, g.ItemID, g.RequestedBy, g.Quantity, g.Reason, g.Notes, g.CustomerInfo, g.Status,
		nullIfEmpty(g.ApprovedBy), g.RejectionReason, g.RequestedAt, g.ApprovedAt, g.CompletedAt, g.CreatedAt, g.UpdatedAt,
	)
	if err != nil {
		if isFKViolation(err) {
			return domain.NotFound("ítem")
		}
		return fmt.Errorf("insert goods out request: %w", err)
	}
	return nil
}

// GetByID obtiene una solicitud.
func (r *GoodsOutRequestRepo) GetByID(ctx context.Context, id string) (*entity.GoodsOutRequest, error) {
	if !validID(id) {
		return nil, nil
	}
	g, err := scanGoodsOut(r.q.QueryRow(ctx, `SELECT `+goodsOutColumns+` FROM goods_out_requests WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get goods out request: %w", err)
	}
	return g, nil
}

// GetForUpdate bloquea la solicitud; dos aprobaciones simultáneas se serializan aquí.
func (r *GoodsOutRequestRepo) GetForUpdate(ctx context.Context, id string) (*entity.GoodsOutRequest, error) {
	if !validID(id) {
		return nil, nil
	}
	g, err := scanGoodsOut(r.q.QueryRow(ctx, `SELECT `+goodsOutColumns+` FROM goods_out_requests WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock goods out request: %w", err)
	}
	return g, nil
}

// UpdateDecision persiste el resultado de aprobar, rechazar o cancelar.
func (r *GoodsOutRequestRepo) UpdateDecision(ctx context.Context, g *entity.GoodsOutRequest) error {
	if !validID(g.ID) {
		return domain.NotFound("solicitud")
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE goods_out_requests
		SET status = $2, approved_by = $3, approved_at = $4, rejection_reason = $5, completed_at = $6, updated_at = $7
		WHERE id = $1`,
		g.ID, g.Status, nullIfEmpty(g.ApprovedBy), g.ApprovedAt, g.RejectionReason, g.CompletedAt, g.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update goods out decision: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("solicitud")
	}
	return nil
}

// List solicitudes filtradas, más recientes primero.
func (r *GoodsOutRequestRepo) List(ctx context.Context, f repository.GoodsOutFilter, limit, offset int) ([]*entity.GoodsOutRequest, int, error) {
	if (f.RequestedBy != "" && !validID(f.RequestedBy)) || (f.ItemID != "" && !validID(f.ItemID)) {
		return []*entity.GoodsOutRequest{}, 0, nil
	}
	w := &where{}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.RequestedBy != "" {
		w.add("requested_by = ?", f.RequestedBy)
	}
	if f.ItemID != "" {
		w.add("item_id = ?", f.ItemID)
	}
	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM goods_out_requests`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count goods out requests: %w", err)
	}
	tail, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+goodsOutColumns+` FROM goods_out_requests`+w.sql()+` ORDER BY requested_at DESC, id ASC`+tail, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list goods out requests: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.GoodsOutRequest, 0)
	for rows.Next() {
		g, err := scanGoodsOut(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan goods out request: %w", err)
		}
		list = append(list, g)
	}
	return list, total, rows.Err()
}

// CountByStatus cantidad de solicitudes en un estado.
func (r *GoodsOutRequestRepo) CountByStatus(ctx context.Context, status string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM goods_out_requests WHERE status = $1`, status).Scan(&n); err != nil {
		return 0, fmt.Errorf("count goods out by status: %w", err)
	}
	return n, nil
}
