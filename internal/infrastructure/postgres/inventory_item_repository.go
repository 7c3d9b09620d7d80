package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

var _ repository.InventoryItemRepository = (*InventoryItemRepo)(nil)

const itemColumns = `id, sku, name, description, category_id, supplier_id, brand, model, serial_number,
	barcode, qr_code, image_url, purchase_price, selling_price, quantity_in_stock, minimum_stock,
	maximum_stock, unit, location, condition, status, specifications, notes, created_by, created_at, updated_at`

// InventoryItemRepo implementación del registro de ítems sobre PostgreSQL (usable con pool o tx).
type InventoryItemRepo struct {
	q Querier
}

// NewInventoryItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryItemRepository(q Querier) *InventoryItemRepo {
	return &InventoryItemRepo{q: q}
}

func scanItem(row pgx.Row) (*entity.InventoryItem, error) {
	var it entity.InventoryItem
	var supplierID, createdBy *string
	err := row.Scan(
		&it.ID, &it.SKU, &it.Name, &it.Description, &it.CategoryID, &supplierID, &it.Brand, &it.Model, &it.SerialNumber,
		&it.Barcode, &it.QRCode, &it.ImageURL, &it.PurchasePrice, &it.SellingPrice, &it.QuantityInStock, &it.MinimumStock,
		&it.MaximumStock, &it.Unit, &it.Location, &it.Condition, &it.Status, &it.Specifications, &it.Notes, &createdBy,
		&it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.SupplierID = deref(supplierID)
	it.CreatedBy = deref(createdBy)
	return &it, nil
}

// Create persiste un nuevo ítem. SKU duplicado → domain.ErrConflict.
func (r *InventoryItemRepo) Create(ctx context.Context, it *entity.InventoryItem) error {
	if !validID(it.CategoryID) {
		return domain.NewValidationError("category_id", "referencia inexistente")
	}
	if it.SupplierID != "" && !validID(it.SupplierID) {
		return domain.NewValidationError("supplier_id", "referencia inexistente")
	}
	query := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.SKU, it.Name, it.Description, it.CategoryID, nullIfEmpty(it.SupplierID), it.Brand, it.Model, it.SerialNumber,
		it.Barcode, it.QRCode, it.ImageURL, it.PurchasePrice, it.SellingPrice, it.QuantityInStock, it.MinimumStock,
		it.MaximumStock, it.Unit, it.Location, it.Condition, it.Status, it.Specifications, it.Notes, nullIfEmpty(it.CreatedBy),
		it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("el SKU " + it.SKU + " ya está en uso")
		}
		if isFKViolation(err) || isInvalidText(err) {
			return domain.NewValidationError("category_id", "referencia inexistente")
		}
		return fmt.Errorf("insert inventory item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *InventoryItemRepo) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	if !validID(id) {
		return nil, nil
	}
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item: %w", err)
	}
	return it, nil
}

// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
func (r *InventoryItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	if !validID(id) {
		return nil, nil
	}
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock inventory item: %w", err)
	}
	return it, nil
}

// GetBySKU obtiene un ítem por SKU (ya normalizado).
func (r *InventoryItemRepo) GetBySKU(ctx context.Context, sku string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE sku = $1`, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item by sku: %w", err)
	}
	return it, nil
}

// GetByCode busca por SKU normalizado, barcode o qr_code; si hay varias coincidencias gana el SKU.
func (r *InventoryItemRepo) GetByCode(ctx context.Context, code string) (*entity.InventoryItem, error) {
	it, err := scanItem(r.q.QueryRow(ctx, `
		SELECT `+itemColumns+` FROM inventory_items
		WHERE sku = $1 OR barcode = $2 OR qr_code = $2
		ORDER BY (sku = $1) DESC, created_at ASC
		LIMIT 1`, entity.NormalizeSKU(code), code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory item by code: %w", err)
	}
	return it, nil
}

// Update persiste los campos descriptivos. quantity_in_stock no está en el SET.
func (r *InventoryItemRepo) Update(ctx context.Context, it *entity.InventoryItem) error {
	if !validID(it.ID) {
		return domain.NotFound("ítem")
	}
	if !validID(it.CategoryID) {
		return domain.NewValidationError("category_id", "referencia inexistente")
	}
	if it.SupplierID != "" && !validID(it.SupplierID) {
		return domain.NewValidationError("supplier_id", "referencia inexistente")
	}
	query := `
		UPDATE inventory_items SET sku = $2, name = $3, description = $4, category_id = $5, supplier_id = $6,
			brand = $7, model = $8, serial_number = $9, barcode = $10, qr_code = $11, image_url = $12,
			purchase_price = $13, selling_price = $14, minimum_stock = $15, maximum_stock = $16, unit = $17,
			location = $18, condition = $19, status = $20, specifications = $21, notes = $22, updated_at = $23
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		it.ID, it.SKU, it.Name, it.Description, it.CategoryID, nullIfEmpty(it.SupplierID),
		it.Brand, it.Model, it.SerialNumber, it.Barcode, it.QRCode, it.ImageURL,
		it.PurchasePrice, it.SellingPrice, it.MinimumStock, it.MaximumStock, it.Unit,
		it.Location, it.Condition, it.Status, it.Specifications, it.Notes, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("el SKU " + it.SKU + " ya está en uso")
		}
		if isFKViolation(err) {
			return domain.NewValidationError("category_id", "referencia inexistente")
		}
		return fmt.Errorf("update inventory item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("ítem")
	}
	return nil
}

// UpdateStock escribe el snapshot de cantidad y el costo promedio. Solo se llama dentro de una tx con la fila bloqueada.
func (r *InventoryItemRepo) UpdateStock(ctx context.Context, id string, quantity int64, purchasePrice decimal.Decimal) error {
	if !validID(id) {
		return domain.NotFound("ítem")
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_items SET quantity_in_stock = $2, purchase_price = $3, updated_at = NOW() WHERE id = $1`,
		id, quantity, purchasePrice,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("ítem")
	}
	return nil
}

// Delete borra solicitudes, movimientos y el ítem. Debe correr dentro de la misma tx.
func (r *InventoryItemRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.NotFound("ítem")
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM goods_out_requests WHERE item_id = $1`, id); err != nil {
		return fmt.Errorf("delete item requests: %w", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM inventory_movements WHERE item_id = $1`, id); err != nil {
		return fmt.Errorf("delete item movements: %w", err)
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete inventory item: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NotFound("ítem")
	}
	return nil
}

// List lista ítems con filtros; más recientes primero.
func (r *InventoryItemRepo) List(ctx context.Context, f repository.ItemFilter, limit, offset int) ([]*entity.InventoryItem, int, error) {
	if (f.CategoryID != "" && !validID(f.CategoryID)) || (f.SupplierID != "" && !validID(f.SupplierID)) {
		return []*entity.InventoryItem{}, 0, nil
	}
	w := &where{}
	if f.Search != "" {
		w.add("(sku ILIKE ? OR name ILIKE ? OR brand ILIKE ? OR model ILIKE ? OR barcode ILIKE ? OR qr_code ILIKE ?)", "%"+f.Search+"%")
	}
	if f.CategoryID != "" {
		w.add("category_id = ?", f.CategoryID)
	}
	if f.SupplierID != "" {
		w.add("supplier_id = ?", f.SupplierID)
	}
	if f.Status != "" {
		w.add("status = ?", f.Status)
	}
	if f.Condition != "" {
		w.add("condition = ?", f.Condition)
	}
	if f.LowStock {
		w.conds = append(w.conds, "quantity_in_stock <= minimum_stock")
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items`+w.sql(), w.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory items: %w", err)
	}

	tail, args := w.page(limit, offset)
	rows, err := r.q.Query(ctx, `SELECT `+itemColumns+` FROM inventory_items`+w.sql()+` ORDER BY created_at DESC, sku ASC`+tail, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list inventory items: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.InventoryItem, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan inventory item: %w", err)
		}
		list = append(list, it)
	}
	return list, total, rows.Err()
}
