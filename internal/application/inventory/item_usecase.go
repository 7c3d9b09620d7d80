package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/ports"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/inventory"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// InitialStockReason motivo de la entrada que siembra el ledger al crear un ítem con stock.
const InitialStockReason = "Stock inicial"

// ItemUseCase registro de ítems: alta con stock inicial, edición sin cantidad, baja y consultas.
type ItemUseCase struct {
	uow        UnitOfWork
	items      repository.InventoryItemRepository
	movements  repository.MovementRepository
	categories repository.CategoryRepository
	suppliers  repository.SupplierRepository
	events     ports.EventPublisher
	log        zerolog.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	uow UnitOfWork,
	items repository.InventoryItemRepository,
	movements repository.MovementRepository,
	categories repository.CategoryRepository,
	suppliers repository.SupplierRepository,
	events ports.EventPublisher,
	log zerolog.Logger,
) *ItemUseCase {
	return &ItemUseCase{
		uow:        uow,
		items:      items,
		movements:  movements,
		categories: categories,
		suppliers:  suppliers,
		events:     events,
		log:        log,
	}
}

// Create registra el ítem y, si trae stock, la entrada inicial del ledger (before=0) en la misma transacción.
func (uc *ItemUseCase) Create(ctx context.Context, actor policy.Actor, in dto.CreateItemRequest) (*entity.InventoryItem, error) {
	if err := policy.Can(actor, policy.ItemCreate, policy.Resource{}); err != nil {
		return nil, err
	}
	in.SKU = entity.NormalizeSKU(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.Unit == "" {
		in.Unit = entity.DefaultUnit
	}
	if in.Condition == "" {
		in.Condition = entity.ConditionNew
	}
	if in.Status == "" {
		in.Status = entity.ItemStatusActive
	}

	verr := validateCreate(in)
	if err := uc.checkReferences(ctx, in.CategoryID, in.SupplierID, verr); err != nil {
		return nil, err
	}
	if verr.HasErrors() {
		return nil, verr
	}

	now := time.Now().UTC()
	item := &entity.InventoryItem{
		ID:              uuid.New().String(),
		SKU:             in.SKU,
		Name:            in.Name,
		Description:     in.Description,
		CategoryID:      in.CategoryID,
		SupplierID:      in.SupplierID,
		Brand:           in.Brand,
		Model:           in.Model,
		SerialNumber:    in.SerialNumber,
		Barcode:         in.Barcode,
		QRCode:          in.QRCode,
		ImageURL:        in.ImageURL,
		PurchasePrice:   in.PurchasePrice,
		SellingPrice:    in.SellingPrice,
		QuantityInStock: in.QuantityInStock,
		MinimumStock:    in.MinimumStock,
		MaximumStock:    in.MaximumStock,
		Unit:            in.Unit,
		Location:        in.Location,
		Condition:       in.Condition,
		Status:          in.Status,
		Specifications:  in.Specifications,
		Notes:           in.Notes,
		CreatedBy:       actor.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var seed *entity.InventoryMovement
	err := uc.uow.Run(ctx, func(repos TxRepos) error {
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		if item.QuantityInStock == 0 {
			return nil
		}
		cost := item.PurchasePrice
		seed = &entity.InventoryMovement{
			ItemID:         item.ID,
			UserID:         actor.ID,
			Type:           entity.MovementTypeIn,
			Quantity:       item.QuantityInStock,
			QuantityBefore: 0,
			QuantityAfter:  item.QuantityInStock,
			UnitCost:       &cost,
			Reason:         InitialStockReason,
			MovementDate:   now,
			CreatedAt:      now,
		}
		if err := inventory.ValidateEntry(seed); err != nil {
			return err
		}
		return repos.Movements.Append(ctx, seed)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("item_id", item.ID).Str("sku", item.SKU).Int64("initial_stock", item.QuantityInStock).Msg("ítem creado")
	uc.events.Publish(ctx, ports.EventInventoryUpdate, ports.InventoryUpdate{
		Action:   ports.ActionCreate,
		ItemID:   item.ID,
		Item:     dto.NewItemResponse(item),
		Movement: dto.NewMovementResponse(seed),
	})
	return item, nil
}

// Update modifica campos descriptivos. quantity_in_stock solo cambia con un ajuste de stock.
func (uc *ItemUseCase) Update(ctx context.Context, actor policy.Actor, id string, in dto.UpdateItemRequest) (*entity.InventoryItem, error) {
	if err := policy.Can(actor, policy.ItemUpdate, policy.Resource{}); err != nil {
		return nil, err
	}
	if in.QuantityInStock != nil {
		return nil, domain.NewValidationError("quantity_in_stock", "no se puede editar; use POST /inventory/:id/adjust-stock")
	}
	// la fila queda bloqueada: un ajuste concurrente no puede perder su costo promedio
	var item *entity.InventoryItem
	err := uc.uow.Run(ctx, func(repos TxRepos) error {
		current, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return domain.NotFound("ítem")
		}

		verr := applyPatch(current, in)
		if in.CategoryID != nil || in.SupplierID != nil {
			cat, sup := "", ""
			if in.CategoryID != nil {
				cat = current.CategoryID
			}
			if in.SupplierID != nil {
				sup = current.SupplierID
			}
			if err := uc.checkReferences(ctx, cat, sup, verr); err != nil {
				return err
			}
		}
		if verr.HasErrors() {
			return verr
		}
		if in.SKU != nil {
			other, err := repos.Items.GetBySKU(ctx, current.SKU)
			if err != nil {
				return err
			}
			if other != nil && other.ID != current.ID {
				return domain.Conflict("el SKU " + current.SKU + " ya está en uso")
			}
		}

		current.UpdatedAt = time.Now().UTC()
		if err := repos.Items.Update(ctx, current); err != nil {
			return err
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.events.Publish(ctx, ports.EventInventoryUpdate, ports.InventoryUpdate{
		Action: ports.ActionUpdate,
		ItemID: item.ID,
		Item:   dto.NewItemResponse(item),
	})
	return item, nil
}

// Delete elimina el ítem con su historial de movimientos y sus solicitudes de salida.
func (uc *ItemUseCase) Delete(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Can(actor, policy.ItemDelete, policy.Resource{}); err != nil {
		return err
	}
	if err := uc.uow.Run(ctx, func(repos TxRepos) error {
		return repos.Items.Delete(ctx, id)
	}); err != nil {
		return err
	}
	uc.log.Warn().Str("item_id", id).Str("actor_id", actor.ID).Msg("ítem eliminado junto con su ledger")
	uc.events.Publish(ctx, ports.EventInventoryUpdate, ports.InventoryUpdate{Action: ports.ActionDelete, ItemID: id})
	return nil
}

// GetByID obtiene un ítem.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("ítem")
	}
	return item, nil
}

// GetByCode resuelve lo que lee un escáner: SKU, código de barras o QR.
func (uc *ItemUseCase) GetByCode(ctx context.Context, code string) (*entity.InventoryItem, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.NewValidationError("code", "requerido")
	}
	item, err := uc.items.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.NotFound("ítem")
	}
	return item, nil
}

// List lista ítems con filtros y paginación.
func (uc *ItemUseCase) List(ctx context.Context, f repository.ItemFilter, page dto.PageRequest) ([]*entity.InventoryItem, int, error) {
	page.DefaultPage()
	return uc.items.List(ctx, f, page.Limit, page.Offset)
}

// ListMovements devuelve el resumen del ítem y su ledger paginado.
func (uc *ItemUseCase) ListMovements(ctx context.Context, itemID string, page dto.PageRequest) (*dto.ItemMovementsResponse, int, error) {
	page.DefaultPage()
	item, err := uc.GetByID(ctx, itemID)
	if err != nil {
		return nil, 0, err
	}
	list, total, err := uc.movements.ListByItem(ctx, itemID, page.Limit, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	return &dto.ItemMovementsResponse{
		Item: dto.ItemStockSummary{
			ID:           item.ID,
			SKU:          item.SKU,
			Name:         item.Name,
			CurrentStock: item.QuantityInStock,
		},
		Movements: dto.NewMovementList(list),
	}, total, nil
}

// ListAllMovements lista el ledger global con filtros.
func (uc *ItemUseCase) ListAllMovements(ctx context.Context, f repository.MovementFilter, page dto.PageRequest) ([]*entity.InventoryMovement, int, error) {
	page.DefaultPage()
	if f.MovementType != "" && !entity.IsValidMovementType(f.MovementType) {
		return nil, 0, domain.NewValidationError("movement_type", "tipo desconocido")
	}
	return uc.movements.List(ctx, f, page.Limit, page.Offset)
}

func (uc *ItemUseCase) checkReferences(ctx context.Context, categoryID, supplierID string, verr *domain.ValidationError) error {
	if categoryID != "" {
		cat, err := uc.categories.GetByID(ctx, categoryID)
		if err != nil {
			return err
		}
		if cat == nil {
			verr.Add("category_id", "la categoría no existe")
		}
	}
	if supplierID != "" {
		sup, err := uc.suppliers.GetByID(ctx, supplierID)
		if err != nil {
			return err
		}
		if sup == nil {
			verr.Add("supplier_id", "el proveedor no existe")
		}
	}
	return nil
}

func validateCreate(in dto.CreateItemRequest) *domain.ValidationError {
	verr := &domain.ValidationError{}
	if n := len([]rune(in.SKU)); n < 2 || n > 50 {
		verr.Add("sku", "debe tener entre 2 y 50 caracteres")
	}
	if n := len([]rune(in.Name)); n < 2 || n > 200 {
		verr.Add("name", "debe tener entre 2 y 200 caracteres")
	}
	if in.CategoryID == "" {
		verr.Add("category_id", "requerido")
	}
	if in.PurchasePrice.LessThan(decimal.Zero) {
		verr.Add("purchase_price", "no puede ser negativo")
	}
	if in.SellingPrice.LessThan(decimal.Zero) {
		verr.Add("selling_price", "no puede ser negativo")
	}
	if in.QuantityInStock < 0 {
		verr.Add("quantity_in_stock", "no puede ser negativo")
	}
	if in.MinimumStock < 0 {
		verr.Add("minimum_stock", "no puede ser negativo")
	}
	if in.MaximumStock != nil && *in.MaximumStock < in.MinimumStock {
		verr.Add("maximum_stock", "debe ser mayor o igual a minimum_stock")
	}
	if !entity.IsValidCondition(in.Condition) {
		verr.Add("condition", "debe ser new, good, fair, poor o damaged")
	}
	if !entity.IsValidItemStatus(in.Status) {
		verr.Add("status", "debe ser active, inactive o discontinued")
	}
	return verr
}

// applyPatch copia los campos presentes y valida cada uno.
func applyPatch(item *entity.InventoryItem, in dto.UpdateItemRequest) *domain.ValidationError {
	verr := &domain.ValidationError{}
	if in.SKU != nil {
		sku := entity.NormalizeSKU(*in.SKU)
		if n := len([]rune(sku)); n < 2 || n > 50 {
			verr.Add("sku", "debe tener entre 2 y 50 caracteres")
		}
		item.SKU = sku
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if n := len([]rune(name)); n < 2 || n > 200 {
			verr.Add("name", "debe tener entre 2 y 200 caracteres")
		}
		item.Name = name
	}
	if in.CategoryID != nil {
		if *in.CategoryID == "" {
			verr.Add("category_id", "requerido")
		}
		item.CategoryID = *in.CategoryID
	}
	if in.PurchasePrice != nil {
		if in.PurchasePrice.LessThan(decimal.Zero) {
			verr.Add("purchase_price", "no puede ser negativo")
		}
		item.PurchasePrice = *in.PurchasePrice
	}
	if in.SellingPrice != nil {
		if in.SellingPrice.LessThan(decimal.Zero) {
			verr.Add("selling_price", "no puede ser negativo")
		}
		item.SellingPrice = *in.SellingPrice
	}
	if in.MinimumStock != nil {
		if *in.MinimumStock < 0 {
			verr.Add("minimum_stock", "no puede ser negativo")
		}
		item.MinimumStock = *in.MinimumStock
	}
	if in.MaximumStock != nil {
		item.MaximumStock = in.MaximumStock
	}
	if item.MaximumStock != nil && *item.MaximumStock < item.MinimumStock {
		verr.Add("maximum_stock", "debe ser mayor o igual a minimum_stock")
	}
	if in.Condition != nil {
		if !entity.IsValidCondition(*in.Condition) {
			verr.Add("condition", "debe ser new, good, fair, poor o damaged")
		}
		item.Condition = *in.Condition
	}
	if in.Status != nil {
		if !entity.IsValidItemStatus(*in.Status) {
			verr.Add("status", "debe ser active, inactive o discontinued")
		}
		item.Status = *in.Status
	}
	if len(in.Specifications) > 0 {
		item.Specifications = in.Specifications
	}
	setString(&item.Description, in.Description)
	setString(&item.SupplierID, in.SupplierID)
	setString(&item.Brand, in.Brand)
	setString(&item.Model, in.Model)
	setString(&item.SerialNumber, in.SerialNumber)
	setString(&item.Barcode, in.Barcode)
	setString(&item.QRCode, in.QRCode)
	setString(&item.ImageURL, in.ImageURL)
	setString(&item.Unit, in.Unit)
	setString(&item.Location, in.Location)
	setString(&item.Notes, in.Notes)
	return verr
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
