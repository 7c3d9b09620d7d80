package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ispstock-api/internal/application/analytics"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/repository"
)

// InventoryHandler registro de ítems, ajustes de stock y ledger (protegido).
type InventoryHandler struct {
	items   *inventory.ItemUseCase
	adjust  *inventory.AdjustStockUseCase
	reports *analytics.ReportUseCase
	errs    *ErrorWriter
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(items *inventory.ItemUseCase, adjust *inventory.AdjustStockUseCase, reports *analytics.ReportUseCase, errs *ErrorWriter) *InventoryHandler {
	return &InventoryHandler{items: items, adjust: adjust, reports: reports, errs: errs}
}

// Create godoc
// @Summary      Crear ítem
// @Description  Si quantity_in_stock > 0 se registra la entrada inicial del ledger en la misma transacción.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateItemRequest  true  "sku, name, category_id obligatorios"
// @Success      201   {object}  dto.APIResponse{data=dto.ItemResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      403   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.items.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusCreated, "ítem creado", dto.NewItemResponse(item))
}

// List godoc
// @Summary      Listar ítems
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        search       query  string  false  "sku, nombre, marca o modelo"
// @Param        category_id  query  string  false  "UUID de categoría"
// @Param        supplier_id  query  string  false  "UUID de proveedor"
// @Param        status       query  string  false  "active | inactive | discontinued"
// @Param        condition    query  string  false  "new | good | fair | poor | damaged"
// @Param        low_stock    query  bool    false  "solo ítems en o bajo el mínimo"
// @Param        limit        query  int     false  "máx. 100"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.APIResponse{data=[]dto.ItemResponse}
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	f := repository.ItemFilter{
		Search:     c.Query("search"),
		CategoryID: c.Query("category_id"),
		SupplierID: c.Query("supplier_id"),
		Status:     c.Query("status"),
		Condition:  c.Query("condition"),
		LowStock:   c.QueryBool("low_stock", false),
	}
	page := pageFromQuery(c)
	list, total, err := h.items.List(c.UserContext(), f, page)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return okPage(c, "ítems", dto.NewItemList(list), page, total)
}

// GetByID godoc
// @Summary      Obtener ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID del ítem"
// @Success      200  {object}  dto.APIResponse{data=dto.ItemResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/inventory/{id} [get]
func (h *InventoryHandler) GetByID(c *fiber.Ctx) error {
	item, err := h.items.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "ítem", dto.NewItemResponse(item))
}

// GetByCode godoc
// @Summary      Buscar ítem por código
// @Description  Resuelve lo que lee un escáner: SKU, código de barras o QR. Si coinciden varios gana el SKU.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        code  path      string  true  "SKU, barcode o qr_code"
// @Success      200   {object}  dto.APIResponse{data=dto.ItemResponse}
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/inventory/by-code/{code} [get]
func (h *InventoryHandler) GetByCode(c *fiber.Ctx) error {
	item, err := h.items.GetByCode(c.UserContext(), c.Params("code"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "ítem", dto.NewItemResponse(item))
}

// Update godoc
// @Summary      Actualizar ítem
// @Description  quantity_in_stock no se acepta; el stock solo cambia con adjust-stock.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                 true  "UUID del ítem"
// @Param        body  body      dto.UpdateItemRequest  true  "campos a modificar"
// @Success      200   {object}  dto.APIResponse{data=dto.ItemResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/inventory/{id} [put]
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	// la sola presencia de la clave se rechaza, aunque venga en null
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &keys); err != nil {
		return badBody(c)
	}
	if _, present := keys["quantity_in_stock"]; present {
		return h.errs.Respond(c, domain.NewValidationError("quantity_in_stock", "no se puede editar; use POST /inventory/:id/adjust-stock"))
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	item, err := h.items.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "ítem actualizado", dto.NewItemResponse(item))
}

// Delete godoc
// @Summary      Eliminar ítem
// @Description  Borra también su historial de movimientos y sus solicitudes de salida.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID del ítem"
// @Success      200  {object}  dto.APIResponse
// @Failure      403  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/inventory/{id} [delete]
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	if err := h.items.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "ítem eliminado", nil)
}

// AdjustStock godoc
// @Summary      Ajustar stock
// @Description  in/out: quantity es la magnitud. adjustment: quantity es el nuevo stock absoluto.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                  true  "UUID del ítem"
// @Param        body  body      dto.AdjustStockRequest  true  "quantity, movement_type, reason"
// @Success      200   {object}  dto.APIResponse{data=dto.AdjustStockResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Failure      503   {object}  dto.APIResponse
// @Router       /api/inventory/{id}/adjust-stock [post]
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	res, err := h.adjust.AdjustStock(c.UserContext(), inventory.AdjustStockInput{
		Actor:   GetActor(c),
		ItemID:  c.Params("id"),
		Request: in,
	})
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "stock ajustado", dto.AdjustStockResponse{
		Item:          dto.NewItemResponse(res.Item),
		Movement:      dto.NewMovementResponse(res.Movement),
		PreviousStock: res.PreviousStock,
		NewStock:      res.NewStock,
		Adjustment:    res.Adjustment,
	})
}

// ItemMovements godoc
// @Summary      Historial de un ítem
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "UUID del ítem"
// @Param        limit   query  int     false  "máx. 100"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.APIResponse{data=dto.ItemMovementsResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/inventory/{id}/movements [get]
func (h *InventoryHandler) ItemMovements(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	out, total, err := h.items.ListMovements(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return okPage(c, "movimientos del ítem", out, page, total)
}

// Movements godoc
// @Summary      Ledger global
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        item_id        query  string  false  "UUID del ítem"
// @Param        movement_type  query  string  false  "in | out | adjustment | transfer"
// @Param        user_id        query  string  false  "UUID del usuario"
// @Param        date_from      query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        date_to        query  string  false  "YYYY-MM-DD o RFC3339"
// @Success      200  {object}  dto.APIResponse{data=[]dto.MovementResponse}
// @Failure      400  {object}  dto.APIResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	from, err := queryTime(c, "date_from")
	if err != nil {
		return h.errs.Respond(c, err)
	}
	to, err := queryTime(c, "date_to")
	if err != nil {
		return h.errs.Respond(c, err)
	}
	page := pageFromQuery(c)
	list, total, err := h.items.ListAllMovements(c.UserContext(), repository.MovementFilter{
		ItemID:       c.Query("item_id"),
		MovementType: c.Query("movement_type"),
		UserID:       c.Query("user_id"),
		From:         from,
		To:           to,
	}, page)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return okPage(c, "movimientos", dto.NewMovementList(list), page, total)
}

// MovementStats godoc
// @Summary      Estadísticas de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        date_from  query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        date_to    query  string  false  "YYYY-MM-DD o RFC3339"
// @Success      200  {object}  dto.APIResponse{data=dto.MovementStatsDTO}
// @Failure      403  {object}  dto.APIResponse
// @Router       /api/inventory/movements/stats [get]
func (h *InventoryHandler) MovementStats(c *fiber.Ctx) error {
	from, err := queryTime(c, "date_from")
	if err != nil {
		return h.errs.Respond(c, err)
	}
	to, err := queryTime(c, "date_to")
	if err != nil {
		return h.errs.Respond(c, err)
	}
	stats, err := h.reports.MovementStats(c.UserContext(), GetActor(c), from, to)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "estadísticas de movimientos", stats)
}

// LowStock godoc
// @Summary      Ítems con stock bajo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx. 100"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.APIResponse{data=[]dto.LowStockItemDTO}
// @Failure      403  {object}  dto.APIResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, total, err := h.reports.LowStock(c.UserContext(), GetActor(c), page)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return okPage(c, "ítems con stock bajo", list, page, total)
}
