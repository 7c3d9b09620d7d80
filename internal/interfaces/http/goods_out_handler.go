package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/goodsout"
)

// GoodsOutHandler solicitudes de salida de mercancía (protegido).
type GoodsOutHandler struct {
	uc   *goodsout.WorkflowUseCase
	errs *ErrorWriter
}

// NewGoodsOutHandler construye el handler.
func NewGoodsOutHandler(uc *goodsout.WorkflowUseCase, errs *ErrorWriter) *GoodsOutHandler {
	return &GoodsOutHandler{uc: uc, errs: errs}
}

// Create godoc
// @Summary      Crear solicitud de salida
// @Description  Solo técnicos. quantity por defecto 1. El stock se verifica de nuevo al aprobar.
// @Tags         good-out-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateGoodsOutRequest  true  "item_id, quantity, usage_description, customer_location"
// @Success      201   {object}  dto.APIResponse{data=dto.GoodsOutResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      403   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/good-out-requests [post]
func (h *GoodsOutHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateGoodsOutRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	req, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusCreated, "solicitud creada", dto.NewGoodsOutResponse(req))
}

// List godoc
// @Summary      Listar solicitudes
// @Description  Los técnicos solo ven las propias.
// @Tags         good-out-requests
// @Security     Bearer
// @Produce      json
// @Param        status        query  string  false  "pending | approved | rejected | completed"
// @Param        requested_by  query  string  false  "UUID del solicitante"
// @Param        item_id       query  string  false  "UUID del ítem"
// @Param        my_requests   query  bool    false  "solo las del usuario autenticado"
// @Param        limit         query  int     false  "máx. 100"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  dto.APIResponse{data=[]dto.GoodsOutResponse}
// @Router       /api/good-out-requests [get]
func (h *GoodsOutHandler) List(c *fiber.Ctx) error {
	page := pageFromQuery(c)
	list, total, err := h.uc.List(c.UserContext(), GetActor(c), goodsout.ListFilter{
		Status:      c.Query("status"),
		RequestedBy: c.Query("requested_by"),
		ItemID:      c.Query("item_id"),
		MyRequests:  c.QueryBool("my_requests", false),
	}, page)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return okPage(c, "solicitudes", dto.NewGoodsOutList(list), page, total)
}

// GetByID godoc
// @Summary      Obtener solicitud
// @Tags         good-out-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID de la solicitud"
// @Success      200  {object}  dto.APIResponse{data=dto.GoodsOutResponse}
// @Failure      403  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/good-out-requests/{id} [get]
func (h *GoodsOutHandler) GetByID(c *fiber.Ctx) error {
	req, err := h.uc.GetByID(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "solicitud", dto.NewGoodsOutResponse(req))
}

// Approve godoc
// @Summary      Aprobar solicitud
// @Description  Descuenta el stock y marca la solicitud como approved en una sola transacción.
// @Tags         good-out-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID de la solicitud"
// @Success      200  {object}  dto.APIResponse{data=dto.ApproveGoodsOutResponse}
// @Failure      400  {object}  dto.APIResponse  "INVALID_STATE o INSUFFICIENT_STOCK"
// @Failure      403  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Failure      503  {object}  dto.APIResponse
// @Router       /api/good-out-requests/{id}/approve [put]
func (h *GoodsOutHandler) Approve(c *fiber.Ctx) error {
	res, err := h.uc.Approve(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "solicitud aprobada", dto.ApproveGoodsOutResponse{
		Request:       dto.NewGoodsOutResponse(res.Request),
		Movement:      dto.NewMovementResponse(res.Movement.Movement),
		PreviousStock: res.Movement.PreviousStock,
		NewStock:      res.Movement.NewStock,
	})
}

// Reject godoc
// @Summary      Rechazar solicitud
// @Tags         good-out-requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true   "UUID de la solicitud"
// @Param        body  body      dto.RejectGoodsOutRequest  false  "rejection_reason"
// @Success      200   {object}  dto.APIResponse{data=dto.GoodsOutResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      403   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Router       /api/good-out-requests/{id}/reject [put]
func (h *GoodsOutHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectGoodsOutRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	req, err := h.uc.Reject(c.UserContext(), GetActor(c), c.Params("id"), in.RejectionReason)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "solicitud rechazada", dto.NewGoodsOutResponse(req))
}

// Cancel godoc
// @Summary      Cancelar solicitud propia
// @Tags         good-out-requests
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID de la solicitud"
// @Success      200  {object}  dto.APIResponse{data=dto.GoodsOutResponse}
// @Failure      400  {object}  dto.APIResponse
// @Failure      403  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/good-out-requests/{id} [delete]
func (h *GoodsOutHandler) Cancel(c *fiber.Ctx) error {
	req, err := h.uc.Cancel(c.UserContext(), GetActor(c), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "solicitud cancelada", dto.NewGoodsOutResponse(req))
}

// PendingCount godoc
// @Summary      Solicitudes pendientes
// @Tags         good-out-requests
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.APIResponse{data=dto.PendingCountResponse}
// @Failure      403  {object}  dto.APIResponse
// @Router       /api/good-out-requests/pending/count [get]
func (h *GoodsOutHandler) PendingCount(c *fiber.Ctx) error {
	n, err := h.uc.PendingCount(c.UserContext(), GetActor(c))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "solicitudes pendientes", dto.PendingCountResponse{Count: n})
}
