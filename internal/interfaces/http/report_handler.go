package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ispstock-api/internal/application/analytics"
)

// ReportHandler reportes de consistencia y valor del inventario (protegido).
type ReportHandler struct {
	uc   *analytics.ReportUseCase
	errs *ErrorWriter
}

func NewReportHandler(uc *analytics.ReportUseCase, errs *ErrorWriter) *ReportHandler {
	return &ReportHandler{uc: uc, errs: errs}
}

// StockVariance godoc
// @Summary      Varianza ledger vs snapshot
// @Description  Reconstruye el stock de cada ítem desde su ledger y lo compara con quantity_in_stock.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        only_inconsistent  query  bool  false  "solo ítems con divergencia"
// @Success      200  {object}  dto.APIResponse{data=dto.StockVarianceReport}
// @Failure      403  {object}  dto.APIResponse
// @Router       /api/reports/stock-variance [get]
func (h *ReportHandler) StockVariance(c *fiber.Ctx) error {
	out, err := h.uc.StockVariance(c.UserContext(), GetActor(c), c.QueryBool("only_inconsistent", false))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "varianza de stock", out)
}

// StockAging godoc
// @Summary      Antigüedad del stock
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.APIResponse{data=[]dto.StockAgingDTO}
// @Failure      403  {object}  dto.APIResponse
// @Router       /api/reports/stock-aging [get]
func (h *ReportHandler) StockAging(c *fiber.Ctx) error {
	out, err := h.uc.StockAging(c.UserContext(), GetActor(c))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "antigüedad del stock", out)
}

// Valuation godoc
// @Summary      Valorización por categoría
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.APIResponse{data=dto.ValuationReport}
// @Failure      403  {object}  dto.APIResponse
// @Router       /api/reports/valuation [get]
func (h *ReportHandler) Valuation(c *fiber.Ctx) error {
	out, err := h.uc.Valuation(c.UserContext(), GetActor(c))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "valorización", out)
}
