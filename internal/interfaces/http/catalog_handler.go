package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/usecase"
)

// CatalogHandler categorías y proveedores referenciados por los ítems (protegido).
type CatalogHandler struct {
	categories *usecase.CategoryUseCase
	suppliers  *usecase.SupplierUseCase
	errs       *ErrorWriter
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(categories *usecase.CategoryUseCase, suppliers *usecase.SupplierUseCase, errs *ErrorWriter) *CatalogHandler {
	return &CatalogHandler{categories: categories, suppliers: suppliers, errs: errs}
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateCategoryRequest  true  "name, code"
// @Success      201   {object}  dto.APIResponse{data=dto.CategoryResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.categories.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusCreated, "categoría creada", out)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "solo activas"
// @Success      200  {object}  dto.APIResponse{data=[]dto.CategoryResponse}
// @Router       /api/categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.categories.List(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "categorías", out)
}

// GetCategory godoc
// @Summary      Obtener categoría
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID"
// @Success      200  {object}  dto.APIResponse{data=dto.CategoryResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/categories/{id} [get]
func (h *CatalogHandler) GetCategory(c *fiber.Ctx) error {
	out, err := h.categories.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "categoría", out)
}

// UpdateCategory godoc
// @Summary      Actualizar categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "UUID"
// @Param        body  body      dto.UpdateCategoryRequest  true  "campos a modificar"
// @Success      200   {object}  dto.APIResponse{data=dto.CategoryResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/categories/{id} [put]
func (h *CatalogHandler) UpdateCategory(c *fiber.Ctx) error {
	var in dto.UpdateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.categories.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "categoría actualizada", out)
}

// DeleteCategory godoc
// @Summary      Eliminar categoría
// @Description  409 si algún ítem la referencia.
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID"
// @Success      200  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Failure      409  {object}  dto.APIResponse
// @Router       /api/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	if err := h.categories.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "categoría eliminada", nil)
}

// CreateSupplier godoc
// @Summary      Crear proveedor
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSupplierRequest  true  "name, code"
// @Success      201   {object}  dto.APIResponse{data=dto.SupplierResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/suppliers [post]
func (h *CatalogHandler) CreateSupplier(c *fiber.Ctx) error {
	var in dto.CreateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.suppliers.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusCreated, "proveedor creado", out)
}

// ListSuppliers godoc
// @Summary      Listar proveedores
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "solo activos"
// @Success      200  {object}  dto.APIResponse{data=[]dto.SupplierResponse}
// @Router       /api/suppliers [get]
func (h *CatalogHandler) ListSuppliers(c *fiber.Ctx) error {
	out, err := h.suppliers.List(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "proveedores", out)
}

// GetSupplier godoc
// @Summary      Obtener proveedor
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID"
// @Success      200  {object}  dto.APIResponse{data=dto.SupplierResponse}
// @Failure      404  {object}  dto.APIResponse
// @Router       /api/suppliers/{id} [get]
func (h *CatalogHandler) GetSupplier(c *fiber.Ctx) error {
	out, err := h.suppliers.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "proveedor", out)
}

// UpdateSupplier godoc
// @Summary      Actualizar proveedor
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      string                     true  "UUID"
// @Param        body  body      dto.UpdateSupplierRequest  true  "campos a modificar"
// @Success      200   {object}  dto.APIResponse{data=dto.SupplierResponse}
// @Failure      400   {object}  dto.APIResponse
// @Failure      404   {object}  dto.APIResponse
// @Failure      409   {object}  dto.APIResponse
// @Router       /api/suppliers/{id} [put]
func (h *CatalogHandler) UpdateSupplier(c *fiber.Ctx) error {
	var in dto.UpdateSupplierRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.suppliers.Update(c.UserContext(), GetActor(c), c.Params("id"), in)
	if err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "proveedor actualizado", out)
}

// DeleteSupplier godoc
// @Summary      Eliminar proveedor
// @Description  409 si algún ítem lo referencia.
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path      string  true  "UUID"
// @Success      200  {object}  dto.APIResponse
// @Failure      404  {object}  dto.APIResponse
// @Failure      409  {object}  dto.APIResponse
// @Router       /api/suppliers/{id} [delete]
func (h *CatalogHandler) DeleteSupplier(c *fiber.Ctx) error {
	if err := h.suppliers.Delete(c.UserContext(), GetActor(c), c.Params("id")); err != nil {
		return h.errs.Respond(c, err)
	}
	return ok(c, fiber.StatusOK, "proveedor eliminado", nil)
}
