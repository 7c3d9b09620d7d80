package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ispstock-api/internal/application/analytics"
	"github.com/jhoicas/ispstock-api/internal/application/auth"
	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/goodsout"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/application/usecase"
	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	apphttp "github.com/jhoicas/ispstock-api/internal/interfaces/http"
	"github.com/jhoicas/ispstock-api/internal/testutil"
	"github.com/jhoicas/ispstock-api/internal/testutil/memstore"
	pkgjwt "github.com/jhoicas/ispstock-api/pkg/jwt"
	"github.com/jhoicas/ispstock-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno HTTP completo sobre el store en memoria
// ──────────────────────────────────────────────────────────────────────────────

const (
	adminID = "u-admin"
	techID  = "u-tech"
	tech2ID = "u-tech-2"
	salesID = "u-sales"
	catID   = "cat-1"
)

type apiBody struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	Data       json.RawMessage   `json:"data"`
	Errors     map[string]string `json:"errors"`
	Detail     string            `json:"detail"`
	Pagination *dto.PageResponse `json:"pagination"`
}

type env struct {
	t      *testing.T
	app    *fiber.App
	store  *memstore.Store
	tokens map[string]string
}

func newEnv(t *testing.T, dev bool) *env {
	t.Helper()
	store := memstore.New()
	rec := testutil.NewRecorder()
	log := logger.Nop()
	errs := apphttp.NewErrorWriter(dev, log.Component("http"))

	authUC := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer})
	app := fiber.New(fiber.Config{ErrorHandler: errs.Handler()})
	apphttp.Router(app, apphttp.RouterDeps{
		ItemUC:     inventory.NewItemUseCase(store, store.Items(), store.Movements(), store.Categories(), store.Suppliers(), rec, log.Component("inventory")),
		AdjustUC:   inventory.NewAdjustStockUseCase(store, rec, rec, log.Component("stock")),
		GoodsOutUC: goodsout.NewWorkflowUseCase(store, store.Items(), store.GoodsOut(), rec, rec, log.Component("goods_out")),
		ReportUC:   analytics.NewReportUseCase(store.Reports()),
		CategoryUC: usecase.NewCategoryUseCase(store.Categories()),
		SupplierUC: usecase.NewSupplierUseCase(store.Suppliers()),
		AuthUC:     authUC,
		Errors:     errs,
		JWTSecret:  testJWTSecret,
	})

	ctx := context.Background()
	require.NoError(t, store.Categories().Create(ctx, &entity.Category{ID: catID, Name: "ONTs", Code: "ONT", IsActive: true}))

	e := &env{t: t, app: app, store: store, tokens: map[string]string{}}
	for id, role := range map[string]string{
		adminID: entity.RoleAdmin,
		techID:  entity.RoleTechnician,
		tech2ID: entity.RoleTechnician,
		salesID: entity.RoleSales,
	} {
		tok, err := pkgjwt.Generate(testJWTSecret, id, role, testIssuer, testExpMin)
		require.NoError(t, err)
		e.tokens[id] = tok
	}
	return e
}

func (e *env) call(method, path, as string, body any) (int, apiBody, *http.Response) {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[as])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var out apiBody
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out, resp
}

func (e *env) createItem(sku string, qty int64) dto.ItemResponse {
	e.t.Helper()
	status, body, _ := e.call(http.MethodPost, "/api/inventory", adminID, map[string]any{
		"sku": sku, "name": "ONT " + sku, "category_id": catID,
		"purchase_price": "80.00", "selling_price": "120.00",
		"quantity_in_stock": qty, "minimum_stock": 2,
	})
	require.Equal(e.t, http.StatusCreated, status, body.Message)
	var item dto.ItemResponse
	require.NoError(e.t, json.Unmarshal(body.Data, &item))
	return item
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// ──────────────────────────────────────────────────────────────────────────────
// Inventario
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_CrearItemYAjustarStock(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-hg8245", 10)
	assert.Equal(t, "ONT-HG8245", item.SKU)
	assert.Equal(t, int64(10), item.QuantityInStock)

	status, body, _ := e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", adminID, dto.AdjustStockRequest{
		Quantity: 4, MovementType: "out", Reason: "instalación cliente 88",
	})
	require.Equal(t, http.StatusOK, status, body.Message)
	assert.True(t, body.Success)
	res := decode[dto.AdjustStockResponse](t, body.Data)
	assert.Equal(t, int64(10), res.PreviousStock)
	assert.Equal(t, int64(6), res.NewStock)
	assert.Equal(t, int64(-4), res.Adjustment)
	assert.Equal(t, int64(-4), res.Movement.Quantity)

	status, body, _ = e.call(http.MethodGet, "/api/inventory/"+item.ID+"/movements", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	hist := decode[dto.ItemMovementsResponse](t, body.Data)
	assert.Equal(t, int64(6), hist.Item.CurrentStock)
	require.Len(t, hist.Movements, 2)
	assert.Equal(t, 2, body.Pagination.Total)
}

func TestHTTP_AjusteObjetivoAbsoluto(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 10)

	status, body, _ := e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", adminID, dto.AdjustStockRequest{
		Quantity: 7, MovementType: "adjustment", Reason: "conteo físico",
	})
	require.Equal(t, http.StatusOK, status)
	res := decode[dto.AdjustStockResponse](t, body.Data)
	assert.Equal(t, int64(7), res.NewStock)
	assert.Equal(t, int64(-3), res.Adjustment)
	assert.Equal(t, "adjustment", res.Movement.MovementType)
}

func TestHTTP_StockInsuficienteDevuelve400ConDetalle(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 10)

	status, body, _ := e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", adminID, dto.AdjustStockRequest{
		Quantity: 20, MovementType: "out", Reason: "x",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, body.Success)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	detail := decode[map[string]int64](t, body.Data)
	assert.Equal(t, int64(10), detail["available"])
	assert.Equal(t, int64(20), detail["requested"])

	// nada cambió
	_, body, _ = e.call(http.MethodGet, "/api/inventory/"+item.ID, adminID, nil)
	assert.Equal(t, int64(10), decode[dto.ItemResponse](t, body.Data).QuantityInStock)
}

func TestHTTP_MotivoVacioEsValidacion(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 1)

	status, body, _ := e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", adminID, dto.AdjustStockRequest{
		Quantity: 1, MovementType: "in", Reason: "   ",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Errors, "reason")
}

func TestHTTP_UpdateRechazaCantidad(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 3)

	status, body, _ := e.call(http.MethodPut, "/api/inventory/"+item.ID, adminID, map[string]any{"quantity_in_stock": 99})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Errors, "quantity_in_stock")

	status, body, _ = e.call(http.MethodPut, "/api/inventory/"+item.ID, adminID, map[string]any{"location": "Bodega norte"})
	require.Equal(t, http.StatusOK, status)
	updated := decode[dto.ItemResponse](t, body.Data)
	assert.Equal(t, "Bodega norte", updated.Location)
	assert.Equal(t, int64(3), updated.QuantityInStock)
}

func TestHTTP_UpdateRechazaCantidadAunqueSeaNull(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 3)

	status, body, _ := e.call(http.MethodPut, "/api/inventory/"+item.ID, adminID, map[string]any{
		"quantity_in_stock": nil, "location": "Bodega sur",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Contains(t, body.Errors, "quantity_in_stock")

	_, body, _ = e.call(http.MethodGet, "/api/inventory/"+item.ID, adminID, nil)
	assert.Empty(t, decode[dto.ItemResponse](t, body.Data).Location, "el resto del cuerpo no se aplica")
}

func TestHTTP_BuscarPorCodigo(t *testing.T) {
	e := newEnv(t, false)
	status, body, _ := e.call(http.MethodPost, "/api/inventory", adminID, map[string]any{
		"sku": "ont-hg8245", "name": "ONT Huawei", "category_id": catID,
		"barcode": "7701234567890", "qr_code": "QR-ONT-0001",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	item := decode[dto.ItemResponse](t, body.Data)

	for _, code := range []string{"ONT-HG8245", "7701234567890", "QR-ONT-0001"} {
		status, body, _ = e.call(http.MethodGet, "/api/inventory/by-code/"+code, techID, nil)
		require.Equal(t, http.StatusOK, status, code)
		assert.Equal(t, item.ID, decode[dto.ItemResponse](t, body.Data).ID, code)
	}

	status, body, _ = e.call(http.MethodGet, "/api/inventory/by-code/0000", techID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Code)

	_, body, _ = e.call(http.MethodGet, "/api/inventory?search=77012345", adminID, nil)
	assert.Equal(t, 1, body.Pagination.Total, "la búsqueda incluye el código de barras")
	_, body, _ = e.call(http.MethodGet, "/api/inventory?search=qr-ont", adminID, nil)
	assert.Equal(t, 1, body.Pagination.Total, "y el QR")
}

func TestHTTP_IdMalFormado(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 2)

	for _, path := range []string{
		"/api/inventory/abc",
		"/api/inventory/abc/movements",
		"/api/good-out-requests/abc",
		"/api/categories/abc",
		"/api/suppliers/abc",
	} {
		status, body, _ := e.call(http.MethodGet, path, adminID, nil)
		assert.Equal(t, http.StatusNotFound, status, path)
		assert.Equal(t, "NOT_FOUND", body.Code, path)
	}

	status, body, _ := e.call(http.MethodPost, "/api/inventory", adminID, map[string]any{
		"sku": "X-1", "name": "x", "category_id": "foo",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Errors, "category_id")

	status, body, _ = e.call(http.MethodPut, "/api/inventory/"+item.ID, adminID, map[string]any{"supplier_id": "foo"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Errors, "supplier_id")

	status, _, _ = e.call(http.MethodPost, "/api/good-out-requests", techID, map[string]any{
		"item_id": "foo", "quantity": 1, "usage_description": "instalación",
	})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_SKUDuplicadoDevuelve409(t *testing.T) {
	e := newEnv(t, false)
	e.createItem("ont-1", 0)

	status, body, _ := e.call(http.MethodPost, "/api/inventory", adminID, map[string]any{
		"sku": "ONT-1", "name": "otro", "category_id": catID,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Code)
}

func TestHTTP_TecnicoNoPuedeCrearNiAjustar(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 5)

	status, body, _ := e.call(http.MethodPost, "/api/inventory", techID, map[string]any{"sku": "X-1", "name": "x", "category_id": catID})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body.Code)

	status, _, _ = e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", techID, dto.AdjustStockRequest{
		Quantity: 1, MovementType: "out", Reason: "x",
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestHTTP_ItemInexistente(t *testing.T) {
	e := newEnv(t, false)

	status, body, _ := e.call(http.MethodGet, "/api/inventory/no-existe", adminID, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body.Code)

	status, _, _ = e.call(http.MethodDelete, "/api/inventory/no-existe", adminID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_EliminarItemBorraHistorial(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 4)

	status, _, _ := e.call(http.MethodDelete, "/api/inventory/"+item.ID, adminID, nil)
	require.Equal(t, http.StatusOK, status)

	status, body, _ := e.call(http.MethodGet, "/api/inventory/movements?item_id="+item.ID, adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0, body.Pagination.Total)
}

func TestHTTP_ListadoPaginadoYFiltros(t *testing.T) {
	e := newEnv(t, false)
	e.createItem("ont-1", 1)
	e.createItem("ont-2", 9)
	e.createItem("olt-3", 0)

	status, body, _ := e.call(http.MethodGet, "/api/inventory?limit=2", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]dto.ItemResponse](t, body.Data), 2)
	assert.Equal(t, 3, body.Pagination.Total)
	assert.Equal(t, 2, body.Pagination.Limit)

	_, body, _ = e.call(http.MethodGet, "/api/inventory?low_stock=true", adminID, nil)
	assert.Equal(t, 2, body.Pagination.Total)

	_, body, _ = e.call(http.MethodGet, "/api/inventory?search=olt", adminID, nil)
	assert.Equal(t, 1, body.Pagination.Total)

	status, body, _ = e.call(http.MethodGet, "/api/inventory/movements?movement_type=teleport", adminID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Errors, "movement_type")

	status, body, _ = e.call(http.MethodGet, "/api/inventory/movements?date_from=ayer", adminID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body.Errors, "date_from")
}

// ──────────────────────────────────────────────────────────────────────────────
// Solicitudes de salida
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_CicloDeSolicitudDeSalida(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 5)

	status, body, _ := e.call(http.MethodPost, "/api/good-out-requests", techID, map[string]any{
		"item_id": item.ID, "quantity": 3, "usage_description": "cliente 1020", "customer_location": "Calle 5 #10",
	})
	require.Equal(t, http.StatusCreated, status, body.Message)
	req := decode[dto.GoodsOutResponse](t, body.Data)
	assert.Equal(t, entity.GoodsOutPending, req.Status)
	assert.Equal(t, goodsout.InstallationReasonPrefix+"cliente 1020", req.Reason)

	status, body, _ = e.call(http.MethodGet, "/api/good-out-requests/pending/count", adminID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, decode[dto.PendingCountResponse](t, body.Data).Count)

	// otro técnico no puede verla
	status, _, _ = e.call(http.MethodGet, "/api/good-out-requests/"+req.ID, tech2ID, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ = e.call(http.MethodPut, "/api/good-out-requests/"+req.ID+"/approve", adminID, nil)
	require.Equal(t, http.StatusOK, status, body.Message)
	approved := decode[dto.ApproveGoodsOutResponse](t, body.Data)
	assert.Equal(t, entity.GoodsOutApproved, approved.Request.Status)
	assert.Equal(t, int64(5), approved.PreviousStock)
	assert.Equal(t, int64(2), approved.NewStock)
	assert.Equal(t, goodsout.ReferencePrefix+req.ID, approved.Movement.ReferenceNumber)

	status, body, _ = e.call(http.MethodPut, "/api/good-out-requests/"+req.ID+"/approve", adminID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_STATE", body.Code)

	status, body, _ = e.call(http.MethodDelete, "/api/good-out-requests/"+req.ID, techID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_STATE", body.Code)

	_, body, _ = e.call(http.MethodGet, "/api/inventory/"+item.ID+"/movements", adminID, nil)
	assert.Len(t, decode[dto.ItemMovementsResponse](t, body.Data).Movements, 2)
}

func TestHTTP_AprobacionSinStockQuedaPendiente(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 5)

	_, body, _ := e.call(http.MethodPost, "/api/good-out-requests", techID, map[string]any{
		"item_id": item.ID, "quantity": 4, "usage_description": "torre 3",
	})
	req := decode[dto.GoodsOutResponse](t, body.Data)

	// el stock baja entre la solicitud y la aprobación
	status, _, _ := e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", adminID, dto.AdjustStockRequest{
		Quantity: 3, MovementType: "out", Reason: "daño",
	})
	require.Equal(t, http.StatusOK, status)

	status, body, _ = e.call(http.MethodPut, "/api/good-out-requests/"+req.ID+"/approve", adminID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)

	_, body, _ = e.call(http.MethodGet, "/api/good-out-requests/"+req.ID, techID, nil)
	assert.Equal(t, entity.GoodsOutPending, decode[dto.GoodsOutResponse](t, body.Data).Status)
}

func TestHTTP_RechazoSinMotivoUsaTextoPorDefecto(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 5)
	_, body, _ := e.call(http.MethodPost, "/api/good-out-requests", techID, map[string]any{
		"item_id": item.ID, "usage_description": "nodo 7",
	})
	req := decode[dto.GoodsOutResponse](t, body.Data)
	assert.Equal(t, int64(1), req.Quantity)

	status, body, _ := e.call(http.MethodPut, "/api/good-out-requests/"+req.ID+"/reject", adminID, nil)
	require.Equal(t, http.StatusOK, status, body.Message)
	rejected := decode[dto.GoodsOutResponse](t, body.Data)
	assert.Equal(t, entity.GoodsOutRejected, rejected.Status)
	assert.Equal(t, goodsout.DefaultRejectionReason, rejected.RejectionReason)

	_, body, _ = e.call(http.MethodGet, "/api/inventory/"+item.ID, adminID, nil)
	assert.Equal(t, int64(5), decode[dto.ItemResponse](t, body.Data).QuantityInStock)
}

func TestHTTP_CancelarSoloElSolicitante(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 5)
	_, body, _ := e.call(http.MethodPost, "/api/good-out-requests", techID, map[string]any{
		"item_id": item.ID, "quantity": 1, "usage_description": "x",
	})
	req := decode[dto.GoodsOutResponse](t, body.Data)

	status, _, _ := e.call(http.MethodDelete, "/api/good-out-requests/"+req.ID, tech2ID, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _, _ = e.call(http.MethodDelete, "/api/good-out-requests/"+req.ID, adminID, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ = e.call(http.MethodDelete, "/api/good-out-requests/"+req.ID, techID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, goodsout.CancelledReason, decode[dto.GoodsOutResponse](t, body.Data).RejectionReason)
}

func TestHTTP_TecnicoSoloListaLasPropias(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 10)
	for _, who := range []string{techID, tech2ID, tech2ID} {
		status, _, _ := e.call(http.MethodPost, "/api/good-out-requests", who, map[string]any{
			"item_id": item.ID, "quantity": 1, "usage_description": "x",
		})
		require.Equal(t, http.StatusCreated, status)
	}

	_, body, _ := e.call(http.MethodGet, "/api/good-out-requests", techID, nil)
	assert.Equal(t, 1, body.Pagination.Total)
	_, body, _ = e.call(http.MethodGet, "/api/good-out-requests?requested_by="+tech2ID, techID, nil)
	assert.Equal(t, 1, body.Pagination.Total, "el filtro no amplía la visibilidad")
	_, body, _ = e.call(http.MethodGet, "/api/good-out-requests", adminID, nil)
	assert.Equal(t, 3, body.Pagination.Total)

	status, _, _ := e.call(http.MethodGet, "/api/good-out-requests/pending/count", techID, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Reportes, auth y errores
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_ReportesPorRol(t *testing.T) {
	e := newEnv(t, false)
	e.createItem("ont-1", 4)

	status, _, _ := e.call(http.MethodGet, "/api/reports/stock-variance", techID, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ := e.call(http.MethodGet, "/api/reports/stock-variance", salesID, nil)
	require.Equal(t, http.StatusOK, status)
	report := decode[dto.StockVarianceReport](t, body.Data)
	assert.Equal(t, 1, report.CheckedItems)
	assert.Equal(t, 0, report.InconsistentItems)

	for _, path := range []string{"/api/reports/stock-aging", "/api/reports/valuation", "/api/inventory/low-stock", "/api/inventory/movements/stats"} {
		status, body, _ := e.call(http.MethodGet, path, adminID, nil)
		assert.Equal(t, http.StatusOK, status, path+": "+body.Message)
	}
}

func TestHTTP_LoginYPerfil(t *testing.T) {
	e := newEnv(t, false)
	hash, err := auth.HashPassword("s3creto-largo")
	require.NoError(t, err)
	require.NoError(t, e.store.Users().Create(context.Background(), &entity.User{
		ID: "u-login", Username: "jperez", Email: "jperez@isp.co", PasswordHash: hash,
		Role: entity.RoleManager, IsActive: true,
	}))

	status, body, _ := e.call(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: "JPEREZ@isp.co", Password: "s3creto-largo"})
	require.Equal(t, http.StatusOK, status, body.Message)
	login := decode[dto.LoginResponse](t, body.Data)
	require.NotEmpty(t, login.Token)
	assert.Equal(t, "manager", login.User.Role)

	e.tokens["u-login"] = login.Token
	status, body, _ = e.call(http.MethodGet, "/api/auth/me", "u-login", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "jperez", decode[dto.UserResponse](t, body.Data).Username)

	status, body, _ = e.call(http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Login: "jperez", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

func TestHTTP_CatalogoConUso(t *testing.T) {
	e := newEnv(t, false)
	e.createItem("ont-1", 0)

	status, body, _ := e.call(http.MethodDelete, "/api/categories/"+catID, adminID, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body.Code)

	status, body, _ = e.call(http.MethodPost, "/api/suppliers", adminID, dto.CreateSupplierRequest{Name: "Huawei", Code: "hw"})
	require.Equal(t, http.StatusCreated, status, body.Message)
	sup := decode[dto.SupplierResponse](t, body.Data)
	assert.Equal(t, "HW", sup.Code)

	status, _, _ = e.call(http.MethodPost, "/api/suppliers", adminID, dto.CreateSupplierRequest{Name: "Otro", Code: "HW"})
	assert.Equal(t, http.StatusConflict, status)

	status, _, _ = e.call(http.MethodDelete, "/api/suppliers/"+sup.ID, adminID, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestHTTP_ActualizarCatalogo(t *testing.T) {
	e := newEnv(t, false)

	status, body, _ := e.call(http.MethodPut, "/api/categories/"+catID, adminID, map[string]any{"name": "ONTs GPON", "description": "fibra"})
	require.Equal(t, http.StatusOK, status, body.Message)
	cat := decode[dto.CategoryResponse](t, body.Data)
	assert.Equal(t, "ONTs GPON", cat.Name)
	assert.Equal(t, "ONT", cat.Code)

	status, body, _ = e.call(http.MethodPost, "/api/categories", adminID, dto.CreateCategoryRequest{Name: "Routers", Code: "RTR"})
	require.Equal(t, http.StatusCreated, status, body.Message)
	status, _, _ = e.call(http.MethodPut, "/api/categories/"+catID, adminID, map[string]any{"code": "rtr"})
	assert.Equal(t, http.StatusConflict, status)

	status, _, _ = e.call(http.MethodPut, "/api/categories/"+catID, techID, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, body, _ = e.call(http.MethodPost, "/api/suppliers", adminID, dto.CreateSupplierRequest{Name: "Huawei", Code: "HW"})
	require.Equal(t, http.StatusCreated, status, body.Message)
	sup := decode[dto.SupplierResponse](t, body.Data)

	status, body, _ = e.call(http.MethodPut, "/api/suppliers/"+sup.ID, adminID, map[string]any{"email": "ventas@huawei.example", "is_active": false})
	require.Equal(t, http.StatusOK, status, body.Message)
	updated := decode[dto.SupplierResponse](t, body.Data)
	assert.Equal(t, "ventas@huawei.example", updated.Email)
	assert.False(t, updated.IsActive)

	status, _, _ = e.call(http.MethodPut, "/api/suppliers/abc", adminID, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_TransaccionFallidaDevuelve503ConRetryAfter(t *testing.T) {
	e := newEnv(t, false)
	item := e.createItem("ont-1", 5)
	e.store.FailOn(memstore.OpItemUpdateStock, fmt.Errorf("serialization failure: %w", domain.ErrTransaction))

	status, body, resp := e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", adminID, dto.AdjustStockRequest{
		Quantity: 1, MovementType: "out", Reason: "x",
	})
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "TRANSACTION", body.Code)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestHTTP_ErrorInternoSoloMuestraDetalleEnDesarrollo(t *testing.T) {
	for _, dev := range []bool{false, true} {
		e := newEnv(t, dev)
		item := e.createItem("ont-1", 5)
		e.store.FailOn(memstore.OpMovementAppend, errors.New("disco lleno"))

		status, body, _ := e.call(http.MethodPost, "/api/inventory/"+item.ID+"/adjust-stock", adminID, dto.AdjustStockRequest{
			Quantity: 1, MovementType: "in", Reason: "x",
		})
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, "INTERNAL", body.Code)
		if dev {
			assert.Contains(t, body.Detail, "disco lleno")
		} else {
			assert.Empty(t, body.Detail)
		}
	}
}

func TestHTTP_CuerpoInvalido(t *testing.T) {
	e := newEnv(t, false)
	req := httptest.NewRequest(http.MethodPost, "/api/inventory", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.tokens[adminID])
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
