package goodsout_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ispstock-api/internal/application/dto"
	"github.com/jhoicas/ispstock-api/internal/application/goodsout"
	"github.com/jhoicas/ispstock-api/internal/application/inventory"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
	"github.com/jhoicas/ispstock-api/internal/domain/policy"
	"github.com/jhoicas/ispstock-api/internal/testutil/memstore"
)

var supervisor = policy.Actor{ID: "sup-1", Role: entity.RoleManager}

type workflowTestContext struct {
	store    *memstore.Store
	items    *inventory.ItemUseCase
	workflow *goodsout.WorkflowUseCase
	itemID   string
	last     string            // última solicitud creada
	byTech   map[string]string // técnico → solicitud
	err      error
}

func (c *workflowTestContext) reset() {
	c.store = memstore.New()
	log := zerolog.Nop()
	c.items = inventory.NewItemUseCase(c.store, c.store.Items(), c.store.Movements(), c.store.Categories(), c.store.Suppliers(), nopEvents{}, log)
	c.workflow = goodsout.NewWorkflowUseCase(c.store, c.store.Items(), c.store.GoodsOut(), nopEvents{}, nopEvents{}, log)
	c.itemID, c.last, c.err = "", "", nil
	c.byTech = map[string]string{}
}

func (c *workflowTestContext) unItemConStock(sku string, qty int) error {
	ctx := context.Background()
	if err := c.store.Categories().Create(ctx, &entity.Category{ID: "cat-1", Name: "ONT", Code: "ONT", IsActive: true}); err != nil {
		return err
	}
	it, err := c.items.Create(ctx, supervisor, dto.CreateItemRequest{
		SKU: sku, Name: "Equipo " + sku, CategoryID: "cat-1",
		PurchasePrice: decimal.NewFromInt(80), QuantityInStock: int64(qty),
	})
	if err != nil {
		return err
	}
	c.itemID = it.ID
	return nil
}

func (c *workflowTestContext) elTecnicoSolicita(techID string, qty int, usage string) error {
	q := int64(qty)
	req, err := c.workflow.Create(context.Background(), policy.Actor{ID: techID, Role: entity.RoleTechnician}, dto.CreateGoodsOutRequest{
		ItemID: c.itemID, Quantity: &q, UsageDescription: usage,
	})
	if err != nil {
		return err
	}
	c.last = req.ID
	c.byTech[techID] = req.ID
	return nil
}

func (c *workflowTestContext) elSupervisorAprueba() error {
	_, c.err = c.workflow.Approve(context.Background(), supervisor, c.last)
	return nil
}

func (c *workflowTestContext) elSupervisorApruebaDe(techID string) error {
	_, c.err = c.workflow.Approve(context.Background(), supervisor, c.byTech[techID])
	return nil
}

func (c *workflowTestContext) elSupervisorRechaza(reason string) error {
	_, c.err = c.workflow.Reject(context.Background(), supervisor, c.last, reason)
	return nil
}

func (c *workflowTestContext) elTecnicoCancela(techID string) error {
	_, c.err = c.workflow.Cancel(context.Background(), policy.Actor{ID: techID, Role: entity.RoleTechnician}, c.byTech[techID])
	return c.err
}

func (c *workflowTestContext) status(id string) (*entity.GoodsOutRequest, error) {
	req, err := c.store.GoodsOut().GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("solicitud %s no existe", id)
	}
	return req, nil
}

func (c *workflowTestContext) laSolicitudQueda(status string) error {
	req, err := c.status(c.last)
	if err != nil {
		return err
	}
	if req.Status != status {
		return fmt.Errorf("estado esperado %q, obtenido %q", status, req.Status)
	}
	return nil
}

func (c *workflowTestContext) laSolicitudDeQueda(techID, status string) error {
	req, err := c.status(c.byTech[techID])
	if err != nil {
		return err
	}
	if req.Status != status {
		return fmt.Errorf("estado esperado %q, obtenido %q", status, req.Status)
	}
	return nil
}

func (c *workflowTestContext) elMotivoDeRechazoEs(reason string) error {
	req, err := c.status(c.last)
	if err != nil {
		return err
	}
	if req.RejectionReason != reason {
		return fmt.Errorf("motivo esperado %q, obtenido %q", reason, req.RejectionReason)
	}
	return nil
}

func (c *workflowTestContext) elStockEs(qty int) error {
	it, err := c.items.GetByID(context.Background(), c.itemID)
	if err != nil {
		return err
	}
	if it.QuantityInStock != int64(qty) {
		return fmt.Errorf("stock esperado %d, obtenido %d", qty, it.QuantityInStock)
	}
	return nil
}

func (c *workflowTestContext) elLedgerTiene(n int) error {
	history, err := c.store.Movements().History(context.Background(), c.itemID)
	if err != nil {
		return err
	}
	if len(history) != n {
		return fmt.Errorf("movimientos esperados %d, obtenidos %d", n, len(history))
	}
	return nil
}

func (c *workflowTestContext) laOperacionFallaCon(msg string) error {
	if c.err == nil {
		return fmt.Errorf("se esperaba un error con %q", msg)
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("error %q no contiene %q", c.err.Error(), msg)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &workflowTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^un ítem "([^"]*)" con stock (\d+)$`, tc.unItemConStock)

	ctx.Step(`^el técnico "([^"]*)" solicita (\d+) unidades para "([^"]*)"$`, tc.elTecnicoSolicita)
	ctx.Step(`^el supervisor aprueba la solicitud$`, tc.elSupervisorAprueba)
	ctx.Step(`^el supervisor aprueba la solicitud de "([^"]*)"$`, tc.elSupervisorApruebaDe)
	ctx.Step(`^el supervisor rechaza la solicitud con motivo "([^"]*)"$`, tc.elSupervisorRechaza)
	ctx.Step(`^el técnico "([^"]*)" cancela la solicitud$`, tc.elTecnicoCancela)

	ctx.Step(`^la solicitud queda "([^"]*)"$`, tc.laSolicitudQueda)
	ctx.Step(`^la solicitud de "([^"]*)" queda "([^"]*)"$`, tc.laSolicitudDeQueda)
	ctx.Step(`^el motivo de rechazo es "([^"]*)"$`, tc.elMotivoDeRechazoEs)
	ctx.Step(`^el stock del ítem es (\d+)$`, tc.elStockEs)
	ctx.Step(`^el ledger del ítem tiene (\d+) movimientos$`, tc.elLedgerTiene)
	ctx.Step(`^la operación falla con "([^"]*)"$`, tc.laOperacionFallaCon)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/goods_out.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}

type nopEvents struct{}

func (nopEvents) Publish(context.Context, string, any) {}
func (nopEvents) StockMovement(string, int64)          {}
func (nopEvents) StockRejected(string)                 {}
func (nopEvents) GoodsOutTransition(string)            {}
