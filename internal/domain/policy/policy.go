// Package policy concentra la decisión de autorización de todas las operaciones
// que modifican inventario o solicitudes de salida.
package policy

import (
	"fmt"

	"github.com/jhoicas/ispstock-api/internal/domain"
	"github.com/jhoicas/ispstock-api/internal/domain/entity"
)

// Action operación sujeta a autorización.
type Action string

const (
	ItemCreate      Action = "item.create"
	ItemUpdate      Action = "item.update"
	ItemDelete      Action = "item.delete"
	StockAdjust     Action = "stock.adjust"
	GoodsOutCreate  Action = "goods_out.create"
	GoodsOutApprove Action = "goods_out.approve"
	GoodsOutReject  Action = "goods_out.reject"
	GoodsOutCancel  Action = "goods_out.cancel"
	GoodsOutRead    Action = "goods_out.read"
	GoodsOutReadAll Action = "goods_out.read_all"
	CatalogWrite    Action = "catalog.write"
	ReportRead      Action = "report.read"
)

// Actor identidad autenticada entregada por el colaborador de auth.
type Actor struct {
	ID   string
	Role string
}

// IsElevated indica si el actor es admin o manager.
func (a Actor) IsElevated() bool {
	return a.Role == entity.RoleAdmin || a.Role == entity.RoleManager
}

// Resource describe el recurso afectado. OwnerID vacío = sin dueño relevante.
type Resource struct {
	OwnerID string
}

var roleGrants = map[Action][]string{
	ItemCreate:      {entity.RoleAdmin, entity.RoleManager},
	ItemUpdate:      {entity.RoleAdmin, entity.RoleManager},
	ItemDelete:      {entity.RoleAdmin, entity.RoleManager},
	StockAdjust:     {entity.RoleAdmin, entity.RoleManager},
	GoodsOutCreate:  {entity.RoleTechnician},
	GoodsOutApprove: {entity.RoleAdmin, entity.RoleManager},
	GoodsOutReject:  {entity.RoleAdmin, entity.RoleManager},
	GoodsOutReadAll: {entity.RoleAdmin, entity.RoleManager},
	CatalogWrite:    {entity.RoleAdmin, entity.RoleManager},
	ReportRead:      {entity.RoleAdmin, entity.RoleManager, entity.RoleSales},
}

// Can decide si actor puede ejecutar action sobre res. Devuelve nil o un error que envuelve domain.ErrForbidden.
func Can(actor Actor, action Action, res Resource) error {
	if actor.ID == "" || actor.Role == "" {
		return fmt.Errorf("identidad incompleta: %w", domain.ErrUnauthorized)
	}
	switch action {
	case GoodsOutCancel:
		// solo quien creó la solicitud, sin excepción por rol
		if res.OwnerID != "" && res.OwnerID == actor.ID {
			return nil
		}
		return deny(actor, action)
	case GoodsOutRead:
		if res.OwnerID == actor.ID || actor.IsElevated() {
			return nil
		}
		return deny(actor, action)
	}
	for _, r := range roleGrants[action] {
		if r == actor.Role {
			return nil
		}
	}
	return deny(actor, action)
}

func deny(actor Actor, action Action) error {
	return fmt.Errorf("rol %q no puede ejecutar %s: %w", actor.Role, action, domain.ErrForbidden)
}
