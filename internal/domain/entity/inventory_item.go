package entity

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Estados del ítem.
const (
	ItemStatusActive       = "active"
	ItemStatusInactive     = "inactive"
	ItemStatusDiscontinued = "discontinued"
)

// Condición física del ítem.
const (
	ConditionNew     = "new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
	ConditionDamaged = "damaged"
)

// DefaultUnit unidad usada cuando no se indica ninguna.
const DefaultUnit = "pcs"

// InventoryItem es un ítem del registro. QuantityInStock es el snapshot autoritativo
// y solo cambia por un ajuste de stock o por el stock inicial al crear.
type InventoryItem struct {
	ID              string
	SKU             string // único e inmutable como clave de negocio
	Name            string
	Description     string
	CategoryID      string
	SupplierID      string // vacío si no tiene proveedor
	Brand           string
	Model           string
	SerialNumber    string
	Barcode         string
	QRCode          string
	ImageURL        string
	PurchasePrice   decimal.Decimal // costo promedio ponderado tras cada entrada con costo
	SellingPrice    decimal.Decimal
	QuantityInStock int64
	MinimumStock    int64
	MaximumStock    *int64
	Unit            string
	Location        string
	Condition       string
	Status          string
	Specifications  json.RawMessage
	Notes           string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLowStock indica si el stock está en o por debajo del mínimo.
func (i *InventoryItem) IsLowStock() bool {
	return i.QuantityInStock <= i.MinimumStock
}

// IsValidCondition valida el valor de condición.
func IsValidCondition(c string) bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}

// IsValidItemStatus valida el estado del ítem.
func IsValidItemStatus(s string) bool {
	switch s {
	case ItemStatusActive, ItemStatusInactive, ItemStatusDiscontinued:
		return true
	}
	return false
}

var skuCaser = cases.Upper(language.Und)

// NormalizeSKU recorta espacios y pasa a mayúsculas para que "onu-01" y "ONU-01" sean el mismo SKU.
func NormalizeSKU(sku string) string {
	return skuCaser.String(strings.TrimSpace(sku))
}
