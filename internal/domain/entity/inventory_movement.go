package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger.
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
	MovementTypeTransfer   = "transfer" // reservado; ningún caso de uso lo produce
)

// IsValidMovementType indica si t es un tipo conocido por el ledger.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIn, MovementTypeOut, MovementTypeAdjustment, MovementTypeTransfer:
		return true
	}
	return false
}

// InventoryMovement es una entrada inmutable del ledger de un ítem.
// Quantity es el delta con signo: positivo en in, negativo en out, after-before en adjustment.
type InventoryMovement struct {
	ID              int64
	ItemID          string
	UserID          string
	Type            string
	Quantity        int64
	QuantityBefore  int64
	QuantityAfter   int64
	UnitCost        *decimal.Decimal
	ReferenceNumber string
	Reason          string
	Notes           string
	MovementDate    time.Time
	CreatedAt       time.Time
}
