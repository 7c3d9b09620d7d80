package entity

import "time"

// Category agrupa ítems del inventario. Code es único.
type Category struct {
	ID          string
	Name        string
	Code        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Supplier proveedor de ítems. Code es único.
type Supplier struct {
	ID            string
	Name          string
	Code          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
