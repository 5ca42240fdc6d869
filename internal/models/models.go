package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User - someone allowed past the login screen
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"` // Never return this in JSON
	Role         string    `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product - catalog entry. Price is the sale price.
type Product struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"size:100;not null;index" json:"name"`
	Category  string          `gorm:"size:50;not null" json:"category"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CostPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Supplier struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"size:100;not null;index" json:"name"`
	Contact string `gorm:"size:50;not null" json:"contact"`
	Phone   string `gorm:"size:20;not null" json:"phone"`
	Address string `gorm:"size:200;not null" json:"address"`
}

// Inventory - quantity on hand, one row per product
type Inventory struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProductID   uint      `gorm:"uniqueIndex;not null" json:"product_id"`
	Product     Product   `gorm:"constraint:OnDelete:CASCADE" json:"product"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	LastUpdated time.Time `gorm:"not null" json:"last_updated"`
}

// Purchase - stock received from a supplier. TotalCost is frozen at creation.
type Purchase struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	ProductID    uint            `gorm:"not null;index" json:"product_id"`
	Product      Product         `gorm:"constraint:OnDelete:CASCADE" json:"product"`
	SupplierID   *uint           `gorm:"index" json:"supplier_id"`
	Supplier     *Supplier       `gorm:"constraint:OnDelete:SET NULL" json:"supplier,omitempty"`
	UserID       uint            `json:"user_id"` // Who recorded it
	Quantity     int             `gorm:"not null" json:"quantity"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_cost"`
	PurchaseDate time.Time       `gorm:"not null;index" json:"purchase_date"`
}

// Sale - stock sold. TotalAmount is frozen at creation.
type Sale struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	Product     Product         `gorm:"constraint:OnDelete:CASCADE" json:"product"`
	UserID      uint            `json:"user_id"` // Who processed it
	Quantity    int             `gorm:"not null" json:"quantity"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	SaleDate    time.Time       `gorm:"not null;index" json:"sale_date"`
}

type Expense struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Description string          `gorm:"size:200;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Category    string          `gorm:"size:50;not null" json:"category"`
	ExpenseDate time.Time       `gorm:"not null;index" json:"expense_date"`
}

type Income struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Description string          `gorm:"size:200;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Category    string          `gorm:"size:50;not null" json:"category"`
	IncomeDate  time.Time       `gorm:"not null;index" json:"income_date"`
}

// AuditLog - one row per mutating API call by a logged-in user
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	Method    string    `gorm:"size:10" json:"method"`
	Path      string    `gorm:"size:255" json:"path"`
	Status    int       `json:"status"`
	IP        string    `gorm:"size:64" json:"ip"`
	RequestID string    `gorm:"size:64" json:"request_id"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model AutoMigrate has to know about.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Supplier{},
		&Inventory{},
		&Purchase{},
		&Sale{},
		&Expense{},
		&Income{},
		&AuditLog{},
	}
}
