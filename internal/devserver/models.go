// Package devserver is the reference backend: a small order service speaking
// the same wire protocol the client packages consume, so the whole system can
// run end to end from one binary.
package devserver

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"gorm.io/gorm"

	"github.com/ordersync/ordersync/pkg/orders"
)

// OrderRecord is the persisted order row. IDs are 24-char random hex so they
// look the same on the wire regardless of the backing database.
type OrderRecord struct {
	ID              string    `gorm:"primaryKey;size:24"`
	CustomerName    string    `gorm:"size:120;index"`
	Email           string    `gorm:"size:255;index"`
	ContactNumber   string    `gorm:"size:20"`
	ShippingAddress string    `gorm:"size:500"`
	ProductName     string    `gorm:"size:255;index"`
	Quantity        int
	ProductImage    string    `gorm:"size:500"`
	Status          string    `gorm:"size:30;default:Pending"`
	CreatedAt       time.Time `gorm:"index"`
	UpdatedAt       time.Time
}

func (OrderRecord) TableName() string { return "orders" }

// BeforeCreate assigns the hex id when absent.
func (o *OrderRecord) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = newHexID()
	}
	return nil
}

func newHexID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// API converts the row to the wire shape.
func (o *OrderRecord) API() orders.Order {
	return orders.Order{
		ID:              o.ID,
		CustomerName:    o.CustomerName,
		Email:           o.Email,
		ContactNumber:   o.ContactNumber,
		ShippingAddress: o.ShippingAddress,
		ProductName:     o.ProductName,
		Quantity:        o.Quantity,
		ProductImage:    o.ProductImage,
		Status:          o.Status,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// User is an operator account able to log in to the admin surface.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:120"`
	Email        string    `gorm:"size:255;uniqueIndex"`
	PasswordHash string    `gorm:"size:255"`
	Role         string    `gorm:"size:30;default:admin"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Public is the user shape returned by auth endpoints. The password hash
// never leaves the server.
func (u *User) Public() map[string]interface{} {
	return map[string]interface{}{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}
