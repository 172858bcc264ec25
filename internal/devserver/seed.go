package devserver

import (
	"fmt"
	"time"

	"github.com/ordersync/ordersync/pkg/auth"
	"github.com/ordersync/ordersync/pkg/logger"
	"github.com/ordersync/ordersync/pkg/orders"
)

// Seed inserts a default admin account and a handful of demo orders when the
// database is empty. Safe to call repeatedly.
func (s *Server) Seed() error {
	if _, err := s.users.FindByEmail("admin@example.com"); err != nil {
		hash, err := auth.HashPassword("password123")
		if err != nil {
			return fmt.Errorf("devserver: seed admin: %w", err)
		}
		admin := &User{Name: "Admin", Email: "admin@example.com", PasswordHash: hash, Role: "admin"}
		if err := s.users.Create(admin); err != nil {
			return err
		}
		logger.Info("seeded admin user", "email", admin.Email)
	}

	existing, _, err := s.orders.List(ListQuery{Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	demo := []OrderRecord{
		{CustomerName: "Ava Patel", Email: "ava@example.com", ContactNumber: "5550100", ShippingAddress: "12 Elm Street, Springfield", ProductName: "Ceramic Mug", Quantity: 2, Status: orders.StatusPending},
		{CustomerName: "Liam Chen", Email: "liam@example.com", ContactNumber: "5550101", ShippingAddress: "98 Oak Avenue, Rivertown", ProductName: "Desk Lamp", Quantity: 1, Status: orders.StatusDelivered},
		{CustomerName: "Maya Okafor", Email: "maya@example.com", ContactNumber: "5550102", ShippingAddress: "7 Pine Road, Lakeside", ProductName: "Notebook Set", Quantity: 5, Status: orders.StatusPending},
		{CustomerName: "Noah Kim", Email: "noah@example.com", ContactNumber: "5550103", ShippingAddress: "41 Birch Lane, Hilltop", ProductName: "Water Bottle", Quantity: 3, Status: orders.StatusCancelled},
	}
	for i := range demo {
		demo[i].CreatedAt = time.Now().Add(-time.Duration(len(demo)-i) * time.Hour)
		if err := s.orders.Create(&demo[i]); err != nil {
			return err
		}
	}
	logger.Info("seeded demo orders", "count", len(demo))
	return nil
}
