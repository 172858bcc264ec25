package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/ordersync/ordersync/pkg/bind"
	"github.com/ordersync/ordersync/pkg/logger"
	"github.com/ordersync/ordersync/pkg/orders"
	"github.com/ordersync/ordersync/pkg/response"
	"github.com/ordersync/ordersync/pkg/router"
	"github.com/ordersync/ordersync/pkg/storage"
	"github.com/ordersync/ordersync/pkg/validate"
)

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := ListQuery{
		Page:     bind.QueryInt(r, "page", 1),
		Limit:    bind.QueryInt(r, "limit", 10),
		Search:   r.URL.Query().Get("search"),
		DateFrom: r.URL.Query().Get("dateFrom"),
		DateTo:   r.URL.Query().Get("dateTo"),
	}

	data, pagination, err := s.orders.List(q)
	if err != nil {
		logger.Error("list orders", "error", err)
		response.Error(w, http.StatusInternalServerError, "could not load orders")
		return
	}
	response.List(w, data, pagination)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	row, err := s.orders.Find(router.Param(r, "id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(w, http.StatusNotFound, "order not found")
			return
		}
		response.Error(w, http.StatusInternalServerError, "could not load order")
		return
	}
	response.Data(w, row.API())
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	if err := bind.Form(r); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid form data")
		return
	}

	input := orders.CreateInput{
		CustomerName:    r.FormValue("customerName"),
		Email:           r.FormValue("email"),
		ContactNumber:   r.FormValue("contactNumber"),
		ShippingAddress: r.FormValue("shippingAddress"),
		ProductName:     r.FormValue("productName"),
		Quantity:        bind.FormInt(r, "quantity", 0),
	}
	if errs := validate.Struct(&input); validate.HasErrors(errs) {
		response.ValidationError(w, errs)
		return
	}

	row := &OrderRecord{
		CustomerName:    input.CustomerName,
		Email:           input.Email,
		ContactNumber:   input.ContactNumber,
		ShippingAddress: input.ShippingAddress,
		ProductName:     input.ProductName,
		Quantity:        input.Quantity,
		Status:          orders.StatusPending,
	}

	if file, header, err := r.FormFile("productImage"); err == nil {
		defer file.Close()
		name := fmt.Sprintf("orders/%d%s", time.Now().UnixNano(), filepath.Ext(header.Filename))
		if err := storage.PutStream(name, file); err != nil {
			logger.Error("store product image", "error", err)
			response.Error(w, http.StatusInternalServerError, "could not store image")
			return
		}
		row.ProductImage = storage.URL(name)
	}

	if err := s.orders.Create(row); err != nil {
		logger.Error("create order", "error", err)
		response.Error(w, http.StatusInternalServerError, "could not create order")
		return
	}

	s.hub.EmitOrderCreated(row.API())
	response.Created(w, row.API())
}

func (s *Server) handleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if _, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Quantity < 1 {
		response.Error(w, http.StatusUnprocessableEntity, "quantity must be at least 1")
		return
	}

	row, err := s.orders.UpdateQuantity(router.Param(r, "id"), body.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(w, http.StatusNotFound, "order not found")
			return
		}
		logger.Error("update quantity", "id", router.Param(r, "id"), "error", err)
		response.Error(w, http.StatusInternalServerError, "could not update order")
		return
	}
	response.Data(w, row.API())
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := router.Param(r, "id")
	if err := s.orders.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(w, http.StatusNotFound, "order not found")
			return
		}
		logger.Error("delete order", "id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "could not delete order")
		return
	}
	response.NoContent(w)
}
