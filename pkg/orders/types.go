package orders

import (
	"io"
	"time"
)

// Order is the wire shape of a single order record. The backend is
// authoritative; the client cache mirrors one page of the authoritative set.
type Order struct {
	ID              string    `json:"_id"`
	CustomerName    string    `json:"customerName"`
	Email           string    `json:"email"`
	ContactNumber   string    `json:"contactNumber"`
	ShippingAddress string    `json:"shippingAddress"`
	ProductName     string    `json:"productName"`
	Quantity        int       `json:"quantity"`
	ProductImage    string    `json:"productImage,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Well-known status values. The set is open: the server may introduce others
// and the client must pass unknown values through untouched.
const (
	StatusPending   = "Pending"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

// Pagination is the page metadata returned alongside each order page.
// Pages is ceil(Total/Limit) as of the last successful fetch; between fetches
// it is advisory only (deletes decrement Total without renumbering Pages).
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Filters are the active list filters. They scope what the cached page
// mirrors; changing them does not itself trigger a fetch.
type Filters struct {
	Search   string `json:"search"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

// FilterPatch is a partial filter update; nil fields are left unchanged.
type FilterPatch struct {
	Search   *string
	DateFrom *string
	DateTo   *string
}

// FetchParams are the query parameters of a list fetch.
type FetchParams struct {
	Page     int
	Limit    int
	Search   string
	DateFrom string
	DateTo   string
}

// CreateInput is the customer-facing order form. The image is optional and
// uploaded as a multipart part.
type CreateInput struct {
	CustomerName    string `json:"customerName"    validate:"required,min=2,max=120"`
	Email           string `json:"email"           validate:"required,email"`
	ContactNumber   string `json:"contactNumber"   validate:"required,min=7,max=20"`
	ShippingAddress string `json:"shippingAddress" validate:"required,min=5"`
	ProductName     string `json:"productName"     validate:"required"`
	Quantity        int    `json:"quantity"        validate:"required,gte=1"`

	Image     io.Reader `json:"-"`
	ImageName string    `json:"-"`
}

// page is the backend's list response shape.
type page struct {
	Data       []Order    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// single wraps endpoints that return one order under "data".
type single struct {
	Data Order `json:"data"`
}
