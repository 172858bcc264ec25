// Package orders maintains the client-side cache of the current order page:
// the records themselves, pagination metadata, and the active filters.
//
// The cache is a read-through, write-through mirror of one page of the
// server's authoritative set. Every mutation — fetch replace, patch-by-id,
// remove-by-id, realtime prepend — goes through the store's single mutex so
// no two writers interleave. Fetches additionally carry a monotonically
// increasing sequence number: a response is applied only when it belongs to
// the most recently issued fetch, so a slow response can never overwrite a
// newer one.
package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/ordersync/ordersync/pkg/api"
	"github.com/ordersync/ordersync/pkg/collection"
	"github.com/ordersync/ordersync/pkg/validate"
)

// ErrInvalidQuantity rejects non-positive quantities before any network call.
var ErrInvalidQuantity = errors.New("orders: quantity must be a positive integer")

// ValidationErrors carries field-level failures from a pre-submission check.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	return fmt.Sprintf("orders: validation failed: %v", map[string]string(v))
}

// Store is the order collection cache. Safe for concurrent use.
type Store struct {
	client *api.Client

	mu         sync.Mutex
	orders     []Order
	pagination Pagination
	filters    Filters
	loading    bool
	errMsg     string
	fetchSeq   uint64 // sequence of the most recently issued fetch
}

// NewStore returns an empty Store bound to the gateway.
func NewStore(client *api.Client) *Store {
	return &Store{
		client:     client,
		pagination: Pagination{Page: 1, Limit: 10},
	}
}

// ── Accessors ────────────────────────────────────────────────────────────────

// Orders returns a copy of the cached page in server order.
func (s *Store) Orders() []Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Order, len(s.orders))
	copy(out, s.orders)
	return out
}

// Pagination returns the page metadata from the last successful fetch,
// adjusted by local deletes and realtime merges.
func (s *Store) Pagination() Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

// Filters returns the active filters.
func (s *Store) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Loading reports whether an operation is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the last operation's failure message, empty when none.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError dismisses the error without touching cached data, so a UI can
// hide the message without retriggering the request.
func (s *Store) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
}

// ── Fetch ────────────────────────────────────────────────────────────────────

// Fetch retrieves one page of orders and wholesale-replaces the cache with
// the response. On failure the prior orders and pagination are left
// untouched — stale-but-present beats empty. Out-of-order resolutions are
// discarded: only the response to the most recently issued fetch is applied.
func (s *Store) Fetch(ctx context.Context, params FetchParams) error {
	s.mu.Lock()
	s.fetchSeq++
	seq := s.fetchSeq
	s.loading = true
	s.errMsg = ""
	s.mu.Unlock()

	resp, err := s.client.Get("/orders").
		QueryInt("page", params.Page).
		QueryInt("limit", params.Limit).
		Query("search", params.Search).
		Query("dateFrom", params.DateFrom).
		Query("dateTo", params.DateTo).
		WithContext(ctx).
		Send()

	var result page
	if err == nil {
		err = resp.JSON(&result)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.fetchSeq {
		// A newer fetch was issued while this one was in flight; its
		// outcome — success or failure — is stale and must not apply.
		return nil
	}

	s.loading = false
	if err != nil {
		s.errMsg = api.MessageOf(err)
		return err
	}

	s.orders = result.Data
	s.pagination = result.Pagination
	return nil
}

// ── Create ───────────────────────────────────────────────────────────────────

// Create submits the customer order form as a multipart POST. The created
// record is returned but NOT merged into this cache: creation originates
// from the customer-facing surface, and the admin list learns about it via
// the realtime push or its next fetch.
func (s *Store) Create(ctx context.Context, input CreateInput) (*Order, error) {
	if errs := validate.Struct(input); validate.HasErrors(errs) {
		return nil, ValidationErrors(errs)
	}

	fields := map[string]string{
		"customerName":    input.CustomerName,
		"email":           input.Email,
		"contactNumber":   input.ContactNumber,
		"shippingAddress": input.ShippingAddress,
		"productName":     input.ProductName,
		"quantity":        strconv.Itoa(input.Quantity),
	}

	resp, err := s.client.Post("/orders").
		Multipart(fields, "productImage", input.ImageName, input.Image).
		WithContext(ctx).
		Send()
	if err != nil {
		s.setError(err)
		return nil, err
	}

	var out struct {
		Success bool  `json:"success"`
		Data    Order `json:"data"`
	}
	if err := resp.JSON(&out); err != nil {
		s.setError(err)
		return nil, err
	}
	return &out.Data, nil
}

// ── Update / Delete ──────────────────────────────────────────────────────────

// UpdateQuantity changes an order's quantity. Non-positive quantities are
// rejected client-side before any network call; the server remains the final
// authority. On success the matching cached record is replaced in place by
// id. If the record is not on the current page the cache no-ops while the
// server mutation still stands.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.setLoading(true)

	resp, err := s.client.Put("/orders/"+id+"/quantity").
		Body(map[string]int{"quantity": quantity}).
		WithContext(ctx).
		Send()
	if err != nil {
		s.setError(err)
		return err
	}

	var out single
	if err := resp.JSON(&out); err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	idx := collection.IndexOf(s.orders, func(o Order) bool { return o.ID == out.Data.ID })
	if idx >= 0 {
		s.orders[idx] = out.Data
	}
	return nil
}

// Delete removes an order. On success the record is dropped from the cache
// by id and Total is decremented by exactly one; Pages is not recomputed
// until the next fetch.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.setLoading(true)

	_, err := s.client.Delete("/orders/" + id).WithContext(ctx).Send()
	if err != nil {
		s.setError(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	before := len(s.orders)
	s.orders = collection.Filter(s.orders, func(o Order) bool { return o.ID != id })
	if len(s.orders) < before {
		s.pagination.Total--
	}
	return nil
}

// Get fetches a single order by id. Read-only; the cache is not touched.
func (s *Store) Get(ctx context.Context, id string) (*Order, error) {
	resp, err := s.client.Get("/orders/" + id).WithContext(ctx).Send()
	if err != nil {
		return nil, err
	}
	var out single
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// ── Filters / realtime merge ─────────────────────────────────────────────────

// SetFilters merges the patch into the active filters. It deliberately does
// not fetch; the caller decides when the request goes out.
func (s *Store) SetFilters(patch FilterPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Search != nil {
		s.filters.Search = *patch.Search
	}
	if patch.DateFrom != nil {
		s.filters.DateFrom = *patch.DateFrom
	}
	if patch.DateTo != nil {
		s.filters.DateTo = *patch.DateTo
	}
}

// AddOrder merges a realtime-pushed record: prepend and increment Total.
// The merge does not re-check the active filters and does not trim the page
// back down to Limit; a surplus or out-of-filter record stays visible until
// the next fetch replaces the page. Duplicates by id are dropped so a push
// racing a fetch cannot double-insert.
func (s *Store) AddOrder(o Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if collection.Contains(s.orders, func(x Order) bool { return x.ID == o.ID }) {
		return
	}
	s.orders = collection.Prepend(s.orders, o)
	s.pagination.Total++
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *Store) setError(err error) {
	s.mu.Lock()
	s.loading = false
	s.errMsg = api.MessageOf(err)
	s.mu.Unlock()
}
