package orders_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ordersync/ordersync/pkg/api"
	"github.com/ordersync/ordersync/pkg/orders"
)

func order(id, customer string, qty int) orders.Order {
	return orders.Order{
		ID:           id,
		CustomerName: customer,
		Email:        customer + "@example.com",
		ProductName:  "Widget",
		Quantity:     qty,
		Status:       orders.StatusPending,
		CreatedAt:    time.Now(),
	}
}

func pageBody(data []orders.Order, total int) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"data": data,
		"pagination": orders.Pagination{
			Page: 1, Limit: 10, Total: total, Pages: (total + 9) / 10,
		},
	})
	return b
}

func TestFetchReplacesCache(t *testing.T) {
	pages := [][]byte{
		pageBody([]orders.Order{order("a1", "Ava", 1), order("a2", "Liam", 2)}, 2),
		pageBody([]orders.Order{order("b1", "Maya", 3)}, 1),
	}
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		w.Write(pages[n-1])
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))

	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("fetch 1: %v", err)
	}
	if got := store.Orders(); len(got) != 2 || got[0].ID != "a1" {
		t.Fatalf("after fetch 1: %+v", got)
	}

	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("fetch 2: %v", err)
	}
	got := store.Orders()
	if len(got) != 1 || got[0].ID != "b1" {
		t.Errorf("second fetch must replace, not merge: %+v", got)
	}
	if store.Pagination().Total != 1 {
		t.Errorf("total = %d, want 1", store.Pagination().Total)
	}
}

func TestFetchFailureKeepsStaleData(t *testing.T) {
	var fail atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"could not load orders"}`))
			return
		}
		w.Write(pageBody([]orders.Order{order("a1", "Ava", 1)}, 1))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	fail.Store(true)
	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 2, Limit: 10}); err == nil {
		t.Fatal("expected fetch error")
	}

	if got := store.Orders(); len(got) != 1 || got[0].ID != "a1" {
		t.Errorf("stale page must survive a failed fetch: %+v", got)
	}
	if store.Err() != "could not load orders" {
		t.Errorf("err = %q", store.Err())
	}
	if store.Loading() {
		t.Error("loading must clear after failure")
	}
}

func TestStaleFetchResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			<-release
			w.Write(pageBody([]orders.Order{order("old", "Stale", 1)}, 1))
			return
		}
		w.Write(pageBody([]orders.Order{order("new", "Fresh", 2)}, 1))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))

	done := make(chan error, 1)
	go func() {
		done <- store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10})
	}()
	// Let the slow fetch reach the server before issuing the newer one.
	time.Sleep(50 * time.Millisecond)

	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 2, Limit: 10}); err != nil {
		t.Fatalf("fast fetch: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow fetch: %v", err)
	}

	got := store.Orders()
	if len(got) != 1 || got[0].ID != "new" {
		t.Errorf("stale response overwrote newer fetch: %+v", got)
	}
}

func TestUpdateQuantityPatchesInPlace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			updated := order("a2", "Liam", 9)
			b, _ := json.Marshal(map[string]interface{}{"data": updated})
			w.Write(b)
			return
		}
		w.Write(pageBody([]orders.Order{order("a1", "Ava", 1), order("a2", "Liam", 2)}, 2))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if err := store.UpdateQuantity(context.Background(), "a2", 9); err != nil {
		t.Fatalf("update: %v", err)
	}

	got := store.Orders()
	if len(got) != 2 {
		t.Fatalf("record count changed: %d", len(got))
	}
	if got[0].ID != "a1" || got[1].ID != "a2" {
		t.Errorf("order positions changed: %+v", got)
	}
	if got[1].Quantity != 9 {
		t.Errorf("quantity = %d, want 9", got[1].Quantity)
	}
}

func TestUpdateQuantityRejectsNonPositive(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	for _, q := range []int{0, -1, -100} {
		if err := store.UpdateQuantity(context.Background(), "a1", q); !errors.Is(err, orders.ErrInvalidQuantity) {
			t.Errorf("quantity %d: err = %v, want ErrInvalidQuantity", q, err)
		}
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("invalid quantities must not reach the network")
	}
}

func TestUpdateQuantityAbsentRecordLeavesCacheAlone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			b, _ := json.Marshal(map[string]interface{}{"data": order("zz", "Other", 4)})
			w.Write(b)
			return
		}
		w.Write(pageBody([]orders.Order{order("a1", "Ava", 1)}, 1))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if err := store.UpdateQuantity(context.Background(), "zz", 4); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := store.Orders()
	if len(got) != 1 || got[0].ID != "a1" || got[0].Quantity != 1 {
		t.Errorf("cache changed for a record not on the page: %+v", got)
	}
}

func TestDeleteRemovesAndDecrementsTotal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write(pageBody([]orders.Order{order("a1", "Ava", 1), order("a2", "Liam", 2)}, 7))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	pagesBefore := store.Pagination().Pages

	if err := store.Delete(context.Background(), "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got := store.Orders()
	if len(got) != 1 || got[0].ID != "a2" {
		t.Errorf("after delete: %+v", got)
	}
	p := store.Pagination()
	if p.Total != 6 {
		t.Errorf("total = %d, want 6", p.Total)
	}
	if p.Pages != pagesBefore {
		t.Errorf("pages recomputed locally: %d", p.Pages)
	}

	// Deleting a record not on the current page leaves the counters alone.
	if err := store.Delete(context.Background(), "elsewhere"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
	if store.Pagination().Total != 6 {
		t.Errorf("total decremented for a record not in the cache")
	}
}

func TestAddOrderPrependsAndDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pageBody([]orders.Order{order("a1", "Ava", 1)}, 1))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10}); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	fresh := order("rt1", "Noah", 3)
	store.AddOrder(fresh)

	got := store.Orders()
	if len(got) != 2 || got[0].ID != "rt1" {
		t.Fatalf("pushed order must prepend: %+v", got)
	}
	if store.Pagination().Total != 2 {
		t.Errorf("total = %d, want 2", store.Pagination().Total)
	}

	store.AddOrder(fresh)
	if len(store.Orders()) != 2 {
		t.Error("duplicate push must be dropped")
	}
	if store.Pagination().Total != 2 {
		t.Error("duplicate push must not bump total")
	}
}

func TestSetFiltersDoesNotFetch(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write(pageBody(nil, 0))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	search := "mug"
	store.SetFilters(orders.FilterPatch{Search: &search})

	if atomic.LoadInt32(&calls) != 0 {
		t.Error("SetFilters must not issue a request")
	}
	if store.Filters().Search != "mug" {
		t.Errorf("search = %q", store.Filters().Search)
	}

	// Patching one field leaves the others untouched.
	from := "2026-01-01"
	store.SetFilters(orders.FilterPatch{DateFrom: &from})
	f := store.Filters()
	if f.Search != "mug" || f.DateFrom != "2026-01-01" {
		t.Errorf("filters = %+v", f)
	}
}

func TestCreateValidatesBeforeNetwork(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	_, err := store.Create(context.Background(), orders.CreateInput{
		CustomerName: "A", // too short
		Email:        "not-an-email",
	})
	var verrs orders.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Error("invalid form must not reach the network")
	}
}

func TestCreateSubmitsMultipartAndReturnsRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
		}
		if got := r.FormValue("customerName"); got != "Ava Patel" {
			t.Errorf("customerName = %q", got)
		}
		created := order("c1", "Ava Patel", 2)
		b, _ := json.Marshal(map[string]interface{}{"success": true, "data": created})
		w.WriteHeader(http.StatusCreated)
		w.Write(b)
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	created, err := store.Create(context.Background(), orders.CreateInput{
		CustomerName:    "Ava Patel",
		Email:           "ava@example.com",
		ContactNumber:   "5550100",
		ShippingAddress: "12 Elm Street, Springfield",
		ProductName:     "Ceramic Mug",
		Quantity:        2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "c1" {
		t.Errorf("created id = %q", created.ID)
	}

	// Creation does not merge into the admin page cache.
	if len(store.Orders()) != 0 {
		t.Error("create must not touch the cached page")
	}
}

func TestFetchSendsFilterParams(t *testing.T) {
	var query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write(pageBody(nil, 0))
	}))
	defer srv.Close()

	store := orders.NewStore(api.New(srv.URL))
	err := store.Fetch(context.Background(), orders.FetchParams{
		Page: 3, Limit: 25, Search: "lamp", DateFrom: "2026-01-01",
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := "dateFrom=2026-01-01&limit=25&page=3&search=lamp"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
}
