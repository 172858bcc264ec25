package devserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ordersync/ordersync/config"
	"github.com/ordersync/ordersync/internal/devserver"
	"github.com/ordersync/ordersync/pkg/api"
	"github.com/ordersync/ordersync/pkg/orders"
	"github.com/ordersync/ordersync/pkg/realtime"
	"github.com/ordersync/ordersync/pkg/session"
)

var testURL string

func TestMain(m *testing.M) {
	config.Set("DB_DRIVER", "sqlite")
	config.Set("DATABASE_DSN", "file::memory:?cache=shared")
	config.Set("STORAGE_LOCAL_ROOT", os.TempDir())

	srv, err := devserver.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "devserver:", err)
		os.Exit(1)
	}
	if err := srv.Seed(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}

	ts := httptest.NewServer(srv.Handler())
	testURL = ts.URL
	code := m.Run()
	ts.Close()
	os.Exit(code)
}

func login(t *testing.T) (*api.Client, *session.Store) {
	t.Helper()
	client := api.New(testURL + "/api")
	sess := session.New(client, &session.MemoryTokenStore{})
	err := sess.Login(context.Background(), session.Credentials{
		Email: "admin@example.com", Password: "password123",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return client, sess
}

func createOrder(t *testing.T, customer string) orders.Order {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := map[string]string{
		"customerName":    customer,
		"email":           strings.ToLower(strings.Fields(customer)[0]) + "@example.com",
		"contactNumber":   "5550199",
		"shippingAddress": "1 Test Street, Testville",
		"productName":     "Test Widget",
		"quantity":        "2",
	}
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	w.Close()

	resp, err := http.Post(testURL+"/api/orders", w.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	var out struct {
		Success bool         `json:"success"`
		Data    orders.Order `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !out.Success || out.Data.ID == "" {
		t.Fatalf("create response: %+v", out)
	}
	return out.Data
}

func TestLoginRejectsBadPassword(t *testing.T) {
	client := api.New(testURL + "/api")
	sess := session.New(client, &session.MemoryTokenStore{})
	err := sess.Login(context.Background(), session.Credentials{
		Email: "admin@example.com", Password: "wrong-password",
	})
	if !api.IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401", err)
	}
	if sess.Err() != "Invalid credentials" {
		t.Errorf("message = %q", sess.Err())
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	resp, err := http.Get(testURL + "/api/orders")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestListAndPaginate(t *testing.T) {
	client, _ := login(t)
	store := orders.NewStore(client)

	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 2}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got := len(store.Orders()); got > 2 {
		t.Errorf("page size = %d, want <= 2", got)
	}
	p := store.Pagination()
	if p.Limit != 2 || p.Page != 1 {
		t.Errorf("pagination = %+v", p)
	}
	if p.Total < 4 {
		t.Errorf("seeded total = %d, want >= 4", p.Total)
	}
}

func TestSearchFilter(t *testing.T) {
	client, _ := login(t)
	store := orders.NewStore(client)

	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 10, Search: "Desk Lamp"}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	got := store.Orders()
	if len(got) == 0 {
		t.Fatal("expected the seeded Desk Lamp order")
	}
	for _, o := range got {
		if !strings.Contains(o.ProductName, "Desk Lamp") &&
			!strings.Contains(o.CustomerName, "Desk Lamp") &&
			!strings.Contains(o.Email, "Desk Lamp") {
			t.Errorf("filtered result does not match: %+v", o)
		}
	}
}

func TestCreateUpdateDeleteRoundtrip(t *testing.T) {
	created := createOrder(t, "Roundtrip Customer")

	client, _ := login(t)
	store := orders.NewStore(client)

	if err := store.Fetch(context.Background(), orders.FetchParams{Page: 1, Limit: 50}); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	found := false
	for _, o := range store.Orders() {
		if o.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("created order missing from the list")
	}

	if err := store.UpdateQuantity(context.Background(), created.ID, 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", got.Quantity)
	}

	if err := store.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(context.Background(), created.ID); api.StatusOf(err) != http.StatusNotFound {
		t.Errorf("after delete, get err = %v, want 404", err)
	}
}

func TestUpdateQuantityValidation(t *testing.T) {
	created := createOrder(t, "Quantity Victim")
	client, _ := login(t)

	_, err := client.Put("/orders/"+created.ID+"/quantity").
		Body(map[string]int{"quantity": 0}).
		Send()
	if api.StatusOf(err) != http.StatusUnprocessableEntity {
		t.Errorf("err = %v, want 422", err)
	}
}

func TestDeleteMissingOrder(t *testing.T) {
	client, _ := login(t)
	_, err := client.Delete("/orders/000000000000000000000000").Send()
	if api.StatusOf(err) != http.StatusNotFound {
		t.Errorf("err = %v, want 404", err)
	}
}

func TestCreateBroadcastsToAdminRoom(t *testing.T) {
	ch := realtime.New(realtime.Endpoint(testURL + "/api"))
	defer ch.Close()

	received := make(chan orders.Order, 1)
	ch.OnOrderCreated(func(o orders.Order) { received <- o })
	if err := ch.JoinAdmin(); err != nil {
		t.Fatalf("join: %v", err)
	}
	// Allow the hub to process the join before the broadcast fires.
	time.Sleep(50 * time.Millisecond)

	created := createOrder(t, "Broadcast Customer")

	select {
	case o := <-received:
		if o.ID != created.ID {
			t.Errorf("pushed id = %q, want %q", o.ID, created.ID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no order-created push received")
	}
}

func TestCreateValidation(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	_ = w.WriteField("customerName", "X")
	w.Close()

	resp, err := http.Post(testURL+"/api/orders", w.FormDataContentType(), &body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", resp.StatusCode)
	}
}
