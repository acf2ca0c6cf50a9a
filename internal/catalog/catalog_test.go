package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/model"
	"storefront/internal/remote"
)

func newTestClient(t *testing.T, body string, defaultStock int) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	rc := remote.NewWithHTTPClient(&http.Client{}, logger)
	return NewClient(rc, srv.URL, defaultStock), srv.Close
}

func TestFetch_BareArray(t *testing.T) {
	body := `[
		{"productId":"p1","name":"Widget","description":"A widget","price":12.5,"stock":3},
		{"productId":"p2","name":"Gadget","price":"99.00","stock":0}
	]`
	c, done := newTestClient(t, body, 10)
	defer done()

	products, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("len(products) = %d, want 2", len(products))
	}

	if products[0].Price != 1250 {
		t.Errorf("p1 Price = %d, want 1250", products[0].Price)
	}
	if products[0].Stock != 3 {
		t.Errorf("p1 Stock = %d, want 3", products[0].Stock)
	}
	// String-encoded price and explicit zero stock
	if products[1].Price != 9900 {
		t.Errorf("p2 Price = %d, want 9900", products[1].Price)
	}
	if products[1].Stock != 0 {
		t.Errorf("p2 Stock = %d, want 0, not the default", products[1].Stock)
	}
}

func TestFetch_WrappedObject(t *testing.T) {
	body := `{"products":[{"productId":"p1","name":"Widget","price":5,"stock":2}]}`
	c, done := newTestClient(t, body, 10)
	defer done()

	products, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(products) != 1 || products[0].ProductID != "p1" {
		t.Fatalf("products = %+v, want one p1", products)
	}
}

func TestFetch_DefaultStock(t *testing.T) {
	body := `[{"productId":"p1","name":"Widget","price":5}]`

	// Absent stock takes the configured default
	c, done := newTestClient(t, body, 10)
	defer done()
	products, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if products[0].Stock != 10 {
		t.Errorf("Stock = %d, want default 10", products[0].Stock)
	}

	// Default of 0 treats absent stock as out of stock
	c2, done2 := newTestClient(t, body, 0)
	defer done2()
	products, err = c2.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if products[0].Stock != 0 {
		t.Errorf("Stock = %d, want 0", products[0].Stock)
	}
}

func TestFetch_NegativeStockClamped(t *testing.T) {
	c, done := newTestClient(t, `[{"productId":"p1","name":"W","price":5,"stock":-4}]`, 10)
	defer done()

	products, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if products[0].Stock != 0 {
		t.Errorf("Stock = %d, want clamped to 0", products[0].Stock)
	}
}

func TestFetch_Undecodable(t *testing.T) {
	c, done := newTestClient(t, `{"weird":true}`, 10)
	defer done()

	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("Fetch() should fail on unrecognized response shape")
	}
}

func TestStore(t *testing.T) {
	s := NewStore()

	if s.Loaded() {
		t.Error("new store should not be loaded")
	}
	if _, ok := s.Get("p1"); ok {
		t.Error("Get() on empty store should miss")
	}

	s.Replace([]model.Product{
		{ProductID: "p1", Name: "Widget", Stock: 3},
		{ProductID: "p2", Name: "Gadget", Stock: 0},
	})

	if !s.Loaded() {
		t.Error("store should be loaded after Replace")
	}
	p, ok := s.Get("p1")
	if !ok || p.Name != "Widget" {
		t.Errorf("Get(p1) = %+v, %v", p, ok)
	}
	if len(s.Snapshot()) != 2 {
		t.Errorf("Snapshot() len = %d, want 2", len(s.Snapshot()))
	}

	// Replace is wholesale: old entries disappear
	s.Replace([]model.Product{{ProductID: "p3", Stock: 1}})
	if _, ok := s.Get("p1"); ok {
		t.Error("p1 should be gone after wholesale replace")
	}
	if len(s.Snapshot()) != 1 {
		t.Errorf("Snapshot() len = %d, want 1", len(s.Snapshot()))
	}
}
