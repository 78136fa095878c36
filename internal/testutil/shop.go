package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/roach88/hwcart/internal/cart"
)

// ShopPrefix is the path every Shop route lives under.
const ShopPrefix = "/api/v1"

// ShopProduct is one catalog entry served by Shop.
type ShopProduct struct {
	ID         string
	Name       string
	CategoryID string
	Price      float64
	Discount   float64
	Stock      int
}

// ShopLine is one server-side cart line.
type ShopLine struct {
	ID        string
	ProductID string
	Quantity  int
}

// Shop is an in-memory store API for end-to-end tests: it serves the cart,
// product and category endpoints and applies cart mutations to its own state.
// Cart lines omit categoryId so clients must backfill it.
type Shop struct {
	mu         sync.Mutex
	shape      string
	products   map[string]ShopProduct
	categories []cart.Category
	lines      []ShopLine
	nextID     int
	failures   map[string]int
	requests   []string
}

// NewShop serves the cart in the given envelope shape ("nested" or "flat").
func NewShop(shape string) *Shop {
	return &Shop{
		shape:    shape,
		products: make(map[string]ShopProduct),
		failures: make(map[string]int),
	}
}

func (s *Shop) AddProduct(p ShopProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

func (s *Shop) SetCategories(cats ...cart.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = cats
}

// Seed puts a line in the cart without going through the API and returns
// its id.
func (s *Shop) Seed(productID string, quantity int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(productID, quantity)
}

// FailWith makes "METHOD path" (path relative to ShopPrefix, e.g.
// "PUT cart/items/ci-1") answer with status.
func (s *Shop) FailWith(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

// Lines returns a copy of the server-side cart.
func (s *Shop) Lines() []ShopLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ShopLine(nil), s.lines...)
}

// Requests lists "METHOD path" for every request received, in order.
func (s *Shop) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many requests matched route exactly.
func (s *Shop) Count(route string) int {
	n := 0
	for _, r := range s.Requests() {
		if r == route {
			n++
		}
	}
	return n
}

func (s *Shop) addLocked(productID string, quantity int) string {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity += quantity
			return s.lines[i].ID
		}
	}
	s.nextID++
	id := fmt.Sprintf("ci-%d", s.nextID)
	s.lines = append(s.lines, ShopLine{ID: id, ProductID: productID, Quantity: quantity})
	return id
}

func (s *Shop) indexLocked(id string) int {
	for i, l := range s.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Shop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, ShopPrefix), "/")
	route := r.Method + " " + path

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, route)

	if status, ok := s.failures[route]; ok {
		writeJSON(w, status, map[string]any{"message": "injected failure"})
		return
	}

	switch {
	case route == "GET cart":
		s.serveCartLocked(w)
	case route == "POST cart/items":
		var req struct {
			ProductID string `json:"productId"`
			Quantity  int    `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
			return
		}
		p, ok := s.products[req.ProductID]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "product not found"})
			return
		}
		if req.Quantity < 1 || req.Quantity > p.Stock {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "quantity exceeds stock"})
			return
		}
		id := s.addLocked(req.ProductID, req.Quantity)
		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"id": id}})
	case strings.HasPrefix(path, "cart/items/") && (r.Method == http.MethodPut || r.Method == http.MethodDelete):
		s.serveLineLocked(w, r, strings.TrimPrefix(path, "cart/items/"))
	case r.Method == http.MethodGet && strings.HasPrefix(path, "products/"):
		p, ok := s.products[strings.TrimPrefix(path, "products/")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "product not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"id":                 p.ID,
			"name":               p.Name,
			"categoryId":         p.CategoryID,
			"discountPercentage": p.Discount,
		}})
	case route == "GET categories":
		cats := make([]map[string]any, 0, len(s.categories))
		for _, c := range s.categories {
			cats = append(cats, map[string]any{"id": c.ID, "name": c.Name})
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": cats})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "no route " + route})
	}
}

func (s *Shop) serveLineLocked(w http.ResponseWriter, r *http.Request, id string) {
	i := s.indexLocked(id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "cart item not found"})
		return
	}
	if r.Method == http.MethodDelete {
		s.lines = append(s.lines[:i], s.lines[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": err.Error()})
		return
	}
	if req.Quantity < 1 || req.Quantity > s.products[s.lines[i].ProductID].Stock {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "quantity exceeds stock"})
		return
	}
	s.lines[i].Quantity = req.Quantity
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": id, "quantity": req.Quantity}})
}

func (s *Shop) serveCartLocked(w http.ResponseWriter) {
	items := make([]any, 0, len(s.lines))
	total := 0.0
	for _, l := range s.lines {
		p := s.products[l.ProductID]
		lineTotal := p.Price * (100 - p.Discount) / 100 * float64(l.Quantity)
		total += lineTotal
		items = append(items, map[string]any{
			"id":                 l.ID,
			"productId":          l.ProductID,
			"quantity":           l.Quantity,
			"discountPercentage": p.Discount,
			"totalPrice":         lineTotal,
			"product": map[string]any{
				"id":    p.ID,
				"name":  p.Name,
				"price": p.Price,
				"stock": p.Stock,
			},
		})
	}

	body, err := Envelope(s.shape, map[string]any{
		"cart":  map[string]any{"id": "cart-1", "totalPrice": total, "totalItems": len(s.lines)},
		"items": items,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
