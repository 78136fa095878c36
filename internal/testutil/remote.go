// Package testutil provides in-memory fakes of the cart's collaborators.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/roach88/hwcart/internal/cart"
)

// Operation names recorded by FakeRemote and accepted by FailOn.
const (
	OpFetchCart  = "fetch_cart"
	OpAddItem    = "add_item"
	OpUpdateItem = "update_item"
	OpRemoveItem = "remove_item"
	OpProduct    = "product"
	OpCategories = "categories"
)

// Call is one recorded remote call. Seq starts at 1 and increases per call.
type Call struct {
	Seq       int    `json:"seq"`
	Op        string `json:"op"`
	ItemID    string `json:"item_id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
}

// FakeRemote implements cart.RemoteCart and cart.Catalog in memory and
// records every call, so tests can assert a call was never made.
//
// Mutations are acknowledged but do not change the served cart body; tests
// that need a different body after a mutation call SetCart.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeRemote struct {
	mu         sync.Mutex
	cartBody   []byte
	products   map[string]cart.ProductDetail
	categories []cart.Category
	failures   map[string]error
	calls      []Call
}

// NewFakeRemote returns a fake serving body for GET cart.
func NewFakeRemote(body []byte) *FakeRemote {
	return &FakeRemote{
		cartBody: body,
		products: make(map[string]cart.ProductDetail),
		failures: make(map[string]error),
	}
}

// SetCart replaces the body served for GET cart.
func (f *FakeRemote) SetCart(body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cartBody = body
}

// AddProduct registers a product detail for backfill lookups.
func (f *FakeRemote) AddProduct(p cart.ProductDetail) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[p.ID] = p
}

// SetCategories sets the category list.
func (f *FakeRemote) SetCategories(cats ...cart.Category) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.categories = cats
}

// FailOn makes every call to op return err.
func (f *FakeRemote) FailOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// FailOnKey makes calls to op for one item or product id return err.
func (f *FakeRemote) FailOnKey(op, key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op+":"+key] = err
}

// Calls returns every recorded call in order.
func (f *FakeRemote) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo counts the recorded calls to op.
func (f *FakeRemote) CallsTo(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// ResetCalls forgets the recorded calls. Failures stay configured.
func (f *FakeRemote) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// record must be called with f.mu held. It returns the configured failure.
func (f *FakeRemote) record(c Call, key string) error {
	c.Seq = len(f.calls) + 1
	f.calls = append(f.calls, c)
	if key != "" {
		if err, ok := f.failures[c.Op+":"+key]; ok {
			return err
		}
	}
	return f.failures[c.Op]
}

func (f *FakeRemote) FetchCart(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpFetchCart}, ""); err != nil {
		return nil, err
	}
	return append([]byte(nil), f.cartBody...), nil
}

func (f *FakeRemote) AddItem(ctx context.Context, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(Call{Op: OpAddItem, ProductID: productID, Quantity: quantity}, productID)
}

func (f *FakeRemote) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(Call{Op: OpUpdateItem, ItemID: itemID, Quantity: quantity}, itemID)
}

func (f *FakeRemote) RemoveItem(ctx context.Context, itemID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record(Call{Op: OpRemoveItem, ItemID: itemID}, itemID)
}

func (f *FakeRemote) Product(ctx context.Context, productID string) (cart.ProductDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpProduct, ProductID: productID}, productID); err != nil {
		return cart.ProductDetail{}, err
	}
	p, ok := f.products[productID]
	if !ok {
		return cart.ProductDetail{}, fmt.Errorf("product %q not found", productID)
	}
	return p, nil
}

func (f *FakeRemote) Categories(ctx context.Context) ([]cart.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record(Call{Op: OpCategories}, ""); err != nil {
		return nil, err
	}
	return append([]cart.Category(nil), f.categories...), nil
}

// Envelope wraps payload in one of the server's response shapes:
// "nested" {data:{data:payload}}, "flat" {data:payload} or "bare" payload.
func Envelope(shape string, payload any) ([]byte, error) {
	var v any
	switch shape {
	case "nested":
		v = map[string]any{"data": map[string]any{"data": payload}}
	case "flat", "":
		v = map[string]any{"data": payload}
	case "bare":
		v = payload
	default:
		return nil, fmt.Errorf("unknown envelope shape %q", shape)
	}
	return json.Marshal(v)
}
