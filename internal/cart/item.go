package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/roach88/hwcart/internal/money"
)

// Placeholders used when the server omits display fields.
const (
	PlaceholderName  = "Unnamed product"
	PlaceholderImage = "/images/placeholder-product.png"
)

// CartItem is one canonical cart line.
//
// ID identifies the line and is stable across quantity edits. UnitPrice is the
// pre-discount price; the discounted price is always derived, never stored.
// CategoryID is empty until the backfill fills it.
type CartItem struct {
	ID                 string          `json:"id"`
	ProductID          string          `json:"productId"`
	Name               string          `json:"name"`
	ImageURL           string          `json:"imageUrl"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	Quantity           int             `json:"quantity"`
	Stock              int             `json:"stock"`
	TotalPrice         decimal.Decimal `json:"totalPrice"`
	CategoryID         string          `json:"categoryId,omitempty"`

	// Display-only metadata.
	Rating         float64           `json:"rating,omitempty"`
	ReviewCount    int               `json:"reviewCount,omitempty"`
	Features       []string          `json:"features,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Description    string            `json:"description,omitempty"`
	SKU            string            `json:"sku,omitempty"`
	Weight         float64           `json:"weight,omitempty"`
}

// DiscountedUnitPrice returns the per-unit price after discount.
func (it CartItem) DiscountedUnitPrice() decimal.Decimal {
	return money.Discounted(it.UnitPrice, it.DiscountPercentage)
}

// LineSubtotal returns DiscountedUnitPrice * Quantity.
func (it CartItem) LineSubtotal() decimal.Decimal {
	return money.LineTotal(it.UnitPrice, it.DiscountPercentage, it.Quantity)
}

// Checkoutable reports whether the line may be purchased: it is in stock and
// 1 <= Quantity <= Stock. Other lines stay visible but never reach the
// subtotal or checkout.
func (it CartItem) Checkoutable() bool {
	return it.Stock > 0 && it.Quantity >= 1 && it.Quantity <= it.Stock
}

// clone copies the slice and map fields so snapshots never alias.
func (it CartItem) clone() CartItem {
	if it.Features != nil {
		it.Features = append([]string(nil), it.Features...)
	}
	if it.Specifications != nil {
		specs := make(map[string]string, len(it.Specifications))
		for k, v := range it.Specifications {
			specs[k] = v
		}
		it.Specifications = specs
	}
	return it
}

func cloneItems(items []CartItem) []CartItem {
	if items == nil {
		return nil
	}
	out := make([]CartItem, len(items))
	for i, it := range items {
		out[i] = it.clone()
	}
	return out
}

// CartMeta is the server's view of the cart as a whole. Display only.
type CartMeta struct {
	ID              string          `json:"id,omitempty"`
	ServerTotal     decimal.Decimal `json:"serverTotal"`
	ServerItemCount int             `json:"serverItemCount"`
	Raw             json.RawMessage `json:"-"`
}

// Snapshot is the result of one successful normalization.
type Snapshot struct {
	Items []CartItem
	Meta  CartMeta
}

// ProductDetail is the subset of a product record used for backfill.
type ProductDetail struct {
	ID                 string
	CategoryID         string
	DiscountPercentage decimal.Decimal
}

// Category maps a category id to its display name.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subtotal sums LineSubtotal over items. The result does not depend on order.
func Subtotal(items []CartItem) decimal.Decimal {
	lines := make([]decimal.Decimal, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.LineSubtotal())
	}
	return money.Sum(lines...)
}
