package cart

import (
	"bytes"
	"encoding/json"
)

type rawEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type rawPayload struct {
	Data  json.RawMessage `json:"data"`
	Cart  json.RawMessage `json:"cart"`
	Items json.RawMessage `json:"items"`
}

type rawCart struct {
	ID         flexString  `json:"id"`
	TotalPrice flexDecimal `json:"totalPrice"`
	Total      flexDecimal `json:"total"`
	TotalItems flexInt     `json:"totalItems"`
}

type rawItem struct {
	ID                 flexString  `json:"id"`
	CartItemID         flexString  `json:"cartItemId"`
	ProductID          flexString  `json:"productId"`
	Quantity           flexInt     `json:"quantity"`
	TotalPrice         flexDecimal `json:"totalPrice"`
	DiscountPercentage flexDecimal `json:"discountPercentage"`
	Product            *rawProduct `json:"product"`
}

type rawProduct struct {
	ID                 flexString      `json:"id"`
	Name               flexString      `json:"name"`
	ImageURL           flexString      `json:"imageUrl"`
	Image              flexString      `json:"image"`
	Price              flexDecimal     `json:"price"`
	Stock              flexInt         `json:"stock"`
	DiscountPercentage flexDecimal     `json:"discountPercentage"`
	CategoryID         flexString      `json:"categoryId"`
	Rating             flexDecimal     `json:"rating"`
	ReviewCount        flexInt         `json:"reviewCount"`
	Features           json.RawMessage `json:"features"`
	Specifications     json.RawMessage `json:"specifications"`
	Description        flexString      `json:"description"`
	SKU                flexString      `json:"sku"`
	Weight             flexDecimal     `json:"weight"`
}

func present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func (p rawPayload) matches() bool {
	return present(p.Cart) || present(p.Items)
}

// Normalize maps a cart response body onto canonical items.
//
// Two envelopes are accepted, nested {data:{data:{cart,items}}} and flat
// {data:{cart,items}}; the nested form wins when both could apply. Anything
// else returns ErrMalformedResponse. Lines without an identifier cannot be
// addressed by later mutations and are dropped.
func Normalize(body []byte) (Snapshot, error) {
	payload, err := unwrap(body)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if present(payload.Cart) {
		snap.Meta, err = normalizeMeta(payload.Cart)
		if err != nil {
			return Snapshot{}, err
		}
	}

	var raws []rawItem
	if present(payload.Items) {
		if err := json.Unmarshal(payload.Items, &raws); err != nil {
			return Snapshot{}, newError(CodeMalformedResponse, "normalize", err, "items is not a list")
		}
	}

	snap.Items = make([]CartItem, 0, len(raws))
	seen := make(map[string]bool, len(raws))
	for _, raw := range raws {
		item, ok := normalizeItem(raw)
		if !ok || seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		snap.Items = append(snap.Items, item)
	}
	return snap, nil
}

func unwrap(body []byte) (rawPayload, error) {
	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return rawPayload{}, newError(CodeMalformedResponse, "normalize", err, "body is not a JSON object")
	}
	if !present(env.Data) {
		return rawPayload{}, newError(CodeMalformedResponse, "normalize", nil, "missing data")
	}

	var outer rawPayload
	if err := json.Unmarshal(env.Data, &outer); err != nil {
		return rawPayload{}, newError(CodeMalformedResponse, "normalize", err, "data is not an object")
	}
	if present(outer.Data) {
		var inner rawPayload
		if err := json.Unmarshal(outer.Data, &inner); err == nil && inner.matches() {
			return inner, nil
		}
	}
	if outer.matches() {
		return outer, nil
	}
	return rawPayload{}, newError(CodeMalformedResponse, "normalize", nil, "no cart or items in data")
}

func normalizeMeta(raw json.RawMessage) (CartMeta, error) {
	var rc rawCart
	if err := json.Unmarshal(raw, &rc); err != nil {
		return CartMeta{}, newError(CodeMalformedResponse, "normalize", err, "cart is not an object")
	}
	total := rc.TotalPrice
	if !total.present {
		total = rc.Total
	}
	return CartMeta{
		ID:              string(rc.ID),
		ServerTotal:     total.nonNegative(),
		ServerItemCount: rc.TotalItems.nonNegative(),
		Raw:             append(json.RawMessage(nil), raw...),
	}, nil
}

func normalizeItem(raw rawItem) (CartItem, bool) {
	id := raw.ID
	if id == "" {
		id = raw.CartItemID
	}
	if id == "" {
		return CartItem{}, false
	}

	p := raw.Product
	if p == nil {
		p = &rawProduct{}
	}

	item := CartItem{
		ID:          string(id),
		ProductID:   string(raw.ProductID),
		Name:        string(p.Name),
		ImageURL:    string(p.ImageURL),
		UnitPrice:   p.Price.nonNegative(),
		Quantity:    raw.Quantity.nonNegative(),
		Stock:       p.Stock.nonNegative(),
		CategoryID:  string(p.CategoryID),
		Rating:      p.Rating.value.InexactFloat64(),
		ReviewCount: p.ReviewCount.nonNegative(),
		Description: string(p.Description),
		SKU:         string(p.SKU),
		Weight:      p.Weight.nonNegative().InexactFloat64(),
	}
	if item.ProductID == "" {
		item.ProductID = string(p.ID)
	}
	if item.Name == "" {
		item.Name = PlaceholderName
	}
	if item.ImageURL == "" {
		item.ImageURL = string(p.Image)
	}
	if item.ImageURL == "" {
		item.ImageURL = PlaceholderImage
	}

	// A line-level discount overrides the product's.
	item.DiscountPercentage = p.DiscountPercentage.nonNegative()
	if raw.DiscountPercentage.present {
		item.DiscountPercentage = raw.DiscountPercentage.nonNegative()
	}

	// Display-only fields: a shape mismatch here drops the field, not the line.
	var features []flexString
	if json.Unmarshal(p.Features, &features) == nil {
		for _, f := range features {
			if f != "" {
				item.Features = append(item.Features, string(f))
			}
		}
	}
	var specs map[string]flexString
	if json.Unmarshal(p.Specifications, &specs) == nil && len(specs) > 0 {
		item.Specifications = make(map[string]string, len(specs))
		for k, v := range specs {
			item.Specifications[k] = string(v)
		}
	}

	if raw.TotalPrice.present {
		item.TotalPrice = raw.TotalPrice.nonNegative()
	} else {
		item.TotalPrice = item.LineSubtotal()
	}
	return item, true
}
