package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/hwcart/internal/cart"
)

// maxEnvelopeDepth bounds how many {"data": ...} wrappers are peeled.
const maxEnvelopeDepth = 2

// unwrapData peels {"data": ...} wrappers. A body without one is returned
// unchanged.
func unwrapData(body []byte) json.RawMessage {
	raw := json.RawMessage(bytes.TrimSpace(body))
	for i := 0; i < maxEnvelopeDepth; i++ {
		if len(raw) == 0 || raw[0] != '{' {
			return raw
		}
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return raw
		}
		data := bytes.TrimSpace(env.Data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return raw
		}
		raw = data
	}
	return raw
}

// idString renders a JSON string or number id as a string.
func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

type categoryRef struct {
	ID json.RawMessage `json:"id"`
}

type productRecord struct {
	ID                 json.RawMessage `json:"id"`
	CategoryID         json.RawMessage `json:"categoryId"`
	Category           *categoryRef    `json:"category"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

// Product fetches the fields used to backfill a cart line.
func (c *Client) Product(ctx context.Context, productID string) (cart.ProductDetail, error) {
	body, err := c.do(ctx, http.MethodGet, "products/"+url.PathEscape(productID), nil)
	if err != nil {
		return cart.ProductDetail{}, err
	}

	var rec productRecord
	if err := json.Unmarshal(unwrapData(body), &rec); err != nil {
		return cart.ProductDetail{}, fmt.Errorf("decode product %q: %w", productID, err)
	}
	detail := cart.ProductDetail{
		ID:                 idString(rec.ID),
		CategoryID:         idString(rec.CategoryID),
		DiscountPercentage: rec.DiscountPercentage,
	}
	if detail.ID == "" {
		detail.ID = productID
	}
	if detail.CategoryID == "" && rec.Category != nil {
		detail.CategoryID = idString(rec.Category.ID)
	}
	return detail, nil
}

type categoryRecord struct {
	ID   json.RawMessage `json:"id"`
	Name string          `json:"name"`
}

// Categories fetches every category for display-name lookup.
func (c *Client) Categories(ctx context.Context) ([]cart.Category, error) {
	body, err := c.do(ctx, http.MethodGet, "categories", nil)
	if err != nil {
		return nil, err
	}

	var recs []categoryRecord
	if err := json.Unmarshal(unwrapData(body), &recs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]cart.Category, 0, len(recs))
	for _, r := range recs {
		id := idString(r.ID)
		if id == "" {
			continue
		}
		out = append(out, cart.Category{ID: id, Name: r.Name})
	}
	return out, nil
}
