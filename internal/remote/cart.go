package remote

import (
	"context"
	"net/http"
	"net/url"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// FetchCart returns the raw GET cart body; envelope handling is the caller's.
func (c *Client) FetchCart(ctx context.Context) ([]byte, error) {
	return c.do(ctx, http.MethodGet, "cart", nil)
}

// AddItem posts a new line. The server assigns the line id.
func (c *Client) AddItem(ctx context.Context, productID string, quantity int) error {
	_, err := c.do(ctx, http.MethodPost, "cart/items", addItemRequest{ProductID: productID, Quantity: quantity})
	return err
}

// UpdateItem sets the quantity of an existing line.
func (c *Client) UpdateItem(ctx context.Context, itemID string, quantity int) error {
	_, err := c.do(ctx, http.MethodPut, "cart/items/"+url.PathEscape(itemID), updateItemRequest{Quantity: quantity})
	return err
}

// RemoveItem deletes a line. A 404 means the line is already gone and counts
// as success.
func (c *Client) RemoveItem(ctx context.Context, itemID string) error {
	_, err := c.do(ctx, http.MethodDelete, "cart/items/"+url.PathEscape(itemID), nil, http.StatusNotFound)
	return err
}
