package cart

import (
	"context"
	"fmt"
)

// AddItem asks the server to add quantity units of productID.
//
// The line id is assigned by the server, so nothing is inserted locally; on
// success only the badge is recounted and the caller reloads when it wants
// the new line.
func (c *Controller) AddItem(ctx context.Context, productID string, quantity int) error {
	const op = "add item"
	if err := c.deny(c.Gate(), op); err != nil {
		return err
	}
	if productID == "" || quantity < 1 {
		return newError(CodeValidationRejected, op, nil, "product %q quantity %d", productID, quantity)
	}

	if err := c.deps.Cart.AddItem(ctx, productID, quantity); err != nil {
		c.logger.Error("add item failed", "product_id", productID, "quantity", quantity, "error", err)
		c.notify(toast(KindError, "Could not add to cart", "The product was not added. Please try again."))
		return newError(CodeRemoteMutationFailed, op, err, "product %q", productID)
	}

	c.logger.Info("item added", "product_id", productID, "quantity", quantity)
	c.notify(toast(KindSuccess, "Added to cart", fmt.Sprintf("%d item(s) added to your cart.", quantity)))
	if err := c.badge.Update(ctx, nil); err != nil {
		c.logger.Warn("badge recount failed", "error", err)
	}
	return nil
}

// UpdateQuantity sets a line's quantity.
//
// Quantities outside [1, stock] are rejected locally without a network call
// or notification. On success the line total is recomputed locally. On
// failure the line keeps its previous quantity.
func (c *Controller) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	const op = "update quantity"
	if err := c.deny(c.Gate(), op); err != nil {
		return err
	}

	c.mu.Lock()
	i := c.indexOf(itemID)
	if i < 0 {
		c.mu.Unlock()
		return newError(CodeValidationRejected, op, nil, "unknown item %q", itemID)
	}
	stock := c.items[i].Stock
	c.mu.Unlock()

	if quantity < 1 || quantity > stock {
		c.logger.Debug("quantity rejected", "item_id", itemID, "quantity", quantity, "stock", stock)
		return newError(CodeValidationRejected, op, nil, "quantity %d outside [1, %d]", quantity, stock)
	}

	if err := c.deps.Cart.UpdateItem(ctx, itemID, quantity); err != nil {
		c.logger.Error("update quantity failed", "item_id", itemID, "quantity", quantity, "error", err)
		c.notify(toast(KindError, "Could not update quantity", "The quantity was not changed. Please try again."))
		return newError(CodeRemoteMutationFailed, op, err, "item %q", itemID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// The line may have been removed while the request was in flight.
	if i = c.indexOf(itemID); i >= 0 {
		c.items[i].Quantity = quantity
		c.items[i].TotalPrice = c.items[i].LineSubtotal()
	}
	return nil
}

// RemoveItem deletes a line remotely, then drops it from the items and the
// selection. Removing a line that is not in the cart is a no-op.
func (c *Controller) RemoveItem(ctx context.Context, itemID string) error {
	const op = "remove item"
	if err := c.deny(c.Gate(), op); err != nil {
		return err
	}

	c.mu.Lock()
	known := c.indexOf(itemID) >= 0
	c.mu.Unlock()
	if !known {
		return nil
	}

	if err := c.deps.Cart.RemoveItem(ctx, itemID); err != nil {
		c.logger.Error("remove item failed", "item_id", itemID, "error", err)
		c.notify(toast(KindError, "Could not remove item", "The item is still in your cart. Please try again."))
		return newError(CodeRemoteMutationFailed, op, err, "item %q", itemID)
	}

	c.mu.Lock()
	if i := c.indexOf(itemID); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.selection.Remove(itemID)
	count := len(c.items)
	c.mu.Unlock()

	c.logger.Info("item removed", "item_id", itemID)
	c.notify(toast(KindSuccess, "Removed from cart", "The item was removed from your cart."))
	c.badge.Set(count)
	return nil
}
