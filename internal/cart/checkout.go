package cart

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// CheckoutLine is one selected line as handed to checkout.
//
// Every decimal field, including those of the embedded CartItem, is encoded
// as a JSON string holding the exact value ("90", "1499.5"), never as a JSON
// number. Readers parse it with a decimal type to avoid float rounding.
type CheckoutLine struct {
	CartItem
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	LineSubtotal    decimal.Decimal `json:"lineSubtotal"`
}

// Handoff describes a stored checkout payload.
type Handoff struct {
	Key      string
	Lines    []CheckoutLine
	Subtotal decimal.Decimal
}

// Proceed stores the selected, checkoutable lines under the checkout key,
// overwriting any previous payload, and signals navigation to checkout.
//
// An empty selection returns ErrEmptySelection with a warning notification
// and writes nothing. Out-of-stock lines are never handed off.
func (c *Controller) Proceed(ctx context.Context) (Handoff, error) {
	const op = "proceed"
	if err := c.deny(c.Gate(), op); err != nil {
		return Handoff{}, err
	}

	selected := c.Selected()
	if len(selected) == 0 {
		c.notify(dialog(KindWarning, "Nothing selected", "Select at least one in-stock item to continue to checkout."))
		return Handoff{}, newError(CodeEmptySelection, op, nil, "no checkoutable lines selected")
	}
	if c.deps.Payloads == nil {
		return Handoff{}, newError(CodePayloadWriteFailed, op, nil, "no payload store configured")
	}

	h := Handoff{
		Key:      c.checkoutKey,
		Lines:    make([]CheckoutLine, len(selected)),
		Subtotal: Subtotal(selected),
	}
	for i, it := range selected {
		h.Lines[i] = CheckoutLine{
			CartItem:        it,
			DiscountedPrice: it.DiscountedUnitPrice(),
			LineSubtotal:    it.LineSubtotal(),
		}
	}

	payload, err := json.Marshal(h.Lines)
	if err != nil {
		return Handoff{}, newError(CodePayloadWriteFailed, op, err, "encode payload")
	}
	if err := c.deps.Payloads.Put(ctx, h.Key, payload); err != nil {
		c.logger.Error("store checkout payload failed", "key", h.Key, "error", err)
		c.notify(toast(KindError, "Could not start checkout", "Please try again."))
		return Handoff{}, newError(CodePayloadWriteFailed, op, err, "key %q", h.Key)
	}

	c.logger.Info("checkout handoff stored", "key", h.Key, "lines", len(h.Lines), "subtotal", h.Subtotal.String())
	if c.deps.Navigator != nil {
		c.deps.Navigator.GoToCheckout(ctx, h.Key)
	}
	return h, nil
}
