package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// DefaultCheckoutKey is the payload key the checkout step reads.
const DefaultCheckoutKey = "checkout.selected_items"

// Deps are the collaborators a Controller talks to. Cart is required;
// a nil Catalog disables backfill, a nil Payloads disables checkout, and a
// nil Notifier discards notifications.
type Deps struct {
	Cart      RemoteCart
	Catalog   Catalog
	Payloads  PayloadStore
	Notifier  Notifier
	Navigator Navigator
}

// Controller owns the cart state for one session.
//
// Thread-safety: all methods are safe for concurrent use. The mutex is never
// held across a remote call, so two edits of the same line race at the
// network layer and the last response to resolve wins.
type Controller struct {
	deps        Deps
	logger      *slog.Logger
	checkoutKey string
	badge       *Badge

	mu               sync.Mutex
	gate             Gate
	items            []CartItem
	meta             CartMeta
	selection        *Selection
	categories       map[string]string
	categoriesLoaded bool
	loading          bool
	loaded           bool
	productsLoaded   bool
	backfilling      bool
	generation       uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithCheckoutKey overrides DefaultCheckoutKey.
func WithCheckoutKey(key string) Option {
	return func(c *Controller) {
		c.checkoutKey = key
	}
}

// NewController creates a controller for actor. Nothing is fetched until Load.
func NewController(actor Actor, deps Deps, opts ...Option) *Controller {
	if deps.Notifier == nil {
		deps.Notifier = discardNotifier{}
	}
	c := &Controller{
		deps:        deps,
		logger:      slog.Default(),
		checkoutKey: DefaultCheckoutKey,
		gate:        NewGate(actor),
		selection:   NewSelection(nil),
		categories:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.badge = NewBadge(c.recount)
	return c
}

// Badge returns the cart counter fed by this controller.
func (c *Controller) Badge() *Badge {
	return c.badge
}

// Gate returns the capability for the current actor.
func (c *Controller) Gate() Gate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gate
}

// Visible reports whether the cart view is shown. Disallowed actors keep
// their in-memory state but see no cart.
func (c *Controller) Visible() bool {
	return c.Gate().Allowed()
}

// SetActor recomputes the gate. Losing capability suppresses the view and
// zeroes the badge; gaining it, or switching to another allowed actor,
// reloads the cart.
func (c *Controller) SetActor(ctx context.Context, actor Actor) error {
	next := NewGate(actor)

	c.mu.Lock()
	prev := c.gate
	c.gate = next
	c.mu.Unlock()

	c.logger.Debug("actor changed", "actor_id", actor.ID, "role", string(actor.Role), "allowed", next.Allowed())
	if !next.Allowed() {
		c.badge.Set(0)
		return nil
	}
	if !prev.Allowed() || prev.Actor().ID != actor.ID {
		return c.Load(ctx)
	}
	return nil
}

// Load fetches and normalizes the remote cart, resets the selection to every
// line, updates the badge and runs the backfill.
//
// A malformed response is recovered as an empty cart; the returned error
// still carries CodeMalformedResponse so callers can log it. A fetch failure
// leaves the previous state untouched.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	if !c.gate.Allowed() {
		c.mu.Unlock()
		c.badge.Set(0)
		return nil
	}
	c.loading = true
	c.mu.Unlock()

	body, err := c.deps.Cart.FetchCart(ctx)
	if err != nil {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
		c.logger.Error("fetch cart failed", "error", err)
		c.notify(toast(KindError, "Could not load cart", "Please try again in a moment."))
		return newError(CodeRemoteFetchFailed, "load", err, "fetch cart")
	}

	snap, normErr := Normalize(body)
	if normErr != nil {
		c.logger.Warn("cart response malformed, treating as empty", "error", normErr)
		snap = Snapshot{Items: []CartItem{}}
	}

	c.mu.Lock()
	c.generation++
	c.items = snap.Items
	c.meta = snap.Meta
	c.selection.Reset(lineIDs(snap.Items))
	c.loading = false
	c.loaded = true
	c.productsLoaded = false
	count := len(c.items)
	c.mu.Unlock()

	c.logger.Debug("cart loaded", "items", count, "cart_id", snap.Meta.ID)
	c.badge.Set(count)

	if normErr != nil {
		return normErr
	}
	return c.Backfill(ctx)
}

// recount backs Badge.Update(ctx, nil).
func (c *Controller) recount(ctx context.Context) (int, error) {
	if !c.Gate().Allowed() {
		return 0, nil
	}
	body, err := c.deps.Cart.FetchCart(ctx)
	if err != nil {
		return 0, newError(CodeRemoteFetchFailed, "recount", err, "fetch cart")
	}
	snap, err := Normalize(body)
	if err != nil {
		return 0, nil
	}
	return len(snap.Items), nil
}

// Loading reports whether a cart fetch is in flight.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// ProductsLoaded reports whether backfill finished for the current snapshot.
func (c *Controller) ProductsLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.productsLoaded
}

// Items returns a copy of the cart lines in server order.
func (c *Controller) Items() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneItems(c.items)
}

// Item returns one line by id.
func (c *Controller) Item(id string) (CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return CartItem{}, false
	}
	return c.items[i].clone(), true
}

// Meta returns the server cart metadata from the last load.
func (c *Controller) Meta() CartMeta {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta
}

// CategoryName resolves a category id to its display name.
func (c *Controller) CategoryName(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name, ok := c.categories[id]
	return name, ok
}

// IsSelected reports whether the line is marked for checkout.
func (c *Controller) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IsSelected(id)
}

// AllSelected reports whether every line is selected.
func (c *Controller) AllSelected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.AllSelected()
}

// SelectedIDs returns selected line ids in cart order.
func (c *Controller) SelectedIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Selected()
}

// Selected returns the selected lines that can be checked out.
func (c *Controller) Selected() []CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectedLocked()
}

func (c *Controller) selectedLocked() []CartItem {
	out := make([]CartItem, 0, c.selection.Len())
	for _, it := range c.items {
		if c.selection.IsSelected(it.ID) && it.Checkoutable() {
			out = append(out, it.clone())
		}
	}
	return out
}

// Subtotal is the locally derived amount for the current selection.
func (c *Controller) Subtotal() decimal.Decimal {
	return Subtotal(c.Selected())
}

// ToggleItem flips the selection of one line.
func (c *Controller) ToggleItem(id string) error {
	c.mu.Lock()
	gate := c.gate
	if gate.Allowed() {
		c.selection.Toggle(id)
	}
	c.mu.Unlock()
	return c.deny(gate, "toggle item")
}

// ToggleAll selects everything, or clears the selection when everything is
// already selected.
func (c *Controller) ToggleAll() error {
	c.mu.Lock()
	gate := c.gate
	if gate.Allowed() {
		c.selection.ToggleAll()
	}
	c.mu.Unlock()
	return c.deny(gate, "toggle all")
}

// deny returns nil for an open gate. For a closed one it notifies the actor
// and returns ErrCapabilityDenied.
func (c *Controller) deny(gate Gate, op string) error {
	err := gate.check(op)
	if err == nil {
		return nil
	}
	c.logger.Info("cart action denied", "op", op, "role", string(gate.Actor().Role))
	c.notify(dialog(KindInfo, "Cart unavailable", gate.Message()))
	return err
}

func (c *Controller) notify(n Notification) {
	c.deps.Notifier.Notify(n)
}

// indexOf must be called with c.mu held.
func (c *Controller) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func lineIDs(items []CartItem) []string {
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	return ids
}
