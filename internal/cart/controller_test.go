package cart_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwcart/internal/cart"
	"github.com/roach88/hwcart/internal/notify"
	"github.com/roach88/hwcart/internal/testutil"
)

var (
	customer = cart.Actor{ID: "cust-1", Role: cart.RoleCustomer}
	admin    = cart.Actor{ID: "admin-1", Role: cart.RoleAdmin}
)

type line struct {
	id, product     string
	price, discount float64
	quantity, stock int
	category        string
}

func cartBody(t *testing.T, shape string, lines ...line) []byte {
	t.Helper()
	items := make([]any, 0, len(lines))
	for _, l := range lines {
		product := map[string]any{
			"id":                 l.product,
			"name":               "Product " + l.product,
			"price":              l.price,
			"stock":              l.stock,
			"discountPercentage": l.discount,
		}
		if l.category != "" {
			product["categoryId"] = l.category
		}
		items = append(items, map[string]any{
			"id":        l.id,
			"productId": l.product,
			"quantity":  l.quantity,
			"product":   product,
		})
	}
	body, err := testutil.Envelope(shape, map[string]any{
		"cart":  map[string]any{"id": "c-1"},
		"items": items,
	})
	require.NoError(t, err)
	return body
}

type harness struct {
	remote   *testutil.FakeRemote
	payloads *testutil.MemoryPayloads
	notes    *notify.Recorder
	nav      *navSpy
	ctrl     *cart.Controller
}

type navSpy struct{ keys []string }

func (n *navSpy) GoToCheckout(ctx context.Context, key string) { n.keys = append(n.keys, key) }

func newHarness(t *testing.T, actor cart.Actor, lines ...line) *harness {
	t.Helper()
	h := &harness{
		remote:   testutil.NewFakeRemote(cartBody(t, "flat", lines...)),
		payloads: testutil.NewMemoryPayloads(),
		notes:    &notify.Recorder{},
		nav:      &navSpy{},
	}
	h.ctrl = cart.NewController(actor, cart.Deps{
		Cart:      h.remote,
		Catalog:   h.remote,
		Payloads:  h.payloads,
		Notifier:  h.notes,
		Navigator: h.nav,
	})
	return h
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	require.NoError(t, h.ctrl.Load(context.Background()))
	h.remote.ResetCalls()
	h.notes.Reset()
}

var (
	lineA = line{id: "A", product: "p-a", price: 100, discount: 10, quantity: 2, stock: 5, category: "gpu"}
	lineB = line{id: "B", product: "p-b", price: 50, quantity: 3, stock: 4, category: "ram"}
	lineZ = line{id: "Z", product: "p-z", price: 80, quantity: 1, stock: 0, category: "psu"}
)

func TestLoad_SelectsAllAndSetsBadge(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	require.NoError(t, h.ctrl.Load(context.Background()))

	assert.Len(t, h.ctrl.Items(), 2)
	assert.True(t, h.ctrl.AllSelected())
	assert.Equal(t, []string{"A", "B"}, h.ctrl.SelectedIDs())
	assert.Equal(t, 2, h.ctrl.Badge().Count())
	assert.Equal(t, "c-1", h.ctrl.Meta().ID)
	assert.False(t, h.ctrl.Loading())
}

func TestLoad_NestedAndFlatProduceSameItems(t *testing.T) {
	flat := newHarness(t, customer, lineA, lineB)
	nested := newHarness(t, customer)
	nested.remote.SetCart(cartBody(t, "nested", lineA, lineB))

	flat.load(t)
	nested.load(t)

	a, err := json.Marshal(flat.ctrl.Items())
	require.NoError(t, err)
	b, err := json.Marshal(nested.ctrl.Items())
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestLoad_MalformedIsEmptyCart(t *testing.T) {
	h := newHarness(t, customer, lineA)
	h.load(t)
	h.remote.SetCart([]byte(`{"status":"error"}`))

	err := h.ctrl.Load(context.Background())
	assert.ErrorIs(t, err, cart.ErrMalformedResponse)
	assert.Empty(t, h.ctrl.Items())
	assert.Empty(t, h.ctrl.SelectedIDs())
	assert.Equal(t, 0, h.ctrl.Badge().Count())
	assert.Zero(t, h.notes.Len(), "malformed payload is not surfaced to the user")
}

func TestLoad_FetchFailureKeepsState(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)
	h.remote.FailOn(testutil.OpFetchCart, errors.New("timeout"))

	err := h.ctrl.Load(context.Background())
	assert.Equal(t, cart.CodeRemoteFetchFailed, cart.CodeOf(err))
	assert.Len(t, h.ctrl.Items(), 2)
	assert.Equal(t, []cart.Kind{cart.KindError}, h.notes.Kinds())
}

func TestLoad_ReselectsEverything(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)
	require.NoError(t, h.ctrl.ToggleItem("A"))
	assert.False(t, h.ctrl.IsSelected("A"))

	require.NoError(t, h.ctrl.Load(context.Background()))
	assert.True(t, h.ctrl.IsSelected("A"), "a refresh resets the selection to all lines")
}

func TestLoad_DeniedActorDoesNotFetch(t *testing.T) {
	h := newHarness(t, admin, lineA)
	require.NoError(t, h.ctrl.Load(context.Background()))

	assert.Empty(t, h.remote.Calls())
	assert.False(t, h.ctrl.Visible())
	assert.Equal(t, 0, h.ctrl.Badge().Count())
}

func TestSubtotal_DiscountedSelection(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)

	assert.True(t, h.ctrl.Subtotal().Equal(decimal.NewFromInt(330)), "got %s", h.ctrl.Subtotal())

	require.NoError(t, h.ctrl.ToggleItem("B"))
	assert.True(t, h.ctrl.Subtotal().Equal(decimal.NewFromInt(180)))
}

func TestSubtotal_ExcludesOutOfStock(t *testing.T) {
	h := newHarness(t, customer, lineB, lineZ)
	h.load(t)

	assert.True(t, h.ctrl.IsSelected("Z"))
	assert.True(t, h.ctrl.Subtotal().Equal(decimal.NewFromInt(150)))
}

func TestUpdateQuantity_RecomputesTotal(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)

	require.NoError(t, h.ctrl.UpdateQuantity(context.Background(), "A", 4))

	item, ok := h.ctrl.Item("A")
	require.True(t, ok)
	assert.Equal(t, 4, item.Quantity)
	assert.True(t, item.TotalPrice.Equal(item.DiscountedUnitPrice().Mul(decimal.NewFromInt(4))))
	assert.True(t, item.TotalPrice.Equal(decimal.NewFromInt(360)))
	assert.Equal(t, []testutil.Call{{Seq: 1, Op: testutil.OpUpdateItem, ItemID: "A", Quantity: 4}}, h.remote.Calls())
	assert.True(t, h.ctrl.Subtotal().Equal(decimal.NewFromInt(510)))
}

func TestUpdateQuantity_RejectedLocally(t *testing.T) {
	h := newHarness(t, customer, lineA, lineZ)
	h.load(t)

	tests := []struct {
		name string
		id   string
		qty  int
	}{
		{"zero", "A", 0},
		{"negative", "A", -1},
		{"above stock", "A", 6},
		{"zero stock line", "Z", 1},
		{"zero stock line large", "Z", 10},
		{"unknown line", "nope", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.ctrl.UpdateQuantity(context.Background(), tt.id, tt.qty)
			assert.ErrorIs(t, err, cart.ErrValidationRejected)
		})
	}

	assert.Empty(t, h.remote.Calls(), "no network call for rejected quantities")
	assert.Zero(t, h.notes.Len(), "rejections are silent")
	item, _ := h.ctrl.Item("A")
	assert.Equal(t, 2, item.Quantity)
}

func TestUpdateQuantity_RemoteFailureKeepsQuantity(t *testing.T) {
	h := newHarness(t, customer, lineA)
	h.load(t)
	h.remote.FailOnKey(testutil.OpUpdateItem, "A", errors.New("500"))

	err := h.ctrl.UpdateQuantity(context.Background(), "A", 3)
	assert.ErrorIs(t, err, cart.ErrRemoteMutationFailed)

	item, _ := h.ctrl.Item("A")
	assert.Equal(t, 2, item.Quantity)
	assert.Equal(t, []cart.Kind{cart.KindError}, h.notes.Kinds())
}

func TestRemoveItem_DropsLineAndSelection(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)

	require.NoError(t, h.ctrl.RemoveItem(context.Background(), "A"))

	_, ok := h.ctrl.Item("A")
	assert.False(t, ok)
	assert.Equal(t, []string{"B"}, h.ctrl.SelectedIDs())
	assert.True(t, h.ctrl.AllSelected())
	assert.Equal(t, 1, h.ctrl.Badge().Count())
}

func TestRemoveItem_Idempotent(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)

	require.NoError(t, h.ctrl.RemoveItem(context.Background(), "A"))
	itemsOnce := h.ctrl.Items()
	selectedOnce := h.ctrl.SelectedIDs()

	require.NoError(t, h.ctrl.RemoveItem(context.Background(), "A"))
	assert.Equal(t, itemsOnce, h.ctrl.Items())
	assert.Equal(t, selectedOnce, h.ctrl.SelectedIDs())
	assert.Equal(t, 1, h.remote.CallsTo(testutil.OpRemoveItem), "second remove makes no call")
}

func TestRemoveItem_RemoteFailureKeepsLine(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)
	h.remote.FailOn(testutil.OpRemoveItem, errors.New("503"))

	err := h.ctrl.RemoveItem(context.Background(), "A")
	assert.ErrorIs(t, err, cart.ErrRemoteMutationFailed)
	assert.Len(t, h.ctrl.Items(), 2)
	assert.True(t, h.ctrl.IsSelected("A"))
	assert.Equal(t, 2, h.ctrl.Badge().Count())
}

func TestAddItem_RecountsBadge(t *testing.T) {
	h := newHarness(t, customer, lineA)
	h.load(t)
	h.remote.SetCart(cartBody(t, "flat", lineA, lineB))

	require.NoError(t, h.ctrl.AddItem(context.Background(), "p-b", 1))

	assert.Equal(t, 2, h.ctrl.Badge().Count())
	assert.Len(t, h.ctrl.Items(), 1, "no optimistic insert")
	assert.Equal(t, 1, h.remote.CallsTo(testutil.OpAddItem))
	assert.Equal(t, []cart.Kind{cart.KindSuccess}, h.notes.Kinds())
}

func TestAddItem_Failure(t *testing.T) {
	h := newHarness(t, customer, lineA)
	h.load(t)
	h.remote.FailOn(testutil.OpAddItem, errors.New("out of stock"))

	err := h.ctrl.AddItem(context.Background(), "p-b", 1)
	assert.ErrorIs(t, err, cart.ErrRemoteMutationFailed)
	assert.Len(t, h.ctrl.Items(), 1)
	assert.Equal(t, 1, h.ctrl.Badge().Count())
	assert.Equal(t, []cart.Kind{cart.KindError}, h.notes.Kinds())
	assert.Equal(t, 0, h.remote.CallsTo(testutil.OpFetchCart))
}

func TestAddItem_RejectsNonPositiveQuantity(t *testing.T) {
	h := newHarness(t, customer)
	err := h.ctrl.AddItem(context.Background(), "p-b", 0)
	assert.ErrorIs(t, err, cart.ErrValidationRejected)
	assert.Empty(t, h.remote.Calls())
}

func TestDeniedMutationsChangeNothing(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)
	require.NoError(t, h.ctrl.SetActor(context.Background(), admin))
	h.remote.ResetCalls()

	items := h.ctrl.Items()
	selected := h.ctrl.SelectedIDs()
	ctx := context.Background()

	errs := []error{
		h.ctrl.AddItem(ctx, "p-c", 1),
		h.ctrl.UpdateQuantity(ctx, "A", 3),
		h.ctrl.RemoveItem(ctx, "A"),
		h.ctrl.ToggleItem("A"),
		h.ctrl.ToggleAll(),
	}
	_, proceedErr := h.ctrl.Proceed(ctx)
	errs = append(errs, proceedErr)

	for i, err := range errs {
		assert.ErrorIs(t, err, cart.ErrCapabilityDenied, "operation %d", i)
	}
	assert.Empty(t, h.remote.Calls(), "remote must not be invoked")
	assert.Equal(t, items, h.ctrl.Items())
	assert.Equal(t, selected, h.ctrl.SelectedIDs())
	assert.Zero(t, h.payloads.Writes())

	for _, k := range h.notes.Kinds() {
		assert.Equal(t, cart.KindInfo, k)
	}
	assert.Equal(t, len(errs), h.notes.Len())
}

func TestSetActor(t *testing.T) {
	h := newHarness(t, cart.Actor{}, lineA)
	assert.False(t, h.ctrl.Visible())

	require.NoError(t, h.ctrl.SetActor(context.Background(), customer))
	assert.True(t, h.ctrl.Visible())
	assert.Len(t, h.ctrl.Items(), 1, "login loads the cart")
	assert.Equal(t, 1, h.ctrl.Badge().Count())

	require.NoError(t, h.ctrl.SetActor(context.Background(), admin))
	assert.False(t, h.ctrl.Visible())
	assert.Equal(t, 0, h.ctrl.Badge().Count())
	assert.Len(t, h.ctrl.Items(), 1, "suppressed, not cleared")
}

func TestToggleAll_TwiceRestoresUniformSelection(t *testing.T) {
	h := newHarness(t, customer, lineA, lineB)
	h.load(t)
	before := h.ctrl.SelectedIDs()

	require.NoError(t, h.ctrl.ToggleAll())
	assert.Empty(t, h.ctrl.SelectedIDs())
	require.NoError(t, h.ctrl.ToggleAll())
	assert.Equal(t, before, h.ctrl.SelectedIDs())
}
