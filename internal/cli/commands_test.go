package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hwcart/internal/cart"
	"github.com/roach88/hwcart/internal/testutil"
)

// newShop serves two lines: ci-1 (p-1, 100 at 10% off, qty 2, stock 5)
// and ci-2 (p-2, 50, qty 3, stock 4). Selected subtotal is 330.
func newShop(t *testing.T) *testutil.Shop {
	t.Helper()
	shop := testutil.NewShop("nested")
	shop.AddProduct(testutil.ShopProduct{ID: "p-1", Name: "RTX 4070", CategoryID: "gpu", Price: 100, Discount: 10, Stock: 5})
	shop.AddProduct(testutil.ShopProduct{ID: "p-2", Name: "DDR5 32GB", CategoryID: "ram", Price: 50, Stock: 4})
	shop.SetCategories(
		cart.Category{ID: "gpu", Name: "Graphics Cards"},
		cart.Category{ID: "ram", Name: "Memory"},
	)
	shop.Seed("p-1", 2)
	shop.Seed("p-2", 3)

	srv := httptest.NewServer(shop)
	t.Cleanup(srv.Close)

	t.Setenv("HWCART_API_BASE_URL", srv.URL+testutil.ShopPrefix)
	t.Setenv("HWCART_STORE_PATH", filepath.Join(t.TempDir(), "hwcart.db"))
	t.Setenv("HWCART_ACTOR_ID", "cust-1")
	t.Setenv("HWCART_ACTOR_ROLE", "customer")
	t.Setenv("HWCART_LOG_LEVEL", "error")
	t.Setenv("HWCART_CURRENCY_LOCALE", "en")
	return shop
}

type result struct {
	stdout string
	stderr string
	err    error
}

func runCLI(t *testing.T, args ...string) result {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}

func decodeData[T any](t *testing.T, stdout string) T {
	t.Helper()
	var resp struct {
		Status string `json:"status"`
		Data   T      `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func decodeError(t *testing.T, stdout string) CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	return *resp.Error
}

func TestShow_JSON(t *testing.T) {
	newShop(t)

	r := runCLI(t, "show", "--format", "json")
	require.NoError(t, r.err)

	v := decodeData[cartView](t, r.stdout)
	assert.True(t, v.Visible)
	assert.Equal(t, "cart-1", v.CartID)
	assert.Equal(t, 2, v.Count)
	assert.True(t, v.AllSelected)
	assert.Equal(t, "Rp 330", v.Subtotal)
	assert.Equal(t, "Rp 330", v.ServerTotal)

	require.Len(t, v.Items, 2)
	gpu := v.Items[0]
	assert.Equal(t, "ci-1", gpu.ID)
	assert.Equal(t, "RTX 4070", gpu.Name)
	assert.Equal(t, "gpu", gpu.CategoryID)
	assert.Equal(t, "Graphics Cards", gpu.Category)
	assert.Equal(t, "Rp 100", gpu.UnitPrice)
	assert.Equal(t, "Rp 90", gpu.DiscountedPrice)
	assert.Equal(t, "Rp 180", gpu.LineSubtotal)
	assert.True(t, gpu.Selected)
	assert.Equal(t, "Memory", v.Items[1].Category)
}

func TestShow_Text(t *testing.T) {
	newShop(t)

	r := runCLI(t, "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "RTX 4070")
	assert.Contains(t, r.stdout, "Graphics Cards")
	assert.Contains(t, r.stdout, "[x]")
	assert.Contains(t, r.stdout, "2 line(s). Selected subtotal: Rp 330")
}

func TestShow_BackfillOncePerLoad(t *testing.T) {
	shop := newShop(t)

	r := runCLI(t, "show", "--format", "json")
	require.NoError(t, r.err)

	assert.Equal(t, 1, shop.Count("GET cart"))
	assert.Equal(t, 1, shop.Count("GET products/p-1"))
	assert.Equal(t, 1, shop.Count("GET products/p-2"))
	assert.Equal(t, 1, shop.Count("GET categories"))
}

func TestShow_DeniedActor(t *testing.T) {
	shop := newShop(t)
	t.Setenv("HWCART_ACTOR_ROLE", "admin")

	r := runCLI(t, "show")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Cart unavailable: Administrator accounts manage the store")
	assert.Zero(t, shop.Count("GET cart"), "a denied actor never fetches the cart")
}

func TestShow_FetchFailure(t *testing.T) {
	shop := newShop(t)
	shop.FailWith("GET cart", http.StatusBadGateway)

	r := runCLI(t, "show", "--format", "json")
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Equal(t, string(cart.CodeRemoteFetchFailed), decodeError(t, r.stdout).Code)
	assert.Contains(t, r.stderr, "[error] Could not load cart")
}

func TestCount(t *testing.T) {
	newShop(t)

	r := runCLI(t, "count")
	require.NoError(t, r.err)
	assert.Equal(t, "2\n", r.stdout)
}

func TestAdd(t *testing.T) {
	shop := newShop(t)

	r := runCLI(t, "add", "p-2", "--qty", "1")
	require.NoError(t, r.err)
	assert.Equal(t, "Added 1 x p-2. Cart now has 2 line(s).\n", r.stdout)
	assert.Contains(t, r.stderr, "[success] Added to cart")

	lines := shop.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, 4, lines[1].Quantity)
}

func TestAdd_DeniedSeller(t *testing.T) {
	shop := newShop(t)
	t.Setenv("HWCART_ACTOR_ROLE", "seller")

	r := runCLI(t, "add", "p-1", "--format", "json")
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))

	e := decodeError(t, r.stdout)
	assert.Equal(t, string(cart.CodeCapabilityDenied), e.Code)
	assert.Contains(t, e.Message, "Seller accounts cannot buy products")
	assert.Contains(t, r.stderr, "[info] Cart unavailable")
	assert.Zero(t, shop.Count("POST cart/items"))
}

func TestAdd_ServerRejects(t *testing.T) {
	newShop(t)

	r := runCLI(t, "add", "p-1", "--qty", "50", "--format", "json")
	require.Error(t, r.err)
	assert.Equal(t, string(cart.CodeRemoteMutationFailed), decodeError(t, r.stdout).Code)
	assert.Contains(t, r.stderr, "[error] Could not add to cart")
}

func TestSetQty(t *testing.T) {
	shop := newShop(t)

	r := runCLI(t, "set-qty", "ci-1", "4")
	require.NoError(t, r.err)
	assert.Equal(t, "Set ci-1 to 4. Line subtotal: Rp 360\n", r.stdout)
	assert.Equal(t, 4, shop.Lines()[0].Quantity)
}

func TestSetQty_OutOfRangeNeverCallsServer(t *testing.T) {
	shop := newShop(t)

	for _, qty := range []string{"0", "6"} {
		r := runCLI(t, "set-qty", "ci-1", qty, "--format", "json")
		require.Error(t, r.err)
		assert.Equal(t, ExitFailure, GetExitCode(r.err))
		assert.Equal(t, string(cart.CodeValidationRejected), decodeError(t, r.stdout).Code)
		assert.Empty(t, r.stderr, "rejections are silent")
	}
	assert.Zero(t, shop.Count("PUT cart/items/ci-1"))
	assert.Equal(t, 2, shop.Lines()[0].Quantity)
}

func TestSetQty_NotANumber(t *testing.T) {
	newShop(t)

	r := runCLI(t, "set-qty", "ci-1", "many")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "Error [USAGE]")
}

func TestRemove(t *testing.T) {
	shop := newShop(t)

	r := runCLI(t, "remove", "ci-2")
	require.NoError(t, r.err)
	assert.Equal(t, "Removed ci-2. Cart now has 1 line(s).\n", r.stdout)
	assert.Contains(t, r.stderr, "[success] Removed from cart")
	assert.Len(t, shop.Lines(), 1)
}

func TestRemove_UnknownIsNoop(t *testing.T) {
	shop := newShop(t)

	r := runCLI(t, "remove", "ci-99")
	require.NoError(t, r.err)
	assert.Zero(t, shop.Count("DELETE cart/items/ci-99"))
	assert.Len(t, shop.Lines(), 2)
}

func TestRemove_RemoteFailureKeepsLine(t *testing.T) {
	shop := newShop(t)
	shop.FailWith("DELETE cart/items/ci-2", http.StatusInternalServerError)

	r := runCLI(t, "remove", "ci-2", "--format", "json")
	require.Error(t, r.err)
	assert.Equal(t, string(cart.CodeRemoteMutationFailed), decodeError(t, r.stdout).Code)
	assert.Contains(t, r.stderr, "[error] Could not remove item")
	assert.Len(t, shop.Lines(), 2)
}

func TestCheckout_ThenPayload(t *testing.T) {
	newShop(t)

	r := runCLI(t, "checkout", "--only", "ci-1", "--format", "json")
	require.NoError(t, r.err)
	h := decodeData[handoffView](t, r.stdout)
	assert.Equal(t, cart.DefaultCheckoutKey, h.Key)
	require.Len(t, h.Lines, 1)
	assert.Equal(t, "ci-1", h.Lines[0].ID)
	assert.Equal(t, "Rp 180", h.Subtotal)

	r = runCLI(t, "payload", "--format", "json")
	require.NoError(t, r.err)
	p := decodeData[payloadView](t, r.stdout)
	assert.Equal(t, cart.DefaultCheckoutKey, p.Key)
	assert.Equal(t, int64(1), p.Revision)

	var lines []map[string]any
	require.NoError(t, json.Unmarshal(p.Value, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "ci-1", lines[0]["id"])
	assert.Equal(t, "90", lines[0]["discountedPrice"])
	assert.Equal(t, "180", lines[0]["lineSubtotal"])
}

func TestCheckout_OverwritesPreviousPayload(t *testing.T) {
	newShop(t)

	require.NoError(t, runCLI(t, "checkout", "--only", "ci-1").err)
	r := runCLI(t, "checkout")
	require.NoError(t, r.err)
	assert.Contains(t, r.stdout, "Checkout ready: 2 line(s), subtotal Rp 330")

	p := decodeData[payloadView](t, runCLI(t, "payload", "--format", "json").stdout)
	assert.Equal(t, int64(2), p.Revision)

	var lines []map[string]any
	require.NoError(t, json.Unmarshal(p.Value, &lines))
	assert.Len(t, lines, 2)
}

func TestCheckout_UnknownLine(t *testing.T) {
	newShop(t)

	r := runCLI(t, "checkout", "--only", "ci-42")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))

	r = runCLI(t, "payload")
	require.Error(t, r.err)
	assert.Equal(t, ExitFailure, GetExitCode(r.err))
	assert.Contains(t, r.stdout, "Error [NOT_FOUND]")
}

func TestCheckout_EmptyCart(t *testing.T) {
	shop := newShop(t)
	require.NoError(t, runCLI(t, "remove", "ci-1").err)
	require.NoError(t, runCLI(t, "remove", "ci-2").err)
	require.Empty(t, shop.Lines())

	r := runCLI(t, "checkout", "--format", "json")
	require.Error(t, r.err)
	assert.Equal(t, string(cart.CodeEmptySelection), decodeError(t, r.stdout).Code)
	assert.Contains(t, r.stderr, "[warning] Nothing selected")
}

func TestPayload_Clear(t *testing.T) {
	newShop(t)
	require.NoError(t, runCLI(t, "checkout").err)

	r := runCLI(t, "payload", "--clear")
	require.NoError(t, r.err)
	assert.Equal(t, "Cleared \"checkout.selected_items\".\n", r.stdout)

	r = runCLI(t, "payload", "--clear")
	require.NoError(t, r.err)
	assert.Equal(t, "Nothing stored under \"checkout.selected_items\".\n", r.stdout)
}

func TestInvalidFormat(t *testing.T) {
	newShop(t)

	r := runCLI(t, "show", "--format", "xml")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Contains(t, r.stderr, `Error: invalid format "xml"`)
}

func TestConfigError(t *testing.T) {
	newShop(t)
	t.Setenv("HWCART_CURRENCY_CODE", "rupiah")

	r := runCLI(t, "count", "--format", "json")
	require.Error(t, r.err)
	assert.Equal(t, ExitCommandError, GetExitCode(r.err))
	assert.Equal(t, "CONFIG", decodeError(t, r.stdout).Code)
}
