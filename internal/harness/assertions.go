package harness

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/hwcart/internal/cart"
	"github.com/roach88/hwcart/internal/notify"
	"github.com/roach88/hwcart/internal/testutil"
)

// AssertionContext is the final state assertions are evaluated against.
type AssertionContext struct {
	Ctrl    *cart.Controller
	Remote  *testutil.FakeRemote
	Notes   *notify.Recorder
	Payload []PayloadLine
}

// EvaluateAssertions checks every assertion and returns one message per
// failure. An empty result means all assertions passed.
func EvaluateAssertions(assertions []Assertion, ctx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluateAssertion(a, ctx); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return failures
}

func evaluateAssertion(a Assertion, ctx *AssertionContext) error {
	switch a.Type {
	case AssertRemoteCount:
		return assertRemoteCount(a, ctx)
	case AssertSelected:
		return assertStrings("selected", nonNil(a.Items), nonNil(ctx.Ctrl.SelectedIDs()))
	case AssertSubtotal:
		return assertSubtotal(a, ctx)
	case AssertBadge:
		if got := ctx.Ctrl.Badge().Count(); got != *a.Count {
			return fmt.Errorf("badge is %d, expected %d", got, *a.Count)
		}
		return nil
	case AssertItem:
		return assertItem(a, ctx)
	case AssertNotifications:
		kinds := []string{}
		for _, k := range ctx.Notes.Kinds() {
			kinds = append(kinds, string(k))
		}
		return assertStrings("notification kinds", nonNil(a.Kinds), kinds)
	case AssertPayload:
		return assertPayload(a, ctx)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertRemoteCount(a Assertion, ctx *AssertionContext) error {
	if got := ctx.Remote.CallsTo(a.Op); got != *a.Count {
		return fmt.Errorf("%s called %d times, expected %d", a.Op, got, *a.Count)
	}
	return nil
}

func assertSubtotal(a Assertion, ctx *AssertionContext) error {
	want, err := decimal.NewFromString(a.Value)
	if err != nil {
		return err
	}
	if got := ctx.Ctrl.Subtotal(); !got.Equal(want) {
		return fmt.Errorf("subtotal is %s, expected %s", got, want)
	}
	return nil
}

func assertItem(a Assertion, ctx *AssertionContext) error {
	item, ok := ctx.Ctrl.Item(a.Item)
	if a.Present != nil && *a.Present != ok {
		if ok {
			return fmt.Errorf("item %s is present, expected absent", a.Item)
		}
		return fmt.Errorf("item %s is absent, expected present", a.Item)
	}
	if !ok {
		if a.Present != nil {
			return nil
		}
		return fmt.Errorf("item %s not in cart", a.Item)
	}

	if a.Quantity != nil && item.Quantity != *a.Quantity {
		return fmt.Errorf("item %s quantity is %d, expected %d", a.Item, item.Quantity, *a.Quantity)
	}
	if a.Category != nil && item.CategoryID != *a.Category {
		return fmt.Errorf("item %s category is %q, expected %q", a.Item, item.CategoryID, *a.Category)
	}
	if a.Total != "" {
		want, err := decimal.NewFromString(a.Total)
		if err != nil {
			return fmt.Errorf("total: %w", err)
		}
		if !item.TotalPrice.Equal(want) {
			return fmt.Errorf("item %s total is %s, expected %s", a.Item, item.TotalPrice, want)
		}
	}
	return nil
}

func assertPayload(a Assertion, ctx *AssertionContext) error {
	written := ctx.Payload != nil
	if a.Written != nil && *a.Written != written {
		return fmt.Errorf("payload written is %t, expected %t", written, *a.Written)
	}
	if a.Items == nil {
		return nil
	}
	ids := []string{}
	for _, line := range ctx.Payload {
		ids = append(ids, line.ID)
	}
	return assertStrings("payload items", a.Items, ids)
}

func assertStrings(what string, want, got []string) error {
	if !slices.Equal(want, got) {
		return fmt.Errorf("%s are %v, expected %v", what, got, want)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
