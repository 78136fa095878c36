package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/hwcart/internal/cart"
	"github.com/roach88/hwcart/internal/notify"
	"github.com/roach88/hwcart/internal/store"
	"github.com/roach88/hwcart/internal/testutil"
)

// errInjected is returned by remote operations listed under failures.
var errInjected = errors.New("injected failure")

// harnessEpoch is the fixed clock used for payload writes.
var harnessEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// Harness holds the collaborators of one scenario run.
type Harness struct {
	remote *testutil.FakeRemote
	store  *store.Store
	notes  *notify.Recorder
	nav    *recordingNavigator
	ctrl   *cart.Controller
	key    string
	logger *slog.Logger
}

type recordingNavigator struct {
	last string
}

func (n *recordingNavigator) GoToCheckout(ctx context.Context, payloadKey string) {
	n.last = payloadKey
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh fake remote and a fresh in-memory
// SQLite payload store. Step outcomes that differ from the step's expect and
// failed assertions are reported in Result.Errors, not as an error.
func Run(scenario *Scenario) (*Result, error) {
	body, err := scenario.Cart.body()
	if err != nil {
		return nil, fmt.Errorf("failed to build cart fixture: %w", err)
	}

	remote := testutil.NewFakeRemote(body)
	for _, p := range scenario.Products {
		detail, err := p.detail()
		if err != nil {
			return nil, err
		}
		remote.AddProduct(detail)
	}
	cats := make([]cart.Category, 0, len(scenario.Categories))
	for _, c := range scenario.Categories {
		cats = append(cats, cart.Category{ID: c.ID, Name: c.Name})
	}
	remote.SetCategories(cats...)
	for _, f := range scenario.Failures {
		if f.Key != "" {
			remote.FailOnKey(f.Op, f.Key, errInjected)
		} else {
			remote.FailOn(f.Op, errInjected)
		}
	}

	writes := 0
	st, err := store.Open(":memory:",
		store.WithClock(func() time.Time { return harnessEpoch }),
		store.WithWriteIDs(func() string {
			writes++
			return fmt.Sprintf("write-%d", writes)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &Harness{
		remote: remote,
		store:  st,
		notes:  &notify.Recorder{},
		nav:    &recordingNavigator{},
		key:    cart.DefaultCheckoutKey,
		logger: logger,
	}
	h.ctrl = cart.NewController(scenario.Actor.actor(), cart.Deps{
		Cart:      remote,
		Catalog:   remote,
		Payloads:  st,
		Notifier:  h.notes,
		Navigator: h.nav,
	}, cart.WithLogger(logger))

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		event, err := h.executeStep(ctx, i+1, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Do, err)
		}
		result.Trace = append(result.Trace, event)
		if event.Outcome != expectedOutcome(step) {
			result.AddError(fmt.Sprintf("step %d (%s): outcome %s, expected %s", i+1, step.Do, event.Outcome, expectedOutcome(step)))
		}
	}

	payload, err := h.payload(ctx)
	if err != nil {
		return nil, err
	}
	result.Payload = payload

	actx := &AssertionContext{
		Ctrl:    h.ctrl,
		Remote:  remote,
		Notes:   h.notes,
		Payload: payload,
	}
	for _, msg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

func expectedOutcome(s Step) string {
	if s.Expect == "" {
		return "ok"
	}
	return s.Expect
}

// executeStep runs one step and captures what it did.
func (h *Harness) executeStep(ctx context.Context, seq int, step Step) (TraceEvent, error) {
	callsBefore := len(h.remote.Calls())
	notesBefore := h.notes.Len()
	h.nav.last = ""

	event := TraceEvent{Seq: seq, Step: step.Do}
	var err error

	switch step.Do {
	case StepLoad:
		err = h.ctrl.Load(ctx)
	case StepBackfill:
		err = h.ctrl.Backfill(ctx)
	case StepToggleItem:
		event.Args = step.Item
		err = h.ctrl.ToggleItem(step.Item)
	case StepToggleAll:
		err = h.ctrl.ToggleAll()
	case StepAddItem:
		event.Args = fmt.Sprintf("%s qty=%d", step.Product, step.Quantity)
		err = h.ctrl.AddItem(ctx, step.Product, step.Quantity)
	case StepUpdateQuantity:
		event.Args = fmt.Sprintf("%s qty=%d", step.Item, step.Quantity)
		err = h.ctrl.UpdateQuantity(ctx, step.Item, step.Quantity)
	case StepRemoveItem:
		event.Args = step.Item
		err = h.ctrl.RemoveItem(ctx, step.Item)
	case StepProceed:
		_, err = h.ctrl.Proceed(ctx)
	case StepSetActor:
		event.Args = fmt.Sprintf("%s/%s", step.Actor.ID, step.Actor.Role)
		err = h.ctrl.SetActor(ctx, step.Actor.actor())
	case StepSetCart:
		body, bodyErr := step.Cart.body()
		if bodyErr != nil {
			return TraceEvent{}, bodyErr
		}
		h.remote.SetCart(body)
	default:
		return TraceEvent{}, fmt.Errorf("unknown step %q", step.Do)
	}

	event.Outcome = outcome(err)
	for _, c := range h.remote.Calls()[callsBefore:] {
		event.Remote = append(event.Remote, describeCall(c))
	}
	for _, n := range h.notes.All()[notesBefore:] {
		event.Notifications = append(event.Notifications, fmt.Sprintf("%s: %s", n.Kind, n.Title))
	}
	event.Navigate = h.nav.last

	for _, it := range h.ctrl.Items() {
		event.Items = append(event.Items, describeItem(it))
	}
	event.Selected = h.ctrl.SelectedIDs()
	event.Subtotal = h.ctrl.Subtotal().String()
	event.Badge = h.ctrl.Badge().Count()

	h.logger.Debug("step completed", "seq", seq, "step", step.Do, "outcome", event.Outcome)
	return event, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if code := cart.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}

func describeCall(c testutil.Call) string {
	out := c.Op
	switch {
	case c.ItemID != "":
		out += " " + c.ItemID
	case c.ProductID != "":
		out += " " + c.ProductID
	}
	if c.Quantity != 0 {
		out += fmt.Sprintf(" qty=%d", c.Quantity)
	}
	return out
}

func describeItem(it cart.CartItem) string {
	out := fmt.Sprintf("%s x%d", it.ID, it.Quantity)
	if it.CategoryID != "" {
		out += " [" + it.CategoryID + "]"
	}
	switch {
	case it.Stock == 0:
		out += " out-of-stock"
	case !it.Checkoutable():
		out += " not-checkoutable"
	}
	return out
}

// payload reads back the checkout payload, or nil when none was written.
func (h *Harness) payload(ctx context.Context) ([]PayloadLine, error) {
	p, err := h.store.Get(ctx, h.key)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines := []PayloadLine{}
	if err := json.Unmarshal(p.Value, &lines); err != nil {
		return nil, fmt.Errorf("decode checkout payload: %w", err)
	}
	return lines, nil
}
