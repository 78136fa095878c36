package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/roach88/hwcart/internal/cart"
	"github.com/roach88/hwcart/internal/testutil"
)

// Scenario defines one cart scenario: fixtures, steps and final assertions.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	Actor      ActorFixture      `yaml:"actor"`
	Cart       CartFixture       `yaml:"cart"`
	Products   []ProductFixture  `yaml:"products,omitempty"`
	Categories []CategoryFixture `yaml:"categories,omitempty"`
	Failures   []FailureFixture  `yaml:"failures,omitempty"`

	Steps      []Step      `yaml:"steps"`
	Assertions []Assertion `yaml:"assertions"`
}

type ActorFixture struct {
	ID   string `yaml:"id"`
	Role string `yaml:"role"`
}

func (a ActorFixture) actor() cart.Actor {
	return cart.Actor{ID: a.ID, Role: cart.ParseRole(a.Role)}
}

// CartFixture is the server-side cart. Raw, when set, is served verbatim.
type CartFixture struct {
	Shape string        `yaml:"shape"`
	Raw   string        `yaml:"raw,omitempty"`
	Lines []LineFixture `yaml:"lines,omitempty"`
}

type LineFixture struct {
	ID       string `yaml:"id"`
	Product  string `yaml:"product"`
	Name     string `yaml:"name,omitempty"`
	Price    string `yaml:"price,omitempty"`
	Discount string `yaml:"discount,omitempty"`
	Quantity int    `yaml:"quantity"`
	Stock    int    `yaml:"stock"`
	Category string `yaml:"category,omitempty"`
}

// body renders the fixture as a GET cart response.
func (c CartFixture) body() ([]byte, error) {
	if c.Raw != "" {
		return []byte(c.Raw), nil
	}

	items := make([]any, 0, len(c.Lines))
	for _, l := range c.Lines {
		product := map[string]any{
			"id":    l.Product,
			"stock": l.Stock,
		}
		if l.Name != "" {
			product["name"] = l.Name
		}
		if l.Price != "" {
			product["price"] = json.Number(l.Price)
		}
		if l.Discount != "" {
			product["discountPercentage"] = json.Number(l.Discount)
		}
		if l.Category != "" {
			product["categoryId"] = l.Category
		}
		items = append(items, map[string]any{
			"id":        l.ID,
			"productId": l.Product,
			"quantity":  l.Quantity,
			"product":   product,
		})
	}

	return testutil.Envelope(c.Shape, map[string]any{
		"cart":  map[string]any{"id": "cart-1"},
		"items": items,
	})
}

type ProductFixture struct {
	ID       string `yaml:"id"`
	Category string `yaml:"category"`
	Discount string `yaml:"discount,omitempty"`
}

func (p ProductFixture) detail() (cart.ProductDetail, error) {
	d := cart.ProductDetail{ID: p.ID, CategoryID: p.Category}
	if p.Discount != "" {
		pct, err := decimal.NewFromString(p.Discount)
		if err != nil {
			return cart.ProductDetail{}, fmt.Errorf("product %s: discount: %w", p.ID, err)
		}
		d.DiscountPercentage = pct
	}
	return d, nil
}

type CategoryFixture struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// FailureFixture makes a remote operation fail, for every key or one item
// or product id.
type FailureFixture struct {
	Op  string `yaml:"op"`
	Key string `yaml:"key,omitempty"`
}

// Step is one controller operation.
type Step struct {
	Do       string        `yaml:"do"`
	Item     string        `yaml:"item,omitempty"`
	Product  string        `yaml:"product,omitempty"`
	Quantity int           `yaml:"quantity,omitempty"`
	Actor    *ActorFixture `yaml:"actor,omitempty"`
	Cart     *CartFixture  `yaml:"cart,omitempty"`

	// Expect is the expected error code; empty means the step succeeds.
	Expect string `yaml:"expect,omitempty"`
}

// Step type constants.
const (
	StepLoad           = "load"
	StepBackfill       = "backfill"
	StepToggleItem     = "toggle_item"
	StepToggleAll      = "toggle_all"
	StepAddItem        = "add_item"
	StepUpdateQuantity = "update_quantity"
	StepRemoveItem     = "remove_item"
	StepProceed        = "proceed"
	StepSetActor       = "set_actor"
	StepSetCart        = "set_cart"
)

// Assertion validates final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	Op       string   `yaml:"op,omitempty"`       // remote_count
	Count    *int     `yaml:"count,omitempty"`    // remote_count, badge
	Items    []string `yaml:"items,omitempty"`    // selected, payload
	Value    string   `yaml:"value,omitempty"`    // subtotal
	Item     string   `yaml:"item,omitempty"`     // item
	Quantity *int     `yaml:"quantity,omitempty"` // item
	Category *string  `yaml:"category,omitempty"` // item
	Total    string   `yaml:"total,omitempty"`    // item
	Present  *bool    `yaml:"present,omitempty"`  // item
	Kinds    []string `yaml:"kinds,omitempty"`    // notifications
	Written  *bool    `yaml:"written,omitempty"`  // payload
}

// Assertion type constants.
const (
	AssertRemoteCount   = "remote_count"
	AssertSelected      = "selected"
	AssertSubtotal      = "subtotal"
	AssertBadge         = "badge"
	AssertItem          = "item"
	AssertNotifications = "notifications"
	AssertPayload       = "payload"
)

var remoteOps = map[string]bool{
	testutil.OpFetchCart:  true,
	testutil.OpAddItem:    true,
	testutil.OpUpdateItem: true,
	testutil.OpRemoveItem: true,
	testutil.OpProduct:    true,
	testutil.OpCategories: true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if err := validateShape(s.Cart); err != nil {
		return fmt.Errorf("cart: %w", err)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, f := range s.Failures {
		if !remoteOps[f.Op] {
			return fmt.Errorf("failures[%d]: unknown op %q", i, f.Op)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateShape(c CartFixture) error {
	if c.Raw != "" {
		return nil
	}
	switch c.Shape {
	case "nested", "flat", "bare":
		return nil
	default:
		return fmt.Errorf("shape must be nested, flat or bare (got %q)", c.Shape)
	}
}

// validateStep validates a single step based on its type.
func validateStep(index int, s Step) error {
	switch s.Do {
	case StepLoad, StepBackfill, StepToggleAll, StepProceed:
	case StepToggleItem, StepRemoveItem:
		if s.Item == "" {
			return fmt.Errorf("steps[%d]: item is required for %s", index, s.Do)
		}
	case StepUpdateQuantity:
		if s.Item == "" {
			return fmt.Errorf("steps[%d]: item is required for %s", index, s.Do)
		}
	case StepAddItem:
		if s.Product == "" {
			return fmt.Errorf("steps[%d]: product is required for %s", index, s.Do)
		}
	case StepSetActor:
		if s.Actor == nil {
			return fmt.Errorf("steps[%d]: actor is required for %s", index, s.Do)
		}
	case StepSetCart:
		if s.Cart == nil {
			return fmt.Errorf("steps[%d]: cart is required for %s", index, s.Do)
		}
		if err := validateShape(*s.Cart); err != nil {
			return fmt.Errorf("steps[%d]: cart: %w", index, err)
		}
	case "":
		return fmt.Errorf("steps[%d]: do is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown step %q", index, s.Do)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRemoteCount:
		if !remoteOps[a.Op] {
			return fmt.Errorf("assertions[%d]: unknown op %q for remote_count", index, a.Op)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for remote_count", index)
		}
	case AssertBadge:
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for badge", index)
		}
	case AssertSubtotal:
		if _, err := decimal.NewFromString(a.Value); err != nil {
			return fmt.Errorf("assertions[%d]: value must be a decimal for subtotal: %w", index, err)
		}
	case AssertItem:
		if a.Item == "" {
			return fmt.Errorf("assertions[%d]: item is required for item", index)
		}
	case AssertPayload:
		if a.Written == nil && a.Items == nil {
			return fmt.Errorf("assertions[%d]: items or written is required for payload", index)
		}
	case AssertSelected, AssertNotifications:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
