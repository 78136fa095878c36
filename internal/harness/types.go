package harness

// TraceEvent records one executed step and the state right after it.
type TraceEvent struct {
	Seq           int      `json:"seq"`
	Step          string   `json:"step"`
	Args          string   `json:"args,omitempty"`
	Outcome       string   `json:"outcome"` // "ok" or an error code
	Remote        []string `json:"remote,omitempty"`
	Notifications []string `json:"notifications,omitempty"`
	Navigate      string   `json:"navigate,omitempty"`
	Items         []string `json:"items,omitempty"`
	Selected      []string `json:"selected,omitempty"`
	Subtotal      string   `json:"subtotal"`
	Badge         int      `json:"badge"`
}

// PayloadLine is one line of the stored checkout payload.
type PayloadLine struct {
	ID              string `json:"id"`
	Quantity        int    `json:"quantity"`
	DiscountedPrice string `json:"discountedPrice"`
	LineSubtotal    string `json:"lineSubtotal"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every step outcome and assertion matched.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Payload is the checkout payload left in the store, if any.
	Payload []PayloadLine `json:"payload,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
