package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/roach88/hwcart/internal/cart"
)

type lineView struct {
	ID                 string `json:"id"`
	ProductID          string `json:"productId"`
	Name               string `json:"name"`
	CategoryID         string `json:"categoryId,omitempty"`
	Category           string `json:"category,omitempty"`
	Quantity           int    `json:"quantity"`
	Stock              int    `json:"stock"`
	UnitPrice          string `json:"unitPrice"`
	DiscountPercentage string `json:"discountPercentage"`
	DiscountedPrice    string `json:"discountedPrice"`
	LineSubtotal       string `json:"lineSubtotal"`
	Selected           bool   `json:"selected"`
	Checkoutable       bool   `json:"checkoutable"`
}

func (s *session) lineView(it cart.CartItem) lineView {
	name, _ := s.ctrl.CategoryName(it.CategoryID)
	return lineView{
		ID:                 it.ID,
		ProductID:          it.ProductID,
		Name:               it.Name,
		CategoryID:         it.CategoryID,
		Category:           name,
		Quantity:           it.Quantity,
		Stock:              it.Stock,
		UnitPrice:          s.money.Format(it.UnitPrice),
		DiscountPercentage: it.DiscountPercentage.String(),
		DiscountedPrice:    s.money.Format(it.DiscountedUnitPrice()),
		LineSubtotal:       s.money.Format(it.LineSubtotal()),
		Selected:           s.ctrl.IsSelected(it.ID),
		Checkoutable:       it.Checkoutable(),
	}
}

func (v lineView) category() string {
	switch {
	case v.Category != "":
		return v.Category
	case v.CategoryID != "":
		return v.CategoryID
	default:
		return "-"
	}
}

func (v lineView) stock() string {
	switch {
	case v.Stock == 0:
		return "out of stock"
	case !v.Checkoutable:
		return fmt.Sprintf("%d (invalid qty)", v.Stock)
	default:
		return fmt.Sprint(v.Stock)
	}
}

type cartView struct {
	Visible     bool       `json:"visible"`
	Message     string     `json:"message,omitempty"`
	CartID      string     `json:"cartId,omitempty"`
	Items       []lineView `json:"items"`
	Count       int        `json:"count"`
	AllSelected bool       `json:"allSelected"`
	Subtotal    string     `json:"subtotal"`
	ServerTotal string     `json:"serverTotal,omitempty"`
}

func (s *session) cartView() cartView {
	if !s.ctrl.Visible() {
		return cartView{Message: s.ctrl.Gate().Message(), Items: []lineView{}}
	}
	items := s.ctrl.Items()
	meta := s.ctrl.Meta()
	v := cartView{
		Visible:     true,
		CartID:      meta.ID,
		Items:       make([]lineView, 0, len(items)),
		Count:       s.ctrl.Badge().Count(),
		AllSelected: s.ctrl.AllSelected(),
		Subtotal:    s.money.Format(s.ctrl.Subtotal()),
	}
	if !meta.ServerTotal.IsZero() {
		v.ServerTotal = s.money.Format(meta.ServerTotal)
	}
	for _, it := range items {
		v.Items = append(v.Items, s.lineView(it))
	}
	return v
}

func (v cartView) RenderText(w io.Writer) {
	if !v.Visible {
		fmt.Fprintf(w, "Cart unavailable: %s\n", v.Message)
		return
	}
	if len(v.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEL\tID\tNAME\tCATEGORY\tQTY\tSTOCK\tPRICE\tDISC%\tNET\tSUBTOTAL")
	for _, l := range v.Items {
		mark := "[ ]"
		if l.Selected {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			mark, l.ID, l.Name, l.category(), l.Quantity, l.stock(),
			l.UnitPrice, l.DiscountPercentage, l.DiscountedPrice, l.LineSubtotal)
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%d line(s). Selected subtotal: %s\n", v.Count, v.Subtotal)
}

type countView struct {
	Count int `json:"count"`
}

func (v countView) RenderText(w io.Writer) {
	fmt.Fprintln(w, v.Count)
}

type mutationView struct {
	Action    string    `json:"action"`
	ItemID    string    `json:"itemId,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Line      *lineView `json:"line,omitempty"`
	Count     int       `json:"count"`
}

func (v mutationView) RenderText(w io.Writer) {
	switch v.Action {
	case "added":
		fmt.Fprintf(w, "Added %d x %s. Cart now has %d line(s).\n", v.Quantity, v.ProductID, v.Count)
	case "updated":
		fmt.Fprintf(w, "Set %s to %d. Line subtotal: %s\n", v.ItemID, v.Quantity, v.Line.LineSubtotal)
	case "removed":
		fmt.Fprintf(w, "Removed %s. Cart now has %d line(s).\n", v.ItemID, v.Count)
	}
}

type handoffView struct {
	Key      string     `json:"key"`
	Lines    []lineView `json:"lines"`
	Subtotal string     `json:"subtotal"`
}

func (s *session) handoffView(h cart.Handoff) handoffView {
	v := handoffView{
		Key:      h.Key,
		Lines:    make([]lineView, 0, len(h.Lines)),
		Subtotal: s.money.Format(h.Subtotal),
	}
	for _, l := range h.Lines {
		v.Lines = append(v.Lines, s.lineView(l.CartItem))
	}
	return v
}

func (v handoffView) RenderText(w io.Writer) {
	fmt.Fprintf(w, "Checkout ready: %d line(s), subtotal %s\n", len(v.Lines), v.Subtotal)
	for _, l := range v.Lines {
		fmt.Fprintf(w, "  %s  %d x %s  %s\n", l.ID, l.Quantity, l.Name, l.LineSubtotal)
	}
	fmt.Fprintf(w, "Payload stored under %q.\n", v.Key)
}

type payloadView struct {
	Key       string          `json:"key"`
	Revision  int64           `json:"revision"`
	WrittenAt time.Time       `json:"writtenAt"`
	Value     json.RawMessage `json:"value"`
}

func (v payloadView) RenderText(w io.Writer) {
	fmt.Fprintf(w, "%s (revision %d, written %s)\n", v.Key, v.Revision, v.WrittenAt.Format(time.RFC3339))
	var pretty any
	if err := json.Unmarshal(v.Value, &pretty); err != nil {
		fmt.Fprintln(w, string(v.Value))
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Fprintln(w, string(out))
}

type clearedView struct {
	Key     string `json:"key"`
	Removed bool   `json:"removed"`
}

func (v clearedView) RenderText(w io.Writer) {
	if v.Removed {
		fmt.Fprintf(w, "Cleared %q.\n", v.Key)
		return
	}
	fmt.Fprintf(w, "Nothing stored under %q.\n", v.Key)
}
