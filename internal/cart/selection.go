package cart

// Selection tracks which cart lines are marked for checkout.
//
// It knows the current line ids in cart order so that AllSelected and
// ToggleAll are defined against the live item set. Selection is not safe for
// concurrent use; the Controller guards it.
type Selection struct {
	ids      []string
	selected map[string]bool
}

// NewSelection returns a selection over ids with every id selected.
func NewSelection(ids []string) *Selection {
	s := &Selection{}
	s.Reset(ids)
	return s
}

// Reset replaces the item set and selects everything.
func (s *Selection) Reset(ids []string) {
	s.ids = append(s.ids[:0:0], ids...)
	s.selected = make(map[string]bool, len(ids))
	for _, id := range ids {
		s.selected[id] = true
	}
}

func (s *Selection) has(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// Toggle flips one line. Unknown ids are ignored and report false.
func (s *Selection) Toggle(id string) bool {
	if !s.has(id) {
		return false
	}
	s.selected[id] = !s.selected[id]
	return true
}

// AllSelected is true iff the set is non-empty and every line is selected.
func (s *Selection) AllSelected() bool {
	if len(s.ids) == 0 {
		return false
	}
	for _, id := range s.ids {
		if !s.selected[id] {
			return false
		}
	}
	return true
}

// ToggleAll sets every line to the opposite of AllSelected.
func (s *Selection) ToggleAll() {
	target := !s.AllSelected()
	for _, id := range s.ids {
		s.selected[id] = target
	}
}

// Remove drops id from the item set and the selection. Removing an unknown
// id is a no-op.
func (s *Selection) Remove(id string) {
	if !s.has(id) {
		return
	}
	delete(s.selected, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
}

// IsSelected reports whether id is currently selected.
func (s *Selection) IsSelected(id string) bool {
	return s.selected[id]
}

// Selected returns the selected ids in cart order.
func (s *Selection) Selected() []string {
	out := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		if s.selected[id] {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of selected lines.
func (s *Selection) Len() int {
	n := 0
	for _, id := range s.ids {
		if s.selected[id] {
			n++
		}
	}
	return n
}
