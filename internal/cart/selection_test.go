package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_ResetSelectsAll(t *testing.T) {
	s := NewSelection([]string{"a", "b", "c"})
	assert.True(t, s.AllSelected())
	assert.Equal(t, []string{"a", "b", "c"}, s.Selected())
	assert.Equal(t, 3, s.Len())
}

func TestSelection_EmptyIsNeverAllSelected(t *testing.T) {
	s := NewSelection(nil)
	assert.False(t, s.AllSelected())

	s.ToggleAll()
	assert.False(t, s.AllSelected())
	assert.Empty(t, s.Selected())
}

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection([]string{"a", "b"})

	assert.True(t, s.Toggle("a"))
	assert.False(t, s.IsSelected("a"))
	assert.False(t, s.AllSelected())
	assert.Equal(t, []string{"b"}, s.Selected())

	assert.False(t, s.Toggle("zzz"), "unknown ids are ignored")
	assert.False(t, s.IsSelected("zzz"))
	assert.Equal(t, 1, s.Len())
}

func TestSelection_ToggleAll(t *testing.T) {
	s := NewSelection([]string{"a", "b", "c"})

	s.ToggleAll()
	assert.Empty(t, s.Selected())

	s.ToggleAll()
	assert.Equal(t, []string{"a", "b", "c"}, s.Selected())

	// Partial selection: ToggleAll selects everything.
	s.Toggle("b")
	s.ToggleAll()
	assert.True(t, s.AllSelected())
}

func TestSelection_ToggleAllTwiceIsIdentity(t *testing.T) {
	starts := [][]string{
		{"a", "b", "c"},
		{"b"},
		{},
		{"a", "c"},
	}

	for _, selected := range starts {
		s := NewSelection([]string{"a", "b", "c"})
		s.ToggleAll() // clear
		for _, id := range selected {
			s.Toggle(id)
		}
		before := s.Selected()

		s.ToggleAll()
		s.ToggleAll()

		if len(before) == 3 || len(before) == 0 {
			assert.Equal(t, before, s.Selected(), "start %v", selected)
		} else {
			// A partial selection becomes "all" and then "none".
			assert.Empty(t, s.Selected(), "start %v", selected)
		}
	}
}

func TestSelection_Remove(t *testing.T) {
	s := NewSelection([]string{"a", "b", "c"})
	s.Toggle("c")

	s.Remove("b")
	assert.Equal(t, []string{"a"}, s.Selected())
	assert.False(t, s.AllSelected())

	s.Remove("c")
	assert.True(t, s.AllSelected(), "remaining lines are all selected")

	s.Remove("b")
	s.Remove("nope")
	assert.Equal(t, []string{"a"}, s.Selected())
}

func TestSelection_ResetDoesNotAliasInput(t *testing.T) {
	ids := []string{"a", "b"}
	s := NewSelection(ids)
	ids[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, s.Selected())
}
