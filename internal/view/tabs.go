package view

import (
	"slices"

	"github.com/Makepad-fr/tada/internal/model"
)

// Tabs holds the selected status filter. Changing it only re-parametrizes
// the list's next fetch.
type Tabs struct {
	selected model.Filter
}

func NewTabs(initial model.Filter) *Tabs {
	if !slices.Contains(model.Filters, initial) {
		initial = model.FilterAll
	}
	return &Tabs{selected: initial}
}

func (t *Tabs) Selected() model.Filter { return t.selected }

// Select reports whether the selection changed.
func (t *Tabs) Select(f model.Filter) bool {
	if f == t.selected || !slices.Contains(model.Filters, f) {
		return false
	}
	t.selected = f
	return true
}

// Next moves one tab right, wrapping around.
func (t *Tabs) Next() model.Filter {
	t.selected = model.Filters[(t.index()+1)%len(model.Filters)]
	return t.selected
}

// Prev moves one tab left, wrapping around.
func (t *Tabs) Prev() model.Filter {
	n := len(model.Filters)
	t.selected = model.Filters[(t.index()+n-1)%n]
	return t.selected
}

func (t *Tabs) index() int {
	return max(slices.Index(model.Filters, t.selected), 0)
}
