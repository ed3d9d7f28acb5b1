// Package ui renders tada's non-interactive output and holds the themes the
// TUI shares.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var ErrUnknownTheme = errors.New("unknown theme")

// Theme bundles palette, symbols and box borders.
type Theme struct {
	Name string

	Title, Muted, Accent, Success, Error, Pending lipgloss.Style
	// Done renders completed todos.
	Done      lipgloss.Style
	Selected  lipgloss.Style
	Tab       lipgloss.Style
	ActiveTab lipgloss.Style
	Help      lipgloss.Style

	Border      lipgloss.Border
	BorderColor lipgloss.TerminalColor

	BoxChecked, BoxUnchecked string
	SymOK, SymFail           string
	BarFull, BarEmpty        string
}

// ThemeNames lists the built-in themes.
var ThemeNames = []string{"classic", "neon", "mono"}

// NewTheme returns the built-in theme called name.
func NewTheme(name string) (Theme, error) {
	base := lipgloss.NewStyle()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "classic":
		return Theme{
			Name:        "classic",
			Title:       base.Bold(true),
			Muted:       base.Foreground(lipgloss.Color("8")),
			Accent:      base.Foreground(lipgloss.Color("12")),
			Success:     base.Foreground(lipgloss.Color("42")),
			Error:       base.Foreground(lipgloss.Color("9")).Bold(true),
			Pending:     base.Foreground(lipgloss.Color("214")),
			Done:        base.Faint(true).Strikethrough(true),
			Selected:    base.Bold(true).Reverse(true),
			Tab:         base.Padding(0, 1).Foreground(lipgloss.Color("8")),
			ActiveTab:   base.Padding(0, 1).Bold(true).Underline(true).Foreground(lipgloss.Color("12")),
			Help:        base.Faint(true),
			Border:      lipgloss.NormalBorder(),
			BorderColor: lipgloss.Color("8"),
			BoxChecked:  "☑", BoxUnchecked: "☐",
			SymOK: "✔", SymFail: "✖",
			BarFull: "█", BarEmpty: "░",
		}, nil
	case "neon":
		return Theme{
			Name:        "neon",
			Title:       base.Bold(true).Foreground(lipgloss.Color("13")),
			Muted:       base.Foreground(lipgloss.Color("8")),
			Accent:      base.Foreground(lipgloss.Color("14")),
			Success:     base.Foreground(lipgloss.Color("10")),
			Error:       base.Foreground(lipgloss.Color("9")).Bold(true),
			Pending:     base.Foreground(lipgloss.Color("11")),
			Done:        base.Faint(true).Strikethrough(true).Foreground(lipgloss.Color("10")),
			Selected:    base.Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("13")),
			Tab:         base.Padding(0, 1).Foreground(lipgloss.Color("8")),
			ActiveTab:   base.Padding(0, 1).Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("14")),
			Help:        base.Faint(true),
			Border:      lipgloss.RoundedBorder(),
			BorderColor: lipgloss.Color("13"),
			BoxChecked:  "◼", BoxUnchecked: "◻",
			SymOK: "✔", SymFail: "✖",
			BarFull: "█", BarEmpty: "░",
		}, nil
	case "mono":
		return Theme{
			Name:        "mono",
			Title:       base.Bold(true),
			Muted:       base,
			Accent:      base,
			Success:     base,
			Error:       base.Bold(true),
			Pending:     base,
			Done:        base.Strikethrough(true),
			Selected:    base.Reverse(true),
			Tab:         base.Padding(0, 1),
			ActiveTab:   base.Padding(0, 1).Reverse(true),
			Help:        base,
			Border:      lipgloss.ASCIIBorder(),
			BorderColor: lipgloss.NoColor{},
			BoxChecked:  "[x]", BoxUnchecked: "[ ]",
			SymOK: "ok", SymFail: "error:",
			BarFull: "#", BarEmpty: "-",
		}, nil
	}
	return Theme{}, fmt.Errorf("%w %q (want one of %s)", ErrUnknownTheme, name, strings.Join(ThemeNames, ", "))
}

var (
	mu      sync.RWMutex
	current = mustTheme("classic")
)

func mustTheme(name string) Theme {
	t, err := NewTheme(name)
	if err != nil {
		panic(err)
	}
	return t
}

// SetTheme switches the theme used by every helper in this package.
func SetTheme(name string) error {
	t, err := NewTheme(name)
	if err != nil {
		return err
	}
	mu.Lock()
	current = t
	mu.Unlock()
	return nil
}

func Current() Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}
