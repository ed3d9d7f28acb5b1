package tui

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/animate"
	"github.com/Makepad-fr/tada/internal/model"
	"github.com/Makepad-fr/tada/internal/ui"
)

// row is one line of the list: a rendered todo, or a ghost of one that is
// animating out.
type row struct {
	todo  model.Todo
	ghost bool
}

func (r row) FilterValue() string { return r.todo.Body }

// motion is the animation state shared between the model and its
// delegate.
type motion struct {
	timeline *animate.Timeline[int64]
	now      time.Time
	ticking  bool
}

func (m *motion) frame(id int64) animate.Frame {
	if m.timeline == nil {
		return animate.Rest
	}
	return m.timeline.Frame(id, m.now)
}

type delegate struct {
	theme  ui.Theme
	motion *motion
}

func (d delegate) Height() int                         { return 1 }
func (d delegate) Spacing() int                        { return 0 }
func (d delegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	r, ok := item.(row)
	if !ok {
		return
	}
	prefix := "  "
	if index == m.Index() && !r.ghost {
		prefix = d.theme.Accent.Render("> ")
	}
	fmt.Fprint(w, prefix+renderRow(d.theme, r.todo, d.motion.frame(r.todo.ID)))
}

// renderRow draws a todo at frame f. Scale crops the body from the right,
// opacity fades the row, and a row still travelling to its slot carries an
// arrow in the direction it moves.
func renderRow(t ui.Theme, td model.Todo, f animate.Frame) string {
	if f.Opacity <= 0 || f.Scale <= 0 {
		return ""
	}
	body := scaleText(td.Body, f.Scale)

	sym, boxStyle, style := t.BoxUnchecked, t.Pending, lipgloss.NewStyle()
	if td.Done() {
		sym, boxStyle, style = t.BoxChecked, t.Success, t.Done
	}
	if f.Scale > 1.05 {
		style = style.Bold(true)
	}
	if f.Opacity < 0.5 {
		boxStyle, style = t.Muted, style.Faint(true)
	}
	box := boxStyle.Render(sym)

	line := box + " " + style.Render(body)
	switch {
	case f.Offset >= 0.5:
		line += " " + t.Muted.Render("↑")
	case f.Offset <= -0.5:
		line += " " + t.Muted.Render("↓")
	}
	return line
}

func scaleText(s string, scale float64) string {
	if scale >= 1 {
		return s
	}
	rs := []rune(s)
	n := int(math.Round(float64(len(rs)) * scale))
	return string(rs[:n])
}
