package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tada/internal/model"
)

// ProgressBar renders done/total as a bar of width cells with a
// percentage.
func ProgressBar(done, total, width int) string {
	t := Current()
	if width < 5 {
		width = 5
	}
	pct := 0
	filled := 0
	if total > 0 {
		filled = min(done*width/total, width)
		pct = min(done*100/total, 100)
	}
	bar := t.Success.Render(strings.Repeat(t.BarFull, filled)) +
		t.Muted.Render(strings.Repeat(t.BarEmpty, width-filled))
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel frames lines in the current theme's border.
func Panel(w io.Writer, lines []string) {
	t := Current()
	box := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	fmt.Fprintln(w, box.Render(strings.Join(lines, "\n")))
}

// Checkbox is the status box for a todo.
func Checkbox(td model.Todo) string {
	t := Current()
	if td.Done() {
		return t.Success.Render(t.BoxChecked)
	}
	return t.Pending.Render(t.BoxUnchecked)
}

// TodoLine renders one todo for list output.
func TodoLine(td model.Todo) string {
	t := Current()
	body := td.Body
	if td.Done() {
		body = t.Done.Render(body)
	}
	return fmt.Sprintf("%s %s %s", Checkbox(td), t.Muted.Render(fmt.Sprintf("#%-3d", td.ID)), body)
}

// Summary is the "n done m pending" header line with a progress bar.
func Summary(todos []model.Todo, barWidth int) string {
	t := Current()
	done, pending := model.Stats(todos)
	return fmt.Sprintf("%s %s  %s",
		t.Success.Render(fmt.Sprintf("%d done", done)),
		t.Pending.Render(fmt.Sprintf("%d pending", pending)),
		ProgressBar(done, done+pending, barWidth))
}

func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}
