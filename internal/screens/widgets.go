package screens

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"

	"taskloom/internal/task"
	"taskloom/internal/termui"
)

// TaskRow is one focusable line of the task list. Focusing a row selects
// its task; keys on the row act on that task.
type TaskRow struct {
	Task  task.Task
	Index int
}

// NewTaskRow creates a focusable row node for the given task.
func NewTaskRow(t task.Task, index, width int) *termui.Node {
	n := termui.NewNode()
	n.Component = &TaskRow{Task: t, Index: index}
	n.Width = width
	n.Height = 1
	n.Focusable = true
	return n
}

// Render implements termui.Component.
func (r *TaskRow) Render(ctx *termui.App, buf *termui.Buffer, n *termui.Node) {
	style := termui.DefaultStyle()
	if r.Task.Done {
		style = style.Dim()
	}
	if n.IsFocused() {
		style = style.Inverse()
	}
	buf.FillRect(n.X, n.Y, n.Width, 1, termui.NewCell(' ', style))

	box := "[ ]"
	if r.Task.Done {
		box = "[x]"
	}
	line := fmt.Sprintf(" %s %s", box, r.Task.Title)
	buf.WriteStringClipped(n.X, n.Y, line, style, n.X+n.Width)

	// right-aligned detail: project and booked time
	detail := formatElapsed(r.Task.Elapsed())
	if running := timerRunningOn(ctx, r.Task.ID); running {
		detail = "● " + detail
	}
	if r.Task.Project != "" {
		detail = r.Task.Project + "  " + detail
	}
	dw := runewidth.StringWidth(detail)
	if x := n.X + n.Width - dw - 1; x > n.X+runewidth.StringWidth(line) {
		buf.WriteStringClipped(x, n.Y, detail, style, n.X+n.Width)
	}
}

// HandleInput implements termui.InputHandler.
func (r *TaskRow) HandleInput(ctx *termui.App, _ *termui.Node, k termui.Key) bool {
	switch {
	case k.Type == termui.KeyEnter,
		k.Type == termui.KeyRune && k.Rune == ' ' && !k.Ctrl:
		ctx.Dispatch("tasks/toggle", r.Task.ID)
	case k.Type == termui.KeyRune && k.Rune == 'd' && !k.Ctrl:
		ctx.Dispatch("tasks/delete", r.Task.ID)
		ctx.Dispatch("notify", "deleted: "+r.Task.Title)
	case k.Type == termui.KeyRune && k.Rune == 't' && !k.Ctrl:
		ctx.Dispatch("timer/toggle", r.Task.ID)
	default:
		return false
	}
	return true
}

// OnFocus implements termui.FocusListener: focusing a row selects it.
func (r *TaskRow) OnFocus(ctx *termui.App, _ *termui.Node) {
	ctx.Dispatch("tasks/select", r.Index)
}

// OnBlur implements termui.FocusListener.
func (r *TaskRow) OnBlur(*termui.App, *termui.Node) {}

// StatusBar is the bottom help line with the live timer readout.
type StatusBar struct {
	Hints string
}

// NewStatusBar creates a status bar node. The owning screen keeps its
// bounds pinned to the bottom row.
func NewStatusBar(hints string) *termui.Node {
	n := termui.NewNode()
	n.Component = &StatusBar{Hints: hints}
	n.Height = 1
	n.ZIndex = 10
	return n
}

// Render implements termui.Component.
func (s *StatusBar) Render(ctx *termui.App, buf *termui.Buffer, n *termui.Node) {
	style := termui.DefaultStyle().Inverse()
	buf.FillRect(n.X, n.Y, n.Width, 1, termui.NewCell(' ', style))
	buf.WriteStringClipped(n.X+1, n.Y, s.Hints, style, n.X+n.Width)

	if ctx == nil {
		return
	}
	if readout := timerReadout(ctx); readout != "" {
		x := n.X + n.Width - runewidth.StringWidth(readout) - 1
		buf.WriteStringClipped(x, n.Y, readout, style.Bold(), n.X+n.Width)
	}
}

// timerRunningOn reports whether the timer is running against the task.
func timerRunningOn(ctx *termui.App, id string) bool {
	if ctx == nil {
		return false
	}
	running, _ := ctx.Store().GetState(PathTimerID).(string)
	return running != "" && running == id
}

// timerReadout formats the running timer for the status bar, or "".
func timerReadout(ctx *termui.App) string {
	running, _ := ctx.Store().GetState(PathTimerID).(string)
	if running == "" {
		return ""
	}
	startedAt, _ := ctx.Store().GetState(PathTimerAt).(time.Time)
	return "⏱ " + formatElapsed(time.Since(startedAt))
}

// formatElapsed renders a duration as 3m, 1h02m, 25h10m.
func formatElapsed(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
