package screens

import (
	"fmt"
	"slices"

	"taskloom/internal/task"
	"taskloom/internal/termui"
)

// TaskListScreen is the application's main screen: a header, the task list
// as a stack of focusable rows, and a status bar.
type TaskListScreen struct {
	termui.BaseScreen

	list   *termui.StackPanel
	status *termui.Node
	subID  int
}

// NewTaskListScreen creates the main screen.
func NewTaskListScreen() *TaskListScreen {
	return &TaskListScreen{BaseScreen: termui.NewBaseScreen()}
}

// Init implements termui.Screen. It builds the tree, subscribes to the
// task list, and focuses the first row.
func (s *TaskListScreen) Init(ctx *termui.App) error {
	s.list = termui.NewStackPanel(termui.Vertical, 0, 0)
	s.status = NewStatusBar("tab move · enter toggle · t timer · d delete · a add · q quit")
	s.Root().AddChild(s.list.Node)
	s.Root().AddChild(s.status)

	s.subID = ctx.Store().Subscribe(PathTasks, func(_, _ any, _ string) {
		s.rebuildRows(ctx)
		ctx.MarkDirty()
	})
	return nil
}

// OnExit implements termui.Screen.
func (s *TaskListScreen) OnExit(ctx *termui.App) {
	ctx.Store().Unsubscribe(s.subID)
}

// OnResume implements termui.Screen.
func (s *TaskListScreen) OnResume(ctx *termui.App) {
	s.subID = ctx.Store().Subscribe(PathTasks, func(_, _ any, _ string) {
		s.rebuildRows(ctx)
		ctx.MarkDirty()
	})
}

// Render implements termui.Screen: header chrome and geometry for the list
// and status bar, which track the terminal size.
func (s *TaskListScreen) Render(ctx *termui.App, buf *termui.Buffer) {
	size := ctx.Size()

	header := termui.DefaultStyle().Bold().Inverse()
	buf.FillRect(0, 0, size.Width, 1, termui.NewCell(' ', header))
	buf.WriteStringClipped(1, 0, "taskloom", header, size.Width)

	items, _ := ctx.Store().GetState(PathTasks).([]task.Task)
	open := 0
	for _, t := range items {
		if !t.Done {
			open++
		}
	}
	counts := fmt.Sprintf("%d open / %d total", open, len(items))
	buf.WriteStringClipped(size.Width-len(counts)-1, 0, counts, header, size.Width)

	s.list.Node.SetBounds(0, 1, size.Width, size.Height-2)
	s.status.SetBounds(0, size.Height-1, size.Width, 1)

	if len(items) == 0 {
		buf.WriteStringClipped(2, 2, "no tasks yet, press a to add one", termui.DefaultStyle().Dim(), size.Width)
	}
}

// HandleInput implements termui.Screen: screen-level keys not consumed by
// the focused row.
func (s *TaskListScreen) HandleInput(ctx *termui.App, k termui.Key) bool {
	switch {
	case k.Type == termui.KeyRune && k.Rune == 'q' && !k.Ctrl, k.IsCtrl('c'):
		ctx.Stop()
	case k.Type == termui.KeyRune && k.Rune == 'a' && !k.Ctrl:
		ctx.ShowDialog(NewTaskDialog(ctx))
	case k.Type == termui.KeyRune && k.Rune == 'r' && !k.Ctrl:
		ctx.Dispatch("tasks/load", nil)
	case k.Type == termui.KeyDown:
		ctx.Focus().TabNavigate(false)
		ctx.MarkDirty()
	case k.Type == termui.KeyUp:
		ctx.Focus().TabNavigate(true)
		ctx.MarkDirty()
	default:
		return false
	}
	return true
}

// rebuildRows recreates the row nodes from the current task list, keeping
// focus on the previously selected index where possible.
func (s *TaskListScreen) rebuildRows(ctx *termui.App) {
	for _, child := range slices.Clone(s.list.Node.Children()) {
		s.list.Node.RemoveChild(child)
	}

	items, _ := ctx.Store().GetState(PathTasks).([]task.Task)
	width := ctx.Size().Width
	rows := make([]*termui.Node, len(items))
	for i, t := range items {
		rows[i] = NewTaskRow(t, i, width)
		s.list.Add(rows[i])
	}

	if len(rows) == 0 {
		return
	}
	// rows need their stacked Y positions before tab order can sort them
	s.list.LayoutChildren(s.list.Node)

	// a store update arriving while a modal dialog is open must not pull
	// focus out from behind it; the dialog-close path re-resolves focus
	if ctx.ActiveDialog() != nil {
		return
	}
	sel, _ := ctx.Store().GetState(PathSelected).(int)
	if sel < 0 || sel >= len(rows) {
		sel = 0
	}
	ctx.Focus().SetFocus(rows[sel])
}
