package screens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskloom/internal/termui"
)

func TestTaskListScreen(t *testing.T) {
	newListEnv := func(t *testing.T) (*termui.App, *TaskListScreen) {
		t.Helper()
		app, _ := newTestEnv(t)
		s := NewTaskListScreen()
		require.NoError(t, app.PushScreen(s))
		return app, s
	}

	t.Run("rows track the store", func(t *testing.T) {
		app, s := newListEnv(t)
		assert.Empty(t, s.list.Node.Children())

		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "first"}).Success)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "second"}).Success)
		require.Len(t, s.list.Node.Children(), 2)

		// the selected row holds focus after a rebuild
		focused := app.Focus().Current()
		require.NotNil(t, focused)
		row := focused.Component.(*TaskRow)
		assert.Equal(t, "first", row.Task.Title)
	})

	t.Run("frame shows task titles", func(t *testing.T) {
		app, _ := newListEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "buy milk"}).Success)
		require.NoError(t, app.RenderFrame())

		frame := app.Terminal().Back().String()
		assert.Contains(t, frame, "buy milk")
		assert.Contains(t, frame, "taskloom")
		assert.Contains(t, frame, "1 open / 1 total")
	})

	t.Run("empty list shows the hint", func(t *testing.T) {
		app, _ := newListEnv(t)
		require.NoError(t, app.RenderFrame())
		assert.Contains(t, app.Terminal().Back().String(), "press a to add one")
	})

	t.Run("a opens the add dialog", func(t *testing.T) {
		app, s := newListEnv(t)
		require.True(t, s.HandleInput(app, termui.Key{Type: termui.KeyRune, Rune: 'a'}))
		require.NotNil(t, app.ActiveDialog())

		// first form field takes focus inside the dialog scope
		focused := app.Focus().Current()
		require.NotNil(t, focused)
		_, ok := focused.Component.(*termui.TextInput)
		assert.True(t, ok)
	})

	t.Run("arrow keys walk the rows", func(t *testing.T) {
		app, s := newListEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "a"}).Success)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "b"}).Success)

		require.True(t, s.HandleInput(app, termui.Key{Type: termui.KeyDown}))
		row := app.Focus().Current().Component.(*TaskRow)
		assert.Equal(t, "b", row.Task.Title)

		sel, _ := app.Store().GetState(PathSelected).(int)
		assert.Equal(t, 1, sel)
	})

	t.Run("enter on a row toggles its task", func(t *testing.T) {
		app, _ := newListEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "x"}).Success)

		focused := app.Focus().Current()
		require.NotNil(t, focused)
		row := focused.Component.(*TaskRow)
		require.True(t, row.HandleInput(app, focused, termui.Key{Type: termui.KeyEnter}))

		assert.True(t, tasksIn(app)[0].Done)
	})
}

func TestNewTaskDialog(t *testing.T) {
	t.Run("submit adds and closes", func(t *testing.T) {
		app, _ := newTestEnv(t)
		s := NewTaskListScreen()
		require.NoError(t, app.PushScreen(s))

		dialog := NewTaskDialog(app)
		app.ShowDialog(dialog)

		field := app.Focus().Current()
		require.NotNil(t, field)
		input := field.Component.(*termui.TextInput)
		input.SetValue("  write tests  ")
		require.True(t, input.HandleInput(app, field, termui.Key{Type: termui.KeyEnter}))

		assert.Nil(t, app.ActiveDialog())
		items := tasksIn(app)
		require.Len(t, items, 1)
		assert.Equal(t, "write tests", items[0].Title)
	})

	t.Run("empty title keeps the dialog open", func(t *testing.T) {
		app, _ := newTestEnv(t)
		dialog := NewTaskDialog(app)
		app.ShowDialog(dialog)

		field := app.Focus().Current()
		require.NotNil(t, field)
		input := field.Component.(*termui.TextInput)
		require.True(t, input.HandleInput(app, field, termui.Key{Type: termui.KeyEnter}))

		assert.NotNil(t, app.ActiveDialog())
		assert.Empty(t, tasksIn(app))
	})

	t.Run("submit keeps focus inside the screen tree", func(t *testing.T) {
		app, _ := newTestEnv(t)
		s := NewTaskListScreen()
		require.NoError(t, app.PushScreen(s))
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "first"}).Success)
		require.NotNil(t, app.Focus().Current())

		require.True(t, s.HandleInput(app, termui.Key{Type: termui.KeyRune, Rune: 'a'}))
		field := app.Focus().Current()
		require.NotNil(t, field)
		input := field.Component.(*termui.TextInput)
		input.SetValue("second")
		require.True(t, input.HandleInput(app, field, termui.Key{Type: termui.KeyEnter}))

		require.Nil(t, app.ActiveDialog())
		focused := app.Focus().Current()
		require.NotNil(t, focused, "no node focused after the dialog closed")

		attached := false
		for cur := focused; cur != nil; cur = cur.Parent() {
			if cur == s.Root() {
				attached = true
			}
		}
		assert.True(t, attached, "focused node is not attached to the screen tree")
		assert.IsType(t, &TaskRow{}, focused.Component)
	})

	t.Run("store updates leave dialog focus alone", func(t *testing.T) {
		app, _ := newTestEnv(t)
		s := NewTaskListScreen()
		require.NoError(t, app.PushScreen(s))
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "first"}).Success)

		app.ShowDialog(NewTaskDialog(app))
		field := app.Focus().Current()
		require.NotNil(t, field)

		// a background change rebuilds the rows behind the modal
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "second"}).Success)
		assert.Same(t, field, app.Focus().Current(), "row rebuild stole focus from the dialog")
		require.NotNil(t, app.ActiveDialog())
	})

	t.Run("escape dismisses", func(t *testing.T) {
		app, _ := newTestEnv(t)
		dialog := NewTaskDialog(app)
		app.ShowDialog(dialog)

		box := dialog.Component.(*dialogBox)
		require.True(t, box.HandleInput(app, dialog, termui.Key{Type: termui.KeyEscape}))
		assert.Nil(t, app.ActiveDialog())
	})

	t.Run("dialog paints over the screen", func(t *testing.T) {
		app, _ := newTestEnv(t)
		s := NewTaskListScreen()
		require.NoError(t, app.PushScreen(s))
		app.ShowDialog(NewTaskDialog(app))

		require.NoError(t, app.RenderFrame())
		frame := app.Terminal().Back().String()
		assert.Contains(t, frame, "new task")
		if !strings.Contains(frame, "cancel") {
			t.Error("dialog buttons not painted")
		}
	})
}
