package screens

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskloom/internal/task"
	"taskloom/internal/termui"
)

func newTestEnv(t *testing.T) (*termui.App, *Actions) {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := task.Open(ctx, filepath.Join(t.TempDir(), "tasks.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	term := termui.NewTerminalWithSize(io.Discard, 60, 20)
	app := termui.NewAppWithTerminal(term, nil, logger)
	return app, RegisterActions(ctx, app, store)
}

func tasksIn(app *termui.App) []task.Task {
	items, _ := app.Store().GetState(PathTasks).([]task.Task)
	return items
}

func TestActions(t *testing.T) {
	t.Run("add refreshes the list", func(t *testing.T) {
		app, _ := newTestEnv(t)

		res := app.Dispatch("tasks/add", AddTaskPayload{Title: "ship it", Project: "work"})
		require.True(t, res.Success, "%v", res.Err)

		items := tasksIn(app)
		require.Len(t, items, 1)
		assert.Equal(t, "ship it", items[0].Title)
		assert.Equal(t, "work", items[0].Project)
	})

	t.Run("add rejects empty titles", func(t *testing.T) {
		app, _ := newTestEnv(t)
		res := app.Dispatch("tasks/add", AddTaskPayload{})
		assert.False(t, res.Success)
		assert.Empty(t, tasksIn(app))
	})

	t.Run("toggle round-trips through persistence", func(t *testing.T) {
		app, _ := newTestEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "x"}).Success)
		id := tasksIn(app)[0].ID

		require.True(t, app.Dispatch("tasks/toggle", id).Success)
		assert.True(t, tasksIn(app)[0].Done)

		require.True(t, app.Dispatch("tasks/toggle", id).Success)
		assert.False(t, tasksIn(app)[0].Done)
	})

	t.Run("delete clamps the selection", func(t *testing.T) {
		app, _ := newTestEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "a"}).Success)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "b"}).Success)
		require.True(t, app.Dispatch("tasks/select", 1).Success)

		id := tasksIn(app)[1].ID
		require.True(t, app.Dispatch("tasks/delete", id).Success)

		sel, _ := app.Store().GetState(PathSelected).(int)
		assert.Equal(t, 0, sel)
		require.Len(t, tasksIn(app), 1)
	})

	t.Run("select clamps out-of-range indices", func(t *testing.T) {
		app, _ := newTestEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "a"}).Success)

		require.True(t, app.Dispatch("tasks/select", 99).Success)
		sel, _ := app.Store().GetState(PathSelected).(int)
		assert.Equal(t, 0, sel)

		require.True(t, app.Dispatch("tasks/select", -5).Success)
		sel, _ = app.Store().GetState(PathSelected).(int)
		assert.Equal(t, 0, sel)
	})

	t.Run("timer books elapsed seconds on stop", func(t *testing.T) {
		app, a := newTestEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "x"}).Success)
		id := tasksIn(app)[0].ID

		clock := time.Now()
		a.now = func() time.Time { return clock }

		require.True(t, app.Dispatch("timer/toggle", id).Success)
		running, _ := app.Store().GetState(PathTimerID).(string)
		assert.Equal(t, id, running)

		clock = clock.Add(90 * time.Second)
		require.True(t, app.Dispatch("timer/toggle", id).Success)

		running, _ = app.Store().GetState(PathTimerID).(string)
		assert.Empty(t, running)
		assert.EqualValues(t, 90, tasksIn(app)[0].Seconds)
	})

	t.Run("switching tasks books the old one first", func(t *testing.T) {
		app, a := newTestEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "a"}).Success)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "b"}).Success)
		first, second := tasksIn(app)[0].ID, tasksIn(app)[1].ID

		clock := time.Now()
		a.now = func() time.Time { return clock }

		require.True(t, app.Dispatch("timer/toggle", first).Success)
		clock = clock.Add(60 * time.Second)
		require.True(t, app.Dispatch("timer/toggle", second).Success)

		running, _ := app.Store().GetState(PathTimerID).(string)
		assert.Equal(t, second, running)
		assert.EqualValues(t, 60, tasksIn(app)[0].Seconds)
	})

	t.Run("deleting the timed task stops the timer", func(t *testing.T) {
		app, a := newTestEnv(t)
		require.True(t, app.Dispatch("tasks/add", AddTaskPayload{Title: "x"}).Success)
		id := tasksIn(app)[0].ID

		clock := time.Now()
		a.now = func() time.Time { return clock }
		require.True(t, app.Dispatch("timer/toggle", id).Success)

		require.True(t, app.Dispatch("tasks/delete", id).Success)
		running, _ := app.Store().GetState(PathTimerID).(string)
		assert.Empty(t, running)
	})

	t.Run("bad payloads fail without side effects", func(t *testing.T) {
		app, _ := newTestEnv(t)
		assert.False(t, app.Dispatch("tasks/add", 42).Success)
		assert.False(t, app.Dispatch("tasks/toggle", 42).Success)
		assert.False(t, app.Dispatch("tasks/select", "one").Success)
		assert.Empty(t, tasksIn(app))
	})
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m"},
		{3 * time.Minute, "3m"},
		{62 * time.Minute, "1h02m"},
		{25*time.Hour + 10*time.Minute, "25h10m"},
	}
	for _, tc := range cases {
		if got := formatElapsed(tc.d); got != tc.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
