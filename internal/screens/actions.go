// Package screens implements the task-manager application on top of the
// termui runtime: its store actions, screens, dialog, and row widgets.
package screens

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"taskloom/internal/task"
	"taskloom/internal/termui"
)

// State paths the application keeps in the reactive store.
const (
	PathTasks    = "tasks.items"     // []task.Task
	PathSelected = "tasks.selected"  // int index into the list
	PathTimerID  = "timer.taskID"    // string, "" while stopped
	PathTimerAt  = "timer.startedAt" // time.Time
)

// AddTaskPayload is the payload of the tasks/add action.
type AddTaskPayload struct {
	Title   string
	Project string
}

// Actions binds the persistent task store to the reactive store's action
// handlers. now is swappable for tests.
type Actions struct {
	app   *termui.App
	tasks *task.Store
	ctx   context.Context
	now   func() time.Time
}

// RegisterActions wires every application action into the app's store and
// seeds the initial state.
func RegisterActions(ctx context.Context, app *termui.App, tasks *task.Store) *Actions {
	a := &Actions{app: app, tasks: tasks, ctx: ctx, now: time.Now}

	store := app.Store()
	store.RegisterAction("tasks/load", a.load)
	store.RegisterAction("tasks/add", a.add)
	store.RegisterAction("tasks/toggle", a.toggle)
	store.RegisterAction("tasks/delete", a.delete)
	store.RegisterAction("tasks/select", a.selectTask)
	store.RegisterAction("timer/toggle", a.timerToggle)
	store.RegisterAction("notify", a.notify)

	store.Dispatch("tasks/load", nil)
	return a
}

func (a *Actions) load(ctx *termui.ActionContext, _ any) error {
	items, err := a.tasks.List(a.ctx)
	if err != nil {
		return errors.Wrap(err, "load tasks")
	}
	sel := selectedIndex(ctx)
	if sel >= len(items) {
		sel = len(items) - 1
	}
	if sel < 0 {
		sel = 0
	}
	ctx.UpdateState(map[string]any{
		PathTasks:    items,
		PathSelected: sel,
	})
	return nil
}

func (a *Actions) add(ctx *termui.ActionContext, payload any) error {
	p, ok := payload.(AddTaskPayload)
	if !ok {
		return errors.Errorf("tasks/add: bad payload %T", payload)
	}
	if p.Title == "" {
		return errors.New("tasks/add: empty title")
	}
	if _, err := a.tasks.Add(a.ctx, p.Title, p.Project); err != nil {
		return err
	}
	return a.reload(ctx)
}

func (a *Actions) toggle(ctx *termui.ActionContext, payload any) error {
	id, ok := payload.(string)
	if !ok {
		return errors.Errorf("tasks/toggle: bad payload %T", payload)
	}
	if _, err := a.tasks.Toggle(a.ctx, id); err != nil {
		return err
	}
	return a.reload(ctx)
}

func (a *Actions) delete(ctx *termui.ActionContext, payload any) error {
	id, ok := payload.(string)
	if !ok {
		return errors.Errorf("tasks/delete: bad payload %T", payload)
	}
	// a running timer on the deleted task would book against a ghost row
	if timerTaskID(ctx) == id {
		if err := a.stopTimer(ctx, id); err != nil {
			return err
		}
	}
	if err := a.tasks.Delete(a.ctx, id); err != nil {
		return err
	}
	return a.reload(ctx)
}

func (a *Actions) selectTask(ctx *termui.ActionContext, payload any) error {
	idx, ok := payload.(int)
	if !ok {
		return errors.Errorf("tasks/select: bad payload %T", payload)
	}
	items := stateTasks(ctx)
	if len(items) == 0 {
		idx = 0
	} else if idx < 0 {
		idx = 0
	} else if idx >= len(items) {
		idx = len(items) - 1
	}
	ctx.UpdateState(map[string]any{PathSelected: idx})
	return nil
}

// timerToggle starts the timer on the given task, or stops it and books the
// elapsed time when it is already running there. Starting on a new task
// while running books the old task first.
func (a *Actions) timerToggle(ctx *termui.ActionContext, payload any) error {
	id, ok := payload.(string)
	if !ok {
		return errors.Errorf("timer/toggle: bad payload %T", payload)
	}

	running := timerTaskID(ctx)
	if running != "" {
		if err := a.stopTimer(ctx, running); err != nil {
			return err
		}
		if running == id {
			return a.reload(ctx)
		}
	}

	ctx.UpdateState(map[string]any{
		PathTimerID: id,
		PathTimerAt: a.now(),
	})
	return a.reload(ctx)
}

// stopTimer books elapsed seconds against the running task and clears the
// timer state.
func (a *Actions) stopTimer(ctx *termui.ActionContext, id string) error {
	startedAt, _ := ctx.GetState(PathTimerAt).(time.Time)
	elapsed := int64(a.now().Sub(startedAt) / time.Second)
	if err := a.tasks.AddSeconds(a.ctx, id, elapsed); err != nil {
		return errors.Wrap(err, "stop timer")
	}
	ctx.UpdateState(map[string]any{
		PathTimerID: "",
		PathTimerAt: time.Time{},
	})
	return nil
}

func (a *Actions) notify(_ *termui.ActionContext, payload any) error {
	text, ok := payload.(string)
	if !ok {
		return errors.Errorf("notify: bad payload %T", payload)
	}
	a.app.Notify(text, termui.DefaultStyle().Inverse(), 3*time.Second)
	return nil
}

func (a *Actions) reload(ctx *termui.ActionContext) error {
	return a.load(ctx, nil)
}

func stateTasks(ctx *termui.ActionContext) []task.Task {
	items, _ := ctx.GetState(PathTasks).([]task.Task)
	return items
}

func selectedIndex(ctx *termui.ActionContext) int {
	idx, _ := ctx.GetState(PathSelected).(int)
	return idx
}

func timerTaskID(ctx *termui.ActionContext) string {
	id, _ := ctx.GetState(PathTimerID).(string)
	return id
}
