package termui

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

// hookScreen records lifecycle calls into a shared log.
type hookScreen struct {
	BaseScreen
	log     *[]string
	tag     string
	initErr error
}

func newHookScreen(log *[]string, tag string) *hookScreen {
	return &hookScreen{BaseScreen: NewBaseScreen(), log: log, tag: tag}
}

func (s *hookScreen) Init(*App) error {
	*s.log = append(*s.log, "init:"+s.tag)
	return s.initErr
}

func (s *hookScreen) OnExit(*App)   { *s.log = append(*s.log, "exit:"+s.tag) }
func (s *hookScreen) OnResume(*App) { *s.log = append(*s.log, "resume:"+s.tag) }

func newTestApp(t *testing.T) *App {
	t.Helper()
	term := NewTerminalWithSize(io.Discard, 40, 10)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAppWithTerminal(term, nil, logger)
}

func assertLog(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("log %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("log %v, want %v", got, want)
		}
	}
}

func TestScreenStack(t *testing.T) {
	t.Run("push and pop hook order", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		a := newHookScreen(&log, "a")
		b := newHookScreen(&log, "b")

		if err := app.PushScreen(a); err != nil {
			t.Fatal(err)
		}
		if err := app.PushScreen(b); err != nil {
			t.Fatal(err)
		}
		if !app.PopScreen() {
			t.Fatal("pop failed")
		}

		assertLog(t, log, "init:a", "exit:a", "init:b", "exit:b", "resume:a")
		if app.CurrentScreen() != a {
			t.Error("a should be current again")
		}
	})

	t.Run("pop on empty stack", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		a := newHookScreen(&log, "a")
		if err := app.PushScreen(a); err != nil {
			t.Fatal(err)
		}

		if app.PopScreen() {
			t.Error("pop with nothing beneath should report false")
		}
		if app.CurrentScreen() != a {
			t.Error("failed pop must leave the current screen in place")
		}
	})

	t.Run("init failure is wrapped", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		bad := newHookScreen(&log, "bad")
		bad.initErr = io.ErrUnexpectedEOF

		err := app.PushScreen(bad)
		var initErr *InitializationError
		if !errors.As(err, &initErr) {
			t.Fatalf("got %v, want InitializationError", err)
		}
	})

	t.Run("focus restored across push and pop", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		a := newHookScreen(&log, "a")
		if err := app.PushScreen(a); err != nil {
			t.Fatal(err)
		}
		fa := focusableAt(0, 0)
		a.Root().AddChild(fa)
		app.Focus().SetFocus(fa)

		b := newHookScreen(&log, "b")
		if err := app.PushScreen(b); err != nil {
			t.Fatal(err)
		}
		if app.Focus().Current() != nil {
			t.Error("focus should clear when a new screen is pushed")
		}

		if !app.PopScreen() {
			t.Fatal("pop failed")
		}
		if app.Focus().Current() != fa {
			t.Error("focus not restored to the resumed screen's node")
		}
	})

	t.Run("dialog takes and returns focus", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		a := newHookScreen(&log, "a")
		if err := app.PushScreen(a); err != nil {
			t.Fatal(err)
		}
		fa := focusableAt(0, 0)
		a.Root().AddChild(fa)
		app.Focus().SetFocus(fa)

		dialog := NewNode()
		field := focusableAt(1, 1)
		dialog.AddChild(field)
		app.ShowDialog(dialog)

		if app.ActiveDialog() != dialog {
			t.Fatal("dialog not active")
		}
		if app.Focus().Current() != field {
			t.Error("opening a dialog should focus its first focusable node")
		}

		// tab order is scoped to the dialog while it is open
		app.Focus().TabNavigate(false)
		if app.Focus().Current() != field {
			t.Error("tab escaped the dialog scope")
		}

		app.CloseDialog()
		if app.ActiveDialog() != nil {
			t.Error("dialog still active after close")
		}
		if app.Focus().Current() != fa {
			t.Error("focus not returned to the screen after dialog close")
		}
	})

	t.Run("closing over a detached saved node falls back", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		a := newHookScreen(&log, "a")
		if err := app.PushScreen(a); err != nil {
			t.Fatal(err)
		}
		old := focusableAt(0, 0)
		a.Root().AddChild(old)
		app.Focus().SetFocus(old)

		dialog := NewNode()
		dialog.AddChild(focusableAt(0, 0))
		app.ShowDialog(dialog)

		// the screen rebuilds its rows while the dialog is open
		a.Root().RemoveChild(old)
		replacement := focusableAt(0, 0)
		a.Root().AddChild(replacement)

		app.CloseDialog()
		if got := app.Focus().Current(); got == old {
			t.Fatal("focus restored to a node no longer in the tree")
		} else if got != replacement {
			t.Error("focus should land on the scope's first candidate")
		}
	})

	t.Run("dialog updates cannot steal focus from the dialog", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		a := newHookScreen(&log, "a")
		if err := app.PushScreen(a); err != nil {
			t.Fatal(err)
		}
		row := focusableAt(0, 0)
		a.Root().AddChild(row)
		app.Focus().SetFocus(row)

		dialog := NewNode()
		field := focusableAt(0, 0)
		dialog.AddChild(field)
		app.ShowDialog(dialog)
		if app.Focus().Current() != field {
			t.Fatal("setup")
		}

		app.Focus().SetFocus(row)
		if app.Focus().Current() != field {
			t.Error("a screen node took focus while a dialog was open")
		}
	})

	t.Run("stacked dialogs close in order", func(t *testing.T) {
		app := newTestApp(t)
		var log []string
		a := newHookScreen(&log, "a")
		if err := app.PushScreen(a); err != nil {
			t.Fatal(err)
		}

		d1 := NewNode()
		f1 := focusableAt(0, 0)
		d1.AddChild(f1)
		d2 := NewNode()
		f2 := focusableAt(0, 0)
		d2.AddChild(f2)

		app.ShowDialog(d1)
		app.ShowDialog(d2)
		if app.ActiveDialog() != d2 {
			t.Fatal("topmost dialog should be active")
		}
		if app.Focus().Current() != f2 {
			t.Error("focus should be inside the topmost dialog")
		}

		app.CloseDialog()
		if app.ActiveDialog() != d1 {
			t.Error("closing the top dialog should reveal the one beneath")
		}
		if app.Focus().Current() != f1 {
			t.Error("focus should return to the underlying dialog")
		}

		app.CloseDialog()
		app.CloseDialog() // extra close must be a no-op
		if app.ActiveDialog() != nil {
			t.Error("all dialogs should be closed")
		}
	})
}
