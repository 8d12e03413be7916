package termui

import (
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
)

// frameInterval is the fixed target duration of one frame-loop tick.
const frameInterval = 33 * time.Millisecond

// App is the engine context: it owns the terminal, the renderer, the
// store, focus, the screen and dialog stacks, and the frame loop. All
// engine state is written only from the frame-loop goroutine; the input
// reader's bounded queue is the sole synchronized hand-off into it.
//
// One App is created at startup and passed by reference into every screen,
// component, and action handler; there are no package-level globals.
type App struct {
	term     *Terminal
	renderer *Renderer
	store    *Store
	focus    *FocusManager
	input    *InputReader
	logger   *slog.Logger

	current     Screen
	screens     []Screen
	savedFocus  map[Screen]*Node
	dialogs     []*Node
	dialogFocus []*Node

	notices []notice

	dirty   bool
	running bool
}

type notice struct {
	text  string
	style Style
	until time.Time
}

// NewApp creates an app bound to the real terminal and stdin. A nil
// logger falls back to slog.Default.
func NewApp(logger *slog.Logger) (*App, error) {
	term, err := NewTerminal(nil)
	if err != nil {
		return nil, err
	}
	input, err := NewInputReader(os.Stdin)
	if err != nil {
		return nil, err
	}
	return newApp(term, input, logger), nil
}

// NewAppWithTerminal creates an app over a caller-supplied terminal and
// input reader. Used by tests and headless tooling; input may be nil.
func NewAppWithTerminal(term *Terminal, input *InputReader, logger *slog.Logger) *App {
	return newApp(term, input, logger)
}

func newApp(term *Terminal, input *InputReader, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		term:       term,
		input:      input,
		logger:     logger,
		store:      NewStore(logger),
		savedFocus: make(map[Screen]*Node),
	}
	a.renderer = NewRenderer(term, logger)
	a.renderer.Overlay = a.drawNotices
	a.focus = NewFocusManager(a, a.focusScope)
	return a
}

// Store returns the reactive state store.
func (a *App) Store() *Store {
	return a.store
}

// Focus returns the focus manager.
func (a *App) Focus() *FocusManager {
	return a.focus
}

// Terminal returns the underlying terminal.
func (a *App) Terminal() *Terminal {
	return a.term
}

// Renderer returns the renderer, for theme configuration.
func (a *App) Renderer() *Renderer {
	return a.renderer
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Size returns the current terminal size.
func (a *App) Size() Size {
	return a.term.Size()
}

// MarkDirty requests a redraw on the next tick.
func (a *App) MarkDirty() {
	a.dirty = true
}

// Dispatch runs a store action and, when it succeeds, marks the next
// frame dirty.
func (a *App) Dispatch(name string, payload any) DispatchResult {
	res := a.store.Dispatch(name, payload)
	if res.Success {
		a.dirty = true
	}
	return res
}

// Notify shows a transient message over the bottom row of the screen for
// the given duration. Expired notices are swept by frame housekeeping.
func (a *App) Notify(text string, style Style, d time.Duration) {
	a.notices = append(a.notices, notice{
		text:  text,
		style: style,
		until: time.Now().Add(d),
	})
	a.dirty = true
}

// drawNotices paints active notices, newest at the bottom row.
func (a *App) drawNotices(buf *Buffer) {
	row := buf.Height() - 1
	for i := len(a.notices) - 1; i >= 0 && row >= 0; i-- {
		n := a.notices[i]
		buf.FillRect(0, row, buf.Width(), 1, NewCell(' ', n.style))
		buf.WriteStringClipped(1, row, n.text, n.style, buf.Width()-1)
		row--
	}
}

// sweepNotices drops expired notices; reports whether any were removed.
func (a *App) sweepNotices(now time.Time) bool {
	kept := a.notices[:0]
	for _, n := range a.notices {
		if n.until.After(now) {
			kept = append(kept, n)
		}
	}
	removed := len(kept) != len(a.notices)
	a.notices = kept
	return removed
}

// Stop signals the frame loop to stop after the current tick.
func (a *App) Stop() {
	a.running = false
}

// Run enters raw mode and drives the frame loop until Stop is called or a
// fatal error escapes a tick. Terminal state is always restored, even on a
// fatal error.
func (a *App) Run() error {
	if err := a.term.EnterRawMode(); err != nil {
		return err
	}
	defer a.term.ExitRawMode()

	if a.input != nil {
		a.input.Start()
		defer a.input.Stop()
	}

	a.running = true
	a.dirty = true

	var fatal error
	for a.running {
		start := time.Now()

		if err := a.safeTick(); err != nil {
			// unclassified failure: report and stop; classified errors
			// were already contained further down
			a.logger.Error("fatal frame error", "err", err)
			fatal = err
			a.running = false
			break
		}

		// fixed-interval pacing; never a negative sleep
		remaining := frameInterval - time.Since(start)
		if remaining < time.Millisecond {
			remaining = time.Millisecond
		}
		time.Sleep(remaining)
	}

	return fatal
}

// safeTick runs one tick with the outermost fatal-error boundary.
func (a *App) safeTick() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in frame loop: %v", r)
		}
	}()
	return a.tick()
}

// tick is one frame-loop iteration: drain input, run housekeeping, render
// when something changed.
func (a *App) tick() error {
	processed := false

drain:
	for a.input != nil {
		select {
		case k := <-a.input.Keys():
			a.dispatchKey(k)
			processed = true
		default:
			break drain
		}
	}

	select {
	case s := <-a.term.ResizeChan():
		a.term.Resize(s)
		a.dirty = true
	default:
	}

	if a.sweepNotices(time.Now()) {
		a.dirty = true
	}

	if processed || a.dirty {
		if err := a.RenderFrame(); err != nil {
			return err
		}
	}
	return nil
}

// RenderFrame renders one frame immediately and clears the dirty flag.
func (a *App) RenderFrame() error {
	_, err := a.renderer.RenderFrame(a, a.current, a.ActiveDialog())
	if err != nil {
		return err
	}
	a.dirty = false
	return nil
}

// dispatchKey routes one key event: the active dialog first, then the
// focused node, then the current screen. The first handler reporting
// handled stops the chain. Unhandled Tab/Shift-Tab drive focus
// navigation.
func (a *App) dispatchKey(k Key) {
	if d := a.ActiveDialog(); d != nil {
		if h, ok := d.Component.(InputHandler); ok && h.HandleInput(a, d, k) {
			return
		}
	}
	if f := a.focus.Current(); f != nil {
		if h, ok := f.Component.(InputHandler); ok && h.HandleInput(a, f, k) {
			return
		}
	}
	if a.current != nil && a.current.HandleInput(a, k) {
		return
	}

	switch k.Type {
	case KeyTab:
		a.focus.TabNavigate(false)
		a.dirty = true
	case KeyBackTab:
		a.focus.TabNavigate(true)
		a.dirty = true
	}
}
