package termui

import "fmt"

// Screen is the contract application screens implement. The engine
// composes the screen's node tree automatically; Render is for
// non-component chrome only and is the one sanctioned direct draw call
// outside the tree walk.
type Screen interface {
	// Init runs when the screen becomes current. A failure propagates out
	// of PushScreen as an InitializationError.
	Init(ctx *App) error

	// Render draws screen chrome directly into the back buffer, before the
	// component tree is painted over it.
	Render(ctx *App, buf *Buffer)

	// HandleInput receives keys not consumed by a dialog or the focused
	// node. Returning true stops dispatch.
	HandleInput(ctx *App, k Key) bool

	// OnExit runs when the screen stops being current (pushed over or
	// popped off).
	OnExit(ctx *App)

	// OnResume runs when the screen becomes current again after a pop.
	OnResume(ctx *App)

	// Root returns the screen's component tree root.
	Root() *Node
}

// BaseScreen provides no-op defaults for the Screen contract and owns the
// root node. Embed it and override what the screen needs.
type BaseScreen struct {
	root *Node
}

// NewBaseScreen creates a base screen with an empty root node.
func NewBaseScreen() BaseScreen {
	return BaseScreen{root: NewNode()}
}

func (b *BaseScreen) Init(*App) error            { return nil }
func (b *BaseScreen) Render(*App, *Buffer)       {}
func (b *BaseScreen) HandleInput(*App, Key) bool { return false }
func (b *BaseScreen) OnExit(*App)                {}
func (b *BaseScreen) OnResume(*App)              {}
func (b *BaseScreen) Root() *Node                { return b.root }

// CurrentScreen returns the screen currently shown, or nil.
func (a *App) CurrentScreen() Screen {
	return a.current
}

// ActiveDialog returns the topmost modal dialog root, or nil when no
// dialog is open. While non-nil it is the exclusive focus and input
// target.
func (a *App) ActiveDialog() *Node {
	if len(a.dialogs) == 0 {
		return nil
	}
	return a.dialogs[len(a.dialogs)-1]
}

// PushScreen makes s the current screen, stacking the previous one. The
// previous screen's focused node is remembered and restored when the
// stack pops back to it. An Init failure propagates to the caller.
func (a *App) PushScreen(s Screen) error {
	if prev := a.current; prev != nil {
		a.savedFocus[prev] = a.focus.Current()
		a.focus.SetFocus(nil)
		prev.OnExit(a)
		a.screens = append(a.screens, prev)
	} else {
		a.focus.SetFocus(nil)
	}

	a.current = s
	a.MarkDirty()

	if err := s.Init(a); err != nil {
		return &InitializationError{Screen: fmt.Sprintf("%T", s), Cause: err}
	}
	return nil
}

// PopScreen tears down the current screen and resumes the one beneath it,
// restoring that screen's remembered focus. Returns false when there is
// nothing stacked to pop to.
func (a *App) PopScreen() bool {
	if len(a.screens) == 0 {
		return false
	}

	a.focus.SetFocus(nil)
	if a.current != nil {
		a.current.OnExit(a)
		delete(a.savedFocus, a.current)
	}

	a.current = a.screens[len(a.screens)-1]
	a.screens = a.screens[:len(a.screens)-1]
	a.current.OnResume(a)

	a.restoreFocus(a.savedFocus[a.current])
	delete(a.savedFocus, a.current)

	a.MarkDirty()
	return true
}

// restoreFocus hands focus back to a previously saved node. A node that
// has since been detached or hidden cannot take focus; fall back to the
// first candidate of the revealed scope rather than leaving a ghost.
func (a *App) restoreFocus(saved *Node) {
	if saved != nil {
		a.focus.SetFocus(saved)
	}
	if a.focus.Current() == nil {
		a.focus.TabNavigate(false)
	}
}

// ShowDialog opens a modal dialog. The currently focused node is saved and
// a fresh focus is computed over the dialog's subtree only.
func (a *App) ShowDialog(root *Node) {
	a.dialogFocus = append(a.dialogFocus, a.focus.Current())
	a.focus.SetFocus(nil)
	a.dialogs = append(a.dialogs, root)
	a.focus.TabNavigate(false)
	a.MarkDirty()
}

// CloseDialog closes the topmost dialog, handing focus to the next dialog
// on the stack or, when none remain, back to the node that was focused
// before the dialog opened.
func (a *App) CloseDialog() {
	if len(a.dialogs) == 0 {
		return
	}

	a.focus.SetFocus(nil)
	a.dialogs = a.dialogs[:len(a.dialogs)-1]

	saved := a.dialogFocus[len(a.dialogFocus)-1]
	a.dialogFocus = a.dialogFocus[:len(a.dialogFocus)-1]
	a.restoreFocus(saved)

	a.MarkDirty()
}

// focusScope is the root tab order is computed over: the active dialog's
// subtree when a dialog is open, otherwise the current screen's tree.
func (a *App) focusScope() *Node {
	if d := a.ActiveDialog(); d != nil {
		return d
	}
	if a.current != nil {
		return a.current.Root()
	}
	return nil
}
