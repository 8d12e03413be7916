package termui

import "github.com/mattn/go-runewidth"

// Label is a single line of styled text.
type Label struct {
	Text  string
	Style Style
}

// NewLabel creates a label node sized to its text.
func NewLabel(text string, style Style) *Node {
	n := NewNode()
	n.Component = &Label{Text: text, Style: style}
	n.Width = runewidth.StringWidth(text)
	n.Height = 1
	return n
}

// SetText replaces the label text on a node created by NewLabel.
func (l *Label) SetText(n *Node, text string) {
	l.Text = text
	n.Width = runewidth.StringWidth(text)
}

// Render implements Component.
func (l *Label) Render(_ *App, buf *Buffer, n *Node) {
	buf.WriteStringClipped(n.X, n.Y, l.Text, l.Style, n.X+n.Width)
}

// TextInput is an editable single-line input field.
type TextInput struct {
	Value       []rune
	Cursor      int
	Placeholder string

	Style        Style
	FocusedStyle Style

	// OnSubmit fires on Enter with the current value.
	OnSubmit func(ctx *App, value string)
}

// NewTextInput creates a focusable input node of the given width.
func NewTextInput(width int, placeholder string) *Node {
	n := NewNode()
	n.Component = &TextInput{
		Placeholder:  placeholder,
		Style:        DefaultStyle().Dim(),
		FocusedStyle: DefaultStyle(),
	}
	n.Width = width
	n.Height = 1
	n.Focusable = true
	return n
}

// String returns the current value.
func (t *TextInput) String() string {
	return string(t.Value)
}

// SetValue replaces the value and moves the cursor to the end.
func (t *TextInput) SetValue(s string) {
	t.Value = []rune(s)
	t.Cursor = len(t.Value)
}

// Render implements Component.
func (t *TextInput) Render(_ *App, buf *Buffer, n *Node) {
	style := t.Style
	if n.IsFocused() {
		style = t.FocusedStyle
	}
	buf.FillRect(n.X, n.Y, n.Width, 1, NewCell(' ', style))

	if len(t.Value) == 0 && !n.IsFocused() {
		buf.WriteStringClipped(n.X, n.Y, t.Placeholder, t.Style.Dim(), n.X+n.Width)
		return
	}

	// keep the cursor in view on long values, scrolling in display
	// columns so wide runes shift the window by their full width
	cursorCol := runeColumns(t.Value[:t.Cursor])
	start, startCol := 0, 0
	for cursorCol-startCol >= n.Width && start < len(t.Value) {
		startCol += cellWidth(t.Value[start])
		start++
	}
	visible := t.Value[start:]
	buf.WriteStringClipped(n.X, n.Y, string(visible), style, n.X+n.Width)

	if n.IsFocused() {
		cx := n.X + cursorCol - startCol
		if cx < n.X+n.Width {
			cell := buf.Get(cx, n.Y)
			if cell.Rune == 0 {
				cell.Rune = ' '
			}
			cell.Style = style.Inverse()
			buf.Set(cx, n.Y, cell)
		}
	}
}

// cellWidth is the display width of one rune, never less than one cell.
func cellWidth(r rune) int {
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	return 1
}

// runeColumns sums display widths.
func runeColumns(rs []rune) int {
	cols := 0
	for _, r := range rs {
		cols += cellWidth(r)
	}
	return cols
}

// HandleInput implements InputHandler.
func (t *TextInput) HandleInput(ctx *App, _ *Node, k Key) bool {
	switch k.Type {
	case KeyRune:
		if k.Ctrl {
			return false
		}
		t.Value = append(t.Value[:t.Cursor], append([]rune{k.Rune}, t.Value[t.Cursor:]...)...)
		t.Cursor++
	case KeyBackspace:
		if t.Cursor == 0 {
			return false
		}
		t.Value = append(t.Value[:t.Cursor-1], t.Value[t.Cursor:]...)
		t.Cursor--
	case KeyDelete:
		if t.Cursor >= len(t.Value) {
			return false
		}
		t.Value = append(t.Value[:t.Cursor], t.Value[t.Cursor+1:]...)
	case KeyLeft:
		if t.Cursor > 0 {
			t.Cursor--
		}
	case KeyRight:
		if t.Cursor < len(t.Value) {
			t.Cursor++
		}
	case KeyHome:
		t.Cursor = 0
	case KeyEnd:
		t.Cursor = len(t.Value)
	case KeyEnter:
		if t.OnSubmit != nil {
			t.OnSubmit(ctx, string(t.Value))
			return true
		}
		return false
	default:
		return false
	}
	if ctx != nil {
		ctx.MarkDirty()
	}
	return true
}

// Button is a focusable action trigger.
type Button struct {
	Label string

	Style        Style
	FocusedStyle Style

	OnPress func(ctx *App)
}

// NewButton creates a focusable button node sized to its label plus
// brackets.
func NewButton(label string, onPress func(ctx *App)) *Node {
	n := NewNode()
	n.Component = &Button{
		Label:        label,
		Style:        DefaultStyle(),
		FocusedStyle: DefaultStyle().Inverse(),
		OnPress:      onPress,
	}
	n.Width = runewidth.StringWidth(label) + 4
	n.Height = 1
	n.Focusable = true
	return n
}

// Render implements Component.
func (b *Button) Render(_ *App, buf *Buffer, n *Node) {
	style := b.Style
	if n.IsFocused() {
		style = b.FocusedStyle
	}
	buf.WriteStringClipped(n.X, n.Y, "[ "+b.Label+" ]", style, n.X+n.Width)
}

// HandleInput implements InputHandler.
func (b *Button) HandleInput(ctx *App, _ *Node, k Key) bool {
	if k.Type == KeyEnter || (k.Type == KeyRune && k.Rune == ' ' && !k.Ctrl) {
		if b.OnPress != nil {
			b.OnPress(ctx)
		}
		return true
	}
	return false
}
