package termui

import (
	"bytes"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-runewidth"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Terminal manages the real terminal: raw mode, the front/back cell
// buffers, and diff-based flushing. The front buffer always mirrors what
// the terminal currently displays; the back buffer is composed freely and
// becomes the new front only after a successful flush.
type Terminal struct {
	front  *Buffer
	back   *Buffer
	writer io.Writer
	fd     int

	width  int
	height int

	oldState *term.State
	inRaw    bool

	resizeChan chan Size
	sigChan    chan os.Signal

	lastStyle Style        // last style emitted (diff flush optimization)
	out       bytes.Buffer // reusable output buffer
	forceFull bool         // next flush repaints every cell
}

// Size represents terminal dimensions.
type Size struct {
	Width  int
	Height int
}

// NewTerminal creates a terminal writing to the given writer.
// Pass nil to use os.Stdout.
func NewTerminal(w io.Writer) (*Terminal, error) {
	if w == nil {
		w = os.Stdout
	}

	fd := int(os.Stdout.Fd())
	width, height, err := terminalSize(fd)
	if err != nil {
		width, height = 80, 24
	}

	t := &Terminal{
		front:      NewBuffer(width, height),
		back:       NewBuffer(width, height),
		writer:     w,
		fd:         fd,
		width:      width,
		height:     height,
		resizeChan: make(chan Size, 1),
		sigChan:    make(chan os.Signal, 1),
		lastStyle:  DefaultStyle(),
		forceFull:  true, // no prior front state on the first frame
	}
	return t, nil
}

// NewTerminalWithSize creates a terminal with fixed dimensions instead of
// probing the tty. Used by tests and headless rendering.
func NewTerminalWithSize(w io.Writer, width, height int) *Terminal {
	if w == nil {
		w = os.Stdout
	}
	return &Terminal{
		front:      NewBuffer(width, height),
		back:       NewBuffer(width, height),
		writer:     w,
		fd:         -1,
		width:      width,
		height:     height,
		resizeChan: make(chan Size, 1),
		sigChan:    make(chan os.Signal, 1),
		lastStyle:  DefaultStyle(),
		forceFull:  true,
	}
}

func terminalSize(fd int) (int, int, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

// Size returns the current terminal dimensions.
func (t *Terminal) Size() Size {
	return Size{Width: t.width, Height: t.height}
}

// Back returns the back buffer for drawing.
func (t *Terminal) Back() *Buffer {
	return t.back
}

// ResizeChan returns a channel that receives size updates on terminal resize.
func (t *Terminal) ResizeChan() <-chan Size {
	return t.resizeChan
}

// EnterRawMode puts the terminal into raw mode and switches to the
// alternate screen.
func (t *Terminal) EnterRawMode() error {
	if t.inRaw {
		return nil
	}

	state, err := term.MakeRaw(t.fd)
	if err != nil {
		return errors.Wrap(err, "enter raw mode")
	}
	t.oldState = state
	t.inRaw = true

	signal.Notify(t.sigChan, syscall.SIGWINCH)
	go t.watchResize()

	t.writeString("\x1b[?1049h") // enter alternate screen
	t.writeString("\x1b[2J")     // clear so the front buffer matches reality
	t.writeString("\x1b[H")
	t.writeString("\x1b[?25l") // hide cursor

	return nil
}

// ExitRawMode restores the terminal to its original state.
// Safe to call more than once.
func (t *Terminal) ExitRawMode() error {
	if !t.inRaw {
		return nil
	}

	t.writeString("\x1b[0m")
	t.writeString("\x1b[?25h")   // show cursor
	t.writeString("\x1b[?1049l") // leave alternate screen

	signal.Stop(t.sigChan)

	if t.oldState != nil {
		if err := term.Restore(t.fd, t.oldState); err != nil {
			return errors.Wrap(err, "restore terminal")
		}
	}
	t.inRaw = false
	return nil
}

// watchResize probes the new size on SIGWINCH and publishes it on the
// resize channel. It touches no terminal state itself: the frame loop
// drains the channel and applies the size on the rendering thread, so the
// buffers have exactly one writer. A pending unseen size is stale and is
// replaced.
func (t *Terminal) watchResize() {
	for range t.sigChan {
		width, height, err := terminalSize(t.fd)
		if err != nil {
			continue
		}
		select {
		case <-t.resizeChan:
		default:
		}
		select {
		case t.resizeChan <- Size{Width: width, Height: height}:
		default:
		}
	}
}

// Resize applies a new terminal size: both buffers are resized and
// cleared and the next flush repaints everything. Must be called from the
// rendering thread, never from a signal handler.
func (t *Terminal) Resize(s Size) {
	if s.Width == t.width && s.Height == t.height {
		return
	}
	t.width = s.Width
	t.height = s.Height
	t.front.Resize(s.Width, s.Height)
	t.back.Resize(s.Width, s.Height)
	t.front.Clear()
	t.back.Clear()
	t.writeString("\x1b[2J")
	t.forceFull = true
}

// Invalidate forces the next flush to repaint every cell.
func (t *Terminal) Invalidate() {
	t.forceFull = true
}

// Flush writes the back buffer to the terminal.
// Only cells that differ from the front buffer are emitted: the cursor is
// repositioned only after skipped cells, and style escapes are emitted only
// when the style differs from the last one written. Returns the number of
// bytes written, which is zero when nothing changed.
func (t *Terminal) Flush() (int, error) {
	t.out.Reset()
	full := t.forceFull
	t.forceFull = false

	cursorX, cursorY := -1, -1
	changed := 0

	for y := 0; y < t.height; y++ {
		if !full && !t.back.RowDirty(y) {
			continue
		}
		for x := 0; x < t.width; x++ {
			backCell := t.back.Get(x, y)
			if !full && backCell == t.front.Get(x, y) {
				continue
			}

			// placeholder halves of wide runes are never emitted; the
			// terminal cursor already advanced past them
			if backCell.Rune == 0 {
				t.front.Set(x, y, backCell)
				continue
			}

			if cursorX != x || cursorY != y {
				t.out.WriteString("\x1b[")
				writeInt(&t.out, y+1)
				t.out.WriteByte(';')
				writeInt(&t.out, x+1)
				t.out.WriteByte('H')
			}

			t.writeCell(backCell)
			t.front.Set(x, y, backCell)
			changed++

			rw := runewidth.RuneWidth(backCell.Rune)
			if rw == 0 {
				rw = 1
			}
			cursorX = x + rw
			cursorY = y
		}
	}

	t.back.ClearDirtyRows()

	if changed == 0 {
		return 0, nil
	}

	t.out.WriteString("\x1b[0m")
	t.lastStyle = DefaultStyle()

	n, err := t.writer.Write(t.out.Bytes())
	if err != nil {
		return n, errors.Wrap(err, "flush")
	}
	return n, nil
}

// writeCell writes a cell's style (if changed) and rune to the output buffer.
func (t *Terminal) writeCell(cell Cell) {
	if !cell.Style.Equal(t.lastStyle) {
		t.writeStyle(cell.Style)
		t.lastStyle = cell.Style
	}
	t.out.WriteRune(cell.Rune)
}

// writeStyle writes the ANSI escape sequence for the given style.
func (t *Terminal) writeStyle(style Style) {
	t.out.WriteString("\x1b[0")

	if style.Attr.Has(AttrBold) {
		t.out.WriteString(";1")
	}
	if style.Attr.Has(AttrDim) {
		t.out.WriteString(";2")
	}
	if style.Attr.Has(AttrItalic) {
		t.out.WriteString(";3")
	}
	if style.Attr.Has(AttrUnderline) {
		t.out.WriteString(";4")
	}
	if style.Attr.Has(AttrInverse) {
		t.out.WriteString(";7")
	}

	t.writeColor(style.FG, true)
	t.writeColor(style.BG, false)

	t.out.WriteByte('m')
}

// writeColor writes the ANSI color parameters for a color.
func (t *Terminal) writeColor(c Color, fg bool) {
	switch c.Mode {
	case ColorDefault:
		if fg {
			t.out.WriteString(";39")
		} else {
			t.out.WriteString(";49")
		}
	case Color16:
		base := 30
		if !fg {
			base = 40
		}
		t.out.WriteByte(';')
		if c.Index >= 8 {
			writeInt(&t.out, base+60+int(c.Index-8))
		} else {
			writeInt(&t.out, base+int(c.Index))
		}
	case Color256:
		if fg {
			t.out.WriteString(";38;5;")
		} else {
			t.out.WriteString(";48;5;")
		}
		writeInt(&t.out, int(c.Index))
	case ColorRGB:
		if fg {
			t.out.WriteString(";38;2;")
		} else {
			t.out.WriteString(";48;2;")
		}
		writeInt(&t.out, int(c.R))
		t.out.WriteByte(';')
		writeInt(&t.out, int(c.G))
		t.out.WriteByte(';')
		writeInt(&t.out, int(c.B))
	}
}

func (t *Terminal) writeString(s string) {
	io.WriteString(t.writer, s)
}

// writeInt writes an integer to the buffer without allocation.
func writeInt(buf *bytes.Buffer, n int) {
	if n == 0 {
		buf.WriteByte('0')
		return
	}
	if n < 0 {
		buf.WriteByte('-')
		n = -n
	}
	var scratch [10]byte
	i := len(scratch)
	for n > 0 {
		i--
		scratch[i] = byte('0' + n%10)
		n /= 10
	}
	buf.Write(scratch[i:])
}
