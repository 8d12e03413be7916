package termui

import (
	"io"
	"unicode/utf8"

	"github.com/muesli/cancelreader"
	"github.com/pkg/errors"
)

// KeyType identifies a decoded key event.
type KeyType int

const (
	KeyRune KeyType = iota
	KeyEnter
	KeyTab
	KeyBackTab
	KeyBackspace
	KeyDelete
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Key is one keyboard event. For KeyRune, Rune holds the character; Ctrl
// marks control-modified letters (Rune is the lowercase letter).
type Key struct {
	Type KeyType
	Rune rune
	Ctrl bool
}

// IsCtrl reports whether the key is Ctrl plus the given letter.
func (k Key) IsCtrl(r rune) bool {
	return k.Ctrl && k.Type == KeyRune && k.Rune == r
}

// inputQueueCap bounds the hand-off queue between the reader goroutine and
// the frame loop.
const inputQueueCap = 100

// InputReader polls a raw input stream on a background goroutine and
// decodes bytes into key events. The bounded queue is the only
// synchronized hand-off between the reader and the frame loop; when it
// fills, the oldest queued event is dropped so the producer never blocks.
type InputReader struct {
	keys   chan Key
	reader cancelreader.CancelReader
	done   chan struct{}
}

// NewInputReader wraps the given stream (usually os.Stdin) in a cancelable
// reader so Stop can unblock a pending read.
func NewInputReader(r io.Reader) (*InputReader, error) {
	cr, err := cancelreader.NewReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "input reader")
	}
	return &InputReader{
		keys:   make(chan Key, inputQueueCap),
		reader: cr,
		done:   make(chan struct{}),
	}, nil
}

// Keys returns the event queue.
func (ir *InputReader) Keys() <-chan Key {
	return ir.keys
}

// Start begins polling on a background goroutine.
func (ir *InputReader) Start() {
	go ir.loop()
}

// Stop cancels the pending read and waits for the goroutine to unwind.
func (ir *InputReader) Stop() {
	ir.reader.Cancel()
	<-ir.done
}

func (ir *InputReader) loop() {
	defer close(ir.done)

	var pending []byte
	chunk := make([]byte, 256)
	for {
		n, err := ir.reader.Read(chunk)
		if n > 0 {
			pending = append(pending, chunk[:n]...)
			keys, consumed := decodeKeys(pending, false)
			pending = pending[consumed:]
			// a read that ends exactly at a bare ESC is the Escape key,
			// not the prefix of a sequence still in flight: the terminal
			// delivers a real sequence within one burst
			if len(pending) == 1 && pending[0] == 0x1b {
				flushed, fn := decodeKeys(pending, true)
				keys = append(keys, flushed...)
				pending = pending[fn:]
			}
			for _, k := range keys {
				ir.push(k)
			}
		}
		if err != nil {
			// flush a trailing partial sequence as-is before unwinding
			if len(pending) > 0 {
				keys, _ := decodeKeys(pending, true)
				for _, k := range keys {
					ir.push(k)
				}
			}
			return
		}
	}
}

// push enqueues a key, dropping the oldest queued event when full.
func (ir *InputReader) push(k Key) {
	for {
		select {
		case ir.keys <- k:
			return
		default:
		}
		select {
		case <-ir.keys:
		default:
		}
	}
}

// decodeKeys translates raw terminal bytes into key events. It returns the
// events and the number of bytes consumed; a trailing partial escape or
// UTF-8 sequence is left unconsumed unless eof is set.
func decodeKeys(buf []byte, eof bool) ([]Key, int) {
	var keys []Key
	i := 0
	for i < len(buf) {
		b := buf[i]

		if b == 0x1b {
			k, n, complete := decodeEscape(buf[i:])
			if !complete && !eof {
				return keys, i
			}
			keys = append(keys, k)
			i += n
			continue
		}

		switch {
		case b == '\r' || b == '\n':
			keys = append(keys, Key{Type: KeyEnter})
			i++
		case b == '\t':
			keys = append(keys, Key{Type: KeyTab})
			i++
		case b == 0x7f || b == 0x08:
			keys = append(keys, Key{Type: KeyBackspace})
			i++
		case b < 0x20:
			keys = append(keys, Key{Type: KeyRune, Rune: rune(b + 0x60), Ctrl: true})
			i++
		default:
			r, size := utf8.DecodeRune(buf[i:])
			if r == utf8.RuneError && size == 1 && !utf8.FullRune(buf[i:]) && !eof {
				return keys, i
			}
			keys = append(keys, Key{Type: KeyRune, Rune: r})
			i += size
		}
	}
	return keys, i
}

// decodeEscape parses one escape sequence starting at buf[0] == ESC.
// Returns the key, bytes consumed, and whether the sequence was complete.
func decodeEscape(buf []byte) (Key, int, bool) {
	if len(buf) == 1 {
		// a bare ESC; could be the start of a sequence still in flight
		return Key{Type: KeyEscape}, 1, false
	}

	if buf[1] != '[' && buf[1] != 'O' {
		// ESC followed by an unrelated byte: treat as a lone escape
		return Key{Type: KeyEscape}, 1, true
	}

	if len(buf) < 3 {
		return Key{Type: KeyEscape}, 1, false
	}

	switch buf[2] {
	case 'A':
		return Key{Type: KeyUp}, 3, true
	case 'B':
		return Key{Type: KeyDown}, 3, true
	case 'C':
		return Key{Type: KeyRight}, 3, true
	case 'D':
		return Key{Type: KeyLeft}, 3, true
	case 'H':
		return Key{Type: KeyHome}, 3, true
	case 'F':
		return Key{Type: KeyEnd}, 3, true
	case 'Z':
		return Key{Type: KeyBackTab}, 3, true
	}

	// CSI number ~ sequences (delete, page up/down, home/end variants)
	if buf[2] >= '0' && buf[2] <= '9' {
		j := 2
		for j < len(buf) && buf[j] >= '0' && buf[j] <= '9' {
			j++
		}
		if j >= len(buf) {
			return Key{Type: KeyEscape}, 1, false
		}
		if buf[j] == '~' {
			switch string(buf[2:j]) {
			case "1", "7":
				return Key{Type: KeyHome}, j + 1, true
			case "3":
				return Key{Type: KeyDelete}, j + 1, true
			case "4", "8":
				return Key{Type: KeyEnd}, j + 1, true
			case "5":
				return Key{Type: KeyPageUp}, j + 1, true
			case "6":
				return Key{Type: KeyPageDown}, j + 1, true
			}
		}
		// unrecognized CSI: swallow it rather than leak bytes as runes
		return Key{Type: KeyEscape}, j + 1, true
	}

	return Key{Type: KeyEscape}, 1, true
}
