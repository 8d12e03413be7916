package termui

import (
	"fmt"
	"log/slog"
	"sort"
)

// Renderer composes the component tree into the back buffer and flushes
// the diff to the terminal.
type Renderer struct {
	term   *Terminal
	logger *slog.Logger

	// Background is the cell every frame starts from.
	Background Style

	// Overlay, when set, draws over the finished composition just before
	// the flush (transient notifications).
	Overlay func(*Buffer)

	queue []*Node // reused collect queue
}

// NewRenderer creates a renderer over the given terminal. A nil logger
// falls back to slog.Default.
func NewRenderer(term *Terminal, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		term:       term,
		logger:     logger,
		Background: DefaultStyle(),
	}
}

// RenderFrame produces one fully consistent terminal update from the
// screen tree and, when open, the active dialog tree. It returns the
// number of bytes flushed; zero means the frame was identical to the
// previous one.
//
// The pass: clear the back buffer, draw screen chrome, collect the
// effectively visible nodes (running panel layout before descending into
// panel children), stable-sort by z-index, paint, then diff-flush. A
// failing paint skips that node for the frame and never aborts it.
func (r *Renderer) RenderFrame(ctx *App, screen Screen, dialog *Node) (int, error) {
	back := r.term.Back()
	back.Fill(NewCell(' ', r.Background))

	if screen != nil {
		screen.Render(ctx, back)
	}

	r.queue = r.queue[:0]
	collect := func(n *Node) {
		if n.Layout != nil {
			n.Layout.LayoutChildren(n)
		}
		r.queue = append(r.queue, n)
	}
	if screen != nil {
		for _, child := range screen.Root().Children() {
			VisitVisible(child, collect)
		}
	}
	if dialog != nil {
		VisitVisible(dialog, collect)
	}

	// ties keep traversal order, so equal-z children paint after their
	// own container. A node's paint level is inherited from its ancestors:
	// raising a container (a dialog) raises its whole subtree.
	sort.SliceStable(r.queue, func(i, j int) bool {
		return effectiveZ(r.queue[i]) < effectiveZ(r.queue[j])
	})

	for _, n := range r.queue {
		r.paint(ctx, back, n)
	}

	if r.Overlay != nil {
		r.Overlay(back)
	}

	return r.term.Flush()
}

// effectiveZ is the node's paint level: the maximum z-index along its
// ancestor chain.
func effectiveZ(n *Node) int {
	z := n.ZIndex
	for cur := n.parent; cur != nil; cur = cur.parent {
		if cur.ZIndex > z {
			z = cur.ZIndex
		}
	}
	return z
}

// paint invokes one node's draw routine with panic containment.
func (r *Renderer) paint(ctx *App, buf *Buffer, n *Node) {
	if n.Component == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			err := &ComponentRenderError{
				Component: fmt.Sprintf("%T", n.Component),
				Cause:     fmt.Errorf("panic: %v", rec),
			}
			r.logger.Error("component paint failed", "err", err)
			// the node may have left partial output; repaint everything
			// next frame
			r.term.Invalidate()
		}
	}()
	n.Component.Render(ctx, buf, n)
}

// PaintOrder exposes the z-sorted paint queue of the last frame. Intended
// for tests.
func (r *Renderer) PaintOrder() []*Node {
	return r.queue
}
