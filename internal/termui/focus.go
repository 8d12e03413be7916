package termui

import "sort"

// FocusManager owns the single focused-node reference and tab navigation.
// It never caches the focusable list: every TabNavigate recomputes it from
// the live tree, which is cheap at the tree sizes involved and immune to
// stale-cache bugs.
type FocusManager struct {
	app     *App
	scope   func() *Node // root the tab order is computed over
	current *Node
}

// NewFocusManager creates a focus manager. scope returns the root node tab
// order is computed over (the active dialog when one is open, otherwise
// the current screen).
func NewFocusManager(app *App, scope func() *Node) *FocusManager {
	return &FocusManager{app: app, scope: scope}
}

// Current returns the focused node, or nil.
func (f *FocusManager) Current() *Node {
	return f.current
}

// SetFocus moves focus to the given node, or clears it if nil. A candidate
// that is not effectively visible, not focusable, or outside the current
// scope leaves focus unchanged: while a dialog is open nothing behind it
// can take focus, and a node detached from the tree can never hold it.
// The previous node's blur hook runs before the new node's focus hook.
func (f *FocusManager) SetFocus(n *Node) {
	if n != nil && (!n.EffectivelyVisible() || !n.Focusable || !f.inScope(n)) {
		return
	}
	if f.current == n {
		return
	}

	if prev := f.current; prev != nil {
		prev.focused = false
		if l, ok := prev.Component.(FocusListener); ok {
			l.OnBlur(f.app, prev)
		}
	}

	f.current = n
	if n == nil {
		return
	}
	n.focused = true
	if l, ok := n.Component.(FocusListener); ok {
		l.OnFocus(f.app, n)
	}
}

// TabNavigate advances focus through the focusable, effectively visible
// nodes of the current scope in row-major order (ascending Y, then X),
// wrapping at either end. When nothing is focused, or the focused node has
// left the scope, focus lands on the first (or last, reversed) candidate.
func (f *FocusManager) TabNavigate(reverse bool) {
	var root *Node
	if f.scope != nil {
		root = f.scope()
	}
	candidates := f.tabOrder(root)
	if len(candidates) == 0 {
		return
	}

	idx := -1
	for i, n := range candidates {
		if n == f.current {
			idx = i
			break
		}
	}

	var next *Node
	switch {
	case idx < 0 && reverse:
		next = candidates[len(candidates)-1]
	case idx < 0:
		next = candidates[0]
	case reverse:
		next = candidates[(idx-1+len(candidates))%len(candidates)]
	default:
		next = candidates[(idx+1)%len(candidates)]
	}
	f.SetFocus(next)
}

// inScope reports whether the node's ancestor chain reaches the current
// scope root.
func (f *FocusManager) inScope(n *Node) bool {
	if f.scope == nil {
		return true
	}
	root := f.scope()
	if root == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.parent {
		if cur == root {
			return true
		}
	}
	return false
}

// tabOrder collects the scope's focusable nodes in row-major order.
func (f *FocusManager) tabOrder(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var out []*Node
	VisitVisible(root, func(n *Node) {
		if n.Focusable {
			out = append(out, n)
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
