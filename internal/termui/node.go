package termui

// Node is one element of the component tree. Screens, dialogs, panels and
// widgets all share this shape; behavior attaches through the optional
// Component and Layout fields.
//
// Ownership is a strict tree: a node has at most one parent and its
// children are exclusively owned. The parent reference exists for layout
// and visibility queries only.
type Node struct {
	X, Y          int
	Width, Height int
	Visible       bool
	ZIndex        int
	Focusable     bool

	// Component supplies draw/input/focus behavior. Optional; a bare node
	// is a pure container.
	Component Component

	// Layout arranges children before they are visited. Optional; set on
	// panel nodes.
	Layout Layout

	parent   *Node
	children []*Node
	focused  bool
}

// Component is the draw behavior of a node. Input and focus hooks are
// separate optional interfaces checked at dispatch time.
type Component interface {
	Render(ctx *App, buf *Buffer, n *Node)
}

// InputHandler is implemented by components that consume key events.
// Returning true stops further dispatch of the key.
type InputHandler interface {
	HandleInput(ctx *App, n *Node, k Key) bool
}

// FocusListener is implemented by components that react to gaining or
// losing keyboard focus.
type FocusListener interface {
	OnFocus(ctx *App, n *Node)
	OnBlur(ctx *App, n *Node)
}

// Layout arranges a node's children within its bounds.
type Layout interface {
	LayoutChildren(n *Node)
}

// NewNode creates a visible node with no behavior.
func NewNode() *Node {
	return &Node{Visible: true}
}

// AddChild appends a child to the node. A child already owned by another
// node is detached from it first, keeping ownership a strict tree.
func (n *Node) AddChild(child *Node) *Node {
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return n
}

// RemoveChild detaches a child from the node.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			child.parent = nil
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// IsFocused reports whether this node currently holds keyboard focus.
func (n *Node) IsFocused() bool {
	return n.focused
}

// EffectivelyVisible reports whether the node and all of its ancestors are
// visible. Only effectively visible nodes are rendered, laid out, or
// eligible for focus.
func (n *Node) EffectivelyVisible() bool {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.Visible {
			return false
		}
	}
	return true
}

// Hide makes the node and every descendant invisible, unconditionally.
// The recursive all-or-nothing semantics guarantee a hidden container can
// never leak a visible or focusable descendant.
func (n *Node) Hide() {
	n.Visible = false
	for _, c := range n.children {
		c.Hide()
	}
}

// Show makes the node and every descendant visible, unconditionally.
func (n *Node) Show() {
	n.Visible = true
	for _, c := range n.children {
		c.Show()
	}
}

// Bounds returns the node's position and size.
func (n *Node) Bounds() (x, y, width, height int) {
	return n.X, n.Y, n.Width, n.Height
}

// SetBounds sets the node's position and size.
func (n *Node) SetBounds(x, y, width, height int) *Node {
	n.X, n.Y, n.Width, n.Height = x, y, width, height
	return n
}
