package termui

// VisitVisible walks the tree depth-first, pre-order, invoking visit for
// each effectively visible node. An invisible node's entire subtree is
// skipped. The visitor runs before the node's children are descended into,
// so a panel visitor can lay children out before they are visited.
//
// This is the single traversal used by both the renderer and the focus
// manager; the visibility-skip rule lives here and nowhere else.
func VisitVisible(root *Node, visit func(*Node)) {
	if root == nil || !root.Visible {
		return
	}
	visit(root)
	for _, child := range root.children {
		VisitVisible(child, visit)
	}
}

// CollectVisible returns the effectively visible nodes of the tree in
// visitation order, root included.
func CollectVisible(root *Node) []*Node {
	var out []*Node
	VisitVisible(root, func(n *Node) {
		out = append(out, n)
	})
	return out
}
