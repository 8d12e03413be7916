package termui

import "testing"

func TestNode(t *testing.T) {
	t.Run("AddChild reparents", func(t *testing.T) {
		a := NewNode()
		b := NewNode()
		child := NewNode()

		a.AddChild(child)
		if child.Parent() != a || len(a.Children()) != 1 {
			t.Fatal("child not attached to a")
		}

		b.AddChild(child)
		if child.Parent() != b {
			t.Error("child not reparented to b")
		}
		if len(a.Children()) != 0 {
			t.Error("child still owned by a")
		}
	})

	t.Run("EffectivelyVisible walks ancestors", func(t *testing.T) {
		root := NewNode()
		mid := NewNode()
		leaf := NewNode()
		root.AddChild(mid)
		mid.AddChild(leaf)

		if !leaf.EffectivelyVisible() {
			t.Fatal("fully visible chain reported invisible")
		}

		mid.Visible = false
		if leaf.EffectivelyVisible() {
			t.Error("leaf visible under invisible parent")
		}
		if !root.EffectivelyVisible() {
			t.Error("root affected by child visibility")
		}
	})

	t.Run("HideShowPropagation", func(t *testing.T) {
		// a 3-level tree of 7 nodes under one panel
		p := NewNode()
		l1a, l1b := NewNode(), NewNode()
		l2a, l2b, l2c, l2d := NewNode(), NewNode(), NewNode(), NewNode()
		p.AddChild(l1a)
		p.AddChild(l1b)
		l1a.AddChild(l2a)
		l1a.AddChild(l2b)
		l1b.AddChild(l2c)
		l1b.AddChild(l2d)

		all := []*Node{p, l1a, l1b, l2a, l2b, l2c, l2d}

		p.Hide()
		for i, n := range all {
			if n.Visible || n.EffectivelyVisible() {
				t.Errorf("node %d still visible after Hide", i)
			}
		}

		p.Show()
		for i, n := range all {
			if !n.EffectivelyVisible() {
				t.Errorf("node %d not visible after Show", i)
			}
		}
	})

	t.Run("Hide is unconditional on descendants", func(t *testing.T) {
		p := NewNode()
		c := NewNode()
		p.AddChild(c)

		p.Hide()
		p.Show()
		// Show is all-or-nothing: the child is visible again even though
		// it was individually hidden first
		c.Visible = false
		p.Show()
		if !c.Visible {
			t.Error("Show did not reset descendant visibility")
		}
	})
}

func TestVisitVisible(t *testing.T) {
	t.Run("pre-order and subtree skip", func(t *testing.T) {
		root := NewNode()
		a := NewNode()
		b := NewNode()
		aChild := NewNode()
		hidden := NewNode()
		hiddenChild := NewNode()

		root.AddChild(a)
		root.AddChild(hidden)
		root.AddChild(b)
		a.AddChild(aChild)
		hidden.AddChild(hiddenChild)
		hidden.Visible = false

		got := CollectVisible(root)
		want := []*Node{root, a, aChild, b}
		if len(got) != len(want) {
			t.Fatalf("collected %d nodes, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("position %d: wrong node", i)
			}
		}
	})

	t.Run("nil root", func(t *testing.T) {
		if got := CollectVisible(nil); got != nil {
			t.Errorf("expected nil, got %d nodes", len(got))
		}
	})
}
