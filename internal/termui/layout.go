package termui

// Orientation specifies a stack panel's layout direction.
type Orientation int

const (
	Vertical Orientation = iota
	Horizontal
)

// StackPanel arranges visible children sequentially along one axis.
// Invisible children are skipped and reserve no space.
type StackPanel struct {
	Node        *Node
	Orientation Orientation
	Spacing     int
	Padding     int
}

// NewStackPanel creates a stack panel node with the given orientation.
func NewStackPanel(o Orientation, spacing, padding int) *StackPanel {
	p := &StackPanel{
		Node:        NewNode(),
		Orientation: o,
		Spacing:     spacing,
		Padding:     padding,
	}
	p.Node.Layout = p
	return p
}

// Add appends children to the panel's node.
func (p *StackPanel) Add(children ...*Node) *StackPanel {
	for _, c := range children {
		p.Node.AddChild(c)
	}
	return p
}

// LayoutChildren implements Layout. Children are placed from the panel
// origin plus padding, each advancing the cursor by its own size plus
// spacing. The cross-axis size is clipped to the panel's content size.
func (p *StackPanel) LayoutChildren(n *Node) {
	contentW := n.Width - p.Padding*2
	contentH := n.Height - p.Padding*2
	if contentW < 0 {
		contentW = 0
	}
	if contentH < 0 {
		contentH = 0
	}

	pos := 0
	for _, child := range n.children {
		if !child.Visible {
			continue
		}
		if p.Orientation == Vertical {
			child.X = n.X + p.Padding
			child.Y = n.Y + p.Padding + pos
			if child.Width > contentW {
				child.Width = contentW
			}
			pos += child.Height + p.Spacing
		} else {
			child.X = n.X + p.Padding + pos
			child.Y = n.Y + p.Padding
			if child.Height > contentH {
				child.Height = contentH
			}
			pos += child.Width + p.Spacing
		}
	}
}

// TrackKind distinguishes fixed from weighted tracks.
type TrackKind int

const (
	TrackFixed TrackKind = iota
	TrackWeighted
)

// Track is one row or column definition of a grid.
type Track struct {
	Kind   TrackKind
	Size   int // cells, for fixed tracks
	Weight int // share, for weighted tracks
}

// Fixed declares a track of a fixed number of cells.
func Fixed(cells int) Track {
	return Track{Kind: TrackFixed, Size: cells}
}

// Weighted declares a track taking a proportional share of the space left
// after the fixed tracks.
func Weighted(weight int) Track {
	return Track{Kind: TrackWeighted, Weight: weight}
}

// GridPanel arranges children in declared row and column tracks.
type GridPanel struct {
	Node *Node
	Rows []Track
	Cols []Track

	cells map[*Node]gridCell
}

type gridCell struct {
	row, col int
}

// NewGridPanel creates a grid panel node with the given tracks.
func NewGridPanel(rows, cols []Track) *GridPanel {
	p := &GridPanel{
		Node:  NewNode(),
		Rows:  rows,
		Cols:  cols,
		cells: make(map[*Node]gridCell),
	}
	p.Node.Layout = p
	return p
}

// Place adds a child at the given row and column. Indices outside the
// declared track range are clamped to the last track at layout time.
func (p *GridPanel) Place(child *Node, row, col int) *GridPanel {
	p.Node.AddChild(child)
	p.cells[child] = gridCell{row: row, col: col}
	return p
}

// LayoutChildren implements Layout. Each child receives the bounds of its
// assigned grid cell.
func (p *GridPanel) LayoutChildren(n *Node) {
	// a grid declared without rows or columns has no cells to assign
	if len(p.Rows) == 0 || len(p.Cols) == 0 {
		return
	}
	colSizes := trackSizes(p.Cols, n.Width)
	rowSizes := trackSizes(p.Rows, n.Height)
	colOffs := trackOffsets(colSizes)
	rowOffs := trackOffsets(rowSizes)

	for _, child := range n.children {
		if !child.Visible {
			continue
		}
		cell := p.cells[child]
		row := clampIndex(cell.row, len(rowSizes))
		col := clampIndex(cell.col, len(colSizes))
		child.X = n.X + colOffs[col]
		child.Y = n.Y + rowOffs[row]
		child.Width = colSizes[col]
		child.Height = rowSizes[row]
	}
}

// trackSizes resolves track definitions against a total extent. The extent
// left after the fixed tracks is split among weighted tracks by integer
// floor division of their weights; the last weighted track absorbs the
// remainder.
func trackSizes(tracks []Track, total int) []int {
	sizes := make([]int, len(tracks))

	fixed := 0
	totalWeight := 0
	lastWeighted := -1
	for i, tr := range tracks {
		if tr.Kind == TrackFixed {
			sizes[i] = tr.Size
			fixed += tr.Size
		} else {
			totalWeight += tr.Weight
			lastWeighted = i
		}
	}

	avail := total - fixed
	if avail < 0 {
		avail = 0
	}
	if totalWeight == 0 {
		return sizes
	}

	assigned := 0
	for i, tr := range tracks {
		if tr.Kind != TrackWeighted || i == lastWeighted {
			continue
		}
		sizes[i] = avail * tr.Weight / totalWeight
		assigned += sizes[i]
	}
	sizes[lastWeighted] = avail - assigned
	return sizes
}

// trackOffsets returns the starting offset of each track.
func trackOffsets(sizes []int) []int {
	offs := make([]int, len(sizes))
	pos := 0
	for i, s := range sizes {
		offs[i] = pos
		pos += s
	}
	return offs
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
