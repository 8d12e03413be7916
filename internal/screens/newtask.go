package screens

import (
	"strings"

	"taskloom/internal/termui"
)

// dialogBox frames a modal dialog and owns its dismissal key.
type dialogBox struct {
	Title string
}

// Render implements termui.Component.
func (d *dialogBox) Render(_ *termui.App, buf *termui.Buffer, n *termui.Node) {
	style := termui.DefaultStyle()
	buf.FillRect(n.X, n.Y, n.Width, n.Height, termui.NewCell(' ', style))
	buf.DrawBorder(n.X, n.Y, n.Width, n.Height, termui.BorderRounded, style)
	buf.WriteStringClipped(n.X+2, n.Y, " "+d.Title+" ", style.Bold(), n.X+n.Width-1)
}

// HandleInput implements termui.InputHandler: Escape closes the dialog.
func (d *dialogBox) HandleInput(ctx *termui.App, _ *termui.Node, k termui.Key) bool {
	if k.Type == termui.KeyEscape {
		ctx.CloseDialog()
		return true
	}
	return false
}

// insetLayout gives every child the node's bounds shrunk by a margin.
type insetLayout struct {
	pad int
}

// LayoutChildren implements termui.Layout.
func (l insetLayout) LayoutChildren(n *termui.Node) {
	for _, c := range n.Children() {
		c.SetBounds(n.X+l.pad, n.Y+l.pad, n.Width-2*l.pad, n.Height-2*l.pad)
	}
}

// NewTaskDialog builds the add-task form as a modal dialog tree, centered
// in the current terminal.
func NewTaskDialog(ctx *termui.App) *termui.Node {
	size := ctx.Size()
	w, h := 46, 9
	if w > size.Width {
		w = size.Width
	}
	if h > size.Height {
		h = size.Height
	}

	root := termui.NewNode().SetBounds((size.Width-w)/2, (size.Height-h)/2, w, h)
	root.ZIndex = 100
	root.Component = &dialogBox{Title: "new task"}
	root.Layout = insetLayout{pad: 2}

	grid := termui.NewGridPanel(
		[]termui.Track{
			termui.Fixed(1), // title
			termui.Fixed(1), // project
			termui.Weighted(1),
			termui.Fixed(1), // buttons
		},
		[]termui.Track{termui.Fixed(10), termui.Weighted(1)},
	)
	root.AddChild(grid.Node)

	titleField := termui.NewTextInput(28, "what needs doing?")
	projectField := termui.NewTextInput(28, "optional")
	title := titleField.Component.(*termui.TextInput)
	project := projectField.Component.(*termui.TextInput)

	submit := func(ctx *termui.App) {
		text := strings.TrimSpace(title.String())
		if text == "" {
			ctx.Dispatch("notify", "a task needs a title")
			return
		}
		res := ctx.Dispatch("tasks/add", AddTaskPayload{
			Title:   text,
			Project: strings.TrimSpace(project.String()),
		})
		if !res.Success {
			ctx.Dispatch("notify", "could not add: "+res.Err.Error())
			return
		}
		ctx.CloseDialog()
		ctx.Dispatch("notify", "added: "+text)
	}

	title.OnSubmit = func(ctx *termui.App, _ string) { submit(ctx) }
	project.OnSubmit = func(ctx *termui.App, _ string) { submit(ctx) }

	grid.Place(termui.NewLabel("title", termui.DefaultStyle().Dim()), 0, 0)
	grid.Place(titleField, 0, 1)
	grid.Place(termui.NewLabel("project", termui.DefaultStyle().Dim()), 1, 0)
	grid.Place(projectField, 1, 1)
	grid.Place(termui.NewButton("add", submit), 3, 0)
	grid.Place(termui.NewButton("cancel", func(ctx *termui.App) { ctx.CloseDialog() }), 3, 1)

	return root
}
