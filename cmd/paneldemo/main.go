// Command paneldemo exercises the layout panels: a grid of stacks with
// focusable buttons, handy for eyeballing tab order and z-ordering.
package main

import (
	"fmt"
	"log"
	"time"

	"taskloom/internal/termui"
)

type demoScreen struct {
	termui.BaseScreen

	grid *termui.GridPanel
}

func newDemoScreen() *demoScreen {
	return &demoScreen{BaseScreen: termui.NewBaseScreen()}
}

func (s *demoScreen) Init(ctx *termui.App) error {
	s.grid = termui.NewGridPanel(
		[]termui.Track{termui.Weighted(1), termui.Weighted(1)},
		[]termui.Track{termui.Fixed(24), termui.Weighted(1), termui.Weighted(2)},
	)
	s.Root().AddChild(s.grid.Node)

	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			s.grid.Place(buildCell(row, col), row, col)
		}
	}

	ctx.Focus().TabNavigate(false)
	return nil
}

func buildCell(row, col int) *termui.Node {
	stack := termui.NewStackPanel(termui.Vertical, 1, 2)
	stack.Add(termui.NewLabel(fmt.Sprintf("cell %d,%d", row, col), termui.DefaultStyle().Bold()))
	for i := 0; i < 3; i++ {
		label := fmt.Sprintf("button %d", i)
		stack.Add(termui.NewButton(label, func(ctx *termui.App) {
			ctx.Notify("pressed "+label, termui.DefaultStyle().Inverse(), 2*time.Second)
		}))
	}
	return stack.Node
}

func (s *demoScreen) Render(ctx *termui.App, buf *termui.Buffer) {
	size := ctx.Size()
	s.grid.Node.SetBounds(0, 1, size.Width, size.Height-1)

	style := termui.DefaultStyle().Inverse()
	buf.FillRect(0, 0, size.Width, 1, termui.NewCell(' ', style))
	buf.WriteStringClipped(1, 0, "paneldemo · tab to move, enter to press, q to quit", style, size.Width)
}

func (s *demoScreen) HandleInput(ctx *termui.App, k termui.Key) bool {
	if (k.Type == termui.KeyRune && k.Rune == 'q' && !k.Ctrl) || k.IsCtrl('c') {
		ctx.Stop()
		return true
	}
	return false
}

func main() {
	app, err := termui.NewApp(nil)
	if err != nil {
		log.Fatal(err)
	}
	if err := app.PushScreen(newDemoScreen()); err != nil {
		log.Fatal(err)
	}
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
