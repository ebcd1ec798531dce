package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/inarow/inarow/engine"
)

const (
	boardPixels = 640
	boardMargin = 20
	headerH     = 70
	minCell     = 10
)

var (
	colBackground = color.RGBA{0xdc, 0xb3, 0x5c, 0xff}
	colGridLine   = color.RGBA{0x3a, 0x2a, 0x10, 0xff}
	colStoneX     = color.RGBA{0x18, 0x18, 0x18, 0xff}
	colStoneO     = color.RGBA{0xf4, 0xf4, 0xf0, 0xff}
	colLastMove   = color.RGBA{0xd0, 0x30, 0x30, 0xff}
	colHeader     = color.RGBA{0x20, 0x20, 0x28, 0xff}
)

func cellSize(g *engine.Grid) int {
	side := max(g.Rows(), g.Cols())
	return max(boardPixels/side, minCell)
}

func screenSize(g *engine.Grid) (int, int) {
	cell := cellSize(g)
	return g.Cols()*cell + 2*boardMargin, g.Rows()*cell + 2*boardMargin + headerH
}

func drawBoard(screen *ebiten.Image, g *engine.Grid) {
	screen.Fill(colBackground)
	cell := float32(cellSize(g))
	margin := float32(boardMargin)
	w := float32(g.Cols()) * cell
	h := float32(g.Rows()) * cell
	for r := 0; r <= g.Rows(); r++ {
		y := margin + float32(r)*cell
		vector.StrokeLine(screen, margin, y, margin+w, y, 1, colGridLine, false)
	}
	for c := 0; c <= g.Cols(); c++ {
		x := margin + float32(c)*cell
		vector.StrokeLine(screen, x, margin, x, margin+h, 1, colGridLine, false)
	}

	radius := cell*0.42 - 1
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			s := g.At(r, c)
			if s == engine.Empty {
				continue
			}
			cx := margin + (float32(c)+0.5)*cell
			cy := margin + (float32(r)+0.5)*cell
			clr := colStoneX
			if s == engine.O {
				clr = colStoneO
			}
			vector.DrawFilledCircle(screen, cx, cy, radius, clr, true)
			vector.StrokeCircle(screen, cx, cy, radius, 1, colGridLine, true)
		}
	}
	if last, ok := g.LastMove(); ok {
		cx := margin + (float32(last.Col)+0.5)*cell
		cy := margin + (float32(last.Row)+0.5)*cell
		vector.DrawFilledCircle(screen, cx, cy, max(radius/4, 2), colLastMove, true)
	}
}

func drawHeader(screen *ebiten.Image, gl *GameLoop) {
	_, h := screenSize(gl.grid)
	top := float32(h - headerH)
	vector.DrawFilledRect(screen, 0, top, float32(screen.Bounds().Dx()), headerH, colHeader, false)

	x := 10
	y := int(top) + 24
	lines := []string{
		fmt.Sprintf("Mode | %s", gl.cfg.Mode),
		fmt.Sprintf("To move | %s", gl.toMove),
		fmt.Sprintf("Moves | %d", gl.grid.Marked()),
		fmt.Sprintf("State | %s", gl.stateLabel()),
	}
	for _, s := range lines {
		text.Draw(screen, s, basicfont.Face7x13, x, y, color.White)
		x += len(s)*7 + 30
	}
	if gl.message != "" {
		text.Draw(screen, gl.message, basicfont.Face7x13, 10, y+24, color.White)
	}
}
