package main

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/inarow/inarow/engine"
)

// clickSource hands the last clicked cell to a HumanPlayer once.
type clickSource struct {
	pending bool
	cell    engine.Move
}

func (c *clickSource) SelectCell(_ *engine.Grid) (engine.Move, error) {
	if !c.pending {
		return engine.Move{}, engine.ErrNoSelection
	}
	c.pending = false
	return c.cell, nil
}

func (c *clickSource) clear() {
	c.pending = false
}

// handleMouse records a left click on the board.
func (c *clickSource) handleMouse(g *engine.Grid) {
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	x, y := ebiten.CursorPosition()
	m, ok := pixelToCell(g, x, y)
	if !ok {
		return
	}
	c.cell = m
	c.pending = true
}

func pixelToCell(g *engine.Grid, x, y int) (engine.Move, bool) {
	cell := cellSize(g)
	if x < boardMargin || y < boardMargin {
		return engine.Move{}, false
	}
	col := (x - boardMargin) / cell
	row := (y - boardMargin) / cell
	if !g.InBounds(row, col) {
		return engine.Move{}, false
	}
	return engine.NewMove(row, col), true
}
