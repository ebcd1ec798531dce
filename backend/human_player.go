package main

import (
	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
)

// pendingSource feeds the last submitted cell to the engine's human player.
type pendingSource struct {
	pending     bool
	pendingMove engine.Move
}

func (p *pendingSource) SelectCell(*engine.Grid) (engine.Move, error) {
	if !p.pending {
		return engine.Move{}, errors.WithStack(engine.ErrNoSelection)
	}
	p.pending = false
	return p.pendingMove, nil
}

type HumanPlayer struct {
	source *pendingSource
	player *engine.HumanPlayer
}

func NewHumanPlayer(symbol engine.Symbol) *HumanPlayer {
	source := &pendingSource{}
	return &HumanPlayer{source: source, player: engine.NewHumanPlayer(symbol, source)}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) Symbol() engine.Symbol {
	return h.player.Symbol()
}

func (h *HumanPlayer) SetPendingMove(move engine.Move) {
	h.source.pendingMove = move
	h.source.pending = true
}

func (h *HumanPlayer) HasPendingMove() bool {
	return h.source.pending
}

// TakePendingMove consumes the submitted cell. An *engine.InvalidMoveError
// means the cell was rejected and the seat waits for another one.
func (h *HumanPlayer) TakePendingMove(grid *engine.Grid) (engine.Move, error) {
	return h.player.Decide(grid)
}
