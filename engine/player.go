package engine

import (
	"github.com/pkg/errors"
	"lukechampine.com/frand"
)

// Player chooses the next move for one symbol.
type Player interface {
	Symbol() Symbol
	Decide(g *Grid) (Move, error)
}

// CellSource turns raw input (clicks, HTTP requests, ...) into a grid cell.
// It returns ErrNoSelection when nothing has been chosen yet.
type CellSource interface {
	SelectCell(g *Grid) (Move, error)
}

type CellSourceFunc func(g *Grid) (Move, error)

func (f CellSourceFunc) SelectCell(g *Grid) (Move, error) {
	return f(g)
}

type HumanPlayer struct {
	symbol Symbol
	source CellSource
}

func NewHumanPlayer(symbol Symbol, source CellSource) *HumanPlayer {
	return &HumanPlayer{symbol: symbol, source: source}
}

func (h *HumanPlayer) Symbol() Symbol {
	return h.symbol
}

// Decide returns the selected cell, or an *InvalidMoveError the caller can
// answer by asking again.
func (h *HumanPlayer) Decide(g *Grid) (Move, error) {
	m, err := h.source.SelectCell(g)
	if err != nil {
		return Move{}, err
	}
	switch {
	case !g.InBounds(m.Row, m.Col):
		return Move{}, invalidMove(m, "out of range")
	case g.At(m.Row, m.Col) != Empty:
		return Move{}, invalidMove(m, "cell occupied")
	}
	return m, nil
}

type AIPlayer struct {
	engine *Engine
}

func NewAIPlayer(engine *Engine) *AIPlayer {
	return &AIPlayer{engine: engine}
}

func (a *AIPlayer) Symbol() Symbol {
	return a.engine.Symbol()
}

func (a *AIPlayer) Decide(g *Grid) (Move, error) {
	return a.engine.Decide(g)
}

func (a *AIPlayer) Engine() *Engine {
	return a.engine
}

// RandomPlayer picks a uniformly random free cell.
type RandomPlayer struct {
	symbol Symbol
	intn   func(n int) int
}

func NewRandomPlayer(symbol Symbol) *RandomPlayer {
	return &RandomPlayer{symbol: symbol, intn: frand.Intn}
}

func (r *RandomPlayer) Symbol() Symbol {
	return r.symbol
}

func (r *RandomPlayer) Decide(g *Grid) (Move, error) {
	cells := g.EmptyCells()
	if len(cells) == 0 {
		return Move{}, errors.WithStack(ErrGridFull)
	}
	return cells[r.intn(len(cells))], nil
}

type Difficulty int

const (
	DifficultyRandom Difficulty = iota
	DifficultyEasy
	DifficultyNormal
	DifficultyHard
)

// Depth is the search depth used at d; zero for the random level.
func (d Difficulty) Depth() int {
	switch d {
	case DifficultyRandom:
		return 0
	case DifficultyEasy:
		return 1
	case DifficultyNormal:
		return 2
	default:
		return 4
	}
}

func (d Difficulty) String() string {
	switch d {
	case DifficultyRandom:
		return "random"
	case DifficultyEasy:
		return "easy"
	case DifficultyNormal:
		return "normal"
	default:
		return "hard"
	}
}

// NewComputerPlayer builds the automated player for a difficulty level. opts
// are applied after the level's depth, so WithMaxDepth overrides it.
func NewComputerPlayer(symbol Symbol, d Difficulty, opts ...EngineOption) (Player, error) {
	if d < DifficultyRandom || d > DifficultyHard {
		return nil, errors.Errorf("unknown difficulty %d", d)
	}
	if d == DifficultyRandom {
		return NewRandomPlayer(symbol), nil
	}
	engine, err := NewEngine(symbol, append([]EngineOption{WithMaxDepth(d.Depth())}, opts...)...)
	if err != nil {
		return nil, err
	}
	return NewAIPlayer(engine), nil
}
