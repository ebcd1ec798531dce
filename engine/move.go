package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

type Symbol int8

const (
	Empty Symbol = iota
	X
	O
)

func (s Symbol) Opponent() Symbol {
	switch s {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (s Symbol) String() string {
	switch s {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return "."
	}
}

// index maps X/O onto the two Zobrist planes.
func (s Symbol) index() int {
	return int(s) - 1
}

func ParseSymbol(raw string) (Symbol, error) {
	switch raw {
	case "X", "x":
		return X, nil
	case "O", "o":
		return O, nil
	default:
		return Empty, errors.Errorf("unknown symbol %q", raw)
	}
}

type Move struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

func NewMove(row, col int) Move {
	return Move{Row: row, Col: col}
}

func (m Move) String() string {
	return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
}

var neighbourOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// lineDirections are the four axes a run can lie on.
var lineDirections = [4][2]int{
	{0, 1},
	{1, 0},
	{1, 1},
	{1, -1},
}
