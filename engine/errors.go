package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoCandidate signals a search bug: a live, non-full grid produced no move.
	ErrNoCandidate = errors.New("engine: no candidate move on a live grid")
	ErrGridFull    = errors.New("engine: grid is full")
	ErrGameOver    = errors.New("engine: game already decided")
	ErrNoSelection = errors.New("engine: no cell selected")
)

// InvalidMoveError is returned by Grid.Apply for an occupied or out-of-range cell.
// It is recoverable: the caller asks its input source for another cell.
type InvalidMoveError struct {
	Move   Move
	Reason string
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move (%d,%d): %s", e.Move.Row, e.Move.Col, e.Reason)
}

func invalidMove(m Move, reason string) error {
	return errors.WithStack(&InvalidMoveError{Move: m, Reason: reason})
}
