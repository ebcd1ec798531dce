package main

import (
	"context"

	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
)

// seat is one side of a training match. Every seat searches its own grid so
// the engine scores leaves with that seat's weights.
type seat struct {
	grid   *engine.Grid
	player *engine.AIPlayer
}

func (t *trainer) newSeat(symbol engine.Symbol, weights engine.ShapeWeights, table *engine.ZobristTable) (seat, error) {
	grid, err := engine.NewGrid(t.cfg.Rows, t.cfg.Cols, t.cfg.WinLength,
		engine.WithWeights(weights), engine.WithZobristTable(table))
	if err != nil {
		return seat{}, err
	}
	eng, err := engine.NewEngine(symbol,
		engine.WithMaxDepth(t.cfg.SearchDepth),
		engine.WithCacheCapacity(t.cfg.CacheCapacity),
		engine.WithLogger(t.logger))
	if err != nil {
		return seat{}, err
	}
	return seat{grid: grid, player: engine.NewAIPlayer(eng)}, nil
}

// playMatch plays op and then lets the engines finish the game. It returns
// the winner (Empty for a draw) and the number of plies played.
func (t *trainer) playMatch(ctx context.Context, xWeights, oWeights engine.ShapeWeights, op opening) (engine.Symbol, int, error) {
	table := engine.NewRandomZobristTable(t.cfg.Rows, t.cfg.Cols)
	x, err := t.newSeat(engine.X, xWeights, table)
	if err != nil {
		return engine.Empty, 0, errors.Wrap(err, "x seat")
	}
	o, err := t.newSeat(engine.O, oWeights, table)
	if err != nil {
		return engine.Empty, 0, errors.Wrap(err, "o seat")
	}
	seats := map[engine.Symbol]seat{engine.X: x, engine.O: o}
	referee := x.grid

	apply := func(symbol engine.Symbol, m engine.Move) error {
		for _, s := range seats {
			if err := s.grid.Apply(symbol, m); err != nil {
				return errors.Wrapf(err, "%s plays %s", symbol, m)
			}
		}
		return nil
	}

	toMove := engine.X
	for _, m := range op {
		if err := apply(toMove, m); err != nil {
			return engine.Empty, 0, errors.Wrap(err, "opening")
		}
		toMove = toMove.Opponent()
	}
	for !referee.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return engine.Empty, referee.Marked(), err
		}
		s := seats[toMove]
		m, err := s.player.Decide(s.grid)
		if err != nil {
			return engine.Empty, referee.Marked(), err
		}
		if err := apply(toMove, m); err != nil {
			return engine.Empty, referee.Marked(), err
		}
		toMove = toMove.Opponent()
	}
	return referee.Winner(), referee.Marked(), nil
}
