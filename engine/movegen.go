package engine

import "sort"

type scoredMove struct {
	move  Move
	score int64
}

// Candidates proposes the moves worth searching for s: the center on an
// empty grid, otherwise the free 8-neighbours of played cells ordered by how
// much placing s there gains. Cells that complete a run come first because
// their gain carries the win sentinel. The order only affects pruning.
func Candidates(g *Grid, s Symbol) []Move {
	if g.marked == 0 {
		return []Move{g.Center()}
	}
	seen := make([]bool, len(g.cells))
	scored := make([]scoredMove, 0, 32)
	for _, entry := range g.history {
		for _, off := range neighbourOffsets {
			row, col := entry.move.Row+off[0], entry.move.Col+off[1]
			if !g.InBounds(row, col) {
				continue
			}
			idx := g.index(row, col)
			if seen[idx] || g.cells[idx] != Empty {
				continue
			}
			seen[idx] = true
			m := Move{Row: row, Col: col}
			scored = append(scored, scoredMove{move: m, score: g.eval.placementDelta(g, m, s, s, s.Opponent())})
		}
	}
	if len(scored) == 0 {
		return g.EmptyCells()
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		if scored[i].move.Row != scored[j].move.Row {
			return scored[i].move.Row < scored[j].move.Row
		}
		return scored[i].move.Col < scored[j].move.Col
	})
	out := make([]Move, len(scored))
	for i, sm := range scored {
		out[i] = sm.move
	}
	return out
}
