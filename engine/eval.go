package engine

// LineEvaluator scores positions by matching the shape library against every
// row, column and diagonal. The full score is the sum of all shape
// occurrences for one side minus those of the other, so the occurrences that
// change when a single cell changes are exactly the ones covering that cell.
// ScoreDelta relies on this: summed over the move history it reproduces the
// heuristic total.
type LineEvaluator struct {
	win     int
	weights ShapeWeights
	shapes  []shape
}

func NewLineEvaluator(win int, weights ShapeWeights) (*LineEvaluator, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &LineEvaluator{win: win, weights: weights, shapes: buildShapes(win, weights)}, nil
}

func (e *LineEvaluator) Weights() ShapeWeights {
	return e.weights
}

// Score returns ±WinScore once either side has won, otherwise the full
// heuristic rescan of g from player's point of view.
func (e *LineEvaluator) Score(g *Grid, player, opponent Symbol) int64 {
	if g.IsWinner(player) {
		return WinScore
	}
	if g.IsWinner(opponent) {
		return -WinScore
	}
	return e.heuristic(g, player, opponent)
}

// ScoreDelta is the contribution of the lines through lastMove, as placed on g.
func (e *LineEvaluator) ScoreDelta(g *Grid, lastMove Move, player, opponent Symbol) int64 {
	s := g.At(lastMove.Row, lastMove.Col)
	if s == Empty {
		return 0
	}
	return e.placementDelta(g, lastMove, s, player, opponent)
}

func (e *LineEvaluator) heuristic(g *Grid, player, opponent Symbol) int64 {
	var total int64
	for _, d := range lineDirections {
		for row := 0; row < g.rows; row++ {
			for col := 0; col < g.cols; col++ {
				if g.InBounds(row-d[0], col-d[1]) {
					continue
				}
				own := g.fillLine(g.lineBuf[0], row, col, d[0], d[1], player)
				other := g.fillLine(g.lineBuf[1], row, col, d[0], d[1], opponent)
				total += e.sumAll(own) - e.sumAll(other)
			}
		}
	}
	return total
}

// placementDelta measures what putting s on the (possibly still empty) cell m
// changes, from player's point of view, without touching the grid.
func (e *LineEvaluator) placementDelta(g *Grid, m Move, s Symbol, player, opponent Symbol) int64 {
	ownValue, otherValue := cellOwn, cellBlocked
	if s != player {
		ownValue, otherValue = cellBlocked, cellOwn
	}
	var delta int64
	for _, d := range lineDirections {
		row, col := m.Row, m.Col
		steps := 0
		for g.InBounds(row-d[0], col-d[1]) {
			row -= d[0]
			col -= d[1]
			steps++
		}
		// +1 for the edge padding at the front of the line.
		center := steps + 1
		own := g.fillLine(g.lineBuf[0], row, col, d[0], d[1], player)
		other := g.fillLine(g.lineBuf[1], row, col, d[0], d[1], opponent)

		own[center] = ownValue
		other[center] = otherValue
		with := e.sumCovering(own, center) - e.sumCovering(other, center)
		own[center] = cellFree
		other[center] = cellFree
		without := e.sumCovering(own, center) - e.sumCovering(other, center)
		delta += with - without
	}
	return delta
}

func (e *LineEvaluator) sumAll(line []int8) int64 {
	var total int64
	for i := range e.shapes {
		sh := &e.shapes[i]
		for off := 0; off+len(sh.cells) <= len(line); off++ {
			if matchAt(line, off, sh.cells) {
				total += sh.value
			}
		}
	}
	return total
}

// sumCovering only counts occurrences whose span includes center.
func (e *LineEvaluator) sumCovering(line []int8, center int) int64 {
	var total int64
	for i := range e.shapes {
		sh := &e.shapes[i]
		first := center - len(sh.cells) + 1
		if first < 0 {
			first = 0
		}
		for off := first; off <= center && off+len(sh.cells) <= len(line); off++ {
			if matchAt(line, off, sh.cells) {
				total += sh.value
			}
		}
	}
	return total
}

func matchAt(line []int8, off int, pattern []int8) bool {
	for i, want := range pattern {
		if line[off+i] != want {
			return false
		}
	}
	return true
}
