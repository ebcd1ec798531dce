package engine

import (
	"strings"

	"github.com/pkg/errors"
)

// MaxDimension bounds rows and columns so WinScore stays out of reach of the
// heuristic sum.
const MaxDimension = 64

type gridEntry struct {
	move   Move
	symbol Symbol
	delta  int64
	won    bool
}

// Grid is the board of one match: cell store, move history, fingerprint,
// win flags and the running heuristic total. All mutation goes through
// Apply and Undo, which must be paired in LIFO order.
type Grid struct {
	rows    int
	cols    int
	win     int
	cells   []Symbol
	marked  int
	history []gridEntry
	hasher  Hasher
	eval    *LineEvaluator
	won     [3]bool
	totalX  int64
	lineBuf [2][]int8
}

type gridOptions struct {
	seed    *uint64
	table   *ZobristTable
	weights ShapeWeights
}

type GridOption func(*gridOptions)

// WithSeed makes the Zobrist table reproducible.
func WithSeed(seed uint64) GridOption {
	return func(o *gridOptions) {
		o.seed = &seed
	}
}

func WithWeights(weights ShapeWeights) GridOption {
	return func(o *gridOptions) {
		o.weights = weights
	}
}

// WithZobristTable reuses an existing table of matching dimensions.
func WithZobristTable(table *ZobristTable) GridOption {
	return func(o *gridOptions) {
		o.table = table
	}
}

func NewGrid(rows, cols, win int, opts ...GridOption) (*Grid, error) {
	if rows <= 0 || cols <= 0 || rows > MaxDimension || cols > MaxDimension {
		return nil, errors.Errorf("grid dimensions %dx%d out of range 1..%d", rows, cols, MaxDimension)
	}
	if win <= 0 || (win > rows && win > cols) {
		return nil, errors.Errorf("win length %d does not fit a %dx%d grid", win, rows, cols)
	}
	options := gridOptions{weights: DefaultShapeWeights()}
	for _, opt := range opts {
		opt(&options)
	}
	eval, err := NewLineEvaluator(win, options.weights)
	if err != nil {
		return nil, errors.Wrap(err, "shape weights")
	}
	table := options.table
	switch {
	case table != nil:
		if table.rows != rows || table.cols != cols {
			return nil, errors.Errorf("zobrist table is %dx%d, grid is %dx%d", table.rows, table.cols, rows, cols)
		}
	case options.seed != nil:
		table = NewZobristTable(rows, cols, *options.seed)
	default:
		table = NewRandomZobristTable(rows, cols)
	}
	g := &Grid{
		rows:   rows,
		cols:   cols,
		win:    win,
		cells:  make([]Symbol, rows*cols),
		hasher: Hasher{table: table},
		eval:   eval,
	}
	g.allocLineBuffers()
	return g, nil
}

func (g *Grid) allocLineBuffers() {
	longest := g.rows
	if g.cols > longest {
		longest = g.cols
	}
	g.lineBuf[0] = make([]int8, longest+2)
	g.lineBuf[1] = make([]int8, longest+2)
}

func (g *Grid) Rows() int { return g.rows }
func (g *Grid) Cols() int { return g.cols }
func (g *Grid) WinLength() int { return g.win }
func (g *Grid) Marked() int { return g.marked }
func (g *Grid) Fingerprint() uint64 { return g.hasher.Fingerprint() }
func (g *Grid) Hasher() *Hasher { return &g.hasher }
func (g *Grid) Evaluator() *LineEvaluator { return g.eval }

func (g *Grid) Center() Move {
	return Move{Row: g.rows / 2, Col: g.cols / 2}
}

func (g *Grid) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < g.rows && col < g.cols
}

func (g *Grid) At(row, col int) Symbol {
	return g.cells[g.index(row, col)]
}

func (g *Grid) index(row, col int) int {
	return row*g.cols + col
}

// Moves returns the applied moves, oldest first.
func (g *Grid) Moves() []Move {
	out := make([]Move, len(g.history))
	for i, entry := range g.history {
		out[i] = entry.move
	}
	return out
}

func (g *Grid) LastMove() (Move, bool) {
	if len(g.history) == 0 {
		return Move{}, false
	}
	return g.history[len(g.history)-1].move, true
}

// EmptyCells lists free cells in row-major order.
func (g *Grid) EmptyCells() []Move {
	out := make([]Move, 0, len(g.cells)-g.marked)
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			if g.cells[g.index(row, col)] == Empty {
				out = append(out, Move{Row: row, Col: col})
			}
		}
	}
	return out
}

func (g *Grid) IsValid(m Move) bool {
	return g.InBounds(m.Row, m.Col) && g.At(m.Row, m.Col) == Empty
}

func (g *Grid) Apply(s Symbol, m Move) error {
	if s != X && s != O {
		return errors.Errorf("cannot place symbol %d", s)
	}
	if !g.InBounds(m.Row, m.Col) {
		return invalidMove(m, "out of range")
	}
	if g.At(m.Row, m.Col) != Empty {
		return invalidMove(m, "cell occupied")
	}
	g.cells[g.index(m.Row, m.Col)] = s
	g.marked++
	g.hasher.toggle(m.Row, m.Col, s)
	entry := gridEntry{
		move:   m,
		symbol: s,
		delta:  g.eval.placementDelta(g, m, s, X, O),
	}
	g.totalX += entry.delta
	if !g.won[s] && g.completesRun(m, s) {
		g.won[s] = true
		entry.won = true
	}
	g.history = append(g.history, entry)
	return nil
}

// Undo takes back m, which must be the most recently applied move.
// Undoing out of order corrupts the grid and is not detected.
func (g *Grid) Undo(m Move) {
	last := len(g.history) - 1
	entry := g.history[last]
	g.history = g.history[:last]
	g.cells[g.index(m.Row, m.Col)] = Empty
	g.marked--
	g.hasher.toggle(m.Row, m.Col, entry.symbol)
	g.totalX -= entry.delta
	if entry.won {
		g.won[entry.symbol] = false
	}
}

func (g *Grid) completesRun(m Move, s Symbol) bool {
	for _, d := range lineDirections {
		count := 1
		for _, sign := range [2]int{1, -1} {
			row, col := m.Row+sign*d[0], m.Col+sign*d[1]
			for g.InBounds(row, col) && g.At(row, col) == s {
				count++
				row += sign * d[0]
				col += sign * d[1]
			}
		}
		if count >= g.win {
			return true
		}
	}
	return false
}

// IsWinner reports whether s has a run of at least the win length.
func (g *Grid) IsWinner(s Symbol) bool {
	if s != X && s != O {
		return false
	}
	return g.won[s]
}

// ScanWinner recomputes IsWinner with a sliding window over every line.
func (g *Grid) ScanWinner(s Symbol) bool {
	for _, d := range lineDirections {
		for row := 0; row < g.rows; row++ {
			for col := 0; col < g.cols; col++ {
				if g.InBounds(row-d[0], col-d[1]) {
					continue
				}
				run := 0
				for r, c := row, col; g.InBounds(r, c); r, c = r+d[0], c+d[1] {
					if g.At(r, c) != s {
						run = 0
						continue
					}
					run++
					if run >= g.win {
						return true
					}
				}
			}
		}
	}
	return false
}

func (g *Grid) Winner() Symbol {
	switch {
	case g.won[X]:
		return X
	case g.won[O]:
		return O
	default:
		return Empty
	}
}

func (g *Grid) IsFull() bool {
	return g.marked == len(g.cells)
}

func (g *Grid) IsTerminal() bool {
	return g.won[X] || g.won[O] || g.IsFull()
}

// RunningScore is the incrementally maintained heuristic total from s's
// point of view. It equals Evaluator().Score on positions nobody has won.
func (g *Grid) RunningScore(s Symbol) int64 {
	if s == O {
		return -g.totalX
	}
	return g.totalX
}

// Clone copies the position. The clone shares the Zobrist table, so its
// fingerprints match the original's.
func (g *Grid) Clone() *Grid {
	clone := *g
	clone.cells = append([]Symbol(nil), g.cells...)
	clone.history = append([]gridEntry(nil), g.history...)
	clone.allocLineBuffers()
	return &clone
}

// fillLine writes the line starting at (row, col) along (dr, dc) into buf as
// seen by side, with one blocked cell of padding at each end.
func (g *Grid) fillLine(buf []int8, row, col, dr, dc int, side Symbol) []int8 {
	n := 1
	buf[0] = cellBlocked
	for r, c := row, col; g.InBounds(r, c); r, c = r+dr, c+dc {
		switch g.At(r, c) {
		case Empty:
			buf[n] = cellFree
		case side:
			buf[n] = cellOwn
		default:
			buf[n] = cellBlocked
		}
		n++
	}
	buf[n] = cellBlocked
	return buf[:n+1]
}

func (g *Grid) String() string {
	var b strings.Builder
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			b.WriteString(g.At(row, col).String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
