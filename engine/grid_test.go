package engine

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGrid(t *testing.T, rows, cols, win int) *Grid {
	t.Helper()
	g, err := NewGrid(rows, cols, win, WithSeed(42))
	require.NoError(t, err)
	return g
}

func TestWinScenarioFiveByFive(t *testing.T) {
	g := newTestGrid(t, 5, 5, 4)
	for col := 0; col < 3; col++ {
		require.NoError(t, g.Apply(X, NewMove(0, col)))
	}
	assert.False(t, g.IsWinner(X))
	before := g.Fingerprint()

	require.NoError(t, g.Apply(X, NewMove(0, 3)))
	assert.True(t, g.IsWinner(X))
	assert.True(t, g.IsTerminal())

	g.Undo(NewMove(0, 3))
	assert.False(t, g.IsWinner(X))
	assert.Equal(t, before, g.Fingerprint())
}

func TestWinDetectionExactness(t *testing.T) {
	const win = 4
	directions := map[string][2]int{
		"horizontal": {0, 1},
		"vertical":   {1, 0},
		"diagonal":   {1, 1},
		"anti":       {1, -1},
	}
	for name, d := range directions {
		for _, tc := range []struct {
			length int
			want   bool
		}{
			{win - 1, false},
			{win, true},
			{win + 2, true},
		} {
			g := newTestGrid(t, 9, 9, win)
			row, col := 1, 1
			if d[1] < 0 {
				col = 7
			}
			for i := 0; i < tc.length; i++ {
				require.NoError(t, g.Apply(X, NewMove(row+i*d[0], col+i*d[1])))
			}
			assert.Equal(t, tc.want, g.IsWinner(X), "%s run of %d", name, tc.length)
			assert.Equal(t, tc.want, g.ScanWinner(X), "%s run of %d (scan)", name, tc.length)
			assert.False(t, g.IsWinner(O))
		}
	}
}

func TestWinByFillingGap(t *testing.T) {
	g := newTestGrid(t, 7, 7, 5)
	for _, col := range []int{0, 1, 3, 4} {
		require.NoError(t, g.Apply(O, NewMove(3, col)))
	}
	assert.False(t, g.IsWinner(O))
	require.NoError(t, g.Apply(O, NewMove(3, 2)))
	assert.True(t, g.IsWinner(O))
	assert.Equal(t, O, g.Winner())
}

func TestApplyRejectsInvalidMoves(t *testing.T) {
	g := newTestGrid(t, 3, 3, 3)
	require.NoError(t, g.Apply(X, NewMove(1, 1)))

	for _, m := range []Move{{Row: 1, Col: 1}, {Row: -1, Col: 0}, {Row: 0, Col: 3}} {
		err := g.Apply(O, m)
		require.Error(t, err)
		var invalid *InvalidMoveError
		require.True(t, errors.As(err, &invalid), "expected InvalidMoveError for %s", m)
		assert.Equal(t, m, invalid.Move)
	}
	assert.Equal(t, 1, g.Marked())
	assert.Error(t, g.Apply(Empty, NewMove(0, 0)))
}

func TestEmptyCellsRowMajorAndFull(t *testing.T) {
	g := newTestGrid(t, 2, 3, 2)
	require.NoError(t, g.Apply(X, NewMove(0, 1)))
	require.NoError(t, g.Apply(O, NewMove(1, 0)))

	assert.Equal(t, []Move{{0, 0}, {0, 2}, {1, 1}, {1, 2}}, g.EmptyCells())
	assert.False(t, g.IsFull())

	for _, m := range g.EmptyCells() {
		require.NoError(t, g.Apply(X, m))
	}
	assert.True(t, g.IsFull())
	assert.True(t, g.IsTerminal())
	assert.Empty(t, g.EmptyCells())
}

func TestMarkedMatchesHistoryAndCells(t *testing.T) {
	g := newTestGrid(t, 6, 6, 4)
	rng := rand.New(rand.NewSource(7))
	var applied []Move
	s := X
	for i := 0; i < 20; i++ {
		cells := g.EmptyCells()
		m := cells[rng.Intn(len(cells))]
		require.NoError(t, g.Apply(s, m))
		applied = append(applied, m)
		s = s.Opponent()
	}
	assert.Equal(t, applied, g.Moves())
	assert.Equal(t, len(applied), g.Marked())
	occupied := 0
	for row := 0; row < 6; row++ {
		for col := 0; col < 6; col++ {
			if g.At(row, col) != Empty {
				occupied++
			}
		}
	}
	assert.Equal(t, g.Marked(), occupied)
	last, ok := g.LastMove()
	require.True(t, ok)
	assert.Equal(t, applied[len(applied)-1], last)
}

func TestTrackedWinnerMatchesScanUnderRandomPlay(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for game := 0; game < 30; game++ {
		g := newTestGrid(t, 6, 6, 4)
		var applied []Move
		s := X
		for !g.IsFull() {
			cells := g.EmptyCells()
			m := cells[rng.Intn(len(cells))]
			require.NoError(t, g.Apply(s, m))
			applied = append(applied, m)
			require.Equal(t, g.ScanWinner(X), g.IsWinner(X))
			require.Equal(t, g.ScanWinner(O), g.IsWinner(O))
			s = s.Opponent()
		}
		for i := len(applied) - 1; i >= 0; i-- {
			g.Undo(applied[i])
			require.Equal(t, g.ScanWinner(X), g.IsWinner(X))
			require.Equal(t, g.ScanWinner(O), g.IsWinner(O))
		}
		assert.Zero(t, g.Marked())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := newTestGrid(t, 5, 5, 4)
	require.NoError(t, g.Apply(X, NewMove(2, 2)))
	clone := g.Clone()
	require.NoError(t, clone.Apply(O, NewMove(0, 0)))

	assert.Equal(t, 1, g.Marked())
	assert.Equal(t, Empty, g.At(0, 0))
	clone.Undo(NewMove(0, 0))
	assert.Equal(t, g.Fingerprint(), clone.Fingerprint())
	assert.Same(t, g.Hasher().Table(), clone.Hasher().Table())
}

func TestNewGridValidatesConfiguration(t *testing.T) {
	_, err := NewGrid(0, 5, 3)
	assert.Error(t, err)
	_, err = NewGrid(5, 5, 6)
	assert.Error(t, err)
	_, err = NewGrid(MaxDimension+1, 5, 3)
	assert.Error(t, err)
	bad := DefaultShapeWeights()
	bad.OpenThree = bad.OpenFour
	_, err = NewGrid(5, 5, 4, WithWeights(bad))
	assert.Error(t, err)
	table := NewZobristTable(4, 4, 1)
	_, err = NewGrid(5, 5, 4, WithZobristTable(table))
	assert.Error(t, err)
}
