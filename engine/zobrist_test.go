package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRoundTripMatchesFullHash(t *testing.T) {
	g := newTestGrid(t, 7, 7, 4)
	table := g.Hasher().Table()
	rng := rand.New(rand.NewSource(3))

	var applied []Move
	var seen []uint64
	s := X
	for i := 0; i < 30; i++ {
		cells := g.EmptyCells()
		m := cells[rng.Intn(len(cells))]
		seen = append(seen, g.Fingerprint())
		require.NoError(t, g.Apply(s, m))
		applied = append(applied, m)
		require.Equal(t, table.FullHash(g), g.Fingerprint(), "after apply %d", i)
		s = s.Opponent()
	}
	for i := len(applied) - 1; i >= 0; i-- {
		g.Undo(applied[i])
		require.Equal(t, table.FullHash(g), g.Fingerprint(), "after undo %d", i)
		require.Equal(t, seen[i], g.Fingerprint())
	}
	assert.Zero(t, g.Fingerprint())
}

func TestNestedApplyUndoKeepsHash(t *testing.T) {
	g := newTestGrid(t, 5, 5, 4)
	require.NoError(t, g.Apply(X, NewMove(2, 2)))
	base := g.Fingerprint()
	for _, first := range g.EmptyCells() {
		require.NoError(t, g.Apply(O, first))
		for _, second := range g.EmptyCells() {
			require.NoError(t, g.Apply(X, second))
			g.Undo(second)
		}
		g.Undo(first)
		require.Equal(t, base, g.Fingerprint())
	}
}

func TestTransposedMoveOrdersShareFingerprint(t *testing.T) {
	a := newTestGrid(t, 5, 5, 4)
	b, err := NewGrid(5, 5, 4, WithZobristTable(a.Hasher().Table()))
	require.NoError(t, err)

	require.NoError(t, a.Apply(X, NewMove(0, 0)))
	require.NoError(t, a.Apply(O, NewMove(1, 1)))
	require.NoError(t, a.Apply(X, NewMove(2, 2)))

	require.NoError(t, b.Apply(X, NewMove(2, 2)))
	require.NoError(t, b.Apply(O, NewMove(1, 1)))
	require.NoError(t, b.Apply(X, NewMove(0, 0)))

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestSeededTablesAreReproducible(t *testing.T) {
	a := NewZobristTable(15, 15, 42)
	b := NewZobristTable(15, 15, 42)
	c := NewZobristTable(15, 15, 43)
	assert.Equal(t, a.keys, b.keys)
	assert.NotEqual(t, a.keys, c.keys)
	assert.Equal(t, uint64(42), a.Seed())

	seen := make(map[uint64]bool, len(a.keys))
	for _, k := range a.keys {
		require.False(t, seen[k], "duplicate zobrist key")
		seen[k] = true
	}
}

func TestRandomTablesDiffer(t *testing.T) {
	a := NewRandomZobristTable(9, 9)
	b := NewRandomZobristTable(9, 9)
	assert.NotEqual(t, a.keys, b.keys)
}
