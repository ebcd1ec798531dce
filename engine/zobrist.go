package engine

import (
	"encoding/binary"

	"lukechampine.com/frand"
)

// ZobristTable holds one random key per (cell, symbol). A table belongs to a
// single match: grids cloned from the same match share it so fingerprints
// stay comparable, fresh grids get a fresh table.
type ZobristTable struct {
	rows int
	cols int
	seed uint64
	keys []uint64
}

// NewZobristTable builds an R×C×2 key table from seed.
func NewZobristTable(rows, cols int, seed uint64) *ZobristTable {
	rng := splitmix64{state: seed}
	table := &ZobristTable{rows: rows, cols: cols, seed: seed, keys: make([]uint64, rows*cols*2)}
	for i := range table.keys {
		table.keys[i] = rng.next()
	}
	return table
}

// NewRandomZobristTable seeds the table from a cryptographically secure source.
func NewRandomZobristTable(rows, cols int) *ZobristTable {
	return NewZobristTable(rows, cols, binary.LittleEndian.Uint64(frand.Bytes(8)))
}

func (z *ZobristTable) Seed() uint64 {
	return z.seed
}

func (z *ZobristTable) key(row, col int, s Symbol) uint64 {
	return z.keys[(row*z.cols+col)*2+s.index()]
}

// FullHash recomputes the fingerprint of g from scratch. Verification only.
func (z *ZobristTable) FullHash(g *Grid) uint64 {
	var hash uint64
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			s := g.At(row, col)
			if s == Empty {
				continue
			}
			hash ^= z.key(row, col, s)
		}
	}
	return hash
}

// Hasher is the running fingerprint kept by a Grid.
type Hasher struct {
	table       *ZobristTable
	fingerprint uint64
}

func (h *Hasher) toggle(row, col int, s Symbol) {
	h.fingerprint ^= h.table.key(row, col, s)
}

func (h *Hasher) Fingerprint() uint64 {
	return h.fingerprint
}

func (h *Hasher) Table() *ZobristTable {
	return h.table
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
