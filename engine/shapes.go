package engine

import (
	"github.com/pkg/errors"
)

// WinScore is the sentinel for a completed run. It is far above any sum the
// shape library can reach on a board up to 64×64.
const WinScore int64 = 1_000_000_000_000

// ShapeWeights are the point values of the non-winning shape tiers, strongest
// first. Each tier must be worth strictly more than the next one.
type ShapeWeights struct {
	OpenFour      int64 `json:"open_four" yaml:"open_four"`
	BlockedFour   int64 `json:"blocked_four" yaml:"blocked_four"`
	DeadFour      int64 `json:"dead_four" yaml:"dead_four"`
	OpenThree     int64 `json:"open_three" yaml:"open_three"`
	SleepingThree int64 `json:"sleeping_three" yaml:"sleeping_three"`
	DeadThree     int64 `json:"dead_three" yaml:"dead_three"`
	OpenTwo       int64 `json:"open_two" yaml:"open_two"`
	SleepingTwo   int64 `json:"sleeping_two" yaml:"sleeping_two"`
	DeadTwo       int64 `json:"dead_two" yaml:"dead_two"`
}

func DefaultShapeWeights() ShapeWeights {
	return ShapeWeights{
		OpenFour:      100_000,
		BlockedFour:   10_000,
		DeadFour:      1_200,
		OpenThree:     1_000,
		SleepingThree: 100,
		DeadThree:     12,
		OpenTwo:       10,
		SleepingTwo:   3,
		DeadTwo:       1,
	}
}

func (w ShapeWeights) tiers() []int64 {
	return []int64{
		w.OpenFour, w.BlockedFour, w.DeadFour,
		w.OpenThree, w.SleepingThree, w.DeadThree,
		w.OpenTwo, w.SleepingTwo, w.DeadTwo,
	}
}

// Validate checks the strict tier ordering and keeps every tier below the win sentinel.
func (w ShapeWeights) Validate() error {
	tiers := w.tiers()
	if tiers[0] >= WinScore/1_000_000 {
		return errors.Errorf("open four weight %d too close to the win score", tiers[0])
	}
	for i := 1; i < len(tiers); i++ {
		if tiers[i] >= tiers[i-1] {
			return errors.Errorf("shape tier %d (%d) must be below tier %d (%d)", i, tiers[i], i-1, tiers[i-1])
		}
	}
	if tiers[len(tiers)-1] < 0 {
		return errors.Errorf("dead two weight %d must not be negative", tiers[len(tiers)-1])
	}
	return nil
}

// Pattern cells, seen from the side being scored.
const (
	cellOwn     int8 = 1
	cellFree    int8 = 0
	cellBlocked int8 = -1
)

type shape struct {
	name  string
	cells []int8
	value int64
}

// buildShapes expands the tier weights into concrete patterns for win length
// win. 'M' is an own stone, '.' a free cell, 'X' an opponent stone or the edge.
// Asymmetric patterns are added in both orientations.
func buildShapes(win int, w ShapeWeights) []shape {
	seen := make(map[string]bool)
	var shapes []shape
	add := func(name string, value int64, pattern string) {
		for _, p := range []string{pattern, reverse(pattern)} {
			if seen[p] {
				continue
			}
			seen[p] = true
			shapes = append(shapes, shape{name: name, cells: parsePattern(p), value: value})
		}
	}
	run := func(n int) string {
		out := make([]byte, n)
		for i := range out {
			out[i] = 'M'
		}
		return string(out)
	}

	add("five", WinScore, run(win))

	tiers := []struct {
		name                string
		stones              int
		open, blocked, dead int64
		split               int64
		splitNeedsOpenEnds  bool
	}{
		{"four", win - 1, w.OpenFour, w.BlockedFour, w.DeadFour, w.BlockedFour, false},
		{"three", win - 2, w.OpenThree, w.SleepingThree, w.DeadThree, w.OpenThree, true},
		{"two", win - 3, w.OpenTwo, w.SleepingTwo, w.DeadTwo, 0, false},
	}
	for _, t := range tiers {
		if t.stones < 1 {
			continue
		}
		body := run(t.stones)
		add("open "+t.name, t.open, "."+body+".")
		add("blocked "+t.name, t.blocked, "X"+body+".")
		add("dead "+t.name, t.dead, "X"+body+"X")
		if t.split == 0 {
			continue
		}
		for left := 1; left < t.stones; left++ {
			gapped := run(left) + "." + run(t.stones-left)
			if t.splitNeedsOpenEnds {
				gapped = "." + gapped + "."
			}
			add("split "+t.name, t.split, gapped)
		}
	}
	return shapes
}

func parsePattern(p string) []int8 {
	cells := make([]int8, len(p))
	for i := 0; i < len(p); i++ {
		switch p[i] {
		case 'M':
			cells[i] = cellOwn
		case 'X':
			cells[i] = cellBlocked
		default:
			cells[i] = cellFree
		}
	}
	return cells
}

func reverse(s string) string {
	out := []byte(s)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out)
}
