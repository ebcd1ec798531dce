package main

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"lukechampine.com/frand"
)

type trainerConfig struct {
	Rows               int
	Cols               int
	WinLength          int
	SearchDepth        int
	CacheCapacity      int
	PopulationSize     int
	EliteCount         int
	MutationStrength   float64
	TrainingOpenings   int
	ValidationOpenings int
	OpeningPlies       int
	EloK               float64
	ValidationPassRate float64
	Generations        int
	OutputPath         string
	SeedPath           string
}

type contender struct {
	ID      string
	Weights engine.ShapeWeights
	Elo     float64
}

// opening is a fixed sequence of cells played alternately, X first, before
// the engines take over.
type opening []engine.Move

type trainer struct {
	cfg    trainerConfig
	logger zerolog.Logger
	intn   func(n int) int
	float  func() float64
}

func newTrainer(cfg trainerConfig, logger zerolog.Logger) (*trainer, error) {
	if cfg.Rows <= 0 || cfg.Cols <= 0 || cfg.Rows > engine.MaxDimension || cfg.Cols > engine.MaxDimension {
		return nil, errors.Errorf("board %dx%d out of range", cfg.Rows, cfg.Cols)
	}
	if cfg.WinLength <= 0 || (cfg.WinLength > cfg.Rows && cfg.WinLength > cfg.Cols) {
		return nil, errors.Errorf("win length %d does not fit a %dx%d board", cfg.WinLength, cfg.Rows, cfg.Cols)
	}
	if cfg.OpeningPlies >= cfg.Rows*cfg.Cols {
		return nil, errors.Errorf("opening of %d plies fills the board", cfg.OpeningPlies)
	}
	return &trainer{cfg: cfg, logger: logger, intn: frand.Intn, float: frand.Float64}, nil
}

// run trains for the configured number of generations and returns the final
// champion. The champion is written to OutputPath after every generation.
func (t *trainer) run(ctx context.Context) (engine.ShapeWeights, error) {
	base := engine.DefaultShapeWeights()
	if t.cfg.SeedPath != "" {
		seed, err := readChampion(t.cfg.SeedPath)
		if err != nil {
			return base, err
		}
		base = seed
	}
	trainOpenings := t.buildOpeningSuite(t.cfg.TrainingOpenings)
	valOpenings := t.buildOpeningSuite(t.cfg.ValidationOpenings)
	champion := contender{ID: "champion", Weights: base, Elo: 1500}
	population := t.initializePopulation(champion.Weights)

	for generation := 1; generation <= t.cfg.Generations; generation++ {
		if err := ctx.Err(); err != nil {
			return champion.Weights, err
		}
		roundStart := time.Now()
		games, err := t.runPopulationRound(ctx, population, trainOpenings)
		if err != nil {
			return champion.Weights, err
		}
		sortContendersByElo(population)
		best := population[0]

		promoted := false
		rate := 0.0
		if best.Weights != champion.Weights {
			points, total, err := t.runValidation(ctx, best.Weights, champion.Weights, valOpenings)
			if err != nil {
				return champion.Weights, err
			}
			if total > 0 {
				rate = points / total
			}
			if rate >= t.cfg.ValidationPassRate {
				champion = contender{ID: fmt.Sprintf("champion-g%d", generation), Weights: best.Weights, Elo: 1500}
				promoted = true
			}
		}
		t.logger.Info().
			Int("generation", generation).
			Int("games", games).
			Dur("elapsed", time.Since(roundStart)).
			Str("best", best.ID).
			Float64("best_elo", best.Elo).
			Float64("validation_rate", rate).
			Bool("promoted", promoted).
			Msg("generation done")

		if err := writeChampion(t.cfg.OutputPath, champion.Weights); err != nil {
			return champion.Weights, err
		}
		population = t.nextGenerationPopulation(champion.Weights, population)
	}
	return champion.Weights, nil
}

func (t *trainer) runPopulationRound(ctx context.Context, population []contender, openings []opening) (int, error) {
	games := 0
	for i := 0; i < len(population); i++ {
		for j := i + 1; j < len(population); j++ {
			for _, op := range openings {
				result, plies, err := t.playHeadToHead(ctx, population[i].Weights, population[j].Weights, op)
				if err != nil {
					return games, err
				}
				updateElo(&population[i], &population[j], result, t.cfg.EloK)
				games++
				t.logger.Debug().
					Str("a", population[i].ID).
					Str("b", population[j].ID).
					Float64("result", result).
					Int("plies", plies).
					Msg("head to head")
			}
		}
	}
	return games, nil
}

func (t *trainer) runValidation(ctx context.Context, candidate, champion engine.ShapeWeights, openings []opening) (float64, float64, error) {
	points := 0.0
	total := 0.0
	for _, op := range openings {
		result, _, err := t.playHeadToHead(ctx, candidate, champion, op)
		if err != nil {
			return points, total, err
		}
		points += result
		total += 1.0
	}
	return points, total, nil
}

// playHeadToHead plays both colour assignments from the same opening and
// returns first's score in [0, 1].
func (t *trainer) playHeadToHead(ctx context.Context, first, second engine.ShapeWeights, op opening) (float64, int, error) {
	points := 0.0
	plies := 0
	for _, firstIsX := range []bool{true, false} {
		x, o := first, second
		if !firstIsX {
			x, o = second, first
		}
		winner, matchPlies, err := t.playMatch(ctx, x, o, op)
		if err != nil {
			return 0, 0, err
		}
		plies += matchPlies
		switch {
		case winner == engine.Empty:
			points += 0.5
		case (winner == engine.X) == firstIsX:
			points += 1.0
		}
	}
	return points / 2.0, plies / 2, nil
}

func (t *trainer) buildOpeningSuite(count int) []opening {
	center := engine.NewMove(t.cfg.Rows/2, t.cfg.Cols/2)
	offsets := [][2]int{
		{0, 0}, {1, 0}, {0, 1}, {-1, 0}, {0, -1}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}, {2, 0}, {0, 2},
	}
	suite := make([]opening, 0, count)
	for len(suite) < count {
		used := map[engine.Move]bool{}
		op := make(opening, 0, t.cfg.OpeningPlies)
		for attempts := 0; len(op) < t.cfg.OpeningPlies && attempts < 1000; attempts++ {
			off := offsets[t.intn(len(offsets))]
			m := engine.NewMove(center.Row+off[0], center.Col+off[1])
			if m.Row < 0 || m.Col < 0 || m.Row >= t.cfg.Rows || m.Col >= t.cfg.Cols || used[m] {
				continue
			}
			used[m] = true
			op = append(op, m)
		}
		suite = append(suite, op)
	}
	return suite
}

func (t *trainer) initializePopulation(seed engine.ShapeWeights) []contender {
	pop := make([]contender, 0, t.cfg.PopulationSize)
	pop = append(pop, contender{ID: "p0", Weights: seed, Elo: 1500})
	for i := 1; i < t.cfg.PopulationSize; i++ {
		pop = append(pop, contender{
			ID:      fmt.Sprintf("p%d", i),
			Weights: t.mutateWeights(seed),
			Elo:     1500,
		})
	}
	return pop
}

func (t *trainer) nextGenerationPopulation(champion engine.ShapeWeights, ranked []contender) []contender {
	next := make([]contender, 0, t.cfg.PopulationSize)
	next = append(next, contender{ID: "p0", Weights: champion, Elo: 1500})
	for i := 0; i < len(ranked) && len(next) < t.cfg.PopulationSize && i < t.cfg.EliteCount+1; i++ {
		if ranked[i].Weights == champion {
			continue
		}
		next = append(next, contender{
			ID:      fmt.Sprintf("elite-%d", i),
			Weights: ranked[i].Weights,
			Elo:     1500,
		})
	}
	parentPool := ranked
	if len(parentPool) > t.cfg.EliteCount+1 {
		parentPool = parentPool[:t.cfg.EliteCount+1]
	}
	for len(next) < t.cfg.PopulationSize {
		parent := parentPool[t.intn(len(parentPool))]
		next = append(next, contender{
			ID:      fmt.Sprintf("mut-%d", len(next)),
			Weights: t.mutateWeights(parent.Weights),
			Elo:     1500,
		})
	}
	return next
}

// mutateWeights scales every tier by a random factor in
// [1-strength, 1+strength]. Draws that break the tier order are retried; the
// parent is returned if none succeeds.
func (t *trainer) mutateWeights(base engine.ShapeWeights) engine.ShapeWeights {
	mutate := func(v int64) int64 {
		factor := 1 + (t.float()*2-1)*t.cfg.MutationStrength
		next := math.Round(float64(v) * factor)
		if math.IsNaN(next) || math.IsInf(next, 0) || next < 0 {
			return v
		}
		return int64(next)
	}
	for attempt := 0; attempt < 16; attempt++ {
		out := base
		out.OpenFour = mutate(out.OpenFour)
		out.BlockedFour = mutate(out.BlockedFour)
		out.DeadFour = mutate(out.DeadFour)
		out.OpenThree = mutate(out.OpenThree)
		out.SleepingThree = mutate(out.SleepingThree)
		out.DeadThree = mutate(out.DeadThree)
		out.OpenTwo = mutate(out.OpenTwo)
		out.SleepingTwo = mutate(out.SleepingTwo)
		out.DeadTwo = mutate(out.DeadTwo)
		if out.Validate() == nil {
			return out
		}
	}
	return base
}

func sortContendersByElo(list []contender) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Elo > list[j].Elo
	})
}

func updateElo(a *contender, b *contender, resultForA float64, k float64) {
	expA := 1.0 / (1.0 + math.Pow(10, (b.Elo-a.Elo)/400.0))
	expB := 1.0 / (1.0 + math.Pow(10, (a.Elo-b.Elo)/400.0))
	a.Elo += k * (resultForA - expA)
	b.Elo += k * ((1.0 - resultForA) - expB)
}
