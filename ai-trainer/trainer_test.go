package main

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/inarow/inarow/engine"
	"github.com/rs/zerolog"
)

func newTestTrainer(t *testing.T, cfg trainerConfig) *trainer {
	t.Helper()
	tr, err := newTrainer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected trainer, got %v", err)
	}
	rng := rand.New(rand.NewSource(11))
	tr.intn = rng.Intn
	tr.float = rng.Float64
	return tr
}

func smallConfig(t *testing.T) trainerConfig {
	return trainerConfig{
		Rows:               5,
		Cols:               5,
		WinLength:          4,
		SearchDepth:        1,
		CacheCapacity:      1024,
		PopulationSize:     4,
		EliteCount:         1,
		MutationStrength:   0.2,
		TrainingOpenings:   1,
		ValidationOpenings: 1,
		OpeningPlies:       2,
		EloK:               20,
		ValidationPassRate: 0.5,
		Generations:        1,
		OutputPath:         filepath.Join(t.TempDir(), "out", "champion.yaml"),
	}
}

func TestUpdateEloIsZeroSum(t *testing.T) {
	a := contender{Elo: 1500}
	b := contender{Elo: 1600}
	updateElo(&a, &b, 1, 20)
	if a.Elo <= 1500 || b.Elo >= 1600 {
		t.Fatalf("expected the upset to move ratings, got %.2f / %.2f", a.Elo, b.Elo)
	}
	if total := a.Elo + b.Elo; total < 3099.999 || total > 3100.001 {
		t.Fatalf("expected ratings to stay zero sum, got %.4f", total)
	}
}

func TestMutateWeightsKeepsTierOrder(t *testing.T) {
	tr := newTestTrainer(t, smallConfig(t))
	base := engine.DefaultShapeWeights()
	changed := false
	for i := 0; i < 200; i++ {
		mutated := tr.mutateWeights(base)
		if err := mutated.Validate(); err != nil {
			t.Fatalf("expected valid weights, got %v", err)
		}
		if mutated != base {
			changed = true
		}
	}
	if !changed {
		t.Fatalf("expected at least one mutation to change the weights")
	}
}

func TestOpeningSuiteStaysOnBoard(t *testing.T) {
	cfg := smallConfig(t)
	cfg.OpeningPlies = 4
	tr := newTestTrainer(t, cfg)
	for _, op := range tr.buildOpeningSuite(5) {
		if len(op) != cfg.OpeningPlies {
			t.Fatalf("expected %d plies, got %v", cfg.OpeningPlies, op)
		}
		seen := map[engine.Move]bool{}
		for _, m := range op {
			if m.Row < 0 || m.Col < 0 || m.Row >= cfg.Rows || m.Col >= cfg.Cols || seen[m] {
				t.Fatalf("expected distinct on-board cells, got %v", op)
			}
			seen[m] = true
		}
	}
}

func TestPlayMatchFinishes(t *testing.T) {
	tr := newTestTrainer(t, smallConfig(t))
	weights := engine.DefaultShapeWeights()
	winner, plies, err := tr.playMatch(context.Background(), weights, weights, opening{engine.NewMove(2, 2), engine.NewMove(1, 1)})
	if err != nil {
		t.Fatalf("expected match to finish, got %v", err)
	}
	if plies < 7 || plies > 25 {
		t.Fatalf("expected a complete game, got %d plies", plies)
	}
	if winner != engine.X && winner != engine.O && plies != 25 {
		t.Fatalf("expected a winner or a full board, got %s after %d plies", winner, plies)
	}
}

func TestPlayMatchStopsOnCancel(t *testing.T) {
	tr := newTestTrainer(t, smallConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	weights := engine.DefaultShapeWeights()
	if _, _, err := tr.playMatch(ctx, weights, weights, nil); err == nil {
		t.Fatalf("expected cancelled match to fail")
	}
}

func TestRunWritesChampion(t *testing.T) {
	cfg := smallConfig(t)
	tr := newTestTrainer(t, cfg)
	champion, err := tr.run(context.Background())
	if err != nil {
		t.Fatalf("expected training to finish, got %v", err)
	}
	stored, err := readChampion(cfg.OutputPath)
	if err != nil {
		t.Fatalf("expected champion file, got %v", err)
	}
	if stored != champion {
		t.Fatalf("expected stored champion %+v, got %+v", champion, stored)
	}
}

func TestReadChampionRejectsBrokenOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	weights := engine.DefaultShapeWeights()
	weights.DeadTwo = weights.SleepingTwo
	if err := writeChampion(path, weights); err != nil {
		t.Fatalf("expected write, got %v", err)
	}
	if _, err := readChampion(path); err == nil {
		t.Fatalf("expected invalid weights to be rejected")
	}
}
