package main

import (
	"testing"

	"github.com/inarow/inarow/engine"
	"github.com/rs/zerolog"
)

func newTestAIPlayer(t *testing.T, difficulty engine.Difficulty) *AIPlayer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.AiMaxDepth = 1
	player, err := NewAIPlayer(engine.O, difficulty, cfg, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("expected ai player, got %v", err)
	}
	t.Cleanup(player.Wait)
	return player
}

func TestAIPlayerSearchesAClone(t *testing.T) {
	grid, err := engine.NewGrid(7, 7, 4, engine.WithSeed(3))
	if err != nil {
		t.Fatalf("expected grid, got %v", err)
	}
	if err := grid.Apply(engine.X, engine.NewMove(3, 3)); err != nil {
		t.Fatalf("expected apply, got %v", err)
	}
	before := grid.Fingerprint()

	player := newTestAIPlayer(t, engine.DifficultyNormal)
	player.StartThinking(grid)
	player.Wait()

	if !player.HasMoveReady() {
		t.Fatalf("expected a finished search to leave a move ready")
	}
	move, stats, err := player.TakeMove()
	if err != nil {
		t.Fatalf("expected move, got %v", err)
	}
	if !grid.IsValid(move) {
		t.Fatalf("expected a free cell, got %s", move)
	}
	if stats.Nodes == 0 {
		t.Fatalf("expected search stats to be recorded")
	}
	if grid.Fingerprint() != before || grid.Marked() != 1 {
		t.Fatalf("expected caller grid to be untouched")
	}
	if player.HasMoveReady() {
		t.Fatalf("expected TakeMove to clear the ready flag")
	}
}

func TestAIPlayerCacheStatsAndReset(t *testing.T) {
	grid, err := engine.NewGrid(7, 7, 4)
	if err != nil {
		t.Fatalf("expected grid, got %v", err)
	}
	_ = grid.Apply(engine.X, engine.NewMove(3, 3))

	player := newTestAIPlayer(t, engine.DifficultyEasy)
	player.StartThinking(grid)
	player.Wait()
	stats, ok := player.CacheStats()
	if !ok || stats.Size == 0 {
		t.Fatalf("expected a populated cache, got %+v (ok=%v)", stats, ok)
	}
	player.ResetCache()
	if stats, _ := player.CacheStats(); stats.Size != 0 {
		t.Fatalf("expected reset to clear the reported size, got %d", stats.Size)
	}
}

func TestRandomSeatHasNoCache(t *testing.T) {
	player := newTestAIPlayer(t, engine.DifficultyRandom)
	if _, ok := player.CacheStats(); ok {
		t.Fatalf("expected random seat to report no cache")
	}
	grid, _ := engine.NewGrid(3, 3, 3)
	player.StartThinking(grid)
	player.Wait()
	move, _, err := player.TakeMove()
	if err != nil || !grid.IsValid(move) {
		t.Fatalf("expected a legal random move, got %s (%v)", move, err)
	}
}
