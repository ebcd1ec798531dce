package main

import (
	"testing"
	"time"

	"github.com/inarow/inarow/engine"
	"github.com/rs/zerolog"
)

func withConfig(t *testing.T, edit func(*Config)) {
	t.Helper()
	prev := GetConfig()
	cfg := prev
	edit(&cfg)
	configStore.Update(cfg)
	t.Cleanup(func() { configStore.Update(prev) })
}

func newTestController(t *testing.T, settings GameSettings) *GameController {
	t.Helper()
	controller, err := NewGameController(settings, zerolog.Nop(), nil)
	if err != nil {
		t.Fatalf("expected controller, got %v", err)
	}
	t.Cleanup(controller.waitForAI)
	return controller
}

func tickUntil(t *testing.T, controller *GameController, done func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		controller.Tick()
		if done() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("expected condition before deadline, status %s", statusToString(controller.State().Status))
}

func TestUpdateSettingsSwitchToAIVsAIKeepsBoardAndContinuesGame(t *testing.T) {
	withConfig(t, func(cfg *Config) {
		cfg.AiMaxDepth = 1
		cfg.ZobristSeed = 7
	})

	settings := DefaultGameSettings()
	settings.XType = PlayerHuman
	settings.OType = PlayerHuman

	controller := newTestController(t, settings)
	if err := controller.StartGame(settings); err != nil {
		t.Fatalf("expected start, got %v", err)
	}

	if applied, reason := controller.ApplyHumanMove(engine.NewMove(7, 7)); !applied {
		t.Fatalf("expected first human move to apply: %s", reason)
	}
	if applied, reason := controller.ApplyHumanMove(engine.NewMove(7, 8)); !applied {
		t.Fatalf("expected second human move to apply: %s", reason)
	}

	before := controller.State()
	beforeHistorySize := controller.History().Size()
	if beforeHistorySize != 2 {
		t.Fatalf("expected 2 moves before settings switch, got %d", beforeHistorySize)
	}

	updated := controller.Settings()
	updated.XType = PlayerAI
	updated.OType = PlayerAI
	updated.Rows = 9
	if err := controller.UpdateSettings(updated, false); err != nil {
		t.Fatalf("expected settings update, got %v", err)
	}

	after := controller.State()
	if after.Grid.Fingerprint() != before.Grid.Fingerprint() || after.Grid.At(7, 8) != engine.O {
		t.Fatalf("expected board stones to be preserved when switching player types")
	}
	if got := controller.Settings(); got.XType != PlayerAI || got.OType != PlayerAI || got.Rows != 15 {
		t.Fatalf("expected ai_vs_ai on the same board, got %+v", got)
	}

	tickUntil(t, controller, func() bool { return controller.History().Size() > beforeHistorySize })
	last, _ := controller.LatestHistoryEntry()
	if !last.IsAi || last.Player != engine.X {
		t.Fatalf("expected an AI move for X, got %+v", last)
	}
}

func TestUpdateSettingsRejectsUnknownDifficulty(t *testing.T) {
	controller := newTestController(t, DefaultGameSettings())
	update := controller.Settings()
	update.Difficulty = engine.Difficulty(9)
	if err := controller.UpdateSettings(update, false); err == nil {
		t.Fatalf("expected unknown difficulty to be rejected")
	}
	if controller.Settings().Difficulty != engine.DifficultyNormal {
		t.Fatalf("expected settings to be unchanged")
	}
}
