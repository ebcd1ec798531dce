package main

import (
	"sync"

	"github.com/inarow/inarow/engine"
	"github.com/rs/zerolog"
)

type GameController struct {
	mu   sync.Mutex
	game Game
}

func NewGameController(settings GameSettings, logger zerolog.Logger, metrics *Metrics) (*GameController, error) {
	game, err := NewGame(settings, logger, metrics)
	if err != nil {
		return nil, err
	}
	return &GameController{game: game}, nil
}

func (gc *GameController) OnCellClicked(move engine.Move) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.SubmitHumanMove(move)
}

func (gc *GameController) ApplyHumanMove(move engine.Move) (bool, string) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if !gc.game.CurrentPlayerIsHuman() {
		return false, "not human turn"
	}
	return gc.game.TryApplyMove(move)
}

func (gc *GameController) Tick() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Tick()
}

func (gc *GameController) State() GameState {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.State()
}

func (gc *GameController) Settings() GameSettings {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.settings
}

func (gc *GameController) History() MoveHistory {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History()
}

func (gc *GameController) CurrentTurnStartedAtMs() int64 {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.TurnStartedAtMs()
}

func (gc *GameController) LatestHistoryEntry() (HistoryEntry, bool) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.History().Last()
}

func (gc *GameController) AiThinking() bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.AiThinking()
}

func (gc *GameController) CacheStats() engine.CacheStats {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.CacheStats()
}

func (gc *GameController) ClearCaches() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.ClearCaches()
}

func (gc *GameController) Reset(settings GameSettings) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.Reset(settings)
}

func (gc *GameController) StartGame(settings GameSettings) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if err := gc.game.Reset(settings); err != nil {
		return err
	}
	gc.game.Start()
	return nil
}

// UpdateSettings changes the seats. Board geometry only changes on reset.
func (gc *GameController) UpdateSettings(update GameSettings, reset bool) error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	if reset {
		return gc.game.Reset(update)
	}
	current := gc.game.settings
	update.Rows, update.Cols, update.WinLength = current.Rows, current.Cols, current.WinLength
	update.XStarts = current.XStarts
	if err := update.Validate(); err != nil {
		return err
	}
	gc.game.settings = update
	return gc.game.createPlayers()
}

func (gc *GameController) ResetForConfigChange() error {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	return gc.game.ResetForConfigChange()
}

func (gc *GameController) waitForAI() {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	gc.game.waitForAI()
}
