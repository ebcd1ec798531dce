package main

import (
	"time"

	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Game struct {
	settings  GameSettings
	state     GameState
	history   MoveHistory
	xPlayer   IPlayer
	oPlayer   IPlayer
	turnStart time.Time
	logger    zerolog.Logger
	metrics   *Metrics
}

func NewGame(settings GameSettings, logger zerolog.Logger, metrics *Metrics) (Game, error) {
	g := Game{logger: logger, metrics: metrics}
	if err := g.Reset(settings); err != nil {
		return Game{}, err
	}
	return g, nil
}

func newGrid(settings GameSettings, config Config) (*engine.Grid, error) {
	opts := []engine.GridOption{engine.WithWeights(config.Heuristics)}
	if config.ZobristSeed != 0 {
		opts = append(opts, engine.WithSeed(config.ZobristSeed))
	}
	grid, err := engine.NewGrid(settings.Rows, settings.Cols, settings.WinLength, opts...)
	return grid, errors.Wrap(err, "new grid")
}

// Reset discards the match and prepares a new one with settings.
func (g *Game) Reset(settings GameSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	grid, err := newGrid(settings, GetConfig())
	if err != nil {
		return err
	}
	g.settings = settings
	g.state.Reset(settings, grid)
	g.history.Clear()
	if err := g.createPlayers(); err != nil {
		return err
	}
	g.turnStart = time.Now()
	g.logMatchup()
	return nil
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
	}
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

func (g *Game) TryApplyMove(move engine.Move) (bool, string) {
	return g.applyMove(move, HistoryEntry{})
}

func (g *Game) applyMove(move engine.Move, entry HistoryEntry) (bool, string) {
	if g.state.Status != StatusRunning {
		return false, "game not running"
	}
	player := g.state.ToMove
	if err := g.state.Grid.Apply(player, move); err != nil {
		var invalid *engine.InvalidMoveError
		if errors.As(err, &invalid) {
			g.state.LastMessage = "Illegal move: " + invalid.Reason
		} else {
			g.state.LastMessage = "Illegal move: " + err.Error()
		}
		return false, g.state.LastMessage
	}
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	g.state.LastMessage = ""
	g.state.LastMove = move
	g.state.HasLastMove = true

	entry.Move = move
	entry.Player = player
	entry.ElapsedMs = elapsedMs
	g.history.Push(entry)
	g.metrics.ObserveMove(player, entry.IsAi)
	g.logMovePlayed(entry)

	grid := g.state.Grid
	switch {
	case grid.IsWinner(player):
		g.state.Status = statusForWinner(player)
		g.state.WinningLine = winningLine(grid, move, player)
		g.logResult()
	case grid.IsFull():
		g.state.Status = StatusDraw
		g.logResult()
	default:
		g.state.ToMove = player.Opponent()
		g.turnStart = time.Now()
	}
	return true, ""
}

// Tick advances the seat to move: a pending human cell is applied, an AI
// seat gets its finished search applied or a new search started. It reports
// whether a move was played.
func (g *Game) Tick() bool {
	if g.state.Status != StatusRunning {
		return false
	}
	switch player := g.currentPlayer().(type) {
	case *HumanPlayer:
		if !player.HasPendingMove() {
			return false
		}
		move, err := player.TakePendingMove(g.state.Grid)
		if err != nil {
			g.state.LastMessage = "Illegal move: " + err.Error()
			return false
		}
		applied, _ := g.TryApplyMove(move)
		return applied
	case *AIPlayer:
		if player.HasMoveReady() {
			move, stats, err := player.TakeMove()
			if err != nil {
				g.state.LastMessage = "AI failed: " + err.Error()
				return false
			}
			applied, _ := g.applyMove(move, HistoryEntry{
				IsAi:  true,
				Depth: stats.Depth,
				Score: stats.Score,
				Nodes: stats.Nodes,
			})
			return applied
		}
		if !player.IsThinking() {
			player.StartThinking(g.state.Grid)
		}
	}
	return false
}

func (g *Game) SubmitHumanMove(move engine.Move) bool {
	human, ok := g.currentPlayer().(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForSymbol(g.state.ToMove)
}

func (g *Game) playerForSymbol(symbol engine.Symbol) IPlayer {
	if symbol == engine.X {
		return g.xPlayer
	}
	return g.oPlayer
}

func (g *Game) createPlayers() error {
	config := GetConfig()
	seat := func(symbol engine.Symbol) (IPlayer, error) {
		if g.settings.typeFor(symbol) == PlayerHuman {
			return NewHumanPlayer(symbol), nil
		}
		return NewAIPlayer(symbol, g.settings.Difficulty, config, g.logger, g.metrics)
	}
	xPlayer, err := seat(engine.X)
	if err != nil {
		return err
	}
	oPlayer, err := seat(engine.O)
	if err != nil {
		return err
	}
	g.xPlayer, g.oPlayer = xPlayer, oPlayer
	return nil
}

// ResetForConfigChange rebuilds the grid with the current heuristics and
// fresh AI seats, replaying the moves played so far.
func (g *Game) ResetForConfigChange() error {
	grid, err := newGrid(g.settings, GetConfig())
	if err != nil {
		return err
	}
	for _, entry := range g.history.All() {
		if err := grid.Apply(entry.Player, entry.Move); err != nil {
			return errors.Wrap(err, "replay history")
		}
	}
	if err := g.createPlayers(); err != nil {
		return err
	}
	g.state.Grid = grid
	return nil
}

func (g *Game) AiThinking() bool {
	ai, ok := g.currentPlayer().(*AIPlayer)
	return ok && ai.IsThinking()
}

// CacheStats sums the cache snapshots of the AI seats.
func (g *Game) CacheStats() engine.CacheStats {
	var total engine.CacheStats
	for _, player := range []IPlayer{g.xPlayer, g.oPlayer} {
		ai, ok := player.(*AIPlayer)
		if !ok {
			continue
		}
		stats, ok := ai.CacheStats()
		if !ok {
			continue
		}
		total.Hits += stats.Hits
		total.Misses += stats.Misses
		total.Rejected += stats.Rejected
		total.Evictions += stats.Evictions
		total.Size += stats.Size
		total.Capacity += stats.Capacity
	}
	return total
}

func (g *Game) ClearCaches() {
	for _, player := range []IPlayer{g.xPlayer, g.oPlayer} {
		if ai, ok := player.(*AIPlayer); ok {
			ai.ResetCache()
		}
	}
}

// waitForAI blocks until no seat is searching. Only tests need it.
func (g *Game) waitForAI() {
	for _, player := range []IPlayer{g.xPlayer, g.oPlayer} {
		if ai, ok := player.(*AIPlayer); ok {
			ai.Wait()
		}
	}
}

var lineDirections = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// winningLine returns the longest run of symbol through move.
func winningLine(grid *engine.Grid, move engine.Move, symbol engine.Symbol) []engine.Move {
	var best []engine.Move
	for _, d := range lineDirections {
		row, col := move.Row, move.Col
		for grid.InBounds(row-d[0], col-d[1]) && grid.At(row-d[0], col-d[1]) == symbol {
			row, col = row-d[0], col-d[1]
		}
		var line []engine.Move
		for grid.InBounds(row, col) && grid.At(row, col) == symbol {
			line = append(line, engine.NewMove(row, col))
			row, col = row+d[0], col+d[1]
		}
		if len(line) > len(best) {
			best = line
		}
	}
	if len(best) < grid.WinLength() {
		return nil
	}
	return best
}

func (g *Game) logMatchup() {
	label := func(t PlayerType) string {
		if t == PlayerAI {
			return "AI"
		}
		return "Human"
	}
	g.logger.Info().
		Str("x", label(g.settings.XType)).
		Str("o", label(g.settings.OType)).
		Int("rows", g.settings.Rows).
		Int("cols", g.settings.Cols).
		Int("win_length", g.settings.WinLength).
		Str("difficulty", g.settings.Difficulty.String()).
		Msg("new match")
}

func (g *Game) logMovePlayed(entry HistoryEntry) {
	g.logger.Debug().
		Str("player", entry.Player.String()).
		Str("move", entry.Move.String()).
		Bool("ai", entry.IsAi).
		Float64("elapsed_ms", entry.ElapsedMs).
		Int("marked", g.state.Grid.Marked()).
		Msg("move played")
}

func (g *Game) logResult() {
	g.logger.Info().
		Str("status", statusToString(g.state.Status)).
		Int("moves", g.history.Size()).
		Msg("match over")
}
