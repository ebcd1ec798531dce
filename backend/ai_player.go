package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type aiResult struct {
	move    engine.Move
	err     error
	stats   engine.SearchStats
	elapsed time.Duration
}

// AIPlayer runs the seat's engine player on a grid clone in a background
// goroutine. The engine is only touched by that goroutine; everything read
// from the controller side goes through moveMutex or atomics.
type AIPlayer struct {
	player     engine.Player
	difficulty engine.Difficulty
	logger     zerolog.Logger
	metrics    *Metrics

	moveMutex  sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	clearCache atomic.Bool
	result     aiResult
	cacheStats engine.CacheStats
}

func NewAIPlayer(symbol engine.Symbol, difficulty engine.Difficulty, config Config, logger zerolog.Logger, metrics *Metrics) (*AIPlayer, error) {
	logger = logger.With().Str("seat", symbol.String()).Str("difficulty", difficulty.String()).Logger()
	opts := []engine.EngineOption{
		engine.WithCacheCapacity(config.AiCacheCapacity),
		engine.WithLogger(logger),
	}
	if config.AiMaxDepth > 0 {
		opts = append(opts, engine.WithMaxDepth(config.AiMaxDepth))
	}
	player, err := engine.NewComputerPlayer(symbol, difficulty, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "ai seat %s", symbol)
	}
	return &AIPlayer{
		player:     player,
		difficulty: difficulty,
		logger:     logger,
		metrics:    metrics,
	}, nil
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

func (a *AIPlayer) Symbol() engine.Symbol {
	return a.player.Symbol()
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

// StartThinking searches a private clone of grid. The caller keeps mutating
// its own grid freely while the search runs.
func (a *AIPlayer) StartThinking(grid *engine.Grid) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)

	clone := grid.Clone()
	done := make(chan struct{})
	a.workerDone = done
	config := GetConfig()
	go func() {
		defer close(done)
		defer a.thinking.Store(false)

		ai, searching := a.player.(*engine.AIPlayer)
		if searching && a.clearCache.Swap(false) {
			ai.Engine().ResetCache()
		}
		start := time.Now()
		move, err := a.player.Decide(clone)
		result := aiResult{move: move, err: err, elapsed: time.Since(start)}
		var cacheStats engine.CacheStats
		if searching {
			result.stats = ai.Engine().LastStats()
			cacheStats = ai.Engine().Cache().Stats()
		}
		a.metrics.ObserveDecide(a.difficulty, result)

		if err != nil {
			a.logger.Error().Err(err).Int("marked", clone.Marked()).Msg("decide failed")
		} else if config.LogSearchStats {
			a.logger.Info().
				Str("move", move.String()).
				Int("depth", result.stats.Depth).
				Int64("score", result.stats.Score).
				Int64("nodes", result.stats.Nodes).
				Int64("cache_hits", result.stats.CacheHits).
				Int64("cutoffs", result.stats.Cutoffs).
				Dur("elapsed", result.elapsed).
				Msg("search stats")
		}

		a.moveMutex.Lock()
		a.result = result
		if searching {
			a.cacheStats = cacheStats
		}
		a.moveMutex.Unlock()
		a.moveReady.Store(true)
	}()
}

// TakeMove returns the finished search result and clears it.
func (a *AIPlayer) TakeMove() (engine.Move, engine.SearchStats, error) {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.result.move, a.result.stats, a.result.err
}

// Wait blocks until a running search has finished.
func (a *AIPlayer) Wait() {
	if a.workerDone != nil {
		<-a.workerDone
	}
}

// CacheStats is the cache snapshot taken after the last search.
func (a *AIPlayer) CacheStats() (engine.CacheStats, bool) {
	if _, ok := a.player.(*engine.AIPlayer); !ok {
		return engine.CacheStats{}, false
	}
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	return a.cacheStats, true
}

// ResetCache empties the engine cache before the next search starts.
func (a *AIPlayer) ResetCache() {
	a.clearCache.Store(true)
	a.moveMutex.Lock()
	a.cacheStats.Size = 0
	a.moveMutex.Unlock()
}
