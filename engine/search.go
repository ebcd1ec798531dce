package engine

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxDepth      = 2
	DefaultCacheCapacity = 1 << 16

	scoreInf   = WinScore * 4
	// Scores within this distance of ±WinScore are wins/losses shifted by ply.
	mateWindow = MaxDimension * MaxDimension
)

type SearchStats struct {
	Nodes       int64         `json:"nodes"`
	Leaves      int64         `json:"leaves"`
	CacheProbes int64         `json:"cache_probes"`
	CacheHits   int64         `json:"cache_hits"`
	Cutoffs     int64         `json:"cutoffs"`
	Candidates  int64         `json:"candidates"`
	Depth       int           `json:"depth"`
	Score       int64         `json:"score"`
	Start       time.Time     `json:"-"`
	Elapsed     time.Duration `json:"elapsed"`
}

type engineConfig struct {
	maxDepth      int
	cacheCapacity int
	logger        zerolog.Logger
}

type EngineOption func(*engineConfig)

func WithMaxDepth(depth int) EngineOption {
	return func(c *engineConfig) {
		c.maxDepth = depth
	}
}

func WithCacheCapacity(capacity int) EngineOption {
	return func(c *engineConfig) {
		c.cacheCapacity = capacity
	}
}

func WithLogger(logger zerolog.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// Engine is a depth-bounded minimax searcher with alpha-beta pruning and a
// private transposition cache. It searches by applying and undoing moves on
// the grid it is given and is not safe for concurrent use.
type Engine struct {
	symbol   Symbol
	opponent Symbol
	maxDepth int
	cache    *TranspositionCache
	table    *ZobristTable
	logger   zerolog.Logger
	stats    SearchStats
}

func NewEngine(symbol Symbol, opts ...EngineOption) (*Engine, error) {
	if symbol != X && symbol != O {
		return nil, errors.Errorf("engine needs X or O, got %d", symbol)
	}
	cfg := engineConfig{
		maxDepth:      DefaultMaxDepth,
		cacheCapacity: DefaultCacheCapacity,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.maxDepth < 1 {
		return nil, errors.Errorf("max depth must be at least 1, got %d", cfg.maxDepth)
	}
	cache, err := NewTranspositionCache(cfg.cacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Engine{
		symbol:   symbol,
		opponent: symbol.Opponent(),
		maxDepth: cfg.maxDepth,
		cache:    cache,
		logger:   cfg.logger,
	}, nil
}

func (e *Engine) Symbol() Symbol { return e.symbol }
func (e *Engine) MaxDepth() int { return e.maxDepth }
func (e *Engine) Cache() *TranspositionCache { return e.cache }
func (e *Engine) LastStats() SearchStats { return e.stats }

// ResetCache forgets every cached evaluation.
func (e *Engine) ResetCache() {
	e.cache.Clear()
}

// Decide picks the move for the engine's symbol on g. The grid is mutated
// during the search and restored before Decide returns.
func (e *Engine) Decide(g *Grid) (Move, error) {
	if g.Marked() == 0 {
		return g.Center(), nil
	}
	if winner := g.Winner(); winner != Empty {
		return Move{}, errors.Wrapf(ErrGameOver, "%s already won", winner)
	}
	if g.IsFull() {
		return Move{}, errors.WithStack(ErrGridFull)
	}
	e.bindTable(g)
	e.stats = SearchStats{Start: time.Now(), Depth: e.maxDepth}

	var (
		best      Move
		bestScore int64
		found     bool
	)
	alpha := -scoreInf
	candidates := Candidates(g, e.symbol)
	e.stats.Candidates += int64(len(candidates))
	for _, m := range candidates {
		if err := g.Apply(e.symbol, m); err != nil {
			return Move{}, errors.Wrapf(err, "candidate %s", m)
		}
		score, err := e.Evaluate(g, 1, e.maxDepth, alpha, scoreInf, false)
		g.Undo(m)
		if err != nil {
			return Move{}, errors.Wrapf(err, "searching %s", m)
		}
		if !found || score > bestScore {
			best, bestScore, found = m, score, true
		}
		if bestScore > alpha {
			alpha = bestScore
		}
	}
	if !found {
		if !g.IsTerminal() {
			return Move{}, errors.Wrapf(ErrNoCandidate, "%d marked cells, fingerprint %#016x", g.Marked(), g.Fingerprint())
		}
		return Move{}, errors.WithStack(ErrGridFull)
	}

	e.stats.Score = bestScore
	e.stats.Elapsed = time.Since(e.stats.Start)
	e.logger.Debug().
		Str("symbol", e.symbol.String()).
		Int("depth", e.maxDepth).
		Int64("nodes", e.stats.Nodes).
		Int64("leaves", e.stats.Leaves).
		Int64("cache_hits", e.stats.CacheHits).
		Int64("cutoffs", e.stats.Cutoffs).
		Int("cache_size", e.cache.Len()).
		Dur("elapsed", e.stats.Elapsed).
		Str("move", best.String()).
		Int64("score", bestScore).
		Msg("decide")
	return best, nil
}

// Evaluate returns the minimax value of g from the engine's point of view,
// searching maxDepth-depth more plies. maximizing is true when it is the
// engine's turn. g is restored before Evaluate returns, also on error.
func (e *Engine) Evaluate(g *Grid, depth, maxDepth int, alpha, beta int64, maximizing bool) (int64, error) {
	e.stats.Nodes++
	remaining := maxDepth - depth
	fingerprint := g.Fingerprint()

	e.stats.CacheProbes++
	if entry, ok := e.cache.Get(fingerprint, remaining); ok {
		score := fromCache(entry.Score, depth)
		if entry.Bound == BoundExact ||
			(entry.Bound == BoundLower && score >= beta) ||
			(entry.Bound == BoundUpper && score <= alpha) {
			e.stats.CacheHits++
			return score, nil
		}
		e.cache.reject()
	}

	if depth >= maxDepth || g.IsTerminal() {
		e.stats.Leaves++
		score := adjustForDepth(e.staticScore(g), depth)
		e.cache.Put(fingerprint, CacheEntry{Score: toCache(score, depth), Depth: remaining, Bound: BoundExact})
		return score, nil
	}

	mover := e.symbol
	best := -scoreInf
	if !maximizing {
		mover = e.opponent
		best = scoreInf
	}
	alphaOrig, betaOrig := alpha, beta
	candidates := Candidates(g, mover)
	e.stats.Candidates += int64(len(candidates))
	for _, m := range candidates {
		if err := g.Apply(mover, m); err != nil {
			return 0, errors.Wrapf(err, "illegal candidate %s at ply %d", m, depth)
		}
		score, err := e.Evaluate(g, depth+1, maxDepth, alpha, beta, !maximizing)
		g.Undo(m)
		if err != nil {
			return 0, err
		}
		if maximizing {
			if score > best {
				best = score
			}
			if best > alpha {
				alpha = best
			}
		} else {
			if score < best {
				best = score
			}
			if best < beta {
				beta = best
			}
		}
		if beta <= alpha {
			e.stats.Cutoffs++
			break
		}
	}

	bound := BoundExact
	switch {
	case best <= alphaOrig:
		bound = BoundUpper
	case best >= betaOrig:
		bound = BoundLower
	}
	e.cache.Put(fingerprint, CacheEntry{Score: toCache(best, depth), Depth: remaining, Bound: bound})
	return best, nil
}

func (e *Engine) staticScore(g *Grid) int64 {
	switch {
	case g.IsWinner(e.symbol):
		return WinScore
	case g.IsWinner(e.opponent):
		return -WinScore
	default:
		return g.RunningScore(e.symbol)
	}
}

// bindTable drops cached entries keyed with another match's Zobrist table.
func (e *Engine) bindTable(g *Grid) {
	table := g.Hasher().Table()
	if e.table == table {
		return
	}
	if e.table != nil {
		e.cache.Clear()
	}
	e.table = table
}

// adjustForDepth turns the win/loss sentinels into distance-aware scores so a
// win found at a shallower ply beats a deeper one and a loss is postponed.
// Ordinary heuristic values pass through unchanged.
func adjustForDepth(score int64, ply int) int64 {
	switch {
	case score >= WinScore:
		return score - int64(ply)
	case score <= -WinScore:
		return score + int64(ply)
	default:
		return score
	}
}

func isDecisive(score int64) bool {
	return score > WinScore-mateWindow || score < -(WinScore-mateWindow)
}

// toCache rebases a decisive score from root distance to distance from the
// node at ply, so it stays valid when the position is reached at another ply.
func toCache(score int64, ply int) int64 {
	if !isDecisive(score) {
		return score
	}
	if score > 0 {
		return score + int64(ply)
	}
	return score - int64(ply)
}

func fromCache(score int64, ply int) int64 {
	if !isDecisive(score) {
		return score
	}
	if score > 0 {
		return score - int64(ply)
	}
	return score + int64(ply)
}
