package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/inarow/inarow/engine"
)

type loopConfig struct {
	Rows        int
	Cols        int
	WinLength   int
	Mode        string // pve, pvp or eve
	HumanSymbol engine.Symbol
	Difficulty  engine.Difficulty
	Depth       int
	Weights     engine.ShapeWeights
}

type decision struct {
	move    engine.Move
	err     error
	elapsed time.Duration
}

// GameLoop drives one window. Computer seats search a clone of the grid on
// their own goroutine; the result comes back on decided.
type GameLoop struct {
	cfg    loopConfig
	logger zerolog.Logger

	grid    *engine.Grid
	seats   map[engine.Symbol]engine.Player
	human   map[engine.Symbol]bool
	click   *clickSource
	toMove  engine.Symbol
	message string

	thinking       bool
	restartPending bool
	decided        chan decision
}

func NewGameLoop(cfg loopConfig, logger zerolog.Logger) (*GameLoop, error) {
	gl := &GameLoop{
		cfg:     cfg,
		logger:  logger,
		click:   &clickSource{},
		decided: make(chan decision, 1),
	}
	if err := gl.newGame(); err != nil {
		return nil, err
	}
	return gl, nil
}

func (gl *GameLoop) newGame() error {
	grid, err := engine.NewGrid(gl.cfg.Rows, gl.cfg.Cols, gl.cfg.WinLength, engine.WithWeights(gl.cfg.Weights))
	if err != nil {
		return err
	}
	human := map[engine.Symbol]bool{}
	switch gl.cfg.Mode {
	case "pvp":
		human[engine.X], human[engine.O] = true, true
	case "pve":
		human[gl.cfg.HumanSymbol] = true
	case "eve":
	default:
		return errors.Errorf("unknown mode %q", gl.cfg.Mode)
	}
	seats := make(map[engine.Symbol]engine.Player, 2)
	for _, s := range []engine.Symbol{engine.X, engine.O} {
		if human[s] {
			seats[s] = engine.NewHumanPlayer(s, gl.click)
			continue
		}
		opts := []engine.EngineOption{engine.WithLogger(gl.logger)}
		if gl.cfg.Depth > 0 {
			opts = append(opts, engine.WithMaxDepth(gl.cfg.Depth))
		}
		p, err := engine.NewComputerPlayer(s, gl.cfg.Difficulty, opts...)
		if err != nil {
			return err
		}
		seats[s] = p
	}
	gl.grid = grid
	gl.seats = seats
	gl.human = human
	gl.toMove = engine.X
	gl.message = "Click a cell to play. R restarts, Esc quits."
	gl.click.clear()
	return nil
}

func (gl *GameLoop) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		gl.restartPending = true
	}

	if gl.thinking {
		select {
		case d := <-gl.decided:
			gl.thinking = false
			if !gl.restartPending {
				gl.applyDecision(d)
			}
		default:
			return nil
		}
	}
	if gl.restartPending {
		gl.restartPending = false
		return gl.newGame()
	}
	if gl.grid.IsTerminal() {
		gl.click.clear()
		return nil
	}

	player := gl.seats[gl.toMove]
	if !gl.human[gl.toMove] {
		gl.startThinking(player)
		return nil
	}
	gl.click.handleMouse(gl.grid)
	m, err := player.Decide(gl.grid)
	if errors.Is(err, engine.ErrNoSelection) {
		return nil
	}
	var invalid *engine.InvalidMoveError
	if errors.As(err, &invalid) {
		gl.message = "Illegal move: " + invalid.Reason
		return nil
	}
	if err != nil {
		return err
	}
	return gl.play(m)
}

func (gl *GameLoop) startThinking(player engine.Player) {
	gl.thinking = true
	snapshot := gl.grid.Clone()
	go func() {
		start := time.Now()
		m, err := player.Decide(snapshot)
		gl.decided <- decision{move: m, err: err, elapsed: time.Since(start)}
	}()
}

func (gl *GameLoop) applyDecision(d decision) {
	if d.err != nil {
		gl.logger.Error().Err(d.err).Str("player", gl.toMove.String()).Msg("ai decide")
		gl.message = "AI failed: " + d.err.Error()
		return
	}
	ev := gl.logger.Debug().
		Str("player", gl.toMove.String()).
		Str("move", d.move.String()).
		Dur("elapsed", d.elapsed)
	if ai, ok := gl.seats[gl.toMove].(*engine.AIPlayer); ok {
		stats := ai.Engine().LastStats()
		ev = ev.Int64("score", stats.Score).Int64("nodes", stats.Nodes)
	}
	ev.Msg("ai move")
	if err := gl.play(d.move); err != nil {
		gl.message = err.Error()
	}
}

func (gl *GameLoop) play(m engine.Move) error {
	if err := gl.grid.Apply(gl.toMove, m); err != nil {
		return err
	}
	gl.message = ""
	switch {
	case gl.grid.Winner() != engine.Empty:
		gl.message = gl.grid.Winner().String() + " wins. Press R for a new game."
		gl.logger.Info().Str("winner", gl.grid.Winner().String()).Int("moves", gl.grid.Marked()).Msg("game over")
	case gl.grid.IsFull():
		gl.message = "Draw. Press R for a new game."
		gl.logger.Info().Int("moves", gl.grid.Marked()).Msg("game drawn")
	}
	gl.toMove = gl.toMove.Opponent()
	return nil
}

func (gl *GameLoop) stateLabel() string {
	switch {
	case gl.grid.Winner() != engine.Empty:
		return gl.grid.Winner().String() + " WON"
	case gl.grid.IsFull():
		return "DRAW"
	case gl.thinking:
		return "THINKING"
	default:
		return "ON GOING"
	}
}

func (gl *GameLoop) Draw(screen *ebiten.Image) {
	drawBoard(screen, gl.grid)
	drawHeader(screen, gl)
}

func (gl *GameLoop) Layout(_, _ int) (int, int) { return screenSize(gl.grid) }
