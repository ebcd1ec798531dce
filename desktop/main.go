package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/inarow/inarow/engine"
)

func main() {
	var (
		rows       = flag.Int("rows", 15, "board rows")
		cols       = flag.Int("cols", 15, "board columns")
		winLength  = flag.Int("win", 5, "stones in a row needed to win")
		mode       = flag.String("mode", "pve", "game mode: pve, pvp or eve")
		human      = flag.String("human", "X", "human symbol in pve mode")
		difficulty = flag.Int("difficulty", int(engine.DifficultyNormal), "AI level: 0 random, 1 easy, 2 normal, 3 hard")
		depth      = flag.Int("depth", 0, "override the search depth of the AI level")
		heuristics = flag.String("heuristics", "", "YAML file with a heuristics: block, as written by ai-trainer")
		logLevel   = flag.String("log-level", "info", "zerolog level")
	)
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("component", "desktop").Logger()
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("parse log level")
	}
	zerolog.SetGlobalLevel(level)

	weights := engine.DefaultShapeWeights()
	if *heuristics != "" {
		if weights, err = loadHeuristics(*heuristics); err != nil {
			log.Fatal().Err(err).Str("path", *heuristics).Msg("load heuristics")
		}
	}
	humanSymbol, err := engine.ParseSymbol(*human)
	if err != nil {
		log.Fatal().Err(err).Msg("parse human symbol")
	}

	loop, err := NewGameLoop(loopConfig{
		Rows:        *rows,
		Cols:        *cols,
		WinLength:   *winLength,
		Mode:        *mode,
		HumanSymbol: humanSymbol,
		Difficulty:  engine.Difficulty(*difficulty),
		Depth:       *depth,
		Weights:     weights,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("create game")
	}
	log.Info().
		Int("rows", *rows).
		Int("cols", *cols).
		Int("win_length", *winLength).
		Str("mode", *mode).
		Str("difficulty", engine.Difficulty(*difficulty).String()).
		Msg("game started")

	if err := Run(loop); err != nil {
		log.Fatal().Err(err).Msg("run game")
	}
}

func loadHeuristics(path string) (engine.ShapeWeights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.ShapeWeights{}, errors.Wrap(err, "read heuristics")
	}
	file := struct {
		Heuristics engine.ShapeWeights `yaml:"heuristics"`
	}{Heuristics: engine.DefaultShapeWeights()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return engine.ShapeWeights{}, errors.Wrap(err, "decode heuristics")
	}
	if err := file.Heuristics.Validate(); err != nil {
		return engine.ShapeWeights{}, err
	}
	return file.Heuristics, nil
}

func Run(loop *GameLoop) error {
	ebiten.SetWindowSize(screenSize(loop.grid))
	ebiten.SetWindowTitle("In a Row")
	ebiten.SetTPS(30)
	if err := ebiten.RunGame(loop); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
