package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Str("component", "trainer").Logger()
	level, err := zerolog.ParseLevel(getenv("TRAINER_LOG_LEVEL", "info"))
	if err != nil {
		log.Fatal().Err(err).Msg("parse log level")
	}
	zerolog.SetGlobalLevel(level)

	rows := getenvInt("TRAINER_ROWS", 11)
	cols := getenvInt("TRAINER_COLS", rows)
	winLength := getenvInt("TRAINER_WIN_LENGTH", 5)
	populationSize := getenvInt("HEURISTIC_POPULATION_SIZE", 6)
	if populationSize < 4 {
		populationSize = 4
	}
	eliteCount := getenvInt("HEURISTIC_ELITE_COUNT", 2)
	if eliteCount >= populationSize {
		eliteCount = populationSize - 1
	}
	mutationStrength := getenvFloat("HEURISTIC_MUTATION_STRENGTH", 0.15)
	if mutationStrength <= 0 {
		mutationStrength = 0.15
	}
	eloK := getenvFloat("HEURISTIC_ELO_K", 20)
	if eloK <= 0 {
		eloK = 20
	}
	validationPassRate := getenvFloat("HEURISTIC_VALIDATION_PASS_RATE", 0.55)
	if validationPassRate <= 0 || validationPassRate > 1 {
		validationPassRate = 0.55
	}

	t, err := newTrainer(trainerConfig{
		Rows:               rows,
		Cols:               cols,
		WinLength:          winLength,
		SearchDepth:        getenvInt("TRAINER_SEARCH_DEPTH", 2),
		CacheCapacity:      getenvInt("TRAINER_CACHE_CAPACITY", 1<<15),
		PopulationSize:     populationSize,
		EliteCount:         eliteCount,
		MutationStrength:   mutationStrength,
		TrainingOpenings:   getenvInt("HEURISTIC_TRAINING_OPENINGS", 3),
		ValidationOpenings: getenvInt("HEURISTIC_VALIDATION_OPENINGS", 4),
		OpeningPlies:       getenvInt("HEURISTIC_OPENING_PLIES", 2),
		EloK:               eloK,
		ValidationPassRate: validationPassRate,
		Generations:        getenvInt("TRAINER_GENERATIONS", 10),
		OutputPath:         getenv("TRAINER_OUTPUT", "champion.yaml"),
		SeedPath:           getenv("TRAINER_SEED_WEIGHTS", ""),
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("configure trainer")
	}

	ctx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	champion, err := t.run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("training failed")
	}
	log.Info().Interface("weights", champion).Msg("training finished")
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed int
	if _, err := fmt.Sscanf(value, "%d", &parsed); err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var parsed float64
	if _, err := fmt.Sscanf(value, "%f", &parsed); err != nil {
		return fallback
	}
	return parsed
}
