package main

import (
	"github.com/inarow/inarow/engine"
	"github.com/pkg/errors"
)

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	Rows       int               `json:"rows"`
	Cols       int               `json:"cols"`
	WinLength  int               `json:"win_length"`
	XType      PlayerType        `json:"-"`
	OType      PlayerType        `json:"-"`
	XStarts    bool              `json:"x_starts"`
	Difficulty engine.Difficulty `json:"difficulty"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		Rows:       15,
		Cols:       15,
		WinLength:  5,
		XType:      PlayerHuman,
		OType:      PlayerAI,
		XStarts:    true,
		Difficulty: engine.DifficultyNormal,
	}
}

func (s GameSettings) Validate() error {
	if s.Rows <= 0 || s.Cols <= 0 || s.Rows > engine.MaxDimension || s.Cols > engine.MaxDimension {
		return errors.Errorf("board %dx%d out of range 1..%d", s.Rows, s.Cols, engine.MaxDimension)
	}
	if s.WinLength <= 0 || (s.WinLength > s.Rows && s.WinLength > s.Cols) {
		return errors.Errorf("win length %d does not fit a %dx%d board", s.WinLength, s.Rows, s.Cols)
	}
	if s.Difficulty < engine.DifficultyRandom || s.Difficulty > engine.DifficultyHard {
		return errors.Errorf("unknown difficulty %d", s.Difficulty)
	}
	return nil
}

func (s GameSettings) typeFor(symbol engine.Symbol) PlayerType {
	if symbol == engine.X {
		return s.XType
	}
	return s.OType
}
