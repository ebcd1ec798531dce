package main

import "github.com/inarow/inarow/engine"

type GameStatus int

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusXWon
	StatusOWon
	StatusDraw
)

type GameState struct {
	Grid        *engine.Grid
	ToMove      engine.Symbol
	Status      GameStatus
	HasLastMove bool
	LastMove    engine.Move
	LastMessage string
	WinningLine []engine.Move
}

func (s *GameState) Reset(settings GameSettings, grid *engine.Grid) {
	s.Grid = grid
	if settings.XStarts {
		s.ToMove = engine.X
	} else {
		s.ToMove = engine.O
	}
	s.Status = StatusNotStarted
	s.HasLastMove = false
	s.LastMove = engine.Move{Row: -1, Col: -1}
	s.LastMessage = ""
	s.WinningLine = nil
}

// Clone copies the state deeply enough to be read outside the controller lock.
func (s GameState) Clone() GameState {
	clone := s
	if s.Grid != nil {
		clone.Grid = s.Grid.Clone()
	}
	clone.WinningLine = append([]engine.Move(nil), s.WinningLine...)
	return clone
}

func statusForWinner(symbol engine.Symbol) GameStatus {
	if symbol == engine.X {
		return StatusXWon
	}
	return StatusOWon
}
