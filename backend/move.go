package main

import "github.com/inarow/inarow/engine"

// apiMove is a cell on the wire: x is the column, y the row.
type apiMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func toEngineMove(m apiMove) engine.Move {
	return engine.NewMove(m.Y, m.X)
}

func fromEngineMove(m engine.Move) apiMove {
	return apiMove{X: m.Col, Y: m.Row}
}

func fromEngineMoves(moves []engine.Move) []apiMove {
	out := make([]apiMove, len(moves))
	for i, m := range moves {
		out[i] = fromEngineMove(m)
	}
	return out
}
