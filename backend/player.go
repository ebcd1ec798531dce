package main

import "github.com/inarow/inarow/engine"

// IPlayer is one seat of the match. Human seats are fed by HTTP requests,
// AI seats search in the background between ticks.
type IPlayer interface {
	IsHuman() bool
	Symbol() engine.Symbol
}
