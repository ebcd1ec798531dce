// Package engine plays generalized m,n,k games (Gomoku, tic-tac-toe and the
// like): a grid with Zobrist fingerprints, a shape-based line evaluator and a
// depth-bounded alpha-beta search with a transposition cache.
package engine
