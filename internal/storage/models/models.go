// Package models defines the database records for stored board sets.
package models

import "time"

// BoardSet is a stored generation run: the boards it produced plus the
// parameters that reproduce it.
type BoardSet struct {
	ID         string // UUID
	Name       string
	Game       string
	Seed       int64 // PRNG seed that reproduces this set
	Attempts   int   // Allocation attempts consumed before success
	BoardCount int
	BoardSize  int
	CreatedAt  time.Time
}

// Board is one board of a stored set.
type Board struct {
	ID         int
	BoardSetID string // Foreign key to board_sets
	Position   int    // 1-based position within the set
	Cells      []string
}
