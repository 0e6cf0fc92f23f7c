// Package boardgen allocates the master pool onto a fixed number of boards
// using a randomized greedy strategy with whole-attempt retries.
package boardgen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/loteria-tools/tablero/internal/catalog"
)

// Params controls an allocation run.
type Params struct {
	// BoardCount is the number of boards to generate.
	BoardCount int

	// BoardSize is the number of cells per board.
	BoardSize int

	// MaxAttempts bounds how many full allocation attempts are made before
	// giving up with an ExhaustionError.
	MaxAttempts int
}

// DefaultParams returns the reference game setup: 15 boards of 16 cells,
// with up to 1000 attempts.
func DefaultParams() Params {
	return Params{
		BoardCount:  15,
		BoardSize:   16,
		MaxAttempts: 1000,
	}
}

// Allocate generates a board set from the catalogue using the given seed.
// A zero seed selects a random one; the seed actually used is recorded in
// the returned set so any run can be reproduced.
func Allocate(cat *catalog.Catalog, params Params, seed int64) (*BoardSet, error) {
	rng, effective, err := NewSeededRNG(seed)
	if err != nil {
		return nil, err
	}
	set, err := AllocateWithRNG(cat, params, rng)
	if err != nil {
		return nil, err
	}
	set.Seed = effective
	return set, nil
}

// AllocateWithRNG generates a board set drawing all randomness from the
// given generator. Equal catalogues, params and generator states yield
// byte-for-byte identical board sets.
//
// Each attempt deals boards one at a time from the undealt remainder of the
// pool: the remainder is shuffled, then scanned greedily, taking the first
// occurrence of each item not already on the board. An attempt is abandoned
// as a whole when a board cannot reach BoardSize distinct items or when it
// duplicates an earlier board's item set; nothing is ever patched up
// mid-attempt. The error is an ExhaustionError once MaxAttempts attempts
// have failed, or a catalog.ConfigError when the setup could never succeed.
func AllocateWithRNG(cat *catalog.Catalog, params Params, rng *rand.Rand) (*BoardSet, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalogue cannot be nil")
	}
	if rng == nil {
		return nil, fmt.Errorf("random generator cannot be nil")
	}
	if params.BoardCount <= 0 {
		return nil, &catalog.ConfigError{Reason: fmt.Sprintf("board count must be positive, got %d", params.BoardCount)}
	}
	if params.BoardSize <= 0 {
		return nil, &catalog.ConfigError{Reason: fmt.Sprintf("board size must be positive, got %d", params.BoardSize)}
	}

	// Conservation requires the pool to divide exactly onto the boards, and
	// a single board can never hold more distinct items than the catalogue
	// offers. Both are configuration mistakes, not bad luck, so they are
	// rejected before any attempt is spent.
	if want := params.BoardCount * params.BoardSize; cat.PoolSize() != want {
		return nil, &catalog.ConfigError{Reason: fmt.Sprintf(
			"pool size %d does not match %d boards of %d cells (need %d tokens)",
			cat.PoolSize(), params.BoardCount, params.BoardSize, want)}
	}
	if cat.Len() < params.BoardSize {
		return nil, &catalog.ConfigError{Reason: fmt.Sprintf(
			"catalogue has %d distinct items, boards need %d", cat.Len(), params.BoardSize)}
	}

	if params.MaxAttempts <= 0 {
		return nil, &ExhaustionError{Attempts: 0}
	}

	items := cat.Items()
	for attempt := 1; attempt <= params.MaxAttempts; attempt++ {
		boards := tryAllocate(items, cat.TargetCounts(), params, rng)
		if boards != nil {
			return &BoardSet{
				Boards:    boards,
				Attempts:  attempt,
				BoardSize: params.BoardSize,
				CreatedAt: time.Now(),
			}, nil
		}
	}

	return nil, &ExhaustionError{Attempts: params.MaxAttempts}
}

// tryAllocate runs a single allocation attempt against a fresh copy of the
// pool counts. It returns nil when the attempt must be abandoned.
func tryAllocate(items []catalog.Item, available map[catalog.Item]int, params Params, rng *rand.Rand) []Board {
	boards := make([]Board, 0, params.BoardCount)
	seen := make(map[string]struct{}, params.BoardCount)

	for i := 0; i < params.BoardCount; i++ {
		board := fillBoard(items, available, params.BoardSize, rng)
		if board == nil {
			return nil
		}
		key := board.Key()
		if _, dup := seen[key]; dup {
			// Two boards with identical item sets invalidate the whole
			// attempt, same as a board that cannot be filled.
			return nil
		}
		seen[key] = struct{}{}
		boards = append(boards, board)
	}

	return boards
}

// fillBoard deals one board from the remaining pool: shuffle the undealt
// tokens, then take the first occurrence of each item not yet on the board.
// Consumed tokens are removed from available. Returns nil when fewer than
// size distinct items could be placed.
func fillBoard(items []catalog.Item, available map[catalog.Item]int, size int, rng *rand.Rand) Board {
	remaining := 0
	for _, n := range available {
		remaining += n
	}

	// Flatten in catalogue order so the shuffle is the only source of
	// randomness; map iteration order must never reach the result.
	flat := make([]catalog.Item, 0, remaining)
	for _, item := range items {
		for i := 0; i < available[item]; i++ {
			flat = append(flat, item)
		}
	}
	rng.Shuffle(len(flat), func(i, j int) {
		flat[i], flat[j] = flat[j], flat[i]
	})

	board := make(Board, 0, size)
	used := make(map[catalog.Item]struct{}, size)
	for _, item := range flat {
		if len(board) == size {
			break
		}
		if _, dup := used[item]; dup {
			continue
		}
		board = append(board, item)
		used[item] = struct{}{}
		available[item]--
	}

	if len(board) != size {
		return nil
	}
	return board
}
