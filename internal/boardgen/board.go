package boardgen

import (
	"sort"
	"strings"
	"time"

	"github.com/loteria-tools/tablero/internal/catalog"
)

// Board is one player board: an ordered list of distinct catalogue items.
// Cell order is the draw order and determines the printed grid layout.
type Board []catalog.Item

// Size returns the number of cells on the board.
func (b Board) Size() int {
	return len(b)
}

// Contains reports whether the board holds the given item.
func (b Board) Contains(item catalog.Item) bool {
	for _, cell := range b {
		if cell == item {
			return true
		}
	}
	return false
}

// Grid arranges the board's cells into rows of the given width. The final
// row is shorter when the cell count is not a multiple of columns.
func (b Board) Grid(columns int) [][]catalog.Item {
	if columns <= 0 {
		return nil
	}
	rows := make([][]catalog.Item, 0, (len(b)+columns-1)/columns)
	for start := 0; start < len(b); start += columns {
		end := start + columns
		if end > len(b) {
			end = len(b)
		}
		row := make([]catalog.Item, end-start)
		copy(row, b[start:end])
		rows = append(rows, row)
	}
	return rows
}

// Key returns a canonical identity for the board that ignores cell order.
// Two boards with the same items in any arrangement share a key.
func (b Board) Key() string {
	labels := make([]string, len(b))
	for i, item := range b {
		labels[i] = string(item)
	}
	sort.Strings(labels)
	// The unit separator cannot appear in labels, so joined keys never collide.
	return strings.Join(labels, "\x1f")
}

// Overlap counts the distinct items two boards share.
func Overlap(a, b Board) int {
	inA := make(map[catalog.Item]struct{}, len(a))
	for _, item := range a {
		inA[item] = struct{}{}
	}
	n := 0
	for _, item := range b {
		if _, ok := inA[item]; ok {
			n++
		}
	}
	return n
}

// BoardSet is the result of a successful allocation run.
type BoardSet struct {
	// Boards holds the generated boards in generation order.
	Boards []Board

	// Seed is the PRNG seed the run was generated from. Allocate fills it
	// in; callers of AllocateWithRNG may record their own.
	Seed int64

	// Attempts is the number of allocation attempts used, including the
	// successful one.
	Attempts int

	// BoardSize is the number of cells per board.
	BoardSize int

	// CreatedAt records when the set was generated.
	CreatedAt time.Time
}

// ItemCounts tallies how often each item appears across the whole set.
func (s *BoardSet) ItemCounts() map[catalog.Item]int {
	counts := make(map[catalog.Item]int)
	for _, board := range s.Boards {
		for _, item := range board {
			counts[item]++
		}
	}
	return counts
}
