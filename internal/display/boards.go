// Package display renders board sets and validation reports for the console.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/loteria-tools/tablero/internal/boardgen"
)

const ruleWidth = 60

// BoardDisplayer renders generated boards in a readable format.
type BoardDisplayer struct {
	w       io.Writer
	columns int
}

// NewBoardDisplayer creates a displayer that writes to w, laying each board
// out in rows of the given width.
func NewBoardDisplayer(w io.Writer, columns int) *BoardDisplayer {
	if columns <= 0 {
		columns = 4
	}
	return &BoardDisplayer{w: w, columns: columns}
}

// DisplayBoardSet prints every board in the set, numbered from 1.
func (d *BoardDisplayer) DisplayBoardSet(set *boardgen.BoardSet) {
	for i, board := range set.Boards {
		d.DisplayBoard(i+1, board)
	}
	fmt.Fprintln(d.w)
}

// DisplayBoard prints a single board under a ruled header, one item per
// line, with a blank line between grid rows.
func (d *BoardDisplayer) DisplayBoard(number int, board boardgen.Board) {
	rule := strings.Repeat("=", ruleWidth)
	fmt.Fprintf(d.w, "\n%s\n", rule)
	fmt.Fprintf(d.w, "BOARD %d\n", number)
	fmt.Fprintln(d.w, rule)

	rows := board.Grid(d.columns)
	for r, row := range rows {
		for _, item := range row {
			fmt.Fprintf(d.w, "  %s\n", item)
		}
		if r < len(rows)-1 {
			fmt.Fprintln(d.w)
		}
	}
}

// DisplaySummary prints the provenance line for a generated set: how many
// boards, which seed, and how many attempts the allocator needed.
func (d *BoardDisplayer) DisplaySummary(set *boardgen.BoardSet) {
	fmt.Fprintf(d.w, "Generated %d boards of %d items (seed %d, %d attempt",
		len(set.Boards), set.BoardSize, set.Seed, set.Attempts)
	if set.Attempts != 1 {
		fmt.Fprint(d.w, "s")
	}
	fmt.Fprintln(d.w, ")")
}
