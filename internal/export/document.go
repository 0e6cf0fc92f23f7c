package export

import (
	"fmt"

	"github.com/loteria-tools/tablero/internal/boardgen"
)

// Document is the export representation of a generated board set. The field
// layout matches the published JSON schema for board files, so marshalling a
// Document yields a file other tools already consume.
type Document struct {
	Game          string       `json:"game"`
	TotalBoards   int          `json:"total_boards"`
	BoardSize     string       `json:"board_size"`
	ItemsPerBoard int          `json:"items_per_board"`
	Boards        []BoardEntry `json:"boards"`
}

// BoardEntry is one board within a Document: its 1-based number, the flat
// item list in draw order, and the same items arranged as a printable grid.
type BoardEntry struct {
	BoardNumber int        `json:"board_number"`
	Items       []string   `json:"items"`
	Grid        [][]string `json:"grid"`
}

// BuildDocument converts a board set into its export document. The grid of
// each board is laid out with the given column width; game names the set in
// the document header.
func BuildDocument(set *boardgen.BoardSet, game string, columns int) (Document, error) {
	if set == nil || len(set.Boards) == 0 {
		return Document{}, fmt.Errorf("no boards to export")
	}
	if columns <= 0 {
		return Document{}, fmt.Errorf("grid columns must be positive, got %d", columns)
	}

	rows := (set.BoardSize + columns - 1) / columns
	doc := Document{
		Game:          game,
		TotalBoards:   len(set.Boards),
		BoardSize:     fmt.Sprintf("%dx%d", rows, columns),
		ItemsPerBoard: set.BoardSize,
		Boards:        make([]BoardEntry, 0, len(set.Boards)),
	}

	for i, board := range set.Boards {
		entry := BoardEntry{
			BoardNumber: i + 1,
			Items:       make([]string, 0, board.Size()),
		}
		for _, item := range board {
			entry.Items = append(entry.Items, string(item))
		}
		for _, row := range board.Grid(columns) {
			cells := make([]string, 0, len(row))
			for _, item := range row {
				cells = append(cells, string(item))
			}
			entry.Grid = append(entry.Grid, cells)
		}
		doc.Boards = append(doc.Boards, entry)
	}

	return doc, nil
}
