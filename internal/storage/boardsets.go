package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/loteria-tools/tablero/internal/boardgen"
	"github.com/loteria-tools/tablero/internal/catalog"
	"github.com/loteria-tools/tablero/internal/storage/models"
)

// NotFoundError indicates that no stored board set matches the given ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("board set not found: %s", e.ID)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// BoardSetRepository handles database operations for stored board sets.
type BoardSetRepository struct {
	db *DB
}

// NewBoardSetRepository creates a new board set repository.
func NewBoardSetRepository(db *DB) *BoardSetRepository {
	return &BoardSetRepository{db: db}
}

// Save persists a generated board set and its boards in a single
// transaction and returns the stored record.
func (r *BoardSetRepository) Save(ctx context.Context, name, game string, set *boardgen.BoardSet) (*models.BoardSet, error) {
	if set == nil || len(set.Boards) == 0 {
		return nil, fmt.Errorf("cannot save an empty board set")
	}

	createdAt := set.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	record := &models.BoardSet{
		ID:         uuid.New().String(),
		Name:       name,
		Game:       game,
		Seed:       set.Seed,
		Attempts:   set.Attempts,
		BoardCount: len(set.Boards),
		BoardSize:  set.BoardSize,
		CreatedAt:  createdAt.UTC(),
	}

	err := r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		setQuery := `
			INSERT INTO board_sets (id, name, game, seed, attempts, board_count, board_size, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		// ISO 8601 without timezone suffix, as SQLite stores it.
		createdAtStr := record.CreatedAt.Format("2006-01-02 15:04:05.999999")

		_, err := tx.ExecContext(ctx, setQuery,
			record.ID, record.Name, record.Game,
			record.Seed, record.Attempts,
			record.BoardCount, record.BoardSize,
			createdAtStr,
		)
		if err != nil {
			return fmt.Errorf("failed to insert board set: %w", err)
		}

		boardQuery := `
			INSERT INTO boards (board_set_id, position, cells)
			VALUES (?, ?, ?)
		`
		for i, board := range set.Boards {
			cells := make([]string, len(board))
			for j, item := range board {
				cells[j] = string(item)
			}
			encoded, err := json.Marshal(cells)
			if err != nil {
				return fmt.Errorf("failed to encode board %d: %w", i+1, err)
			}
			if _, err := tx.ExecContext(ctx, boardQuery, record.ID, i+1, string(encoded)); err != nil {
				return fmt.Errorf("failed to insert board %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetByID retrieves a stored board set by its ID.
func (r *BoardSetRepository) GetByID(ctx context.Context, id string) (*models.BoardSet, error) {
	query := `
		SELECT id, name, game, seed, attempts, board_count, board_size, created_at
		FROM board_sets
		WHERE id = ?
	`

	record := &models.BoardSet{}
	var createdAt string

	err := r.db.Conn().QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Name, &record.Game,
		&record.Seed, &record.Attempts,
		&record.BoardCount, &record.BoardSize,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get board set: %w", err)
	}

	record.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return record, nil
}

// List returns stored board sets, newest first. A limit of 0 or less
// returns all of them.
func (r *BoardSetRepository) List(ctx context.Context, limit int) ([]*models.BoardSet, error) {
	query := `
		SELECT id, name, game, seed, attempts, board_count, board_size, created_at
		FROM board_sets
		ORDER BY created_at DESC, id
	`
	args := []interface{}{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list board sets: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // Ignore error on cleanup

	var records []*models.BoardSet
	for rows.Next() {
		record := &models.BoardSet{}
		var createdAt string

		err := rows.Scan(
			&record.ID, &record.Name, &record.Game,
			&record.Seed, &record.Attempts,
			&record.BoardCount, &record.BoardSize,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan board set: %w", err)
		}

		record.CreatedAt, err = parseTimestamp(createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate board sets: %w", err)
	}

	return records, nil
}

// BoardsFor returns the boards of a stored set ordered by position.
func (r *BoardSetRepository) BoardsFor(ctx context.Context, setID string) ([]*models.Board, error) {
	query := `
		SELECT id, board_set_id, position, cells
		FROM boards
		WHERE board_set_id = ?
		ORDER BY position
	`

	rows, err := r.db.Conn().QueryContext(ctx, query, setID)
	if err != nil {
		return nil, fmt.Errorf("failed to get boards: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // Ignore error on cleanup

	var boards []*models.Board
	for rows.Next() {
		board := &models.Board{}
		var cells string

		if err := rows.Scan(&board.ID, &board.BoardSetID, &board.Position, &cells); err != nil {
			return nil, fmt.Errorf("failed to scan board: %w", err)
		}
		if err := json.Unmarshal([]byte(cells), &board.Cells); err != nil {
			return nil, fmt.Errorf("failed to decode board %d cells: %w", board.Position, err)
		}

		boards = append(boards, board)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boards: %w", err)
	}

	return boards, nil
}

// Delete removes a stored board set and its boards.
func (r *BoardSetRepository) Delete(ctx context.Context, id string) error {
	// Boards go with the set via ON DELETE CASCADE.
	result, err := r.db.Conn().ExecContext(ctx, `DELETE FROM board_sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete board set: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return &NotFoundError{ID: id}
	}

	return nil
}

// ToBoardSet rebuilds the in-memory board set from stored records so it can
// be redisplayed, revalidated, or re-exported.
func ToBoardSet(record *models.BoardSet, boards []*models.Board) (*boardgen.BoardSet, error) {
	if record == nil {
		return nil, fmt.Errorf("board set record cannot be nil")
	}
	if len(boards) != record.BoardCount {
		return nil, fmt.Errorf("stored set %s has %d boards, expected %d", record.ID, len(boards), record.BoardCount)
	}

	set := &boardgen.BoardSet{
		Boards:    make([]boardgen.Board, len(boards)),
		Seed:      record.Seed,
		Attempts:  record.Attempts,
		BoardSize: record.BoardSize,
		CreatedAt: record.CreatedAt,
	}
	for i, board := range boards {
		cells := make(boardgen.Board, len(board.Cells))
		for j, label := range board.Cells {
			cells[j] = catalog.Item(label)
		}
		set.Boards[i] = cells
	}

	return set, nil
}

// parseTimestamp parses timestamps in the formats SQLite hands back,
// which vary with how the value was written.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	// SQLite format with fractional seconds of varying width.
	sqliteFormats := []string{
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05.999999",
		"2006-01-02 15:04:05.999",
		"2006-01-02 15:04:05",
	}
	for _, format := range sqliteFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
