package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loteria-tools/tablero/internal/boardgen"
)

func TestBoardSetRepository_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	set := sampleBoardSet()
	record, err := repo.Save(ctx, "march batch", "Lotería de Sabores", set)
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, 3, record.BoardCount)
	assert.Equal(t, 4, record.BoardSize)

	got, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)

	assert.Equal(t, "march batch", got.Name)
	assert.Equal(t, "Lotería de Sabores", got.Game)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, got.CreatedAt.Equal(set.CreatedAt), "Expected created_at to round-trip")
}

func TestBoardSetRepository_BoardsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	id := saveSampleSet(t, repo, "round trip")

	boards, err := repo.BoardsFor(ctx, id)
	require.NoError(t, err)

	wantSet := sampleBoardSet()
	require.Len(t, boards, len(wantSet.Boards))

	for i, board := range boards {
		assert.Equal(t, i+1, board.Position)

		want := make([]string, len(wantSet.Boards[i]))
		for j, item := range wantSet.Boards[i] {
			want[j] = string(item)
		}
		assert.Equal(t, want, board.Cells, "Expected cells to round-trip in order")
	}
}

func TestBoardSetRepository_ToBoardSet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	id := saveSampleSet(t, repo, "rebuild")

	record, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	boards, err := repo.BoardsFor(ctx, id)
	require.NoError(t, err)

	rebuilt, err := ToBoardSet(record, boards)
	require.NoError(t, err)

	want := sampleBoardSet()
	require.Len(t, rebuilt.Boards, len(want.Boards))
	for i := range want.Boards {
		assert.Equal(t, want.Boards[i].Key(), rebuilt.Boards[i].Key(), "Expected board %d to match after rebuild", i)
	}
	assert.Equal(t, want.Seed, rebuilt.Seed)
	assert.Equal(t, want.BoardSize, rebuilt.BoardSize)
}

func TestToBoardSet_CountMismatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	id := saveSampleSet(t, repo, "mismatch")

	record, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	boards, err := repo.BoardsFor(ctx, id)
	require.NoError(t, err)

	_, err = ToBoardSet(record, boards[:1])
	assert.Error(t, err, "Expected error when board count does not match the record")
}

func TestBoardSetRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	// Stagger created_at so ordering is deterministic.
	for i, name := range []string{"oldest", "middle", "newest"} {
		set := sampleBoardSet()
		set.CreatedAt = time.Date(2025, 3, 14, 9, i, 0, 0, time.UTC)
		_, err := repo.Save(ctx, name, "Test Game", set)
		require.NoError(t, err)
	}

	records, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "newest", records[0].Name, "Expected newest-first ordering")
	assert.Equal(t, "oldest", records[2].Name)

	limited, err := repo.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestBoardSetRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	id := saveSampleSet(t, repo, "doomed")

	require.NoError(t, repo.Delete(ctx, id))

	_, err := repo.GetByID(ctx, id)
	assert.True(t, IsNotFound(err), "Expected NotFoundError after delete, got %v", err)

	// Boards must cascade.
	var count int
	err = db.Conn().QueryRow(`SELECT COUNT(*) FROM boards WHERE board_set_id = ?`, id).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "Expected boards to cascade on delete")
}

func TestBoardSetRepository_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "no-such-id")
	assert.True(t, IsNotFound(err), "Expected NotFoundError, got %v", err)

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "no-such-id", nf.ID)

	err = repo.Delete(ctx, "no-such-id")
	assert.True(t, IsNotFound(err), "Expected NotFoundError from delete, got %v", err)
}

func TestBoardSetRepository_SaveEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewBoardSetRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, "empty", "Test Game", &boardgen.BoardSet{})
	assert.Error(t, err, "Expected error when saving an empty set")

	_, err = repo.Save(ctx, "nil", "Test Game", nil)
	assert.Error(t, err, "Expected error when saving a nil set")
}
