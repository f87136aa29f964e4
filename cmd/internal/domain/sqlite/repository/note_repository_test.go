package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"notesync/cmd/internal/domain/entity"
	"notesync/cmd/internal/domain/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) (*DefaultNoteRepository, *gorm.DB) {
	t.Helper()

	db, err := sqlite.Init(filepath.Join(t.TempDir(), "notes.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewNoteRepository(db), db
}

// failOnID makes every insert of the note with the given id fail.
func failOnID(t *testing.T, db *gorm.DB, id string) {
	t.Helper()

	err := db.Callback().Create().Before("gorm:create").Register("test:fail_on_id", func(tx *gorm.DB) {
		if note, ok := tx.Statement.Dest.(*entity.Note); ok && note.ID == id {
			_ = tx.AddError(errors.New("injected failure"))
		}
	})
	require.NoError(t, err)
}

func TestFindByID_MissingReturnsNil(t *testing.T) {
	repo, _ := newTestRepository(t)

	note, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestUpsert_ReplacesEveryField(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &entity.Note{ID: "a", Content: "first", UpdatedAt: 10}))
	require.NoError(t, repo.Upsert(ctx, &entity.Note{ID: "a", Content: "", UpdatedAt: 5, Deleted: true}))

	note, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, note)
	assert.Equal(t, entity.Note{ID: "a", Content: "", UpdatedAt: 5, Deleted: true}, *note)
}

func TestFindModifiedAfter_StrictlyGreaterAndOrdered(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []*entity.Note{
		{ID: "c", Content: "three", UpdatedAt: 300},
		{ID: "b", Content: "two", UpdatedAt: 200, Deleted: true},
		{ID: "a", Content: "one", UpdatedAt: 100},
		{ID: "d", Content: "also two", UpdatedAt: 200},
	})
	require.NoError(t, err)

	notes, err := repo.FindModifiedAfter(ctx, 100)
	require.NoError(t, err)

	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	assert.Equal(t, []string{"b", "d", "c"}, ids)
	assert.True(t, notes[0].Deleted)

	none, err := repo.FindModifiedAfter(ctx, 300)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpsertBatch_ReturnsAppliedCount(t *testing.T) {
	repo, _ := newTestRepository(t)

	applied, err := repo.UpsertBatch(context.Background(), []*entity.Note{
		{ID: "a", UpdatedAt: 1},
		{ID: "b", UpdatedAt: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), applied)
}

func TestUpsertBatch_RollsBackOnFailure(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &entity.Note{ID: "a", Content: "before", UpdatedAt: 1}))
	failOnID(t, db, "boom")

	_, err := repo.UpsertBatch(ctx, []*entity.Note{
		{ID: "a", Content: "after", UpdatedAt: 2},
		{ID: "new", Content: "fresh", UpdatedAt: 3},
		{ID: "boom", Content: "explodes", UpdatedAt: 4},
	})
	require.Error(t, err)

	notes, err := repo.FindModifiedAfter(ctx, 0)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "a", notes[0].ID)
	assert.Equal(t, "before", notes[0].Content)
}

func TestUpsertBatch_LastArrivalWins(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []*entity.Note{{ID: "a", Content: "new", UpdatedAt: 500}})
	require.NoError(t, err)
	_, err = repo.UpsertBatch(ctx, []*entity.Note{{ID: "a", Content: "old", UpdatedAt: 100}})
	require.NoError(t, err)

	note, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(100), note.UpdatedAt)
	assert.Equal(t, "old", note.Content)
}

func TestUpsertBatchIfNewer_KeepsNewerStoredRow(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.UpsertBatchIfNewer(ctx, []*entity.Note{{ID: "a", Content: "new", UpdatedAt: 500}})
	require.NoError(t, err)

	applied, err := repo.UpsertBatchIfNewer(ctx, []*entity.Note{
		{ID: "a", Content: "stale", UpdatedAt: 100},
		{ID: "b", Content: "fresh", UpdatedAt: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied)

	note, err := repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "new", note.Content)
	assert.Equal(t, int64(500), note.UpdatedAt)

	applied, err = repo.UpsertBatchIfNewer(ctx, []*entity.Note{{ID: "a", Content: "tie", UpdatedAt: 500}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), applied)

	note, err = repo.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "tie", note.Content)
}

func TestFindAll_IncludesTombstones(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []*entity.Note{
		{ID: "a", UpdatedAt: 2, Deleted: true},
		{ID: "b", UpdatedAt: 1},
	})
	require.NoError(t, err)

	notes, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "b", notes[0].ID)
	assert.True(t, notes[1].Deleted)
}
