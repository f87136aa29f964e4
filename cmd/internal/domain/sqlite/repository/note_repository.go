package repository

import (
	"context"
	"errors"
	"fmt"
	"notesync/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var upsertColumns = []string{"content", "updated_at", "deleted"}

type DefaultNoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *DefaultNoteRepository {
	return &DefaultNoteRepository{db: db}
}

// FindByID returns nil, nil when no note has the given id.
func (d *DefaultNoteRepository) FindByID(ctx context.Context, id string) (*entity.Note, error) {
	var note entity.Note
	err := d.db.WithContext(ctx).
		Where("id = ?", id).
		First(&note).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find note %s: %w", id, err)
	}
	return &note, nil
}

// FindModifiedAfter returns every note, tombstones included, whose
// updated_at is strictly greater than since, ordered by updated_at then id.
func (d *DefaultNoteRepository) FindModifiedAfter(ctx context.Context, since int64) ([]*entity.Note, error) {
	notes := make([]*entity.Note, 0)
	err := d.db.WithContext(ctx).
		Where("updated_at > ?", since).
		Order("updated_at ASC").
		Order("id ASC").
		Find(&notes).Error

	if err != nil {
		return nil, fmt.Errorf("find notes modified after %d: %w", since, err)
	}
	return notes, nil
}

func (d *DefaultNoteRepository) FindAll(ctx context.Context) ([]*entity.Note, error) {
	notes := make([]*entity.Note, 0)
	err := d.db.WithContext(ctx).
		Order("updated_at ASC").
		Order("id ASC").
		Find(&notes).Error

	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}
	return notes, nil
}

// Upsert inserts the note or replaces every field of the stored row.
func (d *DefaultNoteRepository) Upsert(ctx context.Context, note *entity.Note) error {
	_, err := upsert(d.db.WithContext(ctx), note, false)
	if err != nil {
		return fmt.Errorf("upsert note %s: %w", note.ID, err)
	}
	return nil
}

// UpsertBatch replaces all notes inside one transaction, either every row
// is written or none is. It returns the number of rows written.
func (d *DefaultNoteRepository) UpsertBatch(ctx context.Context, notes []*entity.Note) (int64, error) {
	return d.upsertBatch(ctx, notes, false)
}

// UpsertBatchIfNewer behaves like UpsertBatch but leaves a stored row alone
// when its updated_at is greater than the incoming one. Skipped rows are not
// counted.
func (d *DefaultNoteRepository) UpsertBatchIfNewer(ctx context.Context, notes []*entity.Note) (int64, error) {
	return d.upsertBatch(ctx, notes, true)
}

func (d *DefaultNoteRepository) upsertBatch(ctx context.Context, notes []*entity.Note, onlyNewer bool) (int64, error) {
	var applied int64
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, note := range notes {
			n, err := upsert(tx, note, onlyNewer)
			if err != nil {
				return fmt.Errorf("upsert note %s: %w", note.ID, err)
			}
			applied += n
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("upsert batch: %w", err)
	}
	return applied, nil
}

func upsert(db *gorm.DB, note *entity.Note, onlyNewer bool) (int64, error) {
	onConflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}

	if onlyNewer {
		onConflict.Where = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "excluded.updated_at >= notes.updated_at"},
		}}
	}

	res := db.Clauses(onConflict).Create(note)
	return res.RowsAffected, res.Error
}
