package service

import (
	"context"
	"notesync/cmd/internal/contract"
	"notesync/cmd/internal/domain/entity"
	"notesync/cmd/internal/utils"
	"notesync/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

type NoteRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Note, error)
	FindModifiedAfter(ctx context.Context, since int64) ([]*entity.Note, error)
	Upsert(ctx context.Context, note *entity.Note) error
	UpsertBatch(ctx context.Context, notes []*entity.Note) (int64, error)
	UpsertBatchIfNewer(ctx context.Context, notes []*entity.Note) (int64, error)
}

// SyncConfig carries everything the sync service needs. Clock and NewID may
// be left nil, they default to the wall clock in milliseconds and random
// UUIDs.
type SyncConfig struct {
	NoteRepo NoteRepository
	Validate *validator.Validate
	Policy   entity.ConflictPolicy
	Clock    func() int64
	NewID    func() string
}

// DefaultSyncService holds no per-call state, every method may run
// concurrently with any other.
type DefaultSyncService struct {
	NoteRepo NoteRepository
	Validate *validator.Validate
	Policy   entity.ConflictPolicy

	now   func() int64
	newID func() string
}

func NewSyncService(cfg SyncConfig) *DefaultSyncService {
	s := &DefaultSyncService{
		NoteRepo: cfg.NoteRepo,
		Validate: cfg.Validate,
		Policy:   cfg.Policy,
		now:      cfg.Clock,
		newID:    cfg.NewID,
	}

	if s.Policy == "" {
		s.Policy = entity.ConflictArrival
	}
	if s.now == nil {
		s.now = utils.NowUTC
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s
}

// CreateNote stores req.Text as a fresh note stamped with the server time.
func (s *DefaultSyncService) CreateNote(ctx context.Context, req *contract.CreateNoteRequest) (*contract.CreateNoteResponse, apierror.ErrorResponse) {
	if req == nil {
		return nil, apierror.TextRequiredError
	}

	if valerr := s.Validate.Struct(req); valerr != nil {
		return nil, apierror.TextRequiredError
	}

	note := &entity.Note{
		ID:        s.newID(),
		Content:   req.Text,
		UpdatedAt: s.now(),
		Deleted:   false,
	}

	if err := s.NoteRepo.Upsert(ctx, note); err != nil {
		log.Errorf("failed to create note: %v", err)
		return nil, apierror.InternalServerError
	}

	return &contract.CreateNoteResponse{
		Status: contract.StatusCreated,
		Note:   toNoteResponse(note),
	}, nil
}

// GetNote returns the stored state of a single note, tombstones included.
func (s *DefaultSyncService) GetNote(ctx context.Context, id string) (*contract.NoteResponse, apierror.ErrorResponse) {
	note, err := s.NoteRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch note: %v", err)
		return nil, apierror.InternalServerError
	}

	if note == nil {
		return nil, apierror.NotFoundError
	}
	return toNoteResponse(note), nil
}

// PullSince returns every note changed after since, and the server time the
// caller should send as since on its next pull.
func (s *DefaultSyncService) PullSince(ctx context.Context, since int64) (*contract.PullResponse, apierror.ErrorResponse) {
	// Read before the query, a write committed mid-read shows up again on
	// the next pull. A note pushed with updated_at ahead of this clock keeps
	// coming back until the clock passes it.
	timestamp := s.now()

	notes, err := s.NoteRepo.FindModifiedAfter(ctx, since)
	if err != nil {
		log.Errorf("failed to fetch changes since %d: %v", since, err)
		return nil, apierror.InternalServerError
	}

	return &contract.PullResponse{
		Changes:   toNoteResponses(notes),
		Timestamp: timestamp,
	}, nil
}

// PushBatch writes every change as one atomic batch. Under the arrival
// policy each change replaces the stored row unconditionally, even when its
// updated_at is older than what is stored.
func (s *DefaultSyncService) PushBatch(ctx context.Context, req *contract.PushRequest) (*contract.PushResponse, apierror.ErrorResponse) {
	if req == nil || len(req.Changes) == 0 {
		return nil, apierror.ChangesRequiredError
	}

	if valerr := s.Validate.Struct(req); valerr != nil {
		if structured := apierror.FromValidationError(valerr); structured != nil {
			return nil, structured
		}
		return nil, apierror.ChangesRequiredError
	}

	now := s.now()
	notes := make([]*entity.Note, len(req.Changes))
	for i, change := range req.Changes {
		notes[i] = toEntity(change, now)
	}

	var (
		applied int64
		err     error
	)
	switch s.Policy {
	case entity.ConflictNewer:
		applied, err = s.NoteRepo.UpsertBatchIfNewer(ctx, notes)
	default:
		applied, err = s.NoteRepo.UpsertBatch(ctx, notes)
	}

	if err != nil {
		log.Errorf("failed to apply batch of %d notes: %v", len(notes), err)
		return nil, apierror.InternalServerError
	}

	log.Debugf("applied %d of %d pushed notes", applied, len(notes))
	return &contract.PushResponse{
		Status:  contract.StatusSyncComplete,
		Applied: applied,
	}, nil
}

func toEntity(change *contract.NoteChange, now int64) *entity.Note {
	var content string
	if change.Content != nil {
		content = *change.Content
	}

	updatedAt := change.UpdatedAt
	if updatedAt == nil {
		updatedAt = change.UpdatedAtCamel
	}

	return &entity.Note{
		ID:        change.ID,
		Content:   content,
		UpdatedAt: coerceMillis(updatedAt, now),
		Deleted:   coerceDeleted(change.Deleted),
	}
}

func toNoteResponse(note *entity.Note) *contract.NoteResponse {
	return &contract.NoteResponse{
		ID:        note.ID,
		Content:   note.Content,
		UpdatedAt: note.UpdatedAt,
		Deleted:   utils.BoolToInt(note.Deleted),
	}
}

func toNoteResponses(notes []*entity.Note) []*contract.NoteResponse {
	resp := make([]*contract.NoteResponse, len(notes))
	for i, note := range notes {
		resp[i] = toNoteResponse(note)
	}
	return resp
}
