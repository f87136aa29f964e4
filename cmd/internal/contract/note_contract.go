package contract

const (
	StatusCreated      = "created"
	StatusSyncComplete = "sync complete"
)

// NoteResponse mirrors the stored row, deleted is sent as 0 or 1.
type NoteResponse struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	UpdatedAt int64  `json:"updated_at"`
	Deleted   int    `json:"deleted"`
}

type CreateNoteRequest struct {
	Text string `json:"text" validate:"required,notblank"`
}

type CreateNoteResponse struct {
	Status string        `json:"status"`
	Note   *NoteResponse `json:"note"`
}

type PullResponse struct {
	Changes   []*NoteResponse `json:"changes"`
	Timestamp int64           `json:"timestamp"`
}

type PushRequest struct {
	Changes []*NoteChange `json:"changes" validate:"required,min=1,dive,required"`
}

// NoteChange is a single pushed note. UpdatedAt and Deleted are left loosely
// typed since clients send numbers, numeric strings, booleans or nothing at
// all. The service coerces them.
type NoteChange struct {
	ID             string  `json:"id" validate:"required,notblank"`
	Content        *string `json:"content"`
	UpdatedAt      any     `json:"updated_at"`
	UpdatedAtCamel any     `json:"updatedAt"`
	Deleted        any     `json:"deleted"`
}

type PushResponse struct {
	Status  string `json:"status"`
	Applied int64  `json:"applied"`
}
