package entity

// Note is the only synchronized record. Rows are never removed, a deletion
// is stored as a tombstone so replicas pulling from an older watermark learn
// about it.
type Note struct {
	ID        string `gorm:"primaryKey;type:text"`
	Content   string `gorm:"type:text;not null"`
	UpdatedAt int64  `gorm:"column:updated_at;not null;index:idx_notes_updated;autoUpdateTime:false"`
	Deleted   bool   `gorm:"not null"`
}

func (Note) TableName() string {
	return "notes"
}

// ConflictPolicy decides whether an incoming push replaces the stored row.
type ConflictPolicy string

const (
	// ConflictArrival replaces the stored row unconditionally, the most
	// recently pushed write wins.
	ConflictArrival ConflictPolicy = "arrival"

	// ConflictNewer only replaces the stored row when the incoming
	// updated_at is greater than or equal to the stored one.
	ConflictNewer ConflictPolicy = "newer"
)
