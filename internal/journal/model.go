package journal

import (
	"time"

	"gorm.io/datatypes"
)

// Entry is one recorded scene change.
type Entry struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Session    string         `gorm:"size:36;index:idx_session_seq,priority:1" json:"session"`
	Seq        int64          `gorm:"index:idx_session_seq,priority:2" json:"seq"`
	RecordedAt time.Time      `json:"recordedAt"`
	Kind       string         `gorm:"size:16" json:"kind"`
	ObjectID   string         `gorm:"size:64;index" json:"objectId"`
	Object     datatypes.JSON `json:"object,omitempty"`
	UndoDepth  int            `json:"undoDepth"`
	RedoDepth  int            `json:"redoDepth"`
}

// TableName sets the table name for Entry.
func (Entry) TableName() string {
	return "journal_entries"
}
