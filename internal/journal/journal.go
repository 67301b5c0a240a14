// Package journal persists every scene change to a SQL database so an
// editing session can be audited after the fact.
package journal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/roomkit/sceneedit/internal/scene"
)

// Journal appends scene changes for one session.
type Journal struct {
	db      *gorm.DB
	session string
	log     *slog.Logger

	mu  sync.Mutex
	seq int64
	now func() time.Time
}

// New migrates the schema and starts a new session on db.
func New(db *gorm.DB, log *slog.Logger) (*Journal, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return &Journal{
		db:      db,
		session: uuid.NewString(),
		log:     log,
		now:     time.Now,
	}, nil
}

// Session returns the id shared by every entry this journal writes.
func (j *Journal) Session() string {
	return j.session
}

// Record stores one change.
func (j *Journal) Record(ch scene.Change) error {
	var obj datatypes.JSON
	if ch.Object.ID != "" {
		data, err := json.Marshal(ch.Object)
		if err != nil {
			return fmt.Errorf("encode object %s: %w", ch.Object.ID, err)
		}
		obj = data
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	e := Entry{
		Session:    j.session,
		Seq:        j.seq + 1,
		RecordedAt: j.now().UTC(),
		Kind:       string(ch.Kind),
		ObjectID:   ch.ID,
		Object:     obj,
		UndoDepth:  ch.UndoDepth,
		RedoDepth:  ch.RedoDepth,
	}
	if err := j.db.Create(&e).Error; err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	j.seq = e.Seq
	return nil
}

// Attach subscribes the journal to s. Write failures are logged, never
// returned to the editor. Call the returned function to detach.
func (j *Journal) Attach(s *scene.Store) (detach func()) {
	return s.Subscribe(func(ch scene.Change) {
		if err := j.Record(ch); err != nil {
			j.log.Error("Failed to journal change", "kind", ch.Kind, "id", ch.ID, "error", err)
		}
	})
}

// Entries returns up to limit entries of this session, newest first.
// A limit of 0 or less returns all of them.
func (j *Journal) Entries(limit int) ([]Entry, error) {
	q := j.db.Where("session = ?", j.session).Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []Entry
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// Count returns the number of entries recorded in this session.
func (j *Journal) Count() (int64, error) {
	var n int64
	err := j.db.Model(&Entry{}).Where("session = ?", j.session).Count(&n).Error
	return n, err
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
