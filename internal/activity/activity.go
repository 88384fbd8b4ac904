// Package activity records and lists audit log entries.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/syariahos/syariahos-api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubjectKind enumerates the entities an audit entry can point at.
type SubjectKind string

const (
	SubjectUser          SubjectKind = "user"
	SubjectTask          SubjectKind = "task"
	SubjectTaskHistory   SubjectKind = "task_history"
	SubjectCategory      SubjectKind = "category"
	SubjectDirectoryItem SubjectKind = "directory_item"
	SubjectTool          SubjectKind = "tool"
	SubjectProfile       SubjectKind = "profile"
	SubjectSystem        SubjectKind = "system"
)

// Subject identifies the entity an entry refers to. The zero value means none.
type Subject struct {
	Kind SubjectKind
	ID   uint64
}

// On builds a Subject.
func On(kind SubjectKind, id uint64) Subject {
	return Subject{Kind: kind, ID: id}
}

// Actor is the user performing an operation, or the system when UserID is nil.
type Actor struct {
	UserID *uint64
}

// System is the actor used by scheduled jobs and CLI commands.
var System = Actor{}

// ByUser returns an Actor for the given user.
func ByUser(userID uint64) Actor {
	if userID == 0 {
		return System
	}
	id := userID
	return Actor{UserID: &id}
}

// IsSystem reports whether no user is attached.
func (a Actor) IsSystem() bool {
	return a.UserID == nil
}

// Entry is a single audit event.
type Entry struct {
	Action   string
	Subject  Subject
	Metadata map[string]any
	// By replaces the actor passed to Within when the actor only exists
	// once fn has run, as with registration.
	By *Actor
}

// Recorder writes audit entries alongside the operations they describe.
type Recorder struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRecorder constructs a Recorder.
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db, now: time.Now}
}

// Record stores an entry outside any caller transaction.
func (r *Recorder) Record(ctx context.Context, actor Actor, entry Entry) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("activity: nil recorder")
	}
	return r.write(r.db.WithContext(ctx), actor, entry)
}

// Within runs fn in one transaction and appends the entry it returns in the
// same transaction. An error from fn or from the write rolls back both.
func (r *Recorder) Within(ctx context.Context, actor Actor, fn func(tx *gorm.DB) (Entry, error)) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("activity: nil recorder")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, errFn := fn(tx)
		if errFn != nil {
			return errFn
		}
		if entry.By != nil {
			return r.write(tx, *entry.By, entry)
		}
		return r.write(tx, actor, entry)
	})
}

func (r *Recorder) write(tx *gorm.DB, actor Actor, entry Entry) error {
	action := strings.TrimSpace(entry.Action)
	if action == "" {
		return fmt.Errorf("activity: empty action")
	}
	row := models.ActivityLog{
		UserID:    actor.UserID,
		Action:    action,
		CreatedAt: r.now().UTC(),
	}
	if entry.Subject.Kind != "" {
		row.SubjectType = string(entry.Subject.Kind)
		if entry.Subject.ID != 0 {
			id := entry.Subject.ID
			row.SubjectID = &id
		}
	}
	if len(entry.Metadata) > 0 {
		payload, errMarshal := json.Marshal(entry.Metadata)
		if errMarshal != nil {
			return fmt.Errorf("activity: marshal metadata: %w", errMarshal)
		}
		row.Metadata = datatypes.JSON(payload)
	}
	if errCreate := tx.Create(&row).Error; errCreate != nil {
		return fmt.Errorf("activity: create log: %w", errCreate)
	}
	return nil
}
