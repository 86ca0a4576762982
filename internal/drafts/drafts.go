package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"aiResume/internal/resume"
)

// ErrNotFound is returned for unknown or expired drafts.
var ErrNotFound = errors.New("draft not found")

// Draft 是一次生成结果在服务端的记录，供后续导出使用。
type Draft struct {
	ID        string         `json:"id"`
	DocType   resume.DocType `json:"docType"`
	Content   string         `json:"content"`
	Filename  string         `json:"filename"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Store persists drafts for a bounded time.
type Store interface {
	Put(ctx context.Context, d Draft) error
	Get(ctx context.Context, id string) (Draft, error)
}

// New builds a draft with a fresh id.
func New(docType resume.DocType, content, filename string, now time.Time) Draft {
	return Draft{
		ID:        uuid.NewString(),
		DocType:   docType,
		Content:   content,
		Filename:  filename,
		CreatedAt: now.UTC(),
	}
}

// validID rejects anything that is not a uuid so ids never reach Redis keys unchecked.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
