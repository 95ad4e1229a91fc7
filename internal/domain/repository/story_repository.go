package repository

import (
	"context"
	"time"

	"pulsechat/internal/domain/entity"
)

type StoryRepository interface {
	// CreateWithNextSequence assigns story.Sequence = author's current max + 1
	// and inserts, atomically, so racing posts still get distinct increasing
	// sequence numbers.
	CreateWithNextSequence(ctx context.Context, story *entity.Story) error
	GetByID(ctx context.Context, id string) (*entity.Story, error)
	ListActiveByAuthor(ctx context.Context, authorID string, now time.Time) ([]*entity.Story, error)
	// AddViewer appends viewerID exactly once; a no-op if already present.
	AddViewer(ctx context.Context, storyID, viewerID string) error
	ListExpired(ctx context.Context, now time.Time) ([]*entity.Story, error)
	Delete(ctx context.Context, id string) error
}
