package repository

import (
	"context"
	"time"

	"pulsechat/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	// FindOrCreateDirect returns the existing non-group chat whose stored
	// combinedKey matches any of the given keys, or inserts chat. Lookup and
	// insert run in one transaction, so racing calls for the same pair
	// resolve to a single chat. Reports whether chat was inserted.
	FindOrCreateDirect(ctx context.Context, chat *entity.Chat, keys ...string) (*entity.Chat, bool, error)
	ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error)
	TouchUpdatedAt(ctx context.Context, chatID string, at time.Time) error
	Delete(ctx context.Context, id string) error
}
