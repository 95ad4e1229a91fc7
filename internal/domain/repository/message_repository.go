package repository

import (
	"context"
	"time"

	"pulsechat/internal/domain/entity"
)

type MessageRepository interface {
	// CreateWithStatuses inserts the message, its per-recipient status
	// fan-out, and the parent chat's updatedAt bump atomically. Status rows
	// are visible as soon as the call returns.
	CreateWithStatuses(ctx context.Context, message *entity.Message, statuses []*entity.MessageStatus) error
	GetByID(ctx context.Context, chatID, messageID string) (*entity.Message, error)
	// ListByChat returns messages newest-first. A non-zero before narrows
	// the page to messages created strictly earlier (cursor pagination).
	ListByChat(ctx context.Context, chatID string, limit int, before time.Time) ([]*entity.Message, error)
	GetLatestByChat(ctx context.Context, chatID string) (*entity.Message, error)
}

type MessageStatusRepository interface {
	GetByMessageAndUser(ctx context.Context, messageID, userID string) (*entity.MessageStatus, error)
	ListByMessage(ctx context.Context, messageID string) ([]*entity.MessageStatus, error)
	CountUnread(ctx context.Context, userID, chatID string) (int, error)
	Update(ctx context.Context, status *entity.MessageStatus) error
}
