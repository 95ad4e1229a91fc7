package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/pkg/errors"
)

type firestoreStatusRepository struct {
	client *firestore.Client
}

func NewFirestoreStatusRepository(client *firestore.Client) repository.MessageStatusRepository {
	return &firestoreStatusRepository{
		client: client,
	}
}

func (r *firestoreStatusRepository) GetByMessageAndUser(ctx context.Context, messageID, userID string) (*entity.MessageStatus, error) {
	query := r.client.Collection("messageStatus").
		Where("messageId", "==", messageID).
		Where("userId", "==", userID).
		Limit(1)

	doc, err := query.Documents(ctx).Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Message status", nil)
		}
		return nil, errors.Internal("Failed to query message status", err)
	}

	var st entity.MessageStatus
	if err := doc.DataTo(&st); err != nil {
		return nil, errors.Internal("Failed to parse message status data", err)
	}
	return &st, nil
}

func (r *firestoreStatusRepository) ListByMessage(ctx context.Context, messageID string) ([]*entity.MessageStatus, error) {
	iter := r.client.Collection("messageStatus").
		Where("messageId", "==", messageID).
		Documents(ctx)

	var statuses []*entity.MessageStatus
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate message statuses", err)
		}

		var st entity.MessageStatus
		if err := doc.DataTo(&st); err != nil {
			return nil, errors.Internal("Failed to parse message status data", err)
		}
		statuses = append(statuses, &st)
	}

	return statuses, nil
}

// CountUnread relies on the denormalized chatId so a user's unread rows per
// chat come from one indexed query instead of a message-by-message join.
func (r *firestoreStatusRepository) CountUnread(ctx context.Context, userID, chatID string) (int, error) {
	docs, err := r.client.Collection("messageStatus").
		Where("userId", "==", userID).
		Where("chatId", "==", chatID).
		Where("isRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, errors.Internal("Failed to count unread statuses", err)
	}

	return len(docs), nil
}

func (r *firestoreStatusRepository) Update(ctx context.Context, status *entity.MessageStatus) error {
	// Read receipts only move forward; guard the monotonic transition at the
	// store as well as in the entity.
	ref := r.client.Collection("messageStatus").Doc(status.ID)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var current entity.MessageStatus
		if err := doc.DataTo(&current); err != nil {
			return err
		}
		if current.IsRead && !status.IsRead {
			// Never revert a read row.
			return nil
		}
		return tx.Set(ref, status)
	})
	if err != nil {
		return errors.Internal("Failed to update message status", err)
	}
	return nil
}
