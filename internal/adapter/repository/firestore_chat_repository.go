package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/pkg/errors"
	"pulsechat/pkg/logger"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now

	_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
	if err != nil {
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", nil)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

// FindOrCreateDirect runs the combined-key lookup and the insert in one
// transaction: two racing creates for the same pair serialize, and the
// second observes the first's chat instead of inserting a duplicate.
func (r *firestoreChatRepository) FindOrCreateDirect(ctx context.Context, chat *entity.Chat, keys ...string) (*entity.Chat, bool, error) {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}

	var existing *entity.Chat
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing = nil
		for _, key := range keys {
			query := r.client.Collection("chats").
				Where("isGroup", "==", false).
				Where("combinedKey", "==", key).
				Limit(1)

			doc, err := tx.Documents(query).Next()
			if err == iterator.Done {
				continue
			}
			if err != nil {
				return err
			}

			var found entity.Chat
			if err := doc.DataTo(&found); err != nil {
				return err
			}
			existing = &found
			return nil
		}

		now := time.Now()
		chat.CreatedAt = now
		chat.UpdatedAt = now
		return tx.Set(r.client.Collection("chats").Doc(chat.ID), chat)
	})
	if err != nil {
		logger.Error("Failed direct-chat find-or-create for key %v: %v", keys, err)
		return nil, false, errors.Internal("Failed to create chat", err)
	}

	if existing != nil {
		return existing, false, nil
	}
	return chat, true, nil
}

func (r *firestoreChatRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	query := r.client.Collection("chats").
		Where("participants", "array-contains", userID).
		OrderBy("updatedAt", firestore.Desc)

	allDocs, err := query.Documents(ctx).GetAll()
	if err != nil {
		logger.Error("Firestore error while fetching chats for user %s: %v", userID, err)
		return nil, 0, errors.Internal("Failed to fetch chats", err)
	}

	total := int64(len(allDocs))

	// Pagination applied in-memory; the participant query already carries
	// the recency ordering.
	start := offset
	if start > len(allDocs) {
		start = len(allDocs)
	}
	end := len(allDocs)
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	chats := make([]*entity.Chat, 0, end-start)
	for _, doc := range allDocs[start:end] {
		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			return nil, 0, errors.Internal("Failed to parse chat data", err)
		}
		chats = append(chats, &chat)
	}

	return chats, total, nil
}

func (r *firestoreChatRepository) TouchUpdatedAt(ctx context.Context, chatID string, at time.Time) error {
	_, err := r.client.Collection("chats").Doc(chatID).Update(ctx, []firestore.Update{
		{Path: "updatedAt", Value: at},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to update chat", err)
	}
	return nil
}

func (r *firestoreChatRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection("chats").Doc(id).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete chat", err)
	}
	return nil
}
