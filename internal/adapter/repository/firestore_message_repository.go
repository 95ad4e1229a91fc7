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

type firestoreMessageRepository struct {
	client *firestore.Client
}

func NewFirestoreMessageRepository(client *firestore.Client) repository.MessageRepository {
	return &firestoreMessageRepository{
		client: client,
	}
}

// CreateWithStatuses writes the message, every status row, and the chat's
// updatedAt bump in a single Firestore transaction. Either a recipient can
// observe all of it or none of it; there is no partial fan-out window.
func (r *firestoreMessageRepository) CreateWithStatuses(ctx context.Context, message *entity.Message, statuses []*entity.MessageStatus) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	message.CreatedAt = time.Now()

	for _, st := range statuses {
		if st.ID == "" {
			st.ID = uuid.New().String()
		}
		st.MessageID = message.ID
		st.ChatID = message.ChatID
		st.CreatedAt = message.CreatedAt
	}

	chatRef := r.client.Collection("chats").Doc(message.ChatID)
	msgRef := chatRef.Collection("messages").Doc(message.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(chatRef); err != nil {
			return err
		}
		if err := tx.Set(msgRef, message); err != nil {
			return err
		}
		for _, st := range statuses {
			stRef := r.client.Collection("messageStatus").Doc(st.ID)
			if err := tx.Set(stRef, st); err != nil {
				return err
			}
		}
		return tx.Update(chatRef, []firestore.Update{
			{Path: "updatedAt", Value: message.CreatedAt},
		})
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Chat", err)
		}
		logger.Error("Failed to commit message fan-out for chat %s: %v", message.ChatID, err)
		return errors.Internal("Failed to create message", err)
	}

	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	doc, err := r.client.Collection("chats").Doc(chatID).Collection("messages").Doc(messageID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

func (r *firestoreMessageRepository) ListByChat(ctx context.Context, chatID string, limit int, before time.Time) ([]*entity.Message, error) {
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").
		OrderBy("createdAt", firestore.Desc)
	if !before.IsZero() {
		query = query.Where("createdAt", "<", before)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	var messages []*entity.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			logger.Error("Firestore error while iterating messages for chat %s: %v", chatID, err)
			return nil, errors.Internal("Failed to iterate messages", err)
		}

		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	return messages, nil
}

func (r *firestoreMessageRepository) GetLatestByChat(ctx context.Context, chatID string) (*entity.Message, error) {
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").
		OrderBy("createdAt", firestore.Desc).Limit(1)

	doc, err := query.Documents(ctx).Next()
	if err != nil {
		if err == iterator.Done {
			return nil, errors.NotFound("Message", nil)
		}
		return nil, errors.Internal("Failed to get latest message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}
