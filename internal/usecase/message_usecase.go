package usecase

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/internal/domain/service"
	"pulsechat/internal/infrastructure/ratelimit"
	"pulsechat/pkg/errors"
	"pulsechat/pkg/metrics"
)

const defaultMessagePageSize = 50

type MessageUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	statusRepo  repository.MessageStatusRepository
	blobStorage service.BlobStorageService
	identity    *IdentityUseCase
	publisher   EventPublisher
	rateLimiter *ratelimit.RateLimiter
}

func NewMessageUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	statusRepo repository.MessageStatusRepository,
	blobStorage service.BlobStorageService,
	identity *IdentityUseCase,
	publisher EventPublisher,
	rateLimiter *ratelimit.RateLimiter,
) *MessageUseCase {
	return &MessageUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		statusRepo:  statusRepo,
		blobStorage: blobStorage,
		identity:    identity,
		publisher:   publisher,
		rateLimiter: rateLimiter,
	}
}

type SendMessageInput struct {
	ChatID string
	Text   string
	Media  []entity.MediaAttachment
}

type MessageResponse struct {
	*entity.Message
	Author *entity.UserSummary `json:"author,omitempty"`
}

// SendMessage appends a message and fans out one status row per
// participant, author pre-marked delivered and read, all in one atomic
// write. Status rows exist the moment this returns.
func (uc *MessageUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*MessageResponse, error) {
	allowed, waitTime := uc.rateLimiter.Allow(senderID, "send_message")
	if !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", senderID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before sending another message")
	}

	if input.Text == "" && len(input.Media) == 0 {
		return nil, errors.BadRequest("Message must contain text or media", nil)
	}
	for _, media := range input.Media {
		if media.StorageRef == "" {
			return nil, errors.BadRequest("Media attachment is missing its storage ref", nil)
		}
	}

	chat, err := uc.chatRepo.GetByID(ctx, input.ChatID)
	if err != nil {
		log.Printf("SendMessage Error: Chat %s not found: %v", input.ChatID, err)
		return nil, err
	}

	if !chat.HasParticipant(senderID) {
		log.Printf("SendMessage Error: User %s is not a participant in chat %s", senderID, input.ChatID)
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		log.Printf("SendMessage Error: Sender %s not found: %v", senderID, err)
		return nil, err
	}

	message := &entity.Message{
		ChatID:   input.ChatID,
		AuthorID: senderID,
		Text:     input.Text,
		Media:    input.Media,
	}

	now := time.Now()
	statuses := make([]*entity.MessageStatus, 0, len(chat.Participants))
	for _, participantID := range chat.Participants {
		st := &entity.MessageStatus{
			UserID: participantID,
			IsSent: true,
		}
		// The author has trivially seen their own message.
		if participantID == senderID {
			st.MarkRead(now)
		}
		statuses = append(statuses, st)
	}

	if err := uc.messageRepo.CreateWithStatuses(ctx, message, statuses); err != nil {
		log.Printf("SendMessage Error: Failed fan-out for chat %s: %v", input.ChatID, err)
		return nil, err
	}

	metrics.MessagesSent.Inc()

	authorSummary := uc.identity.Summarize(ctx, sender)

	notification, _ := json.Marshal(map[string]interface{}{
		"type":    "new_message",
		"chat_id": input.ChatID,
		"message": message,
		"author":  authorSummary,
	})
	uc.publisher.PublishToChat(input.ChatID, notification, senderID)

	listUpdate, _ := json.Marshal(map[string]interface{}{
		"type":        "chat_list_update",
		"chat_id":     input.ChatID,
		"message_id":  message.ID,
		"author_id":   senderID,
		"author_name": sender.DisplayName,
		"text":        message.Text,
		"created_at":  message.CreatedAt.Format(time.RFC3339),
	})
	for _, participantID := range chat.Participants {
		if participantID != senderID {
			uc.publisher.SendToUser(participantID, listUpdate)
		}
	}

	return &MessageResponse{
		Message: message,
		Author:  authorSummary,
	}, nil
}

// ListMessages returns the most recent messages newest-first, media refs
// resolved to temporary URLs and the author summary embedded per message.
// A non-zero before narrows the page for cursor pagination.
func (uc *MessageUseCase) ListMessages(ctx context.Context, requesterID, chatID string, limit int, before time.Time) ([]*MessageResponse, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasParticipant(requesterID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	if limit <= 0 {
		limit = defaultMessagePageSize
	}

	messages, err := uc.messageRepo.ListByChat(ctx, chatID, limit, before)
	if err != nil {
		return nil, err
	}

	authors := make(map[string]*entity.UserSummary)
	responses := make([]*MessageResponse, 0, len(messages))
	for _, message := range messages {
		author, ok := authors[message.AuthorID]
		if !ok {
			user, err := uc.userRepo.GetByID(ctx, message.AuthorID)
			if err == nil {
				author = uc.identity.Summarize(ctx, user)
			}
			authors[message.AuthorID] = author
		}

		for i := range message.Media {
			url, err := uc.blobStorage.Resolve(ctx, message.Media[i].StorageRef)
			if err != nil {
				log.Printf("ListMessages: failed to resolve media %s: %v", message.Media[i].StorageRef, err)
				continue
			}
			message.Media[i].URL = url
		}

		responses = append(responses, &MessageResponse{
			Message: message,
			Author:  author,
		})
	}

	return responses, nil
}

// MarkRead transitions the caller's status rows for the given messages to
// delivered+read. Idempotent and order-independent: absent and already-read
// rows are skipped without error, and a read row never reverts.
func (uc *MessageUseCase) MarkRead(ctx context.Context, userID, chatID string, messageIDs []string) error {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return err
	}

	if !chat.HasParticipant(userID) {
		return errors.Forbidden("You are not a participant of this chat", nil)
	}

	now := time.Now()
	var readIDs []string

	for _, messageID := range messageIDs {
		st, err := uc.statusRepo.GetByMessageAndUser(ctx, messageID, userID)
		if err != nil {
			if errors.Is(err, "NOT_FOUND") {
				log.Printf("MarkRead: no status row for message %s, user %s (may be old/deleted)", messageID, userID)
				continue
			}
			return err
		}
		if st.ChatID != "" && st.ChatID != chatID {
			continue
		}

		if !st.MarkRead(now) {
			continue
		}

		if err := uc.statusRepo.Update(ctx, st); err != nil {
			return err
		}
		metrics.MessagesRead.Inc()
		readIDs = append(readIDs, messageID)
	}

	if len(readIDs) > 0 {
		receipt, _ := json.Marshal(map[string]interface{}{
			"type":        "status_read",
			"chat_id":     chatID,
			"message_ids": readIDs,
			"reader_id":   userID,
			"read_at":     now.Format(time.RFC3339),
		})
		uc.publisher.PublishToChat(chatID, receipt, userID)
	}

	return nil
}
