package usecase

import (
	"context"
	"encoding/json"
	"log"
	"sort"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/internal/infrastructure/ratelimit"
	"pulsechat/pkg/errors"
	"pulsechat/pkg/metrics"
)

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	statusRepo  repository.MessageStatusRepository
	identity    *IdentityUseCase
	publisher   EventPublisher
	rateLimiter *ratelimit.RateLimiter
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	statusRepo repository.MessageStatusRepository,
	identity *IdentityUseCase,
	publisher EventPublisher,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		statusRepo:  statusRepo,
		identity:    identity,
		publisher:   publisher,
		rateLimiter: rateLimiter,
	}
}

type CreateChatInput struct {
	ParticipantIDs []string
	Name           string
	IsGroup        bool
	ImageRef       string
}

// ChatSummary is a chat with its read-time display fields: name and image
// derived from the other participant for direct chats, last message, and
// the caller's derived unread count.
type ChatSummary struct {
	*entity.Chat
	DisplayName string                `json:"display_name"`
	ImageURL    string                `json:"image_url,omitempty"`
	LastMessage *entity.Message       `json:"last_message,omitempty"`
	UnreadCount int                   `json:"unread_count"`
	Others      []*entity.UserSummary `json:"others,omitempty"`
}

// CreateChat creates a group chat, or finds-or-creates a direct chat.
// Direct-chat creation is idempotent over the participant pair: both
// argument orders resolve to the same chat via the combined key.
func (uc *ChatUseCase) CreateChat(ctx context.Context, creatorID string, input CreateChatInput) (*entity.Chat, error) {
	allowed, waitTime := uc.rateLimiter.Allow(creatorID, "create_chat")
	if !allowed {
		log.Printf("CreateChat Rate Limited: User %s must wait %v", creatorID, waitTime)
		return nil, errors.TooManyRequests("Rate limit exceeded. Please wait before creating another chat")
	}

	participants := dedupeIDs(append(input.ParticipantIDs, creatorID))
	sort.Strings(participants)

	if len(participants) < 2 {
		return nil, errors.BadRequest("A chat needs at least two distinct participants", nil)
	}
	if !input.IsGroup && len(participants) != 2 {
		return nil, errors.BadRequest("A direct chat has exactly two participants", nil)
	}

	for _, id := range participants {
		if id == creatorID {
			continue
		}
		if _, err := uc.userRepo.GetByID(ctx, id); err != nil {
			log.Printf("CreateChat Error: Participant %s not found: %v", id, err)
			return nil, errors.NotFound("Participant", err)
		}
	}

	chat := &entity.Chat{
		Name:         input.Name,
		IsGroup:      input.IsGroup,
		ImageRef:     input.ImageRef,
		Participants: participants,
		CombinedKey:  entity.CombinedKey(participants),
		CreatedBy:    creatorID,
	}

	if !input.IsGroup {
		// Atomic find-or-create, matching both historical key orderings.
		existing, created, err := uc.chatRepo.FindOrCreateDirect(ctx, chat,
			entity.CombinedKey(participants),
			entity.ReversedCombinedKey(participants),
		)
		if err != nil {
			log.Printf("CreateChat Error: Failed direct find-or-create for %v: %v", participants, err)
			return nil, err
		}
		if !created {
			return existing, nil
		}
	} else if err := uc.chatRepo.Create(ctx, chat); err != nil {
		log.Printf("CreateChat Error: Failed to create chat: %v", err)
		return nil, err
	}

	metrics.ChatsCreated.Inc()

	payload, _ := json.Marshal(map[string]interface{}{
		"type":       "chat_created",
		"chat_id":    chat.ID,
		"is_group":   chat.IsGroup,
		"created_by": creatorID,
	})
	for _, id := range participants {
		if id != creatorID {
			uc.publisher.SendToUser(id, payload)
		}
	}

	return chat, nil
}

// ListChats returns the caller's chats ordered by recency, each decorated
// with display metadata, the latest message, and the derived unread count.
func (uc *ChatUseCase) ListChats(ctx context.Context, userID string, limit, offset int) ([]*ChatSummary, int64, error) {
	chats, total, err := uc.chatRepo.ListByParticipant(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]*ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary, err := uc.summarize(ctx, chat, userID)
		if err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, summary)
	}

	return summaries, total, nil
}

// GetChatByID returns a single decorated chat. Forbidden for callers who
// are not participants.
func (uc *ChatUseCase) GetChatByID(ctx context.Context, requesterID, chatID string) (*ChatSummary, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasParticipant(requesterID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	return uc.summarize(ctx, chat, requesterID)
}

func (uc *ChatUseCase) summarize(ctx context.Context, chat *entity.Chat, viewerID string) (*ChatSummary, error) {
	summary := &ChatSummary{
		Chat:        chat,
		DisplayName: chat.Name,
	}

	var otherIDs []string
	for _, id := range chat.Participants {
		if id != viewerID {
			otherIDs = append(otherIDs, id)
		}
	}

	others, err := uc.userRepo.GetByIDs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	for _, other := range others {
		summary.Others = append(summary.Others, uc.identity.Summarize(ctx, other))
	}

	// Direct chats carry no meaningful name of their own: display fields
	// come from the other participant's profile.
	if !chat.IsGroup && len(summary.Others) > 0 {
		summary.DisplayName = summary.Others[0].DisplayName
		summary.ImageURL = summary.Others[0].ImageURL
	} else if chat.IsGroup {
		summary.ImageURL = uc.identity.resolveImageRef(ctx, chat.ImageRef)
	}

	lastMessage, err := uc.messageRepo.GetLatestByChat(ctx, chat.ID)
	if err != nil && !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}
	summary.LastMessage = lastMessage

	unread, err := uc.statusRepo.CountUnread(ctx, viewerID, chat.ID)
	if err != nil {
		return nil, err
	}
	summary.UnreadCount = unread

	return summary, nil
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
