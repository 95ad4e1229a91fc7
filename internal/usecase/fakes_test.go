package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pulsechat/internal/domain/entity"
	"pulsechat/internal/domain/repository"
	"pulsechat/internal/domain/service"
	"pulsechat/internal/infrastructure/ratelimit"
	"pulsechat/pkg/errors"
)

// In-memory repository fakes mirroring the Firestore adapters' contracts:
// Create assigns IDs and timestamps, lookups return NOT_FOUND AppErrors,
// and the fan-out/sequence writes behave atomically under a mutex.

type fakeUserRepository struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	nextID int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*entity.User)}
}

// Create enforces unique external ID, username, and email under the held
// lock, mirroring the Firestore adapter's transactional guard.
func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if user.ExternalID != "" && existing.ExternalID == user.ExternalID {
			return errors.Conflict("External ID already exists")
		}
		if user.Username != "" && existing.Username == user.Username {
			return errors.Conflict("Username already exists")
		}
		if user.Email != "" && existing.Email == user.Email {
			return errors.Conflict("Email already exists")
		}
	}
	if user.ID == "" {
		r.nextID++
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, errors.NotFound("User", nil)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(ids))
	for _, id := range ids {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, user)
	}
	return out, nil
}

func (r *fakeUserRepository) GetByExternalID(ctx context.Context, externalID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ExternalID == externalID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepository) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return errors.NotFound("User", nil)
	}
	user.UpdatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

type fakeChatRepository struct {
	mu     sync.Mutex
	chats  map[string]*entity.Chat
	nextID int
}

func newFakeChatRepository() *fakeChatRepository {
	return &fakeChatRepository{chats: make(map[string]*entity.Chat)}
}

func (r *fakeChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chat.ID == "" {
		r.nextID++
		chat.ID = fmt.Sprintf("chat-%d", r.nextID)
	}
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	copied := *chat
	r.chats[chat.ID] = &copied
	return nil
}

func (r *fakeChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[id]
	if !ok {
		return nil, errors.NotFound("Chat", nil)
	}
	copied := *chat
	return &copied, nil
}

// FindOrCreateDirect holds the lock across lookup and insert, mirroring the
// Firestore adapter's transactional guarantee.
func (r *fakeChatRepository) FindOrCreateDirect(ctx context.Context, chat *entity.Chat, keys ...string) (*entity.Chat, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range keys {
		for _, existing := range r.chats {
			if !existing.IsGroup && existing.CombinedKey == key {
				copied := *existing
				return &copied, false, nil
			}
		}
	}

	if chat.ID == "" {
		r.nextID++
		chat.ID = fmt.Sprintf("chat-%d", r.nextID)
	}
	now := time.Now()
	chat.CreatedAt = now
	chat.UpdatedAt = now
	copied := *chat
	r.chats[chat.ID] = &copied
	return chat, true, nil
}

func (r *fakeChatRepository) ListByParticipant(ctx context.Context, userID string, limit, offset int) ([]*entity.Chat, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*entity.Chat
	for _, chat := range r.chats {
		if chat.HasParticipant(userID) {
			copied := *chat
			matched = append(matched, &copied)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
	})
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (r *fakeChatRepository) TouchUpdatedAt(ctx context.Context, chatID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	chat, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	chat.UpdatedAt = at
	return nil
}

func (r *fakeChatRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.chats, id)
	return nil
}

type fakeMessageStore struct {
	mu       sync.Mutex
	messages map[string]*entity.Message
	statuses map[string]*entity.MessageStatus
	chatRepo *fakeChatRepository
	nextID   int
}

func newFakeMessageStore(chatRepo *fakeChatRepository) *fakeMessageStore {
	return &fakeMessageStore{
		messages: make(map[string]*entity.Message),
		statuses: make(map[string]*entity.MessageStatus),
		chatRepo: chatRepo,
	}
}

func (r *fakeMessageStore) CreateWithStatuses(ctx context.Context, message *entity.Message, statuses []*entity.MessageStatus) error {
	r.mu.Lock()
	if message.ID == "" {
		r.nextID++
		message.ID = fmt.Sprintf("msg-%d", r.nextID)
	}
	now := time.Now()
	message.CreatedAt = now

	copied := *message
	r.messages[message.ID] = &copied

	for _, st := range statuses {
		st.ID = fmt.Sprintf("%s_%s", message.ID, st.UserID)
		st.MessageID = message.ID
		st.ChatID = message.ChatID
		st.CreatedAt = now
		stCopy := *st
		r.statuses[st.ID] = &stCopy
	}
	r.mu.Unlock()

	return r.chatRepo.TouchUpdatedAt(ctx, message.ChatID, now)
}

func (r *fakeMessageStore) GetByID(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	message, ok := r.messages[messageID]
	if !ok || message.ChatID != chatID {
		return nil, errors.NotFound("Message", nil)
	}
	copied := *message
	return &copied, nil
}

func (r *fakeMessageStore) ListByChat(ctx context.Context, chatID string, limit int, before time.Time) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*entity.Message
	for _, message := range r.messages {
		if message.ChatID != chatID {
			continue
		}
		if !before.IsZero() && !message.CreatedAt.Before(before) {
			continue
		}
		copied := *message
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeMessageStore) GetLatestByChat(ctx context.Context, chatID string) (*entity.Message, error) {
	messages, err := r.ListByChat(ctx, chatID, 1, time.Time{})
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, errors.NotFound("Message", nil)
	}
	return messages[0], nil
}

func (r *fakeMessageStore) GetByMessageAndUser(ctx context.Context, messageID, userID string) (*entity.MessageStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.statuses {
		if st.MessageID == messageID && st.UserID == userID {
			copied := *st
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Message status", nil)
}

func (r *fakeMessageStore) ListByMessage(ctx context.Context, messageID string) ([]*entity.MessageStatus, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.MessageStatus
	for _, st := range r.statuses {
		if st.MessageID == messageID {
			copied := *st
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMessageStore) CountUnread(ctx context.Context, userID, chatID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, st := range r.statuses {
		if st.UserID == userID && st.ChatID == chatID && !st.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageStore) Update(ctx context.Context, status *entity.MessageStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.statuses[status.ID]
	if !ok {
		return errors.NotFound("Message status", nil)
	}
	if existing.IsRead && !status.IsRead {
		return errors.Conflict("Read status cannot revert")
	}
	copied := *status
	r.statuses[status.ID] = &copied
	return nil
}

type fakeStoryRepository struct {
	mu      sync.Mutex
	stories map[string]*entity.Story
	nextID  int
}

func newFakeStoryRepository() *fakeStoryRepository {
	return &fakeStoryRepository{stories: make(map[string]*entity.Story)}
}

func (r *fakeStoryRepository) CreateWithNextSequence(ctx context.Context, story *entity.Story) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if story.ID == "" {
		r.nextID++
		story.ID = fmt.Sprintf("story-%d", r.nextID)
	}
	var max int64
	for _, existing := range r.stories {
		if existing.AuthorID == story.AuthorID && existing.Sequence > max {
			max = existing.Sequence
		}
	}
	story.Sequence = max + 1
	copied := *story
	r.stories[story.ID] = &copied
	return nil
}

func (r *fakeStoryRepository) GetByID(ctx context.Context, id string) (*entity.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[id]
	if !ok {
		return nil, errors.NotFound("Story", nil)
	}
	copied := *story
	copied.Viewers = append([]string(nil), story.Viewers...)
	return &copied, nil
}

func (r *fakeStoryRepository) ListActiveByAuthor(ctx context.Context, authorID string, now time.Time) ([]*entity.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Story
	for _, story := range r.stories {
		if story.AuthorID != authorID || story.Expired(now) {
			continue
		}
		copied := *story
		copied.Viewers = append([]string(nil), story.Viewers...)
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeStoryRepository) AddViewer(ctx context.Context, storyID, viewerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	story, ok := r.stories[storyID]
	if !ok {
		return errors.NotFound("Story", nil)
	}
	if story.ViewedBy(viewerID) {
		return nil
	}
	story.Viewers = append(story.Viewers, viewerID)
	return nil
}

func (r *fakeStoryRepository) ListExpired(ctx context.Context, now time.Time) ([]*entity.Story, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Story
	for _, story := range r.stories {
		if story.Expired(now) {
			copied := *story
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeStoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stories, id)
	return nil
}

type publishedEvent struct {
	ChatID        string
	UserID        string
	ExcludeUserID string
	Payload       []byte
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishToChat(chatID string, payload []byte, excludeUserID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{ChatID: chatID, ExcludeUserID: excludeUserID, Payload: payload})
}

func (p *fakePublisher) SendToUser(userID string, payload []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Payload: payload})
}

type fakeBlobStore struct {
	mu      sync.Mutex
	deleted []string
}

func (b *fakeBlobStore) GenerateUploadHandle(ctx context.Context, contentType string) (*service.UploadHandle, error) {
	return &service.UploadHandle{
		UploadURL:  "https://blobs.test/upload/ref-1",
		StorageRef: "media/ref-1",
	}, nil
}

func (b *fakeBlobStore) Resolve(ctx context.Context, storageRef string) (string, error) {
	return "https://blobs.test/" + storageRef, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, storageRef string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, storageRef)
	return nil
}

func (b *fakeBlobStore) Close() error { return nil }

// testEnv wires every use case against the in-memory fakes.
type testEnv struct {
	users     *fakeUserRepository
	chats     *fakeChatRepository
	messages  *fakeMessageStore
	stories   *fakeStoryRepository
	publisher *fakePublisher
	blobs     *fakeBlobStore
	identity  *IdentityUseCase
	chatUC    *ChatUseCase
	messageUC *MessageUseCase
	storyUC   *StoryUseCase
}

func newTestEnv() *testEnv {
	users := newFakeUserRepository()
	chats := newFakeChatRepository()
	messages := newFakeMessageStore(chats)
	stories := newFakeStoryRepository()
	publisher := &fakePublisher{}
	blobs := &fakeBlobStore{}
	limiter := ratelimit.NewRateLimiter()

	identity := NewIdentityUseCase(users, blobs)

	return &testEnv{
		users:     users,
		chats:     chats,
		messages:  messages,
		stories:   stories,
		publisher: publisher,
		blobs:     blobs,
		identity:  identity,
		chatUC:    NewChatUseCase(chats, users, messages, messages, identity, publisher, limiter),
		messageUC: NewMessageUseCase(chats, users, messages, messages, blobs, identity, publisher, limiter),
		storyUC:   NewStoryUseCase(stories, users, blobs, identity, publisher, limiter, 24*time.Hour),
	}
}

func (e *testEnv) addUser(ctx context.Context, id, name string, friendIDs ...string) *entity.User {
	user := &entity.User{
		ID:          id,
		ExternalID:  "ext-" + id,
		DisplayName: name,
		Email:       id + "@example.com",
		Username:    id,
		FriendIDs:   friendIDs,
	}
	if err := e.users.Create(ctx, user); err != nil {
		panic(err)
	}
	return user
}

var (
	_ repository.UserRepository          = (*fakeUserRepository)(nil)
	_ repository.ChatRepository          = (*fakeChatRepository)(nil)
	_ repository.MessageRepository       = (*fakeMessageStore)(nil)
	_ repository.MessageStatusRepository = (*fakeMessageStore)(nil)
	_ repository.StoryRepository         = (*fakeStoryRepository)(nil)
	_ EventPublisher                     = (*fakePublisher)(nil)
	_ service.BlobStorageService         = (*fakeBlobStore)(nil)
)
