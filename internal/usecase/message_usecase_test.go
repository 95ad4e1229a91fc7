package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupChat(t *testing.T, env *testEnv, creatorID string, otherIDs ...string) string {
	t.Helper()
	chat, err := env.chatUC.CreateChat(context.Background(), creatorID, CreateChatInput{
		ParticipantIDs: otherIDs,
		IsGroup:        len(otherIDs) > 1,
		Name:           "test chat",
	})
	require.NoError(t, err)
	return chat.ID
}

func TestSendMessageFansOutStatuses(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	env.addUser(ctx, "carol", "Carol")
	chatID := setupChat(t, env, "alice", "bob", "carol")

	resp, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{
		ChatID: chatID,
		Text:   "hello everyone",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)

	// One status row per participant, visible immediately.
	statuses, err := env.messages.ListByMessage(ctx, resp.ID)
	require.NoError(t, err)
	require.Len(t, statuses, 3)

	for _, st := range statuses {
		assert.True(t, st.IsSent)
		assert.Equal(t, chatID, st.ChatID)
		if st.UserID == "alice" {
			// The author's own row is born delivered and read.
			assert.True(t, st.IsDelivered)
			assert.True(t, st.IsRead)
			require.NotNil(t, st.ReadAt)
		} else {
			assert.False(t, st.IsDelivered)
			assert.False(t, st.IsRead)
			assert.Nil(t, st.ReadAt)
		}
	}
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	chatID := setupChat(t, env, "alice", "bob")

	_, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{ChatID: chatID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BAD_REQUEST")
}

func TestSendMessageForbiddenForOutsider(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	env.addUser(ctx, "mallory", "Mallory")
	chatID := setupChat(t, env, "alice", "bob")

	_, err := env.messageUC.SendMessage(ctx, "mallory", SendMessageInput{
		ChatID: chatID,
		Text:   "let me in",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORBIDDEN")
}

func TestMarkReadClearsUnreadCount(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	chatID := setupChat(t, env, "alice", "bob")

	sentAt := time.Now()
	first, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{ChatID: chatID, Text: "one"})
	require.NoError(t, err)
	second, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{ChatID: chatID, Text: "two"})
	require.NoError(t, err)

	unread, err := env.messages.CountUnread(ctx, "bob", chatID)
	require.NoError(t, err)
	assert.Equal(t, 2, unread)

	err = env.messageUC.MarkRead(ctx, "bob", chatID, []string{first.ID, second.ID})
	require.NoError(t, err)

	unread, err = env.messages.CountUnread(ctx, "bob", chatID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	st, err := env.messages.GetByMessageAndUser(ctx, first.ID, "bob")
	require.NoError(t, err)
	assert.True(t, st.IsDelivered)
	assert.True(t, st.IsRead)
	require.NotNil(t, st.ReadAt)
	assert.False(t, st.ReadAt.Before(sentAt))
}

func TestMarkReadIsIdempotent(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	chatID := setupChat(t, env, "alice", "bob")

	msg, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{ChatID: chatID, Text: "once"})
	require.NoError(t, err)

	require.NoError(t, env.messageUC.MarkRead(ctx, "bob", chatID, []string{msg.ID}))
	st, err := env.messages.GetByMessageAndUser(ctx, msg.ID, "bob")
	require.NoError(t, err)
	firstReadAt := *st.ReadAt

	// A repeat read keeps the original timestamp.
	require.NoError(t, env.messageUC.MarkRead(ctx, "bob", chatID, []string{msg.ID}))
	st, err = env.messages.GetByMessageAndUser(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, firstReadAt, *st.ReadAt)
}

func TestMarkReadSkipsUnknownMessages(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	chatID := setupChat(t, env, "alice", "bob")

	msg, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{ChatID: chatID, Text: "real"})
	require.NoError(t, err)

	err = env.messageUC.MarkRead(ctx, "bob", chatID, []string{"missing-1", msg.ID, "missing-2"})
	require.NoError(t, err)

	st, err := env.messages.GetByMessageAndUser(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.True(t, st.IsRead)
}

func TestListMessagesNewestFirstWithCursor(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	chatID := setupChat(t, env, "alice", "bob")

	for _, text := range []string{"one", "two", "three"} {
		_, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{ChatID: chatID, Text: text})
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := env.messageUC.ListMessages(ctx, "bob", chatID, 2, time.Time{})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Text)
	assert.Equal(t, "two", page[1].Text)
	require.NotNil(t, page[0].Author)
	assert.Equal(t, "Alice", page[0].Author.DisplayName)

	older, err := env.messageUC.ListMessages(ctx, "bob", chatID, 2, page[1].CreatedAt)
	require.NoError(t, err)
	require.Len(t, older, 1)
	assert.Equal(t, "one", older[0].Text)
}

func TestReadReceiptScenario(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.addUser(ctx, "alice", "Alice")
	env.addUser(ctx, "bob", "Bob")
	chatID := setupChat(t, env, "alice", "bob")

	msg, err := env.messageUC.SendMessage(ctx, "alice", SendMessageInput{ChatID: chatID, Text: "seen yet?"})
	require.NoError(t, err)

	require.NoError(t, env.messageUC.MarkRead(ctx, "bob", chatID, []string{msg.ID}))

	// The sender observes the receipt on bob's status row.
	st, err := env.messages.GetByMessageAndUser(ctx, msg.ID, "bob")
	require.NoError(t, err)
	assert.True(t, st.IsRead)
	require.NotNil(t, st.ReadAt)
	assert.False(t, st.ReadAt.Before(msg.CreatedAt))
}
