package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerClient(t *testing.T, h *Hub, userID string) *Client {
	t.Helper()
	client := &Client{UserID: userID, Send: make(chan []byte, 8)}
	h.Register <- client
	// The register loop runs on its own goroutine; wait for the hook side
	// effects to settle.
	require.Eventually(t, func() bool {
		h.mutex.RLock()
		defer h.mutex.RUnlock()
		_, ok := h.clients[userID]
		return ok
	}, time.Second, 5*time.Millisecond)
	return client
}

func TestHubSendToUser(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	h.Start(ctx)

	alice := registerClient(t, h, "alice")

	h.SendToUser("alice", []byte("hello"))
	select {
	case payload := <-alice.Send:
		assert.Equal(t, "hello", string(payload))
	case <-time.After(time.Second):
		t.Fatal("expected payload for alice")
	}

	// Unknown user is a no-op.
	h.SendToUser("nobody", []byte("void"))
}

func TestHubPublishToChatExcludesSender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	h.Start(ctx)

	alice := registerClient(t, h, "alice")
	bob := registerClient(t, h, "bob")

	h.JoinChat("alice", "chat-1")
	h.JoinChat("bob", "chat-1")

	h.PublishToChat("chat-1", []byte("new message"), "alice")

	select {
	case payload := <-bob.Send:
		assert.Equal(t, "new message", string(payload))
	case <-time.After(time.Second):
		t.Fatal("expected payload for bob")
	}

	select {
	case <-alice.Send:
		t.Fatal("sender must not receive its own publish")
	default:
	}
}

func TestHubLeaveChatStopsDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	h.Start(ctx)

	bob := registerClient(t, h, "bob")
	h.JoinChat("bob", "chat-1")
	h.LeaveChat("bob", "chat-1")

	h.PublishToChat("chat-1", []byte("gone"), "")

	select {
	case <-bob.Send:
		t.Fatal("unsubscribed client must not receive chat payloads")
	default:
	}
}

func TestHubReconnectSurvivesStaleUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHub()
	h.Start(ctx)

	stale := registerClient(t, h, "alice")

	// Reconnect replaces the registry entry; the old connection tears down
	// afterwards.
	fresh := &Client{UserID: "alice", Send: make(chan []byte, 8)}
	h.Register <- fresh
	require.Eventually(t, func() bool {
		h.mutex.RLock()
		defer h.mutex.RUnlock()
		return h.clients["alice"] == fresh
	}, time.Second, 5*time.Millisecond)

	h.Unregister <- stale
	require.Eventually(t, func() bool {
		select {
		case _, open := <-stale.Send:
			return !open
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// The fresh connection must still be reachable.
	h.SendToUser("alice", []byte("still here"))
	select {
	case payload := <-fresh.Send:
		assert.Equal(t, "still here", string(payload))
	case <-time.After(time.Second):
		t.Fatal("reconnected client lost its registration")
	}
}

func TestHubPresenceHooks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connected := make(chan string, 1)
	disconnected := make(chan string, 1)

	h := NewHub()
	h.SetPresenceHooks(
		func(userID string) { connected <- userID },
		func(userID string) { disconnected <- userID },
	)
	h.Start(ctx)

	client := registerClient(t, h, "alice")

	select {
	case userID := <-connected:
		assert.Equal(t, "alice", userID)
	case <-time.After(time.Second):
		t.Fatal("expected connect hook")
	}

	h.Unregister <- client

	select {
	case userID := <-disconnected:
		assert.Equal(t, "alice", userID)
	case <-time.After(time.Second):
		t.Fatal("expected disconnect hook")
	}
}
