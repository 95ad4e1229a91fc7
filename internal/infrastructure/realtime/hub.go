package realtime

import (
	"context"
	"sync"

	"pulsechat/pkg/logger"
	"pulsechat/pkg/metrics"
)

// Hub is the change-notification channel between the write path and
// connected clients: per-user send channels plus per-chat topics. Writers
// publish after their store transaction commits, so a subscriber never sees
// a message event before its own status row exists.
type Hub struct {
	clients    map[string]*Client
	rooms      map[string]map[string]bool
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex

	// presence side effects, wired by main
	onConnect    func(userID string)
	onDisconnect func(userID string)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// SetPresenceHooks registers callbacks invoked when a user connects or
// disconnects. Must be called before Start.
func (h *Hub) SetPresenceHooks(onConnect, onDisconnect func(userID string)) {
	h.onConnect = onConnect
	h.onDisconnect = onDisconnect
}

// Start runs the hub's main loop in a goroutine until ctx is done.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-h.Register:
				h.mutex.Lock()
				_, replaced := h.clients[client.UserID]
				h.clients[client.UserID] = client
				h.mutex.Unlock()
				if !replaced {
					metrics.RealtimeClients.Inc()
				}
				logger.Info("Client registered: %s", client.UserID)
				if h.onConnect != nil {
					h.onConnect(client.UserID)
				}

			case client := <-h.Unregister:
				// A reconnect replaces the registry entry before the old
				// connection tears down; only the current client may evict.
				h.mutex.Lock()
				current, ok := h.clients[client.UserID]
				removed := ok && current == client
				if removed {
					delete(h.clients, client.UserID)
					for _, members := range h.rooms {
						delete(members, client.UserID)
					}
				}
				h.mutex.Unlock()
				close(client.Send)
				if removed {
					metrics.RealtimeClients.Dec()
					logger.Info("Client unregistered: %s", client.UserID)
					if h.onDisconnect != nil {
						h.onDisconnect(client.UserID)
					}
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

// JoinChat subscribes a connected user to a chat topic.
func (h *Hub) JoinChat(userID, chatID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.rooms[chatID]; !ok {
		h.rooms[chatID] = make(map[string]bool)
	}
	h.rooms[chatID][userID] = true
}

// LeaveChat removes a user from a chat topic.
func (h *Hub) LeaveChat(userID, chatID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if members, ok := h.rooms[chatID]; ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// SendToUser delivers a payload to a specific connected user; a no-op when
// the user has no open connection.
func (h *Hub) SendToUser(userID string, message []byte) {
	h.mutex.RLock()
	client, ok := h.clients[userID]
	h.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		logger.Warn("Dropping realtime payload for slow client %s", userID)
	}
}

// PublishToChat delivers a payload to every member of a chat topic except
// excludeUserID.
func (h *Hub) PublishToChat(chatID string, message []byte, excludeUserID string) {
	h.mutex.RLock()
	var targets []*Client
	for userID := range h.rooms[chatID] {
		if userID == excludeUserID {
			continue
		}
		if client, ok := h.clients[userID]; ok {
			targets = append(targets, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- message:
		default:
			logger.Warn("Dropping chat %s payload for slow client %s", chatID, client.UserID)
		}
	}
}
