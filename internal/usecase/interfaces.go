package usecase

// EventPublisher is the change-notification side of the realtime hub as the
// write path sees it. Implementations must only be invoked after the
// corresponding store write has committed.
type EventPublisher interface {
	PublishToChat(chatID string, payload []byte, excludeUserID string)
	SendToUser(userID string, payload []byte)
}
