package entity

import "time"

// MessageStatus is the per-recipient delivery record fanned out at send
// time, one row per (message, participant). Transitions are monotonic:
// sent, then delivered, then read; isRead never reverts.
//
// ChatID is denormalized from the parent message so unread counts can be
// answered with a single user+chat query.
type MessageStatus struct {
	ID          string     `json:"id" firestore:"id"`
	MessageID   string     `json:"message_id" firestore:"messageId"`
	ChatID      string     `json:"chat_id" firestore:"chatId"`
	UserID      string     `json:"user_id" firestore:"userId"`
	IsSent      bool       `json:"is_sent" firestore:"isSent"`
	IsDelivered bool       `json:"is_delivered" firestore:"isDelivered"`
	IsRead      bool       `json:"is_read" firestore:"isRead"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty" firestore:"deliveredAt,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty" firestore:"readAt,omitempty"`
	CreatedAt   time.Time  `json:"created_at" firestore:"createdAt"`
}

// MarkDelivered stamps the delivered transition if it has not happened yet.
func (s *MessageStatus) MarkDelivered(now time.Time) {
	if s.IsDelivered {
		return
	}
	s.IsDelivered = true
	t := now
	s.DeliveredAt = &t
}

// MarkRead stamps delivered (if needed) and read. Reports whether the row
// changed, so already-read rows can be skipped without a write.
func (s *MessageStatus) MarkRead(now time.Time) bool {
	if s.IsRead {
		return false
	}
	s.MarkDelivered(now)
	s.IsRead = true
	t := now
	s.ReadAt = &t
	return true
}
