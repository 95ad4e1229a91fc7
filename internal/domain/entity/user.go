package entity

import "time"

type User struct {
	ID          string    `json:"id" firestore:"id"`
	ExternalID  string    `json:"external_id" firestore:"externalId"`
	DisplayName string    `json:"display_name" firestore:"displayName"`
	Email       string    `json:"email" firestore:"email"`
	Username    string    `json:"username,omitempty" firestore:"username,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty" firestore:"phoneNumber,omitempty"`
	ImageRef    string    `json:"image_ref,omitempty" firestore:"imageRef,omitempty"`
	IsOnline    bool      `json:"is_online" firestore:"isOnline"`
	LastSeenAt  time.Time `json:"last_seen_at" firestore:"lastSeenAt"`
	FriendIDs   []string  `json:"friend_ids,omitempty" firestore:"friendIds,omitempty"`
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

// UserSummary is the denormalized profile shape embedded in read-time
// responses (chat lists, messages, stories). Never persisted.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	IsOnline    bool   `json:"is_online"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		IsOnline:    u.IsOnline,
	}
}
