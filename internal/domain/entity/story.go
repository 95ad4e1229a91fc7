package entity

import "time"

const (
	StoryKindImage = "image"
	StoryKindVideo = "video"
)

// Story is an append-only ephemeral post. Mutated only to append viewers;
// removed by the daily expiry sweep once expiresAt has passed.
type Story struct {
	ID           string          `json:"id" firestore:"id"`
	AuthorID     string          `json:"author_id" firestore:"authorId"`
	Kind         string          `json:"kind" firestore:"kind"`
	Media        MediaAttachment `json:"media" firestore:"media"`
	CreatedAt    time.Time       `json:"created_at" firestore:"createdAt"`
	ExpiresAt    time.Time       `json:"expires_at" firestore:"expiresAt"`
	Sequence     int64           `json:"sequence" firestore:"sequence"`
	StoryGroupID string          `json:"story_group_id" firestore:"storyGroupId"`
	Viewers      []string        `json:"viewers" firestore:"viewers"`
	IsActive     bool            `json:"is_active" firestore:"isActive"`
}

func (s *Story) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (s *Story) ViewedBy(userID string) bool {
	for _, v := range s.Viewers {
		if v == userID {
			return true
		}
	}
	return false
}
