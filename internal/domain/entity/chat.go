package entity

import (
	"sort"
	"strings"
	"time"
)

type Chat struct {
	ID           string    `json:"id" firestore:"id"`
	Name         string    `json:"name" firestore:"name"`
	IsGroup      bool      `json:"is_group" firestore:"isGroup"`
	ImageRef     string    `json:"image_ref,omitempty" firestore:"imageRef,omitempty"`
	Participants []string  `json:"participants" firestore:"participants"`
	CombinedKey  string    `json:"combined_key,omitempty" firestore:"combinedKey,omitempty"`
	CreatedBy    string    `json:"created_by" firestore:"createdBy"`
	CreatedAt    time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" firestore:"updatedAt"`
}

// CombinedKey canonicalizes a participant set into the dedup lookup key for
// direct chats: IDs sorted ascending, joined by "_".
func CombinedKey(participantIDs []string) string {
	ids := append([]string(nil), participantIDs...)
	sort.Strings(ids)
	return strings.Join(ids, "_")
}

// ReversedCombinedKey is the descending-order join. Historical records may
// carry either ordering, so dedup lookups match both.
func ReversedCombinedKey(participantIDs []string) string {
	ids := append([]string(nil), participantIDs...)
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return strings.Join(ids, "_")
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, id := range c.Participants {
		if id == userID {
			return true
		}
	}
	return false
}
