package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombinedKeyIsOrderIndependent(t *testing.T) {
	assert.Equal(t, "alice_bob", CombinedKey([]string{"alice", "bob"}))
	assert.Equal(t, "alice_bob", CombinedKey([]string{"bob", "alice"}))
	assert.Equal(t, "bob_alice", ReversedCombinedKey([]string{"alice", "bob"}))
	assert.Equal(t, "bob_alice", ReversedCombinedKey([]string{"bob", "alice"}))
}

func TestCombinedKeyDoesNotMutateInput(t *testing.T) {
	ids := []string{"bob", "alice"}
	CombinedKey(ids)
	assert.Equal(t, []string{"bob", "alice"}, ids)
}

func TestHasParticipant(t *testing.T) {
	chat := &Chat{Participants: []string{"alice", "bob"}}
	assert.True(t, chat.HasParticipant("alice"))
	assert.False(t, chat.HasParticipant("mallory"))
}
