package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkReadImpliesDelivered(t *testing.T) {
	st := &MessageStatus{IsSent: true}
	now := time.Now()

	changed := st.MarkRead(now)
	assert.True(t, changed)
	assert.True(t, st.IsDelivered)
	assert.True(t, st.IsRead)
	require.NotNil(t, st.DeliveredAt)
	require.NotNil(t, st.ReadAt)
}

func TestMarkReadIsMonotonic(t *testing.T) {
	st := &MessageStatus{IsSent: true}
	first := time.Now()
	require.True(t, st.MarkRead(first))

	// Later calls report no change and keep the original stamp.
	assert.False(t, st.MarkRead(first.Add(time.Minute)))
	assert.Equal(t, first, *st.ReadAt)
}

func TestMarkDeliveredKeepsFirstStamp(t *testing.T) {
	st := &MessageStatus{IsSent: true}
	first := time.Now()
	st.MarkDelivered(first)
	st.MarkDelivered(first.Add(time.Minute))
	assert.Equal(t, first, *st.DeliveredAt)
}
