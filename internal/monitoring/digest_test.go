package monitoring

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskloft/taskloft-be/internal/events"
	"github.com/taskloft/taskloft-be/internal/models"
	"github.com/taskloft/taskloft-be/internal/store"
)

type captureBroadcaster struct {
	messages [][]byte
}

func (c *captureBroadcaster) BroadcastAll(data []byte) {
	c.messages = append(c.messages, data)
}

func TestNewDigestRejectsBadSchedule(t *testing.T) {
	_, err := NewDigest(store.NewMemory(), nil, "not a cron spec", zerolog.Nop())
	assert.Error(t, err)
}

func TestDigestSummaryCounts(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()

	user := models.User{Username: "alice", Email: "a@x.com", IsActive: true}
	require.NoError(t, st.InsertUser(ctx, &user))
	for _, status := range []models.Status{models.StatusPending, models.StatusCompleted, models.StatusCompleted} {
		task := models.Task{Title: "t", Status: status, UserID: user.ID}
		require.NoError(t, st.InsertTask(ctx, &task))
	}

	hub := &captureBroadcaster{}
	d, err := NewDigest(st, hub, "@hourly", zerolog.Nop())
	require.NoError(t, err)

	d.runOnce()

	require.Len(t, hub.messages, 1)
	var msg events.Message
	require.NoError(t, json.Unmarshal(hub.messages[0], &msg))
	assert.Equal(t, "digest", msg.Action)

	payload, err := json.Marshal(msg.Payload)
	require.NoError(t, err)
	var summary Summary
	require.NoError(t, json.Unmarshal(payload, &summary))
	assert.Equal(t, int64(1), summary.Users)
	assert.Equal(t, int64(1), summary.PendingTasks)
	assert.Equal(t, int64(2), summary.CompletedTasks)
}
