package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskloft/taskloft-be/internal/models"
)

func newTestClient(h *Hub, ownerID int64, buffer int) *Client {
	return &Client{hub: h, Send: make(chan []byte, buffer), OwnerID: ownerID}
}

func recv(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for hub message")
		return nil
	}
}

func TestPublishTaskEventReachesOnlyOwner(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	alice := newTestClient(h, 1, 1)
	bob := newTestClient(h, 2, 1)
	h.Register <- alice
	h.Register <- bob

	task := models.Task{ID: 7, Title: "Buy milk", Status: models.StatusPending, UserID: 1}
	h.PublishTaskEvent(1, "task.created", task)

	data := recv(t, alice.Send)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "task.created", msg.Action)

	select {
	case <-bob.Send:
		t.Fatal("bob must not receive alice's task events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBroadcastAllReachesEveryone(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	alice := newTestClient(h, 1, 1)
	bob := newTestClient(h, 2, 1)
	h.Register <- alice
	h.Register <- bob

	h.BroadcastAll([]byte(`{"action":"digest"}`))

	assert.NotNil(t, recv(t, alice.Send))
	assert.NotNil(t, recv(t, bob.Send))
}

func TestSlowClientIsDropped(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	// Zero-buffer channel with no reader: the first send cannot complete.
	slow := newTestClient(h, 1, 0)
	h.Register <- slow

	task := models.Task{ID: 1, Title: "x", Status: models.StatusPending, UserID: 1}
	h.PublishTaskEvent(1, "task.created", task)

	// The hub closes the Send channel when it drops the client.
	select {
	case _, ok := <-slow.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("slow client was not dropped")
	}
}
