package websocket

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(logger.Discard())
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func registerClient(t *testing.T, hub *Hub, userID uuid.UUID) *Client {
	t.Helper()
	client := NewClient(hub, nil, userID)
	hub.Register(client)
	return client
}

func receive(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestHub_PublishToUser(t *testing.T) {
	hub := startHub(t)
	alice, bob := uuid.New(), uuid.New()

	phone := registerClient(t, hub, alice)
	laptop := registerClient(t, hub, alice)
	other := registerClient(t, hub, bob)

	require.Eventually(t, func() bool {
		return hub.ConnectionCount(alice) == 2 && hub.ConnectionCount(bob) == 1
	}, time.Second, 10*time.Millisecond)

	hub.PublishToUser(alice, "MEAL_CREATED", map[string]string{"name": "Oatmeal"})

	for _, c := range []*Client{phone, laptop} {
		msg := receive(t, c)
		assert.Equal(t, MessageTypeMealCreated, msg.Type)
		assert.JSONEq(t, `{"name":"Oatmeal"}`, string(msg.Payload))
	}

	select {
	case <-other.send:
		t.Fatal("event leaked to another user")
	default:
	}
}

func TestHub_Unregister(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	client := registerClient(t, hub, userID)

	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 1 }, time.Second, 10*time.Millisecond)

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 0 }, time.Second, 10*time.Millisecond)

	_, ok := <-client.send
	assert.False(t, ok, "send channel is closed on unregister")

	// publishing to a user without connections is a no-op
	hub.PublishToUser(userID, "MEAL_DELETED", nil)
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := startHub(t)
	userID := uuid.New()
	registerClient(t, hub, userID)
	require.Eventually(t, func() bool { return hub.ConnectionCount(userID) == 1 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.PublishToUser(userID, "MEAL_UPDATED", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing blocked on a full client buffer")
	}
}

func TestHub_StopClosesClients(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()

	client := registerClient(t, hub, uuid.New())
	hub.Stop()

	_, ok := <-client.send
	assert.False(t, ok)

	// registering after stop closes the client instead of blocking
	late := NewClient(hub, nil, uuid.New())
	hub.Register(late)
	_, ok = <-late.send
	assert.False(t, ok)
}

func TestHub_ConcurrentStop(t *testing.T) {
	hub := NewHub(logger.Discard())
	go hub.Run()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotPanics(t, hub.Stop)
		}()
	}

	stopped := make(chan struct{})
	go func() {
		wg.Wait()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestClient_HandlePing(t *testing.T) {
	hub := NewHub(logger.Discard())
	client := NewClient(hub, nil, uuid.New())

	client.handleMessage(&Message{Type: MessageTypePing})
	assert.Equal(t, MessageTypePong, receive(t, client).Type)

	client.handleMessage(&Message{Type: "SOMETHING_ELSE"})
	msg := receive(t, client)
	assert.Equal(t, MessageTypeError, msg.Type)
}
