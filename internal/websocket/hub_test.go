package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newHubClient(h *Hub, sessionID uuid.UUID, buffer int) *Client {
	return &Client{
		Hub:       h,
		SessionID: sessionID,
		Send:      make(chan []byte, buffer),
	}
}

func register(t *testing.T, h *Hub, c *Client) {
	t.Helper()
	select {
	case h.register <- c:
	case <-time.After(time.Second):
		t.Fatal("hub did not accept registration")
	}
}

func waitClosed(t *testing.T, c *Client) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-c.Send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("send channel was never closed")
		}
	}
}

func TestPushDeliversToSessionClients(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	sid := uuid.New()
	watching := newHubClient(h, sid, 4)
	other := newHubClient(h, uuid.New(), 4)
	register(t, h, watching)
	register(t, h, other)

	h.Push(sid, "step_advanced", map[string]interface{}{"step": 3})

	select {
	case msg := <-watching.Send:
		if len(msg) == 0 {
			t.Error("empty event payload")
		}
	case <-time.After(time.Second):
		t.Fatal("watching client got nothing")
	}

	select {
	case <-other.Send:
		t.Error("client on another session received the event")
	default:
	}
}

func TestSlowClientEvictedOnce(t *testing.T) {
	h := NewHub(nil, nopLogger{})
	go h.Run()

	sid := uuid.New()
	slow := newHubClient(h, sid, 1)
	healthy := newHubClient(h, sid, 4)
	register(t, h, slow)
	register(t, h, healthy)

	// First push fills the slow client's buffer, second overflows it and
	// must evict exactly once without killing the hub.
	h.Push(sid, "turn_finalized", nil)
	h.Push(sid, "turn_finalized", nil)

	waitClosed(t, slow)

	// The hub is still alive and the healthy client keeps receiving.
	h.Push(sid, "turn_finalized", nil)
	got := 0
	deadline := time.After(time.Second)
	for got < 3 {
		select {
		case <-healthy.Send:
			got++
		case <-deadline:
			t.Fatalf("healthy client received %d of 3 events", got)
		}
	}
}
