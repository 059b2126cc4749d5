package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/dukerupert/apex/internal/model"
)

func TestBroadcastReachesClients(t *testing.T) {
	hub := NewHub(slog.Default())

	c1 := &Client{hub: hub, send: make(chan []byte, 4)}
	c2 := &Client{hub: hub, send: make(chan []byte, 4)}
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("client count = %d, want 2", got)
	}

	hub.Broadcast(ChangeEvent("record", "update", "r1"))

	for _, c := range []*Client{c1, c2} {
		select {
		case data := <-c.send:
			var ev Event
			if err := json.Unmarshal(data, &ev); err != nil {
				t.Fatalf("unmarshal event: %v", err)
			}
			if ev.Type != "record_update" || ev.ID != "r1" {
				t.Errorf("unexpected event: %+v", ev)
			}
		default:
			t.Error("client did not receive broadcast")
		}
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(slog.Default())

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)

	hub.Broadcast(ChangeEvent("record", "create", "r1"))
	hub.Broadcast(ChangeEvent("record", "create", "r2")) // dropped, must not block

	if got := len(c.send); got != 1 {
		t.Errorf("buffered %d events, want 1", got)
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub(slog.Default())

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	hub.Unregister(c)

	if _, ok := <-c.send; ok {
		t.Error("send channel should be closed after unregister")
	}
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("client count = %d, want 0", got)
	}

	// Double unregister is a no-op.
	hub.Unregister(c)
}

func TestNotificationEvent(t *testing.T) {
	n := model.Notification{ID: "n1", UserID: "u1", Type: model.NotifReminder, Title: "Follow-up due"}
	ev := NotificationEvent(n)
	if ev.Type != "notification_fired" || ev.Payload == nil || ev.Payload.ID != "n1" {
		t.Errorf("unexpected event: %+v", ev)
	}
}
