package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-runner-progression/pkg/events"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Stop)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, logger, w, r)
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *gorilla.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func send(t *testing.T, conn *gorilla.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

func TestHub_ForwardsEventsToSubscribers(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: MessageTypeSubscribe, PlayerID: "player-1"})
	ack := readMessage(t, conn)
	assert.Equal(t, MessageTypeSubscribed, ack.Type)
	assert.Equal(t, "player-1", ack.PlayerID)
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount("player-1") == 1 && hub.TotalConnections() == 1
	}, 2*time.Second, 10*time.Millisecond)

	at := time.Date(2025, 10, 15, 10, 0, 0, 0, time.UTC)
	hub.HandleEvent(context.Background(), events.Event{
		Type:       events.DailyMissionCompleted,
		PlayerID:   "player-1",
		OccurredAt: at,
		Payload:    map[string]string{"id": "distance_5k"},
	})

	msg := readMessage(t, conn)
	assert.Equal(t, string(events.DailyMissionCompleted), msg.Type)
	assert.Equal(t, "player-1", msg.PlayerID)
	assert.True(t, at.Equal(msg.Timestamp))
	assert.Equal(t, map[string]any{"id": "distance_5k"}, msg.Data)
}

func TestHub_OtherPlayersEventsAreNotForwarded(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: MessageTypeSubscribe, PlayerID: "player-1"})
	readMessage(t, conn)

	hub.HandleEvent(context.Background(), events.Event{Type: events.AchievementUnlocked, PlayerID: "player-2"})
	hub.HandleEvent(context.Background(), events.Event{Type: events.RewardClaimed, PlayerID: "player-1"})

	msg := readMessage(t, conn)
	assert.Equal(t, string(events.RewardClaimed), msg.Type)
}

func TestHub_ClientMessages(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: MessageTypePing})
	assert.Equal(t, MessageTypePong, readMessage(t, conn).Type)

	send(t, conn, ClientMessage{Type: MessageTypeSubscribe})
	assert.Equal(t, MessageTypeError, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteMessage(gorilla.TextMessage, []byte("not json")))
	assert.Equal(t, MessageTypeError, readMessage(t, conn).Type)

	send(t, conn, ClientMessage{Type: MessageTypeSubscribe, PlayerID: "player-1"})
	readMessage(t, conn)
	send(t, conn, ClientMessage{Type: MessageTypeUnsubscribe, PlayerID: "player-1"})
	assert.Equal(t, MessageTypeUnsubscribed, readMessage(t, conn).Type)
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount("player-1") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_DisconnectRemovesSubscriptions(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)

	send(t, conn, ClientMessage{Type: MessageTypeSubscribe, PlayerID: "player-1"})
	readMessage(t, conn)
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return hub.TotalConnections() == 0 && hub.SubscriberCount("player-1") == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SubscribesToBus(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := dial(t, srv)
	bus := events.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	unsubscribe := bus.Subscribe(hub.HandleEvent)
	defer unsubscribe()

	send(t, conn, ClientMessage{Type: MessageTypeSubscribe, PlayerID: "player-1"})
	readMessage(t, conn)

	bus.Publish(context.Background(), events.Event{Type: events.LoginStreakChanged, PlayerID: "player-1"})
	assert.Equal(t, string(events.LoginStreakChanged), readMessage(t, conn).Type)
}
