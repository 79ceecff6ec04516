package signal_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	httpadapter "github.com/interviewly/relay/internal/adapters/http"
	"github.com/interviewly/relay/internal/app"
	"github.com/interviewly/relay/internal/config"
	"github.com/interviewly/relay/internal/store"
)

func testConfig() *config.Config {
	return &config.Config{
		Mode:             "release",
		Secret:           "test-secret",
		ReadLimit:        65536,
		WriteWait:        10 * time.Second,
		PongWait:         45 * time.Second,
		PingPeriod:       25 * time.Second,
		RoomInactivity:   24 * time.Hour,
		ReapInterval:     5 * time.Minute,
		CreateRoomLimit:  10,
		CreateRoomWindow: time.Minute,
	}
}

func newSignalServer(t *testing.T) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	d := app.NewDispatcher(app.NewMemoryRegistry(), nil)
	srv := httptest.NewServer(httpadapter.SetupRouter(ctx, testConfig(), d, store.NewMemoryStore()))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, v map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func recv(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame map[string]any
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read: %v", err)
	}
	return frame
}

func recvAck(t *testing.T, conn *websocket.Conn, event string) map[string]any {
	t.Helper()
	frame := recv(t, conn)
	if frame["type"] != "ack" || frame["event"] != event {
		t.Fatalf("frame = %v, want ack for %q", frame, event)
	}
	return frame
}

func TestSignalRoundTrip(t *testing.T) {
	url := newSignalServer(t)

	creator := dial(t, url)
	send(t, creator, map[string]any{"type": "create-room", "roomId": "it-room"})
	if ack := recvAck(t, creator, "create-room"); ack["success"] != true {
		t.Fatalf("create-room ack = %v", ack)
	}

	// Duplicate room id from another channel is refused.
	dup := dial(t, url)
	send(t, dup, map[string]any{"type": "create-room", "roomId": "it-room"})
	if ack := recvAck(t, dup, "create-room"); ack["success"] != false || ack["error"] != "AlreadyExists" {
		t.Fatalf("duplicate create-room ack = %v", ack)
	}

	joiner := dial(t, url)
	send(t, joiner, map[string]any{"type": "join-room", "roomId": "it-room"})
	if ack := recvAck(t, joiner, "join-room"); ack["success"] != true {
		t.Fatalf("join-room ack = %v", ack)
	}

	joined := recv(t, creator)
	if cid, _ := joined["candidateId"].(string); joined["type"] != "candidate-joined" || cid == "" {
		t.Fatalf("creator notification = %v, want candidate-joined", joined)
	}

	send(t, creator, map[string]any{
		"type": "offer", "roomId": "it-room",
		"payload": map[string]any{"sdp": "v=0"},
	})
	if ack := recvAck(t, creator, "offer"); ack["success"] != true {
		t.Fatalf("offer ack = %v", ack)
	}

	offer := recv(t, joiner)
	if from, _ := offer["from"].(string); offer["type"] != "offer" || from == "" {
		t.Fatalf("relayed frame = %v, want offer with sender", offer)
	}
	if sdp, ok := offer["offer"].(map[string]any); !ok || sdp["sdp"] != "v=0" {
		t.Fatalf("relayed offer payload = %v", offer["offer"])
	}

	// Joiner hangs up without leave-room; the creator still hears it.
	_ = joiner.Close()
	gone := recv(t, creator)
	if gone["type"] != "participant-disconnected" {
		t.Fatalf("creator notification = %v, want participant-disconnected", gone)
	}
}

func TestSignalRejectsMalformedFrame(t *testing.T) {
	url := newSignalServer(t)

	conn := dial(t, url)
	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	frame := recv(t, conn)
	if frame["type"] != "error" || frame["error"] != "bad_payload" {
		t.Fatalf("frame = %v, want bad_payload error", frame)
	}

	// The connection survives a malformed frame.
	send(t, conn, map[string]any{"type": "create-room", "roomId": "after-junk"})
	if ack := recvAck(t, conn, "create-room"); ack["success"] != true {
		t.Fatalf("create-room ack = %v", ack)
	}
}

func TestSignalCreateRoomRequiresRoomID(t *testing.T) {
	url := newSignalServer(t)

	conn := dial(t, url)
	send(t, conn, map[string]any{"type": "create-room"})
	if ack := recvAck(t, conn, "create-room"); ack["success"] != false || ack["error"] != "BadRequest" {
		t.Fatalf("create-room ack = %v", ack)
	}
}

func TestSignalJoinUnknownRoom(t *testing.T) {
	url := newSignalServer(t)

	conn := dial(t, url)
	send(t, conn, map[string]any{"type": "join-room", "roomId": "ghost"})
	if ack := recvAck(t, conn, "join-room"); ack["success"] != false || ack["error"] != "NotFound" {
		t.Fatalf("join-room ack = %v", ack)
	}
}
