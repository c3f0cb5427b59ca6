package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/auteur/internal/transport"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

type inbound struct {
	data   string
	sender string
}

func newTestServer(t *testing.T, tokens *transport.TokenSource) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(slog.Default())
	e := echo.New()
	NewHandler(hub, tokens).RegisterRoutes(e.Group("/v1/rooms"))
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)
	return hub, server
}

func roomURL(server *httptest.Server, room string) string {
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/rooms/" + room
}

func waitForParticipants(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Stats().Participants == n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d participants, have %d", n, hub.Stats().Participants)
}

func TestHub_FansOutWithinRoom(t *testing.T) {
	hub, server := newTestServer(t, nil)
	ctx := context.Background()

	camera := transport.NewWSRoom(transport.WSRoomConfig{URL: roomURL(server, "studio"), Identity: "camera"})
	agent := transport.NewWSRoom(transport.WSRoomConfig{URL: roomURL(server, "studio"), Identity: "agent"})
	other := transport.NewWSRoom(transport.WSRoomConfig{URL: roomURL(server, "lobby"), Identity: "other"})

	agentInbox := make(chan inbound, 4)
	agent.OnData(func(data []byte, sender string) { agentInbox <- inbound{string(data), sender} })
	otherInbox := make(chan inbound, 4)
	other.OnData(func(data []byte, sender string) { otherInbox <- inbound{string(data), sender} })
	cameraInbox := make(chan inbound, 4)
	camera.OnData(func(data []byte, sender string) { cameraInbox <- inbound{string(data), sender} })

	for _, r := range []*transport.WSRoom{camera, agent, other} {
		if err := r.Connect(ctx); err != nil {
			t.Fatalf("connect %s: %v", r.Identity(), err)
		}
		defer r.Close()
	}
	waitForParticipants(t, hub, 3)

	stats := hub.Stats()
	if stats.Rooms != 2 {
		t.Errorf("expected 2 rooms, got %d", stats.Rooms)
	}

	if err := camera.PublishData(ctx, []byte(`{"type":"vision_update"}`), true); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case msg := <-agentInbox:
		if msg.sender != "camera" || msg.data != `{"type":"vision_update"}` {
			t.Errorf("unexpected message %+v", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not receive data")
	}

	select {
	case msg := <-otherInbox:
		t.Errorf("other rooms should not receive data, got %+v", msg)
	case msg := <-cameraInbox:
		t.Errorf("sender should not receive its own data, got %+v", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_RestampsSender(t *testing.T) {
	hub, server := newTestServer(t, nil)
	ctx := context.Background()

	agent := transport.NewWSRoom(transport.WSRoomConfig{URL: roomURL(server, "studio"), Identity: "agent"})
	inbox := make(chan inbound, 1)
	agent.OnData(func(data []byte, sender string) { inbox <- inbound{string(data), sender} })
	if err := agent.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer agent.Close()

	raw, _, err := websocket.DefaultDialer.Dial(roomURL(server, "studio")+"?identity=camera", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer raw.Close()
	waitForParticipants(t, hub, 2)

	spoofed, _ := transport.EncodePacket("agent", []byte("spoof"), true)
	if err := raw.WriteMessage(websocket.BinaryMessage, spoofed); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := raw.WriteMessage(websocket.BinaryMessage, []byte("not a packet")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case msg := <-inbox:
		if msg.sender != "camera" {
			t.Errorf("expected sender to be restamped to camera, got %q", msg.sender)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not receive data")
	}
}

func TestHub_LeaveRemovesEmptyRoom(t *testing.T) {
	hub, server := newTestServer(t, nil)

	room := transport.NewWSRoom(transport.WSRoomConfig{URL: roomURL(server, "studio"), Identity: "camera"})
	if err := room.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitForParticipants(t, hub, 1)

	room.Close()
	waitForParticipants(t, hub, 0)
	if hub.Stats().Rooms != 0 {
		t.Errorf("expected empty room to be removed, got %+v", hub.Stats())
	}
}

func TestHub_MissingIdentity(t *testing.T) {
	_, server := newTestServer(t, nil)

	_, resp, err := websocket.DefaultDialer.Dial(roomURL(server, "studio"), nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %v", resp)
	}
}

func TestHub_IdentityFromToken(t *testing.T) {
	tokens := transport.NewTokenSource("key", "secret-secret-secret-secret-secret", time.Hour)
	hub, server := newTestServer(t, tokens)

	token, err := tokens.Token("camera", "studio")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	agent := transport.NewWSRoom(transport.WSRoomConfig{URL: roomURL(server, "studio"), Identity: "agent"})
	inbox := make(chan inbound, 1)
	agent.OnData(func(data []byte, sender string) { inbox <- inbound{string(data), sender} })
	if err := agent.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer agent.Close()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	raw, _, err := websocket.DefaultDialer.Dial(roomURL(server, "studio"), header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer raw.Close()
	waitForParticipants(t, hub, 2)

	pkt, _ := transport.EncodePacket("", []byte("hi"), true)
	if err := raw.WriteMessage(websocket.BinaryMessage, pkt); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case msg := <-inbox:
		if msg.sender != "camera" {
			t.Errorf("expected identity from token, got %q", msg.sender)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("agent did not receive data")
	}
}

func TestHandler_IssueToken(t *testing.T) {
	tokens := transport.NewTokenSource("key", "secret-secret-secret-secret-secret", time.Hour)
	_, server := newTestServer(t, tokens)

	body, _ := json.Marshal(TokenRequest{Identity: "camera"})
	resp, err := http.Post(server.URL+"/v1/rooms/studio/token", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Room != "studio" || out.Identity != "camera" {
		t.Errorf("unexpected response %+v", out)
	}
	if id, err := transport.IdentityFromToken(out.Token); err != nil || id != "camera" {
		t.Errorf("token identity = %q (%v)", id, err)
	}
}

func TestHandler_IssueTokenRequiresIdentity(t *testing.T) {
	_, server := newTestServer(t, nil)

	resp, err := http.Post(server.URL+"/v1/rooms/studio/token", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}
