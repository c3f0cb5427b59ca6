package gateway

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/auteur/internal/shared"
	"github.com/eleven-am/auteur/internal/transport"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub hosts data rooms over WebSocket. Every binary frame a participant sends
// is restamped with that participant's identity and fanned out to the other
// participants of the same room.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*participant]struct{}
}

type HubStats struct {
	Rooms        int `json:"rooms"`
	Participants int `json:"participants"`
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "room-hub"),
		rooms:  make(map[string]map[*participant]struct{}),
	}
}

// @Summary      Join a room
// @Description  Upgrades to a WebSocket carrying binary LiveKit data packets
// @Tags         rooms
// @Param        room      path   string  true   "Room name"
// @Param        identity  query  string  false  "Participant identity when no bearer token is sent"
// @Success      101  "Switching Protocols"
// @Failure      400  {object}  shared.APIError
// @Router       /v1/rooms/{room} [get]
func (h *Hub) HandleConnection(c echo.Context) error {
	room := c.Param("room")
	if room == "" {
		return shared.BadRequest("missing_room", "room is required")
	}

	identity := identityFromRequest(c)
	if identity == "" {
		return shared.BadRequest("missing_identity", "identity is required")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}

	p := &participant{
		ws:       ws,
		room:     room,
		identity: identity,
		send:     make(chan []byte, sendBufferSize),
		done:     make(chan struct{}),
		logger:   h.logger.With("room", room, "identity", identity),
	}
	h.join(p)

	go p.writePump()
	p.readPump(h)
	return nil
}

func identityFromRequest(c echo.Context) string {
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if id, err := transport.IdentityFromToken(strings.TrimPrefix(auth, "Bearer ")); err == nil && id != "" {
			return id
		}
	}
	return c.QueryParam("identity")
}

func (h *Hub) join(p *participant) {
	h.mu.Lock()
	members, ok := h.rooms[p.room]
	if !ok {
		members = make(map[*participant]struct{})
		h.rooms[p.room] = members
	}
	members[p] = struct{}{}
	count := len(members)
	h.mu.Unlock()

	p.logger.Info("participant joined", "participants", count)
}

func (h *Hub) leave(p *participant) {
	h.mu.Lock()
	members := h.rooms[p.room]
	delete(members, p)
	if len(members) == 0 {
		delete(h.rooms, p.room)
	}
	h.mu.Unlock()

	p.logger.Info("participant left")
}

func (h *Hub) broadcast(from *participant, pkt []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for p := range h.rooms[from.room] {
		if p == from {
			continue
		}
		p.enqueue(pkt)
	}
}

func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := HubStats{Rooms: len(h.rooms)}
	for _, members := range h.rooms {
		stats.Participants += len(members)
	}
	return stats
}

type participant struct {
	ws       *websocket.Conn
	room     string
	identity string
	send     chan []byte
	logger   *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
}

func (p *participant) enqueue(pkt []byte) {
	select {
	case <-p.done:
	case p.send <- pkt:
	default:
		p.logger.Warn("send buffer full, dropping packet")
	}
}

func (p *participant) close() {
	p.closeOnce.Do(func() {
		close(p.done)
		_ = p.ws.Close()
	})
}

func (p *participant) readPump(h *Hub) {
	defer func() {
		h.leave(p)
		p.close()
	}()

	p.ws.SetReadLimit(maxMessageSize)
	_ = p.ws.SetReadDeadline(time.Now().Add(pongWait))
	p.ws.SetPongHandler(func(string) error {
		return p.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, message, err := p.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.logger.Warn("read error", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		_ = p.ws.SetReadDeadline(time.Now().Add(pongWait))

		pkt, err := transport.Restamp(message, p.identity)
		if err != nil {
			p.logger.Warn("dropping invalid packet", "error", err)
			continue
		}
		h.broadcast(p, pkt)
	}
}

func (p *participant) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.close()
	}()

	for {
		select {
		case <-p.done:
			return
		case pkt := <-p.send:
			_ = p.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.ws.WriteMessage(websocket.BinaryMessage, pkt); err != nil {
				p.logger.Warn("write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = p.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
