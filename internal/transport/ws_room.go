package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 512 * 1024

	minReconnectBackoff = 500 * time.Millisecond
	maxReconnectBackoff = 30 * time.Second
)

type WSRoomConfig struct {
	// URL is the hub's room endpoint, e.g. ws://host:8080/v1/rooms/studio.
	URL      string
	Identity string
	Token    string
	Dialer   *websocket.Dialer
	Logger   *slog.Logger
}

// WSRoom joins a room hosted by the gateway hub over a WebSocket. Frames are
// binary LiveKit data packets. A dropped socket is redialed with exponential
// backoff until Close.
type WSRoom struct {
	roomState

	url      string
	identity string
	token    string
	dialer   *websocket.Dialer
	logger   *slog.Logger

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	connMu sync.Mutex
	conn   *websocket.Conn
}

func NewWSRoom(cfg WSRoomConfig) *WSRoom {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Dialer == nil {
		cfg.Dialer = websocket.DefaultDialer
	}
	return &WSRoom{
		roomState: newRoomState(),
		url:       cfg.URL,
		identity:  cfg.Identity,
		token:     cfg.Token,
		dialer:    cfg.Dialer,
		logger:    cfg.Logger.With("component", "ws-room", "identity", cfg.Identity),
	}
}

func (r *WSRoom) Identity() string {
	return r.identity
}

func (r *WSRoom) Connect(ctx context.Context) error {
	r.lifeMu.Lock()
	defer r.lifeMu.Unlock()

	if r.cancel != nil {
		return nil
	}

	r.setState(StateConnecting)
	conn, err := r.dial(ctx)
	if err != nil {
		r.setState(StateFailed)
		return err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.setConn(conn)
	r.setState(StateConnected)
	r.logger.Info("joined room", "url", r.url)

	go r.run(loopCtx, conn)
	return nil
}

func (r *WSRoom) PublishData(ctx context.Context, data []byte, reliable bool) error {
	if !r.Joined() {
		return ErrNotJoined
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pkt, err := EncodePacket(r.identity, data, reliable)
	if err != nil {
		return err
	}

	r.connMu.Lock()
	defer r.connMu.Unlock()
	if r.conn == nil {
		return ErrNotJoined
	}
	deadline := time.Now().Add(writeWait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = r.conn.SetWriteDeadline(deadline)
	if err := r.conn.WriteMessage(websocket.BinaryMessage, pkt); err != nil {
		return fmt.Errorf("write room data: %w", err)
	}
	return nil
}

func (r *WSRoom) Close() error {
	r.lifeMu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.lifeMu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()
	r.connMu.Lock()
	if r.conn != nil {
		_ = r.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = r.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = r.conn.Close()
	}
	r.connMu.Unlock()

	<-done
	r.setState(StateDisconnected)
	r.logger.Info("left room")
	return nil
}

func (r *WSRoom) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(r.url)
	if err != nil {
		return nil, fmt.Errorf("parse room url: %w", err)
	}
	q := u.Query()
	if r.identity != "" {
		q.Set("identity", r.identity)
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	if r.token != "" {
		header.Set("Authorization", "Bearer "+r.token)
	}

	conn, resp, err := r.dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial room: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial room: %w", err)
	}

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPingHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})
	return conn, nil
}

func (r *WSRoom) setConn(conn *websocket.Conn) {
	r.connMu.Lock()
	defer r.connMu.Unlock()
	r.conn = conn
}

func (r *WSRoom) run(ctx context.Context, conn *websocket.Conn) {
	defer close(r.done)

	for {
		r.readPump(ctx, conn)
		r.setConn(nil)
		_ = conn.Close()

		if ctx.Err() != nil {
			return
		}

		r.setState(StateReconnecting)
		next, ok := r.redial(ctx)
		if !ok {
			return
		}
		conn = next
		r.setConn(conn)
		if ctx.Err() != nil {
			r.setConn(nil)
			_ = conn.Close()
			return
		}
		r.setState(StateConnected)
		r.logger.Info("rejoined room")
	}
}

func (r *WSRoom) readPump(ctx context.Context, conn *websocket.Conn) {
	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.logger.Warn("room read error", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		payload, sender, err := DecodePacket(message)
		if err != nil {
			r.logger.Warn("dropping undecodable room packet", "error", err)
			continue
		}
		if sender == r.identity {
			continue
		}
		r.deliver(payload, sender)
	}
}

func (r *WSRoom) redial(ctx context.Context) (*websocket.Conn, bool) {
	backoff := minReconnectBackoff
	for {
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false
		case <-timer.C:
		}

		conn, err := r.dial(ctx)
		if err == nil {
			return conn, true
		}
		if ctx.Err() != nil {
			return nil, false
		}

		r.logger.Debug("room redial failed", "error", err, "backoff", backoff)
		backoff = min(backoff*2, maxReconnectBackoff)
	}
}
