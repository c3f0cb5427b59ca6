package transport

import (
	"context"
	"errors"
	"sync"
)

var (
	ErrNotJoined = errors.New("room not joined")
	ErrClosed    = errors.New("room closed")
)

type State string

const (
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
	StateReconnecting State = "reconnecting"
	StateFailed       State = "failed"
)

type DataHandler func(data []byte, sender string)

type StateHandler func(State)

// Room is a joined data session shared with other participants.
type Room interface {
	Connect(ctx context.Context) error
	PublishData(ctx context.Context, data []byte, reliable bool) error
	Joined() bool
	State() State
	Identity() string
	OnData(h DataHandler)
	OnStateChange(h StateHandler)
	Close() error
}

// roomState holds the connection state and handlers shared by every Room
// implementation. Handlers run outside the lock.
type roomState struct {
	mu      sync.RWMutex
	state   State
	onData  []DataHandler
	onState []StateHandler
}

func newRoomState() roomState {
	return roomState{state: StateDisconnected}
}

func (s *roomState) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *roomState) Joined() bool {
	return s.State() == StateConnected
}

func (s *roomState) OnData(h DataHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onData = append(s.onData, h)
}

func (s *roomState) OnStateChange(h StateHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onState = append(s.onState, h)
}

func (s *roomState) setState(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	handlers := append([]StateHandler(nil), s.onState...)
	s.mu.Unlock()

	for _, h := range handlers {
		h(next)
	}
}

func (s *roomState) deliver(data []byte, sender string) {
	s.mu.RLock()
	handlers := append([]DataHandler(nil), s.onData...)
	s.mu.RUnlock()

	for _, h := range handlers {
		h(data, sender)
	}
}
