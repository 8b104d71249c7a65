package auth

import (
	"sync"

	"github.com/google/uuid"
)

type SessionPhase string

const (
	PhaseUnauthenticated SessionPhase = "unauthenticated"
	PhaseAuthenticating  SessionPhase = "authenticating"
	PhaseAuthenticated   SessionPhase = "authenticated"
)

type SessionState struct {
	Phase  SessionPhase
	UserID uuid.UUID
}

// SessionEvents is the process-wide session state stream. One instance is
// constructed at startup and handed to every consumer; the auth service
// publishes a state on each sign-in/sign-out transition.
//
// Subscriber channels are buffered to one element and delivery is
// latest-wins: a slow consumer never blocks the publisher and never sees a
// state older than the one it missed. After Unsubscribe or Close no further
// states are delivered.
type SessionEvents struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan SessionState
	closed bool
	last   SessionState
	loaded bool
}

func NewSessionEvents() *SessionEvents {
	return &SessionEvents{
		subs: make(map[int]chan SessionState),
		last: SessionState{Phase: PhaseUnauthenticated},
	}
}

// Subscribe registers a consumer. The channel is primed with the current
// state so late subscribers do not wait for the next transition.
func (e *SessionEvents) Subscribe() (int, <-chan SessionState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ch := make(chan SessionState, 1)
	if e.closed {
		close(ch)
		return 0, ch
	}

	e.nextID++
	id := e.nextID
	e.subs[id] = ch
	ch <- e.last
	return id, ch
}

func (e *SessionEvents) Unsubscribe(id int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ch, ok := e.subs[id]; ok {
		delete(e.subs, id)
		close(ch)
	}
}

// Publish records the state and fans it out. Publishing after Close is a
// no-op; a torn-down stream must not receive late updates.
func (e *SessionEvents) Publish(state SessionState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}

	e.last = state
	e.loaded = true

	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
}

// Current returns the last published state and whether any state has been
// published since startup.
func (e *SessionEvents) Current() (SessionState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last, e.loaded
}

func (e *SessionEvents) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.closed = true
	for id, ch := range e.subs {
		delete(e.subs, id)
		close(ch)
	}
}
