// Package hostapp is a small host type system bound to by tests.
// Most of what it declares is deliberately unexported.
package hostapp

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

type (
	// Session is a multiplayer game session.
	Session struct {
		OnPlayerJoined func(name string)

		name     string
		players  []string
		limit    int
		password string
		onChat   []func(author, text string)
		lock     sync.Mutex
	}

	// World is the persistent state a Session plays in.
	World struct {
		Seed int64
		size int
	}
)

var (
	maxPlayers = 42
	motd       = "welcome"

	sessionOpened []func(*Session)
	sessionClosed func(name string)
)

// ErrSessionFull is returned when joining a full session.
var ErrSessionFull = errors.New("hostapp: session is full")

func newSession(name string) *Session {
	return &Session{name: name, limit: maxPlayers}
}

func newLimitedSession(name string, limit int) (*Session, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("hostapp: invalid limit %d", limit)
	}
	s := &Session{name: name, limit: limit}
	for _, opened := range sessionOpened {
		opened(s)
	}
	return s, nil
}

func newWorld(seed int64) World {
	return World{Seed: seed, size: 1024}
}

func (s *Session) Name() string {
	return s.name
}

func (s *Session) SetName(name string) {
	s.name = name
}

func (s *Session) Players() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]string(nil), s.players...)
}

// Limit returns the maximum number of players.
func (s *Session) Limit() int {
	return s.limit
}

func (s *Session) Join(name string) error {
	s.lock.Lock()
	if len(s.players) >= s.limit {
		s.lock.Unlock()
		return ErrSessionFull
	}
	s.players = append(s.players, name)
	s.lock.Unlock()
	if joined := s.OnPlayerJoined; joined != nil {
		joined(name)
	}
	return nil
}

func (s *Session) Kick(name string, reason ...string) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	for i, p := range s.players {
		if p == name {
			s.players = append(s.players[:i], s.players[i+1:]...)
			return true
		}
	}
	return false
}

// Chat delivers text to every chat handler.
func (s *Session) Chat(author, text string) {
	for _, h := range s.onChat {
		h(author, text)
	}
}

// Close ends the session.
func (s *Session) Close() {
	if closed := sessionClosed; closed != nil {
		closed(s.name)
	}
}

func (w World) Size() int {
	return w.size
}

func (w World) Describe(verbose bool) string {
	if verbose {
		return fmt.Sprintf("world %d (%d)", w.Seed, w.size)
	}
	return fmt.Sprintf("world %d", w.Seed)
}

func format(name string) string {
	return strings.ToUpper(name)
}

func formatCount(name string, count int) string {
	return fmt.Sprintf("%v x%d", strings.ToUpper(name), count)
}

func getMotd() string {
	return motd
}

func setMotd(text string) {
	motd = text
}
