package hostapp

import (
	"sync"

	"github.com/miruken-go/reflected/catalog"
)

var (
	module     *catalog.Module
	moduleOnce sync.Once
)

// Module returns the catalog of the host types.
func Module() *catalog.Module {
	moduleOnce.Do(func() {
		session := catalog.TypeOf[Session]().
			StaticField("maxPlayers", &maxPlayers).
			StaticProperty("Motd", getMotd, setMotd).
			StaticMethod("format", format).
			StaticMethod("format", formatCount).
			Constructor(newSession).
			Constructor(newLimitedSession).
			StaticEvent("sessionOpened", &sessionOpened).
			StaticEvent("sessionClosed", &sessionClosed)
		world := catalog.TypeOf[World]().
			Constructor(newWorld)
		module = catalog.NewModule("hostapp", session, world)
	})
	return module
}

// MaxPlayers reads the player limit new sessions start with.
func MaxPlayers() int {
	return maxPlayers
}

// Motd returns the message of the day.
func Motd() string {
	return motd
}

// Reset restores the package state changed by tests.
func Reset() {
	maxPlayers, motd = 42, "welcome"
	sessionOpened, sessionClosed = nil, nil
}

// OpenSessionHandlers returns the number of sessionOpened handlers.
func OpenSessionHandlers() int {
	return len(sessionOpened)
}

// OnSessionOpened adds a sessionOpened handler the way the host would.
func OnSessionOpened(h func(*Session)) {
	sessionOpened = append(sessionOpened, h)
}

// OnSessionClosed sets the sessionClosed handler the way the host would.
func OnSessionClosed(h func(string)) {
	sessionClosed = h
}

// NewSession creates a session with the default limit.
func NewSession(name string) *Session {
	return newSession(name)
}

// Password exposes the session password for verification.
func (s *Session) Password() string {
	return s.password
}

// ChatHandlers returns the number of chat handlers.
func (s *Session) ChatHandlers() int {
	return len(s.onChat)
}

// OnChat adds a chat handler the way the host would.
func (s *Session) OnChat(h func(author, text string)) {
	s.onChat = append(s.onChat, h)
}
