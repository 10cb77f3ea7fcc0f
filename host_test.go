package reflected_test

import (
	"sync"

	"github.com/miruken-go/reflected"
	"github.com/miruken-go/reflected/catalog"
	"github.com/miruken-go/reflected/internal/hostapp"
)

const (
	sessionType = "hostapp.Session"
	worldType   = "hostapp.World"
)

// Bindings into the sample host, declared the way a consumer would.
var (
	maxPlayers = reflected.StaticGetter[int](
		"maxPlayers", sessionType, "maxPlayers")
	setMaxPlayers = reflected.StaticSetter[int](
		"setMaxPlayers", sessionType, "maxPlayers")
	motd = reflected.StaticGetter[string](
		"motd", sessionType, "Motd", reflected.Property())
	setMotd = reflected.StaticSetter[string](
		"setMotd", sessionType, "Motd", reflected.Property())

	password = reflected.Getter[*hostapp.Session, string](
		"password", sessionType, "password")
	setPassword = reflected.Setter[*hostapp.Session, string](
		"setPassword", sessionType, "password")
	limit = reflected.Getter[any, int](
		"limit", sessionType, "limit")
	setLimit = reflected.Setter[*hostapp.Session, any](
		"setLimit", sessionType, "limit")
	name = reflected.Getter[*hostapp.Session, string](
		"name", sessionType, "Name", reflected.Property())
	setName = reflected.Setter[any, string](
		"setName", sessionType, "Name", reflected.Property())

	format = reflected.StaticInvoker[func(string) string](
		"format", sessionType, "format")
	formatCount = reflected.StaticInvoker[func(string, int) string](
		"formatCount", sessionType, "format",
		reflected.WithSignature(reflected.Types("", 0), nil))
	join = reflected.Invoker[func(*hostapp.Session, string) error](
		"join", sessionType, "Join")
	kick = reflected.Invoker[reflected.Call](
		"kick", sessionType, "Kick")
	describe = reflected.Invoker[func(hostapp.World, bool) string](
		"describe", worldType, "Describe")

	newSession = reflected.Constructor[func(string) *hostapp.Session](
		"newSession", sessionType, "newSession")
	newLimitedSession = reflected.Constructor[func(string, int) (*hostapp.Session, error)](
		"newLimitedSession", sessionType, "newLimitedSession")
	newWorld = reflected.Constructor[func(int64) (*hostapp.World, error)](
		"newWorld", worldType, "")

	sessionInfo = reflected.TypeInfo("sessionInfo", sessionType)
	limitInfo = reflected.MemberInfo(
		"limitInfo", sessionType, "limit", catalog.Field, false)

	sessionOpened = reflected.StaticEvent[func(*hostapp.Session)](
		"sessionOpened", sessionType, "sessionOpened")
	sessionClosed = reflected.StaticEvent[func(string)](
		"sessionClosed", sessionType, "sessionClosed")
	playerJoined = reflected.Event[*hostapp.Session, func(string)](
		"playerJoined", sessionType, "OnPlayerJoined")
	chat = reflected.Event[*hostapp.Session, func(string, string)](
		"chat", sessionType, "onChat")

	restart = reflected.StaticInvoker[func() error](
		"restart", sessionType, "restart", reflected.Optional())
)

// host collects every binding into the sample host.
var host = sync.OnceValue(func() *reflected.Table {
	return reflected.NewTable("host",
		maxPlayers, setMaxPlayers, motd, setMotd,
		password, setPassword, limit, setLimit, name, setName,
		format, formatCount, join, kick, describe,
		newSession, newLimitedSession, newWorld,
		sessionInfo, limitInfo,
		sessionOpened, sessionClosed, playerJoined, chat,
		restart)
})
