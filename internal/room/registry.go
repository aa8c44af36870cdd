package room

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/farkle/internal/game"
	"github.com/lox/farkle/internal/randutil"
)

// Session maps a connection to its room and seat. Maintained here, not on
// the connection object, so every intent resolves identity explicitly.
type Session struct {
	Code string
	Seat int
}

// Registry is the keyed store of live rooms plus the connection session
// table. It is injected into the gateway; there is no package-level state.
type Registry struct {
	rules  game.Rules
	seed   int64
	logger *log.Logger

	mu       sync.RWMutex
	rooms    map[string]*Room
	sessions map[string]Session
	created  int64
}

// NewRegistry creates an empty registry. The seed derives each room's dice
// sequence, so a fixed seed reproduces every game the server deals.
func NewRegistry(rules game.Rules, seed int64, logger *log.Logger) *Registry {
	return &Registry{
		rules:    rules,
		seed:     seed,
		logger:   logger.WithPrefix("registry"),
		rooms:    make(map[string]*Room),
		sessions: make(map[string]Session),
	}
}

// CreateRoom makes a room with a fresh unique code and seats the creator at
// seat 0.
func (reg *Registry) CreateRoom(name, connID string) (*Room, int, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, 0, err
	}

	reg.mu.Lock()
	var code string
	for {
		c, err := generateCode()
		if err != nil {
			reg.mu.Unlock()
			return nil, 0, fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := reg.rooms[c]; !exists {
			code = c
			break
		}
		reg.logger.Debug("room code collision, retrying", "code", c)
	}

	g := game.New(reg.rules, randutil.New(reg.seed+reg.created))
	reg.created++
	rm := newRoom(code, g, reg.logger)
	reg.rooms[code] = rm
	reg.mu.Unlock()

	seat, err := rm.join(name, connID)
	if err != nil {
		return nil, 0, err
	}
	reg.bindSession(connID, code, seat)

	reg.logger.Info("room created", "code", code, "name", name)
	return rm, seat, nil
}

// JoinRoom seats a player in an existing room, rebinding an offline seat
// when the name matches (reconnection path).
func (reg *Registry) JoinRoom(code, name, connID string) (*Room, int, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, 0, err
	}

	rm := reg.Get(code)
	if rm == nil {
		return nil, 0, ErrRoomNotFound
	}

	seat, err := rm.join(name, connID)
	if err != nil {
		return nil, 0, err
	}
	reg.bindSession(connID, rm.Code(), seat)
	return rm, seat, nil
}

// Get returns the live room for a code, or nil.
func (reg *Registry) Get(code string) *Room {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.rooms[strings.ToUpper(strings.TrimSpace(code))]
}

// Lookup resolves a connection to its room and seat.
func (reg *Registry) Lookup(connID string) (*Room, int, bool) {
	reg.mu.RLock()
	sess, ok := reg.sessions[connID]
	var rm *Room
	if ok {
		rm = reg.rooms[sess.Code]
	}
	reg.mu.RUnlock()

	if !ok || rm == nil {
		return nil, 0, false
	}
	return rm, sess.Seat, true
}

// Disconnect marks the connection's seat offline, preserving its name and
// score for reconnection. Returns the affected room so the caller can
// broadcast the presence change.
func (reg *Registry) Disconnect(connID string) (*Room, bool) {
	reg.mu.Lock()
	sess, ok := reg.sessions[connID]
	if !ok {
		reg.mu.Unlock()
		return nil, false
	}
	delete(reg.sessions, connID)
	rm := reg.rooms[sess.Code]
	reg.mu.Unlock()

	if rm == nil {
		return nil, false
	}
	rm.markOffline(sess.Seat)
	return rm, true
}

// RoomCount returns the number of live rooms.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

func (reg *Registry) bindSession(connID, code string, seat int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.sessions[connID] = Session{Code: code, Seat: seat}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > MaxNameLength {
		return "", ErrInvalidName
	}
	return name, nil
}
