package server

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/farkle/internal/room"
)

// ErrNotInRoom is returned for turn intents from a connection that has not
// created or joined a room.
var ErrNotInRoom = errors.New("not in a room")

// Broadcaster delivers a message to every connection in a room. Implemented
// by Server; narrowed to an interface so the service can be tested without
// sockets.
type Broadcaster interface {
	BroadcastToRoom(code string, msg *Message)
}

// GameService routes validated intents from connections to rooms and
// broadcasts the resulting snapshots. Rejected intents produce an error for
// the caller only and no broadcast, so the other seat never sees a flicker.
type GameService struct {
	registry    *room.Registry
	broadcaster Broadcaster
	clock       quartz.Clock
	turnTimeout time.Duration
	logger      *log.Logger

	mu     sync.Mutex
	timers map[string]*quartz.Timer
	gens   map[string]uint64
}

// NewGameService creates a game service. A zero turnTimeout disables turn
// timers entirely.
func NewGameService(registry *room.Registry, broadcaster Broadcaster, clock quartz.Clock, turnTimeout time.Duration, logger *log.Logger) *GameService {
	return &GameService{
		registry:    registry,
		broadcaster: broadcaster,
		clock:       clock,
		turnTimeout: turnTimeout,
		logger:      logger.WithPrefix("game-service"),
		timers:      make(map[string]*quartz.Timer),
		gens:        make(map[string]uint64),
	}
}

// CreateRoom creates a room with the caller in seat 0 and returns the
// snapshot for the caller's ack.
func (s *GameService) CreateRoom(connID, name string) (room.Snapshot, int, error) {
	rm, seat, err := s.registry.CreateRoom(name, connID)
	if err != nil {
		return room.Snapshot{}, 0, err
	}
	s.broadcastRoom(rm)
	return rm.Snapshot(), seat, nil
}

// JoinRoom seats the caller in an existing room, rebinding an offline seat
// on a name match.
func (s *GameService) JoinRoom(connID, code, name string) (room.Snapshot, int, error) {
	rm, seat, err := s.registry.JoinRoom(code, name, connID)
	if err != nil {
		return room.Snapshot{}, 0, err
	}
	s.broadcastRoom(rm)
	return rm.Snapshot(), seat, nil
}

// Roll applies a roll intent for the calling connection.
func (s *GameService) Roll(connID string) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	if err := rm.Roll(seat); err != nil {
		return err
	}
	s.broadcastRoom(rm)
	return nil
}

// Keep applies a keep intent for the calling connection.
func (s *GameService) Keep(connID string, indices []int) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	if err := rm.Keep(seat, indices); err != nil {
		return err
	}
	s.broadcastRoom(rm)
	return nil
}

// Bank applies a bank intent for the calling connection.
func (s *GameService) Bank(connID string) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	if err := rm.Bank(seat); err != nil {
		return err
	}
	s.broadcastRoom(rm)
	return nil
}

// NewGame resets a finished game in the caller's room.
func (s *GameService) NewGame(connID string) error {
	rm, seat, err := s.resolve(connID)
	if err != nil {
		return err
	}
	if err := rm.NewGame(seat); err != nil {
		return err
	}
	s.broadcastRoom(rm)
	return nil
}

// Disconnect marks the connection's seat offline and tells the remaining
// seat about it. Game state is untouched so play can resume on reconnect.
func (s *GameService) Disconnect(connID string) {
	rm, ok := s.registry.Disconnect(connID)
	if !ok {
		return
	}
	s.logger.Info("connection left room", "room", rm.Code())
	s.broadcastRoom(rm)
}

func (s *GameService) resolve(connID string) (*room.Room, int, error) {
	rm, seat, ok := s.registry.Lookup(connID)
	if !ok {
		return nil, 0, ErrNotInRoom
	}
	return rm, seat, nil
}

// broadcastRoom sends the room's current snapshot to all seats and rearms
// the room's turn timer.
func (s *GameService) broadcastRoom(rm *room.Room) {
	snap := rm.Snapshot()
	msg, err := NewMessage(MessageTypeRoomUpdate, RoomUpdateFromSnapshot(snap))
	if err != nil {
		s.logger.Error("failed to encode room update", "error", err, "room", rm.Code())
		return
	}
	s.broadcaster.BroadcastToRoom(rm.Code(), msg)
	s.armTurnTimer(rm)
}

// armTurnTimer (re)starts the forfeit timer for the room's current turn.
// Each arm bumps a generation counter so a fire from a superseded turn is
// dropped instead of forfeiting the wrong seat.
func (s *GameService) armTurnTimer(rm *room.Room) {
	if s.turnTimeout <= 0 {
		return
	}

	code := rm.Code()
	_, running := rm.ActiveSeat()

	s.mu.Lock()
	defer s.mu.Unlock()

	if t := s.timers[code]; t != nil {
		t.Stop()
		delete(s.timers, code)
	}
	s.gens[code]++
	if !running {
		return
	}

	gen := s.gens[code]
	s.timers[code] = s.clock.AfterFunc(s.turnTimeout, func() {
		s.onTurnTimeout(code, gen)
	})
}

func (s *GameService) onTurnTimeout(code string, gen uint64) {
	s.mu.Lock()
	if s.gens[code] != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, code)
	s.mu.Unlock()

	rm := s.registry.Get(code)
	if rm == nil {
		return
	}
	seat, running := rm.ActiveSeat()
	if !running {
		return
	}
	if err := rm.Forfeit(seat); err != nil {
		s.logger.Debug("turn timeout raced with intent", "room", code, "error", err)
		return
	}
	s.logger.Info("turn timed out", "room", code, "seat", seat)
	s.broadcastRoom(rm)
}
