// Package room owns room lifecycle and the two-seat identity model: rooms
// keyed by short human-typeable codes, seats claimed by display name, and
// reconnection that rebinds a new connection to an offline seat holding the
// same name. Each room serialises all game mutation behind its own mutex;
// rooms are fully independent of each other.
package room

import (
	"errors"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/farkle/internal/game"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNameTaken    = errors.New("name already in use in this room")
	ErrInvalidName  = errors.New("invalid display name")
)

// MaxNameLength is the longest accepted display name after trimming.
const MaxNameLength = 20

// Seat is one of the two fixed player slots in a room. A seat stays claimed
// by its display name across disconnects; only the connection binding is
// cleared.
type Seat struct {
	Name   string
	ConnID string
}

// Occupied reports whether the seat has been claimed by a name.
func (s Seat) Occupied() bool { return s.Name != "" }

// Online reports whether a live connection is bound to the seat.
func (s Seat) Online() bool { return s.ConnID != "" }

// SeatInfo is the broadcast-safe view of a seat. Connection identifiers are
// deliberately absent.
type SeatInfo struct {
	Name   string
	Score  int
	Online bool
}

// Snapshot is the full room state handed to the transport for broadcasting.
type Snapshot struct {
	Code  string
	Seats [game.NumSeats]SeatInfo
	Game  game.State
}

// Room binds two seats to one game. All exported methods take the room lock,
// so intents for the same room never interleave.
type Room struct {
	code   string
	logger *log.Logger

	mu    sync.Mutex
	seats [game.NumSeats]Seat
	game  *game.Game
}

func newRoom(code string, g *game.Game, logger *log.Logger) *Room {
	return &Room{
		code:   code,
		game:   g,
		logger: logger.WithPrefix("room").With("code", code),
	}
}

// Code returns the room's join code.
func (r *Room) Code() string { return r.code }

// join claims a free seat for name, or rebinds an offline seat already
// holding the name (case-insensitive). A collision with an online seat is
// rejected rather than silently rebinding.
func (r *Room) join(name, connID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.seats {
		if s.Occupied() && strings.EqualFold(s.Name, name) {
			if s.Online() {
				return 0, ErrNameTaken
			}
			r.seats[i].ConnID = connID
			r.logger.Info("seat rebound", "seat", i, "name", s.Name)
			return i, nil
		}
	}

	for i, s := range r.seats {
		if !s.Occupied() {
			r.seats[i] = Seat{Name: name, ConnID: connID}
			r.game.SetSeatName(i, name)
			r.logger.Info("seat claimed", "seat", i, "name", name)
			if r.bothSeatedLocked() {
				r.game.Start()
			}
			return i, nil
		}
	}

	return 0, ErrRoomFull
}

// markOffline clears the seat's connection binding, keeping name and score.
func (r *Room) markOffline(seat int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seat >= 0 && seat < game.NumSeats {
		r.seats[seat].ConnID = ""
		r.logger.Info("seat offline", "seat", seat, "name", r.seats[seat].Name)
	}
}

// Roll applies a roll intent for the seat.
func (r *Room) Roll(seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Roll(seat)
}

// Keep applies a keep intent for the seat.
func (r *Room) Keep(seat int, indices []int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Keep(seat, indices)
}

// Bank applies a bank intent for the seat.
func (r *Room) Bank(seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Bank(seat)
}

// Forfeit ends the seat's turn without banking. Used by the turn timer.
func (r *Room) Forfeit(seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Forfeit(seat)
}

// NewGame resets a finished game. Either seat may request it.
func (r *Room) NewGame(seat int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.Reset(r.bothSeatedLocked())
}

// ActiveSeat returns the seat whose turn it is and whether the game is in a
// phase where a turn is running at all.
func (r *Room) ActiveSeat() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.game.State()
	running := st.Phase == game.PhaseMustRoll || st.Phase == game.PhaseSelecting
	return st.ActiveSeat, running
}

// Snapshot returns the broadcastable room state.
func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.game.State()
	var snap Snapshot
	snap.Code = r.code
	snap.Game = st
	for i, s := range r.seats {
		snap.Seats[i] = SeatInfo{
			Name:   s.Name,
			Score:  st.Scores[i],
			Online: s.Online(),
		}
	}
	return snap
}

func (r *Room) bothSeatedLocked() bool {
	for _, s := range r.seats {
		if !s.Occupied() {
			return false
		}
	}
	return true
}
