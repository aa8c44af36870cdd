package game

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
	"strconv"
	"strings"

	"github.com/lox/farkle/internal/scoring"
)

var (
	ErrNotYourTurn      = errors.New("not your turn")
	ErrIllegalPhase     = errors.New("intent not allowed in current phase")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrNothingToBank    = errors.New("nothing to bank")
	ErrOpeningScore     = errors.New("turn points below opening score")
)

// Phase represents the turn state machine phase
type Phase string

const (
	// PhaseWaiting means fewer than two seats are occupied
	PhaseWaiting Phase = "waiting"
	// PhaseMustRoll means the active seat must roll (or bank accrued points)
	PhaseMustRoll Phase = "must_roll"
	// PhaseSelecting means the active seat must keep a scoring subset (or bank)
	PhaseSelecting Phase = "selecting"
	// PhaseGameOver is terminal until a new-game intent
	PhaseGameOver Phase = "game_over"
)

const (
	// NumDice is the number of dice on the board
	NumDice = 6
	// NumSeats is the number of player seats in a room
	NumSeats = 2

	maxLogEntries = 10
)

// Rules holds the configurable scoring thresholds for a game.
type Rules struct {
	// TargetScore is the banked score that ends the game
	TargetScore int
	// OpeningScore is the minimum turn total a seat with zero banked points
	// must reach before it may bank. Zero disables the rule.
	OpeningScore int
}

// DefaultRules returns the standard 10k game with no opening requirement.
func DefaultRules() Rules {
	return Rules{TargetScore: 10000}
}

// State is a value snapshot of a game, safe to hand to the transport layer.
// Dice entries are 0 before the first roll of a turn.
type State struct {
	Phase      Phase
	ActiveSeat int
	Dice       [NumDice]int
	Kept       [NumDice]bool
	TurnPoints int
	Scores     [NumSeats]int
	Winner     int // seat index, -1 when no winner yet
	LastAction string
	Log        []string
}

// Game is the turn engine for one room. Not safe for concurrent use; the
// owning room serialises access.
type Game struct {
	rules      Rules
	rollDie    func() int
	names      [NumSeats]string
	phase      Phase
	activeSeat int
	dice       [NumDice]int
	kept       [NumDice]bool
	turnPoints int
	scores     [NumSeats]int
	winner     int
	lastAction string
	log        []string
}

// New creates a game in the waiting phase.
func New(rules Rules, rng *rand.Rand) *Game {
	if rules.TargetScore <= 0 {
		rules.TargetScore = DefaultRules().TargetScore
	}
	return &Game{
		rules:   rules,
		rollDie: func() int { return rng.IntN(6) + 1 },
		phase:   PhaseWaiting,
		winner:  -1,
	}
}

// SetSeatName records a display name used in log lines.
func (g *Game) SetSeatName(seat int, name string) {
	if seat >= 0 && seat < NumSeats {
		g.names[seat] = name
	}
}

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// State returns a snapshot of the game for broadcasting.
func (g *Game) State() State {
	logCopy := make([]string, len(g.log))
	copy(logCopy, g.log)
	return State{
		Phase:      g.phase,
		ActiveSeat: g.activeSeat,
		Dice:       g.dice,
		Kept:       g.kept,
		TurnPoints: g.turnPoints,
		Scores:     g.scores,
		Winner:     g.winner,
		LastAction: g.lastAction,
		Log:        logCopy,
	}
}

// Start moves a waiting game to the first turn. Seat 0 always rolls first.
func (g *Game) Start() {
	if g.phase != PhaseWaiting {
		return
	}
	g.activeSeat = 0
	g.phase = PhaseMustRoll
	g.logf("%s to roll first", g.seatName(0))
}

// Roll re-rolls every unkept die for the active seat. A roll with no
// scoring option is a farkle: turn points are forfeited and the turn passes.
func (g *Game) Roll(seat int) error {
	if err := g.turnCheck(seat); err != nil {
		return err
	}
	if g.phase != PhaseMustRoll {
		return ErrIllegalPhase
	}

	var rolled []int
	for i := range g.dice {
		if !g.kept[i] {
			g.dice[i] = g.rollDie()
			rolled = append(rolled, g.dice[i])
		}
	}

	if !scoring.HasScoringOption(rolled) {
		g.logf("%s rolled %s - farkle! turn passes with %d points lost",
			g.seatName(seat), diceString(rolled), g.turnPoints)
		g.endTurn()
		return nil
	}

	g.phase = PhaseSelecting
	g.logf("%s rolled %s", g.seatName(seat), diceString(rolled))
	return nil
}

// Keep locks in the dice at the given board indices for this turn's score.
// The selection must consist entirely of scoring dice.
func (g *Game) Keep(seat int, indices []int) error {
	if err := g.turnCheck(seat); err != nil {
		return err
	}
	if g.phase != PhaseSelecting {
		return ErrIllegalPhase
	}
	if len(indices) == 0 {
		return ErrInvalidSelection
	}

	var seen [NumDice]bool
	faces := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= NumDice || seen[idx] || g.kept[idx] {
			return ErrInvalidSelection
		}
		seen[idx] = true
		faces = append(faces, g.dice[idx])
	}

	res := scoring.Score(faces, len(indices) == NumDice)
	if !res.Valid {
		return ErrInvalidSelection
	}

	for _, idx := range indices {
		g.kept[idx] = true
	}
	g.turnPoints += res.Points

	if g.allKept() {
		// Hot dice: the whole board scored, so the seat gets a fresh six
		// dice without losing turn points. The all-kept mask is never
		// observable from outside.
		g.kept = [NumDice]bool{}
		g.dice = [NumDice]int{}
		g.logf("%s kept %s for %d - hot dice! %d on the turn, roll again",
			g.seatName(seat), res.Breakdown, res.Points, g.turnPoints)
	} else {
		g.logf("%s kept %s for %d (%d on the turn)",
			g.seatName(seat), res.Breakdown, res.Points, g.turnPoints)
	}

	g.phase = PhaseMustRoll
	return nil
}

// Bank commits the turn points to the seat's score and passes the turn.
// Allowed whenever the active seat holds turn points, from either rolling
// phase. Reaching the target score ends the game.
func (g *Game) Bank(seat int) error {
	if err := g.turnCheck(seat); err != nil {
		return err
	}
	if g.turnPoints == 0 {
		return ErrNothingToBank
	}
	if g.scores[seat] == 0 && g.rules.OpeningScore > 0 && g.turnPoints < g.rules.OpeningScore {
		return ErrOpeningScore
	}

	g.scores[seat] += g.turnPoints
	banked := g.turnPoints

	if g.scores[seat] >= g.rules.TargetScore {
		g.clearTurn()
		g.winner = seat
		g.phase = PhaseGameOver
		g.logf("%s banked %d and wins with %d", g.seatName(seat), banked, g.scores[seat])
		return nil
	}

	g.logf("%s banked %d (total %d)", g.seatName(seat), banked, g.scores[seat])
	g.endTurn()
	return nil
}

// Forfeit ends the active seat's turn without banking, discarding any turn
// points. Used by the turn timer.
func (g *Game) Forfeit(seat int) error {
	if err := g.turnCheck(seat); err != nil {
		return err
	}
	g.logf("%s ran out of time - %d points lost", g.seatName(seat), g.turnPoints)
	g.endTurn()
	return nil
}

// Reset starts a new game after game over. Scores reset and seat 0 rolls
// first; with a vacant seat the game waits for it to fill.
func (g *Game) Reset(bothSeated bool) error {
	if g.phase != PhaseGameOver {
		return ErrIllegalPhase
	}
	g.scores = [NumSeats]int{}
	g.winner = -1
	g.clearTurn()
	g.activeSeat = 0
	if bothSeated {
		g.phase = PhaseMustRoll
		g.logf("new game - %s to roll first", g.seatName(0))
	} else {
		g.phase = PhaseWaiting
		g.logf("new game - waiting for a second player")
	}
	return nil
}

func (g *Game) turnCheck(seat int) error {
	switch g.phase {
	case PhaseWaiting, PhaseGameOver:
		return ErrIllegalPhase
	}
	if seat != g.activeSeat {
		return ErrNotYourTurn
	}
	return nil
}

func (g *Game) endTurn() {
	g.clearTurn()
	g.activeSeat = 1 - g.activeSeat
	g.phase = PhaseMustRoll
}

func (g *Game) clearTurn() {
	g.turnPoints = 0
	g.kept = [NumDice]bool{}
	g.dice = [NumDice]int{}
}

func (g *Game) allKept() bool {
	for _, k := range g.kept {
		if !k {
			return false
		}
	}
	return true
}

func (g *Game) seatName(seat int) string {
	if g.names[seat] != "" {
		return g.names[seat]
	}
	return fmt.Sprintf("seat %d", seat)
}

func (g *Game) logf(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	g.lastAction = entry
	g.log = append(g.log, entry)
	if len(g.log) > maxLogEntries {
		g.log = g.log[len(g.log)-maxLogEntries:]
	}
}

func diceString(faces []int) string {
	parts := make([]string, len(faces))
	for i, f := range faces {
		parts[i] = strconv.Itoa(f)
	}
	return strings.Join(parts, " ")
}
