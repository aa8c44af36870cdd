package game

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lox/farkle/internal/randutil"
	"github.com/lox/farkle/internal/scoring"
)

// scriptRolls makes the game deal the given faces in order, then fall back
// to a seeded RNG if the script runs out.
func scriptRolls(g *Game, faces ...int) {
	rng := randutil.New(99)
	i := 0
	g.rollDie = func() int {
		if i < len(faces) {
			f := faces[i]
			i++
			return f
		}
		return rng.IntN(6) + 1
	}
}

func newStartedGame(t *testing.T) *Game {
	t.Helper()
	g := New(DefaultRules(), randutil.New(42))
	g.SetSeatName(0, "Ann")
	g.SetSeatName(1, "Bea")
	g.Start()
	return g
}

func TestStartActivatesSeatZero(t *testing.T) {
	g := New(DefaultRules(), randutil.New(42))
	if g.Phase() != PhaseWaiting {
		t.Fatalf("new game should wait, got %v", g.Phase())
	}
	g.Start()
	if g.Phase() != PhaseMustRoll {
		t.Fatalf("started game phase = %v, want must_roll", g.Phase())
	}
	if g.activeSeat != 0 {
		t.Fatalf("seat 0 must roll first, got %d", g.activeSeat)
	}
}

func TestRollTransitionsToSelecting(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6)

	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Phase() != PhaseSelecting {
		t.Fatalf("phase = %v, want selecting", g.Phase())
	}
	if g.dice != [NumDice]int{1, 5, 2, 2, 2, 6} {
		t.Fatalf("dice = %v", g.dice)
	}
}

func TestRollFarklePassesTurn(t *testing.T) {
	g := newStartedGame(t)
	g.turnPoints = 300 // pretend an earlier keep happened this turn
	scriptRolls(g, 2, 3, 4, 6, 6, 3)

	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Phase() != PhaseMustRoll {
		t.Fatalf("phase = %v, want must_roll for next seat", g.Phase())
	}
	if g.activeSeat != 1 {
		t.Fatalf("turn should pass to seat 1, got %d", g.activeSeat)
	}
	if g.turnPoints != 0 {
		t.Fatalf("turn points should be forfeited, got %d", g.turnPoints)
	}
	if g.scores != [NumSeats]int{} {
		t.Fatalf("farkle must not touch scores, got %v", g.scores)
	}
	if g.dice != [NumDice]int{} || g.kept != [NumDice]bool{} {
		t.Fatalf("board should be cleared after farkle")
	}
}

func TestRollRejectedWhileSelecting(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Roll(0); !errors.Is(err, ErrIllegalPhase) {
		t.Fatalf("want ErrIllegalPhase, got %v", err)
	}
}

func TestKeepAccumulatesTurnPoints(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Triple twos plus the single one: 200 + 100.
	if err := g.Keep(0, []int{2, 3, 4, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.turnPoints != 300 {
		t.Fatalf("turn points = %d, want 300", g.turnPoints)
	}
	if g.Phase() != PhaseMustRoll {
		t.Fatalf("phase = %v, want must_roll", g.Phase())
	}
	want := [NumDice]bool{true, false, true, true, true, false}
	if g.kept != want {
		t.Fatalf("kept = %v, want %v", g.kept, want)
	}
}

func TestKeepRejectsBadSelections(t *testing.T) {
	cases := []struct {
		name    string
		indices []int
	}{
		{"empty", nil},
		{"out of range", []int{6}},
		{"negative", []int{-1}},
		{"duplicate", []int{0, 0}},
		{"non-scoring die", []int{2, 3, 4, 5}}, // triple twos plus the six
		{"lone junk die", []int{5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newStartedGame(t)
			scriptRolls(g, 1, 5, 2, 2, 2, 6)
			if err := g.Roll(0); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			before := g.State()
			if err := g.Keep(0, tc.indices); !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("want ErrInvalidSelection, got %v", err)
			}
			if !reflect.DeepEqual(before, g.State()) {
				t.Fatalf("rejected keep mutated state")
			}
		})
	}
}

func TestKeepRejectsAlreadyKeptDie(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6, /* second roll: */ 1, 6)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{2, 3, 4, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{2}); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("keeping a locked die: want ErrInvalidSelection, got %v", err)
	}
}

func TestHotDiceResetsBoardKeepsPoints(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 1, 1, 5, 5, 5)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{0, 1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.turnPoints != 2500 {
		t.Fatalf("turn points = %d, want 2500 for two triplets", g.turnPoints)
	}
	if g.kept != [NumDice]bool{} {
		t.Fatalf("hot dice must reset the kept mask, got %v", g.kept)
	}
	if g.dice != [NumDice]int{} {
		t.Fatalf("hot dice must clear the board, got %v", g.dice)
	}
	if g.Phase() != PhaseMustRoll {
		t.Fatalf("phase = %v, want must_roll", g.Phase())
	}
	// A keep cannot follow hot dice without rolling again.
	if err := g.Keep(0, []int{0}); !errors.Is(err, ErrIllegalPhase) {
		t.Fatalf("want ErrIllegalPhase, got %v", err)
	}
}

func TestHotDiceAcrossMultipleKeeps(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6, /* re-roll of dice 1 and 5: */ 1, 1)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{0, 2, 3, 4}); err != nil { // 1 + triple twos = 300
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{1, 5}); err != nil { // the two fresh ones
		t.Fatalf("unexpected error: %v", err)
	}
	if g.turnPoints != 500 {
		t.Fatalf("turn points = %d, want 500", g.turnPoints)
	}
	if g.kept != [NumDice]bool{} || g.dice != [NumDice]int{} {
		t.Fatalf("all six kept across keeps must trigger hot dice reset")
	}
}

func TestBankCommitsAndPassesTurn(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{2, 3, 4, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Bank(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.scores[0] != 300 {
		t.Fatalf("score = %d, want 300", g.scores[0])
	}
	if g.turnPoints != 0 || g.activeSeat != 1 || g.Phase() != PhaseMustRoll {
		t.Fatalf("bank should reset the turn and pass it: %+v", g.State())
	}
}

func TestBankFromSelectingPhase(t *testing.T) {
	// Permissive banking: allowed whenever turn points exist, even with a
	// live roll on the board.
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6, /* re-roll: */ 1, 5)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{2, 3, 4, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Phase() != PhaseSelecting {
		t.Fatalf("phase = %v, want selecting", g.Phase())
	}
	if err := g.Bank(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.scores[0] != 300 {
		t.Fatalf("score = %d, want 300", g.scores[0])
	}
}

func TestBankWithNothingToBank(t *testing.T) {
	g := newStartedGame(t)
	if err := g.Bank(0); !errors.Is(err, ErrNothingToBank) {
		t.Fatalf("want ErrNothingToBank, got %v", err)
	}
}

func TestOpeningScoreRule(t *testing.T) {
	g := New(Rules{TargetScore: 10000, OpeningScore: 500}, randutil.New(42))
	g.Start()
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{2, 3, 4, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Bank(0); !errors.Is(err, ErrOpeningScore) {
		t.Fatalf("300 < opening 500: want ErrOpeningScore, got %v", err)
	}
	// The rejection must not end the turn.
	if g.activeSeat != 0 || g.turnPoints != 300 {
		t.Fatalf("rejected bank mutated turn state")
	}
}

func TestBankToTargetEndsGame(t *testing.T) {
	g := newStartedGame(t)
	g.scores[0] = 9800
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Keep(0, []int{2, 3, 4, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.Bank(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if g.Phase() != PhaseGameOver {
		t.Fatalf("phase = %v, want game_over", g.Phase())
	}
	if g.winner != 0 {
		t.Fatalf("winner = %d, want 0", g.winner)
	}

	// All turn intents are frozen after game over.
	if err := g.Roll(0); !errors.Is(err, ErrIllegalPhase) {
		t.Fatalf("want ErrIllegalPhase, got %v", err)
	}
	if err := g.Bank(1); !errors.Is(err, ErrIllegalPhase) {
		t.Fatalf("want ErrIllegalPhase, got %v", err)
	}
}

func TestResetAfterGameOver(t *testing.T) {
	g := newStartedGame(t)
	g.scores[0] = 9800
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	_ = g.Roll(0)
	_ = g.Keep(0, []int{2, 3, 4, 0})
	_ = g.Bank(0)

	if err := g.Reset(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.scores != [NumSeats]int{} || g.winner != -1 {
		t.Fatalf("reset should zero scores and winner")
	}
	if g.Phase() != PhaseMustRoll || g.activeSeat != 0 {
		t.Fatalf("reset with both seats should restart at seat 0")
	}
}

func TestResetRejectedMidGame(t *testing.T) {
	g := newStartedGame(t)
	if err := g.Reset(true); !errors.Is(err, ErrIllegalPhase) {
		t.Fatalf("want ErrIllegalPhase, got %v", err)
	}
}

func TestIntentsFromInactiveSeatLeaveStateUntouched(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	if err := g.Roll(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := g.State()

	if err := g.Roll(1); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("want ErrNotYourTurn, got %v", err)
	}
	if err := g.Keep(1, []int{0}); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("want ErrNotYourTurn, got %v", err)
	}
	if err := g.Bank(1); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("want ErrNotYourTurn, got %v", err)
	}

	if !reflect.DeepEqual(before, g.State()) {
		t.Fatalf("rejected intents mutated state")
	}
}

func TestForfeitDiscardsTurn(t *testing.T) {
	g := newStartedGame(t)
	scriptRolls(g, 1, 5, 2, 2, 2, 6)
	_ = g.Roll(0)
	_ = g.Keep(0, []int{2, 3, 4, 0})

	if err := g.Forfeit(0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.scores[0] != 0 || g.turnPoints != 0 || g.activeSeat != 1 {
		t.Fatalf("forfeit should discard the turn: %+v", g.State())
	}
}

func TestSeededGamePlaysToCompletion(t *testing.T) {
	// Smoke test with real randomness: greedily keep everything scorable,
	// bank at 300+, and make sure a seeded game terminates legally.
	g := New(DefaultRules(), randutil.New(7))
	g.SetSeatName(0, "Ann")
	g.SetSeatName(1, "Bea")
	g.Start()

	for turns := 0; g.Phase() != PhaseGameOver; turns++ {
		if turns > 100000 {
			t.Fatalf("game did not terminate")
		}
		seat := g.activeSeat
		switch g.Phase() {
		case PhaseMustRoll:
			if g.turnPoints >= 300 {
				if err := g.Bank(seat); err != nil {
					t.Fatalf("bank: %v", err)
				}
				continue
			}
			if err := g.Roll(seat); err != nil {
				t.Fatalf("roll: %v", err)
			}
		case PhaseSelecting:
			indices := bestSelection(g)
			if len(indices) == 0 {
				t.Fatalf("selecting phase with no legal selection: %v", g.dice)
			}
			if err := g.Keep(seat, indices); err != nil {
				t.Fatalf("keep %v of %v: %v", indices, g.dice, err)
			}
		}
	}

	if g.winner < 0 || g.scores[g.winner] < g.rules.TargetScore {
		t.Fatalf("winner %d with scores %v", g.winner, g.scores)
	}
}

// bestSelection picks the highest-scoring valid subset of the unkept dice.
func bestSelection(g *Game) []int {
	var unkept []int
	for i := range g.dice {
		if !g.kept[i] {
			unkept = append(unkept, i)
		}
	}

	var best []int
	bestPoints := -1
	for mask := 1; mask < 1<<len(unkept); mask++ {
		var indices []int
		var faces []int
		for bit, idx := range unkept {
			if mask&(1<<bit) != 0 {
				indices = append(indices, idx)
				faces = append(faces, g.dice[idx])
			}
		}
		res := scoring.Score(faces, len(indices) == NumDice)
		if res.Valid && res.Points > bestPoints {
			best, bestPoints = indices, res.Points
		}
	}
	return best
}
