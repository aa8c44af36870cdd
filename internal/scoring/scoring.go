// Package scoring implements the Farkle dice scoring rules.
//
// Score evaluates a selected set of die faces and returns its point value,
// or an invalid verdict when the selection contains any non-scoring die.
// HasScoringOption answers whether a freshly rolled set of dice contains at
// least one keepable combination, which is how a farkle is detected.
//
// Both functions are pure: they depend only on the face multiset (and, for
// Score, whether the selection spans all six dice), never on game state.
package scoring

import (
	"fmt"
	"strings"
)

// Result is the verdict for a single keep selection.
type Result struct {
	Valid     bool
	Points    int
	Breakdown string
}

// Score evaluates the faces of a keep selection. wholeHand must be true when
// the selection uses all six dice of the current roll at once; only then do
// the six-die special combinations apply. A selection is either 100% scoring
// dice or it is rejected outright, there is no partial credit.
func Score(faces []int, wholeHand bool) Result {
	if len(faces) == 0 {
		return Result{}
	}

	counts, ok := faceCounts(faces)
	if !ok {
		return Result{}
	}

	if wholeHand && len(faces) == 6 {
		if points, name := specialCombo(counts); points > 0 {
			return Result{Valid: true, Points: points, Breakdown: name}
		}
	}

	var (
		points int
		parts  []string
	)
	for face := 1; face <= 6; face++ {
		n := counts[face]
		if n == 0 {
			continue
		}
		if n >= 3 {
			base := face * 100
			if face == 1 {
				base = 1000
			}
			points += base << (n - 3)
			parts = append(parts, fmt.Sprintf("%d×%d", n, face))
			continue
		}
		switch face {
		case 1:
			points += 100 * n
			parts = append(parts, strings.TrimSuffix(strings.Repeat("1, ", n), ", "))
		case 5:
			points += 50 * n
			parts = append(parts, strings.TrimSuffix(strings.Repeat("5, ", n), ", "))
		default:
			// A lone 2/3/4/6 scores nothing and poisons the whole selection.
			return Result{}
		}
	}

	return Result{Valid: true, Points: points, Breakdown: strings.Join(parts, ", ")}
}

// HasScoringOption reports whether any non-empty subset of the rolled faces
// would be a valid selection under Score. Called after every roll over the
// dice that were actually rolled; a false result is a farkle.
func HasScoringOption(faces []int) bool {
	if len(faces) == 0 {
		return false
	}
	counts, ok := faceCounts(faces)
	if !ok {
		return false
	}
	if counts[1] > 0 || counts[5] > 0 {
		return true
	}
	for face := 2; face <= 6; face++ {
		if counts[face] >= 3 {
			return true
		}
	}
	if len(faces) == 6 {
		if points, _ := specialCombo(counts); points > 0 {
			return true
		}
	}
	return false
}

// specialCombo tests the six-die combinations in precedence order and
// returns the first match. Combinations never stack.
func specialCombo(counts [7]int) (int, string) {
	var pairs, triplets, fours, singles int
	for face := 1; face <= 6; face++ {
		switch counts[face] {
		case 1:
			singles++
		case 2:
			pairs++
		case 3:
			triplets++
		case 4:
			fours++
		}
	}
	switch {
	case singles == 6:
		return 1500, "straight"
	case pairs == 3:
		return 1500, "three pairs"
	case triplets == 2:
		return 2500, "two triplets"
	case fours == 1 && pairs == 1:
		return 1500, "four of a kind + pair"
	}
	return 0, ""
}

func faceCounts(faces []int) ([7]int, bool) {
	var counts [7]int
	for _, f := range faces {
		if f < 1 || f > 6 {
			return counts, false
		}
		counts[f]++
	}
	return counts, true
}
