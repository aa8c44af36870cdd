package scoring

import (
	"math/rand/v2"
	"testing"
)

func TestScoreSpecialCombos(t *testing.T) {
	cases := []struct {
		name   string
		faces  []int
		points int
	}{
		{"straight", []int{1, 2, 3, 4, 5, 6}, 1500},
		{"straight shuffled", []int{6, 4, 2, 5, 3, 1}, 1500},
		{"three pairs", []int{2, 2, 3, 3, 5, 5}, 1500},
		{"two triplets", []int{1, 1, 1, 5, 5, 5}, 2500},
		{"two triplets high", []int{6, 6, 6, 4, 4, 4}, 2500},
		{"four of a kind plus pair", []int{2, 2, 2, 2, 3, 3}, 1500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Score(tc.faces, true)
			if !res.Valid {
				t.Fatalf("expected valid selection, got invalid")
			}
			if res.Points != tc.points {
				t.Fatalf("got %d points, want %d", res.Points, tc.points)
			}
		})
	}
}

func TestScoreDecomposition(t *testing.T) {
	cases := []struct {
		name      string
		faces     []int
		wholeHand bool
		valid     bool
		points    int
	}{
		{"six ones", []int{1, 1, 1, 1, 1, 1}, true, true, 8000},
		{"five ones", []int{1, 1, 1, 1, 1}, false, true, 4000},
		{"triple twos", []int{2, 2, 2}, false, true, 200},
		{"triple sixes", []int{6, 6, 6}, false, true, 600},
		{"quad threes", []int{3, 3, 3, 3}, false, true, 600},
		{"single one", []int{1}, false, true, 100},
		{"single five", []int{5}, false, true, 50},
		{"one and five", []int{1, 5}, false, true, 150},
		{"triple ones plus single", []int{1, 1, 1, 5}, false, true, 1050},
		{"lone three poisons selection", []int{2, 2, 3}, false, false, 0},
		{"pair of twos", []int{2, 2}, false, false, 0},
		{"lone six", []int{6}, false, false, 0},
		{"empty selection", nil, false, false, 0},
		{"out of range face", []int{1, 7}, false, false, 0},
		{"five ones and a leftover single", []int{1, 1, 1, 1, 1, 5}, true, true, 4050},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Score(tc.faces, tc.wholeHand)
			if res.Valid != tc.valid {
				t.Fatalf("valid=%v, want %v", res.Valid, tc.valid)
			}
			if res.Points != tc.points {
				t.Fatalf("got %d points, want %d", res.Points, tc.points)
			}
		})
	}
}

func TestStraightBeatsSinglesDecomposition(t *testing.T) {
	// A whole-hand straight must score 1500, not 100+50 for the 1 and 5.
	res := Score([]int{1, 2, 3, 4, 5, 6}, true)
	if res.Points != 1500 || res.Breakdown != "straight" {
		t.Fatalf("got %d (%q), want 1500 (straight)", res.Points, res.Breakdown)
	}

	// Without the whole-hand flag the same faces are a partial selection
	// full of lone dice and must be rejected.
	res = Score([]int{1, 2, 3, 4, 5, 6}, false)
	if res.Valid {
		t.Fatalf("expected partial straight selection to be invalid")
	}
}

func TestHasScoringOption(t *testing.T) {
	cases := []struct {
		name  string
		faces []int
		want  bool
	}{
		{"empty", nil, false},
		{"single one", []int{1}, true},
		{"single five", []int{5}, true},
		{"lone junk", []int{2, 3, 4, 6}, false},
		{"triple in junk", []int{2, 2, 2, 3}, true},
		{"straight", []int{1, 2, 3, 4, 5, 6}, true},
		{"three pairs no singles", []int{2, 2, 3, 3, 6, 6}, true},
		{"three pairs short roll", []int{2, 2, 3, 3}, false},
		{"classic farkle", []int{2, 3, 4, 6, 6, 3}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HasScoringOption(tc.faces); got != tc.want {
				t.Fatalf("HasScoringOption(%v) = %v, want %v", tc.faces, got, tc.want)
			}
		})
	}
}

// bruteForceScoring enumerates every non-empty subset of the faces and asks
// Score directly. HasScoringOption must agree with it for any roll.
func bruteForceScoring(faces []int) bool {
	for mask := 1; mask < 1<<len(faces); mask++ {
		var subset []int
		for i, f := range faces {
			if mask&(1<<i) != 0 {
				subset = append(subset, f)
			}
		}
		if Score(subset, len(subset) == 6).Valid {
			return true
		}
	}
	return false
}

func TestHasScoringOptionMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 5000; i++ {
		n := rng.IntN(6) + 1
		faces := make([]int, n)
		for j := range faces {
			faces[j] = rng.IntN(6) + 1
		}
		want := bruteForceScoring(faces)
		if got := HasScoringOption(faces); got != want {
			t.Fatalf("roll %v: HasScoringOption=%v, brute force=%v", faces, got, want)
		}
	}
}
