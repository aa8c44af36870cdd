// Package game implements the authoritative Farkle turn engine for a single
// room.
//
// The main type is Game, which owns the six dice, the kept mask, the
// per-turn point tally and the two seat scores, and applies the
// roll/keep/bank transitions requested by the active seat. All rule
// decisions about dice combinations are delegated to the scoring package.
//
// # Deterministic Testing
//
// Dice rolls come from an injected *rand.Rand, so a fixed seed reproduces a
// full game:
//
//	g := game.New(game.DefaultRules(), randutil.New(42))
//
// Tests that need exact dice arrange the board directly; Game performs no
// I/O and takes no locks. Serialisation of concurrent intents for a room is
// the room package's job.
package game
