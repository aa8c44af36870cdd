package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/farkle/internal/server"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"create Ann", Command{Name: "create", Who: "Ann"}},
		{"join abcde Bea", Command{Name: "join", Code: "ABCDE", Who: "Bea"}},
		{"roll", Command{Name: "roll"}},
		{"r", Command{Name: "roll"}},
		{"keep 1 3 5", Command{Name: "keep", Dice: []int{0, 2, 4}}},
		{"k 6", Command{Name: "keep", Dice: []int{5}}},
		{"bank", Command{Name: "bank"}},
		{"b", Command{Name: "bank"}},
		{"new", Command{Name: "new"}},
		{"  ROLL  ", Command{Name: "roll"}},
		{"quit", Command{Name: "quit"}},
		{"help", Command{Name: "help"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"create",
		"create Ann Bea",
		"join ABCDE",
		"keep",
		"keep 0",
		"keep 7",
		"keep x",
		"flip",
	}

	for _, line := range bad {
		_, err := ParseCommand(line)
		assert.Error(t, err, "line %q", line)
	}
}

func TestRenderDice(t *testing.T) {
	state := server.GameStateData{
		Dice:     []int{1, 5, 2, 0, 3, 6},
		KeptMask: []bool{true, false, false, false, false, false},
	}

	out := RenderDice(state)
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "[5]")
	assert.Contains(t, out, "[ ]", "unrolled dice render blank")
	assert.Equal(t, 6, strings.Count(out, "["))
}
