package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/farkle/internal/game"
	"github.com/lox/farkle/internal/room"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind string
	}{
		{room.ErrRoomNotFound, "room_not_found"},
		{room.ErrRoomFull, "room_full"},
		{room.ErrNameTaken, "name_taken"},
		{room.ErrInvalidName, "invalid_name"},
		{game.ErrNotYourTurn, "not_your_turn"},
		{game.ErrIllegalPhase, "illegal_phase"},
		{game.ErrInvalidSelection, "invalid_selection"},
		{game.ErrNothingToBank, "nothing_to_bank"},
		{game.ErrOpeningScore, "opening_score"},
		{ErrNotInRoom, "not_in_room"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.kind, errorKind(tt.err), "error %v", tt.err)
	}
}

func TestErrorKindUnwrapsWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), game.ErrNotYourTurn)
	assert.Equal(t, "not_your_turn", errorKind(wrapped))
}

func TestRoomUpdateFromSnapshot(t *testing.T) {
	snap := room.Snapshot{
		Code: "ABCDE",
		Seats: [2]room.SeatInfo{
			{Name: "Ann", Score: 1200, Online: true},
			{Name: "Bea", Score: 300, Online: false},
		},
		Game: game.State{
			Phase:      game.PhaseSelecting,
			ActiveSeat: 1,
			Dice:       [6]int{1, 5, 2, 2, 3, 6},
			Kept:       [6]bool{true, false, false, false, false, false},
			TurnPoints: 100,
			Winner:     -1,
		},
	}

	update := RoomUpdateFromSnapshot(snap)
	assert.Equal(t, "ABCDE", update.Code)
	require.Len(t, update.Seats, 2)
	assert.Equal(t, SeatState{Name: "Ann", Score: 1200, Online: true}, update.Seats[0])
	assert.Equal(t, "selecting", update.Game.Phase)
	assert.Equal(t, []int{1, 5, 2, 2, 3, 6}, update.Game.Dice)
	assert.Nil(t, update.Game.Winner, "no winner while the game runs")

	snap.Game.Winner = 1
	update = RoomUpdateFromSnapshot(snap)
	require.NotNil(t, update.Game.Winner)
	assert.Equal(t, 1, *update.Game.Winner)
}
