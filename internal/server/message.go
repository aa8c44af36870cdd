package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/farkle/internal/game"
	"github.com/lox/farkle/internal/room"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// DecodeData unmarshals a message payload into v.
func DecodeData(msg *Message, v interface{}) error {
	return json.Unmarshal(msg.Data, v)
}

// Client to server payloads

type CreateRoomData struct {
	DisplayName string `json:"displayName"`
}

type JoinRoomData struct {
	Code        string `json:"code"`
	DisplayName string `json:"displayName"`
}

type KeepData struct {
	Indices []int `json:"indices"`
}

// Server to client payloads

type RoomJoinedData struct {
	Code string `json:"code"`
	Seat int    `json:"seat"`
}

type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SeatState is the per-seat view carried in a room snapshot. Connection
// identifiers never appear on the wire.
type SeatState struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Online bool   `json:"online"`
}

// GameStateData is the wire form of the game state. Dice are 0 before the
// first roll of a turn.
type GameStateData struct {
	Phase      string   `json:"phase"`
	ActiveSeat int      `json:"activeSeat"`
	Dice       []int    `json:"dice"`
	KeptMask   []bool   `json:"keptMask"`
	TurnPoints int      `json:"turnPoints"`
	Winner     *int     `json:"winner,omitempty"`
	LastAction string   `json:"lastAction,omitempty"`
	Log        []string `json:"log,omitempty"`
}

// RoomUpdateData is the full room snapshot broadcast after every accepted
// mutation.
type RoomUpdateData struct {
	Code  string        `json:"code"`
	Seats []SeatState   `json:"seats"`
	Game  GameStateData `json:"game"`
}

// RoomUpdateFromSnapshot converts a room snapshot to its wire form.
func RoomUpdateFromSnapshot(snap room.Snapshot) RoomUpdateData {
	seats := make([]SeatState, len(snap.Seats))
	for i, s := range snap.Seats {
		seats[i] = SeatState{Name: s.Name, Score: s.Score, Online: s.Online}
	}

	var winner *int
	if snap.Game.Winner >= 0 {
		w := snap.Game.Winner
		winner = &w
	}

	return RoomUpdateData{
		Code:  snap.Code,
		Seats: seats,
		Game: GameStateData{
			Phase:      string(snap.Game.Phase),
			ActiveSeat: snap.Game.ActiveSeat,
			Dice:       snap.Game.Dice[:],
			KeptMask:   snap.Game.Kept[:],
			TurnPoints: snap.Game.TurnPoints,
			Winner:     winner,
			LastAction: snap.Game.LastAction,
			Log:        snap.Game.Log,
		},
	}
}

// errorKind maps core errors to stable wire error kinds.
func errorKind(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	case errors.Is(err, room.ErrNameTaken):
		return "name_taken"
	case errors.Is(err, room.ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, game.ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, game.ErrIllegalPhase):
		return "illegal_phase"
	case errors.Is(err, game.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, game.ErrNothingToBank):
		return "nothing_to_bank"
	case errors.Is(err, game.ErrOpeningScore):
		return "opening_score"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	default:
		return "internal"
	}
}
