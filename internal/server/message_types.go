package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server intents
	MessageTypeRoomCreate MessageType = "room:create"
	MessageTypeRoomJoin   MessageType = "room:join"
	MessageTypeTurnRoll   MessageType = "turn:roll"
	MessageTypeTurnKeep   MessageType = "turn:keep"
	MessageTypeTurnBank   MessageType = "turn:bank"
	MessageTypeGameNew    MessageType = "game:new"

	// Server to client messages
	MessageTypeRoomJoined MessageType = "room:joined"
	MessageTypeRoomUpdate MessageType = "room:update"
	MessageTypeError      MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
