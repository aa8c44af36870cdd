package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/farkle/internal/room"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection represents a WebSocket connection to a client
type Connection struct {
	id          string
	conn        *websocket.Conn
	send        chan *Message
	roomCode    string
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	id := newConnID()

	return &Connection{
		id:          id,
		conn:        conn,
		send:        make(chan *Message, 64),
		logger:      logger.WithPrefix("conn").With("id", id),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

func newConnID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("failed to generate connection id: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

// ID returns the opaque connection identifier
func (c *Connection) ID() string { return c.id }

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetRoom associates this connection with a room code
func (c *Connection) SetRoom(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomCode = code
}

// Room returns the associated room code
func (c *Connection) Room() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming intents from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("received message", "type", msg.Type, "room", c.Room())

	switch msg.Type {
	case MessageTypeRoomCreate:
		var data CreateRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse room:create data")
			return
		}
		c.handleCreateRoom(data)

	case MessageTypeRoomJoin:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse room:join data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeTurnRoll:
		if err := c.gameService.Roll(c.id); err != nil {
			c.sendIntentError(err)
		}

	case MessageTypeTurnKeep:
		var data KeepData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "failed to parse turn:keep data")
			return
		}
		if err := c.gameService.Keep(c.id, data.Indices); err != nil {
			c.sendIntentError(err)
		}

	case MessageTypeTurnBank:
		if err := c.gameService.Bank(c.id); err != nil {
			c.sendIntentError(err)
		}

	case MessageTypeGameNew:
		if err := c.gameService.NewGame(c.id); err != nil {
			c.sendIntentError(err)
		}

	default:
		c.sendError("unknown_message_type", "unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleCreateRoom(data CreateRoomData) {
	snap, seat, err := c.gameService.CreateRoom(c.id, data.DisplayName)
	if err != nil {
		c.sendIntentError(err)
		return
	}
	c.SetRoom(snap.Code)
	c.sendJoinAck(snap, seat)
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	snap, seat, err := c.gameService.JoinRoom(c.id, data.Code, data.DisplayName)
	if err != nil {
		c.sendIntentError(err)
		return
	}
	c.SetRoom(snap.Code)
	c.sendJoinAck(snap, seat)
}

// sendJoinAck delivers the joined ack plus an immediate snapshot. The room
// broadcast that accompanied the join ran before this connection was tagged
// with the room code, so the caller gets its copy directly.
func (c *Connection) sendJoinAck(snap room.Snapshot, seat int) {
	ack, err := NewMessage(MessageTypeRoomJoined, RoomJoinedData{Code: snap.Code, Seat: seat})
	if err != nil {
		c.logger.Error("failed to create joined ack", "error", err)
		return
	}
	_ = c.SendMessage(ack)

	update, err := NewMessage(MessageTypeRoomUpdate, RoomUpdateFromSnapshot(snap))
	if err != nil {
		c.logger.Error("failed to create room update", "error", err)
		return
	}
	_ = c.SendMessage(update)
}

// sendIntentError maps a core error to its wire kind and reports it to the
// offending caller only.
func (c *Connection) sendIntentError(err error) {
	c.sendError(errorKind(err), err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(kind, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Kind:    kind,
		Message: message,
	})
	if err != nil {
		c.logger.Error("failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}
