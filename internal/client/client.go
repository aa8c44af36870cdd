// Package client provides a WebSocket client for the dice server, used by
// the terminal UI and the self-play simulator.
package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/farkle/internal/server"
)

// Client represents a WebSocket client for the dice game
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	name      string
	roomCode  string
	seat      int
	closeOnce sync.Once

	eventHandlers map[server.MessageType][]EventHandler
}

// EventHandler is a function that handles incoming events
type EventHandler func(*server.Message)

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL:     serverURL,
		send:          make(chan *server.Message, 256),
		receive:       make(chan *server.Message, 256),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		seat:          -1,
		eventHandlers: make(map[server.MessageType][]EventHandler),
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect() error {
	c.logger.Info("connecting to server", "url", c.serverURL)

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Info("connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close()
			c.connected = false
		}

		close(c.send)

		c.logger.Info("disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage sends a message to the server
func (c *Client) SendMessage(msg *server.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg server.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error", "error", err)
			}
			break
		}

		c.logger.Debug("received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// eventProcessor processes incoming messages and dispatches to handlers
func (c *Client) eventProcessor() {
	for {
		select {
		case msg := <-c.receive:
			c.handleMessage(msg)
		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage dispatches messages to registered handlers
func (c *Client) handleMessage(msg *server.Message) {
	if msg.Type == server.MessageTypeRoomJoined {
		c.recordSeat(msg)
	}

	c.mu.RLock()
	handlers, exists := c.eventHandlers[msg.Type]
	c.mu.RUnlock()

	if exists {
		for _, handler := range handlers {
			go handler(msg)
		}
	} else {
		c.logger.Debug("no handler for message type", "type", msg.Type)
	}
}

func (c *Client) recordSeat(msg *server.Message) {
	var joined server.RoomJoinedData
	if err := server.DecodeData(msg, &joined); err != nil {
		c.logger.Error("bad room:joined payload", "error", err)
		return
	}

	c.mu.Lock()
	c.roomCode = joined.Code
	c.seat = joined.Seat
	c.mu.Unlock()
}

// AddEventHandler adds an event handler for a specific message type
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handler)
}

// CreateRoom asks the server for a fresh room with the caller in seat 0.
func (c *Client) CreateRoom(name string) error {
	c.setName(name)

	msg, err := server.NewMessage(server.MessageTypeRoomCreate, server.CreateRoomData{
		DisplayName: name,
	})
	if err != nil {
		return err
	}

	return c.SendMessage(msg)
}

// JoinRoom joins an existing room by code. Rejoining with a previously used
// name reclaims that seat.
func (c *Client) JoinRoom(code, name string) error {
	c.setName(name)

	msg, err := server.NewMessage(server.MessageTypeRoomJoin, server.JoinRoomData{
		Code:        code,
		DisplayName: name,
	})
	if err != nil {
		return err
	}

	return c.SendMessage(msg)
}

// Roll requests a roll of the free dice.
func (c *Client) Roll() error {
	msg, err := server.NewMessage(server.MessageTypeTurnRoll, struct{}{})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Keep sets aside the dice at the given indices.
func (c *Client) Keep(indices []int) error {
	msg, err := server.NewMessage(server.MessageTypeTurnKeep, server.KeepData{
		Indices: indices,
	})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// Bank commits the accumulated turn points.
func (c *Client) Bank() error {
	msg, err := server.NewMessage(server.MessageTypeTurnBank, struct{}{})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// NewGame requests a rematch after a finished game.
func (c *Client) NewGame() error {
	msg, err := server.NewMessage(server.MessageTypeGameNew, struct{}{})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

func (c *Client) setName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Name returns the display name used to join
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// RoomCode returns the joined room code, empty before a join ack
func (c *Client) RoomCode() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomCode
}

// Seat returns the assigned seat, -1 before a join ack
func (c *Client) Seat() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seat
}

// WaitForMessage waits for a specific message type with timeout
func (c *Client) WaitForMessage(messageType server.MessageType, timeout time.Duration) (*server.Message, error) {
	responseChan := make(chan *server.Message, 1)

	handler := func(msg *server.Message) {
		select {
		case responseChan <- msg:
		default:
		}
	}

	c.AddEventHandler(messageType, handler)

	select {
	case msg := <-responseChan:
		return msg, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("timeout waiting for %s", messageType)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}
