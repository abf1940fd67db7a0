package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjack/internal/deck"
)

// Connection represents a WebSocket connection to a single player
type Connection struct {
	id        string
	conn      *websocket.Conn
	send      chan *Message
	table     *Table
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(id string, conn *websocket.Conn, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn").With("id", id),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the connection's UUID
func (c *Connection) ID() string {
	return c.id
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection and stops its table
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		if c.table != nil {
			c.table.Close()
		}
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection has been closed
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

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

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

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

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid_message", "Message is not valid JSON")
			continue
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
				c.logger.Error("Failed to write message", "error", err)
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

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	var value int
	switch msg.Type {
	case MessageTypePlaceChip:
		var data PlaceChipData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse chip data")
			return
		}
		value = data.Value

	case MessageTypeConfigureDecks:
		var data ConfigureDecksData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse deck data")
			return
		}
		value = data.Decks
	}

	state, err := c.table.Apply(msg.Type, value)
	switch {
	case errors.Is(err, ErrUnknownCommand):
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
		return
	case errors.Is(err, ErrInvalidChip):
		c.sendError("invalid_chip", err.Error())
		return
	case errors.Is(err, deck.ErrInvalidDecks), errors.Is(err, ErrTooManyDecks):
		c.sendError("invalid_decks", err.Error())
		return
	case err != nil:
		c.sendError("rejected", err.Error())
		return
	}

	c.sendState(state, msg.RequestID)
}

func (c *Connection) sendState(state StateData, requestID string) {
	msg, err := NewMessage(MessageTypeState, state)
	if err != nil {
		c.logger.Error("Failed to create state message", "error", err)
		return
	}
	msg.RequestID = requestID
	_ = c.SendMessage(msg)
}

func (c *Connection) sendError(code, message string) {
	msg, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}
	_ = c.SendMessage(msg)
}
