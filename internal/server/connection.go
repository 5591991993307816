package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// hub is the subset of Server a Connection needs: dispatching inbound
// events and being told when the socket goes away.
type hub interface {
	handleJoin(id string, data JoinData)
	handleSetStartingStack(id string, data SetStartingStackData)
	handleStartGame(id string)
	handleAction(id string, data ActionData)
	unregister(id string)
}

// Connection wraps one websocket with buffered, non-blocking sends: a full
// send channel drops the message rather than stall the table's broadcast on
// one slow reader (SPEC_FULL.md §5).
type Connection struct {
	id     string
	conn   *websocket.Conn
	send   chan *Message
	logger *log.Logger
	hub    hub

	closeOnce sync.Once
}

// NewConnection wraps an upgraded websocket for the given viewer id.
func NewConnection(id string, conn *websocket.Conn, logger *log.Logger, h hub) *Connection {
	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan *Message, 32),
		logger: logger,
		hub:    h,
	}
}

// ID returns the connection's viewer id.
func (c *Connection) ID() string { return c.id }

// Start launches the read and write pumps in their own goroutines.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// SendMessage enqueues msg for delivery without blocking. If the client's
// outbound buffer is full the message is dropped; the next broadcast will
// carry fresher state anyway.
func (c *Connection) SendMessage(msg *Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("dropping message to slow client", "connection", c.id, "type", msg.Type)
		return errors.New("send buffer full")
	}
}

// Close tears down the connection and notifies the hub exactly once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		_ = c.conn.Close()
		c.hub.unregister(c.id)
	})
}

func (c *Connection) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "connection", c.id, "error", err)
			}
			return
		}
		c.handleMessage(raw)
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Debug("websocket write error", "connection", c.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage decodes the envelope and dispatches to the matching hub
// handler (SPEC_FULL.md §6's four inbound events). Malformed envelopes and
// unknown types are reported back as errorMessage, same as any other
// rejected action — the socket is not closed over a bad message.
func (c *Connection) handleMessage(raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendProtocolError("malformed message: " + err.Error())
		return
	}

	switch msg.Type {
	case MessageTypeJoin:
		var data JoinData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendProtocolError("malformed join payload")
			return
		}
		c.hub.handleJoin(c.id, data)

	case MessageTypeSetStartingStack:
		var data SetStartingStackData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendProtocolError("malformed setStartingStack payload")
			return
		}
		c.hub.handleSetStartingStack(c.id, data)

	case MessageTypeStartGame:
		c.hub.handleStartGame(c.id)

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendProtocolError("malformed action payload")
			return
		}
		c.hub.handleAction(c.id, data)

	default:
		c.sendProtocolError("unknown message type: " + string(msg.Type))
	}
}

func (c *Connection) sendProtocolError(reason string) {
	errMsg, err := NewMessage(MessageTypeErrorMessage, ErrorMessageData{Message: reason})
	if err != nil {
		c.logger.Error("failed to build error message", "error", err)
		return
	}
	_ = c.SendMessage(errMsg)
}
