package handlers

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 256

	// Attachments ride inside chat frames base64-encoded.
	maxMessageSize = 8 << 20
)

// Client is one live websocket connection, bound to a single user and room
// for its whole lifetime.
type Client struct {
	ID       string
	UserID   int
	Username string
	Email    string
	RoomID   string

	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	logger    zerolog.Logger
}

func NewClient(conn *websocket.Conn, userID int, username, email, roomID string, logger zerolog.Logger) *Client {
	return &Client{
		ID:       uuid.New().String(),
		UserID:   userID,
		Username: username,
		Email:    email,
		RoomID:   roomID,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		logger:   logger,
	}
}

// enqueue hands a frame to the write pump without blocking. Reports false
// when the buffer is full and the frame was dropped.
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// SendJSON marshals v and queues it for this client only.
func (c *Client) SendJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if !c.enqueue(data) {
		c.logger.Warn().Str("conn_id", c.ID).Msg("send buffer full, frame dropped")
	}
	return nil
}

// Close shuts the send channel once; the write pump drains what is queued
// and exits.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// WritePump is the only goroutine allowed to write on the connection. It
// forwards queued frames and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Debug().Err(err).Str("conn_id", c.ID).Msg("write failed")
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
