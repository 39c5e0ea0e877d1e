package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	EventAudio     = "audio"
	EventStop      = "stop"
	EventSaved     = "saved"
	EventError     = "error"
	EventEscalated = "escalated"
)

type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	UserID  primitive.ObjectID
	IsAdmin bool
	rooms   map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID primitive.ObjectID, isAdmin bool) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		UserID:  userID,
		IsAdmin: isAdmin,
		rooms:   make(map[string]bool),
	}
}

// readPump blocks until the connection fails or ctx ends. Frames are handled in arrival order.
func (c *Client) readPump(ctx context.Context, opts Options, onStop StopFunc) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(opts.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(opts.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithUserID(c.UserID).WithError(err).Warn("Websocket closed unexpectedly")
			}
			return
		}

		c.handleMessage(ctx, message, opts, onStop)
	}
}

func (c *Client) writePump(opts Options) {
	ticker := time.NewTicker(opts.pingPeriod())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(ctx context.Context, message []byte, opts Options, onStop StopFunc) {
	var frame Frame
	if err := json.Unmarshal(message, &frame); err != nil {
		c.hub.sendToClient(c, EventError, errorPayload("malformed frame"))
		return
	}

	switch frame.Event {
	case EventAudio:
		c.hub.Relay(c, message)

	case EventStop:
		recording, err := decodeRecording(frame.Data)
		if err != nil {
			c.hub.sendToClient(c, EventError, errorPayload("recording must be a base64 string"))
			return
		}
		if onStop == nil {
			c.hub.sendToClient(c, EventError, errorPayload("recording is not supported"))
			return
		}

		stopCtx, cancel := context.WithTimeout(ctx, opts.StopTimeout)
		defer cancel()

		result, err := onStop(stopCtx, c.UserID, recording)
		if err != nil {
			c.hub.logger.WithUserID(c.UserID).WithError(err).Error("Failed to store audio recording")
			c.hub.sendToClient(c, EventError, errorPayload(publicMessage(err)))
			return
		}
		c.hub.sendToClient(c, EventSaved, result)

	default:
		c.hub.sendToClient(c, EventError, errorPayload("unknown event "+frame.Event))
	}
}

func decodeRecording(data json.RawMessage) ([]byte, error) {
	var encoded string
	if err := json.Unmarshal(data, &encoded); err != nil {
		return nil, err
	}
	if encoded == "" {
		return nil, errors.New("empty recording")
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}

func publicMessage(err error) string {
	var public interface{ PublicMessage() string }
	if errors.As(err, &public) {
		return public.PublicMessage()
	}
	return "failed to save recording"
}
