package websocket

import (
	"context"
	"net/http"
	"time"

	"distress-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StopFunc persists a finished recording for userID and returns the payload of the saved event.
type StopFunc func(ctx context.Context, userID primitive.ObjectID, recording []byte) (interface{}, error)

type Options struct {
	ReadBufferSize   int
	WriteBufferSize  int
	HandshakeTimeout time.Duration
	PongTimeout      time.Duration
	WriteTimeout     time.Duration
	StopTimeout      time.Duration
	MaxMessageSize   int64
	AllowedOrigins   []string
}

func (o Options) pingPeriod() time.Duration {
	return (o.PongTimeout * 9) / 10
}

func (o Options) withDefaults() Options {
	if o.PongTimeout <= 0 {
		o.PongTimeout = 60 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = 30 * time.Second
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 16 * 1024 * 1024
	}
	return o
}

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	opts     Options
	onStop   StopFunc
	logger   *logger.Logger
}

func NewHandler(hub *Hub, opts Options, onStop StopFunc, log *logger.Logger) *Handler {
	opts = opts.withDefaults()
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   opts.ReadBufferSize,
			WriteBufferSize:  opts.WriteBufferSize,
			HandshakeTimeout: opts.HandshakeTimeout,
			CheckOrigin:      originChecker(opts.AllowedOrigins),
		},
		opts:   opts,
		onStop: onStop,
		logger: log,
	}
}

// HandleWebSocket expects the auth middleware to have stored user_id and user_role.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, ok := c.Get("user_id")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Unauthorized"})
		return
	}

	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid user ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithUserID(userObjectID).WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, userObjectID, c.GetString("user_role") == "admin")
	if !h.hub.Register(client) {
		conn.Close()
		return
	}

	go client.writePump(h.opts)
	client.readPump(c.Request.Context(), h.opts, h.onStop)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
