package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/review-campaigns/backend/internal/auth"
	"github.com/review-campaigns/backend/internal/config"
	"github.com/review-campaigns/backend/internal/events"
	"github.com/review-campaigns/backend/internal/middleware"
	"go.uber.org/zap"
)

// wsConn is the part of *websocket.Conn the hub writes to.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
}

// WSHub forwards marketplace events to the websocket connections of their
// recipients. Writes happen only from the subscriber goroutine.
type WSHub struct {
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID][]wsConn
}

func NewWSHub(subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID][]wsConn),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamCampaigns, h.dispatch)
}

// dispatch sends event to its recipients, or to everyone when it has none.
func (h *WSHub) dispatch(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("failed to encode event", zap.String("type", event.Type), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(event.Recipients) == 0 {
		for _, conns := range h.connections {
			h.write(conns, data)
		}
		return
	}
	seen := make(map[uuid.UUID]bool, len(event.Recipients))
	for _, id := range event.Recipients {
		if seen[id] {
			continue
		}
		seen[id] = true
		h.write(h.connections[id], data)
	}
}

func (h *WSHub) write(conns []wsConn, data []byte) {
	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
		}
	}
}

func (h *WSHub) register(id uuid.UUID, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[id] = append(h.connections[id], conn)
}

func (h *WSHub) unregister(id uuid.UUID, conn wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.connections[id]
	for i, c := range conns {
		if c == conn {
			h.connections[id] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.connections[id]) == 0 {
		delete(h.connections, id)
	}
}

// WSUpgradeMiddleware admits websocket upgrades from verified identities.
// Browsers that cannot send the session cookie pass the token as ?token=.
func WSUpgradeMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if _, ok := middleware.Identity(c); ok {
			return c.Next()
		}
		id, err := auth.ParseIdentityToken(cfg.AuthJWTSecret, cfg.AuthIssuer, c.Query("token"))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}
		c.Locals(middleware.CtxIdentity, id)
		return c.Next()
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	id, ok := conn.Locals(middleware.CtxIdentity).(uuid.UUID)
	if !ok {
		_ = conn.Close()
		return
	}

	h.register(id, conn)
	defer func() {
		h.unregister(id, conn)
		_ = conn.Close()
	}()

	// Clients never send anything meaningful; reading keeps pings flowing
	// and detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
