package http

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"tripack/internal/shared/logger"
	"tripack/internal/shared/utils"
	"tripack/internal/trips/domain/model"
	"tripack/internal/trips/usecase"
)

// WebSocketHandler manages websocket connections streaming live trip
// changes. A connection belongs to one authenticated user and can hold
// subscriptions to several of that user's trips at once.
type WebSocketHandler struct {
	realtime *usecase.RealtimeUsecase
	trips    *usecase.TripUsecase
	log      logger.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(realtime *usecase.RealtimeUsecase, trips *usecase.TripUsecase, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		realtime: realtime,
		trips:    trips,
		log:      log.WithComponent("trips_ws"),
	}
}

// RegisterRoutes mounts the websocket endpoint. The protect middleware runs
// before the upgrade, so the connection carries an authenticated user.
func (h *WebSocketHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	router.Use("/listen", protect, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, err := utils.GetUserIDFromContext(c.UserContext())
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals("userID", userID)
		return c.Next()
	})

	router.Get("/listen", websocket.New(h.handleConnection))
}

// listenRequest is a client message on the listen socket.
type listenRequest struct {
	Action string `json:"action"`
	TripID string `json:"tripId"`
}

// listenMessage is a server message on the listen socket.
type listenMessage struct {
	Type    string      `json:"type"`
	TripID  string      `json:"tripId,omitempty"`
	Change  interface{} `json:"change,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func (h *WebSocketHandler) handleConnection(conn *websocket.Conn) {
	userID, _ := conn.Locals("userID").(string)
	if userID == "" {
		conn.Close()
		return
	}

	h.log.Infof("Websocket connection opened for user %s", userID)

	// tripID -> subscription ID
	subscriptions := make(map[string]string)
	var mu sync.Mutex
	var writeMu sync.Mutex
	done := make(chan struct{})

	defer func() {
		close(done)
		mu.Lock()
		for tripID, subID := range subscriptions {
			h.realtime.Unsubscribe(userID, tripID, subID)
		}
		mu.Unlock()
		h.log.Infof("Websocket connection closed for user %s", userID)
	}()

	for {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))

		var req listenRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warnf("Websocket read error for user %s: %v", userID, err)
			}
			return
		}

		switch req.Action {
		case "subscribe":
			h.handleSubscribe(conn, userID, req.TripID, subscriptions, &mu, &writeMu, done)
		case "unsubscribe":
			h.handleUnsubscribe(conn, userID, req.TripID, subscriptions, &mu, &writeMu)
		default:
			h.writeJSON(conn, &writeMu, listenMessage{Type: "error", Error: "invalid_action", Message: "Unknown action: " + req.Action})
		}
	}
}

func (h *WebSocketHandler) handleSubscribe(
	conn *websocket.Conn,
	userID, tripID string,
	subscriptions map[string]string,
	mu, writeMu *sync.Mutex,
	done <-chan struct{},
) {
	// Ownership check before attaching the listener
	if _, err := h.trips.GetTrip(context.Background(), userID, tripID); err != nil {
		h.writeJSON(conn, writeMu, listenMessage{Type: "error", TripID: tripID, Error: "not_found", Message: "Trip not found"})
		return
	}

	mu.Lock()
	if _, already := subscriptions[tripID]; already {
		mu.Unlock()
		h.writeJSON(conn, writeMu, listenMessage{Type: "subscribed", TripID: tripID})
		return
	}
	subID, ch := h.realtime.Subscribe(userID, tripID)
	subscriptions[tripID] = subID
	mu.Unlock()

	go h.forward(conn, tripID, ch, writeMu, done)

	h.writeJSON(conn, writeMu, listenMessage{Type: "subscribed", TripID: tripID})
}

func (h *WebSocketHandler) handleUnsubscribe(
	conn *websocket.Conn,
	userID, tripID string,
	subscriptions map[string]string,
	mu, writeMu *sync.Mutex,
) {
	mu.Lock()
	subID, ok := subscriptions[tripID]
	if ok {
		delete(subscriptions, tripID)
	}
	mu.Unlock()

	if ok {
		h.realtime.Unsubscribe(userID, tripID, subID)
	}
	h.writeJSON(conn, writeMu, listenMessage{Type: "unsubscribed", TripID: tripID})
}

// forward pushes journaled changes for one subscription onto the socket
// until the subscription channel closes or the connection ends.
func (h *WebSocketHandler) forward(
	conn *websocket.Conn,
	tripID string,
	ch <-chan model.ChangeRecord,
	writeMu *sync.Mutex,
	done <-chan struct{},
) {
	for {
		select {
		case <-done:
			return
		case record, ok := <-ch:
			if !ok {
				return
			}
			h.writeJSON(conn, writeMu, listenMessage{Type: "change", TripID: tripID, Change: record})
		}
	}
}

func (h *WebSocketHandler) writeJSON(conn *websocket.Conn, writeMu *sync.Mutex, msg listenMessage) {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Debugf("Websocket write failed: %v", err)
	}
}
