package handlers

import (
	"log"
	"net/http"
	"time"

	"translation-market/internal/auth"
	"translation-market/internal/events"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSHandler struct {
	gateway *events.Gateway
}

func NewWSHandler(gateway *events.Gateway) *WSHandler {
	return &WSHandler{gateway: gateway}
}

// StreamEvents upgrades the connection and streams domain events as JSON.
// With ?request_id= the feed is scoped to one request; otherwise it
// carries every event the caller produced or is party to.
// GET /ws/events
func (h *WSHandler) StreamEvents(c *gin.Context) {
	actor, exists := auth.GetActor(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	requestID := uuid.Nil
	actorFilter := actor.ID
	if idStr := c.Query("request_id"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request_id"})
			return
		}
		requestID = id
		// Scoped to a request: show all parties' transitions, not just
		// the caller's own.
		actorFilter = 0
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	sub := h.gateway.Subscribe(requestID, actorFilter, 64)

	go h.writeLoop(conn, sub)
	h.readLoop(conn, sub)
}

func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *events.Subscription) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case event, ok := <-sub.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *WSHandler) readLoop(conn *websocket.Conn, sub *events.Subscription) {
	defer func() {
		sub.Close()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
