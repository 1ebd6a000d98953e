package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/taskfleet/taskfleet/internal/access"
	"github.com/taskfleet/taskfleet/internal/domain"
	"github.com/taskfleet/taskfleet/internal/realtime"
	"github.com/taskfleet/taskfleet/internal/types"
	"github.com/taskfleet/taskfleet/internal/utils"
)

// WebSocket subscribes the connection to a single topic key:
// project/{id} for thread updates, message/{id} for one message's
// read/delete state. Subscribing requires the same access the topic's
// content does.
func WebSocket(c *gin.Context) {
	principal, err := utils.GetCurrentUser(c)

	if err != nil {
		respondError(c, domain.Unauthorized("user not authenticated"))
		return
	}

	kind := c.Param("topic_kind")
	id, err := utils.GetIDParam(c, "id")

	if err != nil {
		respondError(c, domain.BadRequest(err.Error()))
		return
	}

	var topic string

	switch kind {
	case "project":
		if err := guard.CanAct(principal, access.ResourceProject, id, access.ActionRead); err != nil {
			respondError(c, err)
			return
		}
		topic = realtime.ProjectTopic(id)
	case "message":
		if err := guard.CanAct(principal, access.ResourceMessage, id, access.ActionRead); err != nil {
			respondError(c, err)
			return
		}
		topic = realtime.MessageTopic(id)
	default:
		respondError(c, domain.BadRequest("unknown topic kind"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	socket, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	socket.SetReadLimit(realtime.MaxMessageSize)
	if err := socket.SetReadDeadline(time.Now().Add(realtime.PongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		return
	}
	socket.SetPongHandler(func(string) error {
		if err := socket.SetReadDeadline(time.Now().Add(realtime.PongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	// All writes go through the locked wrapper: hub pushes and the
	// keepalive pings below must never interleave frames.
	conn := realtime.NewConn(socket)

	hub.Register(topic, conn)

	defer func() {
		hub.Unregister(topic, conn)
		conn.Close()

		log.Printf("WebSocket connection closed for topic %s", topic)
	}()

	err = conn.WriteJSON(map[string]string{
		"type":    "connected",
		"message": "WebSocket connection established",
		"topic":   topic,
	})

	if err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	ticker := time.NewTicker(realtime.PingPeriod)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := conn.Ping(); err != nil {
					log.Printf("Ping failed for topic %s: %v", topic, err)
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if err := socket.SetReadDeadline(time.Now().Add(realtime.PongWait)); err != nil {
			log.Printf("Failed to set read deadline for topic %s: %v", topic, err)
			break
		}

		if _, _, err := socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error for topic %s: %v", topic, err)
			}
			break
		}
	}
}
