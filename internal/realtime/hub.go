package realtime

import (
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10
	MaxMessageSize = 512
)

// ProjectTopic addresses live updates about a project's thread.
func ProjectTopic(projectID uint) string {
	return fmt.Sprintf("project/%d", projectID)
}

// MessageTopic addresses read/delete state changes of one message.
func MessageTopic(messageID uint) string {
	return fmt.Sprintf("message/%d", messageID)
}

// Hub routes events to connections subscribed to an exact topic key.
// Registration and publishing are safe to interleave.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Conn]bool
}

func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[*Conn]bool)}
}

func (h *Hub) Register(topic string, conn *Conn) {
	h.mu.Lock()
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[*Conn]bool)
	}
	h.topics[topic][conn] = true
	h.mu.Unlock()
}

func (h *Hub) Unregister(topic string, conn *Conn) {
	h.mu.Lock()
	if conns, exists := h.topics[topic]; exists {
		delete(conns, conn)

		if len(conns) == 0 {
			delete(h.topics, topic)
		}
	}
	h.mu.Unlock()
}

// Subscribers reports how many connections are on a topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Publish pushes payload to every connection subscribed to topic.
// Failed connections are dropped from the topic and closed.
func (h *Hub) Publish(topic string, payload interface{}) {
	h.mu.RLock()
	conns, exists := h.topics[topic]
	if !exists || len(conns) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy so the lock is not held while writing to sockets.
	connsCopy := make([]*Conn, 0, len(conns))
	for conn := range conns {
		connsCopy = append(connsCopy, conn)
	}
	h.mu.RUnlock()

	for _, conn := range connsCopy {
		if err := conn.WriteJSON(payload); err != nil {
			log.Printf("Failed to publish to topic %s: %v", topic, err)
			h.Unregister(topic, conn)
			conn.Close()
		}
	}
}
