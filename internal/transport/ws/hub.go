package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Supervisor message types
const (
	MsgInterviewStarted   MessageType = "interview_started"
	MsgAnswerRecorded     MessageType = "answer_recorded"
	MsgInterviewCompleted MessageType = "interview_completed"
	MsgInterviewAbandoned MessageType = "interview_abandoned"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages supervisor WebSocket connections per questionnaire
type Hub struct {
	// questionnaireID -> connections
	supervisorConns map[string]map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// Connection represents a supervisor WebSocket connection
type Connection struct {
	QuestionnaireID string
	AdminID         string
	Send            chan []byte
	Hub             *Hub
}

// BroadcastMessage is a message to broadcast to a questionnaire's supervisors
type BroadcastMessage struct {
	QuestionnaireID string
	Message         *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		supervisorConns: make(map[string]map[*Connection]bool),
		register:        make(chan *Connection),
		unregister:      make(chan *Connection),
		broadcast:       make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.supervisorConns[conn.QuestionnaireID] == nil {
				h.supervisorConns[conn.QuestionnaireID] = make(map[*Connection]bool)
			}
			h.supervisorConns[conn.QuestionnaireID][conn] = true
			log.Printf("Supervisor %s watching questionnaire %s", conn.AdminID, conn.QuestionnaireID)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.supervisorConns[conn.QuestionnaireID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
					log.Printf("Supervisor %s stopped watching questionnaire %s", conn.AdminID, conn.QuestionnaireID)
				}
				if len(conns) == 0 {
					delete(h.supervisorConns, conn.QuestionnaireID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.supervisorConns[msg.QuestionnaireID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToSupervisors sends a progress event to every supervisor of a
// questionnaire (implements service.Broadcaster)
func (h *Hub) BroadcastToSupervisors(questionnaireID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		QuestionnaireID: questionnaireID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
