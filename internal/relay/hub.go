package relay

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	gorillaws "github.com/gorilla/websocket"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/logger"
)

// Conn is the subset of a websocket connection the hub needs, so tests can
// run against an in-memory pipe.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one connected user.
type Client struct {
	UserID int64
	Conn   Conn
	Send   chan []byte
}

type outbound struct {
	senderID int64
	frame    entity.SendFrame
}

type notification struct {
	userID int64
	taskID *int64
	debtID *int64
}

// Hub relays send frames between connected users. Every accepted frame is
// stamped with a server id and timestamp and delivered to both the receiver
// and the sender, so the sender's client always sees an echo of its own
// message.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	mu            sync.RWMutex
	clients       map[int64]*Client
	outbound      chan outbound
	notifications chan notification
	nextID        atomic.Int64
	validate      *validator.Validate
}

func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[int64]*Client),
		outbound:      make(chan outbound, 64),
		notifications: make(chan notification, 64),
		validate:      validator.New(),
	}
}

func (h *Hub) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-h.Register:
				h.mu.Lock()
				if prev, ok := h.clients[client.UserID]; ok {
					close(prev.Send)
				}
				h.clients[client.UserID] = client
				h.mu.Unlock()
				logger.Info("relay: user %d connected", client.UserID)

			case client := <-h.Unregister:
				h.mu.Lock()
				if current, ok := h.clients[client.UserID]; ok && current == client {
					delete(h.clients, client.UserID)
					close(client.Send)
				}
				h.mu.Unlock()
				logger.Info("relay: user %d disconnected", client.UserID)

			case out := <-h.outbound:
				h.route(out)

			case n := <-h.notifications:
				h.routeNotification(n)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (h *Hub) route(out outbound) {
	frame := entity.InboundFrame{
		Type:       entity.FrameTypeMessage,
		ID:         h.nextID.Add(1),
		SenderID:   out.senderID,
		ReceiverID: out.frame.ReceiverID,
		Content:    out.frame.Content,
		CreatedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		logger.Error("relay: encode failed: %v", err)
		return
	}

	h.sendToUser(frame.ReceiverID, data)
	if frame.SenderID != frame.ReceiverID {
		h.sendToUser(frame.SenderID, data)
	}
}

// NotifyUser pushes a bare notification frame, e.g. after an out-of-band
// task or debt mutation. Delivery goes through the hub loop so it is
// serialized with registrations; a superseded client's Send channel is never
// written after the loop closed it.
func (h *Hub) NotifyUser(userID int64, taskID, debtID *int64) {
	h.notifications <- notification{userID: userID, taskID: taskID, debtID: debtID}
}

func (h *Hub) routeNotification(n notification) {
	frame := entity.InboundFrame{
		Type:   entity.FrameTypeNotification,
		TaskID: n.taskID,
		DebtID: n.debtID,
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	h.sendToUser(n.userID, data)
}

func (h *Hub) sendToUser(userID int64, data []byte) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case client.Send <- data:
	default:
		// slow consumer, drop rather than block the hub
	}
}

// ReadPump decodes and validates send frames from one client until the
// connection fails. Invalid frames are skipped, never fatal.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}

		var frame entity.SendFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Warn("relay: malformed frame from %d: %v", c.UserID, err)
			continue
		}
		if err := h.validate.Struct(frame); err != nil {
			logger.Warn("relay: invalid frame from %d: %v", c.UserID, err)
			continue
		}

		h.outbound <- outbound{senderID: c.UserID, frame: frame}
	}
}

func (c *Client) WritePump() {
	defer c.Conn.Close()

	for data := range c.Send {
		if err := c.Conn.WriteMessage(gorillaws.TextMessage, data); err != nil {
			return
		}
	}
	c.Conn.WriteMessage(gorillaws.CloseMessage, []byte{})
}
