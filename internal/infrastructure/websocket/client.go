package websocket

import (
	"encoding/json"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"pairchat/internal/domain/entity"
	"pairchat/pkg/errors"
	"pairchat/pkg/logger"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// FrameHandler receives every successfully decoded inbound frame, in the
// order the transport delivered it.
type FrameHandler func(entity.InboundFrame)

// Connection owns at most one live websocket to the server. A dropped
// connection is not retried; callers reconnect by calling Connect again,
// which is idempotent (any prior socket is closed first).
type Connection struct {
	apiBase string
	wsBase  string
	handler FrameHandler
	onState func(State)

	mu    sync.Mutex
	conn  *websocket.Conn
	state State
}

func NewConnection(apiBase, wsBase string) *Connection {
	return &Connection{
		apiBase: apiBase,
		wsBase:  wsBase,
		state:   StateDisconnected,
	}
}

// OnFrame registers the inbound frame handler. Must be set before Connect.
func (c *Connection) OnFrame(fn FrameHandler) {
	c.handler = fn
}

// OnStateChange registers an observer for connection state transitions.
// Must be set before Connect.
func (c *Connection) OnStateChange(fn func(State)) {
	c.onState = fn
}

func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connection) Connect(token string) error {
	endpoint, err := c.endpoint(token)
	if err != nil {
		return errors.TransportFailure("invalid websocket endpoint", err)
	}

	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.setStateLocked(StateConnecting)
	c.mu.Unlock()

	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		c.mu.Lock()
		c.setStateLocked(StateDisconnected)
		c.mu.Unlock()
		return errors.TransportFailure("websocket dial failed", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.setStateLocked(StateConnected)
	c.mu.Unlock()

	logger.Info("websocket connected: %s", endpoint)
	go c.readPump(conn)
	return nil
}

// Send writes one frame when connected. Anything else is a silent drop,
// never a queue: offline sends are intentionally lost at the wire level
// while the optimistic copy stays in the store.
func (c *Connection) Send(frame entity.SendFrame) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == StateConnected
	c.mu.Unlock()

	if !connected || conn == nil {
		logger.Debug("websocket not connected, dropping send to %d", frame.ReceiverID)
		return nil
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return errors.TransportFailure("failed to encode send frame", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.TransportFailure("websocket write failed", err)
	}
	return nil
}

func (c *Connection) Close() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.setStateLocked(StateDisconnected)
	c.mu.Unlock()
}

func (c *Connection) readPump(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read error: %v", err)
			}
			break
		}

		var frame entity.InboundFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			logger.Warn("%v: %s", errors.MalformedFrame(err), data)
			continue
		}
		if c.handler != nil {
			c.handler(frame)
		}
	}

	c.mu.Lock()
	// A newer Connect may already own a fresh socket; only the current
	// connection's pump may flip the state.
	if c.conn == conn {
		c.conn = nil
		c.setStateLocked(StateDisconnected)
	}
	c.mu.Unlock()
	conn.Close()
}

// endpoint builds the websocket URL: an explicit WS base wins, otherwise it
// is derived from the API base with the scheme mapped to ws/wss.
func (c *Connection) endpoint(token string) (string, error) {
	base := c.wsBase
	if base == "" {
		u, err := url.Parse(c.apiBase)
		if err != nil {
			return "", err
		}
		scheme := "ws"
		if u.Scheme == "https" {
			scheme = "wss"
		}
		base = scheme + "://" + u.Host
	}
	return strings.TrimRight(base, "/") + "/ws/" + token, nil
}

func (c *Connection) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.onState != nil {
		go c.onState(s)
	}
}
