package relay

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain/entity"
)

// pipeConn is an in-memory Conn so hub tests need no sockets.
type pipeConn struct {
	in   chan []byte
	out  chan []byte
	once sync.Once
}

func newPipeConn() *pipeConn {
	return &pipeConn{
		in:  make(chan []byte, 8),
		out: make(chan []byte, 8),
	}
}

func (c *pipeConn) ReadMessage() (int, []byte, error) {
	data, ok := <-c.in
	if !ok {
		return 0, nil, io.EOF
	}
	return gorillaws.TextMessage, data, nil
}

func (c *pipeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case c.out <- data:
	default:
	}
	return nil
}

func (c *pipeConn) Close() error {
	c.once.Do(func() { close(c.in) })
	return nil
}

func recvFrame(t *testing.T, conn *pipeConn) entity.InboundFrame {
	t.Helper()
	select {
	case data := <-conn.out:
		var frame entity.InboundFrame
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame delivered")
		return entity.InboundFrame{}
	}
}

func startTestHub(t *testing.T, userIDs ...int64) (*Hub, map[int64]*pipeConn) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub()
	hub.Start(ctx)

	conns := make(map[int64]*pipeConn, len(userIDs))
	for _, id := range userIDs {
		conn := newPipeConn()
		client := &Client{UserID: id, Conn: conn, Send: make(chan []byte, 8)}
		hub.Register <- client
		go client.ReadPump(hub)
		go client.WritePump()
		conns[id] = conn
	}
	return hub, conns
}

func send(t *testing.T, conn *pipeConn, frame entity.SendFrame) {
	t.Helper()
	data, err := json.Marshal(frame)
	require.NoError(t, err)
	conn.in <- data
}

func TestHubStampsAndEchoesToBothParties(t *testing.T) {
	_, conns := startTestHub(t, 1, 2)

	send(t, conns[1], entity.SendFrame{ReceiverID: 2, Content: "hi"})

	got := recvFrame(t, conns[2])
	assert.Equal(t, entity.FrameTypeMessage, got.Type)
	assert.Equal(t, int64(1), got.SenderID)
	assert.Equal(t, int64(2), got.ReceiverID)
	assert.Equal(t, "hi", got.Content)
	assert.Positive(t, got.ID, "server assigns the id")
	assert.False(t, got.CreatedAt.IsZero())

	echo := recvFrame(t, conns[1])
	assert.Equal(t, got, echo, "sender receives the identical stamped frame")
}

func TestHubAssignsIncreasingIDs(t *testing.T) {
	_, conns := startTestHub(t, 1, 2)

	send(t, conns[1], entity.SendFrame{ReceiverID: 2, Content: "first"})
	send(t, conns[1], entity.SendFrame{ReceiverID: 2, Content: "second"})

	first := recvFrame(t, conns[2])
	second := recvFrame(t, conns[2])
	assert.Greater(t, second.ID, first.ID)
}

func TestHubSkipsInvalidFrames(t *testing.T) {
	_, conns := startTestHub(t, 1, 2)

	conns[1].in <- []byte(`{malformed`)
	conns[1].in <- []byte(`{"receiver_id":2}`) // missing content
	send(t, conns[1], entity.SendFrame{ReceiverID: 2, Content: "valid"})

	got := recvFrame(t, conns[2])
	assert.Equal(t, "valid", got.Content, "only the valid frame is delivered")
}

func TestHubDropsFramesForOfflineUsers(t *testing.T) {
	_, conns := startTestHub(t, 1)

	send(t, conns[1], entity.SendFrame{ReceiverID: 99, Content: "nobody home"})

	// the sender still gets the echo even when the receiver is offline
	echo := recvFrame(t, conns[1])
	assert.Equal(t, "nobody home", echo.Content)
}

func TestNotifyUserAfterReconnect(t *testing.T) {
	hub, conns := startTestHub(t, 2)

	// a reconnect supersedes the old client; the hub closes its Send channel
	fresh := newPipeConn()
	client := &Client{UserID: 2, Conn: fresh, Send: make(chan []byte, 8)}
	hub.Register <- client
	go client.WritePump()

	taskID := int64(3)
	hub.NotifyUser(2, &taskID, nil)

	got := recvFrame(t, fresh)
	assert.Equal(t, entity.FrameTypeNotification, got.Type)
	require.NotNil(t, got.TaskID)
	assert.Equal(t, int64(3), *got.TaskID)

	select {
	case data := <-conns[2].out:
		// the superseded connection only ever sees its close frame
		assert.Empty(t, data)
	default:
	}
}

func TestNotifyUser(t *testing.T) {
	hub, conns := startTestHub(t, 2)

	debtID := int64(7)
	hub.NotifyUser(2, nil, &debtID)

	got := recvFrame(t, conns[2])
	assert.Equal(t, entity.FrameTypeNotification, got.Type)
	require.NotNil(t, got.DebtID)
	assert.Equal(t, int64(7), *got.DebtID)
	assert.Nil(t, got.TaskID)
}
