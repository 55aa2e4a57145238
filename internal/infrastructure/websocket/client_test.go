package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairchat/internal/domain/entity"
)

func TestEndpointDerivation(t *testing.T) {
	tests := []struct {
		name    string
		apiBase string
		wsBase  string
		want    string
	}{
		{
			name:    "explicit ws base wins",
			apiBase: "https://api.example.com",
			wsBase:  "wss://push.example.com",
			want:    "wss://push.example.com/ws/tok",
		},
		{
			name:    "derived from https api base",
			apiBase: "https://api.example.com",
			want:    "wss://api.example.com/ws/tok",
		},
		{
			name:    "derived from http api base",
			apiBase: "http://127.0.0.1:8000",
			want:    "ws://127.0.0.1:8000/ws/tok",
		},
		{
			name:    "trailing slash trimmed",
			apiBase: "http://localhost:8000",
			wsBase:  "ws://localhost:8000/",
			want:    "ws://localhost:8000/ws/tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewConnection(tt.apiBase, tt.wsBase)
			got, err := c.endpoint("tok")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

var testUpgrader = gorillaws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// startFrameServer serves one websocket connection and writes each payload
// in order, then closes.
func startFrameServer(t *testing.T, payloads []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/ws/"))
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		for _, p := range payloads {
			require.NoError(t, conn.WriteMessage(gorillaws.TextMessage, []byte(p)))
		}
		conn.Close()
	}))
}

func TestConnectDeliversFramesInOrderAndSkipsMalformed(t *testing.T) {
	srv := startFrameServer(t, []string{
		`{"type":"message","id":1,"sender_id":2,"receiver_id":1,"content":"hello","created_at":"2026-08-29T10:00:00Z"}`,
		`{malformed`,
		`{"type":"notification","debt_id":7}`,
	})
	defer srv.Close()

	var mu sync.Mutex
	var got []entity.InboundFrame

	c := NewConnection(srv.URL, "")
	c.OnFrame(func(f entity.InboundFrame) {
		mu.Lock()
		got = append(got, f)
		mu.Unlock()
	})

	require.NoError(t, c.Connect("test-token"))
	assert.Equal(t, StateConnected, c.State())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 10*time.Millisecond, "malformed frame is dropped, not fatal")

	mu.Lock()
	assert.Equal(t, entity.FrameTypeMessage, got[0].Type)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, entity.FrameTypeNotification, got[1].Type)
	require.NotNil(t, got[1].DebtID)
	assert.Equal(t, int64(7), *got[1].DebtID)
	mu.Unlock()

	// the server closed: the drop surfaces only as a state change
	assert.Eventually(t, func() bool {
		return c.State() == StateDisconnected
	}, time.Second, 10*time.Millisecond)
}

func TestSendWhileDisconnectedIsSilentDrop(t *testing.T) {
	c := NewConnection("http://127.0.0.1:8000", "")
	err := c.Send(entity.SendFrame{ReceiverID: 2, Content: "hi"})
	assert.NoError(t, err)
}

func TestConnectFailureLeavesDisconnected(t *testing.T) {
	c := NewConnection("http://127.0.0.1:1", "")
	err := c.Connect("tok")
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestSendReachesServer(t *testing.T) {
	received := make(chan entity.SendFrame, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()
		var frame entity.SendFrame
		if err := conn.ReadJSON(&frame); err == nil {
			received <- frame
		}
	}))
	defer srv.Close()

	c := NewConnection(srv.URL, "")
	require.NoError(t, c.Connect("tok"))
	defer c.Close()

	require.NoError(t, c.Send(entity.SendFrame{ReceiverID: 2, Content: "over the wire"}))

	select {
	case frame := <-received:
		assert.Equal(t, int64(2), frame.ReceiverID)
		assert.Equal(t, "over the wire", frame.Content)
	case <-time.After(time.Second):
		t.Fatal("server never received the frame")
	}
}
