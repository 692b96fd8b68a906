package bridge

import (
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/infrastructure/config"
	"navcron/pkg/logger"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func newHub(queue int) (*Hub, *logger.Memory) {
	log := logger.NewMemory()
	return New(log, config.Bridge{
		QueueSize:    queue,
		WriteTimeout: time.Second,
		PingPeriod:   time.Minute,
	}), log
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ws, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestHub_QueueFull(t *testing.T) {
	h, _ := newHub(2)

	require.NoError(t, h.Send(timer.AddTimer(0, 100)))
	require.NoError(t, h.Send(timer.AddTimer(1, 100)))
	assert.ErrorIs(t, h.Send(timer.AddTimer(2, 100)), ErrQueueFull)
	assert.Equal(t, 2, h.Queued())
}

func TestHub_FlushesQueuedOnAttach(t *testing.T) {
	h, _ := newHub(8)

	require.NoError(t, h.Send(timer.AddTimer(0, 1000)))
	require.NoError(t, h.Send(timer.ModifyTimerTimeout(0, 500)))

	ws := dial(t, h)
	require.NoError(t, h.Send(timer.RemoveTimer(0)))

	want := []timer.BridgeMessage{
		{Type: timer.MsgAddTimer, Handle: 0, Interval: 1000},
		{Type: timer.MsgModifyTimerTimeout, Handle: 0, Interval: 500},
		{Type: timer.MsgRemoveTimer, Handle: 0},
	}
	for _, w := range want {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got timer.BridgeMessage
		require.NoError(t, ws.ReadJSON(&got))
		assert.Equal(t, w, got)
	}
}

func TestHub_WireFormat(t *testing.T) {
	h, _ := newHub(8)
	ws := dial(t, h)

	require.NoError(t, h.Send(timer.AddTimer(3, 250)))
	require.NoError(t, h.Send(timer.AddTimer(4, 0)))
	require.NoError(t, h.Send(timer.ModifyTimerTimeout(3, 0)))
	require.NoError(t, h.Send(timer.RemoveTimer(3)))

	want := []string{
		`{"type":"addTimer","handle":3,"interval":250}`,
		`{"type":"addTimer","handle":4,"interval":0}`,
		`{"type":"modifyTimerTimeout","handle":3,"interval":0}`,
		`{"type":"removeTimer","handle":3}`,
	}
	for _, w := range want {
		ws.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := ws.ReadMessage()
		require.NoError(t, err)
		assert.JSONEq(t, w, string(data))
	}
}

func TestHub_Discard(t *testing.T) {
	h, _ := newHub(8)

	require.NoError(t, h.Send(timer.AddTimer(0, 100)))
	require.NoError(t, h.Send(timer.RemoveTimer(0)))

	assert.Equal(t, 2, h.Discard())
	assert.Equal(t, 0, h.Queued())
	assert.Equal(t, 0, h.Discard())
}

func waitAttach(t *testing.T, attached <-chan struct{}) {
	t.Helper()
	select {
	case <-attached:
	case <-time.After(2 * time.Second):
		t.Fatal("attach hook did not run")
	}
}

func TestHub_OnAttachRunsBeforeFlush(t *testing.T) {
	h, _ := newHub(8)
	require.NoError(t, h.Send(timer.AddTimer(0, 100)))

	attached := make(chan struct{}, 1)
	h.OnAttach(func() {
		h.Discard()
		assert.NoError(t, h.Send(timer.AddTimer(7, 700)))
		attached <- struct{}{}
	})

	ws := dial(t, h)
	waitAttach(t, attached)

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got timer.BridgeMessage
	require.NoError(t, ws.ReadJSON(&got))
	assert.Equal(t, timer.AddTimer(7, 700), got)
}

func TestHub_ReplacedRuntimeStopsReceiving(t *testing.T) {
	h, _ := newHub(64)
	attached := make(chan struct{}, 2)
	h.OnAttach(func() { attached <- struct{}{} })

	first := dial(t, h)
	waitAttach(t, attached)
	second := dial(t, h)
	waitAttach(t, attached)

	for i := 0; i < 20; i++ {
		require.NoError(t, h.Send(timer.AddTimer(timer.Handle(i), 100)))
	}
	for i := 0; i < 20; i++ {
		second.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got timer.BridgeMessage
		require.NoError(t, second.ReadJSON(&got))
		assert.Equal(t, timer.AddTimer(timer.Handle(i), 100), got)
	}

	// The replaced runtime only gets the close frame.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := first.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseNormalClosure, closeErr.Code)
}

func TestHub_InboundTrigger(t *testing.T) {
	h, log := newHub(8)

	var mu sync.Mutex
	var got []timer.Handle
	h.OnTrigger(func(id timer.Handle) {
		mu.Lock()
		got = append(got, id)
		mu.Unlock()
	})

	ws := dial(t, h)
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"timerTriggered","handle":5}`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello"}`)))
	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"timerTriggered","handle":6}`)))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, 2*time.Second, time.Millisecond)

	mu.Lock()
	assert.Equal(t, []timer.Handle{5, 6}, got)
	mu.Unlock()
	assert.Equal(t, 1, log.Count("error", "Failed to parse bridge message"))
	assert.Equal(t, 1, log.Count("warn", "Unexpected bridge message"))
}
