// Package bridge carries the timer protocol between the registry and a UI
// runtime connected over a websocket. Outbound messages are queued while no
// runtime is attached and flushed once one connects.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gorilla/websocket"
	"navcron/internal/app/adapters/metrics"
	"navcron/internal/app/domain/timer"
	"navcron/internal/app/infrastructure/config"
	"navcron/pkg/logger"
	"net/http"
	"sync"
	"time"
)

var ErrQueueFull = errors.New("bridge queue is full")

// Hub implements ports.BridgeChannel. One UI runtime is attached at a time;
// a new connection replaces the previous one.
type Hub struct {
	log      logger.Logger
	cfg      config.Bridge
	upgrader websocket.Upgrader

	out chan timer.BridgeMessage

	mu       sync.Mutex
	trigger  func(timer.Handle)
	onAttach func()
	cancel   context.CancelFunc
	session  uint64
	// writer is closed when the current session's write loop has returned.
	writer chan struct{}
	// carry holds messages a replaced writer took off the queue too late.
	carry []timer.BridgeMessage
}

func New(log logger.Logger, cfg config.Bridge) *Hub {
	return &Hub{
		log: log,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		out: make(chan timer.BridgeMessage, cfg.QueueSize),
	}
}

// OnTrigger sets the receiver of inbound timerTriggered messages.
func (h *Hub) OnTrigger(fn func(timer.Handle)) {
	h.mu.Lock()
	h.trigger = fn
	h.mu.Unlock()
}

// OnAttach sets a hook run each time a runtime connects, after the previous
// runtime's writer has stopped and before anything is written to the new one.
func (h *Hub) OnAttach(fn func()) {
	h.mu.Lock()
	h.onAttach = fn
	h.mu.Unlock()
}

// Send queues msg for the runtime. It never blocks.
func (h *Hub) Send(msg timer.BridgeMessage) error {
	select {
	case h.out <- msg:
		return nil
	default:
		return fmt.Errorf("send %s: %w", msg.Type, ErrQueueFull)
	}
}

// Discard drops every queued message and returns how many were dropped.
func (h *Hub) Discard() int {
	h.mu.Lock()
	n := len(h.carry)
	h.carry = nil
	h.mu.Unlock()

	for {
		select {
		case <-h.out:
			n++
		default:
			return n
		}
	}
}

// Queued returns the number of messages waiting for a runtime.
func (h *Hub) Queued() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.out) + len(h.carry)
}

// ServeHTTP upgrades the request and serves the runtime until the
// connection drops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade bridge connection", err)
		return
	}
	defer ws.Close()

	ctx, session, previous, done := h.attach(r.Context())

	// Only one writer may drain the queue, so the replaced runtime's writer
	// has to be gone before this one starts.
	if previous != nil {
		<-previous
	}

	h.log.Info("UI runtime connected", "remote", r.RemoteAddr)

	h.mu.Lock()
	onAttach := h.onAttach
	h.mu.Unlock()
	if onAttach != nil {
		onAttach()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		h.writeLoop(ctx, ws)
	}()

	if err := h.readLoop(ws); err != nil {
		h.log.Warn("UI runtime disconnected", "error", err.Error())
	}
	h.detach(session)
	wg.Wait()
}

// attach makes a new session current and cancels the previous one. It
// returns the previous writer's done channel and the new one's.
func (h *Hub) attach(parent context.Context) (context.Context, uint64, <-chan struct{}, chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancel != nil {
		h.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	h.cancel = cancel
	h.session++

	previous := h.writer
	h.writer = make(chan struct{})
	return ctx, h.session, previous, h.writer
}

func (h *Hub) detach(session uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.session == session && h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

func (h *Hub) readLoop(ws *websocket.Conn) error {
	ws.SetReadDeadline(time.Now().Add(2 * h.cfg.PingPeriod))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(2 * h.cfg.PingPeriod))
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		ws.SetReadDeadline(time.Now().Add(2 * h.cfg.PingPeriod))
		h.handleMessage(data)
	}
}

func (h *Hub) handleMessage(data []byte) {
	var msg timer.BridgeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		h.log.Error("Failed to parse bridge message", err)
		return
	}
	metrics.BridgeMessages.WithLabelValues("in", msg.Type).Inc()

	if msg.Type != timer.MsgTimerTriggered {
		h.log.Warn("Unexpected bridge message", "type", msg.Type)
		return
	}

	h.mu.Lock()
	trigger := h.trigger
	h.mu.Unlock()

	if trigger == nil {
		h.log.Warn("timerTriggered received before the registry was attached", "id", uint64(msg.Handle))
		return
	}
	trigger(msg.Handle)
}

func (h *Hub) writeLoop(ctx context.Context, ws *websocket.Conn) {
	ping := time.NewTicker(h.cfg.PingPeriod)
	defer ping.Stop()

	// attach cancels under mu, so a session replaced before it started never
	// takes the carried frames.
	h.mu.Lock()
	if ctx.Err() != nil {
		h.mu.Unlock()
		h.close(ws)
		return
	}
	carried := h.carry
	h.carry = nil
	h.mu.Unlock()

	for _, msg := range carried {
		if !h.write(ws, msg) {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			h.close(ws)
			return
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
				h.log.Warn("Bridge ping failed", "error", err.Error())
				ws.Close()
				return
			}
		case msg := <-h.out:
			// select picks at random when the session was replaced while a
			// message was ready; that message belongs to the next runtime.
			h.mu.Lock()
			if ctx.Err() != nil {
				h.carry = append(h.carry, msg)
				h.mu.Unlock()
				h.close(ws)
				return
			}
			h.mu.Unlock()
			if !h.write(ws, msg) {
				return
			}
		}
	}
}

func (h *Hub) write(ws *websocket.Conn, msg timer.BridgeMessage) bool {
	ws.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	if err := ws.WriteJSON(msg); err != nil {
		h.log.Error("Bridge message lost", err, "type", msg.Type, "id", uint64(msg.Handle))
		ws.Close()
		return false
	}
	return true
}

func (h *Hub) close(ws *websocket.Conn) {
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(h.cfg.WriteTimeout))
	ws.Close()
}
