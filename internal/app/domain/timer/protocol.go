package timer

import "encoding/json"

// Message types exchanged with a UI runtime that owns the real timers.
const (
	MsgAddTimer           = "addTimer"
	MsgRemoveTimer        = "removeTimer"
	MsgModifyTimerTimeout = "modifyTimerTimeout"
	MsgTimerTriggered     = "timerTriggered"
)

// BridgeMessage is one frame of the bridge protocol. Interval is in
// milliseconds and only meaningful for addTimer and modifyTimerTimeout.
type BridgeMessage struct {
	Type     string `json:"type"`
	Handle   Handle `json:"handle"`
	Interval int64  `json:"interval"`
}

// MarshalJSON writes interval for addTimer and modifyTimerTimeout even when
// it is zero, and leaves it out of every other frame.
func (m BridgeMessage) MarshalJSON() ([]byte, error) {
	type frame struct {
		Type     string `json:"type"`
		Handle   Handle `json:"handle"`
		Interval *int64 `json:"interval,omitempty"`
	}

	f := frame{Type: m.Type, Handle: m.Handle}
	if m.Type == MsgAddTimer || m.Type == MsgModifyTimerTimeout {
		interval := m.Interval
		f.Interval = &interval
	}
	return json.Marshal(f)
}

func AddTimer(h Handle, intervalMs int64) BridgeMessage {
	return BridgeMessage{Type: MsgAddTimer, Handle: h, Interval: intervalMs}
}

func RemoveTimer(h Handle) BridgeMessage {
	return BridgeMessage{Type: MsgRemoveTimer, Handle: h}
}

func ModifyTimerTimeout(h Handle, intervalMs int64) BridgeMessage {
	return BridgeMessage{Type: MsgModifyTimerTimeout, Handle: h, Interval: intervalMs}
}
