package ports

import "navcron/internal/app/domain/timer"

// BridgeChannel is the one-way outbound channel to a UI runtime. Send must
// not block on the network.
type BridgeChannel interface {
	Send(msg timer.BridgeMessage) error
	// Discard drops messages not yet written and returns how many.
	Discard() int
}
