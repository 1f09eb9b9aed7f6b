package events

import "time"

// Evento emitido pelo placement-worker após persistir um slip.
type SlipConfirmed struct {
	SlipID string    `json:"slipId"`
	UserID string    `json:"userId"`
	Status string    `json:"status"` // "CONFIRMED" | "REJECTED"
	Reason string    `json:"reason,omitempty"`
	Ts     time.Time `json:"ts"`
}
