package topics

const (
	// Bet slip
	SlipPlaced    = "slip_placed"
	SlipConfirmed = "slip_confirmed"

	// DLQs
	SlipPlacedDLQ = "slip_placed_dlq"
)
