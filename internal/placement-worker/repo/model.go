package repo

// Status do slip persistido (coluna slips.status)
const (
	StatusPending   = "PENDING_CONFIRMATION"
	StatusConfirmed = "CONFIRMED"
	StatusRejected  = "REJECTED"
)
