package dto

// ReserveRequest representa o payload para reservar saldo no wallet-service.
type ReserveRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

// SettleRequest é usado tanto no commit quanto no refund de uma reserva.
type SettleRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}
