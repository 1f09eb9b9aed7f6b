package events

// SlipPlaced é publicado pelo betslip-service quando um slip é enviado para aposta.
// Valores monetários em centavos; odds no formato americano.
type SlipPlaced struct {
	SlipID           string          `json:"slip_id"`
	UserID           string          `json:"user_id"`
	SessionID        string          `json:"session_id"`
	Mode             string          `json:"mode"` // "single" | "parlay"
	Legs             []SlipLegPlaced `json:"legs"`
	TotalStakeCents  int64           `json:"total_stake_cents"`
	TotalPayoutCents int64           `json:"total_payout_cents"`
	TotalOdds        int             `json:"total_odds"`   // 0 em single
	ReservedRef      string          `json:"reserved_ref"` // external_ref usado na reserva da carteira (slipID)
	TsUnixMs         int64           `json:"ts_unix_ms"`
}

type SlipLegPlaced struct {
	BetID       string   `json:"bet_id"`
	GameID      string   `json:"game_id"`
	Market      string   `json:"market"`
	Selection   string   `json:"selection"`
	Odds        int      `json:"odds"`
	Line        *float64 `json:"line,omitempty"`
	PropID      string   `json:"prop_id,omitempty"`
	StakeCents  int64    `json:"stake_cents"`
	PayoutCents int64    `json:"payout_cents"`
}
