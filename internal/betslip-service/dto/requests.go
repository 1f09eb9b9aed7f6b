package dto

// AddBetRequest é o corpo de POST /v1/slip/bets.
// Odds é a odd americana que o cliente viu; Line é opcional (moneyline não tem linha,
// player prop usa a linha do catálogo quando omitida).
type AddBetRequest struct {
	GameID    string   `json:"gameId"`
	Market    string   `json:"market"`    // spread | moneyline | total | player_prop
	Selection string   `json:"selection"` // home | away | over | under
	Odds      int      `json:"odds"`
	Line      *float64 `json:"line,omitempty"`
	PropID    string   `json:"propId,omitempty"`
}

type UpdateStakeRequest struct {
	Stake *float64 `json:"stake"`
}

type SetModeRequest struct {
	Mode string `json:"mode"` // single | parlay
}

type PlaceSlipRequest struct {
	UserID string `json:"userId"`
}
