package dto

import "github.com/radieske/sports-betslip/internal/betslip"

type AddBetResponse struct {
	Bet  betslip.Bet      `json:"bet"`
	Slip betslip.Snapshot `json:"slip"`
}

type PlaceSlipResponse struct {
	SlipID           string `json:"slipId"`
	Status           string `json:"status"` // PENDING_CONFIRMATION
	TotalStakeCents  int64  `json:"total_stake_cents"`
	TotalPayoutCents int64  `json:"total_payout_cents"`
	TotalOdds        int    `json:"totalOdds,omitempty"`
}

type OddsChangedResponse struct {
	Error       string `json:"error"`
	CurrentOdds int    `json:"currentOdds"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
