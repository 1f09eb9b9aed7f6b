package betslip

import (
	"fmt"

	"github.com/radieske/sports-betslip/pkg/oddsmath"
)

// Totals são sempre derivados das apostas e do modo
type Totals struct {
	Stake  float64
	Payout float64
	Odds   int // odd americana combinada; só em parlay, 0 em single
}

// ComputeTotals agrega stake/payout/odds conforme o modo.
//
// single: soma stakes e payouts individuais, odds = 0.
// parlay: stake único (o da primeira perna), odds decimais multiplicadas e convertidas
// de volta para americana; payout = stake + lucro na odd americana combinada.
// Erro quando a combinação das pernas não tem odd americana representável.
func ComputeTotals(mode Mode, bets []Bet) (Totals, error) {
	if len(bets) == 0 {
		return Totals{}, nil
	}

	if mode != ModeParlay {
		var t Totals
		for _, b := range bets {
			t.Stake += b.Stake
			t.Payout += b.PotentialPayout
		}
		return t, nil
	}

	american, err := combinedOdds(bets)
	if err != nil {
		return Totals{}, err
	}
	stake := bets[0].Stake
	profit, err := oddsmath.Payout(stake, american)
	if err != nil {
		return Totals{}, err
	}
	return Totals{Stake: stake, Payout: stake + profit, Odds: american}, nil
}

func combinedOdds(bets []Bet) (int, error) {
	legs := make([]int, len(bets))
	for i, b := range bets {
		legs[i] = b.Odds
	}
	combined, err := oddsmath.CombineDecimal(legs)
	if err != nil {
		return 0, err
	}
	return oddsmath.DecimalToAmerican(combined)
}

// checkCombinable garante que qualquer subconjunto de bets vira uma múltipla válida,
// seja qual for o modo atual. Cada perna sozinha e o conjunto inteiro precisam ter
// odd americana representável; subconjuntos ficam entre esses dois extremos.
func checkCombinable(bets []Bet) error {
	for _, b := range bets {
		if _, err := combinedOdds([]Bet{b}); err != nil {
			return fmt.Errorf("bet %s: %w", b.ID, err)
		}
	}
	if _, err := combinedOdds(bets); err != nil {
		return fmt.Errorf("parlay of %d legs: %w", len(bets), err)
	}
	return nil
}
