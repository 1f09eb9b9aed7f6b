package betslip

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/radieske/sports-betslip/internal/catalog/dto"
	"github.com/radieske/sports-betslip/pkg/oddsmath"
)

// DefaultStake é o valor inicial de uma aposta recém-adicionada quando nada é configurado
const DefaultStake = 10.0

// Request é o pedido de aposta vindo da camada de apresentação
type Request struct {
	Game      dto.Game
	Selection Selection
	Odds      int // formato americano
	Leg       Leg
}

// Bet é uma aposta individual dentro do slip.
// PotentialPayout é derivado (stake + lucro) e recalculado a cada mudança de stake.
type Bet struct {
	ID              string
	Game            dto.Game // snapshot do catálogo, nunca alterado pelo engine
	Selection       Selection
	Odds            int
	Stake           float64
	PotentialPayout float64
	Leg             Leg
}

func (b Bet) Market() Market { return b.Leg.Market() }

// Line retorna a linha (spread/total/prop); moneyline não tem
func (b Bet) Line() (float64, bool) { return lineOf(b.Leg) }

func (b Bet) PlayerProp() (dto.PlayerProp, bool) { return propOf(b.Leg) }

// BetID calcula a identidade determinística da aposta:
// "{game}-{market}-{selection}" ou "{game}-{market}-{prop}-{selection}" para player props.
func BetID(gameID string, leg Leg, sel Selection) string {
	if p, ok := propOf(leg); ok {
		return fmt.Sprintf("%s-%s-%s-%s", gameID, leg.Market(), p.ID, sel)
	}
	return fmt.Sprintf("%s-%s-%s", gameID, leg.Market(), sel)
}

// Builder constrói apostas a partir de pedidos. Não tem efeito colateral.
type Builder struct {
	DefaultStake float64
}

func NewBuilder(defaultStake float64) Builder {
	if defaultStake < 0 || math.IsNaN(defaultStake) || math.IsInf(defaultStake, 0) {
		defaultStake = DefaultStake
	}
	return Builder{DefaultStake: defaultStake}
}

func (b Builder) Build(req Request) (Bet, error) {
	if err := validateLeg(req.Leg, req.Selection); err != nil {
		return Bet{}, err
	}
	payout, err := potentialPayout(b.DefaultStake, req.Odds)
	if err != nil {
		return Bet{}, err
	}
	return Bet{
		ID:              BetID(req.Game.ID, req.Leg, req.Selection),
		Game:            req.Game,
		Selection:       req.Selection,
		Odds:            req.Odds,
		Stake:           b.DefaultStake,
		PotentialPayout: payout,
		Leg:             req.Leg,
	}, nil
}

// potentialPayout = stake + lucro
func potentialPayout(stake float64, odds int) (float64, error) {
	profit, err := oddsmath.Payout(stake, odds)
	if err != nil {
		return 0, err
	}
	return stake + profit, nil
}

// withStake devolve a aposta com novo stake e payout recalculado.
// As odds já foram validadas no Build, então o erro é descartado.
func (b Bet) withStake(stake float64) Bet {
	b.Stake = stake
	b.PotentialPayout, _ = potentialPayout(stake, b.Odds)
	return b
}

// betRecord é a forma persistida (JSON achatado) de uma Bet
type betRecord struct {
	ID              string          `json:"id"`
	Market          Market          `json:"market"`
	Selection       Selection       `json:"selection"`
	Odds            int             `json:"odds"`
	Line            *float64        `json:"line,omitempty"`
	Stake           float64         `json:"stake"`
	PotentialPayout float64         `json:"potentialPayout"`
	PlayerProp      *dto.PlayerProp `json:"playerProp,omitempty"`
	Game            dto.Game        `json:"game"`
}

func (b Bet) MarshalJSON() ([]byte, error) {
	if b.Leg == nil {
		return nil, ErrInvalidMarket
	}
	rec := betRecord{
		ID:              b.ID,
		Market:          b.Leg.Market(),
		Selection:       b.Selection,
		Odds:            b.Odds,
		Stake:           b.Stake,
		PotentialPayout: b.PotentialPayout,
		Game:            b.Game,
	}
	if line, ok := b.Line(); ok {
		rec.Line = &line
	}
	if p, ok := b.PlayerProp(); ok {
		rec.PlayerProp = &p
	}
	return json.Marshal(rec)
}

func (b *Bet) UnmarshalJSON(data []byte) error {
	var rec betRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	leg, err := NewLeg(rec.Market, rec.Line, rec.PlayerProp)
	if err != nil {
		return fmt.Errorf("bet %s: %w", rec.ID, err)
	}
	*b = Bet{
		ID:              rec.ID,
		Game:            rec.Game,
		Selection:       rec.Selection,
		Odds:            rec.Odds,
		Stake:           rec.Stake,
		PotentialPayout: rec.PotentialPayout,
		Leg:             leg,
	}
	return nil
}
