package betslip

import (
	"errors"
	"fmt"
	"math"

	"github.com/radieske/sports-betslip/internal/catalog/dto"
)

type Market string

const (
	MarketSpread     Market = "spread"
	MarketMoneyline  Market = "moneyline"
	MarketTotal      Market = "total"
	MarketPlayerProp Market = "player_prop"
)

type Selection string

const (
	SelectionHome  Selection = "home"
	SelectionAway  Selection = "away"
	SelectionOver  Selection = "over"
	SelectionUnder Selection = "under"
)

type Mode string

const (
	ModeSingle Mode = "single"
	ModeParlay Mode = "parlay"
)

var (
	ErrInvalidMarket    = errors.New("invalid market")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrInvalidMode      = errors.New("invalid mode")
	ErrInvalidLine      = errors.New("invalid line")
	ErrMissingLine      = errors.New("line required for market")
	ErrUnexpectedLine   = errors.New("market does not take a line")
	ErrMissingProp      = errors.New("player prop required")
)

func ParseMarket(s string) (Market, error) {
	switch m := Market(s); m {
	case MarketSpread, MarketMoneyline, MarketTotal, MarketPlayerProp:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMarket, s)
}

func ParseSelection(s string) (Selection, error) {
	switch sel := Selection(s); sel {
	case SelectionHome, SelectionAway, SelectionOver, SelectionUnder:
		return sel, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSelection, s)
}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeSingle, ModeParlay:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Leg é a união fechada de variantes por mercado. Cada variante carrega só o que precisa:
// moneyline não tem linha, player prop sempre tem o descritor do jogador.
type Leg interface {
	Market() Market
	isLeg()
}

type SpreadLeg struct{ Line float64 }

type MoneylineLeg struct{}

type TotalLeg struct{ Line float64 }

type PlayerPropLeg struct {
	Line float64
	Prop dto.PlayerProp
}

func (SpreadLeg) Market() Market     { return MarketSpread }
func (MoneylineLeg) Market() Market  { return MarketMoneyline }
func (TotalLeg) Market() Market      { return MarketTotal }
func (PlayerPropLeg) Market() Market { return MarketPlayerProp }

func (SpreadLeg) isLeg()     {}
func (MoneylineLeg) isLeg()  {}
func (TotalLeg) isLeg()      {}
func (PlayerPropLeg) isLeg() {}

// lineOf retorna a linha da perna, se o mercado tiver uma
func lineOf(l Leg) (float64, bool) {
	switch v := l.(type) {
	case SpreadLeg:
		return v.Line, true
	case TotalLeg:
		return v.Line, true
	case PlayerPropLeg:
		return v.Line, true
	}
	return 0, false
}

// propOf retorna o descritor de player prop, se houver
func propOf(l Leg) (dto.PlayerProp, bool) {
	if v, ok := l.(PlayerPropLeg); ok {
		return v.Prop, true
	}
	return dto.PlayerProp{}, false
}

// NewLeg monta a variante a partir da forma "achatada" usada na API
// (market + line opcional + prop opcional).
func NewLeg(market Market, line *float64, prop *dto.PlayerProp) (Leg, error) {
	switch market {
	case MarketMoneyline:
		if line != nil {
			return nil, ErrUnexpectedLine
		}
		return MoneylineLeg{}, nil
	case MarketSpread, MarketTotal:
		if line == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingLine, market)
		}
		if market == MarketSpread {
			return SpreadLeg{Line: *line}, nil
		}
		return TotalLeg{Line: *line}, nil
	case MarketPlayerProp:
		if prop == nil || prop.ID == "" {
			return nil, ErrMissingProp
		}
		l := prop.Line
		if line != nil {
			l = *line
		}
		return PlayerPropLeg{Line: l, Prop: *prop}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMarket, market)
}

// validateLeg confere seleção e linha de acordo com o mercado
func validateLeg(l Leg, sel Selection) error {
	if l == nil {
		return ErrInvalidMarket
	}
	switch l.Market() {
	case MarketSpread, MarketMoneyline:
		if sel != SelectionHome && sel != SelectionAway {
			return fmt.Errorf("%w: %q for %s", ErrInvalidSelection, sel, l.Market())
		}
	case MarketTotal, MarketPlayerProp:
		if sel != SelectionOver && sel != SelectionUnder {
			return fmt.Errorf("%w: %q for %s", ErrInvalidSelection, sel, l.Market())
		}
	}
	if line, ok := lineOf(l); ok && (math.IsNaN(line) || math.IsInf(line, 0)) {
		return ErrInvalidLine
	}
	if p, ok := l.(PlayerPropLeg); ok && p.Prop.ID == "" {
		return ErrMissingProp
	}
	return nil
}
