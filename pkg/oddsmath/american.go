package oddsmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds é o sentinel usado em errors.Is para qualquer InvalidOddsError.
var ErrInvalidOdds = errors.New("invalid odds")

// InvalidOddsError indica odd americana zero ou odd decimal fora do domínio
// (<= 1, NaN, Inf, ou cuja americana não cabe em int).
type InvalidOddsError struct {
	Format   string // "american" | "decimal"
	American int
	Decimal  float64
	Reason   string
}

func (e *InvalidOddsError) Error() string {
	if e.Format == "decimal" {
		return fmt.Sprintf("invalid decimal odds %v: %s", e.Decimal, e.Reason)
	}
	return fmt.Sprintf("invalid american odds %d: %s", e.American, e.Reason)
}

func (e *InvalidOddsError) Is(target error) bool { return target == ErrInvalidOdds }

// ProfitMultiplier retorna o lucro por unidade apostada.
// +150 → 1.5 ; -110 → 0.909...
func ProfitMultiplier(american int) (float64, error) {
	switch {
	case american > 0:
		return float64(american) / 100.0, nil
	case american < 0:
		return 100.0 / -float64(american), nil
	default:
		return 0, &InvalidOddsError{Format: "american", American: american, Reason: "cannot be 0"}
	}
}

// Payout retorna apenas o lucro (sem o stake) para stake e odd americana.
func Payout(stake float64, american int) (float64, error) {
	m, err := ProfitMultiplier(american)
	if err != nil {
		return 0, err
	}
	return stake * m, nil
}

// AmericanToDecimal converte odd americana em multiplicador decimal (stake incluso).
// +150 → 2.50 ; -150 → 1.67
func AmericanToDecimal(american int) (float64, error) {
	m, err := ProfitMultiplier(american)
	if err != nil {
		return 0, err
	}
	return 1.0 + m, nil
}

// DecimalToAmerican converte odd decimal em americana com arredondamento simples.
// O ramo positivo vale para decimal >= 2 (inclusive): 2.0 vira +100, não -100.
func DecimalToAmerican(decimal float64) (int, error) {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return 0, &InvalidOddsError{Format: "decimal", Decimal: decimal, Reason: "not finite"}
	}
	if decimal <= 1.0 {
		return 0, &InvalidOddsError{Format: "decimal", Decimal: decimal, Reason: "must be > 1.0"}
	}

	var v float64
	if decimal >= 2.0 {
		v = math.Round((decimal - 1.0) * 100.0)
	} else {
		v = math.Round(-100.0 / (decimal - 1.0))
	}
	// float64(math.MaxInt) arredonda para 2^63, que já não cabe em int
	if v >= float64(math.MaxInt) || v < float64(math.MinInt) {
		return 0, &InvalidOddsError{Format: "decimal", Decimal: decimal, Reason: "american odds out of range"}
	}
	return int(v), nil
}

// CombineDecimal multiplica as odds decimais de todas as pernas de uma múltipla.
// Retorna 1.0 para lista vazia.
func CombineDecimal(legs []int) (float64, error) {
	combined := 1.0
	for _, american := range legs {
		d, err := AmericanToDecimal(american)
		if err != nil {
			return 0, err
		}
		combined *= d
	}
	return combined, nil
}
