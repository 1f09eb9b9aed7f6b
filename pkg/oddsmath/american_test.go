package oddsmath_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/sports-betslip/pkg/oddsmath"
)

func TestProfitMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		american int
		want     float64
	}{
		{"Even odds +100", 100, 1.0},
		{"Underdog +150", 150, 1.5},
		{"Underdog +377", 377, 3.77},
		{"Favorite -110", -110, 0.909090909},
		{"Favorite -200", -200, 0.5},
		{"Small magnitude +50", 50, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.ProfitMultiplier(tt.american)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestProfitMultiplierZero(t *testing.T) {
	_, err := oddsmath.ProfitMultiplier(0)
	require.Error(t, err)

	var oddsErr *oddsmath.InvalidOddsError
	require.True(t, errors.As(err, &oddsErr))
	assert.Equal(t, 0, oddsErr.American)
	assert.True(t, errors.Is(err, oddsmath.ErrInvalidOdds))
}

func TestProfitMultiplierExtremes(t *testing.T) {
	got, err := oddsmath.ProfitMultiplier(math.MinInt)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)

	got, err = oddsmath.ProfitMultiplier(math.MaxInt)
	require.NoError(t, err)
	assert.Greater(t, got, 0.0)
}

func TestPayoutMatchesMultiplier(t *testing.T) {
	for _, american := range []int{-500, -250, -110, -100, 100, 120, 150, 377, 1000} {
		for _, stake := range []float64{0.5, 1, 10, 33.33, 250} {
			p, err := oddsmath.Payout(stake, american)
			require.NoError(t, err)
			m, _ := oddsmath.ProfitMultiplier(american)
			assert.InDelta(t, m, p/stake, 1e-9, "odds %d stake %v", american, stake)
		}
	}
}

func TestPayoutIsProfitOnly(t *testing.T) {
	p, err := oddsmath.Payout(10, -110)
	require.NoError(t, err)
	assert.InDelta(t, 9.0909, p, 1e-4)

	p, err = oddsmath.Payout(0, 150)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)
}

func TestDecimalToAmerican(t *testing.T) {
	tests := []struct {
		name    string
		decimal float64
		want    int
	}{
		{"Boundary 2.0 goes positive", 2.0, 100},
		{"Underdog 2.5", 2.5, 150},
		{"Parlay -110/+150", (1 + 100.0/110.0) * 2.5, 377},
		{"Favorite 1.5", 1.5, -200},
		{"Favorite 1.909090", 1 + 100.0/110.0, -110},
		{"Just under 2", 1.99, -101},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := oddsmath.DecimalToAmerican(tt.decimal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecimalToAmericanRejects(t *testing.T) {
	for _, d := range []float64{1.0, 0.5, 0, -3, math.NaN(), math.Inf(1), 1e17, math.MaxFloat64} {
		_, err := oddsmath.DecimalToAmerican(d)
		assert.ErrorIs(t, err, oddsmath.ErrInvalidOdds, "decimal %v", d)
	}
}

func TestCombineDecimal(t *testing.T) {
	got, err := oddsmath.CombineDecimal([]int{-110, 150})
	require.NoError(t, err)
	assert.InDelta(t, 4.772727, got, 1e-6)

	got, err = oddsmath.CombineDecimal(nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)

	_, err = oddsmath.CombineDecimal([]int{-110, 0})
	assert.ErrorIs(t, err, oddsmath.ErrInvalidOdds)
}

func TestDecimalToAmericanLargestParlay(t *testing.T) {
	// 8 pernas a +10000 ainda cabem em int; a 9ª estoura
	legs := make([]int, 9)
	for i := range legs {
		legs[i] = 10000
	}
	d, err := oddsmath.CombineDecimal(legs[:8])
	require.NoError(t, err)
	got, err := oddsmath.DecimalToAmerican(d)
	require.NoError(t, err)
	assert.Greater(t, got, 0)

	d, err = oddsmath.CombineDecimal(legs)
	require.NoError(t, err)
	_, err = oddsmath.DecimalToAmerican(d)
	assert.ErrorIs(t, err, oddsmath.ErrInvalidOdds)
}
