package deviation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skalibog/mfra/internal/assets"
)

func testConfig() assets.Config {
	return assets.Config{
		Symbol:        "BTC",
		DeviationLow:  -0.8,
		DeviationHigh: 0.8,
	}
}

func TestNormalize_FairPriceIsNeutral(t *testing.T) {
	risk, dev, err := Normalize(50000, 50000, testConfig())
	require.NoError(t, err)
	assert.InDelta(t, 0.5, risk, 1e-12)
	assert.InDelta(t, 0.0, dev, 1e-12)
}

func TestNormalize_UpperBoundSaturates(t *testing.T) {
	cfg := testConfig()

	// Отклонение ровно на верхней границе: риск ровно 1.0
	price := 100.0 * math.Pow(10, cfg.DeviationHigh)
	risk, dev, err := Normalize(price, 100, cfg)
	require.NoError(t, err)
	assert.InDelta(t, cfg.DeviationHigh, dev, 1e-12)
	assert.InDelta(t, 1.0, risk, 1e-12)

	// За границей обрезается, не экстраполируется
	risk, _, err = Normalize(price*10, 100, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1.0, risk)
}

func TestNormalize_LowerBoundSaturates(t *testing.T) {
	cfg := testConfig()

	// Отклонение ровно на нижней границе: риск ровно 0.0
	price := 100.0 * math.Pow(10, cfg.DeviationLow)
	risk, dev, err := Normalize(price, 100, cfg)
	require.NoError(t, err)
	assert.InDelta(t, cfg.DeviationLow, dev, 1e-12)
	assert.InDelta(t, 0.0, risk, 1e-12)

	// За границей обрезается
	risk, _, err = Normalize(price/10, 100, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0.0, risk)
}

func TestNormalize_PiecewiseLinear(t *testing.T) {
	cfg := testConfig()

	// Половина верхней границы: 0.5 + 0.5*0.5 = 0.75
	price := 100.0 * math.Pow(10, 0.4)
	risk, _, err := Normalize(price, 100, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, risk, 1e-12)

	// Половина нижней границы: 0.5 - 0.5*0.5 = 0.25
	price = 100.0 * math.Pow(10, -0.4)
	risk, _, err = Normalize(price, 100, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, risk, 1e-12)
}

func TestNormalize_AsymmetricBounds(t *testing.T) {
	cfg := testConfig()
	cfg.DeviationLow = -1.0
	cfg.DeviationHigh = 0.5

	// dev = +0.5 это верхняя граница, dev = -0.5 только половина нижней
	riskUp, _, err := Normalize(100*math.Pow(10, 0.5), 100, cfg)
	require.NoError(t, err)
	riskDown, _, err := Normalize(100*math.Pow(10, -0.5), 100, cfg)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, riskUp, 1e-12)
	assert.InDelta(t, 0.25, riskDown, 1e-12)
}

func TestNormalize_InvalidInputs(t *testing.T) {
	cfg := testConfig()

	_, _, err := Normalize(100, 0, cfg)
	assert.ErrorIs(t, err, ErrInvalidFairValue)

	_, _, err = Normalize(100, -50, cfg)
	assert.ErrorIs(t, err, ErrInvalidFairValue)

	_, _, err = Normalize(0, 100, cfg)
	assert.ErrorIs(t, err, ErrInvalidFairValue)

	_, _, err = Normalize(-1, 100, cfg)
	assert.ErrorIs(t, err, ErrInvalidFairValue)
}
