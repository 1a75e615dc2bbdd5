package smaposition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skalibog/mfra/internal/config"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(config.SMAConfig{PeriodDays: 200, Saturation: 0.5})
}

func TestNormalize_PriceAtSMAIsNeutral(t *testing.T) {
	a := newTestAnalyzer()

	risk, err := a.Normalize(100, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, risk, 1e-12)
}

func TestNormalize_PriceAboveSMALowersRisk(t *testing.T) {
	a := newTestAnalyzer()

	// Дистанция +25% при насыщении 50%: риск 0.5 - 0.5*0.5 = 0.25
	risk, err := a.Normalize(125, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, risk, 1e-12)

	// На уровне насыщения риск достигает нуля
	risk, err = a.Normalize(150, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, risk, 1e-12)

	// За уровнем насыщения обрезается
	risk, err = a.Normalize(300, 100)
	require.NoError(t, err)
	assert.Equal(t, 0.0, risk)
}

func TestNormalize_PriceBelowSMARaisesRisk(t *testing.T) {
	a := newTestAnalyzer()

	// Дистанция -25%: риск 0.5 + 0.5*0.5 = 0.75
	risk, err := a.Normalize(75, 100)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, risk, 1e-12)

	// Дистанция -50% и глубже: насыщение на 1.0
	risk, err = a.Normalize(50, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, risk, 1e-12)

	risk, err = a.Normalize(10, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, risk)
}

func TestNormalize_InvalidSMA(t *testing.T) {
	a := newTestAnalyzer()

	_, err := a.Normalize(100, 0)
	assert.ErrorIs(t, err, ErrInvalidSMA)

	_, err = a.Normalize(100, -10)
	assert.ErrorIs(t, err, ErrInvalidSMA)
}
