package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skalibog/mfra/pkg/models"
)

func TestMeanAndStdDev(t *testing.T) {
	history := []float64{90, 100, 110}

	assert.InDelta(t, 100.0, Mean(history), 1e-12)
	// Выборочное отклонение (n-1): sqrt((100+0+100)/2) = 10
	assert.InDelta(t, 10.0, StdDev(history), 1e-12)

	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, StdDev([]float64{42}))
}

func TestZScore_Significance(t *testing.T) {
	history := []float64{90, 100, 110}

	// (121 - 100) / 10 = 2.1: значимо, но не экстремально
	result, err := ZScore(history, 121)
	require.NoError(t, err)
	assert.InDelta(t, 2.1, result.ZScore, 1e-12)
	assert.InDelta(t, 100.0, result.Mean, 1e-12)
	assert.InDelta(t, 10.0, result.StdDev, 1e-12)
	assert.True(t, result.IsSignificant)
	assert.False(t, result.IsExtreme)
	assert.Equal(t, models.SignalSignificant, result.Signal())

	// (131 - 100) / 10 = 3.1: экстремально
	result, err = ZScore(history, 131)
	require.NoError(t, err)
	assert.InDelta(t, 3.1, result.ZScore, 1e-12)
	assert.True(t, result.IsSignificant)
	assert.True(t, result.IsExtreme)
	assert.Equal(t, models.SignalExtreme, result.Signal())

	// В пределах нормы
	result, err = ZScore(history, 105)
	require.NoError(t, err)
	assert.False(t, result.IsSignificant)
	assert.False(t, result.IsExtreme)
	assert.Equal(t, models.SignalNormal, result.Signal())
}

func TestZScore_NegativeDirection(t *testing.T) {
	history := []float64{90, 100, 110}

	// Пороги симметричны по модулю
	result, err := ZScore(history, 79)
	require.NoError(t, err)
	assert.InDelta(t, -2.1, result.ZScore, 1e-12)
	assert.True(t, result.IsSignificant)
	assert.False(t, result.IsExtreme)
}

func TestZScore_ZeroVariance(t *testing.T) {
	_, err := ZScore([]float64{50, 50, 50}, 60)
	assert.ErrorIs(t, err, ErrZeroVariance)
}

func TestZScore_EmptySeries(t *testing.T) {
	_, err := ZScore(nil, 60)
	assert.ErrorIs(t, err, ErrEmptySeries)
}

func TestSDBands(t *testing.T) {
	bands, err := SDBands([]float64{90, 100, 110})
	require.NoError(t, err)

	assert.InDelta(t, 100.0, bands.Mean, 1e-12)
	assert.InDelta(t, 110.0, bands.Upper1, 1e-12)
	assert.InDelta(t, 120.0, bands.Upper2, 1e-12)
	assert.InDelta(t, 130.0, bands.Upper3, 1e-12)
	assert.InDelta(t, 90.0, bands.Lower1, 1e-12)
	assert.InDelta(t, 80.0, bands.Lower2, 1e-12)
	assert.InDelta(t, 70.0, bands.Lower3, 1e-12)

	_, err = SDBands(nil)
	assert.ErrorIs(t, err, ErrEmptySeries)
}
