package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skalibog/mfra/internal/config"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(config.MacroConfig{WindowDays: 365, Divisor: 3.0})
}

func TestNormalize(t *testing.T) {
	a := newTestAnalyzer()

	// Нулевая z-оценка нейтральна, насыщение на пороге экстремальности
	assert.InDelta(t, 0.5, a.Normalize(0), 1e-12)
	assert.InDelta(t, 0.75, a.Normalize(1.5), 1e-12)
	assert.InDelta(t, 1.0, a.Normalize(3.0), 1e-12)
	assert.InDelta(t, 0.25, a.Normalize(-1.5), 1e-12)
	assert.InDelta(t, 0.0, a.Normalize(-3.0), 1e-12)

	// За порогом обрезается
	assert.Equal(t, 1.0, a.Normalize(4.5))
	assert.Equal(t, 0.0, a.Normalize(-4.5))
}

func TestSeriesZScore_LastValueAgainstHistory(t *testing.T) {
	a := newTestAnalyzer()

	// 30 точек истории со средним 100 и один выброс в конце
	values := make([]float64, 0, 31)
	for i := 0; i < 15; i++ {
		values = append(values, 90, 110)
	}
	values = append(values, 140)

	z, err := a.SeriesZScore(values)
	require.NoError(t, err)
	assert.Greater(t, z, 2.0)
}

func TestSeriesZScore_ConstantSeriesNotSignificant(t *testing.T) {
	a := newTestAnalyzer()

	// Константный ряд: z = 0, без ошибки
	values := make([]float64, 40)
	for i := range values {
		values[i] = 20
	}

	z, err := a.SeriesZScore(values)
	require.NoError(t, err)
	assert.Equal(t, 0.0, z)
}

func TestSeriesZScore_ShortWindow(t *testing.T) {
	a := newTestAnalyzer()

	values := []float64{10, 20, 30}
	_, err := a.SeriesZScore(values)
	assert.Error(t, err)
}
