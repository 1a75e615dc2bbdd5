package regression

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skalibog/mfra/internal/assets"
	"github.com/skalibog/mfra/pkg/models"
)

func btcConfig() assets.Config {
	return assets.Config{
		Symbol:        "BTC",
		GeckoID:       "bitcoin",
		OriginDate:    time.Date(2009, 1, 3, 0, 0, 0, 0, time.UTC),
		DeviationLow:  -0.8,
		DeviationHigh: 0.8,
		Confidence:    9,
	}
}

// exponentialSeries строит ряд price = 10^(slope*t + intercept)
func exponentialSeries(origin time.Time, days int, slope, intercept float64) []models.PricePoint {
	points := make([]models.PricePoint, 0, days)
	for t := 0; t < days; t++ {
		points = append(points, models.PricePoint{
			Date:  origin.AddDate(0, 0, t),
			Price: math.Pow(10, slope*float64(t)+intercept),
		})
	}
	return points
}

func TestFit_RecoversExactExponential(t *testing.T) {
	cfg := btcConfig()
	points := exponentialSeries(cfg.OriginDate, 1000, 0.002, 1.0)

	model, err := Fit(cfg, points)
	require.NoError(t, err)

	assert.InDelta(t, 0.002, model.Slope, 1e-9)
	assert.InDelta(t, 1.0, model.Intercept, 1e-9)
	assert.Equal(t, 1000, model.Points)
	assert.Equal(t, cfg.OriginDate, model.Origin)

	// FairValue на t=500: 10^(0.002*500 + 1) = 10^2 = 100
	fair := model.FairValue(cfg.OriginDate.AddDate(0, 0, 500))
	assert.InDelta(t, 100.0, fair, 1e-6)
}

func TestFit_Deterministic(t *testing.T) {
	cfg := btcConfig()
	points := exponentialSeries(cfg.OriginDate, 365, 0.0015, 2.0)

	first, err := Fit(cfg, points)
	require.NoError(t, err)
	second, err := Fit(cfg, points)
	require.NoError(t, err)

	assert.Equal(t, first.Slope, second.Slope)
	assert.Equal(t, first.Intercept, second.Intercept)
}

func TestFit_ExcludesInvalidPoints(t *testing.T) {
	cfg := btcConfig()
	points := exponentialSeries(cfg.OriginDate, 100, 0.002, 1.0)

	// Точки с неположительной ценой и точки до origin не должны
	// влиять на подгонку
	dirty := append([]models.PricePoint{
		{Date: cfg.OriginDate.AddDate(0, 0, -30), Price: 999999},
		{Date: cfg.OriginDate.AddDate(0, 0, 10), Price: 0},
		{Date: cfg.OriginDate.AddDate(0, 0, 20), Price: -5},
	}, points...)

	clean, err := Fit(cfg, points)
	require.NoError(t, err)
	model, err := Fit(cfg, dirty)
	require.NoError(t, err)

	assert.Equal(t, clean.Slope, model.Slope)
	assert.Equal(t, clean.Intercept, model.Intercept)
	assert.Equal(t, 100, model.Points)
}

func TestFit_InsufficientData(t *testing.T) {
	cfg := btcConfig()

	_, err := Fit(cfg, nil)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Fit(cfg, []models.PricePoint{
		{Date: cfg.OriginDate.AddDate(0, 0, 1), Price: 100},
	})
	assert.ErrorIs(t, err, ErrInsufficientData)

	// Две точки, но обе невалидные
	_, err = Fit(cfg, []models.PricePoint{
		{Date: cfg.OriginDate.AddDate(0, 0, -1), Price: 100},
		{Date: cfg.OriginDate.AddDate(0, 0, 1), Price: 0},
	})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestFit_DegenerateInput(t *testing.T) {
	cfg := btcConfig()
	date := cfg.OriginDate.AddDate(0, 0, 42)

	// Все точки на одной дате: дисперсия оси времени нулевая
	_, err := Fit(cfg, []models.PricePoint{
		{Date: date, Price: 100},
		{Date: date, Price: 110},
		{Date: date, Price: 120},
	})
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestFairValue_ExtrapolatesForward(t *testing.T) {
	cfg := btcConfig()
	points := exponentialSeries(cfg.OriginDate, 500, 0.002, 1.0)

	model, err := Fit(cfg, points)
	require.NoError(t, err)

	// Дата за пределами истории: 10^(0.002*2000 + 1) = 10^5
	fair := model.FairValue(cfg.OriginDate.AddDate(0, 0, 2000))
	assert.InDelta(t, 100000.0, fair, 1e-3)
}
