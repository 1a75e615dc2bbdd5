package composite

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skalibog/mfra/internal/analysis/deviation"
	"github.com/skalibog/mfra/internal/analysis/regression"
	"github.com/skalibog/mfra/internal/assets"
	"github.com/skalibog/mfra/pkg/models"
)

// Сквозной путь расчета: история цены -> регрессия -> отклонение -> композит
func TestPipeline_RegressionToRiskPoint(t *testing.T) {
	cfg := assets.Config{
		Symbol:        "BTC",
		GeckoID:       "bitcoin",
		OriginDate:    time.Date(2009, 1, 3, 0, 0, 0, 0, time.UTC),
		DeviationLow:  -0.8,
		DeviationHigh: 0.8,
		Confidence:    9,
	}

	// Идеальный экспоненциальный рост: цена всегда равна справедливой
	points := make([]models.PricePoint, 0, 1000)
	for d := 0; d < 1000; d++ {
		points = append(points, models.PricePoint{
			Date:  cfg.OriginDate.AddDate(0, 0, d),
			Price: math.Pow(10, 0.002*float64(d)+1.0),
		})
	}

	model, err := regression.Fit(cfg, points)
	require.NoError(t, err)

	last := points[len(points)-1]
	fair := model.FairValue(last.Date)
	assert.InDelta(t, last.Price, fair, last.Price*1e-9)

	risk, dev, err := deviation.Normalize(last.Price, fair, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, risk, 1e-9)
	assert.InDelta(t, 0.0, dev, 1e-9)

	point, err := Calculate(last.Date, last.Price, fair, dev, []models.RiskFactor{
		{Type: models.FactorLogRegression, Raw: models.Value(dev), Normalized: models.Value(risk)},
	}, models.DefaultWeights())
	require.NoError(t, err)

	assert.InDelta(t, 0.5, point.RiskLevel, 1e-9)
	assert.Equal(t, models.RiskNeutral, point.Category)
}

// Цена выше справедливой на границе насыщения дает экстремальный риск
func TestPipeline_OvervaluedAsset(t *testing.T) {
	cfg := assets.Config{
		Symbol:        "SOL",
		GeckoID:       "solana",
		OriginDate:    time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC),
		DeviationLow:  -1.0,
		DeviationHigh: 1.0,
		Confidence:    5,
	}

	points := make([]models.PricePoint, 0, 500)
	for d := 0; d < 500; d++ {
		points = append(points, models.PricePoint{
			Date:  cfg.OriginDate.AddDate(0, 0, d),
			Price: math.Pow(10, 0.003*float64(d)),
		})
	}

	model, err := regression.Fit(cfg, points)
	require.NoError(t, err)

	date := cfg.OriginDate.AddDate(0, 0, 600)
	fair := model.FairValue(date)

	// Цена на порядок выше справедливой: отклонение на границе
	risk, dev, err := deviation.Normalize(fair*10, fair, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, dev, 1e-9)
	assert.InDelta(t, 1.0, risk, 1e-9)

	point, err := Calculate(date, fair*10, fair, dev, []models.RiskFactor{
		{Type: models.FactorLogRegression, Raw: models.Value(dev), Normalized: models.Value(risk)},
	}, models.DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, models.RiskExtreme, point.Category)
}
