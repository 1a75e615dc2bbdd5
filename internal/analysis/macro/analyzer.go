package macro

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/skalibog/mfra/internal/analysis/statistics"
	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/pkg/logger"
	"github.com/skalibog/mfra/pkg/models"
)

// Ряды макро-фактора. VIX и DXY оба риск-положительны:
// рост любого из них исторически обратно коррелирует с активом.
var factorSeries = []string{"VIX", "DXY"}

// minWindow минимальная длина окна для осмысленной z-оценки
const minWindow = 30

// Analyzer реализует макро-фактор: усредненная z-оценка VIX и DXY
type Analyzer struct {
	config config.MacroConfig
}

// NewAnalyzer создает новый макро-анализатор
func NewAnalyzer(cfg config.MacroConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Normalize переводит усредненную z-оценку в риск [0,1].
// Насыщение на config.Divisor (по умолчанию 3.0 — порог экстремальности,
// единый с классификацией MarketSignal).
func (a *Analyzer) Normalize(zAvg float64) float64 {
	scaled := math.Max(-1, math.Min(1, zAvg/a.config.Divisor))
	return 0.5 + 0.5*scaled
}

// SeriesZScore вычисляет z-оценку последнего значения ряда относительно
// предшествующей истории. Константный ряд трактуется как "не значимо":
// z = 0, без ошибки.
func (a *Analyzer) SeriesZScore(values []float64) (float64, error) {
	if len(values) < minWindow {
		return 0, fmt.Errorf("короткое окно макро-ряда: %d точек (требуется %d)", len(values), minWindow)
	}

	history := values[:len(values)-1]
	current := values[len(values)-1]

	result, err := statistics.ZScore(history, current)
	if err != nil {
		if errors.Is(err, statistics.ErrZeroVariance) {
			return 0, nil
		}
		return 0, err
	}
	return result.ZScore, nil
}

// Analyze вычисляет макро-фактор по рядам из хранилища
func (a *Analyzer) Analyze(ctx context.Context, store storage.Storage, _ string) (models.RiskFactor, error) {
	var sum float64
	for _, series := range factorSeries {
		points, err := store.GetMacroSeries(ctx, series, a.config.WindowDays)
		if err != nil {
			return models.RiskFactor{}, fmt.Errorf("ошибка получения ряда %s: %w", series, err)
		}

		values := make([]float64, len(points))
		for i, p := range points {
			values[i] = p.Value
		}

		z, err := a.SeriesZScore(values)
		if err != nil {
			return models.RiskFactor{}, fmt.Errorf("ряд %s: %w", series, err)
		}

		logger.Debug("Макро z-оценка",
			zap.String("series", series),
			zap.Float64("z", z),
			zap.String("signal", models.SignalOf(z).String()))
		sum += z
	}

	zAvg := sum / float64(len(factorSeries))
	return models.RiskFactor{
		Type:       models.FactorMacro,
		Raw:        models.Value(zAvg),
		Normalized: models.Value(a.Normalize(zAvg)),
	}, nil
}
