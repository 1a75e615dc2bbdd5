package smaposition

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/pkg/models"
)

// ErrInvalidSMA неположительное значение скользящей средней
var ErrInvalidSMA = errors.New("некорректное значение SMA")

// Analyzer реализует фактор положения цены относительно 200-дневной SMA
type Analyzer struct {
	config config.SMAConfig
}

// NewAnalyzer создает новый анализатор положения цены
func NewAnalyzer(cfg config.SMAConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Normalize переводит относительную дистанцию цены к SMA в риск [0,1].
// Направление у этого фактора обратное: цена выше SMA — трендовая
// поддержка, вклад риска снижается; цена ниже — вклад растет.
// Дистанция насыщается на config.Saturation.
func (a *Analyzer) Normalize(price, sma float64) (float64, error) {
	if sma <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSMA, sma)
	}

	dist := (price - sma) / sma
	scaled := math.Max(-1, math.Min(1, dist/a.config.Saturation))
	return 0.5 - 0.5*scaled, nil
}

// Series вычисляет ряд SMA по ряду цен закрытия
func (a *Analyzer) Series(closes []float64) []float64 {
	return talib.Sma(closes, a.config.PeriodDays)
}

// Analyze вычисляет фактор положения цены по данным из хранилища
func (a *Analyzer) Analyze(ctx context.Context, store storage.Storage, symbol string) (models.RiskFactor, error) {
	history, err := store.GetPriceHistory(ctx, symbol, a.config.PeriodDays*2)
	if err != nil {
		return models.RiskFactor{}, fmt.Errorf("ошибка получения истории цен: %w", err)
	}
	if len(history) < a.config.PeriodDays {
		return models.RiskFactor{}, fmt.Errorf("недостаточно данных для SMA: %d точек (требуется %d)",
			len(history), a.config.PeriodDays)
	}

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Price
	}

	series := a.Series(closes)
	sma := series[len(series)-1]
	price := closes[len(closes)-1]

	risk, err := a.Normalize(price, sma)
	if err != nil {
		return models.RiskFactor{}, err
	}
	dist := (price - sma) / sma

	return models.RiskFactor{
		Type:       models.FactorSMAPosition,
		Raw:        models.Value(dist),
		Normalized: models.Value(risk),
	}, nil
}
