package rsi

import (
	"context"
	"fmt"

	"github.com/markcheno/go-talib"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/pkg/models"
)

// Analyzer реализует фактор RSI
type Analyzer struct {
	config config.RSIConfig
}

// NewAnalyzer создает новый анализатор RSI
func NewAnalyzer(cfg config.RSIConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Normalize переводит сырое значение RSI 0-100 в риск [0,1].
// Отображение почти линейное: 50 -> 0.5, RSI >= 70 тянет к высокому
// риску, RSI <= 30 к низкому.
func (a *Analyzer) Normalize(raw float64) float64 {
	if raw < 0 {
		raw = 0
	}
	if raw > 100 {
		raw = 100
	}
	return raw / 100
}

// Series вычисляет ряд RSI по ряду цен закрытия.
// Первые period значений не определены, talib отдает их нулями.
func (a *Analyzer) Series(closes []float64) []float64 {
	return talib.Rsi(closes, a.config.Period)
}

// Analyze вычисляет фактор RSI по последним данным из хранилища
func (a *Analyzer) Analyze(ctx context.Context, store storage.Storage, symbol string) (models.RiskFactor, error) {
	history, err := store.GetPriceHistory(ctx, symbol, a.config.Period*10)
	if err != nil {
		return models.RiskFactor{}, fmt.Errorf("ошибка получения истории цен: %w", err)
	}
	if len(history) < a.config.Period+1 {
		return models.RiskFactor{}, fmt.Errorf("недостаточно данных для RSI: %d точек (требуется %d)",
			len(history), a.config.Period+1)
	}

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Price
	}

	series := a.Series(closes)
	last := series[len(series)-1]

	return models.RiskFactor{
		Type:       models.FactorRSI,
		Raw:        models.Value(last),
		Normalized: models.Value(a.Normalize(last)),
	}, nil
}
