// internal/analysis/funding/analyzer.go
package funding

import (
	"context"
	"fmt"
	"math"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/pkg/models"
)

// Analyzer реализует фактор ставки финансирования
type Analyzer struct {
	config config.FundingConfig
}

// NewAnalyzer создает новый анализатор ставок финансирования
func NewAnalyzer(cfg config.FundingConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Normalize переводит ставку финансирования в риск [0,1].
// Положительная ставка (длинные позиции платят коротким) — перегрев,
// вклад риска растет; отрицательная снижает. Линейно с насыщением
// на config.Saturation (обычно 0.01): более экстремальные значения
// обрезаются, не экстраполируются.
func (a *Analyzer) Normalize(rate float64) float64 {
	scaled := math.Max(-1, math.Min(1, rate/a.config.Saturation))
	return 0.5 + 0.5*scaled
}

// Analyze вычисляет фактор по последней ставке из хранилища
func (a *Analyzer) Analyze(ctx context.Context, store storage.Storage, symbol string) (models.RiskFactor, error) {
	rates, err := store.GetFundingRates(ctx, symbol, 1)
	if err != nil {
		return models.RiskFactor{}, fmt.Errorf("ошибка получения ставок финансирования: %w", err)
	}
	if len(rates) == 0 {
		return models.RiskFactor{}, fmt.Errorf("нет данных о ставках финансирования для %s", symbol)
	}

	current := rates[0].Rate
	return models.RiskFactor{
		Type:       models.FactorFundingRate,
		Raw:        models.Value(current),
		Normalized: models.Value(a.Normalize(current)),
	}, nil
}
