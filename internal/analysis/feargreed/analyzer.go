package feargreed

import (
	"context"
	"fmt"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/pkg/models"
)

// Analyzer реализует фактор индекса страха и жадности
type Analyzer struct {
	config config.FearGreedConfig
}

// NewAnalyzer создает новый анализатор индекса страха и жадности
func NewAnalyzer(cfg config.FearGreedConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// Normalize переводит значение индекса 0-100 в риск [0,1] через пять
// фиксированных уровней. Отображение не монотонная прямая: экстремальный
// страх в этой модели означает низкий форвардный риск, экстремальная
// жадность — высокий. Численные вклады уровней настраиваются.
func (a *Analyzer) Normalize(value int) float64 {
	switch models.FearGreedLevelOf(value) {
	case models.ExtremeFear:
		return a.config.ExtremeFear
	case models.Fear:
		return a.config.Fear
	case models.NeutralSentiment:
		return a.config.Neutral
	case models.Greed:
		return a.config.Greed
	default:
		return a.config.ExtremeGreed
	}
}

// Analyze вычисляет фактор по последнему значению индекса из хранилища
func (a *Analyzer) Analyze(ctx context.Context, store storage.Storage, _ string) (models.RiskFactor, error) {
	points, err := store.GetFearGreedHistory(ctx, 1)
	if err != nil {
		return models.RiskFactor{}, fmt.Errorf("ошибка получения индекса страха и жадности: %w", err)
	}
	if len(points) == 0 {
		return models.RiskFactor{}, fmt.Errorf("нет данных индекса страха и жадности")
	}

	current := points[0].Value
	return models.RiskFactor{
		Type:       models.FactorFearGreed,
		Raw:        models.Value(float64(current)),
		Normalized: models.Value(a.Normalize(current)),
	}, nil
}
