package composite

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/skalibog/mfra/internal/analysis/bullbands"
	"github.com/skalibog/mfra/internal/analysis/deviation"
	"github.com/skalibog/mfra/internal/analysis/feargreed"
	"github.com/skalibog/mfra/internal/analysis/funding"
	"github.com/skalibog/mfra/internal/analysis/macro"
	"github.com/skalibog/mfra/internal/analysis/regression"
	"github.com/skalibog/mfra/internal/analysis/rsi"
	"github.com/skalibog/mfra/internal/analysis/smaposition"
	"github.com/skalibog/mfra/internal/assets"
	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/pkg/logger"
	"github.com/skalibog/mfra/pkg/models"
)

// Analyzer объединяет все факторные анализаторы
type Analyzer struct {
	config      config.AnalysisConfig
	weights     models.RiskFactorWeights
	registry    *assets.Registry
	storage     storage.Storage
	rsiAnal     *rsi.Analyzer
	smaAnal     *smaposition.Analyzer
	bandsAnal   *bullbands.Analyzer
	fundingAnal *funding.Analyzer
	fgAnal      *feargreed.Analyzer
	macroAnal   *macro.Analyzer
}

// NewAnalyzer создает новый композитный анализатор
func NewAnalyzer(cfg config.AnalysisConfig, weights models.RiskFactorWeights,
	registry *assets.Registry, store storage.Storage) *Analyzer {
	return &Analyzer{
		config:      cfg,
		weights:     weights,
		registry:    registry,
		storage:     store,
		rsiAnal:     rsi.NewAnalyzer(cfg.RSI),
		smaAnal:     smaposition.NewAnalyzer(cfg.SMA),
		bandsAnal:   bullbands.NewAnalyzer(cfg.BullBands),
		fundingAnal: funding.NewAnalyzer(cfg.Funding),
		fgAnal:      feargreed.NewAnalyzer(cfg.FearGreed),
		macroAnal:   macro.NewAnalyzer(cfg.Macro),
	}
}

// Weights возвращает действующие веса факторов
func (a *Analyzer) Weights() models.RiskFactorWeights {
	return a.weights
}

// GenerateRiskPoints вычисляет текущие точки риска для всех активов
func (a *Analyzer) GenerateRiskPoints(ctx context.Context) (map[string]*models.MultiFactorRiskPoint, error) {
	symbols := a.registry.Symbols()

	results := make(map[string]*models.MultiFactorRiskPoint)
	var wg sync.WaitGroup
	var mutex sync.Mutex

	for _, symbol := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()

			point, err := a.generateForSymbol(ctx, sym)
			if err != nil {
				// Логируем ошибку, но продолжаем для других активов
				logger.Warn("Ошибка расчета риска", zap.String("symbol", sym), zap.Error(err))
				return
			}

			mutex.Lock()
			results[sym] = point
			mutex.Unlock()
		}(symbol)
	}

	wg.Wait()
	return results, nil
}

// supplementaryAnalyzer общий вид факторного анализатора
type supplementaryAnalyzer interface {
	Analyze(ctx context.Context, store storage.Storage, symbol string) (models.RiskFactor, error)
}

// generateForSymbol вычисляет точку риска для одного актива
func (a *Analyzer) generateForSymbol(ctx context.Context, symbol string) (*models.MultiFactorRiskPoint, error) {
	assetCfg, err := a.registry.BySymbol(symbol)
	if err != nil {
		return nil, err
	}

	history, err := a.storage.GetPriceHistory(ctx, symbol, 0)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории цен: %w", err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("нет истории цен для %s", symbol)
	}

	now := history[len(history)-1].Date
	price := history[len(history)-1].Price

	// Регрессионный фактор считается синхронно: от него зависят
	// справедливая цена и отклонение в итоговой точке
	var fairValue, dev float64
	logFactor := unavailable(models.FactorLogRegression)

	model, err := regression.Fit(assetCfg, history)
	if err != nil {
		logger.Warn("Регрессия недоступна", zap.String("symbol", symbol), zap.Error(err))
	} else {
		fairValue = model.FairValue(now)
		risk, d, err := deviation.Normalize(price, fairValue, assetCfg)
		if err != nil {
			logger.Warn("Отклонение недоступно", zap.String("symbol", symbol), zap.Error(err))
		} else {
			dev = d
			logFactor = models.RiskFactor{
				Type:       models.FactorLogRegression,
				Raw:        models.Value(d),
				Normalized: models.Value(risk),
			}
		}
	}

	// Остальные факторы считаются параллельно
	supplementary := []struct {
		typ  models.RiskFactorType
		anal supplementaryAnalyzer
	}{
		{models.FactorRSI, a.rsiAnal},
		{models.FactorSMAPosition, a.smaAnal},
		{models.FactorBullBands, a.bandsAnal},
		{models.FactorFundingRate, a.fundingAnal},
		{models.FactorFearGreed, a.fgAnal},
		{models.FactorMacro, a.macroAnal},
	}

	factors := make([]models.RiskFactor, len(supplementary)+1)
	factors[0] = logFactor

	var wg sync.WaitGroup
	for i, s := range supplementary {
		wg.Add(1)
		go func(idx int, typ models.RiskFactorType, anal supplementaryAnalyzer) {
			defer wg.Done()

			factor, err := anal.Analyze(ctx, a.storage, symbol)
			if err != nil {
				// Недоступный источник данных не подменяется значением
				// по умолчанию: фактор выпадает из композита целиком
				logger.Warn("Фактор недоступен",
					zap.String("symbol", symbol),
					zap.String("factor", string(typ)),
					zap.Error(err))
				factor = unavailable(typ)
			}
			factors[idx+1] = factor

			logger.Debug("COMPOSITE: Фактор рассчитан",
				zap.String("symbol", symbol),
				zap.String("factor", string(typ)),
				zap.Bool("available", factor.IsAvailable()))
		}(i, s.typ, s.anal)
	}
	wg.Wait()

	result, err := Calculate(now, price, fairValue, dev, factors, a.weights)
	if err != nil {
		return nil, fmt.Errorf("композитный расчет для %s: %w", symbol, err)
	}

	// Сохраняем точку риска в хранилище
	if err := a.storage.SaveRiskPoint(ctx, symbol, result); err != nil {
		logger.Warn("Не удалось сохранить точку риска", zap.String("symbol", symbol), zap.Error(err))
	}

	return result, nil
}

// GetRiskHistory возвращает историю точек риска для актива
func (a *Analyzer) GetRiskHistory(ctx context.Context, symbol string, limit int) ([]models.MultiFactorRiskPoint, error) {
	return a.storage.GetRiskHistory(ctx, symbol, limit)
}

// unavailable возвращает недоступный фактор заданного типа
func unavailable(t models.RiskFactorType) models.RiskFactor {
	return models.RiskFactor{
		Type:       t,
		Raw:        models.NoValue(),
		Normalized: models.NoValue(),
	}
}

// dayKey ключ даты с точностью до дня UTC
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
