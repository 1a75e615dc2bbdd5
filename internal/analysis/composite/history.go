package composite

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skalibog/mfra/internal/analysis/deviation"
	"github.com/skalibog/mfra/internal/analysis/regression"
	"github.com/skalibog/mfra/pkg/logger"
	"github.com/skalibog/mfra/pkg/models"
)

// macroWindow трейлинг-окно макро-ряда до даты включительно
type macroWindow struct {
	dates  []string
	values []float64
}

// ComputeHistory пересчитывает всю историческую серию риска для актива.
//
// Ряды загружаются из хранилища один раз, индикаторные ряды считаются
// заранее, регрессия подгоняется один раз по всей истории. Ошибки
// отдельных дат логируются и пропускаются — многолетний пересчет никогда
// не прерывается целиком, на выходе разреженная серия с задокументированными
// пробелами в логе.
func (a *Analyzer) ComputeHistory(ctx context.Context, symbol string) ([]models.MultiFactorRiskPoint, error) {
	assetCfg, err := a.registry.BySymbol(symbol)
	if err != nil {
		return nil, err
	}

	history, err := a.storage.GetPriceHistory(ctx, symbol, 0)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории цен: %w", err)
	}

	model, err := regression.Fit(assetCfg, history)
	if err != nil {
		return nil, fmt.Errorf("регрессия для %s: %w", symbol, err)
	}

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Price
	}

	// Индикаторные ряды за один проход
	rsiSeries := a.rsiAnal.Series(closes)
	smaSeries := a.smaAnal.Series(closes)
	bandSMA, bandEMA := a.bandsAnal.Series(closes)

	fundingByDay, err := a.loadFundingByDay(ctx, symbol)
	if err != nil {
		logger.Warn("История финансирования недоступна", zap.String("symbol", symbol), zap.Error(err))
	}
	fearGreedByDay, err := a.loadFearGreedByDay(ctx)
	if err != nil {
		logger.Warn("История индекса страха и жадности недоступна", zap.Error(err))
	}
	macroSeries, err := a.loadMacroSeries(ctx)
	if err != nil {
		logger.Warn("Макро-ряды недоступны", zap.Error(err))
	}

	rsiWarmup := a.config.RSI.Period
	smaWarmup := a.config.SMA.PeriodDays - 1
	bandWarmup := a.bandsAnal.EMAPeriodDays() - 1
	if sw := a.bandsAnal.SMAPeriodDays() - 1; sw > bandWarmup {
		bandWarmup = sw
	}

	var points []models.MultiFactorRiskPoint
	var skipped int

	for i, p := range history {
		day := dayKey(p.Date)
		factors := make([]models.RiskFactor, 0, 7)

		// Регрессионный фактор
		fairValue := model.FairValue(p.Date)
		logFactor := unavailable(models.FactorLogRegression)
		var dev float64
		risk, d, err := deviation.Normalize(p.Price, fairValue, assetCfg)
		if err != nil {
			logger.Warn("Отклонение недоступно",
				zap.String("symbol", symbol), zap.String("date", day), zap.Error(err))
		} else {
			dev = d
			logFactor = models.RiskFactor{
				Type:       models.FactorLogRegression,
				Raw:        models.Value(d),
				Normalized: models.Value(risk),
			}
		}
		factors = append(factors, logFactor)

		// RSI: первые period значений не определены
		rsiFactor := unavailable(models.FactorRSI)
		if i >= rsiWarmup {
			raw := rsiSeries[i]
			rsiFactor = models.RiskFactor{
				Type:       models.FactorRSI,
				Raw:        models.Value(raw),
				Normalized: models.Value(a.rsiAnal.Normalize(raw)),
			}
		}
		factors = append(factors, rsiFactor)

		// Положение к 200-дневной SMA
		smaFactor := unavailable(models.FactorSMAPosition)
		if i >= smaWarmup && smaSeries[i] > 0 {
			if norm, err := a.smaAnal.Normalize(p.Price, smaSeries[i]); err == nil {
				smaFactor = models.RiskFactor{
					Type:       models.FactorSMAPosition,
					Raw:        models.Value((p.Price - smaSeries[i]) / smaSeries[i]),
					Normalized: models.Value(norm),
				}
			}
		}
		factors = append(factors, smaFactor)

		// Полоса поддержки бычьего рынка
		bandFactor := unavailable(models.FactorBullBands)
		if i >= bandWarmup {
			if norm, err := a.bandsAnal.Normalize(p.Price, bandSMA[i], bandEMA[i]); err == nil {
				band := (bandSMA[i] + bandEMA[i]) / 2
				bandFactor = models.RiskFactor{
					Type:       models.FactorBullBands,
					Raw:        models.Value((p.Price - band) / band),
					Normalized: models.Value(norm),
				}
			}
		}
		factors = append(factors, bandFactor)

		// Ставка финансирования на дату
		fundingFactor := unavailable(models.FactorFundingRate)
		if rate, ok := fundingByDay[day]; ok {
			fundingFactor = models.RiskFactor{
				Type:       models.FactorFundingRate,
				Raw:        models.Value(rate),
				Normalized: models.Value(a.fundingAnal.Normalize(rate)),
			}
		}
		factors = append(factors, fundingFactor)

		// Индекс страха и жадности на дату
		fgFactor := unavailable(models.FactorFearGreed)
		if value, ok := fearGreedByDay[day]; ok {
			fgFactor = models.RiskFactor{
				Type:       models.FactorFearGreed,
				Raw:        models.Value(float64(value)),
				Normalized: models.Value(a.fgAnal.Normalize(value)),
			}
		}
		factors = append(factors, fgFactor)

		// Макро-фактор: z-оценки по трейлинг-окну каждого ряда
		factors = append(factors, a.macroFactorAt(macroSeries, day))

		point, err := Calculate(p.Date, p.Price, fairValue, dev, factors, a.weights)
		if err != nil {
			// Ошибка одной даты не прерывает пересчет
			logger.Warn("Дата пропущена",
				zap.String("symbol", symbol), zap.String("date", day), zap.Error(err))
			skipped++
			continue
		}

		if err := a.storage.SaveRiskPoint(ctx, symbol, point); err != nil {
			logger.Warn("Не удалось сохранить точку риска",
				zap.String("symbol", symbol), zap.String("date", day), zap.Error(err))
		}
		points = append(points, *point)
	}

	logger.Info("Пересчет истории риска завершен",
		zap.String("symbol", symbol),
		zap.Int("points", len(points)),
		zap.Int("skipped", skipped))
	return points, nil
}

// loadFundingByDay строит карту "день -> ставка" по истории финансирования
func (a *Analyzer) loadFundingByDay(ctx context.Context, symbol string) (map[string]float64, error) {
	rates, err := a.storage.GetFundingRates(ctx, symbol, 10000)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]float64, len(rates))
	// Записи идут от свежих к старым: первая запись дня побеждает
	for _, r := range rates {
		day := dayKey(r.Timestamp)
		if _, ok := byDay[day]; !ok {
			byDay[day] = r.Rate
		}
	}
	return byDay, nil
}

// loadFearGreedByDay строит карту "день -> значение индекса"
func (a *Analyzer) loadFearGreedByDay(ctx context.Context) (map[string]int, error) {
	points, err := a.storage.GetFearGreedHistory(ctx, 0)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int, len(points))
	for _, p := range points {
		day := dayKey(p.Date)
		if _, ok := byDay[day]; !ok {
			byDay[day] = p.Value
		}
	}
	return byDay, nil
}

// loadMacroSeries загружает макро-ряды целиком, по возрастанию даты
func (a *Analyzer) loadMacroSeries(ctx context.Context) (map[string]macroWindow, error) {
	out := make(map[string]macroWindow)
	for _, series := range []string{"VIX", "DXY"} {
		points, err := a.storage.GetMacroSeries(ctx, series, 0)
		if err != nil {
			return nil, err
		}

		w := macroWindow{
			dates:  make([]string, len(points)),
			values: make([]float64, len(points)),
		}
		for i, p := range points {
			w.dates[i] = dayKey(p.Date)
			w.values[i] = p.Value
		}
		out[series] = w
	}
	return out, nil
}

// macroFactorAt вычисляет макро-фактор на дату по трейлинг-окнам рядов
func (a *Analyzer) macroFactorAt(series map[string]macroWindow, day string) models.RiskFactor {
	if len(series) == 0 {
		return unavailable(models.FactorMacro)
	}

	var sum float64
	for _, w := range series {
		// Последний индекс с датой не позже текущей
		end := upperBound(w.dates, day)
		if end == 0 {
			return unavailable(models.FactorMacro)
		}

		start := end - a.config.Macro.WindowDays
		if start < 0 {
			start = 0
		}

		z, err := a.macroAnal.SeriesZScore(w.values[start:end])
		if err != nil {
			return unavailable(models.FactorMacro)
		}
		sum += z
	}

	zAvg := sum / float64(len(series))
	return models.RiskFactor{
		Type:       models.FactorMacro,
		Raw:        models.Value(zAvg),
		Normalized: models.Value(a.macroAnal.Normalize(zAvg)),
	}
}

// upperBound возвращает количество элементов отсортированного ряда
// с датой не позже заданной
func upperBound(dates []string, day string) int {
	lo, hi := 0, len(dates)
	for lo < hi {
		mid := (lo + hi) / 2
		if dates[mid] <= day {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
