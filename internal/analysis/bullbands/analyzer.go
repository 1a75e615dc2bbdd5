package bullbands

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

// ErrInvalidBand неположительное значение полосы поддержки
var ErrInvalidBand = errors.New("некорректное значение полосы поддержки")

const daysPerWeek = 7

// Analyzer реализует фактор полосы поддержки бычьего рынка:
// среднее между 20-недельной SMA и 21-недельной EMA по дневным ценам
type Analyzer struct {
	config config.BullBandsConfig
}

// NewAnalyzer создает новый анализатор полосы поддержки
func NewAnalyzer(cfg config.BullBandsConfig) *Analyzer {
	return &Analyzer{
		config: cfg,
	}
}

// SMAPeriodDays период SMA полосы в днях
func (a *Analyzer) SMAPeriodDays() int {
	return a.config.SMAWeeks * daysPerWeek
}

// EMAPeriodDays период EMA полосы в днях
func (a *Analyzer) EMAPeriodDays() int {
	return a.config.EMAWeeks * daysPerWeek
}

// Normalize переводит относительную дистанцию цены к полосе в риск [0,1].
// Чем дальше цена над полосой, тем выше риск; дистанция насыщается
// на config.Saturation.
func (a *Analyzer) Normalize(price, smaBand, emaBand float64) (float64, error) {
	band := (smaBand + emaBand) / 2
	if band <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBand, band)
	}

	dist := (price - band) / band
	scaled := math.Max(-1, math.Min(1, dist/a.config.Saturation))
	return 0.5 + 0.5*scaled, nil
}

// Series вычисляет ряды SMA и EMA полосы по ряду цен закрытия
func (a *Analyzer) Series(closes []float64) (sma, ema []float64) {
	return talib.Sma(closes, a.SMAPeriodDays()), talib.Ema(closes, a.EMAPeriodDays())
}

// Analyze вычисляет фактор полосы поддержки по данным из хранилища
func (a *Analyzer) Analyze(ctx context.Context, store storage.Storage, symbol string) (models.RiskFactor, error) {
	need := a.EMAPeriodDays()
	if a.SMAPeriodDays() > need {
		need = a.SMAPeriodDays()
	}

	history, err := store.GetPriceHistory(ctx, symbol, need*2)
	if err != nil {
		return models.RiskFactor{}, fmt.Errorf("ошибка получения истории цен: %w", err)
	}
	if len(history) < need {
		return models.RiskFactor{}, fmt.Errorf("недостаточно данных для полосы поддержки: %d точек (требуется %d)",
			len(history), need)
	}

	closes := make([]float64, len(history))
	for i, p := range history {
		closes[i] = p.Price
	}

	sma, ema := a.Series(closes)
	lastSMA := sma[len(sma)-1]
	lastEMA := ema[len(ema)-1]
	price := closes[len(closes)-1]

	risk, err := a.Normalize(price, lastSMA, lastEMA)
	if err != nil {
		return models.RiskFactor{}, err
	}

	band := (lastSMA + lastEMA) / 2
	dist := (price - band) / band

	return models.RiskFactor{
		Type:       models.FactorBullBands,
		Raw:        models.Value(dist),
		Normalized: models.Value(risk),
	}, nil
}
