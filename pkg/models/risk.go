package models

import (
	"time"
)

// RiskFactorType тип фактора риска
type RiskFactorType string

const (
	FactorLogRegression RiskFactorType = "log_regression"
	FactorRSI           RiskFactorType = "rsi"
	FactorSMAPosition   RiskFactorType = "sma_position"
	FactorBullBands     RiskFactorType = "bull_bands"
	FactorFundingRate   RiskFactorType = "funding_rate"
	FactorFearGreed     RiskFactorType = "fear_greed"
	FactorMacro         RiskFactorType = "macro"
)

// factorInfo описание фактора и его вес по умолчанию
type factorInfo struct {
	weight      float64
	description string
}

// Единая таблица диспетчеризации по типам факторов,
// вместо разрозненных switch по всему коду
var factorTable = map[RiskFactorType]factorInfo{
	FactorLogRegression: {0.35, "Отклонение от справедливой цены логарифмической регрессии"},
	FactorRSI:           {0.12, "Индекс относительной силы (14 периодов)"},
	FactorSMAPosition:   {0.12, "Положение цены относительно 200-дневной SMA"},
	FactorBullBands:     {0.11, "Дистанция до полосы поддержки бычьего рынка (20w SMA / 21w EMA)"},
	FactorFundingRate:   {0.10, "Ставка финансирования бессрочных фьючерсов"},
	FactorFearGreed:     {0.10, "Индекс страха и жадности"},
	FactorMacro:         {0.10, "Макро-риск: z-оценки VIX и DXY"},
}

// DefaultWeight возвращает вес фактора по умолчанию
func (t RiskFactorType) DefaultWeight() float64 {
	return factorTable[t].weight
}

// Description возвращает описание фактора
func (t RiskFactorType) Description() string {
	return factorTable[t].description
}

// AllFactorTypes возвращает все типы факторов в фиксированном порядке
func AllFactorTypes() []RiskFactorType {
	return []RiskFactorType{
		FactorLogRegression,
		FactorRSI,
		FactorSMAPosition,
		FactorBullBands,
		FactorFundingRate,
		FactorFearGreed,
		FactorMacro,
	}
}

// FactorValue значение фактора: либо доступно, либо источник данных
// на эту дату отсутствовал. Отсутствие никогда не подменяется нулем.
type FactorValue struct {
	value     float64
	available bool
}

// Value создает доступное значение фактора
func Value(v float64) FactorValue {
	return FactorValue{value: v, available: true}
}

// NoValue создает недоступное значение фактора
func NoValue() FactorValue {
	return FactorValue{}
}

// IsAvailable сообщает, доступно ли значение
func (f FactorValue) IsAvailable() bool {
	return f.available
}

// Get возвращает значение и признак доступности
func (f FactorValue) Get() (float64, bool) {
	return f.value, f.available
}

// RiskFactor представляет один фактор композитного риска
type RiskFactor struct {
	Type       RiskFactorType
	Raw        FactorValue
	Normalized FactorValue
	Weight     float64
}

// IsAvailable сообщает, участвует ли фактор в композите
func (f RiskFactor) IsAvailable() bool {
	return f.Normalized.IsAvailable()
}

// RiskFactorWeights веса семи факторов, в сумме должны давать 1.0
type RiskFactorWeights struct {
	LogRegression float64 `yaml:"log_regression"`
	RSI           float64 `yaml:"rsi"`
	SMAPosition   float64 `yaml:"sma_position"`
	BullBands     float64 `yaml:"bull_bands"`
	FundingRate   float64 `yaml:"funding_rate"`
	FearGreed     float64 `yaml:"fear_greed"`
	Macro         float64 `yaml:"macro"`
}

// DefaultWeights возвращает веса по умолчанию
func DefaultWeights() RiskFactorWeights {
	return RiskFactorWeights{
		LogRegression: 0.35,
		RSI:           0.12,
		SMAPosition:   0.12,
		BullBands:     0.11,
		FundingRate:   0.10,
		FearGreed:     0.10,
		Macro:         0.10,
	}
}

// ConservativeWeights пресет с упором на регрессионную модель
func ConservativeWeights() RiskFactorWeights {
	return RiskFactorWeights{
		LogRegression: 0.50,
		RSI:           0.10,
		SMAPosition:   0.10,
		BullBands:     0.08,
		FundingRate:   0.06,
		FearGreed:     0.08,
		Macro:         0.08,
	}
}

// SentimentWeights пресет с упором на сентимент и деривативы
func SentimentWeights() RiskFactorWeights {
	return RiskFactorWeights{
		LogRegression: 0.20,
		RSI:           0.12,
		SMAPosition:   0.10,
		BullBands:     0.08,
		FundingRate:   0.15,
		FearGreed:     0.20,
		Macro:         0.15,
	}
}

// PresetWeights возвращает именованный пресет весов
func PresetWeights(name string) (RiskFactorWeights, bool) {
	switch name {
	case "", "default":
		return DefaultWeights(), true
	case "conservative":
		return ConservativeWeights(), true
	case "sentiment":
		return SentimentWeights(), true
	}
	return RiskFactorWeights{}, false
}

// Sum возвращает сумму весов
func (w RiskFactorWeights) Sum() float64 {
	return w.LogRegression + w.RSI + w.SMAPosition + w.BullBands +
		w.FundingRate + w.FearGreed + w.Macro
}

// IsValid проверяет, что сумма весов равна 1.0 с допуском 0.001.
// Проверка структурная: невалидные веса не запрещены на этапе создания.
func (w RiskFactorWeights) IsValid() bool {
	diff := w.Sum() - 1.0
	return diff <= 0.001 && diff >= -0.001
}

// Weight возвращает вес для типа фактора
func (w RiskFactorWeights) Weight(t RiskFactorType) float64 {
	switch t {
	case FactorLogRegression:
		return w.LogRegression
	case FactorRSI:
		return w.RSI
	case FactorSMAPosition:
		return w.SMAPosition
	case FactorBullBands:
		return w.BullBands
	case FactorFundingRate:
		return w.FundingRate
	case FactorFearGreed:
		return w.FearGreed
	case FactorMacro:
		return w.Macro
	}
	return 0
}

// RiskCategory категория риска, шесть уровней
type RiskCategory int

const (
	RiskVeryLow RiskCategory = iota
	RiskLow
	RiskNeutral
	RiskElevated
	RiskHigh
	RiskExtreme
)

// CategorizeRisk классифицирует уровень риска [0,1] в категорию.
// Нижняя граница каждого интервала включается: 0.20 это уже Low, не VeryLow.
func CategorizeRisk(level float64) RiskCategory {
	switch {
	case level < 0.20:
		return RiskVeryLow
	case level < 0.40:
		return RiskLow
	case level < 0.55:
		return RiskNeutral
	case level < 0.70:
		return RiskElevated
	case level < 0.90:
		return RiskHigh
	default:
		return RiskExtreme
	}
}

// String возвращает стабильный идентификатор категории (тег в хранилище)
func (c RiskCategory) String() string {
	switch c {
	case RiskVeryLow:
		return "Very Low Risk"
	case RiskLow:
		return "Low Risk"
	case RiskNeutral:
		return "Neutral"
	case RiskElevated:
		return "Elevated Risk"
	case RiskHigh:
		return "High Risk"
	case RiskExtreme:
		return "Extreme Risk"
	}
	return "Unknown"
}

// Label возвращает отображаемое название категории
func (c RiskCategory) Label() string {
	switch c {
	case RiskVeryLow:
		return "ОЧЕНЬ НИЗКИЙ"
	case RiskLow:
		return "НИЗКИЙ"
	case RiskNeutral:
		return "НЕЙТРАЛЬНЫЙ"
	case RiskElevated:
		return "ПОВЫШЕННЫЙ"
	case RiskHigh:
		return "ВЫСОКИЙ"
	case RiskExtreme:
		return "ЭКСТРЕМАЛЬНЫЙ"
	}
	return "НЕИЗВЕСТНО"
}

// MultiFactorRiskPoint итоговая точка композитного риска на дату.
// Вычисляется один раз, далее неизменна; полностью восстановима
// из тех же входных данных.
type MultiFactorRiskPoint struct {
	Date      time.Time
	RiskLevel float64
	Category  RiskCategory
	Price     float64
	FairValue float64
	Deviation float64
	Factors   []RiskFactor
	Weights   RiskFactorWeights
}

// FearGreedLevel уровень индекса страха и жадности, пять уровней
type FearGreedLevel int

const (
	ExtremeFear FearGreedLevel = iota
	Fear
	NeutralSentiment
	Greed
	ExtremeGreed
)

// FearGreedLevelOf классифицирует значение индекса 0-100 в уровень
func FearGreedLevelOf(value int) FearGreedLevel {
	switch {
	case value < 25:
		return ExtremeFear
	case value < 45:
		return Fear
	case value < 55:
		return NeutralSentiment
	case value < 75:
		return Greed
	default:
		return ExtremeGreed
	}
}

// String возвращает идентификатор уровня
func (l FearGreedLevel) String() string {
	switch l {
	case ExtremeFear:
		return "extreme_fear"
	case Fear:
		return "fear"
	case NeutralSentiment:
		return "neutral"
	case Greed:
		return "greed"
	case ExtremeGreed:
		return "extreme_greed"
	}
	return "unknown"
}

// MarketSignal классификация значимости макро-индикатора по z-оценке
type MarketSignal int

const (
	SignalNormal MarketSignal = iota
	SignalSignificant
	SignalExtreme
)

// SignalOf классифицирует z-оценку: |z| >= 2 значимо, |z| >= 3 экстремально.
// Пороги единые для всех потребителей z-оценок.
func SignalOf(z float64) MarketSignal {
	abs := z
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 3:
		return SignalExtreme
	case abs >= 2:
		return SignalSignificant
	default:
		return SignalNormal
	}
}

// String возвращает идентификатор сигнала
func (s MarketSignal) String() string {
	switch s {
	case SignalNormal:
		return "normal"
	case SignalSignificant:
		return "significant"
	case SignalExtreme:
		return "extreme"
	}
	return "unknown"
}
