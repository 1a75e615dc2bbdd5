package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"github.com/skalibog/mfra/internal/assets"
	"github.com/skalibog/mfra/pkg/logger"
	"github.com/skalibog/mfra/pkg/models"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	CoinGecko CoinGeckoConfig `yaml:"coingecko"`
	Binance   BinanceConfig   `yaml:"binance"`
	FearGreed FearGreedSource `yaml:"fear_greed"`
	Macro     MacroSource     `yaml:"macro"`
	Assets    []AssetConfig   `yaml:"assets"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Storage   StorageConfig   `yaml:"storage"`
	UI        UIConfig        `yaml:"ui"`
}

// CoinGeckoConfig настройки источника длинной истории цен
type CoinGeckoConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// BinanceConfig содержит настройки подключения к Binance
type BinanceConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	Testnet   bool   `yaml:"testnet"`
}

// FearGreedSource настройки источника индекса страха и жадности
type FearGreedSource struct {
	BaseURL string `yaml:"base_url"`
}

// MacroSource настройки источника макроэкономических рядов
type MacroSource struct {
	BaseURL string            `yaml:"base_url"`
	Symbols map[string]string `yaml:"symbols"` // имя ряда -> тикер источника
}

// AssetConfig конфигурация одного отслеживаемого актива
type AssetConfig struct {
	Symbol        string  `yaml:"symbol"`
	GeckoID       string  `yaml:"gecko_id"`
	DisplayName   string  `yaml:"display_name"`
	OriginDate    string  `yaml:"origin_date"` // первая дата торгов, YYYY-MM-DD
	DeviationLow  float64 `yaml:"deviation_low"`
	DeviationHigh float64 `yaml:"deviation_high"`
	Confidence    int     `yaml:"confidence"`
}

// AnalysisConfig содержит настройки расчета риска
type AnalysisConfig struct {
	IntervalSeconds int                       `yaml:"interval_seconds"`
	WeightsPreset   string                    `yaml:"weights_preset"`
	Weights         *models.RiskFactorWeights `yaml:"weights"`
	RSI             RSIConfig                 `yaml:"rsi"`
	SMA             SMAConfig                 `yaml:"sma"`
	BullBands       BullBandsConfig           `yaml:"bull_bands"`
	Funding         FundingConfig             `yaml:"funding"`
	FearGreed       FearGreedConfig           `yaml:"fear_greed"`
	Macro           MacroConfig               `yaml:"macro"`
}

// RSIConfig настройки фактора RSI
type RSIConfig struct {
	Period int `yaml:"period"`
}

// SMAConfig настройки фактора положения цены к SMA
type SMAConfig struct {
	PeriodDays int     `yaml:"period_days"`
	Saturation float64 `yaml:"saturation"` // относительная дистанция, при которой вклад насыщается
}

// BullBandsConfig настройки фактора полосы поддержки бычьего рынка
type BullBandsConfig struct {
	SMAWeeks   int     `yaml:"sma_weeks"`
	EMAWeeks   int     `yaml:"ema_weeks"`
	Saturation float64 `yaml:"saturation"`
}

// FundingConfig настройки фактора ставки финансирования
type FundingConfig struct {
	Saturation float64 `yaml:"saturation"` // ставка, при которой вклад насыщается
}

// FearGreedConfig вклад риска по уровням индекса; уровни фиксированы,
// численные вклады настраиваемые
type FearGreedConfig struct {
	ExtremeFear  float64 `yaml:"extreme_fear"`
	Fear         float64 `yaml:"fear"`
	Neutral      float64 `yaml:"neutral"`
	Greed        float64 `yaml:"greed"`
	ExtremeGreed float64 `yaml:"extreme_greed"`
}

// MacroConfig настройки макро-фактора
type MacroConfig struct {
	WindowDays int     `yaml:"window_days"`
	Divisor    float64 `yaml:"divisor"` // z-оценка, при которой вклад насыщается
}

// StorageConfig настройки хранения данных
type StorageConfig struct {
	URL          string `yaml:"url"`
	Token        string `yaml:"token"`
	Organization string `yaml:"organization"`
	Bucket       string `yaml:"bucket"`
}

// UIConfig настройки пользовательского интерфейса
type UIConfig struct {
	RefreshRate int `yaml:"refresh_rate_ms"`
}

// Load загружает конфигурацию из файла
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}

	config.applyDefaults()

	logger.Debug("Загружена конфигурация", zap.String("path", path), zap.Any("config", config))
	logger.Info("Загружена конфигурация", zap.Int("assets", len(config.Assets)))
	return &config, nil
}

// applyDefaults заполняет незаданные параметры значениями по умолчанию
func (c *Config) applyDefaults() {
	if c.CoinGecko.BaseURL == "" {
		c.CoinGecko.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if c.FearGreed.BaseURL == "" {
		c.FearGreed.BaseURL = "https://api.alternative.me"
	}
	if c.Macro.BaseURL == "" {
		c.Macro.BaseURL = "https://stooq.com"
	}
	if len(c.Macro.Symbols) == 0 {
		c.Macro.Symbols = map[string]string{
			"VIX": "^vix",
			"DXY": "dx.f",
		}
	}
	if c.Analysis.IntervalSeconds == 0 {
		c.Analysis.IntervalSeconds = 300
	}
	if c.Analysis.RSI.Period == 0 {
		c.Analysis.RSI.Period = 14
	}
	if c.Analysis.SMA.PeriodDays == 0 {
		c.Analysis.SMA.PeriodDays = 200
	}
	if c.Analysis.SMA.Saturation == 0 {
		c.Analysis.SMA.Saturation = 0.5
	}
	if c.Analysis.BullBands.SMAWeeks == 0 {
		c.Analysis.BullBands.SMAWeeks = 20
	}
	if c.Analysis.BullBands.EMAWeeks == 0 {
		c.Analysis.BullBands.EMAWeeks = 21
	}
	if c.Analysis.BullBands.Saturation == 0 {
		c.Analysis.BullBands.Saturation = 1.0
	}
	if c.Analysis.Funding.Saturation == 0 {
		c.Analysis.Funding.Saturation = 0.01
	}
	if c.Analysis.FearGreed == (FearGreedConfig{}) {
		c.Analysis.FearGreed = FearGreedConfig{
			ExtremeFear:  0.10,
			Fear:         0.30,
			Neutral:      0.50,
			Greed:        0.70,
			ExtremeGreed: 0.90,
		}
	}
	if c.Analysis.Macro.WindowDays == 0 {
		c.Analysis.Macro.WindowDays = 365
	}
	if c.Analysis.Macro.Divisor == 0 {
		c.Analysis.Macro.Divisor = 3.0
	}
	if c.UI.RefreshRate == 0 {
		c.UI.RefreshRate = 1000
	}
}

// ResolveWeights возвращает действующие веса: явные из конфигурации
// или именованный пресет. Невалидная сумма весов не запрещается,
// но фиксируется в логе.
func (c *AnalysisConfig) ResolveWeights() (models.RiskFactorWeights, error) {
	var weights models.RiskFactorWeights
	if c.Weights != nil {
		weights = *c.Weights
	} else {
		preset, ok := models.PresetWeights(c.WeightsPreset)
		if !ok {
			return models.RiskFactorWeights{}, fmt.Errorf("неизвестный пресет весов: %q", c.WeightsPreset)
		}
		weights = preset
	}

	if !weights.IsValid() {
		logger.Warn("Сумма весов факторов отличается от 1.0",
			zap.Float64("sum", weights.Sum()))
	}
	return weights, nil
}

// AssetConfigs преобразует конфигурацию активов в реестр-конфигурации
func (c *Config) AssetConfigs() ([]assets.Config, error) {
	if len(c.Assets) == 0 {
		return assets.DefaultConfigs(), nil
	}

	configs := make([]assets.Config, 0, len(c.Assets))
	for _, a := range c.Assets {
		origin, err := time.Parse("2006-01-02", a.OriginDate)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора даты origin_date для %s: %w", a.Symbol, err)
		}
		configs = append(configs, assets.Config{
			Symbol:        a.Symbol,
			GeckoID:       a.GeckoID,
			DisplayName:   a.DisplayName,
			OriginDate:    origin,
			DeviationLow:  a.DeviationLow,
			DeviationHigh: a.DeviationHigh,
			Confidence:    a.Confidence,
		})
	}
	return configs, nil
}
