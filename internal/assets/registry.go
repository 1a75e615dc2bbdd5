package assets

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedAsset актив вне поддерживаемого набора
var ErrUnsupportedAsset = errors.New("актив не поддерживается")

// Config конфигурация риск-модели одного актива
type Config struct {
	Symbol        string
	GeckoID       string
	DisplayName   string
	OriginDate    time.Time // первая осмысленная дата торгов, якорь оси регрессии
	DeviationLow  float64   // нижняя граница нормализации отклонения, log10, < 0
	DeviationHigh float64   // верхняя граница нормализации отклонения, log10, > 0
	Confidence    int       // 1-9, информационная надежность регрессии; в расчетах не участвует
}

// Registry реестр поддерживаемых активов. Передается явно при создании
// анализаторов вместо глобальных таблиц, чтобы тесты могли подставлять
// синтетические конфигурации.
type Registry struct {
	bySymbol  map[string]Config
	byGeckoID map[string]Config
	ordered   []string
}

// DefaultConfigs возвращает конфигурации трех поддерживаемых активов
func DefaultConfigs() []Config {
	return []Config{
		{
			Symbol:        "BTC",
			GeckoID:       "bitcoin",
			DisplayName:   "Bitcoin",
			OriginDate:    time.Date(2009, 1, 3, 0, 0, 0, 0, time.UTC),
			DeviationLow:  -0.8,
			DeviationHigh: 0.8,
			Confidence:    9,
		},
		{
			Symbol:        "ETH",
			GeckoID:       "ethereum",
			DisplayName:   "Ethereum",
			OriginDate:    time.Date(2015, 7, 30, 0, 0, 0, 0, time.UTC),
			DeviationLow:  -0.9,
			DeviationHigh: 0.9,
			Confidence:    7,
		},
		{
			Symbol:        "SOL",
			GeckoID:       "solana",
			DisplayName:   "Solana",
			OriginDate:    time.Date(2020, 4, 10, 0, 0, 0, 0, time.UTC),
			DeviationLow:  -1.0,
			DeviationHigh: 1.0,
			Confidence:    5,
		},
	}
}

// NewRegistry создает реестр из набора конфигураций
func NewRegistry(configs []Config) (*Registry, error) {
	r := &Registry{
		bySymbol:  make(map[string]Config, len(configs)),
		byGeckoID: make(map[string]Config, len(configs)),
	}

	for _, cfg := range configs {
		if cfg.Symbol == "" || cfg.GeckoID == "" {
			return nil, fmt.Errorf("конфигурация актива без идентификаторов: %+v", cfg)
		}
		if cfg.OriginDate.IsZero() {
			return nil, fmt.Errorf("не задана дата origin_date для %s", cfg.Symbol)
		}
		if !(cfg.DeviationLow < 0 && cfg.DeviationHigh > 0) {
			return nil, fmt.Errorf("границы отклонения для %s должны быть low < 0 < high, получено (%v, %v)",
				cfg.Symbol, cfg.DeviationLow, cfg.DeviationHigh)
		}
		if cfg.Confidence < 1 || cfg.Confidence > 9 {
			return nil, fmt.Errorf("уровень надежности для %s вне диапазона 1-9: %d", cfg.Symbol, cfg.Confidence)
		}
		if _, ok := r.bySymbol[cfg.Symbol]; ok {
			return nil, fmt.Errorf("дублирующийся символ актива: %s", cfg.Symbol)
		}
		r.bySymbol[cfg.Symbol] = cfg
		r.byGeckoID[cfg.GeckoID] = cfg
		r.ordered = append(r.ordered, cfg.Symbol)
	}

	if len(r.ordered) == 0 {
		return nil, errors.New("пустой набор конфигураций активов")
	}
	return r, nil
}

// BySymbol возвращает конфигурацию по символу
func (r *Registry) BySymbol(symbol string) (Config, error) {
	cfg, ok := r.bySymbol[symbol]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, symbol)
	}
	return cfg, nil
}

// ByGeckoID возвращает конфигурацию по идентификатору CoinGecko
func (r *Registry) ByGeckoID(id string) (Config, error) {
	cfg, ok := r.byGeckoID[id]
	if !ok {
		return Config{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, id)
	}
	return cfg, nil
}

// Symbols возвращает символы в порядке конфигурации
func (r *Registry) Symbols() []string {
	out := make([]string, len(r.ordered))
	copy(out, r.ordered)
	return out
}
