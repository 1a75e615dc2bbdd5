package assets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Symbol:        "BTC",
		GeckoID:       "bitcoin",
		DisplayName:   "Bitcoin",
		OriginDate:    time.Date(2009, 1, 3, 0, 0, 0, 0, time.UTC),
		DeviationLow:  -0.8,
		DeviationHigh: 0.8,
		Confidence:    9,
	}
}

func TestNewRegistry_Defaults(t *testing.T) {
	registry, err := NewRegistry(DefaultConfigs())
	require.NoError(t, err)

	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, registry.Symbols())

	btc, err := registry.BySymbol("BTC")
	require.NoError(t, err)
	assert.Equal(t, "bitcoin", btc.GeckoID)
	assert.Equal(t, 9, btc.Confidence)

	sol, err := registry.ByGeckoID("solana")
	require.NoError(t, err)
	assert.Equal(t, "SOL", sol.Symbol)
	assert.Equal(t, -1.0, sol.DeviationLow)
}

func TestRegistry_UnsupportedAsset(t *testing.T) {
	registry, err := NewRegistry(DefaultConfigs())
	require.NoError(t, err)

	_, err = registry.BySymbol("DOGE")
	assert.ErrorIs(t, err, ErrUnsupportedAsset)

	_, err = registry.ByGeckoID("dogecoin")
	assert.ErrorIs(t, err, ErrUnsupportedAsset)
}

func TestNewRegistry_Validation(t *testing.T) {
	// Пустой набор
	_, err := NewRegistry(nil)
	assert.Error(t, err)

	// Без идентификаторов
	cfg := validConfig()
	cfg.GeckoID = ""
	_, err = NewRegistry([]Config{cfg})
	assert.Error(t, err)

	// Без даты origin
	cfg = validConfig()
	cfg.OriginDate = time.Time{}
	_, err = NewRegistry([]Config{cfg})
	assert.Error(t, err)

	// Границы должны быть low < 0 < high
	cfg = validConfig()
	cfg.DeviationLow = 0.1
	_, err = NewRegistry([]Config{cfg})
	assert.Error(t, err)

	cfg = validConfig()
	cfg.DeviationHigh = -0.1
	_, err = NewRegistry([]Config{cfg})
	assert.Error(t, err)

	// Надежность вне диапазона 1-9
	cfg = validConfig()
	cfg.Confidence = 0
	_, err = NewRegistry([]Config{cfg})
	assert.Error(t, err)

	cfg = validConfig()
	cfg.Confidence = 10
	_, err = NewRegistry([]Config{cfg})
	assert.Error(t, err)

	// Дублирующийся символ
	_, err = NewRegistry([]Config{validConfig(), validConfig()})
	assert.Error(t, err)
}

func TestRegistry_SymbolsReturnsCopy(t *testing.T) {
	registry, err := NewRegistry(DefaultConfigs())
	require.NoError(t, err)

	symbols := registry.Symbols()
	symbols[0] = "XXX"
	assert.Equal(t, []string{"BTC", "ETH", "SOL"}, registry.Symbols())
}
