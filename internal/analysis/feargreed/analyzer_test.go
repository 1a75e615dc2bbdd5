package feargreed

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skalibog/mfra/internal/config"
)

func tierConfig() config.FearGreedConfig {
	return config.FearGreedConfig{
		ExtremeFear:  0.10,
		Fear:         0.30,
		Neutral:      0.50,
		Greed:        0.70,
		ExtremeGreed: 0.90,
	}
}

func TestNormalize_Tiers(t *testing.T) {
	a := NewAnalyzer(tierConfig())

	// Пять фиксированных уровней с настраиваемыми вкладами
	cases := []struct {
		value    int
		expected float64
	}{
		{0, 0.10},
		{24, 0.10},
		{25, 0.30},
		{44, 0.30},
		{45, 0.50},
		{54, 0.50},
		{55, 0.70},
		{74, 0.70},
		{75, 0.90},
		{100, 0.90},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, a.Normalize(c.value), "value %d", c.value)
	}
}

func TestNormalize_CustomContributions(t *testing.T) {
	cfg := tierConfig()
	cfg.ExtremeGreed = 0.95
	a := NewAnalyzer(cfg)

	assert.Equal(t, 0.95, a.Normalize(80))
}
