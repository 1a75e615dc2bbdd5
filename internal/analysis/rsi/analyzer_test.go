package rsi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skalibog/mfra/internal/config"
)

func TestNormalize(t *testing.T) {
	a := NewAnalyzer(config.RSIConfig{Period: 14})

	// Линейное отображение RSI 0-100 в [0,1]
	assert.InDelta(t, 0.0, a.Normalize(0), 1e-12)
	assert.InDelta(t, 0.3, a.Normalize(30), 1e-12)
	assert.InDelta(t, 0.5, a.Normalize(50), 1e-12)
	assert.InDelta(t, 0.7, a.Normalize(70), 1e-12)
	assert.InDelta(t, 1.0, a.Normalize(100), 1e-12)
}

func TestNormalize_ClampsOutOfRange(t *testing.T) {
	a := NewAnalyzer(config.RSIConfig{Period: 14})

	assert.Equal(t, 0.0, a.Normalize(-5))
	assert.Equal(t, 1.0, a.Normalize(120))
}
