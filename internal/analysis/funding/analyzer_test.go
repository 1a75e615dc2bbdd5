package funding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skalibog/mfra/internal/config"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(config.FundingConfig{Saturation: 0.01})
}

func TestNormalize(t *testing.T) {
	a := newTestAnalyzer()

	// Нулевая ставка нейтральна
	assert.InDelta(t, 0.5, a.Normalize(0), 1e-12)

	// Положительная ставка (лонги платят шортам) повышает риск
	assert.InDelta(t, 0.75, a.Normalize(0.005), 1e-12)
	assert.InDelta(t, 1.0, a.Normalize(0.01), 1e-12)

	// Отрицательная понижает
	assert.InDelta(t, 0.25, a.Normalize(-0.005), 1e-12)
	assert.InDelta(t, 0.0, a.Normalize(-0.01), 1e-12)
}

func TestNormalize_ClampsBeyondSaturation(t *testing.T) {
	a := newTestAnalyzer()

	assert.Equal(t, 1.0, a.Normalize(0.05))
	assert.Equal(t, 0.0, a.Normalize(-0.05))
}
