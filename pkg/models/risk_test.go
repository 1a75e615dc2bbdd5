package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorizeRisk_Boundaries(t *testing.T) {
	// Нижняя граница интервала включается
	cases := []struct {
		level    float64
		expected RiskCategory
	}{
		{0.0, RiskVeryLow},
		{0.199999, RiskVeryLow},
		{0.20, RiskLow},
		{0.399999, RiskLow},
		{0.40, RiskNeutral},
		{0.549999, RiskNeutral},
		{0.55, RiskElevated},
		{0.699999, RiskElevated},
		{0.70, RiskHigh},
		{0.899999, RiskHigh},
		{0.90, RiskExtreme},
		{1.0, RiskExtreme},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, CategorizeRisk(c.level), "level %v", c.level)
	}
}

func TestRiskCategory_Strings(t *testing.T) {
	assert.Equal(t, "Very Low Risk", RiskVeryLow.String())
	assert.Equal(t, "Extreme Risk", RiskExtreme.String())
	assert.Equal(t, "ЭКСТРЕМАЛЬНЫЙ", RiskExtreme.Label())
	assert.Equal(t, "НЕЙТРАЛЬНЫЙ", RiskNeutral.Label())
}

func TestWeights_Validity(t *testing.T) {
	assert.True(t, DefaultWeights().IsValid())
	assert.True(t, ConservativeWeights().IsValid())
	assert.True(t, SentimentWeights().IsValid())

	// Допуск 0.001: сумма 0.999 валидна, 0.990 нет
	w := DefaultWeights()
	w.Macro = 0.099
	assert.InDelta(t, 0.999, w.Sum(), 1e-12)
	assert.True(t, w.IsValid())

	w.Macro = 0.090
	assert.False(t, w.IsValid())
}

func TestWeights_Presets(t *testing.T) {
	def, ok := PresetWeights("")
	assert.True(t, ok)
	assert.Equal(t, DefaultWeights(), def)

	def, ok = PresetWeights("default")
	assert.True(t, ok)
	assert.Equal(t, DefaultWeights(), def)

	cons, ok := PresetWeights("conservative")
	assert.True(t, ok)
	assert.Equal(t, ConservativeWeights(), cons)

	sent, ok := PresetWeights("sentiment")
	assert.True(t, ok)
	assert.Equal(t, SentimentWeights(), sent)

	_, ok = PresetWeights("aggressive")
	assert.False(t, ok)
}

func TestWeights_ByFactorType(t *testing.T) {
	w := DefaultWeights()

	for _, ft := range AllFactorTypes() {
		assert.Equal(t, ft.DefaultWeight(), w.Weight(ft), "factor %s", ft)
	}
	assert.Equal(t, 0.0, w.Weight(RiskFactorType("unknown")))
}

func TestFactorValue(t *testing.T) {
	v := Value(0.42)
	assert.True(t, v.IsAvailable())
	got, ok := v.Get()
	assert.True(t, ok)
	assert.Equal(t, 0.42, got)

	n := NoValue()
	assert.False(t, n.IsAvailable())
	_, ok = n.Get()
	assert.False(t, ok)
}

func TestFearGreedLevelOf(t *testing.T) {
	cases := []struct {
		value    int
		expected FearGreedLevel
	}{
		{0, ExtremeFear},
		{24, ExtremeFear},
		{25, Fear},
		{44, Fear},
		{45, NeutralSentiment},
		{54, NeutralSentiment},
		{55, Greed},
		{74, Greed},
		{75, ExtremeGreed},
		{100, ExtremeGreed},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, FearGreedLevelOf(c.value), "value %d", c.value)
	}
}

func TestSignalOf(t *testing.T) {
	assert.Equal(t, SignalNormal, SignalOf(0))
	assert.Equal(t, SignalNormal, SignalOf(1.99))
	assert.Equal(t, SignalSignificant, SignalOf(2.0))
	assert.Equal(t, SignalSignificant, SignalOf(-2.5))
	assert.Equal(t, SignalExtreme, SignalOf(3.0))
	assert.Equal(t, SignalExtreme, SignalOf(-4.2))
}
