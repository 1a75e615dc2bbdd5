package composite

import (
	"errors"
	"time"

	"github.com/skalibog/mfra/pkg/models"
)

// ErrNoFactorsAvailable ни один фактор не доступен, точка риска не строится
var ErrNoFactorsAvailable = errors.New("нет доступных факторов риска")

// Calculate строит точку композитного риска из набора факторов.
//
// Чистая функция без состояния: одни и те же входы всегда дают одну
// и ту же точку. Недоступные факторы исключаются и из числителя,
// и из знаменателя — их вес перераспределяется на доступные, а не
// заполняется нулем. Дата с одним лишь регрессионным фактором дает
// полноценный неразбавленный уровень риска.
func Calculate(date time.Time, price, fairValue, dev float64,
	factors []models.RiskFactor, weights models.RiskFactorWeights) (*models.MultiFactorRiskPoint, error) {

	var weightedSum, weightSum float64
	out := make([]models.RiskFactor, 0, len(factors))

	for _, f := range factors {
		f.Weight = weights.Weight(f.Type)
		out = append(out, f)

		value, ok := f.Normalized.Get()
		if !ok {
			continue
		}
		weightedSum += value * f.Weight
		weightSum += f.Weight
	}

	if weightSum == 0 {
		return nil, ErrNoFactorsAvailable
	}

	riskLevel := weightedSum / weightSum

	return &models.MultiFactorRiskPoint{
		Date:      date,
		RiskLevel: riskLevel,
		Category:  models.CategorizeRisk(riskLevel),
		Price:     price,
		FairValue: fairValue,
		Deviation: dev,
		Factors:   out,
		Weights:   weights,
	}, nil
}
