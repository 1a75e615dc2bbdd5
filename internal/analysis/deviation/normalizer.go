package deviation

import (
	"errors"
	"fmt"
	"math"

	"github.com/skalibog/mfra/internal/assets"
)

// ErrInvalidFairValue неположительная справедливая цена из регрессии
var ErrInvalidFairValue = errors.New("некорректная справедливая цена")

// Normalize переводит отклонение цены от справедливой в риск [0,1].
//
// deviation = log10(price) - log10(fairValue). Отображение кусочно-линейное:
// 0.5 в точке справедливой цены, насыщение на границах актива —
// значения за границами обрезаются до 0 или 1, не экстраполируются.
// Граница high > 0, low < 0, обе в единицах log10.
func Normalize(price, fairValue float64, cfg assets.Config) (risk, dev float64, err error) {
	if fairValue <= 0 {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidFairValue, fairValue)
	}
	if price <= 0 {
		return 0, 0, fmt.Errorf("%w: цена %v", ErrInvalidFairValue, price)
	}

	dev = math.Log10(price) - math.Log10(fairValue)

	if dev >= 0 {
		// dev на границе high дает ровно 1.0
		risk = 0.5 + 0.5*math.Min(1, dev/cfg.DeviationHigh)
	} else {
		// dev и low отрицательны, отношение положительно;
		// dev на границе low дает ровно 0.0
		risk = 0.5 - 0.5*math.Min(1, dev/cfg.DeviationLow)
	}

	return risk, dev, nil
}
