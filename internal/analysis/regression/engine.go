package regression

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/skalibog/mfra/internal/assets"
	"github.com/skalibog/mfra/pkg/models"
)

var (
	// ErrInsufficientData меньше двух валидных точек истории
	ErrInsufficientData = errors.New("недостаточно данных для регрессии")
	// ErrDegenerateInput нулевая дисперсия оси времени
	ErrDegenerateInput = errors.New("вырожденные входные данные регрессии")
)

const dayHours = 24

// Model неизменяемая модель логарифмической регрессии:
// log10(price) = Slope * t + Intercept, где t — дни с даты origin.
// Подгонка отделена от вычисления: модель можно кэшировать и
// экстраполировать на любую дату, в том числе будущую.
type Model struct {
	Slope     float64
	Intercept float64
	Origin    time.Time
	Points    int // количество точек, участвовавших в подгонке
}

// Fit подгоняет регрессию методом наименьших квадратов по истории цены.
// Точки с ценой <= 0 отбрасываются (log10 не определен), точки раньше
// даты origin тоже: отрицательное время на оси "дней с начала торгов"
// не имеет смысла, поэтому исключаем, а не обрезаем.
func Fit(cfg assets.Config, points []models.PricePoint) (*Model, error) {
	var (
		sumT, sumY, sumTY, sumTT float64
		count                    int
		firstT                   float64
	)
	sameT := true

	for _, p := range points {
		if p.Price <= 0 {
			continue
		}
		if p.Date.Before(cfg.OriginDate) {
			continue
		}

		t := daysSince(cfg.OriginDate, p.Date)
		y := math.Log10(p.Price)

		if count == 0 {
			firstT = t
		} else if t != firstT {
			sameT = false
		}

		sumT += t
		sumY += y
		sumTY += t * y
		sumTT += t * t
		count++
	}

	if count < 2 {
		return nil, fmt.Errorf("%w: %d валидных точек", ErrInsufficientData, count)
	}
	if sameT {
		return nil, fmt.Errorf("%w: все точки на одной дате", ErrDegenerateInput)
	}

	n := float64(count)
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return nil, fmt.Errorf("%w: нулевая дисперсия оси времени", ErrDegenerateInput)
	}

	slope := (n*sumTY - sumT*sumY) / denom
	intercept := (sumY - slope*sumT) / n

	return &Model{
		Slope:     slope,
		Intercept: intercept,
		Origin:    cfg.OriginDate,
		Points:    count,
	}, nil
}

// FairValue возвращает справедливую цену модели на дату.
// Экстраполяция за пределы истории намеренна: оценка риска
// опирается на проекцию справедливой цены вперед.
func (m *Model) FairValue(date time.Time) float64 {
	t := daysSince(m.Origin, date)
	return math.Pow(10, m.Slope*t+m.Intercept)
}

// daysSince возвращает количество дней между датами в дробных сутках
func daysSince(origin, date time.Time) float64 {
	return date.Sub(origin).Hours() / dayHours
}
