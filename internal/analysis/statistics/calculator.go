package statistics

import (
	"errors"
	"fmt"
	"math"

	"github.com/skalibog/mfra/pkg/models"
)

var (
	// ErrZeroVariance константный исторический ряд
	ErrZeroVariance = errors.New("нулевая дисперсия ряда")
	// ErrEmptySeries пустой исторический ряд
	ErrEmptySeries = errors.New("пустой исторический ряд")
)

// ZScoreResult замороженный результат расчета z-оценки,
// переиспользуется потребителями без повторного счета
type ZScoreResult struct {
	ZScore        float64
	Mean          float64
	StdDev        float64
	IsSignificant bool // |z| >= 2
	IsExtreme     bool // |z| >= 3
}

// Signal возвращает классификацию значимости по единым порогам
func (r ZScoreResult) Signal() models.MarketSignal {
	return models.SignalOf(r.ZScore)
}

// Bands полосы стандартных отклонений вокруг среднего
type Bands struct {
	Mean   float64
	Upper1 float64
	Upper2 float64
	Upper3 float64
	Lower1 float64
	Lower2 float64
	Lower3 float64
}

// Mean возвращает среднее ряда
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev возвращает выборочное стандартное отклонение ряда
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	mean := Mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}

	variance := sumSquares / float64(len(values)-1)
	if variance < 0 {
		variance = 0 // защита от отрицательной дисперсии из-за плавающей точки
	}
	return math.Sqrt(variance)
}

// ZScore вычисляет z-оценку текущего значения относительно истории.
// Окно выбирает вызывающая сторона, расчет от окна не зависит.
// Для константного ряда возвращается ErrZeroVariance: вызывающая сторона
// трактует это как "не значимо", а не как NaN.
func ZScore(history []float64, current float64) (ZScoreResult, error) {
	if len(history) == 0 {
		return ZScoreResult{}, ErrEmptySeries
	}

	mean := Mean(history)
	stddev := StdDev(history)
	if stddev == 0 {
		return ZScoreResult{}, fmt.Errorf("%w: среднее %v", ErrZeroVariance, mean)
	}

	z := (current - mean) / stddev
	abs := math.Abs(z)
	return ZScoreResult{
		ZScore:        z,
		Mean:          mean,
		StdDev:        stddev,
		IsSignificant: abs >= 2,
		IsExtreme:     abs >= 3,
	}, nil
}

// SDBands вычисляет полосы mean ± 1σ/2σ/3σ для отображения и классификации
func SDBands(history []float64) (Bands, error) {
	if len(history) == 0 {
		return Bands{}, ErrEmptySeries
	}

	mean := Mean(history)
	sd := StdDev(history)
	return Bands{
		Mean:   mean,
		Upper1: mean + sd,
		Upper2: mean + 2*sd,
		Upper3: mean + 3*sd,
		Lower1: mean - sd,
		Lower2: mean - 2*sd,
		Lower3: mean - 3*sd,
	}, nil
}
