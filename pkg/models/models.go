package models

import (
	"time"
)

// PricePoint представляет точку истории цены
type PricePoint struct {
	Date  time.Time
	Price float64
}

// FundingRate представляет ставку финансирования
type FundingRate struct {
	Symbol          string
	Rate            float64
	Timestamp       time.Time
	NextFundingTime time.Time
}

// FearGreedPoint представляет значение индекса страха и жадности
type FearGreedPoint struct {
	Date  time.Time
	Value int
}

// MacroPoint представляет точку макроэкономического ряда (VIX, DXY, M2)
type MacroPoint struct {
	Series string
	Date   time.Time
	Value  float64
}
