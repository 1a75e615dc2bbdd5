package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2/futures"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/pkg/models"
)

// BinanceClient клиент для взаимодействия с Binance
type BinanceClient struct {
	futures *futures.Client
}

// NewBinanceClient создает новый клиент Binance
func NewBinanceClient(cfg config.BinanceConfig) (*BinanceClient, error) {
	futures.UseTestnet = cfg.Testnet
	return &BinanceClient{
		futures: futures.NewClient(cfg.APIKey, cfg.APISecret),
	}, nil
}

// futuresSymbol переводит символ актива в тикер бессрочного фьючерса
func futuresSymbol(symbol string) string {
	return symbol + "USDT"
}

// GetDailyPrices получает дневные цены закрытия
func (c *BinanceClient) GetDailyPrices(ctx context.Context, symbol string, limit int) ([]models.PricePoint, error) {
	klines, err := c.futures.NewKlinesService().
		Symbol(futuresSymbol(symbol)).
		Interval("1d").
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения свечей: %w", err)
	}

	points := make([]models.PricePoint, 0, len(klines))
	for _, k := range klines {
		closePrice, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора цены закрытия: %w", err)
		}
		points = append(points, models.PricePoint{
			Date:  time.Unix(k.OpenTime/1000, 0).UTC(),
			Price: closePrice,
		})
	}

	return points, nil
}

// GetFundingRate получает текущую ставку финансирования
func (c *BinanceClient) GetFundingRate(ctx context.Context, symbol string) (*models.FundingRate, error) {
	rates, err := c.futures.NewPremiumIndexService().
		Symbol(futuresSymbol(symbol)).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ставки финансирования: %w", err)
	}

	if len(rates) == 0 {
		return nil, fmt.Errorf("не найдены данные о ставке финансирования для %s", symbol)
	}

	rate, err := strconv.ParseFloat(rates[0].LastFundingRate, 64)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора ставки финансирования: %w", err)
	}

	return &models.FundingRate{
		Symbol:          symbol,
		Rate:            rate,
		Timestamp:       time.Now().UTC(),
		NextFundingTime: time.Unix(rates[0].NextFundingTime/1000, 0).UTC(),
	}, nil
}

// GetFundingRateHistory получает историю ставок финансирования
func (c *BinanceClient) GetFundingRateHistory(ctx context.Context, symbol string, limit int) ([]models.FundingRate, error) {
	history, err := c.futures.NewFundingRateService().
		Symbol(futuresSymbol(symbol)).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории финансирования: %w", err)
	}

	rates := make([]models.FundingRate, 0, len(history))
	for _, h := range history {
		rate, err := strconv.ParseFloat(h.FundingRate, 64)
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора ставки финансирования: %w", err)
		}
		rates = append(rates, models.FundingRate{
			Symbol:    symbol,
			Rate:      rate,
			Timestamp: time.Unix(h.FundingTime/1000, 0).UTC(),
		})
	}

	return rates, nil
}
