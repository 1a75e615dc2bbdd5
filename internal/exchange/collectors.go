package exchange

import (
	"context"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/skalibog/mfra/internal/assets"
	"github.com/skalibog/mfra/internal/marketdata"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/pkg/logger"
)

// DataCollector периодический сборщик рыночных данных
type DataCollector interface {
	Start(ctx context.Context) error
	Stop()
}

// collectorLoop общий цикл сборщика: немедленный первый запуск,
// затем по интервалу; ошибки повторяются с экспоненциальной задержкой
type collectorLoop struct {
	name     string
	interval time.Duration
	stop     chan struct{}
	once     sync.Once
}

func newCollectorLoop(name string, interval time.Duration) collectorLoop {
	return collectorLoop{
		name:     name,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Stop останавливает цикл сборщика
func (l *collectorLoop) Stop() {
	l.once.Do(func() {
		close(l.stop)
	})
}

func (l *collectorLoop) run(ctx context.Context, collect func(context.Context) error) error {
	b := &backoff.Backoff{
		Min:    5 * time.Second,
		Max:    5 * time.Minute,
		Factor: 2,
		Jitter: true,
	}

	for {
		delay := l.interval
		if err := collect(ctx); err != nil {
			delay = b.Duration()
			logger.Warn("Ошибка сбора данных",
				zap.String("collector", l.name),
				zap.Duration("retry_in", delay),
				zap.Error(err))
		} else {
			b.Reset()
		}

		select {
		case <-time.After(delay):
		case <-l.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// PriceHistoryCollector загружает длинную дневную историю цен из CoinGecko.
// Первый прогон тянет историю с даты origin актива, дальше только хвост.
type PriceHistoryCollector struct {
	collectorLoop
	client     *marketdata.CoinGeckoClient
	store      storage.Storage
	registry   *assets.Registry
	backfilled map[string]bool
}

// NewPriceHistoryCollector создает сборщик истории цен
func NewPriceHistoryCollector(client *marketdata.CoinGeckoClient, store storage.Storage, registry *assets.Registry) *PriceHistoryCollector {
	return &PriceHistoryCollector{
		collectorLoop: newCollectorLoop("price_history", 12*time.Hour),
		client:        client,
		store:         store,
		registry:      registry,
		backfilled:    make(map[string]bool),
	}
}

// Start запускает сборщик
func (c *PriceHistoryCollector) Start(ctx context.Context) error {
	return c.run(ctx, c.collect)
}

func (c *PriceHistoryCollector) collect(ctx context.Context) error {
	now := time.Now().UTC()

	for _, symbol := range c.registry.Symbols() {
		cfg, err := c.registry.BySymbol(symbol)
		if err != nil {
			return err
		}

		from := now.AddDate(0, 0, -90)
		if !c.backfilled[symbol] {
			from = cfg.OriginDate
		}

		points, err := c.client.MarketChartRange(ctx, cfg.GeckoID, from, now)
		if err != nil {
			return err
		}
		if err := c.store.SavePricePoints(ctx, symbol, points); err != nil {
			return err
		}

		c.backfilled[symbol] = true
		logger.Info("История цен обновлена",
			zap.String("symbol", symbol),
			zap.Int("points", len(points)))
	}
	return nil
}

// CandleCollector дополняет историю свежими дневными закрытиями с Binance
type CandleCollector struct {
	collectorLoop
	client  *BinanceClient
	store   storage.Storage
	symbols []string
}

// NewCandleCollector создает сборщик дневных закрытий
func NewCandleCollector(client *BinanceClient, store storage.Storage, symbols []string) *CandleCollector {
	return &CandleCollector{
		collectorLoop: newCollectorLoop("candles", time.Hour),
		client:        client,
		store:         store,
		symbols:       symbols,
	}
}

// Start запускает сборщик
func (c *CandleCollector) Start(ctx context.Context) error {
	return c.run(ctx, c.collect)
}

func (c *CandleCollector) collect(ctx context.Context) error {
	for _, symbol := range c.symbols {
		points, err := c.client.GetDailyPrices(ctx, symbol, 2)
		if err != nil {
			return err
		}
		if err := c.store.SavePricePoints(ctx, symbol, points); err != nil {
			return err
		}
	}
	return nil
}

// FundingRateCollector собирает ставки финансирования.
// Первый прогон забирает доступную историю, дальше только текущую ставку.
type FundingRateCollector struct {
	collectorLoop
	client     *BinanceClient
	store      storage.Storage
	symbols    []string
	backfilled bool
}

// NewFundingRateCollector создает сборщик ставок финансирования
func NewFundingRateCollector(client *BinanceClient, store storage.Storage, symbols []string) *FundingRateCollector {
	return &FundingRateCollector{
		collectorLoop: newCollectorLoop("funding", time.Hour),
		client:        client,
		store:         store,
		symbols:       symbols,
	}
}

// Start запускает сборщик
func (c *FundingRateCollector) Start(ctx context.Context) error {
	return c.run(ctx, c.collect)
}

func (c *FundingRateCollector) collect(ctx context.Context) error {
	for _, symbol := range c.symbols {
		if !c.backfilled {
			history, err := c.client.GetFundingRateHistory(ctx, symbol, 1000)
			if err != nil {
				return err
			}
			for i := range history {
				if err := c.store.SaveFundingRate(ctx, &history[i]); err != nil {
					return err
				}
			}
		}

		rate, err := c.client.GetFundingRate(ctx, symbol)
		if err != nil {
			return err
		}
		if err := c.store.SaveFundingRate(ctx, rate); err != nil {
			return err
		}
	}

	c.backfilled = true
	return nil
}

// FearGreedCollector собирает индекс страха и жадности
type FearGreedCollector struct {
	collectorLoop
	client     *marketdata.FearGreedClient
	store      storage.Storage
	backfilled bool
}

// NewFearGreedCollector создает сборщик индекса страха и жадности
func NewFearGreedCollector(client *marketdata.FearGreedClient, store storage.Storage) *FearGreedCollector {
	return &FearGreedCollector{
		collectorLoop: newCollectorLoop("fear_greed", 6*time.Hour),
		client:        client,
		store:         store,
	}
}

// Start запускает сборщик
func (c *FearGreedCollector) Start(ctx context.Context) error {
	return c.run(ctx, c.collect)
}

func (c *FearGreedCollector) collect(ctx context.Context) error {
	limit := 10 // свежие значения
	if !c.backfilled {
		limit = 0 // вся история
	}

	points, err := c.client.History(ctx, limit)
	if err != nil {
		return err
	}
	for _, p := range points {
		if err := c.store.SaveFearGreed(ctx, p); err != nil {
			return err
		}
	}

	c.backfilled = true
	return nil
}

// MacroCollector собирает макроэкономические ряды
type MacroCollector struct {
	collectorLoop
	client *marketdata.MacroClient
	store  storage.Storage
}

// NewMacroCollector создает сборщик макро-рядов
func NewMacroCollector(client *marketdata.MacroClient, store storage.Storage) *MacroCollector {
	return &MacroCollector{
		collectorLoop: newCollectorLoop("macro", 12*time.Hour),
		client:        client,
		store:         store,
	}
}

// Start запускает сборщик
func (c *MacroCollector) Start(ctx context.Context) error {
	return c.run(ctx, c.collect)
}

func (c *MacroCollector) collect(ctx context.Context) error {
	for _, series := range c.client.Series() {
		points, err := c.client.Daily(ctx, series)
		if err != nil {
			return err
		}
		if err := c.store.SaveMacroPoints(ctx, points); err != nil {
			return err
		}
		logger.Info("Макро-ряд обновлен",
			zap.String("series", series),
			zap.Int("points", len(points)))
	}
	return nil
}
