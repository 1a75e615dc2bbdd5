package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/skalibog/mfra/internal/analysis/composite"
	"github.com/skalibog/mfra/internal/assets"
	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/internal/exchange"
	"github.com/skalibog/mfra/internal/marketdata"
	"github.com/skalibog/mfra/internal/storage"
	"github.com/skalibog/mfra/internal/ui"
	"github.com/skalibog/mfra/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.GetLogger().Sync()

	// Обработка флагов командной строки
	configPath := flag.String("config", "config.yaml", "путь к файлу конфигурации")
	backfill := flag.Bool("backfill", false, "рассчитать историю риска по накопленным данным и выйти")
	flag.Parse()

	// Проверяем наличие файла конфигурации
	logger.Info("Проверка наличия файла конфигурации", zap.String("path", *configPath))
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Fatal("Файл конфигурации не найден", zap.String("path", *configPath))
	}

	// Загружаем конфигурацию
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	// Создаем контекст с возможностью отмены через горутину
	ctx, cancel := context.WithCancel(context.Background())

	// Настраиваем обработку сигналов завершения
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nЗавершение работы...")
		cancel()
		time.Sleep(5 * time.Second) // Даем горутинам время на завершение
		os.Exit(0)
	}()

	// Инициализируем хранилище
	store, err := storage.NewInfluxDBStorage(cfg.Storage)
	if err != nil {
		logger.Fatal("Ошибка инициализации хранилища", zap.Error(err))
	}
	defer store.Close()

	// Собираем реестр отслеживаемых активов
	assetConfigs, err := cfg.AssetConfigs()
	if err != nil {
		logger.Fatal("Ошибка конфигурации активов", zap.Error(err))
	}
	registry, err := assets.NewRegistry(assetConfigs)
	if err != nil {
		logger.Fatal("Ошибка построения реестра активов", zap.Error(err))
	}

	// Инициализируем клиент биржи
	client, err := exchange.NewBinanceClient(cfg.Binance)
	if err != nil {
		logger.Fatal("Ошибка инициализации клиента биржи", zap.Error(err))
	}

	// Действующие веса факторов
	weights, err := cfg.Analysis.ResolveWeights()
	if err != nil {
		logger.Fatal("Ошибка разрешения весов факторов", zap.Error(err))
	}

	// Создаем композитный анализатор риска
	analyzer := composite.NewAnalyzer(cfg.Analysis, weights, registry, store)

	// Режим пересчета истории: считаем и выходим без UI
	if *backfill {
		for _, symbol := range registry.Symbols() {
			points, err := analyzer.ComputeHistory(ctx, symbol)
			if err != nil {
				logger.Error("Ошибка расчета истории риска",
					zap.String("symbol", symbol), zap.Error(err))
				continue
			}
			logger.Info("История риска рассчитана",
				zap.String("symbol", symbol), zap.Int("points", len(points)))
		}
		return
	}

	// Инициализируем UI
	userInterface, err := ui.NewTermUI(cfg.UI, analyzer, ctx)
	if err != nil {
		logger.Fatal("Ошибка инициализации пользовательского интерфейса", zap.Error(err))
	}

	// Запускаем сборщики данных в отдельных горутинах
	dataCollectors := []exchange.DataCollector{
		exchange.NewPriceHistoryCollector(marketdata.NewCoinGeckoClient(cfg.CoinGecko), store, registry),
		exchange.NewCandleCollector(client, store, registry.Symbols()),
		exchange.NewFundingRateCollector(client, store, registry.Symbols()),
		exchange.NewFearGreedCollector(marketdata.NewFearGreedClient(cfg.FearGreed), store),
		exchange.NewMacroCollector(marketdata.NewMacroClient(cfg.Macro), store),
	}

	for _, collector := range dataCollectors {
		collector := collector // Локальная копия для горутины
		go func() {
			defer collector.Stop()
			if err := collector.Start(ctx); err != nil {
				log.Printf("Предупреждение: ошибка запуска сборщика данных: %v", err)
			}
		}()
	}

	// Запускаем аналитический процесс в горутине
	go func() {
		// Отложенный старт для накопления данных
		time.Sleep(5 * time.Second)

		ticker := time.NewTicker(time.Duration(cfg.Analysis.IntervalSeconds) * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				risks, err := analyzer.GenerateRiskPoints(ctx)
				if err != nil {
					log.Printf("Предупреждение: ошибка расчета риска: %v", err)
					continue
				}
				if len(risks) > 0 {
					userInterface.UpdateRisks(risks)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Запускаем UI в основном потоке (блокирующий вызов)
	// Это последняя инструкция в основном потоке
	userInterface.Start()
}
