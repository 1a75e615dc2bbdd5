// internal/storage/influxdb.go
package storage

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/pkg/models"
)

// Начало диапазона запросов: история цен тянется с 2009 года
const queryRangeStart = "1970-01-01T00:00:00Z"

// InfluxDBStorage реализует интерфейс Storage с использованием InfluxDB
type InfluxDBStorage struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	writeAPI api.WriteAPI
	org      string
	bucket   string
}

// NewInfluxDBStorage создает новое хранилище InfluxDB
func NewInfluxDBStorage(cfg config.StorageConfig) (*InfluxDBStorage, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	// Проверка соединения
	health, err := client.Health(context.Background())
	if err != nil {
		return nil, fmt.Errorf("ошибка соединения с InfluxDB: %w", err)
	}
	if health == nil || health.Status != "pass" {
		return nil, fmt.Errorf("InfluxDB не в состоянии 'pass': %+v", health)
	}

	queryAPI := client.QueryAPI(cfg.Organization)
	writeAPI := client.WriteAPI(cfg.Organization, cfg.Bucket)

	return &InfluxDBStorage{
		client:   client,
		queryAPI: queryAPI,
		writeAPI: writeAPI,
		org:      cfg.Organization,
		bucket:   cfg.Bucket,
	}, nil
}

// Close закрывает соединение с базой данных
func (s *InfluxDBStorage) Close() {
	s.client.Close()
}

// SavePricePoints сохраняет точки дневной истории цены
func (s *InfluxDBStorage) SavePricePoints(ctx context.Context, symbol string, points []models.PricePoint) error {
	for _, p := range points {
		point := influxdb2.NewPoint(
			"prices",
			map[string]string{
				"symbol": symbol,
			},
			map[string]interface{}{
				"price": p.Price,
			},
			p.Date,
		)
		s.writeAPI.WritePoint(point)
	}

	s.writeAPI.Flush()
	return nil
}

// GetPriceHistory возвращает дневную историю цены по возрастанию даты.
// limit > 0 ограничивает выборку последними limit точками,
// limit = 0 возвращает всю историю.
func (s *InfluxDBStorage) GetPriceHistory(ctx context.Context, symbol string, limit int) ([]models.PricePoint, error) {
	tail := ""
	if limit > 0 {
		tail = fmt.Sprintf("|> tail(n: %d)", limit)
	}

	query := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "prices")
			|> filter(fn: (r) => r.symbol == "%s")
			|> filter(fn: (r) => r._field == "price")
			|> sort(columns: ["_time"])
			%s
	`, s.bucket, queryRangeStart, symbol, tail)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории цен: %w", err)
	}

	var points []models.PricePoint
	for result.Next() {
		record := result.Record()
		price, _ := record.Value().(float64)
		points = append(points, models.PricePoint{
			Date:  record.Time(),
			Price: price,
		})
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return points, nil
}

// SaveFundingRate сохраняет ставку финансирования
func (s *InfluxDBStorage) SaveFundingRate(ctx context.Context, rate *models.FundingRate) error {
	point := influxdb2.NewPoint(
		"funding_rates",
		map[string]string{
			"symbol": rate.Symbol,
		},
		map[string]interface{}{
			"rate":         rate.Rate,
			"next_funding": rate.NextFundingTime.Unix(),
		},
		rate.Timestamp,
	)

	s.writeAPI.WritePoint(point)
	s.writeAPI.Flush()

	return nil
}

// GetFundingRates возвращает историю ставок финансирования,
// свежие записи первыми
func (s *InfluxDBStorage) GetFundingRates(ctx context.Context, symbol string, limit int) ([]models.FundingRate, error) {
	query := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "funding_rates")
			|> filter(fn: (r) => r.symbol == "%s")
			|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
			|> sort(columns: ["_time"], desc: true)
			|> limit(n: %d)
	`, s.bucket, queryRangeStart, symbol, limit)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ставок финансирования: %w", err)
	}

	var rates []models.FundingRate
	for result.Next() {
		record := result.Record()
		rate, _ := record.ValueByKey("rate").(float64)
		nextFunding, _ := record.ValueByKey("next_funding").(int64)

		rates = append(rates, models.FundingRate{
			Symbol:          symbol,
			Rate:            rate,
			Timestamp:       record.Time(),
			NextFundingTime: time.Unix(nextFunding, 0),
		})
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return rates, nil
}

// SaveFearGreed сохраняет значение индекса страха и жадности
func (s *InfluxDBStorage) SaveFearGreed(ctx context.Context, p models.FearGreedPoint) error {
	point := influxdb2.NewPoint(
		"fear_greed",
		map[string]string{},
		map[string]interface{}{
			"value": int64(p.Value),
		},
		p.Date,
	)

	s.writeAPI.WritePoint(point)
	s.writeAPI.Flush()

	return nil
}

// GetFearGreedHistory возвращает историю индекса, свежие записи первыми.
// limit = 0 возвращает всю историю.
func (s *InfluxDBStorage) GetFearGreedHistory(ctx context.Context, limit int) ([]models.FearGreedPoint, error) {
	limitClause := ""
	if limit > 0 {
		limitClause = fmt.Sprintf("|> limit(n: %d)", limit)
	}

	query := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "fear_greed")
			|> filter(fn: (r) => r._field == "value")
			|> sort(columns: ["_time"], desc: true)
			%s
	`, s.bucket, queryRangeStart, limitClause)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса индекса страха и жадности: %w", err)
	}

	var points []models.FearGreedPoint
	for result.Next() {
		record := result.Record()
		value, _ := record.Value().(int64)
		points = append(points, models.FearGreedPoint{
			Date:  record.Time(),
			Value: int(value),
		})
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return points, nil
}

// SaveMacroPoint сохраняет точку макроэкономического ряда
func (s *InfluxDBStorage) SaveMacroPoint(ctx context.Context, p models.MacroPoint) error {
	point := influxdb2.NewPoint(
		"macro",
		map[string]string{
			"series": p.Series,
		},
		map[string]interface{}{
			"value": p.Value,
		},
		p.Date,
	)

	s.writeAPI.WritePoint(point)
	s.writeAPI.Flush()

	return nil
}

// SaveMacroPoints сохраняет множество точек макро-ряда
func (s *InfluxDBStorage) SaveMacroPoints(ctx context.Context, points []models.MacroPoint) error {
	for _, p := range points {
		point := influxdb2.NewPoint(
			"macro",
			map[string]string{
				"series": p.Series,
			},
			map[string]interface{}{
				"value": p.Value,
			},
			p.Date,
		)
		s.writeAPI.WritePoint(point)
	}

	s.writeAPI.Flush()
	return nil
}

// GetMacroSeries возвращает макро-ряд по возрастанию даты,
// последние limit точек (limit = 0 — весь ряд)
func (s *InfluxDBStorage) GetMacroSeries(ctx context.Context, series string, limit int) ([]models.MacroPoint, error) {
	tail := ""
	if limit > 0 {
		tail = fmt.Sprintf("|> tail(n: %d)", limit)
	}

	query := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "macro")
			|> filter(fn: (r) => r.series == "%s")
			|> filter(fn: (r) => r._field == "value")
			|> sort(columns: ["_time"])
			%s
	`, s.bucket, queryRangeStart, series, tail)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса макро-ряда: %w", err)
	}

	var points []models.MacroPoint
	for result.Next() {
		record := result.Record()
		value, _ := record.Value().(float64)
		points = append(points, models.MacroPoint{
			Series: series,
			Date:   record.Time(),
			Value:  value,
		})
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return points, nil
}

// SaveRiskPoint сохраняет точку композитного риска
func (s *InfluxDBStorage) SaveRiskPoint(ctx context.Context, symbol string, rp *models.MultiFactorRiskPoint) error {
	fields := map[string]interface{}{
		"risk_level": rp.RiskLevel,
		"price":      rp.Price,
		"fair_value": rp.FairValue,
		"deviation":  rp.Deviation,
	}

	// Разбивка по факторам сохраняется для аудита
	for _, f := range rp.Factors {
		if v, ok := f.Normalized.Get(); ok {
			fields["factor_"+string(f.Type)] = v
		}
	}

	point := influxdb2.NewPoint(
		"risk_points",
		map[string]string{
			"symbol":   symbol,
			"category": rp.Category.String(),
		},
		fields,
		rp.Date,
	)

	s.writeAPI.WritePoint(point)
	s.writeAPI.Flush()

	return nil
}

// GetRiskHistory возвращает историю точек риска, свежие записи первыми
func (s *InfluxDBStorage) GetRiskHistory(ctx context.Context, symbol string, limit int) ([]models.MultiFactorRiskPoint, error) {
	query := fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: %s)
			|> filter(fn: (r) => r._measurement == "risk_points")
			|> filter(fn: (r) => r.symbol == "%s")
			|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
			|> sort(columns: ["_time"], desc: true)
			|> limit(n: %d)
	`, s.bucket, queryRangeStart, symbol, limit)

	result, err := s.queryAPI.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории риска: %w", err)
	}

	var points []models.MultiFactorRiskPoint
	for result.Next() {
		record := result.Record()
		riskLevel, _ := record.ValueByKey("risk_level").(float64)
		price, _ := record.ValueByKey("price").(float64)
		fairValue, _ := record.ValueByKey("fair_value").(float64)
		dev, _ := record.ValueByKey("deviation").(float64)

		points = append(points, models.MultiFactorRiskPoint{
			Date:      record.Time(),
			RiskLevel: riskLevel,
			Category:  models.CategorizeRisk(riskLevel),
			Price:     price,
			FairValue: fairValue,
			Deviation: dev,
		})
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return points, nil
}

// Storage интерфейс для работы с хранилищем данных
type Storage interface {
	// Методы для истории цен
	SavePricePoints(ctx context.Context, symbol string, points []models.PricePoint) error
	GetPriceHistory(ctx context.Context, symbol string, limit int) ([]models.PricePoint, error)

	// Методы для ставок финансирования
	SaveFundingRate(ctx context.Context, rate *models.FundingRate) error
	GetFundingRates(ctx context.Context, symbol string, limit int) ([]models.FundingRate, error)

	// Методы для индекса страха и жадности
	SaveFearGreed(ctx context.Context, p models.FearGreedPoint) error
	GetFearGreedHistory(ctx context.Context, limit int) ([]models.FearGreedPoint, error)

	// Методы для макроэкономических рядов
	SaveMacroPoint(ctx context.Context, p models.MacroPoint) error
	SaveMacroPoints(ctx context.Context, points []models.MacroPoint) error
	GetMacroSeries(ctx context.Context, series string, limit int) ([]models.MacroPoint, error)

	// Методы для точек риска
	SaveRiskPoint(ctx context.Context, symbol string, rp *models.MultiFactorRiskPoint) error
	GetRiskHistory(ctx context.Context, symbol string, limit int) ([]models.MultiFactorRiskPoint, error)

	Close()
}
