package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/pkg/models"
)

// MacroClient клиент дневных макроэкономических рядов (stooq, CSV)
type MacroClient struct {
	baseURL string
	symbols map[string]string // имя ряда -> тикер источника
	http    *http.Client
}

// NewMacroClient создает новый клиент макро-рядов
func NewMacroClient(cfg config.MacroSource) *MacroClient {
	return &MacroClient{
		baseURL: cfg.BaseURL,
		symbols: cfg.Symbols,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Series возвращает имена сконфигурированных рядов
func (c *MacroClient) Series() []string {
	out := make([]string, 0, len(c.symbols))
	for name := range c.symbols {
		out = append(out, name)
	}
	return out
}

// Daily получает дневной ряд закрытий по имени ряда
func (c *MacroClient) Daily(ctx context.Context, series string) ([]models.MacroPoint, error) {
	ticker, ok := c.symbols[series]
	if !ok {
		return nil, fmt.Errorf("не сконфигурирован тикер для ряда %s", series)
	}

	url := fmt.Sprintf("%s/q/d/l/?s=%s&i=d", c.baseURL, ticker)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса ряда %s: %w", series, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("источник ряда %s вернул статус %d", series, resp.StatusCode)
	}

	return parseDailyCSV(resp.Body, series)
}

// parseDailyCSV разбирает CSV вида Date,Open,High,Low,Close,Volume
func parseDailyCSV(r io.Reader, series string) ([]models.MacroPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // у некоторых рядов нет колонки Volume

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("пустой ряд %s", series)
	}

	var points []models.MacroPoint
	for _, rec := range records[1:] { // первая строка — заголовок
		if len(rec) < 5 {
			continue
		}
		date, err := time.Parse("2006-01-02", rec[0])
		if err != nil {
			continue
		}
		closeValue, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			continue
		}
		points = append(points, models.MacroPoint{
			Series: series,
			Date:   date.UTC(),
			Value:  closeValue,
		})
	}

	if len(points) == 0 {
		return nil, fmt.Errorf("нет валидных точек в ряду %s", series)
	}
	return points, nil
}
