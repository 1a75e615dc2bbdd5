package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/pkg/models"
)

// CoinGeckoClient клиент длинной дневной истории цен.
// Готового SDK нет, поэтому обычный HTTP-клиент.
type CoinGeckoClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewCoinGeckoClient создает новый клиент CoinGecko
func NewCoinGeckoClient(cfg config.CoinGeckoConfig) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// MarketChartRange получает дневную историю цены за интервал дат
func (c *CoinGeckoClient) MarketChartRange(ctx context.Context, geckoID string, from, to time.Time) ([]models.PricePoint, error) {
	url := fmt.Sprintf("%s/coins/%s/market_chart/range?vs_currency=usd&from=%d&to=%d",
		c.baseURL, geckoID, from.Unix(), to.Unix())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории цен: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CoinGecko вернул статус %d для %s", resp.StatusCode, geckoID)
	}

	var payload struct {
		Prices [][]float64 `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа: %w", err)
	}

	points := make([]models.PricePoint, 0, len(payload.Prices))
	for _, pair := range payload.Prices {
		if len(pair) != 2 {
			continue
		}
		points = append(points, models.PricePoint{
			Date:  time.UnixMilli(int64(pair[0])).UTC(),
			Price: pair[1],
		})
	}

	return points, nil
}
