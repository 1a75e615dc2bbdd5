package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/skalibog/mfra/internal/config"
	"github.com/skalibog/mfra/pkg/models"
)

// FearGreedClient клиент индекса страха и жадности alternative.me
type FearGreedClient struct {
	baseURL string
	http    *http.Client
}

// NewFearGreedClient создает новый клиент индекса
func NewFearGreedClient(cfg config.FearGreedSource) *FearGreedClient {
	return &FearGreedClient{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// History получает историю индекса; limit = 0 — вся история
func (c *FearGreedClient) History(ctx context.Context, limit int) ([]models.FearGreedPoint, error) {
	url := fmt.Sprintf("%s/fng/?limit=%d&format=json", c.baseURL, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса индекса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("источник индекса вернул статус %d", resp.StatusCode)
	}

	var payload struct {
		Data []struct {
			Value     string `json:"value"`
			Timestamp string `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ошибка разбора ответа: %w", err)
	}

	points := make([]models.FearGreedPoint, 0, len(payload.Data))
	for _, d := range payload.Data {
		value, err := strconv.Atoi(d.Value)
		if err != nil {
			continue
		}
		ts, err := strconv.ParseInt(d.Timestamp, 10, 64)
		if err != nil {
			continue
		}
		points = append(points, models.FearGreedPoint{
			Date:  time.Unix(ts, 0).UTC(),
			Value: value,
		})
	}

	return points, nil
}
