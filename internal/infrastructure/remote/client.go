package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/romanzzaa/mod-auth/internal/domain"
)

// Client читает опубликованный keys.json (GitHub Pages)
type Client struct {
	keysURL string
	http    *resty.Client
	now     func() time.Time
	logger  *slog.Logger
}

func NewClient(keysURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		keysURL: keysURL,
		http:    resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		now:     time.Now,
		logger:  logger.With("component", "remote"),
	}
}

// Fetch никогда не возвращает ошибку: сеть, не-2xx или битый JSON дают пустой список.
func (c *Client) Fetch(ctx context.Context) domain.KeysData {
	empty := domain.KeysData{}.Normalize()

	// ?t= обходит кэш GitHub Pages
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("t", strconv.FormatInt(c.now().UnixMilli(), 10)).
		Get(c.keysURL)
	if err != nil {
		c.logger.Warn("Failed to fetch published keys", slog.String("error", err.Error()))
		return empty
	}

	if !resp.IsSuccess() {
		c.logger.Warn("Published keys unavailable",
			slog.String("url", c.keysURL),
			slog.Int("status", resp.StatusCode()))
		return empty
	}

	var data domain.KeysData
	if err := json.Unmarshal(resp.Body(), &data); err != nil {
		c.logger.Warn("Published keys are malformed", slog.String("error", err.Error()))
		return empty
	}

	return data.Normalize()
}
