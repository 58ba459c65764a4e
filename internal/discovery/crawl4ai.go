package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/huntdesk/internal/errors"
)

const crawl4aiTimeout = 30 * time.Second

// Crawl4AI discovers entities with a Crawl4AI search service.
type Crawl4AI struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewCrawl4AI creates a discoverer for the service at baseURL.
func NewCrawl4AI(baseURL string, logger *slog.Logger) *Crawl4AI {
	return &Crawl4AI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: crawl4aiTimeout}, //nolint:exhaustruct // defaults are fine
		logger:  logger.With("source", "discovery.Crawl4AI"),
	}
}

type searchRequest struct {
	Query  string `json:"query"`
	Market string `json:"market"`
}

// Discover searches for query in market. Failures are logged and yield an empty result.
func (c *Crawl4AI) Discover(ctx context.Context, query, market string) Result {
	entities, err := c.search(ctx, query, market)
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "discovery failed, continuing with empty result",
			slog.String("market", market), errors.SlogError(err))
		return newResult(nil)
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "discovered entities",
		slog.String("market", market), slog.Int("count", len(entities)))
	return newResult(entities)
}

func (c *Crawl4AI) search(ctx context.Context, query, market string) ([]string, error) {
	body, err := json.Marshal(searchRequest{Query: query, Market: market})
	if err != nil {
		return nil, errors.Wrap(err, "marshal search request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create search request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send search request")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Sprintf("unexpected status %d", resp.StatusCode),
			slog.Int("status", resp.StatusCode))
	}

	var result Result
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}
	entities := make([]string, 0, len(result.Entities))
	for _, entity := range result.Entities {
		if entity = strings.TrimSpace(entity); entity != "" {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}
