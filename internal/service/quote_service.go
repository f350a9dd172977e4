package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	quoteCacheKey = "quote_today"
	quoteCacheTTL = 10 * time.Minute

	// FallbackQuote is shown when the upstream API is unreachable.
	FallbackQuote = "Could not fetch today's quote."
)

// QuoteService fetches the quote of the day and caches it for ten
// minutes. The cache is an explicit keyed store, not process-global
// state.
type QuoteService struct {
	url    string
	client *http.Client
	cache  *gocache.Cache
}

func NewQuoteService(url string) *QuoteService {
	return &QuoteService{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		cache:  gocache.New(quoteCacheTTL, quoteCacheTTL),
	}
}

// TodayQuote returns the cached quote, fetching on a miss. Fetch
// failures degrade to a fallback string and are not cached.
func (s *QuoteService) TodayQuote(ctx context.Context) string {
	if cached, ok := s.cache.Get(quoteCacheKey); ok {
		return cached.(string)
	}

	quote, err := s.fetch(ctx)
	if err != nil {
		return FallbackQuote
	}

	s.cache.Set(quoteCacheKey, quote, quoteCacheTTL)
	return quote
}

func (s *QuoteService) fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return "", fmt.Errorf("build quote request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch quote: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read quote body: %w", err)
	}

	// The API returns an array; "h" is the pre-formatted HTML quote.
	var payload []struct {
		HTML string `json:"h"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode quote: %w", err)
	}
	if len(payload) == 0 || payload[0].HTML == "" {
		return "", fmt.Errorf("decode quote: empty response")
	}
	return payload[0].HTML, nil
}
