package topics

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Selector fetches the ranked symbol selection from the exchange REST API.
type Selector struct {
	url        string
	quoteAsset string
	httpClient *http.Client
	logger     *slog.Logger

	maxRetries   int
	retryBackoff time.Duration
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// NewSelector creates a new symbol selector.
func NewSelector(url, quoteAsset string, opts ...SelectorOption) *Selector {
	s := &Selector{
		url:        url,
		quoteAsset: strings.ToUpper(quoteAsset),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       slog.Default(),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) SelectorOption {
	return func(s *Selector) {
		s.httpClient.Timeout = d
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) SelectorOption {
	return func(s *Selector) {
		s.maxRetries = max
		s.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SelectorOption {
	return func(s *Selector) {
		s.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) SelectorOption {
	return func(s *Selector) {
		s.httpClient = hc
	}
}

// TopSymbols returns the top symbols quoted in the configured asset, ranked
// by 24h quote volume, lowercased, at most limit entries. The selection is
// made once at startup; an empty result is valid and means no feeds.
func (s *Selector) TopSymbols(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}

	body, err := s.doWithRetry(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := parseTickerStats(body)
	if err != nil {
		return nil, err
	}

	ranked := make([]tickerStat, 0, len(stats))
	for _, st := range stats {
		if strings.HasSuffix(st.Symbol, s.quoteAsset) {
			ranked = append(ranked, st)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].quoteVolume() > ranked[j].quoteVolume()
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	symbols := make([]string, len(ranked))
	for i, st := range ranked {
		symbols[i] = strings.ToLower(st.Symbol)
	}

	s.logger.Info("selected top symbols",
		"count", len(symbols),
		"quote_asset", s.quoteAsset,
		"symbols", symbols,
	)

	return symbols, nil
}

// quoteVolume parses the 24h quote volume, treating unparseable values as 0
// so they rank last.
func (t tickerStat) quoteVolume() float64 {
	v, err := strconv.ParseFloat(t.QuoteVolume, 64)
	if err != nil {
		return 0
	}
	return v
}
