package marketdata

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"VolScan/internal/domain/models"
	domrepo "VolScan/internal/domain/repository"
	"VolScan/internal/service/ratelimit"
	pkghttp "VolScan/pkg/http"
	applogger "VolScan/pkg/logger"
	"VolScan/pkg/util"
)

// Config holds the upstream data provider settings.
type Config struct {
	BaseURL     string
	APIKey      string
	APISecret   string
	Timeout     time.Duration
	MaxRetries  int
	RequestsSec float64
}

// Client fetches daily OHLCV history over the provider's REST API.
// Requests are paced by a token bucket and retried with exponential
// backoff on transient failures.
type Client struct {
	cfg     Config
	http    *pkghttp.Client
	limiter *ratelimit.Limiter
	l       *applogger.Logger
}

// New creates a market data client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsSec <= 0 {
		cfg.RequestsSec = 3
	}
	return &Client{
		cfg:     cfg,
		http:    pkghttp.NewClient(pkghttp.WithTimeout(cfg.Timeout)),
		limiter: ratelimit.New(),
	}
}

// SetLogger injects a structured logger.
func (c *Client) SetLogger(l *applogger.Logger) { c.l = l }

type barPayload struct {
	Time   string  `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume int64   `json:"v"`
}

type barsResponse struct {
	Symbol string       `json:"symbol"`
	Bars   []barPayload `json:"bars"`
}

// DailyBars returns up to `days` trailing daily bars for symbol,
// date-ascending. A symbol the provider does not know yields ErrNoData;
// a known symbol with no history yields an empty series.
func (c *Client) DailyBars(ctx context.Context, symbol string, days int) (models.PriceSeries, error) {
	if symbol == "" {
		return models.PriceSeries{}, fmt.Errorf("symbol required")
	}
	if days <= 0 {
		days = 150
	}

	if err := c.throttle(ctx); err != nil {
		return models.PriceSeries{}, err
	}

	var payload barsResponse
	op := func() error {
		err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: pkghttp.MethodGet,
			URL:    fmt.Sprintf("%s/stocks/%s/bars", strings.TrimRight(c.cfg.BaseURL, "/"), symbol),
			Headers: map[string]string{
				"APCA-API-KEY-ID":     c.cfg.APIKey,
				"APCA-API-SECRET-KEY": c.cfg.APISecret,
			},
			QueryParams: map[string][]string{
				"timeframe": {"1Day"},
				"limit":     {strconv.Itoa(days)},
				"start":     {util.DaysAgo(2 * days).Format("2006-01-02")},
			},
		}, &payload)
		if err == nil {
			return nil
		}
		if strings.Contains(err.Error(), "status 404") || strings.Contains(err.Error(), "status 422") {
			return backoff.Permanent(domrepo.ErrNoData)
		}
		return err
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		if c.l != nil {
			c.l.Warn("daily bars fetch failed",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return models.PriceSeries{}, fmt.Errorf("daily bars %s: %w", symbol, err)
	}

	series := models.PriceSeries{Symbol: symbol, Bars: make([]models.PriceBar, 0, len(payload.Bars))}
	for _, b := range payload.Bars {
		ts, err := time.Parse(time.RFC3339, b.Time)
		if err != nil {
			return models.PriceSeries{}, fmt.Errorf("parse bar time %q: %w", b.Time, err)
		}
		series.Bars = append(series.Bars, models.PriceBar{
			Symbol: symbol,
			Date:   ts.UTC(),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}
	sort.Slice(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})
	if len(series.Bars) > days {
		series.Bars = series.Bars[len(series.Bars)-days:]
	}

	if c.l != nil {
		c.l.Debug("daily bars fetched",
			applogger.String("symbol", symbol),
			applogger.Int("bars", len(series.Bars)),
		)
	}
	return series, nil
}

// throttle blocks until a request token is available or ctx expires.
func (c *Client) throttle(ctx context.Context) error {
	for !c.limiter.Allow("marketdata", c.cfg.RequestsSec, c.cfg.RequestsSec) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}
