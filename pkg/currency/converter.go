// Package currency converts base-currency amounts into a display currency.
// It is presentation only: stored amounts and funding arithmetic never pass
// through it.
package currency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/message"
)

const (
	SourceLive     = "live"
	SourceCached   = "cached"
	SourceFallback = "fallback"
)

type Config struct {
	// RateURL answers with {"rates": {"<TARGET>": <number>}}.
	RateURL      string
	Base         string
	Target       string
	FallbackRate decimal.Decimal
	TTL          time.Duration
	HTTPClient   *http.Client
}

type Display struct {
	Amount    decimal.Decimal `json:"amount"`
	Base      string          `json:"base"`
	Currency  string          `json:"currency"`
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	Formatted string          `json:"formatted"`
}

type Converter struct {
	config  Config
	client  *http.Client
	printer *message.Printer
	now     func() time.Time

	refresh   singleflight.Group
	mu        sync.Mutex
	rate      decimal.Decimal
	fetchedAt time.Time
}

func NewConverter(config Config) *Converter {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	config.Base = strings.ToUpper(config.Base)
	config.Target = strings.ToUpper(config.Target)

	return &Converter{
		config:  config,
		client:  client,
		printer: message.NewPrinter(language.English),
		now:     time.Now,
	}
}

// Rate returns the base->target rate and where it came from. A fresh live
// rate is reused for TTL; after that a failed refresh falls back to the last
// live rate, and to the configured rate when none was ever fetched. The lock
// is never held across the HTTP call, and concurrent refreshes share one.
func (c *Converter) Rate(ctx context.Context) (decimal.Decimal, string) {
	c.mu.Lock()
	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.config.TTL {
		rate := c.rate
		c.mu.Unlock()
		return rate, SourceCached
	}
	c.mu.Unlock()

	// The refresh is shared, so one caller's cancellation must not fail the
	// others; the client timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	v, err, _ := c.refresh.Do("rate", func() (any, error) {
		c.mu.Lock()
		if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.config.TTL {
			rate := c.rate
			c.mu.Unlock()
			return rate, nil
		}
		c.mu.Unlock()

		rate, err := c.fetch(shared)
		if err != nil {
			return nil, err
		}
		// stored before the flight ends so later callers hit the cache
		c.mu.Lock()
		c.rate = rate
		c.fetchedAt = c.now()
		c.mu.Unlock()
		return rate, nil
	})
	if err == nil {
		return v.(decimal.Decimal), SourceLive
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.fetchedAt.IsZero() {
		return c.rate, SourceCached
	}
	return c.config.FallbackRate, SourceFallback
}

func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal) Display {
	rate, source := c.Rate(ctx)
	converted := amount.Mul(rate).Round(2)

	return Display{
		Amount:    converted,
		Base:      c.config.Base,
		Currency:  c.config.Target,
		Rate:      rate,
		Source:    source,
		Formatted: c.Format(converted),
	}
}

// Format renders an amount already in the target currency, e.g. "INR 1,250.00".
func (c *Converter) Format(amount decimal.Decimal) string {
	return c.printer.Sprintf("%s %.2f", c.config.Target, amount.InexactFloat64())
}

func (c *Converter) fetch(ctx context.Context) (decimal.Decimal, error) {
	if c.config.RateURL == "" {
		return decimal.Zero, fmt.Errorf("no rate url configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.RateURL, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate service returned %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]decimal.Decimal `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate response: %w", err)
	}

	rate, ok := body.Rates[c.config.Target]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("no usable %s rate in response", c.config.Target)
	}
	return rate, nil
}
