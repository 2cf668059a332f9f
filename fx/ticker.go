package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/escrow/types"
)

// Ticker fetches the spot price of the native coin from an exchange ticker
// endpoint. Each Rate call performs a fresh HTTP request; nothing is cached,
// so tolerance checks always see the current market price.
//
// The endpoint is expected to return a JSON object with a "price" field
// holding a decimal string, the shape served by Coinbase-style product
// tickers (e.g. /products/ETH-USD/ticker).
type Ticker struct {
	url      string
	currency string
	client   *http.Client
}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithHTTPClient sets the HTTP client used for ticker requests.
func WithHTTPClient(c *http.Client) TickerOption {
	return func(t *Ticker) { t.client = c }
}

// WithCurrency sets the reference currency the ticker quotes in (default "usd").
func WithCurrency(currency string) TickerOption {
	return func(t *Ticker) { t.currency = strings.ToLower(currency) }
}

// NewTicker creates a Ticker provider for the given endpoint URL.
func NewTicker(url string, opts ...TickerOption) *Ticker {
	t := &Ticker{
		url:      url,
		currency: "usd",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Rate implements Provider.
func (t *Ticker) Rate(ctx context.Context) (Rate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.url, nil)
	if err != nil {
		return types.Money{}, fmt.Errorf("fx: build ticker request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return types.Money{}, fmt.Errorf("fx: fetch ticker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Money{}, fmt.Errorf("fx: ticker returned status %d", resp.StatusCode)
	}

	var body struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return types.Money{}, fmt.Errorf("fx: decode ticker response: %w", err)
	}

	cents, err := parsePriceCents(body.Price)
	if err != nil {
		return types.Money{}, err
	}
	if cents <= 0 {
		return types.Money{}, ErrInvalidRate
	}

	return types.Money{Amount: cents, Currency: t.currency}, nil
}

// parsePriceCents converts a decimal price string such as "3301.25" into
// integer cents, truncating extra fractional digits.
func parsePriceCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("fx: empty ticker price")
	}

	whole, frac, _ := strings.Cut(s, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("fx: parse ticker price %q: %w", s, err)
	}

	var f int64
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("fx: parse ticker price %q: %w", s, err)
		}
	}

	return w*100 + f, nil
}
