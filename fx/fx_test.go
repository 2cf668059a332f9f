package fx_test

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xraph/escrow/fx"
	"github.com/xraph/escrow/types"
)

func TestExpectedNative(t *testing.T) {
	tests := []struct {
		name   string
		amount types.Money
		rate   fx.Rate
		want   types.Native
	}{
		// $2,000.00 at $200.00/coin = 10 coins
		{"Whole coins", types.USD(200_000), types.USD(20_000), types.Coins(10)},
		// $1,000.00 at $200.00/coin = 5 coins
		{"Monthly rent", types.USD(100_000), types.USD(20_000), types.Coins(5)},
		// $5.00 at $200.00/coin = 0.025 coins
		{"Tolerance band", types.USD(500), types.USD(20_000), types.Native(25_000_000)},
		// $100.00 at $3,301.25/coin truncates toward zero
		{"Truncation", types.USD(10_000), types.USD(330_125), types.Native(10_000 * types.UnitsPerCoin / 330_125)},
		{"Zero amount", types.USD(0), types.USD(20_000), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := fx.ExpectedNative(tt.amount, tt.rate)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExpectedNativeErrors(t *testing.T) {
	if _, err := fx.ExpectedNative(types.USD(100), types.USD(0)); !errors.Is(err, fx.ErrInvalidRate) {
		t.Errorf("zero rate: got %v, want ErrInvalidRate", err)
	}
	if _, err := fx.ExpectedNative(types.USD(100), types.USD(-1)); !errors.Is(err, fx.ErrInvalidRate) {
		t.Errorf("negative rate: got %v, want ErrInvalidRate", err)
	}
	if _, err := fx.ExpectedNative(types.USD(1<<62), types.USD(100)); !errors.Is(err, fx.ErrOverflow) {
		t.Errorf("huge amount: got %v, want ErrOverflow", err)
	}

	// The convertible bound is math.MaxInt64 scaled down by the base-unit
	// factor: the largest amount whose base-unit product still fits.
	const maxCents = math.MaxInt64 / types.UnitsPerCoin
	if _, err := fx.ExpectedNative(types.USD(maxCents), types.USD(100)); err != nil {
		t.Errorf("amount at the bound: got %v, want success", err)
	}
	if _, err := fx.ExpectedNative(types.USD(maxCents+1), types.USD(100)); !errors.Is(err, fx.ErrOverflow) {
		t.Errorf("amount past the bound: got %v, want ErrOverflow", err)
	}
}

func TestWithinTolerance(t *testing.T) {
	expected := types.Coins(10)
	tol := types.Native(25_000_000)

	tests := []struct {
		name     string
		received types.Native
		want     bool
	}{
		{"Exact", expected, true},
		{"Upper boundary", expected + tol, true},
		{"Lower boundary", expected - tol, true},
		{"Above band", expected + tol + 1, false},
		{"Below band", expected - tol - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fx.WithinTolerance(tt.received, expected, tol); got != tt.want {
				t.Errorf("Got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFixedProvider(t *testing.T) {
	p := fx.Fixed(types.USD(20_000))

	rate, err := p.Rate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !rate.Equal(types.USD(20_000)) {
		t.Errorf("Got %v, want %v", rate, types.USD(20_000))
	}

	bad := fx.Fixed(types.USD(0))
	if _, err := bad.Rate(context.Background()); !errors.Is(err, fx.ErrInvalidRate) {
		t.Errorf("zero fixed rate: got %v, want ErrInvalidRate", err)
	}
}

func TestTicker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"price":"3301.25"}`))
	}))
	defer srv.Close()

	ticker := fx.NewTicker(srv.URL)

	rate, err := ticker.Rate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !rate.Equal(types.USD(330_125)) {
		t.Errorf("Got %v, want %v", rate, types.USD(330_125))
	}
}

func TestTickerErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"Server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"Bad JSON", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}},
		{"Empty price", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"price":""}`))
		}},
		{"Zero price", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"price":"0.00"}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			if _, err := fx.NewTicker(srv.URL).Rate(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}
