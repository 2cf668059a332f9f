package types

import "testing"

func TestNativeCoins(t *testing.T) {
	tests := []struct {
		name  string
		value Native
		want  int64
	}{
		{"One coin", Coins(1), UnitsPerCoin},
		{"Ten coins", Coins(10), 10 * UnitsPerCoin},
		{"Zero", Coins(0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if int64(tt.value) != tt.want {
				t.Errorf("Got %d, want %d", int64(tt.value), tt.want)
			}
		})
	}
}

func TestNativeString(t *testing.T) {
	tests := []struct {
		name  string
		value Native
		want  string
	}{
		{"Whole", Coins(1), "1.000000000"},
		{"Fractional", Native(1_500_000_000), "1.500000000"},
		{"Base units", Native(42), "0.000000042"},
		{"Zero", Native(0), "0.000000000"},
		{"Negative", Native(-2_250_000_000), "-2.250000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("Got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNativePredicates(t *testing.T) {
	if !Native(0).IsZero() {
		t.Error("zero should be zero")
	}
	if !Native(1).IsPositive() {
		t.Error("1 should be positive")
	}
	if Native(-1).IsPositive() {
		t.Error("-1 should not be positive")
	}
	if Native(-5).Abs() != Native(5) {
		t.Error("Abs(-5) should be 5")
	}
}
