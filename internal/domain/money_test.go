package domain

import (
	"math"
	"testing"
)

func TestPriceToTicks(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		want    int64
		wantErr bool
	}{
		{"whole number", 10.0, 1000, false},
		{"one decimal", 10.5, 1050, false},
		{"two decimals", 10.55, 1055, false},
		{"zero", 0.0, 0, false},
		{"float artifact", 1.10, 110, false},
		{"three decimals", 10.555, 0, true},
		{"nan", math.NaN(), 0, true},
		{"positive infinity", math.Inf(1), 0, true},
		{"negative infinity", math.Inf(-1), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PriceToTicks(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %d ticks, got %d", tt.want, got)
			}
		})
	}
}

func TestTicksToPrice(t *testing.T) {
	tests := []struct {
		ticks int64
		want  float64
	}{
		{1000, 10.0},
		{1055, 10.55},
		{0, 0.0},
		{1, 0.01},
	}

	for _, tt := range tests {
		if got := TicksToPrice(tt.ticks); got != tt.want {
			t.Errorf("TicksToPrice(%d) = %v, want %v", tt.ticks, got, tt.want)
		}
	}
}

func TestPriceRoundTrip(t *testing.T) {
	for _, price := range []float64{10.0, 10.55, 0.01, 99999.99} {
		ticks, err := PriceToTicks(price)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", price, err)
		}
		if got := TicksToPrice(ticks); got != price {
			t.Errorf("round trip of %v returned %v", price, got)
		}
	}
}
