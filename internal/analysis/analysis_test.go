package analysis

import (
	"math"
	"testing"
)

func TestDominantFrequency(t *testing.T) {
	const n, period, dt = 256, 16, 0.01
	series := make([]float64, n)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*float64(i)/period)
	}

	freq, power := DominantFrequency(series, dt)
	want := 1 / (period * dt)
	if math.Abs(freq-want) > 1e-9 {
		t.Errorf("frequency = %v, want %v", freq, want)
	}
	if power <= 0 {
		t.Errorf("power = %v", power)
	}
}

func TestDominantFrequency_Alternating(t *testing.T) {
	series := make([]float64, 64)
	for i := range series {
		series[i] = float64(i % 2)
	}
	freq, _ := DominantFrequency(series, 0.5)
	if math.Abs(freq-1) > 1e-9 {
		t.Errorf("alternating series should peak at nyquist (1 Hz), got %v", freq)
	}
}

func TestDominantFrequency_Flat(t *testing.T) {
	if f, p := DominantFrequency([]float64{2, 2, 2, 2}, 0.1); f != 0 || p != 0 {
		t.Errorf("flat series = (%v, %v), want zeros", f, p)
	}
	if f, _ := DominantFrequency([]float64{1}, 0.1); f != 0 {
		t.Error("single sample has no frequency")
	}
}

func TestSettleTick(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   int
	}{
		{"settles", []float64{5, 3, 0.5, 0.1, 0.05}, 2},
		{"relapses", []float64{0.1, 2, 0.1, 0.1}, 2},
		{"never", []float64{5, 4, 3}, -1},
		{"always", []float64{0.1, 0.2}, 0},
		{"empty", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SettleTick(tt.series, 1); got != tt.want {
				t.Errorf("SettleTick = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPeak(t *testing.T) {
	if v, i := Peak([]float64{1, 7, 3, 7}); v != 7 || i != 1 {
		t.Errorf("Peak = (%v, %d), want (7, 1)", v, i)
	}
	if _, i := Peak(nil); i != -1 {
		t.Error("empty series should report index -1")
	}
}
