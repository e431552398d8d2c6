package scanner

import (
	"math"
	"math/rand"
	"testing"

	"radar-screener/internal/models"
)

func history(prices ...float64) []models.PricePoint {
	points := make([]models.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = models.PricePoint{Price: p}
	}
	return points
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDetectMedian(t *testing.T) {
	tests := []struct {
		name      string
		history   []models.PricePoint
		latest    float64
		threshold float64
		wantDip   bool
		wantRef   float64
		wantDisc  float64
	}{
		{
			name:      "odd window",
			history:   history(100, 90, 110),
			latest:    90,
			threshold: 15,
			wantDip:   false,
			wantRef:   100,
			wantDisc:  10,
		},
		{
			name:      "even window averages middle values",
			history:   history(80, 100, 100, 100),
			latest:    80,
			threshold: 15,
			wantDip:   true,
			wantRef:   100,
			wantDisc:  20,
		},
		{
			name:      "deep dip",
			history:   history(100, 100, 100, 70),
			latest:    70,
			threshold: 15,
			wantDip:   true,
			wantRef:   100,
			wantDisc:  30,
		},
		{
			name:      "single point is its own reference",
			history:   history(120),
			latest:    120,
			threshold: 15,
			wantDip:   false,
			wantRef:   120,
			wantDisc:  0,
		},
		{
			name:      "price above reference is a negative discount",
			history:   history(100, 100, 130),
			latest:    130,
			threshold: 15,
			wantDip:   false,
			wantRef:   100,
			wantDisc:  -30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.history, tt.latest, tt.threshold)
			if got.Insufficient {
				t.Fatalf("Detect() unexpectedly insufficient")
			}
			if got.Dip != tt.wantDip {
				t.Errorf("Dip = %v, want %v", got.Dip, tt.wantDip)
			}
			if !almostEqual(got.ReferencePrice, tt.wantRef) {
				t.Errorf("ReferencePrice = %v, want %v", got.ReferencePrice, tt.wantRef)
			}
			if !almostEqual(got.DiscountPct, tt.wantDisc) {
				t.Errorf("DiscountPct = %v, want %v", got.DiscountPct, tt.wantDisc)
			}
		})
	}
}

func TestDetectThresholdBoundaryInclusive(t *testing.T) {
	// Reference 100, latest 85 -> discount exactly 15.
	result := Detect(history(100, 100, 100, 100, 85), 85, 15)
	if result.Insufficient {
		t.Fatal("unexpected insufficient result")
	}
	if !almostEqual(result.DiscountPct, 15) {
		t.Fatalf("DiscountPct = %v, want 15", result.DiscountPct)
	}
	if !result.Dip {
		t.Error("discount equal to threshold must trigger")
	}

	// Just below threshold must not trigger.
	below := Detect(history(100, 100, 100, 100, 85.01), 85.01, 15)
	if below.Dip {
		t.Error("discount below threshold must not trigger")
	}
}

func TestDetectInsufficientData(t *testing.T) {
	if got := Detect(nil, 100, 15); !got.Insufficient {
		t.Error("empty history must be insufficient")
	}
	if got := Detect(history(), 100, 15); !got.Insufficient {
		t.Error("zero-length history must be insufficient")
	}
	// A non-positive median is also a no-decision outcome.
	if got := Detect(history(0, 0, 0), 0, 15); !got.Insufficient {
		t.Error("zero median must be insufficient")
	}
}

func TestDetectOrderInvariance(t *testing.T) {
	base := []float64{120, 80, 95, 100, 103, 99, 150, 60}
	want := Detect(history(base...), 80, 15)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := append([]float64(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Detect(history(shuffled...), 80, 15)
		if !almostEqual(got.ReferencePrice, want.ReferencePrice) {
			t.Fatalf("median changed under reordering: %v != %v", got.ReferencePrice, want.ReferencePrice)
		}
	}
}
