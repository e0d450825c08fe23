package geo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickgig/quickgig-api/internal/domain/model"
)

func sampleAt(lat, lon, accuracy float64) model.LocationSample {
	return model.LocationSample{
		Coordinates:    model.Coordinates{Latitude: lat, Longitude: lon},
		AccuracyMeters: accuracy,
		CapturedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Source:         model.LocationSourceGPS,
	}
}

func TestNewVerifier_Defaults(t *testing.T) {
	t.Parallel()

	v, err := NewVerifier(VerifierOptions{})
	require.NoError(t, err)
	assert.InDelta(t, 500, v.MaxRadiusMeters(), 0.001)
}

func TestNewVerifier_RadiiMustNest(t *testing.T) {
	t.Parallel()

	_, err := NewVerifier(VerifierOptions{HighRadiusMeters: 300, MediumRadiusMeters: 200})
	require.Error(t, err)

	_, err = NewVerifier(VerifierOptions{MediumRadiusMeters: 600, MaxRadiusMeters: 500})
	require.Error(t, err)
}

func TestDistance_Haversine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     model.Coordinates
		expected float64
		delta    float64
	}{
		{
			name:     "same point",
			a:        model.Coordinates{Latitude: 40, Longitude: -74},
			b:        model.Coordinates{Latitude: 40, Longitude: -74},
			expected: 0,
			delta:    0.001,
		},
		{
			name:     "one hundredth degree diagonal near NYC is roughly 1.4km",
			a:        model.Coordinates{Latitude: 40, Longitude: -74},
			b:        model.Coordinates{Latitude: 40.01, Longitude: -74.01},
			expected: 1400,
			delta:    100,
		},
		{
			name:     "one degree of latitude is roughly 111km",
			a:        model.Coordinates{Latitude: 40, Longitude: -74},
			b:        model.Coordinates{Latitude: 41, Longitude: -74},
			expected: 111195,
			delta:    200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.expected, Distance(tt.a, tt.b), tt.delta)
			// Symmetric by definition.
			assert.InDelta(t, Distance(tt.a, tt.b), Distance(tt.b, tt.a), 0.0001)
		})
	}
}

func TestVerifier_Verify_Tiers(t *testing.T) {
	t.Parallel()

	v := MustNewVerifier(VerifierOptions{})
	target := model.Coordinates{Latitude: 40, Longitude: -74}

	// Offsets in degrees of latitude: 1 degree is ~111,195m, so meters/111195.
	offsetFor := func(meters float64) float64 { return meters / 111195.0 }

	tests := []struct {
		name       string
		distanceM  float64
		accuracyM  float64
		confidence Confidence
		valid      bool
	}{
		{name: "on site", distanceM: 1.5, accuracyM: 15, confidence: ConfidenceHigh, valid: true},
		{name: "inside high radius", distanceM: 95, accuracyM: 20, confidence: ConfidenceHigh, valid: true},
		{name: "inside medium radius", distanceM: 150, accuracyM: 20, confidence: ConfidenceMedium, valid: true},
		{name: "near the gate edge", distanceM: 400, accuracyM: 20, confidence: ConfidenceLow, valid: true},
		{name: "beyond the gate", distanceM: 700, accuracyM: 20, confidence: ConfidenceRejected, valid: false},
		{name: "coarse GPS downgrades high to low", distanceM: 50, accuracyM: 150, confidence: ConfidenceLow, valid: true},
		{name: "coarse GPS downgrades medium to low", distanceM: 150, accuracyM: 150, confidence: ConfidenceLow, valid: true},
		{name: "coarse GPS never rescues a rejection", distanceM: 700, accuracyM: 150, confidence: ConfidenceRejected, valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sample := sampleAt(target.Latitude+offsetFor(tt.distanceM), target.Longitude, tt.accuracyM)

			result := v.Verify(sample, target)

			assert.Equal(t, tt.confidence, result.Confidence)
			assert.Equal(t, tt.valid, result.IsValid)
			assert.InDelta(t, tt.distanceM, result.DistanceMeters, tt.distanceM*0.02+1)
			if tt.confidence != ConfidenceHigh {
				assert.NotEmpty(t, result.Reasons, "non-high confidence must explain itself")
			}
		})
	}
}

func TestVerifier_Verify_SpecScenarios(t *testing.T) {
	t.Parallel()

	v := MustNewVerifier(VerifierOptions{})
	target := model.Coordinates{Latitude: 40.0, Longitude: -74.0}

	t.Run("worker a meter and a half away", func(t *testing.T) {
		t.Parallel()
		result := v.Verify(sampleAt(40.00001, -74.00001, 15), target)

		assert.True(t, result.IsValid)
		assert.Equal(t, ConfidenceHigh, result.Confidence)
		assert.Less(t, result.DistanceMeters, 5.0)
		assert.Empty(t, result.Reasons)
	})

	t.Run("worker over a kilometer away", func(t *testing.T) {
		t.Parallel()
		result := v.Verify(sampleAt(40.01, -74.01, 15), target)

		assert.False(t, result.IsValid)
		assert.Equal(t, ConfidenceRejected, result.Confidence)
		assert.InDelta(t, 1400, result.DistanceMeters, 100)
		assert.NotEmpty(t, result.Reasons)
	})
}

func TestVerifier_Verify_Deterministic(t *testing.T) {
	t.Parallel()

	v := MustNewVerifier(VerifierOptions{})
	target := model.Coordinates{Latitude: 40, Longitude: -74}
	sample := sampleAt(40.001, -74.001, 30)

	first := v.Verify(sample, target)
	for range 10 {
		assert.Equal(t, first, v.Verify(sample, target))
	}
}
