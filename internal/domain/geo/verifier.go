// Package geo implements the geofencing gate: great-circle distance between a
// worker's reported location and the job site, classified into confidence
// tiers. Everything here is pure and deterministic; no network or device
// access is ever needed.
package geo

import (
	"fmt"
	"math"

	"github.com/quickgig/quickgig-api/internal/domain/model"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
// Meters are canonical everywhere in the engine; convert at presentation
// boundaries only.
const earthRadiusMeters = 6371000.0

// Confidence is a qualitative bucket summarizing how trustworthy a
// location-based verification is.
type Confidence string

const (
	// ConfidenceHigh means the worker is within the tight radius.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium means the worker is close but not tight.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow means the worker is near the edge of the gate, or the GPS
	// accuracy was too coarse to trust a better tier.
	ConfidenceLow Confidence = "low"
	// ConfidenceRejected means the worker is outside the allowed radius.
	ConfidenceRejected Confidence = "rejected"
)

// VerificationResult is the outcome of a geofence check.
type VerificationResult struct {
	IsValid        bool       `json:"is_valid"`
	Confidence     Confidence `json:"confidence"`
	DistanceMeters float64    `json:"distance_meters"`
	AccuracyMeters float64    `json:"accuracy_meters"`
	Reasons        []string   `json:"reasons,omitempty"`
}

// VerifierOptions configure the gate radii. Zero values select defaults.
type VerifierOptions struct {
	// HighRadiusMeters is the outer edge of the high tier (default 100).
	HighRadiusMeters float64
	// MediumRadiusMeters is the outer edge of the medium tier (default 200).
	MediumRadiusMeters float64
	// MaxRadiusMeters is the gate itself; beyond it verification fails (default 500).
	MaxRadiusMeters float64
	// AccuracyWarnMeters is the GPS accuracy beyond which any non-rejected
	// confidence is downgraded to low (default 100).
	AccuracyWarnMeters float64
}

// Verifier classifies worker location samples against a job site.
type Verifier struct {
	high         float64
	medium       float64
	max          float64
	accuracyWarn float64
}

const (
	defaultHighRadiusMeters   = 100
	defaultMediumRadiusMeters = 200
	defaultMaxRadiusMeters    = 500
	defaultAccuracyWarnMeters = 100
)

// NewVerifier constructs a Verifier, validating that the tiers nest.
func NewVerifier(opts VerifierOptions) (*Verifier, error) {
	high := opts.HighRadiusMeters
	if high <= 0 {
		high = defaultHighRadiusMeters
	}
	medium := opts.MediumRadiusMeters
	if medium <= 0 {
		medium = defaultMediumRadiusMeters
	}
	maxR := opts.MaxRadiusMeters
	if maxR <= 0 {
		maxR = defaultMaxRadiusMeters
	}
	accuracyWarn := opts.AccuracyWarnMeters
	if accuracyWarn <= 0 {
		accuracyWarn = defaultAccuracyWarnMeters
	}

	if high >= medium || medium >= maxR {
		return nil, fmt.Errorf("radii must nest: high %.0f < medium %.0f < max %.0f", high, medium, maxR)
	}

	return &Verifier{high: high, medium: medium, max: maxR, accuracyWarn: accuracyWarn}, nil
}

// MustNewVerifier constructs a Verifier and panics on error. Use when the
// options are known valid (defaults, startup wiring).
func MustNewVerifier(opts VerifierOptions) *Verifier {
	v, err := NewVerifier(opts)
	if err != nil {
		//nolint:forbidigo // Must constructor fails fast on invalid startup configuration.
		panic(fmt.Sprintf("failed to create geo verifier: %v", err))
	}
	return v
}

// MaxRadiusMeters returns the gate radius for client display.
func (v *Verifier) MaxRadiusMeters() float64 { return v.max }

// Verify classifies the sample against the target. Distance decides the tier
// first; accuracy can only downgrade the result, never upgrade it.
func (v *Verifier) Verify(sample model.LocationSample, target model.Coordinates) VerificationResult {
	distance := Distance(sample.Coordinates, target)

	result := VerificationResult{
		DistanceMeters: distance,
		AccuracyMeters: sample.AccuracyMeters,
	}

	switch {
	case distance > v.max:
		result.Confidence = ConfidenceRejected
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("distance %.0fm exceeds the %.0fm verification radius", distance, v.max))
	case distance > v.medium:
		result.Confidence = ConfidenceLow
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("distance %.0fm is near the edge of the %.0fm verification radius", distance, v.max))
	case distance > v.high:
		result.Confidence = ConfidenceMedium
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("distance %.0fm is outside the %.0fm high-confidence radius", distance, v.high))
	default:
		result.Confidence = ConfidenceHigh
	}

	if result.Confidence != ConfidenceRejected && sample.AccuracyMeters > v.accuracyWarn {
		result.Confidence = ConfidenceLow
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("GPS accuracy %.0fm is worse than %.0fm", sample.AccuracyMeters, v.accuracyWarn))
	}

	result.IsValid = result.Confidence != ConfidenceRejected
	return result
}

// Distance computes the great-circle distance in meters between two points
// using the haversine formula. Precision matters at the 100-500m gate scale,
// so no flat-earth shortcut.
func Distance(a, b model.Coordinates) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon

	return 2 * earthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
