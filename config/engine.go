package config

import "time"

// GeofenceConfig tunes the location verification gate. Radii are meters and
// must nest: high < medium < max. Zero or negative values fall back to the
// verifier defaults.
type GeofenceConfig struct {
	HighRadiusMeters   float64 `env:"HIGH_RADIUS_METERS"   envDefault:"100"`
	MediumRadiusMeters float64 `env:"MEDIUM_RADIUS_METERS" envDefault:"200"`
	MaxRadiusMeters    float64 `env:"MAX_RADIUS_METERS"    envDefault:"500"`
	AccuracyWarnMeters float64 `env:"ACCURACY_WARN_METERS" envDefault:"100"`
}

// Sanitize applies guardrails to geofence configuration values.
func (g *GeofenceConfig) Sanitize() {
	// Negative radii behave like unset; the verifier substitutes defaults.
	if g.HighRadiusMeters < 0 {
		g.HighRadiusMeters = 0
	}
	if g.MediumRadiusMeters < 0 {
		g.MediumRadiusMeters = 0
	}
	if g.MaxRadiusMeters < 0 {
		g.MaxRadiusMeters = 0
	}
	if g.AccuracyWarnMeters < 0 {
		g.AccuracyWarnMeters = 0
	}
}

// TrackingConfig tunes the in-progress worker location tracker.
type TrackingConfig struct {
	// TTL is how long the latest snapshot stays readable in Redis after the
	// last update.
	TTL time.Duration `env:"TTL" envDefault:"15m"`
}

// Sanitize applies guardrails to tracking configuration values.
func (t *TrackingConfig) Sanitize() {
	if t.TTL <= 0 {
		t.TTL = 15 * time.Minute
	}
}

// PaymentConfig controls how completed jobs enter payment capture.
type PaymentConfig struct {
	// AutoCapture starts payment capture automatically when a job completes.
	// Disable to drive capture through an external process.
	AutoCapture bool `env:"AUTO_CAPTURE" envDefault:"true"`
}
