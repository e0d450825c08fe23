package data

import "time"

// TimeProvider abstracts the clock so repositories stamp rows with an
// injectable time source.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the system clock. It is the default when no
// provider is configured on RepoConfig.
type RealTimeProvider struct{}

func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// FixedTimeProvider always reports the same instant, which lets tests
// assert exact timestamps on written rows.
type FixedTimeProvider struct {
	fixedTime time.Time
}

func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixedTime: t}
}

func (f *FixedTimeProvider) Now() time.Time {
	return f.fixedTime
}
