package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quickgig/quickgig-api/internal/core"
	"github.com/quickgig/quickgig-api/internal/domain/model"
)

// defaultTrackingTTL bounds how long a stale tracking snapshot survives with
// no fresh writes. Tracking is informational, not an audit record.
const defaultTrackingTTL = 15 * time.Minute

// RedisLocationTracker stores the high-frequency worker tracking stream in
// Redis, one key per job, last write wins. Out-of-order samples are detected
// by capture time and discarded.
type RedisLocationTracker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisLocationTracker creates a tracker with the given client. A zero ttl
// selects the default.
func NewRedisLocationTracker(client redis.UniversalClient, ttl time.Duration) *RedisLocationTracker {
	if ttl <= 0 {
		ttl = defaultTrackingTTL
	}
	return &RedisLocationTracker{client: client, ttl: ttl}
}

func trackingKey(jobID string) string {
	return "job:" + jobID + ":worker_location"
}

type trackedLocation struct {
	Latitude       float64   `json:"lat"`
	Longitude      float64   `json:"lon"`
	AccuracyMeters float64   `json:"acc"`
	CapturedAt     time.Time `json:"at"`
	Source         string    `json:"src"`
}

// Record stores the sample unless a newer one is already present.
func (t *RedisLocationTracker) Record(ctx context.Context, jobID string, sample model.LocationSample) error {
	if t.client == nil {
		return ErrTrackerNotConfigured
	}
	if strings.TrimSpace(jobID) == "" {
		return ErrJobIDRequired
	}
	if err := sample.Validate(); err != nil {
		return fmt.Errorf("invalid sample: %w", err)
	}

	current, err := t.Latest(ctx, jobID)
	if err != nil {
		return err
	}
	if current != nil && !sample.CapturedAt.After(current.CapturedAt) {
		// Late arrival; the stored snapshot is fresher.
		return nil
	}

	payload, err := json.Marshal(trackedLocation{
		Latitude:       sample.Latitude,
		Longitude:      sample.Longitude,
		AccuracyMeters: sample.AccuracyMeters,
		CapturedAt:     sample.CapturedAt,
		Source:         string(sample.Source),
	})
	if err != nil {
		return fmt.Errorf("marshal tracked location: %w", err)
	}

	if err := t.client.Set(ctx, trackingKey(jobID), payload, t.ttl).Err(); err != nil {
		return fmt.Errorf("redis set tracked location: %w", err)
	}
	return nil
}

// Latest returns the most recent tracked sample, or nil when none is stored.
func (t *RedisLocationTracker) Latest(ctx context.Context, jobID string) (*model.LocationSample, error) {
	if t.client == nil {
		return nil, ErrTrackerNotConfigured
	}
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrJobIDRequired
	}

	raw, err := t.client.Get(ctx, trackingKey(jobID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get tracked location: %w", err)
	}

	var stored trackedLocation
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("unmarshal tracked location: %w", err)
	}

	return &model.LocationSample{
		Coordinates:    model.Coordinates{Latitude: stored.Latitude, Longitude: stored.Longitude},
		AccuracyMeters: stored.AccuracyMeters,
		CapturedAt:     stored.CapturedAt,
		Source:         model.LocationSource(stored.Source),
	}, nil
}

var _ core.LocationTracker = (*RedisLocationTracker)(nil)
