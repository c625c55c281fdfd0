package access

import (
	"errors"
	"time"

	"github.com/patrickmn/go-cache"
)

// Throttle counts failed checks per key inside a fixed window that starts at
// the first failure. A zero maxFailures disables it.
type Throttle struct {
	failures    *cache.Cache
	maxFailures int
}

var ErrorInvalidWindow = errors.New("throttle window must be positive")

// NewThrottle rejects a non-positive window while the throttle is enabled:
// go-cache would never expire the counters and a key would stay locked out.
func NewThrottle(maxFailures int, window time.Duration) (*Throttle, error) {
	if maxFailures > 0 && window <= 0 {
		return nil, ErrorInvalidWindow
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Throttle{
		failures:    cache.New(window, 2*window),
		maxFailures: maxFailures,
	}, nil
}

func (t *Throttle) Allow(key string) bool {
	if t.maxFailures <= 0 {
		return true
	}
	count, found := t.failures.Get(key)
	if !found {
		return true
	}
	return count.(int) < t.maxFailures
}

func (t *Throttle) Fail(key string) {
	if t.maxFailures <= 0 {
		return
	}
	if err := t.failures.Add(key, 1, cache.DefaultExpiration); err != nil {
		t.failures.IncrementInt(key, 1)
	}
}

func (t *Throttle) Reset(key string) {
	t.failures.Delete(key)
}
