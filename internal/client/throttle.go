package client

import (
	"math/rand"
	"sync"
	"time"
)

// Limiter blocks until the next request is allowed to go out.
type Limiter interface {
	Take()
}

// jitterLimiter sleeps a uniform random duration within [min, max]
// before every request. The randomized delay keeps the request rate
// bounded without hitting the target site on a fixed beat.
type jitterLimiter struct {
	min   time.Duration
	max   time.Duration
	mu    sync.Mutex
	rand  *rand.Rand
	sleep func(time.Duration)
}

// NewJitterLimiter creates a Limiter with the given delay bounds.
func NewJitterLimiter(min, max time.Duration) Limiter {
	return &jitterLimiter{
		min:   min,
		max:   max,
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
}

func (l *jitterLimiter) Take() {
	l.sleep(l.next())
}

func (l *jitterLimiter) next() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max <= l.min {
		return l.min
	}
	return l.min + time.Duration(l.rand.Int63n(int64(l.max-l.min)+1))
}
