package router

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultIdleTTL = 10 * time.Minute

// UserLimiter keeps a token bucket per user and drops buckets that have been
// idle for a while. A nil *UserLimiter allows everything.
type UserLimiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu     sync.Mutex
	byUser map[string]*bucket
	hits   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserLimiter allows perMinute commands per user per minute, all of them
// at once if need be. perMinute <= 0 returns nil.
func NewUserLimiter(perMinute int, idleTTL time.Duration) *UserLimiter {
	if perMinute <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &UserLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   perMinute,
		idleTTL: idleTTL,
		byUser:  map[string]*bucket{},
	}
}

// Allow consumes one token of user at now.
func (l *UserLimiter) Allow(user string, now time.Time) bool {
	if l == nil {
		return true
	}
	user = strings.ToLower(strings.TrimSpace(user))

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byUser[user]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byUser[user] = b
	}
	b.lastSeen = now
	allowed := b.limiter.AllowN(now, 1)

	l.hits++
	if l.hits%512 == 0 {
		l.evict(now)
	}
	return allowed
}

func (l *UserLimiter) evict(now time.Time) {
	cutoff := now.Add(-l.idleTTL)
	for u, b := range l.byUser {
		if b.lastSeen.Before(cutoff) {
			delete(l.byUser, u)
		}
	}
}

func (l *UserLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byUser)
}
