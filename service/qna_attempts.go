package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// passwordAttempts throttles failed QnA password checks per client IP. Each
// IP may fail max times in a row; after that one more attempt is granted per
// lockout period.
type passwordAttempts struct {
	mu      sync.Mutex
	buckets map[string]*rate.Limiter
	limit   rate.Limit
	max     int
	now     func() time.Time
}

func newPasswordAttempts(max int, lockout time.Duration) *passwordAttempts {
	if max <= 0 {
		max = 5
	}
	if lockout <= 0 {
		lockout = time.Hour
	}
	return &passwordAttempts{
		buckets: make(map[string]*rate.Limiter),
		limit:   rate.Every(lockout),
		max:     max,
		now:     time.Now,
	}
}

// Allowed reports whether ip still has an attempt left.
func (a *passwordAttempts) Allowed(ip string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buckets[ip]
	return !ok || b.TokensAt(a.now()) >= 1
}

// Fail spends one attempt of ip. Buckets that refilled completely are
// dropped on the way.
func (a *passwordAttempts) Fail(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	for key, b := range a.buckets {
		if key != ip && b.TokensAt(now) >= float64(a.max) {
			delete(a.buckets, key)
		}
	}
	b, ok := a.buckets[ip]
	if !ok {
		b = rate.NewLimiter(a.limit, a.max)
		a.buckets[ip] = b
	}
	b.AllowN(now, 1)
}

// Reset forgets the failures of ip after a correct password.
func (a *passwordAttempts) Reset(ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.buckets, ip)
}
