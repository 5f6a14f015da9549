package services

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP. Tracking pixels
// get hammered by mail clients re-fetching images, so buckets are generous
// by default and stale entries are evicted instead of the whole map.
type IPRateLimiter struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	r       rate.Limit
	b       int
	logger  *slog.Logger
}

func NewIPRateLimiter(r rate.Limit, b int, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		clients: make(map[string]*clientLimiter),
		r:       r,
		b:       b,
		logger:  logger,
	}
}

// StartCleanup evicts IPs not seen for three intervals, bounding memory on
// long-running processes.
func (i *IPRateLimiter) StartCleanup(interval time.Duration) {
	go func() {
		for {
			time.Sleep(interval)
			cutoff := time.Now().Add(-3 * interval)
			i.mu.Lock()
			before := len(i.clients)
			for ip, cl := range i.clients {
				if cl.lastSeen.Before(cutoff) {
					delete(i.clients, ip)
				}
			}
			if evicted := before - len(i.clients); evicted > 0 {
				i.logger.Info("Evicted idle rate limiters", "evicted", evicted, "remaining", len(i.clients))
			}
			i.mu.Unlock()
		}
	}()
}

func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	cl, exists := i.clients[ip]
	if !exists {
		cl = &clientLimiter{limiter: rate.NewLimiter(i.r, i.b)}
		i.clients[ip] = cl
	}
	cl.lastSeen = time.Now()

	return cl.limiter
}
