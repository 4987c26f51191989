package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/pkg/utils"
)

// minIdleTTL - нижняя граница простоя, после которого limiter IP удаляется
const minIdleTTL = time.Minute

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter хранит отдельный token bucket для каждого IP.
// Limiter, простаивающий дольше idleTTL, уже полон и удаляется при очередной чистке.
type IPRateLimiter struct {
	ips       map[string]*ipLimiter
	mu        sync.Mutex
	r         rate.Limit
	b         int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	// за idleTTL bucket гарантированно успевает наполниться
	idleTTL := minIdleTTL
	if r > 0 {
		if refill := time.Duration(float64(b) / float64(r) * float64(time.Second)); refill > idleTTL {
			idleTTL = refill
		}
	}

	return &IPRateLimiter{
		ips:       make(map[string]*ipLimiter),
		r:         r,
		b:         b,
		idleTTL:   idleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// GetLimiter возвращает limiter для IP, создавая его при первом обращении
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	now := i.now()
	if now.Sub(i.lastSweep) >= i.idleTTL {
		i.sweep(now)
	}

	entry, ok := i.ips[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Len - число отслеживаемых IP
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.ips)
}

func (i *IPRateLimiter) sweep(now time.Time) {
	for ip, entry := range i.ips {
		if now.Sub(entry.lastSeen) >= i.idleTTL {
			delete(i.ips, ip)
		}
	}
	i.lastSweep = now
}

// RateLimit - ограничение частоты запросов по IP; rps <= 0 отключает лимит
func RateLimit(rps float64, burst int) fiber.Handler {
	if rps <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	limiter := NewIPRateLimiter(rate.Limit(rps), burst)
	return func(c *fiber.Ctx) error {
		if !limiter.GetLimiter(c.IP()).Allow() {
			return utils.SendError(c, apperrors.ErrRateLimited)
		}
		return c.Next()
	}
}
