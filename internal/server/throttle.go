package server

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// ipThrottle caps the request rate per client IP across the API. It is a
// smoothing limiter for general traffic; the stricter per-endpoint attempt
// limits on the auth routes are handled by internal/ratelimit.
type ipThrottle struct {
	mu     sync.Mutex
	limits map[string]*rate.Limiter
	perSec rate.Limit
	burst  int
}

func newIPThrottle(perSecond, burst int) *ipThrottle {
	return &ipThrottle{
		limits: make(map[string]*rate.Limiter),
		perSec: rate.Limit(perSecond),
		burst:  burst,
	}
}

func (t *ipThrottle) limiter(ip string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.limits[ip]; ok {
		return l
	}
	l := rate.NewLimiter(t.perSec, t.burst)
	t.limits[ip] = l
	return l
}

func (t *ipThrottle) middleware(c *fiber.Ctx) error {
	if !t.limiter(c.IP()).Allow() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": "too many requests",
		})
	}
	return c.Next()
}
