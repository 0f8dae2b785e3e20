package middleware

import (
    "net/http"
    "sync"
    "time"

    "github.com/gin-gonic/gin"
    "golang.org/x/time/rate"
)

type ipLimiter struct {
    limiter  *rate.Limiter
    lastSeen time.Time
}

// RateLimit applies a per-client-IP token bucket of n requests per minute.
// Idle limiters are dropped after ten minutes to bound memory.
func RateLimit(perMinute int) gin.HandlerFunc {
    var (
        mu       sync.Mutex
        limiters = make(map[string]*ipLimiter)
    )

    go func() {
        for range time.Tick(time.Minute) {
            mu.Lock()
            for ip, l := range limiters {
                if time.Since(l.lastSeen) > 10*time.Minute {
                    delete(limiters, ip)
                }
            }
            mu.Unlock()
        }
    }()

    return func(c *gin.Context) {
        ip := c.ClientIP()
        mu.Lock()
        l, ok := limiters[ip]
        if !ok {
            l = &ipLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)}
            limiters[ip] = l
        }
        l.lastSeen = time.Now()
        mu.Unlock()

        if !l.limiter.Allow() {
            c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
            return
        }
        c.Next()
    }
}
