package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/derivaventura/server/internal/auth"
)

const identityKey = "identity"

// RateLimiterWithTime pairs a limiter with its last use so stale
// per-IP entries can be swept.
type RateLimiterWithTime struct {
	Limiter    *rate.Limiter
	LastAccess time.Time
}

func (s *Server) getLimiter(key string) *rate.Limiter {
	s.limiterMu.RLock()
	limWithTime, ok := s.limiters[key]
	s.limiterMu.RUnlock()
	if ok {
		s.limiterMu.Lock()
		if limWithTime, ok = s.limiters[key]; ok {
			limWithTime.LastAccess = time.Now()
		}
		s.limiterMu.Unlock()
		return limWithTime.Limiter
	}

	s.limiterMu.Lock()
	defer s.limiterMu.Unlock()
	if limWithTime, ok = s.limiters[key]; ok {
		limWithTime.LastAccess = time.Now()
		return limWithTime.Limiter
	}

	rps := s.cfg.LoginRPS
	if rps <= 0 {
		rps = 1
	}
	lim := rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), s.cfg.LoginBurst)
	limWithTime = &RateLimiterWithTime{
		Limiter:    lim,
		LastAccess: time.Now(),
	}
	s.limiters[key] = limWithTime
	return lim
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !s.getLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down."})
			return
		}
		c.Next()
	}
}

// authMiddleware resolves the bearer token to a player identity.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		identity, ok := s.tokens.Lookup(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	return c.MustGet(identityKey).(auth.Identity)
}

// StartLimiterCleanup sweeps per-IP limiter entries idle for more
// than an hour.
func (s *Server) StartLimiterCleanup(stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.cleanupLimiters()
			}
		}
	}()
}

func (s *Server) cleanupLimiters() {
	cutoff := time.Now().Add(-time.Hour)
	s.limiterMu.Lock()
	for key, lim := range s.limiters {
		if lim.LastAccess.Before(cutoff) {
			delete(s.limiters, key)
		}
	}
	s.limiterMu.Unlock()
}
