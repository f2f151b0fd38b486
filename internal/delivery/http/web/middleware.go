package web

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/adanyl0v/taskflow/internal/models"
	"github.com/adanyl0v/taskflow/internal/services"
)

const (
	sessionCookie = "taskflow_session"
	sessionCtxKey = "session"
)

func (h *handlerImpl) HandleRequestLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	event := h.logger.Info()
	if status := c.Writer.Status(); status >= http.StatusInternalServerError {
		event = h.logger.Error()
	}
	event.
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Msg("handled request")
}

// HandleSessionMiddleware attaches the session named by the session cookie,
// starting a new anonymous one when the cookie is missing, forged or stale.
func (h *handlerImpl) HandleSessionMiddleware(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil {
		session, err := h.sessions.Resolve(c, token)
		if err == nil {
			c.Set(sessionCtxKey, session)
			c.Next()
			return
		}
		if !errors.Is(err, services.ErrInvalidSessionJWT) &&
			!errors.Is(err, services.ErrSessionNotFound) {
			h.logger.Error().
				Err(err).
				Msg("failed to resolve session")
			abort(c, newStatusTextError(http.StatusInternalServerError))
			return
		}
		h.logger.Debug().
			Err(err).
			Msg("replacing session")
	}

	result, err := h.sessions.Start(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to start session")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}
	setSessionCookie(c, result.Token, h.opts.SecureCookie)

	c.Set(sessionCtxKey, &result.Session)
	c.Next()
}

func (h *handlerImpl) HandleRequireSignIn(c *gin.Context) {
	session := getSession(c)
	if session == nil || !session.Authenticated() {
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
		return
	}
	c.Next()
}

func (h *handlerImpl) HandleRateLimit(c *gin.Context) {
	if h.limiter == nil {
		c.Next()
		return
	}

	key := c.ClientIP()
	if session := getSession(c); session != nil {
		key = session.ID
	}
	if !h.limiter.allow(key) {
		h.logger.Warn().
			Str("key", key).
			Msg("rate limit exceeded")
		abort(c, newAPIError(http.StatusTooManyRequests, "Too many requests, slow down a little."))
		return
	}
	c.Next()
}

func getSession(c *gin.Context) *models.Session {
	value, exists := c.Get(sessionCtxKey)
	if !exists {
		return nil
	}
	session, _ := value.(*models.Session)
	return session
}

func setSessionCookie(c *gin.Context, token string, secure bool) {
	const httpOnly = true
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, 0,
		"/", "", secure, httpOnly)
}

type RateLimitOptions struct {
	Enabled bool
	RPS     float64
	Burst   int
}

type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*rateClient
	limit     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
}

type rateClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(opts RateLimitOptions) *rateLimiter {
	if !opts.Enabled {
		return nil
	}
	return &rateLimiter{
		clients:   make(map[string]*rateClient),
		limit:     rate.Limit(opts.RPS),
		burst:     opts.Burst,
		idle:      3 * time.Minute,
		lastSweep: time.Now(),
	}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastSweep) >= time.Minute {
		for k, client := range l.clients {
			if now.Sub(client.lastSeen) >= l.idle {
				delete(l.clients, k)
			}
		}
		l.lastSweep = now
	}

	client, ok := l.clients[key]
	if !ok {
		client = &rateClient{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}
