package security

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"learnmate_backend/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRequests = 1000
	defaultWindow      = time.Minute
)

// CORS 中间件 仅对白名单中的Origin回写跨域响应头，预检请求直接短路
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); origin != "" {
			if _, ok := allowed[strings.TrimRight(origin, "/")]; ok {
				header := c.Writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Cache-Control, X-Requested-With")
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Headers 基础安全响应头。TLS 在反向代理终结，HSTS 由代理下发。
func Headers() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")

		c.Next()
	}
}

// limiterStore 按客户端IP维护限流器，记录最后活跃时间供清理
type limiterStore struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (s *limiterStore) allow(key string) bool {
	s.mu.Lock()
	cl, ok := s.clients[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(s.rate, s.burst)}
		s.clients[key] = cl
	}
	cl.lastSeen = time.Now()
	s.mu.Unlock()

	return cl.limiter.Allow()
}

func (s *limiterStore) purge(expiry time.Duration) {
	s.mu.Lock()
	for key, cl := range s.clients {
		if time.Since(cl.lastSeen) > expiry {
			delete(s.clients, key)
		}
	}
	s.mu.Unlock()
}

// RateLimiter 限流中间件 按IP限流，窗口与配额来自配置，零值走缺省
func RateLimiter(cfg config.RateLimitConfig) gin.HandlerFunc {
	maxRequests := cfg.MaxRequests
	if maxRequests <= 0 {
		maxRequests = defaultMaxRequests
	}
	window := time.Duration(cfg.WindowMinutes) * time.Minute
	if window <= 0 {
		window = defaultWindow
	}

	store := &limiterStore{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Every(window / time.Duration(maxRequests)),
		burst:   maxRequests,
	}

	go func() {
		expiry := window * 3
		if expiry < time.Minute {
			expiry = time.Minute
		}
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			store.purge(expiry)
		}
	}()

	return func(c *gin.Context) {
		if !store.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}

		c.Next()
	}
}
