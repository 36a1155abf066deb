package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fittrack/internal/cache"
	"fittrack/internal/core"
	applog "fittrack/internal/log"
	"fittrack/internal/services"
)

// Server is the JSON API over the journal. Derived views are cached
// per date and invalidated wholesale on every write, since one append
// can change any view.
type Server struct {
	http.Server
	tracker     *services.TrackerService
	coach       CoachClient
	password    string
	rateLimiter *rateLimiter

	summaryCache *cache.LRUCache[services.DayView]
	weightCache  *cache.LRUCache[[]core.WeightPoint]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// CoachClient answers free-form questions with journal context. Nil
// means the coach endpoint reports itself unconfigured.
type CoachClient interface {
	Ask(ctx context.Context, question string, day core.DaySummary, targets core.Targets, weight float64) (string, error)
}

// Options tunes server construction.
type Options struct {
	Password string
	Coach    CoachClient
	CacheTTL time.Duration
}

// Simple in-memory rate limiter
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes client entries older than 10 minutes.
func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	// Reset counter once a minute has passed.
	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Up to 60 requests per minute per client.
	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}

// NewServer configures routes and caches, returning a ready-to-run server.
func NewServer(addr string, tracker *services.TrackerService, opts Options) *Server {
	mux := http.NewServeMux()

	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	httpLogger := applog.New(applog.Config{Component: applog.ComponentHTTP})

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: applog.Middleware(httpLogger)(mux),
		},
		tracker:      tracker,
		coach:        opts.Coach,
		password:     opts.Password,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[services.DayView](100, ttl),
		weightCache:  cache.NewLRUCache[[]core.WeightPoint](4, ttl),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.weightCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/entries", s.protect(s.handleEntries))
	mux.HandleFunc("/entries/", s.protect(s.handleEntryByIndex))
	mux.HandleFunc("/summary", s.protect(s.handleSummary))
	mux.HandleFunc("/weight-history", s.protect(s.handleWeightHistory))
	mux.HandleFunc("/settings", s.protect(s.handleSettings))
	mux.HandleFunc("/foods", s.protect(s.handleFoods))
	mux.HandleFunc("/supplements", s.protect(s.handleSupplements))
	mux.HandleFunc("/exercises", s.protect(s.handleExercises))
	mux.HandleFunc("/coach/ask", s.protect(s.handleCoachAsk))

	return s
}

// protect wraps a handler with auth, security headers, rate limiting
// and request logging.
func (s *Server) protect(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.withAuth(next))
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = applog.WithRequestID(ctx, requestID)
		r = r.WithContext(ctx)
		reqLog := applog.FromContext(ctx)

		started := applog.Fields{
			applog.FieldMethod:    r.Method,
			applog.FieldPath:      r.URL.Path,
			applog.FieldClientIP:  clientIP,
			applog.FieldUserAgent: r.Header.Get("User-Agent"),
		}
		reqLog.InfoContext(ctx, "Request started", started.ToSlice()...)

		// Rate limit mutating requests only; reads are cache-backed.
		if isWrite(r.Method) && !s.rateLimiter.allow(clientIP) {
			reqLog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		completed := applog.Fields{
			applog.FieldMethod:     r.Method,
			applog.FieldPath:       r.URL.Path,
			applog.FieldStatusCode: rw.statusCode,
			applog.FieldDuration:   time.Since(start).Milliseconds(),
			applog.FieldClientIP:   clientIP,
		}
		reqLog.InfoContext(ctx, "Request completed", completed.ToSlice()...)
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

// invalidateViews drops every cached derived view. Called after each
// successful journal write.
func (s *Server) invalidateViews() {
	s.summaryCache.Clear()
	s.weightCache.Clear()
}

// Shutdown stops the HTTP listener and background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

type contextKey string

const requestIDKey contextKey = "request_id"

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
