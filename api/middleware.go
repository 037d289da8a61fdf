package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
	"hermannm.dev/devlog/log"
)

const requestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// Uses the caller's request ID if it is a valid UUID, otherwise generates one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		requestID := req.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		res.Header().Set(requestIDHeader, requestID)
		log.Debug(
			"received request",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.String("requestId", requestID),
		)

		ctx := context.WithValue(req.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(res, req.WithContext(ctx))
	})
}

func requestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// Limiters unused for this long are removed on the next sweep.
const clientLimiterIdleTimeout = 10 * time.Minute

// A token bucket per client IP.
type clientRateLimiter struct {
	limit rate.Limit
	burst int

	lock      sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientRateLimiter(requestsPerSecond float64, burst int) *clientRateLimiter {
	return &clientRateLimiter{
		limit:     rate.Limit(requestsPerSecond),
		burst:     burst,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (limiter *clientRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		ip := clientIP(req)
		if !limiter.allow(ip) {
			log.Warnf("rate limit exceeded for client %s", ip)
			res.Header().Set("Retry-After", "1")
			sendErrorResponse(res, req, http.StatusTooManyRequests, errorResponse{
				Error: "too many requests",
			})
			return
		}

		next.ServeHTTP(res, req)
	})
}

func (limiter *clientRateLimiter) allow(ip string) bool {
	limiter.lock.Lock()
	defer limiter.lock.Unlock()

	now := limiter.now()
	if now.Sub(limiter.lastSweep) > clientLimiterIdleTimeout {
		for clientIP, client := range limiter.clients {
			if now.Sub(client.lastSeen) > clientLimiterIdleTimeout {
				delete(limiter.clients, clientIP)
			}
		}
		limiter.lastSweep = now
	}

	client, ok := limiter.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[ip] = client
	}
	client.lastSeen = now

	return client.limiter.AllowN(now, 1)
}

func clientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
