package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dtroode/brainlag-server/internal/api/http/handler"
	"github.com/dtroode/brainlag-server/internal/apperrors"
	"github.com/dtroode/brainlag-server/internal/logger"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit admits requests per client IP with a token bucket. Forwarding
// headers are honoured only when the connection comes from a trusted proxy.
type RateLimit struct {
	rps            rate.Limit
	burst          int
	trustedProxies []*net.IPNet

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
	now       func() time.Time

	logger *logger.Logger
}

// NewRateLimit creates a limiter allowing rps sustained requests per client with the given burst.
// trustedProxies holds CIDRs or single IPs; unparsable entries are skipped.
func NewRateLimit(rps float64, burst int, trustedProxies []string, logger *logger.Logger) *RateLimit {
	if burst < 1 {
		burst = 1
	}
	return &RateLimit{
		rps:            rate.Limit(rps),
		burst:          burst,
		trustedProxies: parseTrustedProxies(trustedProxies, logger),
		clients:        make(map[string]*clientLimiter),
		now:            time.Now,
		logger:         logger,
	}
}

func parseTrustedProxies(entries []string, logger *logger.Logger) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(e); err == nil {
			nets = append(nets, n)
			continue
		}
		ip := net.ParseIP(e)
		if ip == nil {
			logger.Warn("Rate limit middleware: skipping invalid trusted proxy", "entry", e)
			continue
		}
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 32
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

func (m *RateLimit) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := m.clientIP(r)
		if !m.allow(ip) {
			m.logger.Warn("Rate limit middleware: request throttled",
				"client_ip", ip,
				"path", redactPath(r.URL.Path))
			apiErr := apperrors.NewErrTooManyRequests()
			w.Header().Set("Retry-After", "1")
			handler.WriteMessage(w, apiErr.HTTPCode, apiErr.Message)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *RateLimit) allow(key string) bool {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > limiterIdleTTL {
		for k, c := range m.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(m.clients, k)
			}
		}
		m.lastSweep = now
	}

	c, ok := m.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.clients[key] = c
	}
	c.lastSeen = now

	return c.limiter.AllowN(now, 1)
}

// clientIP keys the request by its TCP peer. Behind a trusted proxy the
// nearest untrusted X-Forwarded-For hop is used, then X-Real-IP.
func (m *RateLimit) clientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !m.trusted(net.ParseIP(peer)) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if i == 0 || !m.trusted(ip) {
				return ip.String()
			}
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer
}

func (m *RateLimit) trusted(ip net.IP) bool {
	if ip == nil {
		return false
	}
	for _, n := range m.trustedProxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
