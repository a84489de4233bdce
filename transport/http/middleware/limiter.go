package middleware

import (
	"errors"
	"hotel/config"
	"hotel/shared"
	"hotel/shared/cache"
	"hotel/shared/constant"
	"hotel/transport/http/response"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	cacheKeyRateLimit = "limiter"

	authPath     = "/v1/auth"
	bookingsPath = "/v1/bookings"
)

// limitGroup names the bucket a request is counted in. Each group keeps its
// own counter per client.
type limitGroup string

const (
	limitGroupDefault limitGroup = "default"
	limitGroupAuth    limitGroup = "auth"
	limitGroupBooking limitGroup = "booking"
)

// classify puts credential attempts and booking writes in their own buckets.
// Reads of either resource count against the general limit.
func classify(r *http.Request) limitGroup {
	if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
		return limitGroupDefault
	}

	switch {
	case hasPathPrefix(r.URL.Path, authPath):
		return limitGroupAuth
	case hasPathPrefix(r.URL.Path, bookingsPath):
		return limitGroupBooking
	default:
		return limitGroupDefault
	}
}

func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// policy resolves the limit of a group. Unset group limits inherit the
// general one.
func (a *appMiddleware) policy(group limitGroup) config.RateLimit {
	limiter := a.config.App.RateLimiter
	limit := config.RateLimit{MaxRequests: limiter.MaxRequests, WindowSeconds: limiter.WindowSeconds}

	var override config.RateLimit

	switch group {
	case limitGroupAuth:
		override = limiter.Auth
	case limitGroupBooking:
		override = limiter.Booking
	case limitGroupDefault:
		return limit
	}

	if override.MaxRequests > 0 {
		limit.MaxRequests = override.MaxRequests
	}

	if override.WindowSeconds > 0 {
		limit.WindowSeconds = override.WindowSeconds
	}

	return limit
}

// RateLimit is a fixed window counter per client and group kept in Redis.
// A cache outage lets traffic through.
func (a *appMiddleware) RateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.config.App.RateLimiter.Enable {
				next.ServeHTTP(w, r)

				return
			}

			group := classify(r)
			limit := a.policy(group)
			cacheKey := shared.BuildCacheKey(cacheKeyRateLimit, string(group), a.getClientIP(r), a.getUA(r))

			var count int

			err := a.cache.Get(r.Context(), cacheKey, &count)

			switch {
			case errors.Is(err, cache.Nil):
				count = 1
			case err != nil:
				log.Warn().Err(err).Str("group", string(group)).Msg("rate limiter cache unavailable")
				next.ServeHTTP(w, r)

				return
			default:
				count++
			}

			if count > limit.MaxRequests {
				log.Debug().Str("group", string(group)).Str("path", r.URL.Path).Msg("rate limit exceeded")
				response.WithRequestLimitExceeded(w)

				return
			}

			if err = a.cache.Save(r.Context(), cacheKey, count, limit.WindowSeconds); err != nil {
				log.Warn().Err(err).Str("group", string(group)).Msg("rate limiter cache unavailable")
				next.ServeHTTP(w, r)

				return
			}

			w.Header().Set(constant.RequestHeaderRateLimit, strconv.Itoa(limit.MaxRequests))
			w.Header().Set(constant.RequestHeaderRateLimitRemaining, strconv.Itoa(max(0, limit.MaxRequests-count)))
			w.Header().Set(constant.RequestHeaderRateLimitWindow, strconv.Itoa(limit.WindowSeconds))

			next.ServeHTTP(w, r)
		})
	}
}

func (a *appMiddleware) getUA(r *http.Request) string {
	ua := r.Header.Get(constant.RequestHeaderUserAgent)
	if ua == "" {
		ua = "unknown"
	}

	return ua
}

// getClientIP prefers proxy headers. The first X-Forwarded-For hop is the
// client.
func (a *appMiddleware) getClientIP(r *http.Request) string {
	if xff := r.Header.Get(constant.RequestHeaderForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")

		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get(constant.RequestHeaderRealIP); xri != "" {
		return strings.TrimSpace(xri)
	}

	// RemoteAddr carries the ephemeral port, which would give every connection its own bucket
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}

	return r.RemoteAddr
}
