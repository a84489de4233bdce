package middleware_test

import (
	"context"
	"errors"
	"hotel/config"
	"hotel/infras/otel/mocks"
	"hotel/shared"
	"hotel/shared/cache"
	cacheMocks "hotel/shared/cache/mocks"
	"hotel/shared/constant"
	"hotel/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testUserAgent = "booking-client/1.0"

func limiterConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.RateLimiter.Enable = true
	cfg.App.RateLimiter.MaxRequests = 100
	cfg.App.RateLimiter.WindowSeconds = 60
	cfg.App.RateLimiter.Auth = config.RateLimit{MaxRequests: 5, WindowSeconds: 30}
	cfg.App.RateLimiter.Booking = config.RateLimit{MaxRequests: 2}

	return cfg
}

func serveLimited(cfg *config.Config, redis cache.RedisCache, req *http.Request) *httptest.ResponseRecorder {
	app := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, redis)

	handler := app.RateLimit()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		stored     int
		wantKey    string
		wantLimit  string
		wantWindow int
		wantStatus int
	}{
		{
			name:       "listing counts against general limit",
			method:     http.MethodGet,
			path:       "/v1/bookings/",
			stored:     50,
			wantKey:    "default",
			wantLimit:  "100",
			wantWindow: 60,
			wantStatus: http.StatusOK,
		},
		{
			name:       "first booking write",
			method:     http.MethodPost,
			path:       "/v1/bookings/",
			wantKey:    "booking",
			wantLimit:  "2",
			wantWindow: 60,
			wantStatus: http.StatusOK,
		},
		{
			name:       "cancel shares the booking bucket",
			method:     http.MethodPut,
			path:       "/v1/bookings/b-1/cancel",
			stored:     1,
			wantKey:    "booking",
			wantLimit:  "2",
			wantWindow: 60,
			wantStatus: http.StatusOK,
		},
		{
			name:       "booking writes exhausted",
			method:     http.MethodPost,
			path:       "/v1/bookings/",
			stored:     2,
			wantKey:    "booking",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "login attempts exhausted",
			method:     http.MethodPost,
			path:       "/v1/auth/login",
			stored:     5,
			wantKey:    "auth",
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "login within auth window",
			method:     http.MethodPost,
			path:       "/v1/auth/login",
			stored:     3,
			wantKey:    "auth",
			wantLimit:  "5",
			wantWindow: 30,
			wantStatus: http.StatusOK,
		},
		{
			name:       "hotel writes use the general limit",
			method:     http.MethodPost,
			path:       "/v1/hotels/",
			stored:     2,
			wantKey:    "default",
			wantLimit:  "100",
			wantWindow: 60,
			wantStatus: http.StatusOK,
		},
		{
			name:       "lookalike prefix is not a booking route",
			method:     http.MethodPost,
			path:       "/v1/bookingsx",
			stored:     2,
			wantKey:    "default",
			wantLimit:  "100",
			wantWindow: 60,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			redis := cacheMocks.NewMockRedisCache(ctrl)

			// httptest requests come from 192.0.2.1:1234; the port is not part of the key
			key := shared.BuildCacheKey("limiter", tt.wantKey, "192.0.2.1", testUserAgent)

			redis.EXPECT().Get(gomock.Any(), key, gomock.Any()).
				DoAndReturn(func(_ context.Context, _ string, value any) error {
					if tt.stored == 0 {
						return cache.Nil
					}

					count, ok := value.(*int)
					require.True(t, ok)
					*count = tt.stored

					return nil
				})

			if tt.wantStatus == http.StatusOK {
				redis.EXPECT().Save(gomock.Any(), key, tt.stored+1, tt.wantWindow).Return(nil)
			}

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set(constant.RequestHeaderUserAgent, testUserAgent)

			rec := serveLimited(limiterConfig(), redis, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantLimit, rec.Header().Get(constant.RequestHeaderRateLimit))
			}
		})
	}
}

func TestRateLimitForwardedClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	redis := cacheMocks.NewMockRedisCache(ctrl)

	key := shared.BuildCacheKey("limiter", "booking", "203.0.113.7", "unknown")

	redis.EXPECT().Get(gomock.Any(), key, gomock.Any()).Return(cache.Nil)
	redis.EXPECT().Save(gomock.Any(), key, 1, 60).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/bookings/", nil)
	req.Header.Set(constant.RequestHeaderForwardedFor, "203.0.113.7, 10.0.0.1")

	rec := serveLimited(limiterConfig(), redis, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get(constant.RequestHeaderRateLimitRemaining))
}

func TestRateLimitPassThrough(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		cfg := limiterConfig()
		cfg.App.RateLimiter.Enable = false

		rec := serveLimited(cfg, cacheMocks.NewMockRedisCache(ctrl), httptest.NewRequest(http.MethodPost, "/v1/bookings/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get(constant.RequestHeaderRateLimit))
	})

	t.Run("cache unavailable", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		redis := cacheMocks.NewMockRedisCache(ctrl)
		redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

		rec := serveLimited(limiterConfig(), redis, httptest.NewRequest(http.MethodPost, "/v1/bookings/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
