package middleware_test

import (
	"hotel/config"
	"hotel/infras/jwt"
	jwtMocks "hotel/infras/jwt/mocks"
	"hotel/infras/otel/mocks"
	"hotel/permissions"
	"hotel/shared/constant"
	"hotel/transport/http/middleware"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

const testAPIKey = "internal-key"

func newRouter(t *testing.T, jwtService jwt.JWT) chi.Router {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.APIKey = testAPIKey

	auth := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), permissions.Get(), cfg)

	echoUser := func(w http.ResponseWriter, r *http.Request) {
		user, _ := r.Context().Value(constant.ContextKeyUserID).(string)
		w.Header().Set("X-User", user)
		w.WriteHeader(http.StatusOK)
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.APIKey, auth.Auth, auth.RBAC)

		r.Route("/v1/hotels", func(r chi.Router) {
			r.Get("/", echoUser)
		})
		r.Route("/v1/bookings", func(r chi.Router) {
			r.Get("/{id}", echoUser)
			r.Put("/{id}/status", echoUser)
		})
	})

	return router
}

func TestAuthRole(t *testing.T) {
	userClaims := &jwt.Claims{UserID: "user-1", Email: "user@example.com", Role: constant.RoleUser, TokenID: "t1"}
	adminClaims := &jwt.Claims{UserID: "admin-1", Email: "admin@example.com", Role: constant.RoleAdmin, TokenID: "t2"}

	tests := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		setupMock  func(m *jwtMocks.MockJWT)
		wantStatus int
		wantUser   string
	}{
		{
			name:       "public listing needs no token",
			method:     http.MethodGet,
			path:       "/v1/hotels/",
			setupMock:  func(*jwtMocks.MockJWT) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			method:     http.MethodGet,
			path:       "/v1/bookings/b1",
			setupMock:  func(*jwtMocks.MockJWT) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer header",
			method:     http.MethodGet,
			path:       "/v1/bookings/b1",
			headers:    map[string]string{constant.RequestHeaderAuthorization: "Token abc"},
			setupMock:  func(*jwtMocks.MockJWT) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "expired token",
			method:  http.MethodGet,
			path:    "/v1/bookings/b1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer old"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "old", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "claims without identity",
			method:  http.MethodGet,
			path:    "/v1/bookings/b1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer anon"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "anon", jwt.AccessToken).Return(&jwt.Claims{Role: constant.RoleUser}, nil)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:    "user reads a booking",
			method:  http.MethodGet,
			path:    "/v1/bookings/b1",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer user"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "user", jwt.AccessToken).Return(userClaims, nil)
			},
			wantStatus: http.StatusOK,
			wantUser:   "user-1",
		},
		{
			name:    "user cannot override status",
			method:  http.MethodPut,
			path:    "/v1/bookings/b1/status",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer user"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "user", jwt.AccessToken).Return(userClaims, nil)
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:    "admin overrides status",
			method:  http.MethodPut,
			path:    "/v1/bookings/b1/status",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer admin"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "admin", jwt.AccessToken).Return(adminClaims, nil)
			},
			wantStatus: http.StatusOK,
			wantUser:   "admin-1",
		},
		{
			name:       "internal api key skips token checks",
			method:     http.MethodPut,
			path:       "/v1/bookings/b1/status",
			headers:    map[string]string{constant.RequestHeaderAPIKey: testAPIKey},
			setupMock:  func(*jwtMocks.MockJWT) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong api key",
			method:     http.MethodGet,
			path:       "/v1/hotels/",
			headers:    map[string]string{constant.RequestHeaderAPIKey: "guess"},
			setupMock:  func(*jwtMocks.MockJWT) {},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jwtService := jwtMocks.NewMockJWT(ctrl)
			tt.setupMock(jwtService)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			newRouter(t, jwtService).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, rec.Header().Get("X-User"))
		})
	}
}
