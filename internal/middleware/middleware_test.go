package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/dmehra2102/prod-golang-projects/saludvital/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/saludvital/pkg/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	generated := w.Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = serve(r, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestLoggerLevelsByStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	serve(r, httptest.NewRequest(http.MethodGet, "/ok", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
	assert.Equal(t, "/missing", entries[1].ContextMap()["route"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	m := metrics.NewCollector("test")
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/api/pacientes/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(r, httptest.NewRequest(http.MethodGet, "/api/pacientes/7", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/api/pacientes/8", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "/api/pacientes/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.InFlightGauge))
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Every(time.Hour), 2)
	r := gin.New()
	r.Use(RateLimit(limiter))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := func(ip string) int {
		rq := httptest.NewRequest(http.MethodGet, "/x", nil)
		rq.RemoteAddr = ip + ":1234"
		return serve(r, rq).Code
	}

	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, req("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, req("10.0.0.1"))
	assert.Equal(t, http.StatusOK, req("10.0.0.2"))
}

func TestIPRateLimiterCleanup(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	limiter.Allow("a")
	limiter.Allow("b")

	assert.Equal(t, 2, limiter.Cleanup(time.Now()))
	assert.Equal(t, 0, limiter.Cleanup(time.Now().Add(time.Hour)))
}

type stubValidator struct {
	claims *domain.Claims
	err    error
}

func (s stubValidator) ValidateAccessToken(string) (*domain.Claims, error) {
	return s.claims, s.err
}

func TestAuthenticate(t *testing.T) {
	claims := &domain.Claims{UserID: uuid.New(), Role: domain.RoleReceptionist}

	newRouter := func(v TokenValidator) *gin.Engine {
		r := gin.New()
		api := r.Group("/api", Authenticate(v))
		api.GET("/read", func(c *gin.Context) {
			got, _ := GetClaims(c)
			c.String(http.StatusOK, string(got.Role))
		})
		api.DELETE("/admin", RequireRoles(domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	t.Run("missing header", func(t *testing.T) {
		w := serve(newRouter(stubValidator{claims: claims}), httptest.NewRequest(http.MethodGet, "/api/read", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/read", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := serve(newRouter(stubValidator{err: auth.ErrTokenExpired}), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "expired")
	})

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/read", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := serve(newRouter(stubValidator{claims: claims}), req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "receptionist", w.Body.String())
	})

	t.Run("role denied", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin", nil)
		req.Header.Set("Authorization", "Bearer tok")
		w := serve(newRouter(stubValidator{claims: claims}), req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestAuthenticatePageRedirects(t *testing.T) {
	r := gin.New()
	r.GET("/pacientes/", AuthenticatePage(stubValidator{err: errors.New("bad")}, "session", "/login"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/pacientes/?page=2", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?next=%2Fpacientes%2F%3Fpage%3D2", w.Header().Get("Location"))
}
