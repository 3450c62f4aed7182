package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mahiprime2001/Billing-system/internal/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{Enabled: true, Prefix: "cache", KeyStrategy: "route_query"}
}

func TestCacheKey_PerEntity(t *testing.T) {
	cfg := testCacheConfig()
	a := cacheKey(cfg, http.MethodGet, "/bills/42", "")
	b := cacheKey(cfg, http.MethodGet, "/bills/43", "")
	if a == b {
		t.Error("two bill detail paths share one cache key")
	}
}

func TestCacheKey_InvalidationMatchesRead(t *testing.T) {
	cfg := testCacheConfig()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/bills/42", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	read := cacheKeyFrom(cfg, c)
	if got := cacheKey(cfg, http.MethodGet, "/bills/42", ""); got != read {
		t.Errorf("invalidation key %q != read key %q", got, read)
	}
}

func TestInvalidateCached_NoRedisIsNoop(t *testing.T) {
	InvalidateCached(context.Background(), testCacheConfig(), nil, "/bills/42")
}
