package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/config"
	"github.com/Shantanu-Kulkarni1229/VisonCraft/internal/model"
)

func newCtx(t *testing.T, identity *model.Identity) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/orders?page=2", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/orders")
	if identity != nil {
		c.Set(identityKey, *identity)
	}
	return c
}

func TestBuildRateKeyStrategies(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl"}
	caller := &model.Identity{ID: 42, Role: model.RoleCustomer}

	cases := []struct {
		strategy string
		contains []string
	}{
		{"ip", []string{"ip", "10.1.2.3"}},
		{"user", []string{"user", "42"}},
		{"route", []string{"route", "GET /v1/orders"}},
		{"ip_user", []string{"10.1.2.3", "42"}},
		{"ip_user_route", []string{"10.1.2.3", "42", "GET /v1/orders"}},
	}
	for _, tc := range cases {
		cfg.KeyStrategy = tc.strategy
		key := buildRateKey(cfg, newCtx(t, caller))
		if !strings.HasPrefix(key, "rl:") {
			t.Fatalf("key %q missing prefix", key)
		}
		for _, want := range tc.contains {
			if !strings.Contains(key, want) {
				t.Fatalf("strategy %s: key %q missing %q", tc.strategy, key, want)
			}
		}
	}
}

func TestBuildRateKeyAnonymous(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user"}
	key := buildRateKey(cfg, newCtx(t, nil))
	if !strings.Contains(key, "anon") {
		t.Fatalf("anonymous key %q should bucket under anon", key)
	}
}
