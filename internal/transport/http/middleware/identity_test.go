package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/kirana-labs/kirana/internal/entity"
)

func callWith(t *testing.T, mw echo.MiddlewareFunc, headers map[string]string) (*httptest.ResponseRecorder, Caller, bool) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		caller Caller
		seen   bool
	)
	handler := mw(func(c echo.Context) error {
		caller, seen = CallerFrom(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, caller, seen
}

func TestIdentityParsesHeaders(t *testing.T) {
	rec, caller, seen := callWith(t, Identity(), map[string]string{
		HeaderCallerID:   "42",
		HeaderCallerRole: "Provider",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !seen {
		t.Fatal("caller not attached to context")
	}
	if caller.ID != 42 || caller.Role != entity.RoleProvider {
		t.Fatalf("caller = %+v", caller)
	}
	if !caller.IsProvider() {
		t.Fatal("expected provider caller")
	}
}

func TestIdentityDefaultsRoleToConsumer(t *testing.T) {
	_, caller, _ := callWith(t, Identity(), map[string]string{HeaderCallerID: "7"})
	if caller.Role != entity.RoleConsumer {
		t.Fatalf("role = %q, want consumer", caller.Role)
	}
}

func TestIdentityRejectsMissingOrBadID(t *testing.T) {
	for _, raw := range []string{"", "abc", "-3", "0"} {
		rec, _, seen := callWith(t, Identity(), map[string]string{HeaderCallerID: raw})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("id %q: status = %d, want 403", raw, rec.Code)
		}
		if seen {
			t.Fatalf("id %q: caller should not reach handler", raw)
		}
	}
}

func TestRequireRoleBlocksMismatch(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCallerID, "9")
	req.Header.Set(HeaderCallerRole, entity.RoleConsumer)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := Identity()(RequireRole(entity.RoleProvider)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := chain(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRequireRolePassesMatch(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCallerID, "9")
	req.Header.Set(HeaderCallerRole, entity.RoleProvider)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	chain := Identity()(RequireRole(entity.RoleProvider)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := chain(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}
