package authn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"
)

type staticTokens string

func (s staticTokens) Token(context.Context) (string, bool) {
	return string(s), s != ""
}

func TestSanitizeNext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace", in: "   ", want: ""},
		{name: "root", in: "/", want: ""},
		{name: "ok_path", in: "/users", want: "/users"},
		{name: "ok_path_query", in: "/users?q=jan", want: "/users?q=jan"},
		{name: "ok_root_query", in: "/?foo=bar", want: "/?foo=bar"},
		{name: "absolute_url", in: "https://evil.example/", want: ""},
		{name: "protocol_relative", in: "//evil.example/", want: ""},
		{name: "triple_slash", in: "///evil.example/", want: ""},
		{name: "backslash", in: "/\\evil.example/", want: ""},
		{name: "encoded_slash", in: "/%2f%2fevil.example/", want: ""},
		{name: "encoded_backslash", in: "/%5cevil.example/", want: ""},
		{name: "login_path", in: "/login", want: ""},
		{name: "login_subpath", in: "/login/reset", want: ""},
		{name: "newline", in: "/\n/evil", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeNext(tt.in); got != tt.want {
				t.Fatalf("SanitizeNext(%q)=%q; want %q", tt.in, got, tt.want)
			}
		})
	}
}

func runGuard(t *testing.T, tokens TokenSource, req *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := RequireToken(tokens)(func(c *echo.Context) error {
		called = true
		if token, ok := TokenFromContext(c); !ok || token != string(tokens.(staticTokens)) {
			t.Fatalf("TokenFromContext() = %q, %v", token, ok)
		}
		return c.String(http.StatusOK, "listing")
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	return rec, called
}

func TestRequireTokenRedirectsWithoutToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/users?q=jan", nil)
	rec, called := runGuard(t, staticTokens(""), req)

	if called {
		t.Fatal("guarded handler must not run without a token")
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if got := rec.Header().Get("Location"); got != "/login?next=%2Fusers%3Fq%3Djan" {
		t.Fatalf("Location = %q", got)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q, want no-store", got)
	}
}

func TestRequireTokenPostRedirectsToPlainLogin(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "http://example.com/users/3/delete", nil)
	rec, _ := runGuard(t, staticTokens(""), req)

	if got := rec.Header().Get("Location"); got != "/login" {
		t.Fatalf("Location = %q, want /login", got)
	}
}

func TestRequireTokenUsesHXRedirectForHTMX(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/users", nil)
	req.Header.Set("HX-Request", "true")
	rec, called := runGuard(t, staticTokens(""), req)

	if called {
		t.Fatal("guarded handler must not run without a token")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("HX-Redirect"); got != "/login?next=%2Fusers" {
		t.Fatalf("HX-Redirect = %q", got)
	}
}

func TestRequireTokenAPIReturnsJSON(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/api/users", nil)
	rec, _ := runGuard(t, staticTokens(""), req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if !strings.Contains(rec.Body.String(), `"unauthorized"`) {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRequireTokenPassesThrough(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "http://example.com/users", nil)
	rec, called := runGuard(t, staticTokens("QpwL5tke4Pnpja7X4"), req)

	if !called {
		t.Fatal("expected guarded handler to run")
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "listing" {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
}
