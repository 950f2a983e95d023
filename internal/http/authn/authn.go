// Package authn guards routes that need a signed-in session.
package authn

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v5"
)

const (
	// ContextKeyToken holds the directory token of the signed-in session.
	ContextKeyToken = "auth_token"

	LoginPath = "/login"
)

// TokenSource reads the directory token stored in the request's session.
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
}

func TokenFromContext(c *echo.Context) (string, bool) {
	token, ok := c.Get(ContextKeyToken).(string)
	return token, ok && token != ""
}

// RequireToken lets a request through only when its session holds a token.
// Nothing downstream runs otherwise.
func RequireToken(sessions TokenSource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			c.Response().Header().Set("Cache-Control", "no-store")
			token, ok := sessions.Token(c.Request().Context())
			if !ok {
				return handleUnauth(c)
			}
			c.Set(ContextKeyToken, token)
			return next(c)
		}
	}
}

func isAPIRequest(c *echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

func isHX(c *echo.Context) bool {
	return strings.EqualFold(strings.TrimSpace(c.Request().Header.Get("HX-Request")), "true")
}

func handleUnauth(c *echo.Context) error {
	if isAPIRequest(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	}

	location := LoginPath
	if c.Request().Method == http.MethodGet {
		if next := SanitizeNext(c.Request().URL.RequestURI()); next != "" {
			location = LoginPath + "?next=" + url.QueryEscape(next)
		}
	}
	c.Response().Header().Add(echo.HeaderVary, "HX-Request")
	if isHX(c) {
		c.Response().Header().Set("HX-Redirect", location)
		return c.NoContent(http.StatusOK)
	}
	return c.Redirect(http.StatusSeeOther, location)
}

// SanitizeNext returns next when it is a local path worth returning to after
// login, and "" otherwise.
func SanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || len(next) > 2048 {
		return ""
	}
	if strings.ContainsFunc(next, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return ""
	}
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" || u.Scheme != "" {
		return ""
	}
	path := u.Path
	if strings.HasPrefix(path, "//") || strings.Contains(path, "\\") {
		return ""
	}
	if path == "/" && u.RawQuery == "" {
		return ""
	}
	if path == LoginPath || strings.HasPrefix(path, LoginPath+"/") {
		return ""
	}
	return next
}
