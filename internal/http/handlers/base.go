// Package handlers contains HTTP handler logic split by domain.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/open-sspm/userdesk/internal/config"
	"github.com/open-sspm/userdesk/internal/http/viewmodels"
	"github.com/open-sspm/userdesk/internal/listing"
	"github.com/open-sspm/userdesk/internal/session"
	"golang.org/x/sync/singleflight"
)

const (
	// ContextKeyRequestID stores the request id (X-Request-ID) for logging and client error references.
	ContextKeyRequestID = "request_id"

	// InternalErrorCode is a stable error code safe to return to clients.
	InternalErrorCode = "INTERNAL_ERROR"
)

// Authenticator exchanges credentials for a directory token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Handlers groups all HTTP handlers and shared dependencies.
type Handlers struct {
	Cfg      config.Config
	Auth     Authenticator
	Sessions *session.Manager
	Listings *listing.Registry

	logins singleflight.Group
}

// LayoutData builds the common layout data for page rendering.
func (h *Handlers) LayoutData(c *echo.Context, title string) viewmodels.LayoutData {
	csrfToken, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	layout := viewmodels.LayoutData{
		Title:     title,
		CSRFToken: csrfToken,
		Toast:     popFlashToast(c),
	}
	if h.Sessions != nil {
		if _, ok := h.Sessions.Token(c.Request().Context()); ok {
			layout.UserEmail = h.Sessions.Email(c.Request().Context())
		}
	}
	return layout
}

// RenderComponent renders a templ component as the response.
func (h *Handlers) RenderComponent(c *echo.Context, component templ.Component) error {
	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(c.Request().Context(), c.Response()); err != nil {
		return h.RenderError(c, err)
	}
	return nil
}

// RenderError returns a plain text error response.
func (h *Handlers) RenderError(c *echo.Context, err error) error {
	requestID, _ := c.Get(ContextKeyRequestID).(string)
	path := ""
	if req := c.Request(); req != nil && req.URL != nil {
		path = req.URL.Path
	}
	method := ""
	if req := c.Request(); req != nil {
		method = req.Method
	}
	c.Logger().Error("http error",
		"request_id", requestID,
		"method", method,
		"path", path,
		"ip", c.RealIP(),
		"error", err,
	)

	msg := "Internal server error."
	if requestID != "" {
		msg = fmt.Sprintf("%s Reference: %s.", msg, requestID)
	}
	msg = fmt.Sprintf("%s Code: %s.", msg, InternalErrorCode)
	return c.String(http.StatusInternalServerError, msg)
}

// RenderNotFound returns a 404 response.
func RenderNotFound(c *echo.Context) error {
	return c.String(http.StatusNotFound, "404 page not found")
}

// HandleHealthz reports liveness.
func (h *Handlers) HandleHealthz(c *echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// HandleRoot sends visitors to the login page, which forwards signed-in
// sessions to the listing.
func (h *Handlers) HandleRoot(c *echo.Context) error {
	return c.Redirect(http.StatusSeeOther, "/login")
}
