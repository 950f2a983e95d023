package httpapp

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/open-sspm/userdesk/internal/config"
	"github.com/open-sspm/userdesk/internal/http/authn"
	"github.com/open-sspm/userdesk/internal/http/handlers"
	"github.com/open-sspm/userdesk/internal/listing"
	"github.com/open-sspm/userdesk/internal/session"
)

// Deps are the collaborators the HTTP server is built from.
type Deps struct {
	Auth     handlers.Authenticator
	Sessions *session.Manager
	Listings *listing.Registry
	Logger   *slog.Logger
}

// EchoServer is the HTTP server wrapper.
type EchoServer struct {
	h *handlers.Handlers
	e *echo.Echo
}

// NewEchoServer creates a new HTTP server.
func NewEchoServer(cfg config.Config, deps Deps) (*EchoServer, error) {
	if deps.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	if deps.Listings == nil {
		return nil, errors.New("listing registry is required")
	}
	h := &handlers.Handlers{
		Cfg:      cfg,
		Auth:     deps.Auth,
		Sessions: deps.Sessions,
		Listings: deps.Listings,
	}
	e := echo.New()
	if deps.Logger != nil {
		e.Logger = deps.Logger
	}
	es := &EchoServer{h: h, e: e}
	e.HTTPErrorHandler = es.httpErrorHandler
	es.registerRoutes(cfg)
	return es, nil
}

// Handler exposes the router for use in an http.Server.
func (es *EchoServer) Handler() http.Handler {
	return es.e
}

func (es *EchoServer) registerRoutes(cfg config.Config) {
	es.e.Use(requestID())
	es.e.Use(requestLog())
	es.e.Use(middleware.Recover())

	es.e.GET("/healthz", es.h.HandleHealthz)
	es.e.Static("/static", "web/static")

	app := es.e.Group("")
	app.Use(echo.WrapMiddleware(es.h.Sessions.LoadAndSave))
	app.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:" + echo.HeaderXCSRFToken + ",form:csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.AuthCookieSecure,
		CookieSameSite: http.SameSiteLaxMode,
	}))
	app.GET("/", es.h.HandleRoot)
	app.GET("/login", es.h.HandleLoginGet)
	app.POST("/login", es.h.HandleLoginPost)
	app.POST("/logout", es.h.HandleLogoutPost)

	users := app.Group("/users", authn.RequireToken(es.h.Sessions))
	users.GET("", es.h.HandleUsers)
	users.POST("/page", es.h.HandleUsersPage)
	users.POST("/edit/cancel", es.h.HandleUserEditCancel)
	users.POST("/:id/edit", es.h.HandleUserEdit)
	users.POST("/:id/delete", es.h.HandleUserDelete)
	users.POST("/:id", es.h.HandleUserUpdate)
}

// requestID tags every request with an X-Request-ID, keeping a
// well-formed one supplied by the client.
func requestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := strings.TrimSpace(c.Request().Header.Get(echo.HeaderXRequestID))
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}
			c.Set(handlers.ContextKeyRequestID, id)
			c.Response().Header().Set(echo.HeaderXRequestID, id)
			return next(c)
		}
	}
}

// requestLog logs every request once it has been handled.
func requestLog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			attrs := []any{
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"method", req.Method,
				"path", req.URL.Path,
				"duration", time.Since(start),
			}
			if err != nil {
				c.Logger().Warn("request failed", append(attrs, "error", err)...)
				return err
			}
			c.Logger().Debug("request", attrs...)
			return nil
		}
	}
}

func (es *EchoServer) httpErrorHandler(c *echo.Context, err error) {
	status := httpStatusFromError(err)
	switch {
	case status == http.StatusNotFound:
		_ = handlers.RenderNotFound(c)
	case status >= http.StatusInternalServerError:
		_ = es.h.RenderError(c, err)
	default:
		_ = c.String(status, http.StatusText(status))
	}
}

// httpStatusFromError returns the status carried by err, or 500.
func httpStatusFromError(err error) int {
	var coder interface{ StatusCode() int }
	if errors.As(err, &coder) {
		if code := coder.StatusCode(); code >= 400 && code <= 599 {
			return code
		}
	}
	return http.StatusInternalServerError
}
