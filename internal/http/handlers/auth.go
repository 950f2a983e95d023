package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/open-sspm/userdesk/internal/directory"
	"github.com/open-sspm/userdesk/internal/http/authn"
	"github.com/open-sspm/userdesk/internal/http/viewmodels"
	"github.com/open-sspm/userdesk/internal/http/views"
	"github.com/open-sspm/userdesk/internal/logging"
	"github.com/open-sspm/userdesk/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	usersPath = "/users"

	msgLoginSuccess   = "Login successful!"
	msgLoginFailed    = "Login failed"
	msgLoginMissing   = "Email and password are required."
	msgSignedOut      = "Signed out"
	loginOutcomeBlank = "rejected"
)

func (h *Handlers) loginView(c *echo.Context) viewmodels.LoginViewData {
	return viewmodels.LoginViewData{
		Layout:   h.LayoutData(c, "Sign in"),
		ShowDemo: true,
	}
}

func (h *Handlers) HandleLoginGet(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("sessions not configured")
	}
	addVary(c, "HX-Request")

	if _, ok := h.Sessions.Token(c.Request().Context()); ok {
		return c.Redirect(http.StatusSeeOther, usersPath)
	}

	data := h.loginView(c)
	data.Next = authn.SanitizeNext(c.QueryParam("next"))
	return h.RenderComponent(c, views.LoginPage(data))
}

func (h *Handlers) HandleLoginPost(c *echo.Context) error {
	if h.Sessions == nil || h.Auth == nil {
		return errors.New("login not configured")
	}

	ctx := c.Request().Context()
	email := strings.TrimSpace(c.FormValue("email"))
	password := c.FormValue("password")
	next := authn.SanitizeNext(c.FormValue("next"))

	data := h.loginView(c)
	data.Email = email
	data.Next = next

	if email == "" || strings.TrimSpace(password) == "" {
		metrics.LoginsTotal.WithLabelValues(loginOutcomeBlank).Inc()
		data.ErrorMessage = msgLoginMissing
		return h.RenderComponent(c, views.LoginPage(data))
	}

	token, shared, err := h.login(ctx, h.Sessions.WorkspaceID(ctx), email, password)
	metrics.LoginsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		c.Logger().Warn("login failed", append([]any{"email", email, "shared", shared}, logging.ErrorAttrs(err)...)...)
		title := directory.ServiceMessage(err)
		if title == "" {
			title = msgLoginFailed
		}
		data.Layout.Toast = newToast(toastError, title, "")
		return h.RenderComponent(c, views.LoginPage(data))
	}

	if err := h.Sessions.SignIn(ctx, token, email); err != nil {
		return err
	}
	setFlashToast(c, newToast(toastSuccess, msgLoginSuccess, ""))

	if next == "" {
		next = usersPath
	}
	return redirect(c, next)
}

// login exchanges credentials for a token. Identical submits from one session
// share the request already in flight; different credentials never do. A
// caller that joined a request cancelled by its originator retries with its
// own context.
func (h *Handlers) login(ctx context.Context, workspace, email, password string) (token string, shared bool, err error) {
	sum := sha256.Sum256([]byte(email + "\x00" + password))
	key := workspace + ":" + hex.EncodeToString(sum[:])

	ch := h.logins.DoChan(key, func() (any, error) {
		return h.Auth.Login(ctx, email, password)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return "", false, ctx.Err()
	}
	if res.Shared && res.Err != nil && ctx.Err() == nil &&
		(errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded)) {
		token, err = h.Auth.Login(ctx, email, password)
		return token, false, err
	}
	if res.Err != nil {
		return "", res.Shared, res.Err
	}
	return res.Val.(string), res.Shared, nil
}

func (h *Handlers) HandleLogoutPost(c *echo.Context) error {
	if h.Sessions == nil {
		return errors.New("sessions not configured")
	}

	workspace, err := h.Sessions.SignOut(c.Request().Context())
	if err != nil {
		return err
	}
	if h.Listings != nil {
		h.Listings.Drop(workspace)
	}
	metrics.LogoutsTotal.Inc()

	setFlashToast(c, newToast(toastSuccess, msgSignedOut, ""))
	return redirect(c, authn.LoginPath)
}
