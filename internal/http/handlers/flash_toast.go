package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/open-sspm/userdesk/internal/http/viewmodels"
)

const flashToastCookieName = "userdesk_toast"

const (
	toastSuccess = "success"
	toastError   = "error"
	toastWarning = "warning"
	toastInfo    = "info"
)

func newToast(category, title, description string) *viewmodels.ToastViewData {
	return cleanToast(viewmodels.ToastViewData{Category: category, Title: title, Description: description})
}

// cleanToast normalizes t and returns nil when there is nothing to show.
func cleanToast(t viewmodels.ToastViewData) *viewmodels.ToastViewData {
	t.Category = normalizeToastCategory(t.Category)
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if t.Title == "" && t.Description == "" {
		return nil
	}
	return &t
}

// setFlashToast carries toast across the next redirect.
func setFlashToast(c *echo.Context, toast *viewmodels.ToastViewData) {
	if toast == nil {
		return
	}
	t := cleanToast(*toast)
	if t == nil {
		return
	}

	payload, err := json.Marshal(t)
	if err != nil {
		return
	}

	c.SetCookie(&http.Cookie{
		Name:     flashToastCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		MaxAge:   30,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlashToast(c *echo.Context) *viewmodels.ToastViewData {
	cookie, err := c.Cookie(flashToastCookieName)
	if err != nil || cookie == nil {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:     flashToastCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}

	var toast viewmodels.ToastViewData
	if err := json.Unmarshal(raw, &toast); err != nil {
		return nil
	}
	return cleanToast(toast)
}

func normalizeToastCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	switch category {
	case toastSuccess, toastError, toastWarning, toastInfo:
		return category
	default:
		return toastInfo
	}
}
