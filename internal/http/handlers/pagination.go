package handlers

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v5"
)

// pageMove is a pagination request: either a relative step or an absolute page.
type pageMove struct {
	delta    int
	page     int
	absolute bool
}

// parsePageMove reads "page" (absolute, >= 1) or "delta" from the form.
// An unusable value yields a zero move.
func parsePageMove(c *echo.Context) pageMove {
	if rawPage := strings.TrimSpace(c.FormValue("page")); rawPage != "" {
		if parsed, err := strconv.Atoi(rawPage); err == nil && parsed > 0 {
			return pageMove{page: parsed, absolute: true}
		}
		return pageMove{}
	}
	if rawDelta := strings.TrimSpace(c.FormValue("delta")); rawDelta != "" {
		if parsed, err := strconv.Atoi(rawDelta); err == nil {
			return pageMove{delta: parsed}
		}
	}
	return pageMove{}
}

func parseUserID(c *echo.Context) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
