package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"
	"github.com/open-sspm/userdesk/internal/directory"
	"github.com/open-sspm/userdesk/internal/http/viewmodels"
	"github.com/open-sspm/userdesk/internal/http/views"
	"github.com/open-sspm/userdesk/internal/listing"
)

const (
	msgFetchFailed    = "Failed to fetch users"
	msgUpdateSuccess  = "User updated successfully"
	msgUpdateFailed   = "Failed to update user"
	msgDeleteSuccess  = "User deleted successfully"
	msgDeleteFailed   = "Failed to delete user"
	msgUserNotFound   = "User not found"
	msgUpdateInFlight = "An update is already in progress"
	msgDeleteInFlight = "This user is already being deleted"
	msgNoEditTarget   = "No user is being edited"
	msgMissingTitle   = "Missing fields"
	msgMissingFields  = "Please fill in all fields"
	msgRequestFailed  = "Request failed"
)

// workspace returns the listing orchestrator of the request's session.
func (h *Handlers) workspace(c *echo.Context) (*listing.Orchestrator, error) {
	if h.Sessions == nil || h.Listings == nil {
		return nil, errors.New("listing not configured")
	}
	return h.Listings.Get(h.Sessions.WorkspaceID(c.Request().Context())), nil
}

// HandleUsers renders the listing, fetching the first page on the first visit.
func (h *Handlers) HandleUsers(c *echo.Context) error {
	addVary(c, "HX-Request", "HX-Target")

	o, err := h.workspace(c)
	if err != nil {
		return h.RenderError(c, err)
	}
	if c.QueryParams().Has("q") {
		o.Search(c.QueryParam("q"))
	}

	s, _, err := o.Mount(c.Request().Context())
	var toast *viewmodels.ToastViewData
	if err != nil {
		toast = newToast(toastError, msgFetchFailed, directory.ServiceMessage(err))
	}

	data := h.usersView(c, s, toast, nil)
	if isHX(c) && isHXTarget(c, views.UsersResultsID) {
		return h.renderResults(c, data)
	}
	return h.RenderComponent(c, views.UsersPage(data))
}

// HandleUsersPage moves to another page of the listing.
func (h *Handlers) HandleUsersPage(c *echo.Context) error {
	o, err := h.workspace(c)
	if err != nil {
		return h.RenderError(c, err)
	}

	ctx := c.Request().Context()
	move := parsePageMove(c)
	var s listing.State
	if move.absolute {
		s, _, err = o.GoToPage(ctx, move.page)
	} else {
		s, _, err = o.ChangePage(ctx, move.delta)
	}

	var toast *viewmodels.ToastViewData
	if err != nil {
		toast = newToast(toastError, msgFetchFailed, directory.ServiceMessage(err))
	}
	return h.respondListing(c, s, toast, nil)
}

// HandleUserEdit opens the edit modal for a user on the current page.
func (h *Handlers) HandleUserEdit(c *echo.Context) error {
	id, ok := parseUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	o, err := h.workspace(c)
	if err != nil {
		return h.RenderError(c, err)
	}

	s, err := o.Edit(id)
	return h.respondListing(c, s, listingErrorToast(err, ""), nil)
}

// HandleUserEditCancel closes the edit modal, discarding the draft.
func (h *Handlers) HandleUserEditCancel(c *echo.Context) error {
	o, err := h.workspace(c)
	if err != nil {
		return h.RenderError(c, err)
	}
	return h.respondListing(c, o.CancelEdit(), nil, nil)
}

// HandleUserUpdate submits the edit modal for user id.
func (h *Handlers) HandleUserUpdate(c *echo.Context) error {
	id, ok := parseUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	o, err := h.workspace(c)
	if err != nil {
		return h.RenderError(c, err)
	}

	s := o.Snapshot()
	if !s.Modal.IsOpen() || s.Modal.Target().ID != id {
		return h.respondListing(c, s, newToast(toastWarning, msgNoEditTarget, ""), nil)
	}

	draft := directory.Draft{
		FirstName: c.FormValue("first_name"),
		LastName:  c.FormValue("last_name"),
		Email:     c.FormValue("email"),
	}.Normalize()
	if len(draft.Missing()) > 0 {
		s, err := o.KeepDraft(draft)
		if err != nil {
			return h.respondListing(c, s, listingErrorToast(err, ""), nil)
		}
		alert := &viewmodels.UsersAlert{Title: msgMissingTitle, Message: msgMissingFields, Destructive: true}
		return h.respondListing(c, s, nil, alert)
	}

	s, err = o.SubmitUpdate(c.Request().Context(), draft)
	if err != nil {
		return h.respondListing(c, s, listingErrorToast(err, msgUpdateFailed), nil)
	}
	return h.respondListing(c, s, newToast(toastSuccess, msgUpdateSuccess, ""), nil)
}

// HandleUserDelete deletes user id from the directory and the loaded page.
func (h *Handlers) HandleUserDelete(c *echo.Context) error {
	id, ok := parseUserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	o, err := h.workspace(c)
	if err != nil {
		return h.RenderError(c, err)
	}

	s, err := o.Delete(c.Request().Context(), id)
	if err != nil {
		return h.respondListing(c, s, listingErrorToast(err, msgDeleteFailed), nil)
	}
	return h.respondListing(c, s, newToast(toastSuccess, msgDeleteSuccess, ""), nil)
}

// respondListing answers a listing action. htmx requests get the results
// fragment in place; plain form posts are redirected back to the listing
// with the toast flashed, unless an inline alert has to be shown.
func (h *Handlers) respondListing(c *echo.Context, s listing.State, toast *viewmodels.ToastViewData, alert *viewmodels.UsersAlert) error {
	addVary(c, "HX-Request", "HX-Target")

	if isHX(c) {
		data := h.usersView(c, s, toast, alert)
		if isHXTarget(c, views.UsersResultsID) {
			return h.renderResults(c, data)
		}
		return h.RenderComponent(c, views.UsersPage(data))
	}
	if alert != nil {
		return h.RenderComponent(c, views.UsersPage(h.usersView(c, s, toast, alert)))
	}
	setFlashToast(c, toast)
	return c.Redirect(http.StatusSeeOther, usersPath)
}

// renderResults renders only the results fragment. A pending flash toast
// goes inside it since the layout is not re-rendered.
func (h *Handlers) renderResults(c *echo.Context, data viewmodels.UsersViewData) error {
	if data.Toast == nil {
		data.Toast = data.Layout.Toast
	}
	return h.RenderComponent(c, views.UsersResults(data))
}

// listingErrorToast maps an orchestrator error to a toast. fallback titles
// directory failures.
func listingErrorToast(err error, fallback string) *viewmodels.ToastViewData {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, listing.ErrUserNotFound):
		return newToast(toastError, msgUserNotFound, "")
	case errors.Is(err, listing.ErrUpdateInFlight):
		return newToast(toastWarning, msgUpdateInFlight, "")
	case errors.Is(err, listing.ErrDeleteInProgress):
		return newToast(toastWarning, msgDeleteInFlight, "")
	case errors.Is(err, listing.ErrNoEditTarget):
		return newToast(toastWarning, msgNoEditTarget, "")
	}
	if fallback == "" {
		fallback = msgRequestFailed
	}
	return newToast(toastError, fallback, directory.ServiceMessage(err))
}

func (h *Handlers) usersView(c *echo.Context, s listing.State, toast *viewmodels.ToastViewData, alert *viewmodels.UsersAlert) viewmodels.UsersViewData {
	filtered := s.Filtered()
	users := make([]viewmodels.UserItem, 0, len(filtered))
	for _, u := range filtered {
		users = append(users, viewmodels.UserItem{
			ID:           u.ID,
			FullName:     u.FullName(),
			Email:        u.Email,
			AvatarURL:    strings.TrimSpace(u.Avatar),
			Organization: viewmodels.EmailOrganization(u.Email),
			Deleting:     s.Deleting(u.ID),
		})
	}

	data := viewmodels.UsersViewData{
		Layout:      h.LayoutData(c, "Users"),
		Query:       s.Search,
		Users:       users,
		Page:        s.Page,
		TotalPages:  s.TotalPages,
		HasPrevious: s.HasPrevious(),
		HasNext:     s.HasNext(),
		Loading:     s.Loading,
		Toast:       toast,
	}
	if s.Modal.IsOpen() {
		target, draft := s.Modal.Target(), s.Modal.Draft()
		data.Edit = &viewmodels.UserEditForm{
			UserID:       target.ID,
			FullName:     target.FullName(),
			CurrentEmail: target.Email,
			AvatarURL:    strings.TrimSpace(target.Avatar),
			FirstName:    draft.FirstName,
			LastName:     draft.LastName,
			Email:        draft.Email,
			Submitting:   s.Modal.Submitting(),
			Alert:        alert,
		}
	}
	return data
}
