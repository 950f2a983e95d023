package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/open-sspm/userdesk/internal/directory"
	"github.com/open-sspm/userdesk/internal/listing"
	"github.com/open-sspm/userdesk/internal/logging"
	"github.com/open-sspm/userdesk/internal/session"
)

type fakeDirectory struct {
	mu        sync.Mutex
	pages     map[int]directory.Page
	listErr   error
	updateErr error
	deleteErr map[int]error
	updated   []directory.Draft

	listCalls   atomic.Int32
	deleteCalls atomic.Int32
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		pages: map[int]directory.Page{
			1: {Number: 1, TotalPages: 2, Users: []directory.User{
				{ID: 1, Email: "george.bluth@reqres.in", FirstName: "George", LastName: "Bluth", Avatar: "https://reqres.in/img/faces/1-image.jpg"},
				{ID: 2, Email: "janet.weaver@reqres.in", FirstName: "Janet", LastName: "Weaver", Avatar: "https://reqres.in/img/faces/2-image.jpg"},
				{ID: 3, Email: "emma.wong@reqres.in", FirstName: "Emma", LastName: "Wong", Avatar: "https://reqres.in/img/faces/3-image.jpg"},
			}},
			2: {Number: 2, TotalPages: 2, Users: []directory.User{
				{ID: 7, Email: "michael.lawson@reqres.in", FirstName: "Michael", LastName: "Lawson", Avatar: "https://reqres.in/img/faces/7-image.jpg"},
				{ID: 8, Email: "lindsay.ferguson@reqres.in", FirstName: "Lindsay", LastName: "Ferguson", Avatar: "https://reqres.in/img/faces/8-image.jpg"},
			}},
		},
		deleteErr: map[int]error{},
	}
}

func (f *fakeDirectory) ListUsers(_ context.Context, page int) (directory.Page, error) {
	f.listCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return directory.Page{}, f.listErr
	}
	return f.pages[page], nil
}

func (f *fakeDirectory) UpdateUser(_ context.Context, _ int, draft directory.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, draft)
	return nil
}

func (f *fakeDirectory) DeleteUser(_ context.Context, id int) error {
	f.deleteCalls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteErr[id]
}

// newListingHandlers wires handlers around dir with a signed-in session
// loaded into c.
func newListingHandlers(t *testing.T, c *echo.Context, dir *fakeDirectory) *Handlers {
	t.Helper()

	h := newAuthHandlerWithSessionContext(t, c)
	h.Listings = listing.NewRegistry(dir, time.Hour, logging.Discard())
	if err := h.Sessions.SignIn(c.Request().Context(), "QpwL5tke4Pnpja7X4", "eve.holt@reqres.in"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	return h
}

// reuse points c at the session of a previous request.
func reuse(prev, c *echo.Context) {
	c.SetRequest(c.Request().WithContext(prev.Request().Context()))
}

func hxResults(c *echo.Context) {
	c.Request().Header.Set("HX-Request", "true")
	c.Request().Header.Set("HX-Target", "users-results")
}

func TestHandleUsersFetchesFirstPageOnce(t *testing.T) {
	dir := newFakeDirectory()
	c, rec := newTestContext(http.MethodGet, "http://example.com/users")
	h := newListingHandlers(t, c, dir)

	if err := h.HandleUsers(c); err != nil {
		t.Fatalf("HandleUsers() error = %v", err)
	}
	body := rec.Body.String()
	for _, want := range []string{"George Bluth", "Emma Wong", "Page 1 of 2", "eve.holt@reqres.in", `action="/logout"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}

	c2, rec2 := newTestContext(http.MethodGet, "http://example.com/users?q=JAN")
	reuse(c, c2)
	hxResults(c2)
	if err := h.HandleUsers(c2); err != nil {
		t.Fatalf("HandleUsers() error = %v", err)
	}
	if got := dir.listCalls.Load(); got != 1 {
		t.Fatalf("ListUsers calls = %d, want 1", got)
	}
	body = rec2.Body.String()
	if !strings.Contains(body, "Janet Weaver") || strings.Contains(body, "George Bluth") {
		t.Fatalf("search not applied: %q", body)
	}
	if strings.Contains(body, "<html") {
		t.Fatal("htmx results request should get a fragment")
	}
	if vary := parseVaryHeader(rec2.Header().Get(echo.HeaderVary)); vary["hx-target"] != 1 {
		t.Fatalf("Vary header missing hx-target: %v", vary)
	}
}

func TestHandleUsersFetchFailureShowsToast(t *testing.T) {
	dir := newFakeDirectory()
	dir.listErr = errors.New("connection refused")
	c, rec := newTestContext(http.MethodGet, "http://example.com/users")
	h := newListingHandlers(t, c, dir)

	if err := h.HandleUsers(c); err != nil {
		t.Fatalf("HandleUsers() error = %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, msgFetchFailed) || !strings.Contains(body, "No users found") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestHandleUsersPageNextAndPreviousBounds(t *testing.T) {
	dir := newFakeDirectory()
	c, _ := newTestContext(http.MethodGet, "http://example.com/users")
	h := newListingHandlers(t, c, dir)
	if err := h.HandleUsers(c); err != nil {
		t.Fatalf("HandleUsers() error = %v", err)
	}

	prev, rec := newFormContext(http.MethodPost, "http://example.com/users/page", url.Values{"delta": {"-1"}})
	reuse(c, prev)
	if err := h.HandleUsersPage(prev); err != nil {
		t.Fatalf("HandleUsersPage() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/users" {
		t.Fatalf("status = %d Location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if got := dir.listCalls.Load(); got != 1 {
		t.Fatalf("Previous on page 1 must not fetch, calls = %d", got)
	}

	next, rec := newFormContext(http.MethodPost, "http://example.com/users/page", url.Values{"delta": {"1"}})
	reuse(c, next)
	hxResults(next)
	if err := h.HandleUsersPage(next); err != nil {
		t.Fatalf("HandleUsersPage() error = %v", err)
	}
	if got := dir.listCalls.Load(); got != 2 {
		t.Fatalf("ListUsers calls = %d, want 2", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Michael Lawson") || !strings.Contains(body, "Page 2 of 2") {
		t.Fatalf("page 2 not rendered: %q", body)
	}

	far, _ := newFormContext(http.MethodPost, "http://example.com/users/page", url.Values{"page": {"9"}})
	reuse(c, far)
	if err := h.HandleUsersPage(far); err != nil {
		t.Fatalf("HandleUsersPage() error = %v", err)
	}
	if got := dir.listCalls.Load(); got != 2 {
		t.Fatalf("out of range page must clamp without fetching, calls = %d", got)
	}
}

func TestHandleUserEditAndUpdate(t *testing.T) {
	dir := newFakeDirectory()
	c, _ := newTestContext(http.MethodGet, "http://example.com/users")
	h := newListingHandlers(t, c, dir)
	if err := h.HandleUsers(c); err != nil {
		t.Fatalf("HandleUsers() error = %v", err)
	}

	edit, rec := newTestContext(http.MethodPost, "http://example.com/users/2/edit")
	reuse(c, edit)
	hxResults(edit)
	edit.SetPathValues(echo.PathValues{{Name: "id", Value: "2"}})
	if err := h.HandleUserEdit(edit); err != nil {
		t.Fatalf("HandleUserEdit() error = %v", err)
	}
	if body := rec.Body.String(); !strings.Contains(body, "Edit Profile") || !strings.Contains(body, `name="first_name" value="Janet"`) {
		t.Fatalf("modal not rendered: %q", body)
	}

	blank, rec := newFormContext(http.MethodPost, "http://example.com/users/2", url.Values{
		"first_name": {"Janet"}, "last_name": {" "}, "email": {"janet@example.com"},
	})
	reuse(c, blank)
	hxResults(blank)
	blank.SetPathValues(echo.PathValues{{Name: "id", Value: "2"}})
	if err := h.HandleUserUpdate(blank); err != nil {
		t.Fatalf("HandleUserUpdate() error = %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, msgMissingFields) || !strings.Contains(body, `name="email" value="janet@example.com"`) {
		t.Fatalf("validation alert not rendered: %q", body)
	}
	if len(dir.updated) != 0 {
		t.Fatal("blank fields must not reach the directory")
	}

	update, rec := newFormContext(http.MethodPost, "http://example.com/users/2", url.Values{
		"first_name": {"Janet"}, "last_name": {"Weaver-Smith"}, "email": {"janet@example.com"},
	})
	reuse(c, update)
	hxResults(update)
	update.SetPathValues(echo.PathValues{{Name: "id", Value: "2"}})
	if err := h.HandleUserUpdate(update); err != nil {
		t.Fatalf("HandleUserUpdate() error = %v", err)
	}
	body = rec.Body.String()
	if !strings.Contains(body, msgUpdateSuccess) || !strings.Contains(body, "Janet Weaver-Smith") {
		t.Fatalf("update not merged: %q", body)
	}
	if strings.Contains(body, "Edit Profile") {
		t.Fatal("modal should close after a successful update")
	}
	if len(dir.updated) != 1 || dir.updated[0].LastName != "Weaver-Smith" {
		t.Fatalf("unexpected updates: %#v", dir.updated)
	}
}

func TestHandleUserUpdateWithoutOpenModal(t *testing.T) {
	dir := newFakeDirectory()
	c, _ := newTestContext(http.MethodGet, "http://example.com/users")
	h := newListingHandlers(t, c, dir)
	if err := h.HandleUsers(c); err != nil {
		t.Fatalf("HandleUsers() error = %v", err)
	}

	update, rec := newFormContext(http.MethodPost, "http://example.com/users/3", url.Values{
		"first_name": {"Emma"}, "last_name": {"Wong"}, "email": {"emma@example.com"},
	})
	reuse(c, update)
	update.SetPathValues(echo.PathValues{{Name: "id", Value: "3"}})
	if err := h.HandleUserUpdate(update); err != nil {
		t.Fatalf("HandleUserUpdate() error = %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if len(dir.updated) != 0 {
		t.Fatal("update without an open modal must not reach the directory")
	}
}

func TestHandleUserDeleteFailureKeepsRow(t *testing.T) {
	dir := newFakeDirectory()
	dir.deleteErr[3] = &directory.APIError{Operation: directory.OpDelete, StatusCode: http.StatusInternalServerError, Status: "500 Internal Server Error"}
	c, _ := newTestContext(http.MethodGet, "http://example.com/users")
	h := newListingHandlers(t, c, dir)
	if err := h.HandleUsers(c); err != nil {
		t.Fatalf("HandleUsers() error = %v", err)
	}

	del, rec := newTestContext(http.MethodPost, "http://example.com/users/3/delete")
	reuse(c, del)
	hxResults(del)
	del.SetPathValues(echo.PathValues{{Name: "id", Value: "3"}})
	if err := h.HandleUserDelete(del); err != nil {
		t.Fatalf("HandleUserDelete() error = %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, msgDeleteFailed) || !strings.Contains(body, "Emma Wong") {
		t.Fatalf("failed delete should keep the row: %q", body)
	}
	if strings.Contains(body, "disabled><span class=\"spinner\"") {
		t.Fatal("delete marker should be cleared")
	}

	del, rec = newTestContext(http.MethodPost, "http://example.com/users/1/delete")
	reuse(c, del)
	hxResults(del)
	del.SetPathValues(echo.PathValues{{Name: "id", Value: "1"}})
	if err := h.HandleUserDelete(del); err != nil {
		t.Fatalf("HandleUserDelete() error = %v", err)
	}
	body = rec.Body.String()
	if !strings.Contains(body, msgDeleteSuccess) || strings.Contains(body, "George Bluth") {
		t.Fatalf("successful delete should remove the row: %q", body)
	}
	if !strings.Contains(body, "Janet Weaver") {
		t.Fatal("other rows must remain")
	}
}

func TestHandleUserRoutesRejectInvalidID(t *testing.T) {
	c, _ := newTestContext(http.MethodPost, "http://example.com/users/abc/delete")
	c.SetPathValues(echo.PathValues{{Name: "id", Value: "abc"}})
	h := &Handlers{Sessions: session.New(session.Options{})}

	err := h.HandleUserDelete(c)
	var httpErr *echo.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("HandleUserDelete() error = %v, want HTTPError", err)
	}
}
