package views

import (
	"bytes"
	"context"
	"html"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/open-sspm/userdesk/internal/http/viewmodels"
)

func renderViewComponent(t *testing.T, component templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	if err := component.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render component: %v", err)
	}
	return buf.String()
}

func sampleUsersView() viewmodels.UsersViewData {
	return viewmodels.UsersViewData{
		Layout:      viewmodels.LayoutData{Title: "Users", CSRFToken: "csrf-token-123", UserEmail: "eve.holt@reqres.in"},
		Page:        1,
		TotalPages:  2,
		HasPrevious: false,
		HasNext:     true,
		Users: []viewmodels.UserItem{
			{ID: 1, FullName: "George Bluth", Email: "george.bluth@reqres.in", AvatarURL: "https://reqres.in/img/faces/1-image.jpg", Organization: "reqres.in"},
			{ID: 2, FullName: "Janet Weaver", Email: "janet.weaver@reqres.in", AvatarURL: "https://reqres.in/img/faces/2-image.jpg", Deleting: true},
		},
	}
}

func TestUsersPageSearchUsesDebouncedHTMX(t *testing.T) {
	t.Parallel()

	data := sampleUsersView()
	data.Query = "jan"
	out := renderViewComponent(t, UsersPage(data))

	assertContains(t, out, `hx-get="/users"`)
	assertContains(t, out, `hx-target="#users-results"`)
	assertContains(t, out, `hx-swap="outerHTML"`)
	assertContains(t, out, `hx-push-url="true"`)
	assertContains(t, out, `hx-trigger="`+html.EscapeString(searchTrigger)+`"`)
	assertContains(t, out, `name="q" value="jan"`)
	assertContains(t, out, `id="users-results"`)
}

func TestUsersResultsRendersCards(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, UsersResults(sampleUsersView()))

	assertContains(t, out, `id="user-1"`)
	assertContains(t, out, "George Bluth")
	assertContains(t, out, `<p class="badge">reqres.in</p>`)
	assertContains(t, out, `action="/users/1/edit"`)
	assertContains(t, out, `hx-post="/users/2/delete"`)
	assertContains(t, out, `<button type="submit" class="btn btn-destructive" disabled><span class="spinner"`)
	assertContains(t, out, `value="csrf-token-123"`)
	assertNotContains(t, out, "No users found")
}

func TestUsersResultsPaginationBounds(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, UsersResults(sampleUsersView()))

	assertContains(t, out, `name="delta" value="-1" disabled>Previous`)
	assertContains(t, out, `name="delta" value="1">Next`)
	assertContains(t, out, "Page 1 of 2")

	data := sampleUsersView()
	data.Page, data.HasPrevious, data.HasNext = 2, true, false
	out = renderViewComponent(t, UsersResults(data))

	assertContains(t, out, `name="delta" value="-1">Previous`)
	assertContains(t, out, `name="delta" value="1" disabled>Next`)
	assertContains(t, out, "Page 2 of 2")
}

func TestUsersResultsEmptyAndLoadingStates(t *testing.T) {
	t.Parallel()

	data := sampleUsersView()
	data.Users = nil
	out := renderViewComponent(t, UsersResults(data))
	assertContains(t, out, "No users found")
	assertNotContains(t, out, "Try adjusting your search query")

	data.Query = "zzz"
	out = renderViewComponent(t, UsersResults(data))
	assertContains(t, out, "Try adjusting your search query")

	data.Loading = true
	out = renderViewComponent(t, UsersResults(data))
	assertContains(t, out, "Loading users...")
	assertNotContains(t, out, "No users found")
	assertNotContains(t, out, `class="pagination"`)
}

func TestUsersResultsRendersToast(t *testing.T) {
	t.Parallel()

	data := sampleUsersView()
	data.Toast = &viewmodels.ToastViewData{Category: "error", Title: "Failed to delete user"}
	out := renderViewComponent(t, UsersResults(data))

	assertContains(t, out, `data-category="error" role="alert"`)
	assertContains(t, out, "Failed to delete user")
}

func TestEditUserModal(t *testing.T) {
	t.Parallel()

	form := viewmodels.UserEditForm{
		UserID:       2,
		FullName:     "Janet Weaver",
		CurrentEmail: "janet.weaver@reqres.in",
		AvatarURL:    "https://reqres.in/img/faces/2-image.jpg",
		FirstName:    "Janet",
		LastName:     "Weaver",
		Email:        "janet.weaver@reqres.in",
	}
	out := renderViewComponent(t, EditUserModal(form, "csrf-token-123"))

	assertContains(t, out, "Edit Profile")
	assertContains(t, out, `action="/users/2"`)
	assertContains(t, out, `name="first_name" value="Janet"`)
	assertContains(t, out, `type="email" id="email" name="email" value="janet.weaver@reqres.in" required`)
	assertContains(t, out, `hx-trigger="`+html.EscapeString(modalDismissTrigger)+`"`)
	assertContains(t, out, "Save Changes")
	assertNotContains(t, out, `role="alert"`)

	form.Submitting = true
	form.Alert = &viewmodels.UsersAlert{Title: "Missing fields", Message: "Please fill in all fields", Destructive: true}
	out = renderViewComponent(t, EditUserModal(form, "csrf-token-123"))

	assertContains(t, out, `class="btn btn-primary" disabled>Saving...`)
	assertContains(t, out, `data-destructive="true"`)
	assertContains(t, out, "Please fill in all fields")
}

func TestLoginPage(t *testing.T) {
	t.Parallel()

	out := renderViewComponent(t, LoginPage(viewmodels.LoginViewData{
		Layout:       viewmodels.LayoutData{Title: "Sign in", CSRFToken: "csrf-token-123"},
		Email:        "eve.holt@reqres.in",
		Next:         "/users?q=jan",
		ErrorMessage: "user not found",
		ShowDemo:     true,
	}))

	assertContains(t, out, "Welcome")
	assertContains(t, out, `role="alert">user not found</div>`)
	assertContains(t, out, `name="next" value="/users?q=jan"`)
	assertContains(t, out, `name="email" value="eve.holt@reqres.in"`)
	assertContains(t, out, "Test credentials:")
	assertContains(t, out, viewmodels.DemoPassword)
	assertNotContains(t, out, `action="/logout"`)
}

func assertContains(t *testing.T, content, want string) {
	t.Helper()
	if !strings.Contains(content, want) {
		t.Fatalf("expected rendered HTML to contain %q", want)
	}
}

func assertNotContains(t *testing.T, content, disallowed string) {
	t.Helper()
	if strings.Contains(content, disallowed) {
		t.Fatalf("expected rendered HTML to not contain %q", disallowed)
	}
}
