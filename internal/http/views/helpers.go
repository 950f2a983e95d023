package views

//go:generate templ generate

import (
	"encoding/json"
	"strconv"
)

const (
	UsersResultsID = "users-results"

	resultsTarget = "#" + UsersResultsID
	searchTrigger = "input changed delay:300ms from:input[name='q'], search, submit"

	modalDismissTrigger = "click target:.modal-backdrop, keyup[key=='Escape'] from:body"
)

func FormatInt(v int) string {
	return strconv.Itoa(v)
}

// CSRFHeaders is the hx-headers value that makes htmx send the CSRF token.
func CSRFHeaders(token string) string {
	b, err := json.Marshal(map[string]string{"X-CSRF-Token": token})
	if err != nil {
		return "{}"
	}
	return string(b)
}

func UserEditURL(id int) string {
	return "/users/" + strconv.Itoa(id) + "/edit"
}

func UserUpdateURL(id int) string {
	return "/users/" + strconv.Itoa(id)
}

func UserDeleteURL(id int) string {
	return "/users/" + strconv.Itoa(id) + "/delete"
}

func UserCardID(id int) string {
	return "user-" + strconv.Itoa(id)
}

func boolAttr(v bool) string {
	return strconv.FormatBool(v)
}

func ToastRole(category string) string {
	if category == "error" || category == "warning" {
		return "alert"
	}
	return "status"
}
