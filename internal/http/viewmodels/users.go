package viewmodels

import (
	"strings"

	"golang.org/x/net/publicsuffix"
)

type UsersAlert struct {
	Title       string
	Message     string
	Destructive bool
}

type UserItem struct {
	ID           int
	FullName     string
	Email        string
	AvatarURL    string
	Organization string
	Deleting     bool
}

type UserEditForm struct {
	UserID       int
	FullName     string
	CurrentEmail string
	AvatarURL    string
	FirstName    string
	LastName     string
	Email        string
	Submitting   bool
	Alert        *UsersAlert
}

type UsersViewData struct {
	Layout      LayoutData
	Query       string
	Users       []UserItem
	Page        int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
	Loading     bool
	Edit        *UserEditForm
	// Toast is rendered inside the results fragment for htmx swaps.
	Toast *ToastViewData
}

// EmailOrganization returns the registrable domain of an email address,
// e.g. "reqres.in" for "eve.holt@reqres.in".
func EmailOrganization(email string) string {
	at := strings.LastIndexByte(email, '@')
	if at < 0 || at == len(email)-1 {
		return ""
	}
	domain := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(email[at+1:]), "."))
	org, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil {
		return ""
	}
	return org
}
