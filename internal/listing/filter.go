package listing

import (
	"strings"

	"github.com/open-sspm/userdesk/internal/directory"
	"golang.org/x/text/cases"
)

// Filter returns the users whose first name, last name or email contains
// query, compared case-insensitively, in their original order. An empty
// query keeps every user. The result never aliases the input slice.
func Filter(users []directory.User, query string) []directory.User {
	out := make([]directory.User, 0, len(users))
	if query == "" {
		return append(out, users...)
	}
	folder := cases.Fold()
	needle := folder.String(query)
	for _, u := range users {
		if matches(folder, u, needle) {
			out = append(out, u)
		}
	}
	return out
}

func matches(folder cases.Caser, u directory.User, needle string) bool {
	for _, field := range []string{u.FirstName, u.LastName, u.Email} {
		if strings.Contains(folder.String(field), needle) {
			return true
		}
	}
	return false
}
