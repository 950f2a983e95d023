package directory

import "strings"

// User is one directory entry as returned by the remote service.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
}

// FullName joins first and last name, skipping blanks.
func (u User) FullName() string {
	return strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
}

// Draft returns the editable fields of u.
func (u User) Draft() Draft {
	return Draft{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
	}
}

// Apply merges the submitted draft into u. ID and Avatar are never touched.
func (u User) Apply(d Draft) User {
	u.FirstName = d.FirstName
	u.LastName = d.LastName
	u.Email = d.Email
	return u
}

// Draft holds the editable subset of a user. It is sent verbatim as the update body.
type Draft struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Normalize trims surrounding whitespace from every field.
func (d Draft) Normalize() Draft {
	return Draft{
		FirstName: strings.TrimSpace(d.FirstName),
		LastName:  strings.TrimSpace(d.LastName),
		Email:     strings.TrimSpace(d.Email),
	}
}

// Missing lists the form names of blank fields, in form order.
func (d Draft) Missing() []string {
	var missing []string
	if strings.TrimSpace(d.FirstName) == "" {
		missing = append(missing, "first_name")
	}
	if strings.TrimSpace(d.LastName) == "" {
		missing = append(missing, "last_name")
	}
	if strings.TrimSpace(d.Email) == "" {
		missing = append(missing, "email")
	}
	return missing
}

// Page is one page of the user listing.
type Page struct {
	Number     int
	PerPage    int
	Total      int
	TotalPages int
	Users      []User
}
