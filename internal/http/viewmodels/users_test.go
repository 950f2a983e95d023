package viewmodels

import "testing"

func TestEmailOrganization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		want  string
	}{
		{email: "eve.holt@reqres.in", want: "reqres.in"},
		{email: "someone@mail.example.co.uk", want: "example.co.uk"},
		{email: "UPPER@Sub.Example.COM", want: "example.com"},
		{email: "no-at-sign", want: ""},
		{email: "trailing@", want: ""},
		{email: "bare@com", want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.email, func(t *testing.T) {
			t.Parallel()
			if got := EmailOrganization(tc.email); got != tc.want {
				t.Fatalf("EmailOrganization(%q) = %q, want %q", tc.email, got, tc.want)
			}
		})
	}
}
