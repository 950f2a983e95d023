package directory

import (
	"reflect"
	"testing"
)

func TestUserApplyKeepsIdentityAndAvatar(t *testing.T) {
	t.Parallel()

	u := User{ID: 2, Email: "janet.weaver@reqres.in", FirstName: "Janet", LastName: "Weaver", Avatar: "https://reqres.in/img/faces/2-image.jpg"}
	got := u.Apply(Draft{FirstName: "Jan", LastName: "Weaver-Smith", Email: "jan@example.test"})

	want := User{ID: 2, Email: "jan@example.test", FirstName: "Jan", LastName: "Weaver-Smith", Avatar: u.Avatar}
	if got != want {
		t.Fatalf("Apply() = %#v, want %#v", got, want)
	}
	if u.FirstName != "Janet" {
		t.Fatal("Apply must not mutate the receiver")
	}
}

func TestUserDraftRoundTrip(t *testing.T) {
	t.Parallel()

	u := User{ID: 4, Email: "eve.holt@reqres.in", FirstName: "Eve", LastName: "Holt"}
	if got := u.Apply(u.Draft()); got != u {
		t.Fatalf("Apply(Draft()) = %#v, want %#v", got, u)
	}
}

func TestDraftMissingAndNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		draft Draft
		want  []string
	}{
		{name: "complete", draft: Draft{FirstName: "a", LastName: "b", Email: "c"}, want: nil},
		{name: "all blank", draft: Draft{FirstName: " ", LastName: "", Email: "\t"}, want: []string{"first_name", "last_name", "email"}},
		{name: "email only", draft: Draft{FirstName: "a", LastName: "b"}, want: []string{"email"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.draft.Missing(); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Missing() = %v, want %v", got, tc.want)
			}
		})
	}

	got := Draft{FirstName: " Emma ", LastName: "Wong\n", Email: " emma@example.test"}.Normalize()
	if got != (Draft{FirstName: "Emma", LastName: "Wong", Email: "emma@example.test"}) {
		t.Fatalf("Normalize() = %#v", got)
	}
}

func TestUserFullName(t *testing.T) {
	t.Parallel()

	if got := (User{FirstName: "George", LastName: "Bluth"}).FullName(); got != "George Bluth" {
		t.Fatalf("FullName() = %q", got)
	}
	if got := (User{LastName: "Bluth"}).FullName(); got != "Bluth" {
		t.Fatalf("FullName() = %q", got)
	}
}
