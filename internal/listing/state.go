// Package listing holds the per-session user listing workspace: an explicit
// state machine over the loaded page, search text, edit modal and in-flight
// deletes, and the orchestrator that drives it against the directory API.
package listing

import (
	"errors"
	"slices"

	"github.com/open-sspm/userdesk/internal/directory"
)

var (
	// ErrUserNotFound is returned when an operation names a user that is not on the loaded page.
	ErrUserNotFound = errors.New("user is not on the loaded page")
	// ErrNoEditTarget is returned when an update is submitted while the modal is closed.
	ErrNoEditTarget = errors.New("no user is being edited")
	// ErrUpdateInFlight is returned when an update is submitted while another is pending.
	ErrUpdateInFlight = errors.New("an update for this user is already in progress")
	// ErrDeleteInProgress is returned when a delete is requested for a row that is already being deleted.
	ErrDeleteInProgress = errors.New("a delete for this user is already in progress")
)

// Modal is the edit dialog variant: Closed, or Open with a target and a draft.
// The draft is built once on the Closed to Open transition.
type Modal struct {
	open       bool
	target     directory.User
	draft      directory.Draft
	submitting bool
}

func (m Modal) IsOpen() bool { return m.open }

func (m Modal) Target() directory.User { return m.target }

func (m Modal) Draft() directory.Draft { return m.draft }

// Submitting is true while an update for the target is in flight.
func (m Modal) Submitting() bool { return m.submitting }

func (m Modal) targets(id int) bool { return m.open && m.target.ID == id }

func openModal(target directory.User) Modal {
	return Modal{open: true, target: target, draft: target.Draft()}
}

func (m Modal) withDraft(d directory.Draft) Modal {
	m.draft = d
	return m
}

// State is an immutable snapshot of one listing workspace. Transitions return
// a new State and never modify slices or maps reachable from the receiver.
type State struct {
	// Loading is true until the first page request settles.
	Loading bool
	// Refreshing is true while the most recently requested page has not settled.
	Refreshing bool
	// Loaded is true once any page has been applied.
	Loaded     bool
	Page       int
	TotalPages int
	Users      []directory.User
	Search     string
	Modal      Modal

	deleting map[int]struct{}
	fetchSeq uint64
}

// New returns the state of a workspace that has not fetched anything yet.
func New() State {
	return State{
		Loading:    true,
		Page:       1,
		TotalPages: 1,
		Users:      []directory.User{},
	}
}

// FetchRequested records a request for page n and returns the sequence number
// that its response must carry to be applied.
func (s State) FetchRequested(n int) (State, uint64) {
	if n < 1 {
		n = 1
	}
	s.Page = n
	s.Refreshing = true
	s.fetchSeq++
	return s, s.fetchSeq
}

// FetchSucceeded applies a page response. Responses for anything but the
// latest request are discarded and reported with applied=false.
func (s State) FetchSucceeded(seq uint64, page directory.Page) (next State, applied bool) {
	if seq != s.fetchSeq {
		return s, false
	}
	s.Users = slices.Clone(page.Users)
	if s.Users == nil {
		s.Users = []directory.User{}
	}
	s.TotalPages = max(page.TotalPages, 1)
	s.Loading = false
	s.Refreshing = false
	s.Loaded = true
	return s, true
}

// FetchFailed settles the latest request without touching the loaded users.
func (s State) FetchFailed(seq uint64) (next State, applied bool) {
	if seq != s.fetchSeq {
		return s, false
	}
	s.Loading = false
	s.Refreshing = false
	return s, true
}

// SearchChanged replaces the search text. It never triggers a fetch.
func (s State) SearchChanged(text string) State {
	s.Search = text
	return s
}

// ClampPage bounds n to [1, TotalPages].
func (s State) ClampPage(n int) int {
	total := max(s.TotalPages, 1)
	return min(max(n, 1), total)
}

// PageChangeRequested resolves a relative page move. ok is false when the
// clamped page is the current one, in which case nothing should be fetched.
func (s State) PageChangeRequested(delta int) (target int, ok bool) {
	// Saturate before adding so an extreme delta cannot wrap around.
	total := max(s.TotalPages, 1)
	switch {
	case delta >= total-s.Page:
		target = total
	case delta <= 1-s.Page:
		target = 1
	default:
		target = s.Page + delta
	}
	return s.PageRequested(target)
}

// PageRequested resolves an absolute page move. ok is false when the
// clamped page is the current one.
func (s State) PageRequested(n int) (target int, ok bool) {
	target = s.ClampPage(n)
	return target, target != s.Page
}

// HasPrevious reports whether a previous page exists.
func (s State) HasPrevious() bool { return s.Page > 1 }

// HasNext reports whether a next page exists.
func (s State) HasNext() bool { return s.Page < s.TotalPages }

// Filtered is the loaded page narrowed by the current search text.
func (s State) Filtered() []directory.User {
	return Filter(s.Users, s.Search)
}

// User looks up a loaded user by id.
func (s State) User(id int) (directory.User, bool) {
	idx := slices.IndexFunc(s.Users, func(u directory.User) bool { return u.ID == id })
	if idx < 0 {
		return directory.User{}, false
	}
	return s.Users[idx], true
}

// EditRequested opens the modal for user id with a fresh draft.
func (s State) EditRequested(id int) (State, error) {
	if s.Modal.open && s.Modal.submitting {
		return s, ErrUpdateInFlight
	}
	u, ok := s.User(id)
	if !ok {
		return s, ErrUserNotFound
	}
	s.Modal = openModal(u)
	return s, nil
}

// EditCancelled closes the modal and discards the draft.
func (s State) EditCancelled() State {
	s.Modal = Modal{}
	return s
}

// DraftEdited replaces the draft of the open modal without submitting it.
func (s State) DraftEdited(draft directory.Draft) (State, error) {
	if !s.Modal.open {
		return s, ErrNoEditTarget
	}
	if s.Modal.submitting {
		return s, ErrUpdateInFlight
	}
	s.Modal = s.Modal.withDraft(draft)
	return s, nil
}

// UpdateRequested marks the open modal as submitting the given draft and
// returns the user being edited.
func (s State) UpdateRequested(draft directory.Draft) (State, directory.User, error) {
	if !s.Modal.open {
		return s, directory.User{}, ErrNoEditTarget
	}
	if s.Modal.submitting {
		return s, directory.User{}, ErrUpdateInFlight
	}
	s.Modal = s.Modal.withDraft(draft)
	s.Modal.submitting = true
	return s, s.Modal.target, nil
}

// UpdateSucceeded merges the submitted draft into the cached copy of user id
// and closes the modal if it is still waiting on this update.
func (s State) UpdateSucceeded(id int, draft directory.Draft) State {
	if idx := slices.IndexFunc(s.Users, func(u directory.User) bool { return u.ID == id }); idx >= 0 {
		users := slices.Clone(s.Users)
		users[idx] = users[idx].Apply(draft)
		s.Users = users
	}
	if s.Modal.targets(id) && s.Modal.submitting {
		s.Modal = Modal{}
	}
	return s
}

// UpdateFailed re-enables the modal for user id, keeping the target and draft.
func (s State) UpdateFailed(id int) State {
	if s.Modal.targets(id) {
		s.Modal.submitting = false
	}
	return s
}

// Deleting reports whether a delete for user id is in flight.
func (s State) Deleting(id int) bool {
	_, ok := s.deleting[id]
	return ok
}

// DeletingCount is the number of rows with a delete in flight.
func (s State) DeletingCount() int { return len(s.deleting) }

// DeleteRequested marks user id as being deleted.
func (s State) DeleteRequested(id int) (State, error) {
	if s.Deleting(id) {
		return s, ErrDeleteInProgress
	}
	if _, ok := s.User(id); !ok {
		return s, ErrUserNotFound
	}
	s.deleting = withMarker(s.deleting, id, true)
	return s, nil
}

// DeleteSucceeded removes user id from the loaded page and clears its marker.
func (s State) DeleteSucceeded(id int) State {
	s.Users = slices.DeleteFunc(slices.Clone(s.Users), func(u directory.User) bool { return u.ID == id })
	s.deleting = withMarker(s.deleting, id, false)
	return s
}

// DeleteFailed clears the marker for user id and leaves the row in place.
func (s State) DeleteFailed(id int) State {
	s.deleting = withMarker(s.deleting, id, false)
	return s
}

func withMarker(markers map[int]struct{}, id int, set bool) map[int]struct{} {
	out := make(map[int]struct{}, len(markers)+1)
	for k := range markers {
		out[k] = struct{}{}
	}
	if set {
		out[id] = struct{}{}
	} else {
		delete(out, id)
	}
	return out
}
