package listing

import (
	"context"
	"log/slog"
	"sync"

	"github.com/open-sspm/userdesk/internal/directory"
	"github.com/open-sspm/userdesk/internal/logging"
	"github.com/open-sspm/userdesk/internal/metrics"
)

// Directory is the subset of the directory API the listing drives.
type Directory interface {
	ListUsers(ctx context.Context, page int) (directory.Page, error)
	UpdateUser(ctx context.Context, id int, draft directory.Draft) error
	DeleteUser(ctx context.Context, id int) error
}

// Orchestrator owns one workspace State and performs its network calls.
// Transitions are applied under a mutex; requests to the directory run
// outside of it so concurrent operations interleave.
type Orchestrator struct {
	dir    Directory
	logger *slog.Logger

	mu    sync.Mutex
	state State
}

func NewOrchestrator(dir Directory, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{dir: dir, logger: logger, state: New()}
}

// Snapshot returns the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) update(fn func(State) State) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = fn(o.state)
	return o.state
}

// Mount fetches the current page unless one has been applied or is pending.
// It reports whether a fetch was issued.
func (o *Orchestrator) Mount(ctx context.Context) (State, bool, error) {
	s := o.Snapshot()
	if s.Loaded || s.Refreshing {
		return s, false, nil
	}
	s, err := o.FetchPage(ctx, s.Page)
	return s, true, err
}

// FetchPage requests page n. A response that arrives after a newer request
// was issued is dropped and its error, if any, is not reported.
func (o *Orchestrator) FetchPage(ctx context.Context, n int) (State, error) {
	var seq uint64
	o.update(func(s State) State {
		s, seq = s.FetchRequested(n)
		return s
	})

	page, err := o.dir.ListUsers(ctx, n)

	o.mu.Lock()
	defer o.mu.Unlock()
	var applied bool
	if err != nil {
		o.state, applied = o.state.FetchFailed(seq)
	} else {
		o.state, applied = o.state.FetchSucceeded(seq, page)
	}
	if !applied {
		metrics.ListingStaleResponsesTotal.Inc()
		o.logger.Debug("discarded stale page response", "page", n, "seq", seq)
		return o.state, nil
	}
	if err != nil {
		o.logger.Warn("fetch users failed", append([]any{"page", n}, logging.ErrorAttrs(err)...)...)
		return o.state, err
	}
	return o.state, nil
}

// ChangePage moves delta pages from the current one, clamped to the known
// range. fetched is false when the clamped page equals the current page.
func (o *Orchestrator) ChangePage(ctx context.Context, delta int) (s State, fetched bool, err error) {
	s = o.Snapshot()
	target, ok := s.PageChangeRequested(delta)
	if !ok {
		return s, false, nil
	}
	s, err = o.FetchPage(ctx, target)
	return s, true, err
}

// GoToPage moves to page n, clamped to the known range.
func (o *Orchestrator) GoToPage(ctx context.Context, n int) (s State, fetched bool, err error) {
	s = o.Snapshot()
	target, ok := s.PageRequested(n)
	if !ok {
		return s, false, nil
	}
	s, err = o.FetchPage(ctx, target)
	return s, true, err
}

// Search replaces the search text.
func (o *Orchestrator) Search(text string) State {
	return o.update(func(s State) State { return s.SearchChanged(text) })
}

// Edit opens the modal for user id.
func (o *Orchestrator) Edit(id int) (State, error) {
	var err error
	s := o.update(func(s State) State {
		var next State
		next, err = s.EditRequested(id)
		return next
	})
	return s, err
}

// CancelEdit closes the modal without contacting the directory.
func (o *Orchestrator) CancelEdit() State {
	return o.update(State.EditCancelled)
}

// KeepDraft stores draft in the open modal, e.g. after it failed validation.
func (o *Orchestrator) KeepDraft(draft directory.Draft) (State, error) {
	var err error
	s := o.update(func(s State) State {
		var next State
		next, err = s.DraftEdited(draft)
		return next
	})
	return s, err
}

// SubmitUpdate sends draft for the user in the open modal. On success the
// draft is merged into the loaded page and the modal closes; on failure the
// modal stays open with the draft intact.
func (o *Orchestrator) SubmitUpdate(ctx context.Context, draft directory.Draft) (State, error) {
	draft = draft.Normalize()

	var (
		target directory.User
		err    error
	)
	s := o.update(func(s State) State {
		var next State
		next, target, err = s.UpdateRequested(draft)
		return next
	})
	if err != nil {
		return s, err
	}

	err = o.dir.UpdateUser(ctx, target.ID, draft)
	metrics.ListingMutationsTotal.WithLabelValues(directory.OpUpdate, metrics.Outcome(err)).Inc()
	if err != nil {
		o.logger.Warn("update user failed", append([]any{"user_id", target.ID}, logging.ErrorAttrs(err)...)...)
		return o.update(func(s State) State { return s.UpdateFailed(target.ID) }), err
	}
	return o.update(func(s State) State { return s.UpdateSucceeded(target.ID, draft) }), nil
}

// Delete removes user id. Only that row is marked while the request runs;
// other rows remain available for concurrent deletes.
func (o *Orchestrator) Delete(ctx context.Context, id int) (State, error) {
	var err error
	s := o.update(func(s State) State {
		var next State
		next, err = s.DeleteRequested(id)
		return next
	})
	if err != nil {
		return s, err
	}

	err = o.dir.DeleteUser(ctx, id)
	metrics.ListingMutationsTotal.WithLabelValues(directory.OpDelete, metrics.Outcome(err)).Inc()
	if err != nil {
		o.logger.Warn("delete user failed", append([]any{"user_id", id}, logging.ErrorAttrs(err)...)...)
		return o.update(func(s State) State { return s.DeleteFailed(id) }), err
	}
	return o.update(func(s State) State { return s.DeleteSucceeded(id) }), nil
}
