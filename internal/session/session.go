// Package session stores the directory token and listing workspace id for a
// browser session, backed by scs.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/open-sspm/userdesk/internal/config"
)

const (
	CookieName = "userdesk_session"

	KeyToken     = "auth_token"
	KeyWorkspace = "workspace_id"
	KeyEmail     = "auth_email"
)

// Manager wraps an scs session manager with typed accessors.
type Manager struct {
	*scs.SessionManager
}

// Options configures a Manager.
type Options struct {
	Lifetime     time.Duration
	CookieSecure bool
	Store        scs.Store
}

func New(opts Options) *Manager {
	sm := scs.New()
	if opts.Lifetime > 0 {
		sm.Lifetime = opts.Lifetime
	}
	sm.Cookie.Name = CookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = opts.CookieSecure
	sm.Cookie.Path = "/"
	if opts.Store != nil {
		sm.Store = opts.Store
	}
	return &Manager{SessionManager: sm}
}

// NewStore selects the session store named by cfg. The returned close func
// releases any pool or cleanup goroutine the store owns.
func NewStore(ctx context.Context, cfg config.Config) (scs.Store, func(), error) {
	switch cfg.SessionStore {
	case "", config.SessionStoreMemory:
		store := memstore.New()
		return store, store.StopCleanup, nil
	case config.SessionStorePostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres session store")
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect session database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping session database: %w", err)
		}
		store := pgxstore.New(pool)
		return store, func() {
			store.StopCleanup()
			pool.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}
}

// Token returns the directory token of the signed-in session.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token := strings.TrimSpace(m.GetString(ctx, KeyToken))
	return token, token != ""
}

// Email returns the address the session signed in with.
func (m *Manager) Email(ctx context.Context) string {
	return m.GetString(ctx, KeyEmail)
}

// SignIn stores token under a fresh session id.
func (m *Manager) SignIn(ctx context.Context, token, email string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("session token is required")
	}
	if err := m.RenewToken(ctx); err != nil {
		return err
	}
	m.Put(ctx, KeyToken, token)
	m.Put(ctx, KeyEmail, strings.TrimSpace(email))
	return nil
}

// SignOut clears the token and destroys the session. It returns the
// workspace id the session held so callers can release it.
func (m *Manager) SignOut(ctx context.Context) (string, error) {
	workspace := m.GetString(ctx, KeyWorkspace)
	m.Remove(ctx, KeyToken)
	return workspace, m.Destroy(ctx)
}

// WorkspaceID returns the listing workspace id of the session, assigning one
// on first use.
func (m *Manager) WorkspaceID(ctx context.Context) string {
	if id := m.GetString(ctx, KeyWorkspace); id != "" {
		return id
	}
	id := uuid.NewString()
	m.Put(ctx, KeyWorkspace, id)
	return id
}
