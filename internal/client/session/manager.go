package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/credstore"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Manager holds the session state and performs the session operations.
//
// Invariant: status is StatusAuthenticated exactly when the credential slot
// holds m.credential and m.identity is set; StatusAnonymous implies an empty
// slot. Both halves change together under mu.
type Manager struct {
	client client.Client
	store  credstore.Store
	nav    Navigator
	logger logging.Logger

	flights singleflight.Group

	mu         sync.Mutex
	status     models.Status
	identity   *models.Identity
	credential string
	gen        uint64
	inflight   int
	lastError  string
}

var _ client.UnauthorizedHandler = (*Manager)(nil)

// NewManager returns a manager in StatusUnknown. Call RestoreSession once the
// manager is registered as the transport's unauthorized handler.
func NewManager(c client.Client, store credstore.Store, nav Navigator, logger logging.Logger) *Manager {
	if nav == nil {
		nav = nopNavigator{}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		client: c,
		store:  store,
		nav:    nav,
		logger: logger.With("component", "session"),
		status: models.StatusUnknown,
	}
}

// State returns a snapshot; the Identity in it is a private copy. Loading is
// also reported until the stored session has been resolved.
func (m *Manager) State() models.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.State{
		Status:    m.status,
		Identity:  m.identity.Clone(),
		Loading:   m.inflight > 0 || m.status == models.StatusUnknown,
		LastError: m.lastError,
	}
}

func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == models.StatusAuthenticated
}

// Identity returns a copy of the current identity, or nil when anonymous.
func (m *Manager) Identity() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity.Clone()
}

// RestoreSession resolves StatusUnknown using the stored credential. Without
// one the session becomes anonymous and nothing is sent. With one, the
// identity is fetched; on any failure the credential is cleared and the error
// returned. Once the status is known further calls do nothing, and
// concurrent callers share a single check. If a login, logout or teardown
// settles the session first, the check's result is dropped and
// ErrSessionChanged returned.
func (m *Manager) RestoreSession(ctx context.Context) error {
	return m.shared(ctx, "restore", m.restore)
}

// shared runs fn once for all concurrent callers of key. The work is detached
// from the caller's cancellation so one caller giving up does not fail the
// others; each caller still returns as soon as its own ctx is done.
func (m *Manager) shared(ctx context.Context, key string, fn func(context.Context) error) error {
	ch := m.flights.DoChan(key, func() (any, error) {
		return nil, fn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) restore(ctx context.Context) error {
	m.mu.Lock()
	if m.status != models.StatusUnknown {
		m.mu.Unlock()
		return nil
	}
	g := m.beginLocked()
	m.mu.Unlock()
	defer m.end()

	token, err := m.store.Token(ctx)
	if err != nil {
		m.mu.Lock()
		if m.gen != g {
			m.mu.Unlock()
			return ErrSessionChanged
		}
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.logger.Error(ctx, "failed to clear credential after read failure", "error", cerr)
		}
		m.setAnonymousLocked()
		m.mu.Unlock()
		m.logger.Warn(ctx, "stored credential unreadable, session is anonymous", "error", err)
		return m.fail(err, msgRestoreFailed)
	}

	if token == "" {
		m.mu.Lock()
		if m.gen == g {
			m.setAnonymousLocked()
		}
		m.mu.Unlock()
		m.logger.Info(ctx, "no stored credential, session is anonymous")
		return nil
	}

	id, err := m.client.GetProfile(client.WithCredential(ctx, token))

	m.mu.Lock()
	if m.gen != g {
		m.mu.Unlock()
		m.logger.Debug(ctx, "restore superseded by another session change", "error", err)
		return ErrSessionChanged
	}
	if err != nil {
		if _, cerr := m.store.ClearIf(ctx, token); cerr != nil {
			m.logger.Error(ctx, "failed to clear stored credential", "error", cerr)
		}
		m.setAnonymousLocked()
		m.mu.Unlock()
		m.logger.Warn(ctx, "stored credential rejected, session is anonymous", "error", err)
		return m.fail(err, msgRestoreFailed)
	}
	m.setAuthenticatedLocked(token, id)
	m.mu.Unlock()

	m.logger.Info(ctx, "session restored", "user_id", id.ID)
	return nil
}

// Login exchanges the credentials for a token, fetches the identity with it
// and only then stores both, switching to StatusAuthenticated and navigating
// to the dashboard.
//
// An exchange failure leaves the session and the stored credential as they
// were. If the token was issued but the identity could not be fetched, the
// token is dropped and the session reverts to anonymous. If another session
// change committed first, ErrSessionChanged is returned and nothing is stored.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	g := m.begin()
	defer m.end()

	token, err := m.client.Login(ctx, email, password)
	if err != nil {
		return m.fail(err, msgLoginFailed)
	}

	id, err := m.client.GetProfile(client.WithCredential(ctx, token))
	if err != nil {
		m.mu.Lock()
		if m.gen == g {
			if cerr := m.store.Clear(ctx); cerr != nil {
				m.logger.Error(ctx, "failed to clear credential", "error", cerr)
			}
			m.setAnonymousLocked()
		}
		m.mu.Unlock()
		m.logger.Warn(ctx, "login issued a token but identity fetch failed", "error", err)
		return m.fail(err, msgLoginFailed)
	}

	m.mu.Lock()
	if m.gen != g {
		m.mu.Unlock()
		m.logger.Info(ctx, "login result discarded, session changed meanwhile")
		return ErrSessionChanged
	}
	if err := m.store.Save(ctx, token); err != nil {
		m.mu.Unlock()
		return m.fail(err, msgLoginFailed)
	}
	m.setAuthenticatedLocked(token, id)
	m.mu.Unlock()

	m.logger.Info(ctx, "logged in", "user_id", id.ID)
	m.nav.Navigate(ctx, RouteDashboard)
	return nil
}

// Register creates an account. No credential is issued; the user has to
// verify the e-mail and log in.
func (m *Manager) Register(ctx context.Context, req models.RegisterRequest) error {
	m.begin()
	defer m.end()

	if err := m.client.Register(ctx, req); err != nil {
		return m.fail(err, msgRegisterFailed)
	}

	m.logger.Info(ctx, "registered", "username", req.Username)
	m.nav.Navigate(ctx, RouteRegistrationSuccess)
	return nil
}

// Logout clears the credential and the identity and navigates to the login
// view. It cannot fail: a storage error is logged and the in-memory session
// is dropped regardless. Calling it repeatedly is harmless.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error(ctx, "failed to clear credential on logout", "error", err)
	}
	m.setAnonymousLocked()
	m.lastError = ""
	m.mu.Unlock()

	m.logger.Info(ctx, "logged out")
	m.nav.Navigate(ctx, RouteLogin)
}

// UpdateProfile sends upd and replaces the identity with the server's answer.
func (m *Manager) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	g, ok := m.beginAuthenticated()
	if !ok {
		return ErrNotAuthenticated
	}
	defer m.end()

	id, err := m.client.UpdateProfile(ctx, upd)
	if err != nil {
		return m.fail(err, msgUpdateFailed)
	}
	return m.replaceIdentity(ctx, g, id)
}

// UploadProfilePicture uploads the image and then refreshes the identity so it
// carries the new picture reference, which is also returned.
func (m *Manager) UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (string, error) {
	g, ok := m.beginAuthenticated()
	if !ok {
		return "", ErrNotAuthenticated
	}
	defer m.end()

	ref, err := m.client.UploadProfilePicture(ctx, filename, r)
	if err != nil {
		return "", m.fail(err, msgUploadFailed)
	}

	id, err := m.client.GetProfile(ctx)
	if err != nil {
		return ref, m.fail(err, msgRefreshFailed)
	}
	return ref, m.replaceIdentity(ctx, g, id)
}

// RefreshIdentity refetches the identity of the current session. Concurrent
// calls share one request.
func (m *Manager) RefreshIdentity(ctx context.Context) error {
	return m.shared(ctx, "refresh", func(ctx context.Context) error {
		g, ok := m.beginAuthenticated()
		if !ok {
			return ErrNotAuthenticated
		}
		defer m.end()

		id, err := m.client.GetProfile(ctx)
		if err != nil {
			return m.fail(err, msgRefreshFailed)
		}
		return m.replaceIdentity(ctx, g, id)
	})
}

func (m *Manager) VerifyEmail(ctx context.Context, token string) error {
	m.begin()
	defer m.end()

	if err := m.client.VerifyEmail(ctx, token); err != nil {
		return m.fail(err, msgVerifyFailed)
	}
	return nil
}

func (m *Manager) RequestPasswordReset(ctx context.Context, email string) error {
	m.begin()
	defer m.end()

	if err := m.client.RequestPasswordReset(ctx, email); err != nil {
		return m.fail(err, msgResetRequestFailed)
	}
	return nil
}

func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) error {
	m.begin()
	defer m.end()

	if err := m.client.ResetPassword(ctx, token, newPassword); err != nil {
		return m.fail(err, msgResetPasswordFailed)
	}
	return nil
}

// HandleUnauthorized is the transport's teardown hook. It clears the slot if
// it still holds token and, when token belongs to the current session, drops
// to anonymous and navigates to the login view. A rejection of a token that
// is no longer current (a late answer for a replaced session, or a token that
// was never committed) is ignored.
func (m *Manager) HandleUnauthorized(ctx context.Context, token string) {
	m.mu.Lock()
	removed, err := m.store.ClearIf(ctx, token)
	if err != nil {
		m.logger.Error(ctx, "failed to clear rejected credential", "error", err)
	}
	if !removed && (token == "" || token != m.credential) {
		m.mu.Unlock()
		m.logger.Debug(ctx, "ignoring rejection of a stale credential")
		return
	}
	m.setAnonymousLocked()
	m.mu.Unlock()

	m.logger.Warn(ctx, "session torn down after unauthorized response")
	m.nav.Navigate(ctx, RouteLogin)
}

// begin registers an in-flight operation, clears LastError and returns the
// generation the operation must still see when it commits.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.beginLocked()
}

func (m *Manager) beginLocked() uint64 {
	m.inflight++
	m.lastError = ""
	return m.gen
}

// beginAuthenticated is begin for operations that need a session. When there
// is none it records the reason and reports false without starting anything.
func (m *Manager) beginAuthenticated() (uint64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != models.StatusAuthenticated {
		m.lastError = msgNotAuthenticated
		return 0, false
	}
	return m.beginLocked(), true
}

func (m *Manager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inflight--
}

// fail records the human-readable reason of err and returns err unchanged.
func (m *Manager) fail(err error, fallback string) error {
	if errors.Is(err, ErrSessionChanged) {
		return err
	}
	m.mu.Lock()
	m.lastError = client.ErrorDetail(err, fallback)
	m.mu.Unlock()
	return err
}

// replaceIdentity installs id if the session that requested it is still the
// current one.
func (m *Manager) replaceIdentity(ctx context.Context, g uint64, id *models.Identity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != g || m.status != models.StatusAuthenticated {
		m.logger.Info(ctx, "identity update discarded, session changed meanwhile")
		return ErrSessionChanged
	}
	m.identity = id.Clone()
	return nil
}

func (m *Manager) setAuthenticatedLocked(token string, id *models.Identity) {
	m.status = models.StatusAuthenticated
	m.identity = id.Clone()
	m.credential = token
	m.gen++
}

func (m *Manager) setAnonymousLocked() {
	m.status = models.StatusAnonymous
	m.identity = nil
	m.credential = ""
	m.gen++
}
