package login

import (
	"context"
	"log/slog"
	"sync"

	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/authz"
	"github.com/shrinex/warden/security"
	"github.com/shrinex/warden/semgt"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type (
	// Manager runs logins through a chain and keeps the resulting sessions
	Manager struct {
		chain       string
		entries     []Entry
		repository  semgt.Repository
		registry    semgt.Registry
		concurrency int
		logger      *slog.Logger

		admit sync.Mutex

		mu sync.Mutex
		// contexts maps session token to the chain run that created it
		contexts map[string]*Context
	}

	sessionCtxKey struct{}

	authorizer interface {
		IsAuthorized(context.Context, authz.Permission) bool
	}
)

// Login authenticates through the chain, asking handler for credentials.
// The returned ctx carries the session and the current principal.
func (m *Manager) Login(ctx context.Context, handler authc.CallbackHandler) (context.Context, error) {
	subject := semgt.NewSubject()
	lc, err := NewContext(m.chain, m.entries, subject, handler, WithContextLogger(m.logger))
	if err != nil {
		return ctx, err
	}

	ctx, _ = security.WithHolder(ctx)
	restore := snapshotHolder(ctx)
	if err := lc.Login(ctx); err != nil {
		return ctx, err
	}

	rollback := func(err error) (context.Context, error) {
		if logoutErr := lc.Logout(ctx); logoutErr != nil {
			m.logger.WarnContext(ctx, "rollback logout failed", "chain", m.chain, "error", logoutErr)
		}
		restore()
		return ctx, err
	}

	principals := subject.Principals()
	if len(principals) == 0 {
		return rollback(ErrNoPrincipal)
	}
	name := principals[0].Name()

	// kick-out, create and register must not interleave, or concurrent
	// logins of one principal could exceed the limit
	m.admit.Lock()
	defer m.admit.Unlock()

	if err := m.kickOutOldestIfNeeded(ctx, name); err != nil {
		return rollback(err)
	}

	session, err := m.repository.Create(ctx, subject)
	if err != nil {
		return rollback(errors.Wrap(err, "create session"))
	}

	if err := m.registry.Register(ctx, name, session); err != nil {
		_ = m.repository.Remove(ctx, session.Token())
		return rollback(errors.Wrap(err, "register session"))
	}

	m.mu.Lock()
	m.contexts[session.Token()] = lc
	m.mu.Unlock()

	m.logger.DebugContext(ctx, "session started", "principal", name)
	return context.WithValue(ctx, sessionCtxKey{}, session), nil
}

// Logout ends the session in ctx and unbinds its principals
func (m *Manager) Logout(ctx context.Context) (context.Context, error) {
	session, err := m.Session(ctx)
	if err != nil {
		return ctx, err
	}

	if err := m.endSession(ctx, session); err != nil {
		return ctx, err
	}

	if h := security.HolderFromContext(ctx); h != nil {
		h.Clear()
	}
	return context.WithValue(ctx, sessionCtxKey{}, nil), nil
}

func (m *Manager) Session(ctx context.Context) (*semgt.Session, error) {
	session, ok := ctx.Value(sessionCtxKey{}).(*semgt.Session)
	if !ok || session == nil || session.Stopped() {
		return nil, ErrUnauthenticated
	}

	return session, nil
}

func (m *Manager) Subject(ctx context.Context) (*semgt.Subject, error) {
	session, err := m.Session(ctx)
	if err != nil {
		return nil, err
	}

	return session.Subject(), nil
}

func (m *Manager) Authenticated(ctx context.Context) bool {
	session, err := m.Session(ctx)
	if err != nil {
		return false
	}

	expired, err := session.Expired(ctx)
	return err == nil && !expired
}

// IsAuthorized is true if any principal of the session holds permission
func (m *Manager) IsAuthorized(ctx context.Context, permission authz.Permission) bool {
	subject, err := m.Subject(ctx)
	if err != nil {
		return false
	}

	for _, p := range subject.Principals() {
		if az, ok := p.(authorizer); ok && az.IsAuthorized(ctx, permission) {
			return true
		}
	}

	return false
}

//=====================================
//		    Private
//=====================================

func (m *Manager) kickOutOldestIfNeeded(ctx context.Context, name string) error {
	if m.concurrency <= 0 {
		return nil
	}

	sessions, err := m.registry.ActiveSessions(ctx, name)
	if err != nil {
		return err
	}

	numSessions := len(sessions)
	if numSessions < m.concurrency {
		return nil
	}

	expires := sessions[:numSessions-m.concurrency+1]
	for _, ss := range expires {
		if err := m.endSession(ctx, ss); err != nil {
			return err
		}
		m.logger.InfoContext(ctx, "session kicked out", "principal", name)
	}

	return nil
}

func (m *Manager) endSession(ctx context.Context, session *semgt.Session) error {
	m.mu.Lock()
	lc := m.contexts[session.Token()]
	delete(m.contexts, session.Token())
	m.mu.Unlock()

	var name string
	if principals := session.Subject().Principals(); len(principals) != 0 {
		name = principals[0].Name()
	}

	if lc != nil {
		if err := lc.Logout(ctx); err != nil {
			return err
		}
	}

	if err := m.registry.Deregister(ctx, name, session); err != nil {
		return err
	}

	if err := m.repository.Remove(ctx, session.Token()); err != nil {
		return err
	}

	return session.Stop(ctx)
}
