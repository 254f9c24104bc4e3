package login

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/observability"
	"github.com/shrinex/warden/secret"
	"github.com/shrinex/warden/security"
	"github.com/shrinex/warden/semgt"
)

// UsernamePasswordModule authenticates a username and password against a
// credential store and binds a security.IdentityPrincipal on commit.
// It is not safe for concurrent use; create one instance per attempt.
type UsernamePasswordModule struct {
	store   authc.Store
	storeID string
	binder  security.Binder
	logger  *slog.Logger
	name    string

	state       State
	initialized bool
	subject     *semgt.Subject
	handler     authc.CallbackHandler
	shared      SharedState
	options     Options

	username      string
	password      *secret.Buffer
	success       bool
	commitSuccess bool
	identity      authc.Identity
	principal     *security.IdentityPrincipal
}

var _ Module = (*UsernamePasswordModule)(nil)

func NewUsernamePasswordModule(store authc.Store, opts ...ModuleOption) *UsernamePasswordModule {
	if store == nil {
		panic("login: nil store")
	}

	m := &UsernamePasswordModule{store: store, state: StateInit}
	applyModuleOptions(m, opts...)
	return m
}

// Initialize wires the module. Options are accepted and ignored.
func (m *UsernamePasswordModule) Initialize(subject *semgt.Subject, handler authc.CallbackHandler, shared SharedState, options Options) {
	if len(m.username) != 0 || m.password != nil || m.initialized {
		m.logger.Warn("login module instance was not freshly created",
			"module", m.name, "state", m.state.String())
	}

	m.subject = subject
	m.handler = handler
	m.shared = shared
	m.options = options
	m.initialized = true

	if options.Len() != 0 {
		m.logger.Debug("ignoring module options", "module", m.name, "keys", options.Keys())
	}
}

func (m *UsernamePasswordModule) Login(ctx context.Context) (bool, error) {
	if !m.initialized || m.subject == nil || m.handler == nil {
		return false, errors.Wrap(ErrIllegalState, "login before initialize")
	}
	if err := m.transition(StateAttempting); err != nil {
		return false, err
	}

	nameCallback := authc.NewNameCallback("username")
	passwordCallback := authc.NewPasswordCallback("password", false)
	callbacks := []authc.Callback{nameCallback, passwordCallback}
	defer passwordCallback.ClearPassword()

	if err := m.handler.Handle(ctx, callbacks...); err != nil {
		m.capture(nameCallback, passwordCallback)
		return false, m.fail(ctx, callbackError(err), observability.OutcomeCallbackFailure)
	}

	m.capture(nameCallback, passwordCallback)
	claim := authc.NewUsernameClaim(m.username)

	identity, err := m.store.Authenticate(ctx, claim, callbacks, m.storeID)
	if err != nil {
		le := Classify(err)
		outcome := observability.OutcomeInvalidCredentials
		if le.Kind == ServerFault {
			outcome = observability.OutcomeStoreFailure
		}
		return false, m.fail(ctx, le, outcome)
	}
	if !usable(identity) {
		le := newError(ServerFault, ErrCredentialStore, errors.Errorf("store %s returned no identity", m.storeID))
		return false, m.fail(ctx, le, observability.OutcomeStoreFailure)
	}

	m.identity = identity
	m.success = true
	if err := m.transition(StateSucceeded); err != nil {
		return false, err
	}

	observability.LoginAttemptsTotal.WithLabelValues(m.name, observability.OutcomeSuccess).Inc()
	m.logger.DebugContext(ctx, "login succeeded", "module", m.name, "username", m.username)
	return true, nil
}

// Commit returns false without touching the subject unless Login succeeded
func (m *UsernamePasswordModule) Commit(ctx context.Context) (bool, error) {
	if !m.success {
		m.commitSuccess = false
		observability.LoginPhaseTotal.WithLabelValues("commit", observability.BoolResult(false)).Inc()
		return false, nil
	}
	if err := m.transition(StateCommitted); err != nil {
		return false, err
	}

	if m.principal == nil {
		m.principal = security.NewIdentityPrincipal(m.identity, security.WithPrincipalLogger(m.logger))
	}
	if !m.subject.Contains(m.principal) {
		m.subject.Add(m.principal)
	}

	if binder := m.currentBinder(ctx); binder != nil {
		binder.SetCurrentPrincipal(m.principal)
	}

	m.clearCredentials()
	m.commitSuccess = true

	observability.LoginPhaseTotal.WithLabelValues("commit", observability.BoolResult(true)).Inc()
	return true, nil
}

// Abort undoes a tentative success. When this module already committed
// but a peer did not, it logs out instead.
func (m *UsernamePasswordModule) Abort(ctx context.Context) (bool, error) {
	switch {
	case !m.success:
		m.clearCredentials()
		if CanTransition(m.state, StateAborted) {
			m.state = StateAborted
		}
		observability.LoginPhaseTotal.WithLabelValues("abort", observability.BoolResult(false)).Inc()
		return false, nil
	case !m.commitSuccess:
		if err := m.transition(StateAbortedAfterSuccess); err != nil {
			return false, err
		}
		m.success = false
		m.clearCredentials()
		m.identity = nil
		m.principal = nil
		observability.LoginPhaseTotal.WithLabelValues("abort", observability.BoolResult(true)).Inc()
		return true, nil
	default:
		m.logger.DebugContext(ctx, "rolling back committed login", "module", m.name)
		return m.Logout(ctx)
	}
}

// Logout is idempotent
func (m *UsernamePasswordModule) Logout(ctx context.Context) (bool, error) {
	if err := m.transition(StateLoggedOut); err != nil {
		return false, err
	}

	if m.subject != nil && m.principal != nil {
		m.subject.Remove(m.principal)
	}

	m.success = false
	m.commitSuccess = false
	m.clearCredentials()
	m.identity = nil
	m.principal = nil

	observability.LoginPhaseTotal.WithLabelValues("logout", observability.BoolResult(true)).Inc()
	return true, nil
}

//=====================================
//		    Accessors
//=====================================

func (m *UsernamePasswordModule) State() State {
	return m.state
}

// TentativeSuccess reports whether Login succeeded and was not undone
func (m *UsernamePasswordModule) TentativeSuccess() bool {
	return m.success
}

func (m *UsernamePasswordModule) Committed() bool {
	return m.commitSuccess
}

func (m *UsernamePasswordModule) Username() string {
	return m.username
}

// Credential returns the live credential buffer, nil once cleared
func (m *UsernamePasswordModule) Credential() *secret.Buffer {
	return m.password
}

// Principal returns the principal bound by Commit, nil otherwise
func (m *UsernamePasswordModule) Principal() *security.IdentityPrincipal {
	return m.principal
}

//=====================================
//		    Private
//=====================================

func (m *UsernamePasswordModule) transition(to State) error {
	if !CanTransition(m.state, to) {
		return errors.Wrapf(ErrIllegalState, "%s -> %s", m.state, to)
	}
	m.state = to
	return nil
}

func (m *UsernamePasswordModule) capture(nameCallback *authc.NameCallback, passwordCallback *authc.PasswordCallback) {
	m.username = nameCallback.Name()

	password := passwordCallback.Password()
	m.password.Wipe()
	m.password = secret.NewBuffer(password)
	clear(password)
}

func (m *UsernamePasswordModule) fail(ctx context.Context, le *Error, outcome string) error {
	// StateAttempting -> StateFailed is always legal
	m.state = StateFailed
	observability.LoginAttemptsTotal.WithLabelValues(m.name, outcome).Inc()
	m.logger.InfoContext(ctx, "login failed", "module", m.name, "kind", le.Kind.String(), "code", le.Code, "error", le.Err)
	return le
}

func (m *UsernamePasswordModule) clearCredentials() {
	m.username = ""
	m.password.Wipe()
	m.password = nil
}

func (m *UsernamePasswordModule) currentBinder(ctx context.Context) security.Binder {
	if m.binder != nil {
		return m.binder
	}
	if h := security.HolderFromContext(ctx); h != nil {
		return h
	}
	return nil
}

// usable rejects nil identities, including typed nil pointers, and
// identities without a unique id
func usable(identity authc.Identity) (ok bool) {
	if identity == nil {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	return len(strings.TrimSpace(identity.UniqueID())) != 0
}

func callbackError(err error) *Error {
	var unsupported *authc.UnsupportedCallbackError
	if errors.As(err, &unsupported) {
		return newError(ClientFault, ErrUnsupportedCallback, err)
	}
	return newError(ServerFault, ErrCallbackIO, err)
}
