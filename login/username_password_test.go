package login

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/authz"
	"github.com/shrinex/warden/security"
	"github.com/shrinex/warden/semgt"
	"github.com/stretchr/testify/assert"
)

type identity struct {
	id string
}

func (i *identity) UniqueID() string {
	return i.id
}

func (i *identity) IsAuthorized(_ context.Context, permission authz.Permission) (bool, error) {
	return permission.Name() == "document", nil
}

// passwordRealm accepts one username/password pair
type passwordRealm struct {
	username string
	password string
	uniqueID string
	fault    error
}

func (r *passwordRealm) ID() string {
	return authc.PrimaryStore
}

func (r *passwordRealm) Supports(claim authc.Claim) bool {
	return claim.URI() == authc.UsernameClaim
}

func (r *passwordRealm) Verify(_ context.Context, claim authc.Claim, callbacks []authc.Callback) (authc.Identity, error) {
	if r.fault != nil {
		return nil, r.fault
	}

	for _, cb := range callbacks {
		pc, ok := cb.(*authc.PasswordCallback)
		if !ok {
			continue
		}
		password := pc.Password()
		matched := claim.Value() == r.username && string(password) == r.password
		clear(password)
		if matched {
			return &identity{id: r.uniqueID}, nil
		}
	}

	return nil, authc.ErrUnauthenticated
}

func aliceRealm() *passwordRealm {
	return &passwordRealm{username: "alice", password: "correct-pw", uniqueID: "alice-unique-id"}
}

func staticHandler(name string, password string) authc.CallbackHandler {
	return authc.CallbackHandlerFunc(func(_ context.Context, callbacks ...authc.Callback) error {
		for _, cb := range callbacks {
			switch c := cb.(type) {
			case *authc.NameCallback:
				c.SetName(name)
			case *authc.PasswordCallback:
				c.SetPassword([]rune(password))
			default:
				return &authc.UnsupportedCallbackError{Callback: cb}
			}
		}
		return nil
	})
}

func newModule(realm authc.Realm, handler authc.CallbackHandler, opts ...ModuleOption) (*UsernamePasswordModule, *semgt.Subject) {
	subject := semgt.NewSubject()
	m := NewUsernamePasswordModule(authc.NewAuthenticator(realm), opts...)
	m.Initialize(subject, handler, NewSharedState(nil), NewOptions(nil))
	return m, subject
}

func TestLoginAndCommit(t *testing.T) {
	ctx := context.Background()
	m, subject := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	ok, err := m.Login(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, m.TentativeSuccess())
	assert.Equal(t, StateSucceeded, m.State())
	assert.Equal(t, "alice", m.Username())
	assert.Equal(t, 0, subject.Len())

	buf := m.Credential()
	live := buf.Runes()
	assert.Equal(t, []rune("correct-pw"), live)

	ok, err = m.Commit(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, m.Committed())
	assert.Equal(t, StateCommitted, m.State())

	assert.True(t, buf.Wiped())
	assert.Equal(t, make([]rune, len("correct-pw")), live)
	assert.Nil(t, m.Credential())
	assert.Empty(t, m.Username())

	principals := subject.Principals()
	if assert.Len(t, principals, 1) {
		assert.Equal(t, "alice-unique-id", principals[0].Name())
		assert.Same(t, m.Principal(), principals[0])
	}
}

func TestLoginWithWrongPassword(t *testing.T) {
	ctx := context.Background()
	m, subject := newModule(aliceRealm(), staticHandler("alice", "wrong-pw"))

	ok, err := m.Login(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "invalid credentials", err.Error())
	kind, found := KindOf(err)
	assert.True(t, found)
	assert.Equal(t, AuthenticationFault, kind)
	assert.False(t, m.TentativeSuccess())
	assert.Equal(t, StateFailed, m.State())

	ok, err = m.Commit(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, subject.Len())

	ok, err = m.Abort(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, StateAborted, m.State())
	assert.Nil(t, m.Credential())
}

func TestLoginWithUnknownUser(t *testing.T) {
	m, _ := newModule(aliceRealm(), staticHandler("bob", "correct-pw"))

	ok, err := m.Login(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "invalid credentials", err.Error())
}

func TestLoginWhenStoreFails(t *testing.T) {
	realm := aliceRealm()
	realm.fault = errors.New("connection refused")
	m, _ := newModule(realm, staticHandler("alice", "correct-pw"))

	ok, err := m.Login(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCredentialStore)
	kind, _ := KindOf(err)
	assert.Equal(t, ServerFault, kind)
	assert.Equal(t, StateFailed, m.State())
}

func TestLoginWithUnsupportedCallback(t *testing.T) {
	handler := authc.CallbackHandlerFunc(func(_ context.Context, callbacks ...authc.Callback) error {
		return &authc.UnsupportedCallbackError{Callback: callbacks[0]}
	})
	m, _ := newModule(aliceRealm(), handler)

	ok, err := m.Login(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnsupportedCallback)
	kind, _ := KindOf(err)
	assert.Equal(t, ClientFault, kind)
	assert.Equal(t, StateFailed, m.State())
}

func TestLoginWhenCallbackIOFails(t *testing.T) {
	handler := authc.CallbackHandlerFunc(func(context.Context, ...authc.Callback) error {
		return io.ErrUnexpectedEOF
	})
	m, _ := newModule(aliceRealm(), handler)

	ok, err := m.Login(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrCallbackIO)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	kind, _ := KindOf(err)
	assert.Equal(t, ServerFault, kind)
}

func TestLoginBeforeInitialize(t *testing.T) {
	m := NewUsernamePasswordModule(authc.NewAuthenticator(aliceRealm()))

	ok, err := m.Login(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrIllegalState)
	assert.Equal(t, StateInit, m.State())
}

func TestLoginTwice(t *testing.T) {
	ctx := context.Background()
	m, _ := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	_, err := m.Login(ctx)
	assert.NoError(t, err)

	ok, err := m.Login(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrIllegalState)
}

func TestAbortAfterTentativeSuccess(t *testing.T) {
	ctx := context.Background()
	m, subject := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	_, err := m.Login(ctx)
	assert.NoError(t, err)
	buf := m.Credential()

	ok, err := m.Abort(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateAbortedAfterSuccess, m.State())
	assert.False(t, m.TentativeSuccess())
	assert.True(t, buf.Wiped())
	assert.Nil(t, m.Principal())
	assert.Equal(t, 0, subject.Len())
}

func TestAbortAfterCommitLogsOut(t *testing.T) {
	ctx := context.Background()
	m, subject := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	_, err := m.Login(ctx)
	assert.NoError(t, err)
	_, err = m.Commit(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, subject.Len())

	ok, err := m.Abort(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, StateLoggedOut, m.State())
	assert.Equal(t, 0, subject.Len())
	assert.False(t, m.Committed())
}

func TestCommitTwiceAddsOnePrincipal(t *testing.T) {
	ctx := context.Background()
	m, subject := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	_, err := m.Login(ctx)
	assert.NoError(t, err)

	ok, err := m.Commit(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	first := m.Principal()

	ok, err = m.Commit(ctx)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, first, m.Principal())
	assert.Equal(t, 1, subject.Len())
}

func TestLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, subject := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	_, err := m.Login(ctx)
	assert.NoError(t, err)
	_, err = m.Commit(ctx)
	assert.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := m.Logout(ctx)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, StateLoggedOut, m.State())
		assert.Equal(t, 0, subject.Len())
		assert.Nil(t, m.Principal())
	}
}

func TestLogoutKeepsForeignPrincipals(t *testing.T) {
	ctx := context.Background()
	m, subject := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	// same identity, distinct instance
	foreign := security.NewIdentityPrincipal(&identity{id: "alice-unique-id"})
	subject.Add(foreign)

	_, err := m.Login(ctx)
	assert.NoError(t, err)
	_, err = m.Commit(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 2, subject.Len())

	_, err = m.Logout(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 1, subject.Len())
	assert.True(t, subject.Contains(foreign))
}

func TestCommitBindsHolderFromContext(t *testing.T) {
	ctx, holder := security.WithHolder(context.Background())
	m, _ := newModule(aliceRealm(), staticHandler("alice", "correct-pw"))

	_, err := m.Login(ctx)
	assert.NoError(t, err)
	_, err = m.Commit(ctx)
	assert.NoError(t, err)

	assert.Same(t, m.Principal(), holder.CurrentPrincipal())
}

func TestCommitPrefersExplicitBinder(t *testing.T) {
	binder := security.NewHolder()
	ctx, holder := security.WithHolder(context.Background())
	m, _ := newModule(aliceRealm(), staticHandler("alice", "correct-pw"), WithBinder(binder))

	_, err := m.Login(ctx)
	assert.NoError(t, err)
	_, err = m.Commit(ctx)
	assert.NoError(t, err)

	assert.Same(t, m.Principal(), binder.CurrentPrincipal())
	assert.Nil(t, holder.CurrentPrincipal())
}

func TestReusedInstanceWarns(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, nil))
	m, subject := newModule(aliceRealm(), staticHandler("alice", "correct-pw"), WithLogger(logger))
	assert.Empty(t, out.String())

	m.Initialize(subject, staticHandler("alice", "correct-pw"), NewSharedState(nil), NewOptions(nil))
	assert.Contains(t, out.String(), "not freshly created")
}

func TestFailureLogOmitsCredentials(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))
	m, _ := newModule(aliceRealm(), staticHandler("alice", "wrong-pw"), WithLogger(logger))

	_, err := m.Login(context.Background())
	assert.Error(t, err)
	assert.Contains(t, out.String(), "login failed")
	assert.NotContains(t, out.String(), "alice")
	assert.NotContains(t, out.String(), "wrong-pw")
}

func TestNewModuleWithNilStorePanics(t *testing.T) {
	assert.Panics(t, func() {
		NewUsernamePasswordModule(nil)
	})
}

type storeFunc func(context.Context, authc.Claim, []authc.Callback, string) (authc.Identity, error)

func (f storeFunc) Authenticate(ctx context.Context, claim authc.Claim, callbacks []authc.Callback, storeID string) (authc.Identity, error) {
	return f(ctx, claim, callbacks, storeID)
}

func TestLoginRejectsUnusableIdentity(t *testing.T) {
	var typedNil *identity
	for name, returned := range map[string]authc.Identity{
		"nil":       nil,
		"typed nil": typedNil,
		"empty id":  &identity{},
	} {
		t.Run(name, func(t *testing.T) {
			store := storeFunc(func(context.Context, authc.Claim, []authc.Callback, string) (authc.Identity, error) {
				return returned, nil
			})
			m := NewUsernamePasswordModule(store)
			subject := semgt.NewSubject()
			m.Initialize(subject, staticHandler("alice", "correct-pw"), NewSharedState(nil), NewOptions(nil))

			ok, err := m.Login(context.Background())
			assert.False(t, ok)
			assert.ErrorIs(t, err, ErrCredentialStore)
			kind, _ := KindOf(err)
			assert.Equal(t, ServerFault, kind)
			assert.False(t, m.TentativeSuccess())

			ok, err = m.Commit(context.Background())
			assert.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, 0, subject.Len())
		})
	}
}
