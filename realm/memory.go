// Package realm provides an in-memory identity store backing both
// authentication and authorization.
package realm

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/authz"
)

var (
	ErrUnavailable   = errors.New("realm unavailable")
	ErrDuplicateUser = errors.New("duplicate user")
)

type (
	// User is the configuration of one account
	User struct {
		Username    string
		UniqueID    string
		Password    string
		Permissions []authz.Permission
	}

	// Memory keeps users in memory. Passwords are held as SHA-256 digests only.
	Memory struct {
		id          string
		mu          sync.RWMutex
		users       map[string]*account
		permissions map[string][]authz.Permission
		unavailable atomic.Bool
		authorizer  authz.Authorizer
	}

	account struct {
		uniqueID string
		digest   [32]byte
	}

	identity struct {
		uniqueID   string
		authorizer authz.Authorizer
	}
)

var (
	_ authc.Realm    = (*Memory)(nil)
	_ authz.Realm    = (*Memory)(nil)
	_ authc.Identity = (*identity)(nil)
)

// absent is compared against when the username is unknown
var absent = sha256.Sum256([]byte(uuid.NewString()))

func NewMemory(id string, users ...User) (*Memory, error) {
	m := &Memory{
		id:          id,
		users:       make(map[string]*account),
		permissions: make(map[string][]authz.Permission),
	}
	m.authorizer = authz.NewAuthorizer(m)

	for _, u := range users {
		if err := m.Add(u); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Add registers u, generating a unique id when none is given
func (m *Memory) Add(u User) error {
	username := strings.TrimSpace(u.Username)
	if len(username) == 0 {
		return errors.Wrap(authc.ErrInvalidClaim, "empty username")
	}

	uniqueID := strings.TrimSpace(u.UniqueID)
	if len(uniqueID) == 0 {
		uniqueID = uuid.NewString()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[username]; ok {
		return errors.Wrapf(ErrDuplicateUser, "realm %s: %s", m.id, username)
	}

	m.users[username] = &account{uniqueID: uniqueID, digest: sha256.Sum256([]byte(u.Password))}
	m.permissions[uniqueID] = append([]authz.Permission(nil), u.Permissions...)
	return nil
}

func (m *Memory) ID() string {
	return m.id
}

func (m *Memory) Supports(claim authc.Claim) bool {
	return claim.Dialect() == authc.DefaultDialect && claim.URI() == authc.UsernameClaim
}

// SetAvailable toggles whether the realm answers at all
func (m *Memory) SetAvailable(available bool) {
	m.unavailable.Store(!available)
}

func (m *Memory) Verify(ctx context.Context, claim authc.Claim, callbacks []authc.Callback) (authc.Identity, error) {
	select {
	case <-ctx.Done():
		return nil, authc.NewCredentialStoreError(m.id, ctx.Err())
	default:
	}

	if m.unavailable.Load() {
		return nil, authc.NewCredentialStoreError(m.id, ErrUnavailable)
	}

	digest, ok := passwordDigest(callbacks)
	if !ok {
		return nil, errors.Wrap(authc.ErrUnauthenticated, "no password submitted")
	}

	m.mu.RLock()
	acct, found := m.users[claim.Value()]
	m.mu.RUnlock()

	expected := absent
	if found {
		expected = acct.digest
	}

	if subtle.ConstantTimeCompare(digest[:], expected[:]) != 1 || !found {
		return nil, authc.ErrUnauthenticated
	}

	return &identity{uniqueID: acct.uniqueID, authorizer: m.authorizer}, nil
}

func (m *Memory) LoadPermissions(ctx context.Context, uniqueID string) ([]authz.Permission, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.unavailable.Load() {
		return nil, errors.Wrapf(ErrUnavailable, "realm %s", m.id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]authz.Permission(nil), m.permissions[uniqueID]...), nil
}

func (i *identity) UniqueID() string {
	return i.uniqueID
}

func (i *identity) IsAuthorized(ctx context.Context, permission authz.Permission) (bool, error) {
	return i.authorizer.IsAuthorized(ctx, i.uniqueID, permission)
}

// passwordDigest hashes the password submitted in callbacks, wiping every
// intermediate copy
func passwordDigest(callbacks []authc.Callback) ([32]byte, bool) {
	for _, cb := range callbacks {
		pc, ok := cb.(*authc.PasswordCallback)
		if !ok {
			continue
		}

		password := pc.Password()
		if password == nil {
			return [32]byte{}, false
		}

		buf := make([]byte, 0, len(password)*utf8.UTFMax)
		for _, r := range password {
			buf = utf8.AppendRune(buf, r)
		}
		digest := sha256.Sum256(buf)

		clear(buf)
		clear(password)
		return digest, true
	}

	return [32]byte{}, false
}
