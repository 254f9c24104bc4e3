package authc

import (
	"context"

	"github.com/pkg/errors"
)

type (
	// Authenticator is a Store dispatching to the realms registered under
	// the requested store id
	Authenticator struct {
		realms []Realm
	}
)

var _ Store = (*Authenticator)(nil)

func NewAuthenticator(realm Realm, realms ...Realm) *Authenticator {
	return &Authenticator{realms: append([]Realm{realm}, realms...)}
}

func (c *Authenticator) Authenticate(ctx context.Context, claim Claim, callbacks []Callback, storeID string) (Identity, error) {
	if !claim.valid() {
		return nil, NewAuthenticationFailure("authentication failed", ErrInvalidClaim)
	}

	failure := NewAuthenticationFailure("authentication failed", ErrUnauthenticated)
	tried := 0
	for _, r := range c.realms {
		if r.ID() != storeID || !r.Supports(claim) {
			continue
		}

		select {
		case <-ctx.Done():
			failure.AddSuppressed(NewCredentialStoreError(storeID, ctx.Err()))
			return nil, failure
		default:
		}

		tried++
		identity, err := r.Verify(ctx, claim, callbacks)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				continue
			}
			failure.AddSuppressed(asStoreError(storeID, err))
			continue
		}
		if identity == nil {
			failure.AddSuppressed(NewCredentialStoreError(storeID, errors.Errorf("realm %s returned no identity", r.ID())))
			continue
		}
		return identity, nil
	}

	if tried == 0 {
		return nil, NewAuthenticationFailure("authentication failed", ErrNoRealm)
	}

	return nil, failure
}

func asStoreError(storeID string, err error) error {
	var storeErr *CredentialStoreError
	if errors.As(err, &storeErr) {
		return err
	}
	return NewCredentialStoreError(storeID, err)
}
