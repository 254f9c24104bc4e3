package authz

import (
	"context"

	"github.com/pkg/errors"
)

type (
	authorizer struct {
		realms []Realm
	}
)

var _ Authorizer = (*authorizer)(nil)

func NewAuthorizer(realm Realm, realms ...Realm) Authorizer {
	return &authorizer{realms: append([]Realm{realm}, realms...)}
}

// IsAuthorized grants as soon as one realm does. Realm failures are only
// reported when no realm granted the permission.
func (z *authorizer) IsAuthorized(ctx context.Context, uniqueID string, permission Permission) (bool, error) {
	var firstErr error
	for _, r := range z.realms {
		permissions, err := r.LoadPermissions(ctx, uniqueID)
		if err != nil {
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "load permissions of %s", uniqueID)
			}
			continue
		}

		for _, v := range permissions {
			if v.Implies(permission) {
				return true, nil
			}
		}
	}

	return false, firstErr
}

func (z *authorizer) IsAuthorizedAny(ctx context.Context, uniqueID string, permissions ...Permission) (bool, error) {
	for _, permission := range permissions {
		ok, err := z.IsAuthorized(ctx, uniqueID, permission)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

func (z *authorizer) IsAuthorizedAll(ctx context.Context, uniqueID string, permissions ...Permission) (bool, error) {
	for _, permission := range permissions {
		ok, err := z.IsAuthorized(ctx, uniqueID, permission)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}
