package authz

import "context"

type (
	// Permission is an opaque (name, actions) descriptor
	Permission interface {
		Name() string
		Actions() string
		// Implies returns true if holding this permission grants the given one
		Implies(Permission) bool
	}

	// A Realm is responsible for loading the permissions granted to an identity
	Realm interface {
		LoadPermissions(ctx context.Context, uniqueID string) ([]Permission, error)
	}

	Authorizer interface {
		IsAuthorized(context.Context, string, Permission) (bool, error)
		IsAuthorizedAny(context.Context, string, ...Permission) (bool, error)
		IsAuthorizedAll(context.Context, string, ...Permission) (bool, error)
	}
)
