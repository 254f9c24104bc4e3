package authc

import (
	"context"

	"github.com/shrinex/warden/authz"
)

type (
	// Identity is a verified identity handed out by a Store
	Identity interface {
		// UniqueID is the stable identifier of the identity
		UniqueID() string
		// IsAuthorized reports whether the identity holds the permission
		IsAuthorized(context.Context, authz.Permission) (bool, error)
	}

	// A Store verifies the credentials submitted for a Claim
	Store interface {
		// Authenticate returns the verified Identity, or an error that is
		// an *AuthenticationFailure whenever verification did not succeed
		Authenticate(ctx context.Context, claim Claim, callbacks []Callback, storeID string) (Identity, error)
	}

	// A Realm is one configured identity store
	Realm interface {
		// ID is the store identifier callers select with, e.g. "PRIMARY"
		ID() string
		// Supports returns true if the specified Claim can be handled by this Realm
		Supports(Claim) bool
		// Verify checks the submitted callbacks against the identity the claim names.
		// It returns ErrUnauthenticated when the credentials do not match.
		Verify(context.Context, Claim, []Callback) (Identity, error)
	}

	// A Callback is a single request made to a CallbackHandler
	Callback interface {
		Prompt() string
	}

	// A CallbackHandler collects the information requested by callbacks,
	// typically from the user. It returns an *UnsupportedCallbackError for
	// callbacks it cannot satisfy.
	CallbackHandler interface {
		Handle(context.Context, ...Callback) error
	}

	// CallbackHandlerFunc adapts a function to CallbackHandler
	CallbackHandlerFunc func(context.Context, ...Callback) error
)

func (f CallbackHandlerFunc) Handle(ctx context.Context, callbacks ...Callback) error {
	return f(ctx, callbacks...)
}
