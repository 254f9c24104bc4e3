package authc

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

var (
	ErrInvalidClaim    = errors.New("invalid claim")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNoRealm         = errors.New("no realm supports the claim")
)

type (
	// AuthenticationFailure is raised by a Store when a claim could not be
	// verified. Secondary failures met along the way are attached as
	// suppressed causes instead of replacing the primary one.
	AuthenticationFailure struct {
		mu         sync.Mutex
		message    string
		cause      error
		suppressed []error
	}

	// CredentialStoreError reports an operational fault of a credential
	// store, as opposed to credentials that simply did not match
	CredentialStoreError struct {
		StoreID string
		Err     error
	}

	// UnsupportedCallbackError is returned by a CallbackHandler that
	// cannot satisfy a callback
	UnsupportedCallbackError struct {
		Callback Callback
	}
)

func NewAuthenticationFailure(message string, cause error) *AuthenticationFailure {
	return &AuthenticationFailure{message: message, cause: cause}
}

func (f *AuthenticationFailure) Error() string {
	if f.cause == nil {
		return f.message
	}
	return f.message + ": " + f.cause.Error()
}

func (f *AuthenticationFailure) Unwrap() error {
	return f.cause
}

// AddSuppressed attaches a secondary failure
func (f *AuthenticationFailure) AddSuppressed(err error) {
	if err == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.suppressed = append(f.suppressed, err)
}

// Suppressed returns a snapshot of the secondary failures
func (f *AuthenticationFailure) Suppressed() []error {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]error, len(f.suppressed))
	copy(result, f.suppressed)
	return result
}

func NewCredentialStoreError(storeID string, err error) *CredentialStoreError {
	return &CredentialStoreError{StoreID: storeID, Err: err}
}

func (e *CredentialStoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("credential store %q failure", e.StoreID)
	}
	return fmt.Sprintf("credential store %q failure: %v", e.StoreID, e.Err)
}

func (e *CredentialStoreError) Unwrap() error {
	return e.Err
}

func (e *UnsupportedCallbackError) Error() string {
	if e.Callback == nil {
		return "unsupported callback"
	}
	return fmt.Sprintf("unsupported callback %T (%s)", e.Callback, e.Callback.Prompt())
}
