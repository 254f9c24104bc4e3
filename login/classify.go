package login

import (
	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
)

// Classify turns a store failure into a login Error. A failure carrying a
// suppressed credential store fault is a server fault, any other failure
// means invalid credentials. Only error types are inspected, never text.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var failure *authc.AuthenticationFailure
	if !errors.As(err, &failure) {
		return newError(ServerFault, ErrCredentialStore, err)
	}

	for _, suppressed := range failure.Suppressed() {
		var storeErr *authc.CredentialStoreError
		if errors.As(suppressed, &storeErr) {
			return newError(ServerFault, ErrCredentialStore, err)
		}
	}

	return newError(AuthenticationFault, ErrInvalidCredentials, err)
}
