package login

import (
	"github.com/pkg/errors"
)

// Kind attributes a login error to its origin
type Kind int

const (
	// ClientFault is a misconfiguration on the caller's side
	ClientFault Kind = iota
	// ServerFault is an infrastructure problem
	ServerFault
	// AuthenticationFault means the presented credentials were rejected
	AuthenticationFault
)

var (
	ErrIllegalState        = errors.New("illegal login module state")
	ErrUnsupportedCallback = errors.New("unsupported callback")
	ErrCallbackIO          = errors.New("error while handling callbacks")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCredentialStore     = errors.New("credential store failure")
	ErrLoginFailed         = errors.New("login failed")
	ErrNoPrincipal         = errors.New("login chain bound no principal")
)

// Stable codes operators can match on, one per reason
const (
	CodeUnknown             = "30000"
	CodeUnsupportedCallback = "30001"
	CodeCallbackIO          = "30002"
	CodeCredentialStore     = "30003"
	CodeInvalidCredentials  = "30004"
)

var reasonCodes = map[error]string{
	ErrUnsupportedCallback: CodeUnsupportedCallback,
	ErrCallbackIO:          CodeCallbackIO,
	ErrCredentialStore:     CodeCredentialStore,
	ErrInvalidCredentials:  CodeInvalidCredentials,
}

// Error is what a login module raises from its login phase. Its message
// never names the factor that was wrong.
type Error struct {
	Kind   Kind
	Code   string
	Reason error
	Err    error
}

func (k Kind) String() string {
	switch k {
	case ClientFault:
		return "client"
	case ServerFault:
		return "server"
	case AuthenticationFault:
		return "authentication"
	default:
		return "unknown"
	}
}

func newError(kind Kind, reason error, err error) *Error {
	code, ok := reasonCodes[reason]
	if !ok {
		code = CodeUnknown
	}
	return &Error{Kind: kind, Code: code, Reason: reason, Err: err}
}

func (e *Error) Error() string {
	return e.Reason.Error()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Reason}
	}
	return []error{e.Reason, e.Err}
}

// CodeOf returns the Code of the first *Error in err's chain
func CodeOf(err error) (string, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Code, true
	}
	return "", false
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) (Kind, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return 0, false
}
