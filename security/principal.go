package security

import (
	"context"
	"log/slog"

	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/authz"
	"github.com/shrinex/warden/observability"
	"github.com/shrinex/warden/semgt"
)

type (
	// IdentityPrincipal binds an authenticated identity into a subject.
	// Two principals are equal only if they are the same instance, even
	// when they wrap the same identity.
	IdentityPrincipal struct {
		identity authc.Identity
		logger   *slog.Logger
	}

	PrincipalOption func(*IdentityPrincipal)
)

var _ semgt.Principal = (*IdentityPrincipal)(nil)

func WithPrincipalLogger(logger *slog.Logger) PrincipalOption {
	return func(p *IdentityPrincipal) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewIdentityPrincipal panics when identity is nil: a principal without an
// identity must never reach a subject.
func NewIdentityPrincipal(identity authc.Identity, opts ...PrincipalOption) *IdentityPrincipal {
	if identity == nil {
		panic("security: nil identity")
	}

	p := &IdentityPrincipal{identity: identity, logger: slog.Default()}
	for _, f := range opts {
		f(p)
	}
	return p
}

func (p *IdentityPrincipal) Name() string {
	return p.identity.UniqueID()
}

func (p *IdentityPrincipal) Identity() authc.Identity {
	return p.identity
}

func (p *IdentityPrincipal) String() string {
	return p.Name()
}

// IsAuthorized never fails: any store error counts as a denial.
func (p *IdentityPrincipal) IsAuthorized(ctx context.Context, permission authz.Permission) bool {
	if permission == nil {
		observability.AuthorizationChecksTotal.WithLabelValues(observability.OutcomeDenied).Inc()
		return false
	}

	ok, err := p.check(ctx, permission)
	if err != nil {
		observability.AuthorizationChecksTotal.WithLabelValues(observability.OutcomeError).Inc()
		p.logger.ErrorContext(ctx, "access denied due to a server error",
			"permission", permission.Name(),
			"actions", permission.Actions(),
			"principal", p.Name(),
			"error", err)
		return false
	}

	if ok {
		observability.AuthorizationChecksTotal.WithLabelValues(observability.OutcomeGranted).Inc()
	} else {
		observability.AuthorizationChecksTotal.WithLabelValues(observability.OutcomeDenied).Inc()
	}
	return ok
}

func (p *IdentityPrincipal) check(ctx context.Context, permission authz.Permission) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = &PanicError{Value: r}
		}
	}()

	return p.identity.IsAuthorized(ctx, permission)
}
