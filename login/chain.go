package login

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/observability"
	"github.com/shrinex/warden/security"
	"github.com/shrinex/warden/semgt"
)

// Flag controls how a module's login result affects its chain
type Flag int

const (
	// Required must succeed; the chain goes on either way
	Required Flag = iota
	// Requisite must succeed; a failure stops the chain
	Requisite
	// Sufficient ends the chain successfully unless a required module failed before
	Sufficient
	// Optional never decides the outcome while required modules exist
	Optional
)

var ErrInvalidChain = errors.New("invalid login chain")

type (
	// Factory creates a fresh module for every chain run
	Factory func() Module

	Entry struct {
		Name    string
		Flag    Flag
		Factory Factory
		Options Options
	}

	// Context runs a chain of modules against one subject with
	// all-or-nothing commit semantics
	Context struct {
		mu       sync.Mutex
		name     string
		entries  []Entry
		subject  *semgt.Subject
		handler  authc.CallbackHandler
		shared   SharedState
		logger   *slog.Logger
		modules  []invoked
		loggedIn bool
	}

	invoked struct {
		entry  Entry
		module Module
	}
)

func ParseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "required", "":
		return Required, nil
	case "requisite":
		return Requisite, nil
	case "sufficient":
		return Sufficient, nil
	case "optional":
		return Optional, nil
	default:
		return Required, errors.Errorf("unknown control flag %q", s)
	}
}

func (f Flag) String() string {
	switch f {
	case Required:
		return "required"
	case Requisite:
		return "requisite"
	case Sufficient:
		return "sufficient"
	case Optional:
		return "optional"
	default:
		return "unknown"
	}
}

func NewContext(name string, entries []Entry, subject *semgt.Subject, handler authc.CallbackHandler, opts ...ContextOption) (*Context, error) {
	if len(entries) == 0 {
		return nil, errors.Wrapf(ErrInvalidChain, "chain %q has no entries", name)
	}
	for i, e := range entries {
		if e.Factory == nil {
			return nil, errors.Wrapf(ErrInvalidChain, "chain %q entry %d (%s) has no factory", name, i, e.Name)
		}
	}
	if subject == nil || handler == nil {
		return nil, errors.Wrapf(ErrInvalidChain, "chain %q needs a subject and a callback handler", name)
	}

	c := &Context{
		name:    name,
		entries: append([]Entry(nil), entries...),
		subject: subject,
		handler: handler,
		shared:  NewSharedState(nil),
		logger:  slog.Default(),
	}
	for _, f := range opts {
		f(c)
	}
	return c, nil
}

func (c *Context) Subject() *semgt.Subject {
	return c.subject
}

// Login runs the login phase of every entry, then commits all modules
// when the chain succeeded and aborts all of them otherwise
func (c *Context) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loggedIn {
		return errors.Wrapf(ErrIllegalState, "chain %q is already logged in", c.name)
	}

	restore := snapshotHolder(ctx)

	run, loginErr := c.runLogin(ctx)
	if loginErr != nil {
		abortErr := c.abortAll(ctx, run)
		restore()
		observability.ChainOutcomesTotal.WithLabelValues(c.name, observability.OutcomeFailure).Inc()
		return withSecondary(loginErr, abortErr)
	}

	if err := c.commitAll(ctx, run); err != nil {
		abortErr := c.abortAll(ctx, run)
		restore()
		observability.ChainOutcomesTotal.WithLabelValues(c.name, observability.OutcomeFailure).Inc()
		return withSecondary(err, abortErr)
	}

	c.modules = run
	c.loggedIn = true
	observability.ChainOutcomesTotal.WithLabelValues(c.name, observability.OutcomeSuccess).Inc()
	c.logger.DebugContext(ctx, "login chain succeeded", "chain", c.name, "modules", len(run))
	return nil
}

// Logout logs out every module of the last successful run. Calling it
// without a successful login is a no-op.
func (c *Context) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loggedIn {
		return nil
	}

	var errs []error
	for _, inv := range c.modules {
		if _, err := inv.module.Logout(ctx); err != nil {
			errs = append(errs, errors.Wrapf(err, "logout %s", inv.entry.Name))
		}
	}

	c.modules = nil
	c.loggedIn = false
	return stderrors.Join(errs...)
}

//=====================================
//		    Private
//=====================================

func (c *Context) runLogin(ctx context.Context) ([]invoked, error) {
	var (
		run            = make([]invoked, 0, len(c.entries))
		requiredErr    error
		firstErr       error
		requiredFailed bool
		succeeded      bool
	)

	for _, e := range c.entries {
		m := e.Factory()
		if m == nil {
			return run, errors.Wrapf(ErrInvalidChain, "factory of %s returned no module", e.Name)
		}

		m.Initialize(c.subject, c.handler, c.shared, e.Options)
		run = append(run, invoked{entry: e, module: m})

		ok, err := m.Login(ctx)
		if err == nil && !ok {
			continue
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}

		switch e.Flag {
		case Required, Requisite:
			if err != nil {
				requiredFailed = true
				if requiredErr == nil {
					requiredErr = err
				}
				if e.Flag == Requisite {
					return run, requiredErr
				}
				continue
			}
			succeeded = true
		case Sufficient:
			if err == nil && !requiredFailed {
				return run, nil
			}
		case Optional:
			if err == nil {
				succeeded = true
			}
		}
	}

	switch {
	case requiredFailed:
		return run, requiredErr
	case succeeded:
		return run, nil
	case firstErr != nil:
		return run, firstErr
	default:
		return run, ErrLoginFailed
	}
}

func (c *Context) commitAll(ctx context.Context, run []invoked) error {
	var errs []error
	for _, inv := range run {
		if _, err := inv.module.Commit(ctx); err != nil {
			errs = append(errs, errors.Wrapf(err, "commit %s", inv.entry.Name))
		}
	}
	return stderrors.Join(errs...)
}

func (c *Context) abortAll(ctx context.Context, run []invoked) error {
	var errs []error
	for _, inv := range run {
		if _, err := inv.module.Abort(ctx); err != nil {
			c.logger.WarnContext(ctx, "abort failed", "chain", c.name, "module", inv.entry.Name, "error", err)
			errs = append(errs, errors.Wrapf(err, "abort %s", inv.entry.Name))
		}
	}
	return stderrors.Join(errs...)
}

// snapshotHolder returns a func putting back the principal the holder in
// ctx had before any module of this run committed
func snapshotHolder(ctx context.Context) func() {
	h := security.HolderFromContext(ctx)
	if h == nil {
		return func() {}
	}

	prior := h.CurrentPrincipal()
	return func() {
		h.SetCurrentPrincipal(prior)
	}
}

// withSecondary keeps primary as is unless there is something to add
func withSecondary(primary error, secondary error) error {
	if secondary == nil {
		return primary
	}
	return stderrors.Join(primary, secondary)
}
