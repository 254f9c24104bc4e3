package login

import (
	"log/slog"
	"strings"

	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/security"
)

const UsernamePasswordModuleName = "username-password"

type (
	ModuleOption func(*UsernamePasswordModule)

	ContextOption func(*Context)
)

//=====================================
//		   Module Options
//=====================================

// WithStoreID selects the credential store, authc.PrimaryStore by default
func WithStoreID(storeID string) ModuleOption {
	return func(m *UsernamePasswordModule) {
		storeID = strings.TrimSpace(storeID)
		if len(storeID) != 0 {
			m.storeID = storeID
		}
	}
}

// WithBinder sets where Commit publishes the principal. Without one the
// security.Holder found in the commit context is used, if any.
func WithBinder(binder security.Binder) ModuleOption {
	return func(m *UsernamePasswordModule) {
		m.binder = binder
	}
}

func WithLogger(logger *slog.Logger) ModuleOption {
	return func(m *UsernamePasswordModule) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithModuleName overrides the name used in logs and metrics
func WithModuleName(name string) ModuleOption {
	return func(m *UsernamePasswordModule) {
		if len(name) != 0 {
			m.name = name
		}
	}
}

func applyModuleOptions(m *UsernamePasswordModule, opts ...ModuleOption) {
	m.storeID = authc.PrimaryStore
	m.name = UsernamePasswordModuleName
	m.logger = slog.Default()

	for _, f := range opts {
		f(m)
	}
}

//=====================================
//		   Context Options
//=====================================

func WithSharedState(shared SharedState) ContextOption {
	return func(c *Context) {
		c.shared = shared
	}
}

func WithContextLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}
