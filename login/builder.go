package login

import (
	"log/slog"

	"github.com/shrinex/warden/semgt"
)

// Builder provides a way to create a Manager
type Builder struct {
	chain       string
	entries     []Entry
	repository  semgt.Repository
	registry    semgt.Registry
	concurrency int
	logger      *slog.Logger
}

// NewBuilder returns a newly created Builder
func NewBuilder() *Builder {
	return &Builder{chain: "default", logger: slog.Default()}
}

// Chain supplies the entries every login runs through
func (b *Builder) Chain(name string, entries ...Entry) *Builder {
	b.chain = name
	b.entries = entries
	return b
}

// Repository supplies where sessions are kept
func (b *Builder) Repository(repository semgt.Repository) *Builder {
	b.repository = repository
	return b
}

// Registry supplies the per-principal session index
func (b *Builder) Registry(registry semgt.Registry) *Builder {
	b.registry = registry
	return b
}

// Concurrency caps the live sessions per principal, 0 means unlimited
func (b *Builder) Concurrency(concurrency int) *Builder {
	b.concurrency = concurrency
	return b
}

func (b *Builder) Logger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// Build creates the Manager
func (b *Builder) Build() *Manager {
	if len(b.entries) == 0 || b.repository == nil || b.registry == nil {
		panic("login: incomplete builder")
	}
	return &Manager{
		chain:       b.chain,
		entries:     b.entries,
		repository:  b.repository,
		registry:    b.registry,
		concurrency: b.concurrency,
		logger:      b.logger,
		contexts:    make(map[string]*Context),
	}
}
