package security

import (
	"context"
	"sync"

	"github.com/shrinex/warden/semgt"
)

type (
	// Binder receives the principal a login committed, making it the
	// current identity of the surrounding request
	Binder interface {
		SetCurrentPrincipal(semgt.Principal)
	}

	// Holder is a per-request Binder
	Holder struct {
		mu        sync.RWMutex
		principal semgt.Principal
	}

	holderCtxKey struct{}
)

var _ Binder = (*Holder)(nil)

func NewHolder() *Holder {
	return &Holder{}
}

func (h *Holder) SetCurrentPrincipal(principal semgt.Principal) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.principal = principal
}

// CurrentPrincipal returns nil when nothing is bound
func (h *Holder) CurrentPrincipal() semgt.Principal {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.principal
}

func (h *Holder) Clear() {
	h.SetCurrentPrincipal(nil)
}

// WithHolder returns a ctx carrying holder, creating one when ctx has none
func WithHolder(ctx context.Context) (context.Context, *Holder) {
	if h := HolderFromContext(ctx); h != nil {
		return ctx, h
	}

	h := NewHolder()
	return context.WithValue(ctx, holderCtxKey{}, h), h
}

func HolderFromContext(ctx context.Context) *Holder {
	if h, ok := ctx.Value(holderCtxKey{}).(*Holder); ok {
		return h
	}
	return nil
}

// CurrentPrincipal returns the principal bound to the holder in ctx
func CurrentPrincipal(ctx context.Context) semgt.Principal {
	if h := HolderFromContext(ctx); h != nil {
		return h.CurrentPrincipal()
	}
	return nil
}
