package semgt

import (
	"container/list"
	"context"
	"sync"
)

type (
	// Registry tracks the live sessions of each principal name
	Registry interface {
		Register(context.Context, string, *Session) error
		Deregister(context.Context, string, *Session) error
		ActiveSessions(context.Context, string) ([]*Session, error)
	}

	MapSessionRegistry struct {
		mu   sync.RWMutex
		repo Repository
		// lookup maps token to principal name
		lookup map[string]string
		// tokens maps principal name to tokens, oldest first
		tokens map[string]*list.List
	}
)

var _ Registry = (*MapSessionRegistry)(nil)

func NewRegistry(repo Repository) *MapSessionRegistry {
	return &MapSessionRegistry{
		repo:   repo,
		lookup: make(map[string]string),
		tokens: make(map[string]*list.List),
	}
}

func (r *MapSessionRegistry) Register(ctx context.Context, principal string, session *Session) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// already registered
	if _, ok := r.lookup[session.Token()]; ok {
		return nil
	}

	if _, ok := r.tokens[principal]; !ok {
		r.tokens[principal] = list.New()
	}
	r.tokens[principal].PushBack(session.Token())
	r.lookup[session.Token()] = principal

	return nil
}

func (r *MapSessionRegistry) Deregister(ctx context.Context, _ string, session *Session) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.deregisterLocked(session.Token())

	return nil
}

// ActiveSessions returns live sessions oldest first, forgetting tokens
// whose session is gone
func (r *MapSessionRegistry) ActiveSessions(ctx context.Context, principal string) ([]*Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.RLock()
	tokens := make([]string, 0)
	if ls, ok := r.tokens[principal]; ok {
		for e := ls.Front(); e != nil; e = e.Next() {
			tokens = append(tokens, e.Value.(string))
		}
	}
	r.mu.RUnlock()

	sessions := make([]*Session, 0, len(tokens))
	inactive := make([]string, 0)
	for _, token := range tokens {
		session, err := r.repo.Read(ctx, token)
		if err != nil {
			return nil, err
		}

		if session == nil {
			inactive = append(inactive, token)
			continue
		}
		sessions = append(sessions, session)
	}

	if len(inactive) != 0 {
		r.mu.Lock()
		for _, token := range inactive {
			r.deregisterLocked(token)
		}
		r.mu.Unlock()
	}

	return sessions, nil
}

func (r *MapSessionRegistry) deregisterLocked(token string) {
	principal, ok := r.lookup[token]
	if !ok {
		return
	}

	delete(r.lookup, token)
	ls := r.tokens[principal]
	for e := ls.Front(); e != nil; e = e.Next() {
		if e.Value.(string) == token {
			ls.Remove(e)
			break
		}
	}
	if ls.Len() == 0 {
		delete(r.tokens, principal)
	}
}
