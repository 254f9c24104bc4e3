package semgt

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type (
	Repository interface {
		Create(context.Context, *Subject) (*Session, error)
		Read(context.Context, string) (*Session, error)
		Remove(context.Context, string) error
	}

	MapSessionRepository struct {
		mu          sync.RWMutex
		stopGuard   sync.Once
		stopChan    chan struct{}
		timeout     time.Duration
		idleTimeout time.Duration
		lookup      map[string]*Session
	}
)

var _ Repository = (*MapSessionRepository)(nil)

// NewRepository starts a repository whose expired sessions are swept every
// cleanupInterval until StopCleanup is called
func NewRepository(timeout time.Duration, idleTimeout time.Duration, cleanupInterval time.Duration) *MapSessionRepository {
	r := &MapSessionRepository{
		timeout:     timeout,
		idleTimeout: idleTimeout,
		stopChan:    make(chan struct{}),
		lookup:      make(map[string]*Session),
	}

	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	go r.startCleanup(cleanupInterval)

	return r
}

func (r *MapSessionRepository) Create(ctx context.Context, subject *Subject) (*Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	result := NewSession(newToken(), subject)
	result.SetTimeout(r.timeout)
	result.SetIdleTimeout(r.idleTimeout)
	r.lookup[result.Token()] = result

	return result, nil
}

// Read returns nil without error when the session is unknown or expired
func (r *MapSessionRepository) Read(ctx context.Context, token string) (*Session, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	r.mu.RLock()
	session, ok := r.lookup[token]
	r.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	expired, err := session.Expired(ctx)
	if err != nil {
		return nil, err
	}

	if expired {
		_ = r.Remove(ctx, token)
		_ = session.Stop(ctx)
		return nil, nil
	}

	return session, nil
}

func (r *MapSessionRepository) Remove(ctx context.Context, token string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.lookup, token)

	return nil
}

func (r *MapSessionRepository) StopCleanup() {
	r.stopGuard.Do(func() {
		close(r.stopChan)
	})
}

func (r *MapSessionRepository) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.deleteExpired()
		case <-r.stopChan:
			return
		}
	}
}

func (r *MapSessionRepository) deleteExpired() {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := context.TODO()
	for token, ss := range r.lookup {
		if expired, _ := ss.Expired(ctx); expired {
			delete(r.lookup, token)
			_ = ss.Stop(ctx)
		}
	}
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
