package semgt

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type (
	// Session ties a Subject to a token for the lifetime of a login
	Session struct {
		token          string
		subject        *Subject
		mu             sync.RWMutex
		stopped        atomic.Bool
		startTime      time.Time
		lastAccessTime time.Time
		timeout        time.Duration
		idleTimeout    time.Duration
	}
)

func NewSession(token string, subject *Subject) *Session {
	nowTime := nowFunc()
	return &Session{
		token:          token,
		subject:        subject,
		startTime:      nowTime,
		lastAccessTime: nowTime,
		timeout:        DefaultTimeout,
		idleTimeout:    DefaultIdleTimeout,
	}
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) Subject() *Subject {
	return s.subject
}

func (s *Session) StartTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.startTime
}

func (s *Session) LastAccessTime(ctx context.Context) (time.Time, error) {
	if err := s.checkState(ctx); err != nil {
		return time.Time{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastAccessTime, nil
}

func (s *Session) Expired(ctx context.Context) (bool, error) {
	if err := s.checkState(ctx); err != nil {
		if err == ErrStopped {
			return true, nil
		}
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	nowTime := nowFunc()
	timedOut := s.startTime.Add(s.timeout).Before(nowTime)
	inactive := s.lastAccessTime.Add(s.idleTimeout).Before(nowTime)

	return timedOut || inactive, nil
}

func (s *Session) Touch(ctx context.Context) error {
	if err := s.checkState(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastAccessTime = nowFunc()
	return nil
}

func (s *Session) Stop(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	s.stopped.Store(true)
	return nil
}

func (s *Session) Stopped() bool {
	return s.stopped.Load()
}

//=====================================
//		      Setters
//=====================================

func (s *Session) SetTimeout(timeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeout = timeout
}

func (s *Session) SetIdleTimeout(idleTimeout time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.idleTimeout = idleTimeout
}

func (s *Session) checkState(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if s.stopped.Load() {
		return ErrStopped
	}

	return nil
}
