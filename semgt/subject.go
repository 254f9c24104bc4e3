package semgt

import "sync"

type (
	// Principal is an identity bound into a Subject. Implementations must be
	// comparable; pointer types give identity semantics.
	Principal interface {
		Name() string
	}

	// Subject accumulates the principals bound by the login modules of a
	// chain. It is safe for concurrent use.
	Subject struct {
		mu         sync.RWMutex
		principals []Principal
	}
)

func NewSubject() *Subject {
	return &Subject{}
}

// Add binds principal unless it is already contained
func (s *Subject) Add(principal Principal) bool {
	if principal == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(principal) >= 0 {
		return false
	}
	s.principals = append(s.principals, principal)
	return true
}

// Remove unbinds principal. Removing an absent principal is not an error.
func (s *Subject) Remove(principal Principal) bool {
	if principal == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(principal)
	if i < 0 {
		return false
	}
	s.principals = append(s.principals[:i], s.principals[i+1:]...)
	return true
}

func (s *Subject) Contains(principal Principal) bool {
	if principal == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.indexOf(principal) >= 0
}

// Principals returns a snapshot in binding order
func (s *Subject) Principals() []Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Principal, len(s.principals))
	copy(result, s.principals)
	return result
}

func (s *Subject) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.principals)
}

func (s *Subject) indexOf(principal Principal) int {
	for i, p := range s.principals {
		if p == principal {
			return i
		}
	}
	return -1
}
