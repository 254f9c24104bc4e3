package semgt

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type namedPrincipal struct {
	name string
}

func (p *namedPrincipal) Name() string {
	return p.name
}

func TestAddOnce(t *testing.T) {
	subject := NewSubject()
	alice := &namedPrincipal{name: "alice"}

	assert.True(t, subject.Add(alice))
	assert.False(t, subject.Add(alice))
	assert.Equal(t, 1, subject.Len())
	assert.True(t, subject.Contains(alice))
}

func TestEqualityIsIdentity(t *testing.T) {
	subject := NewSubject()
	first := &namedPrincipal{name: "alice"}
	second := &namedPrincipal{name: "alice"}

	subject.Add(first)

	assert.False(t, subject.Contains(second))
	assert.True(t, subject.Add(second))
	assert.Equal(t, 2, subject.Len())
}

func TestRemoveIsIdempotent(t *testing.T) {
	subject := NewSubject()
	alice := &namedPrincipal{name: "alice"}
	subject.Add(alice)

	assert.True(t, subject.Remove(alice))
	assert.False(t, subject.Remove(alice))
	assert.False(t, subject.Contains(alice))
	assert.Empty(t, subject.Principals())
}

func TestNilPrincipal(t *testing.T) {
	subject := NewSubject()

	assert.False(t, subject.Add(nil))
	assert.False(t, subject.Remove(nil))
	assert.False(t, subject.Contains(nil))
}

func TestPrincipalsIsSnapshot(t *testing.T) {
	subject := NewSubject()
	alice := &namedPrincipal{name: "alice"}
	bob := &namedPrincipal{name: "bob"}
	subject.Add(alice)
	subject.Add(bob)

	snapshot := subject.Principals()
	subject.Remove(alice)

	assert.Equal(t, []Principal{alice, bob}, snapshot)
	assert.Equal(t, []Principal{bob}, subject.Principals())
}

func TestConcurrentMutations(t *testing.T) {
	subject := NewSubject()
	principals := make([]*namedPrincipal, 64)
	for i := range principals {
		principals[i] = &namedPrincipal{name: "p"}
	}

	var wg sync.WaitGroup
	for _, p := range principals {
		wg.Add(1)
		go func(p *namedPrincipal) {
			defer wg.Done()
			subject.Add(p)
			subject.Contains(p)
		}(p)
	}
	wg.Wait()
	assert.Equal(t, len(principals), subject.Len())

	for _, p := range principals {
		wg.Add(1)
		go func(p *namedPrincipal) {
			defer wg.Done()
			subject.Remove(p)
		}(p)
	}
	wg.Wait()
	assert.Zero(t, subject.Len())
}
