// Package secret holds credential material that must not outlive the
// phase that needs it.
package secret

import "sync"

// A Buffer owns a copy of a secret. Wipe overwrites every element before
// the memory is released; a wiped Buffer stays wiped.
type Buffer struct {
	mu    sync.Mutex
	chars []rune
	wiped bool
}

// NewBuffer copies chars into a new Buffer. The caller keeps ownership of
// chars and should clear it.
func NewBuffer(chars []rune) *Buffer {
	b := &Buffer{chars: make([]rune, len(chars))}
	copy(b.chars, chars)
	return b
}

// Runes returns the live contents. The slice must not be retained past
// the next call to Wipe.
func (b *Buffer) Runes() []rune {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.chars
}

func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.chars)
}

// Wipe zeroes the contents and drops them. It is safe to call on a nil
// Buffer and to call more than once.
func (b *Buffer) Wipe() {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.chars)
	b.chars = nil
	b.wiped = true
}

func (b *Buffer) Wiped() bool {
	if b == nil {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	return b.wiped
}

// Blank reports whether no non-zero element is left
func (b *Buffer) Blank() bool {
	if b == nil {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, r := range b.chars {
		if r != 0 {
			return false
		}
	}
	return true
}
