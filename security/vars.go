package security

import "fmt"

// PanicError carries a panic recovered from an identity store
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("identity store panicked: %v", e.Value)
}
