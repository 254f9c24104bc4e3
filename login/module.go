package login

import (
	"context"
	"sort"

	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/semgt"
)

type (
	// Module is one step of a login chain. An instance serves exactly one
	// login attempt: Initialize, Login, then Commit or Abort, and later Logout.
	Module interface {
		Initialize(subject *semgt.Subject, handler authc.CallbackHandler, shared SharedState, options Options)
		// Login verifies the caller. (false, nil) asks the chain to ignore the module.
		Login(context.Context) (bool, error)
		// Commit binds what Login verified once the whole chain succeeded
		Commit(context.Context) (bool, error)
		// Abort undoes Login and Commit once the chain failed
		Abort(context.Context) (bool, error)
		// Logout unbinds everything Commit bound
		Logout(context.Context) (bool, error)
	}

	// Options is the read-only configuration of one chain entry
	Options struct {
		values map[string]string
	}

	// SharedState is read-only state handed to every module of a chain run
	SharedState struct {
		values map[string]any
	}
)

// NewOptions copies values
func NewOptions(values map[string]string) Options {
	o := Options{values: make(map[string]string, len(values))}
	for k, v := range values {
		o.values[k] = v
	}
	return o
}

func (o Options) Get(key string) (string, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o Options) Len() int {
	return len(o.values)
}

// Keys returns the option names in sorted order
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o.values))
	for k := range o.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NewSharedState copies values
func NewSharedState(values map[string]any) SharedState {
	s := SharedState{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = v
	}
	return s
}

func (s SharedState) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s SharedState) Len() int {
	return len(s.values)
}
