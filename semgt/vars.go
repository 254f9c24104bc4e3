package semgt

import (
	"errors"
	"time"
)

var (
	nowFunc = time.Now

	ErrStopped = errors.New("session stopped")
)

const (
	DefaultTimeout         = 12 * time.Hour
	DefaultIdleTimeout     = time.Hour
	DefaultCleanupInterval = time.Minute
)
