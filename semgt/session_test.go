package semgt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSession(t *testing.T) {
	defer func() { nowFunc = time.Now }()
	nowTime := time.Unix(0, 0)
	nowFunc = func() time.Time { return nowTime }

	ctx := context.TODO()
	subject := NewSubject()
	ss := NewSession("abc", subject)

	assert.Equal(t, "abc", ss.Token())
	assert.Same(t, subject, ss.Subject())
	assert.Equal(t, nowTime, ss.StartTime())

	lastAccessTime, err := ss.LastAccessTime(ctx)
	assert.NoError(t, err)
	assert.Equal(t, nowTime, lastAccessTime)

	expired, err := ss.Expired(ctx)
	assert.NoError(t, err)
	assert.False(t, expired)
}

func TestSessionIdleExpiry(t *testing.T) {
	defer func() { nowFunc = time.Now }()
	nowTime := time.Unix(0, 0)
	nowFunc = func() time.Time { return nowTime }

	ctx := context.TODO()
	ss := NewSession("abc", NewSubject())
	ss.SetTimeout(time.Hour)
	ss.SetIdleTimeout(time.Minute)

	nowFunc = func() time.Time { return nowTime.Add(30 * time.Second) }
	assert.NoError(t, ss.Touch(ctx))

	nowFunc = func() time.Time { return nowTime.Add(80 * time.Second) }
	expired, err := ss.Expired(ctx)
	assert.NoError(t, err)
	assert.False(t, expired)

	nowFunc = func() time.Time { return nowTime.Add(2 * time.Minute) }
	expired, err = ss.Expired(ctx)
	assert.NoError(t, err)
	assert.True(t, expired)
}

func TestStoppedSession(t *testing.T) {
	ctx := context.TODO()
	ss := NewSession("abc", NewSubject())

	assert.NoError(t, ss.Stop(ctx))
	assert.True(t, ss.Stopped())

	expired, err := ss.Expired(ctx)
	assert.NoError(t, err)
	assert.True(t, expired)

	assert.ErrorIs(t, ss.Touch(ctx), ErrStopped)
}
