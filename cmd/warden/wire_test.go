package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shrinex/warden/authz"
	"github.com/shrinex/warden/callback"
	"github.com/shrinex/warden/config"
	"github.com/shrinex/warden/login"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Realms = []config.Realm{{
		ID: cfg.StoreID,
		Users: []config.User{{
			Username:    "alice",
			UniqueID:    "alice-unique-id",
			Password:    "correct-pw",
			Permissions: []config.Permission{{Name: "/admin/users", Actions: "read,write"}},
		}},
	}}
	return &cfg
}

func TestNewManager(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager, cleanup, err := newManager(testConfig(), config.DefaultChain, logger)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	handler := &callback.StaticHandler{Name: "alice", Password: []rune("correct-pw")}
	ctx, err := manager.Login(context.Background(), handler)
	require.NoError(t, err)

	subject, err := manager.Subject(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice-unique-id", subject.Principals()[0].Name())
	assert.True(t, manager.IsAuthorized(ctx, authz.NewPermission("/admin/users", "write")))

	_, err = manager.Logout(ctx)
	assert.NoError(t, err)

	handler = &callback.StaticHandler{Name: "alice", Password: []rune("wrong-pw")}
	_, err = manager.Login(context.Background(), handler)
	assert.ErrorIs(t, err, login.ErrInvalidCredentials)
}

func TestNewManagerUnknownChain(t *testing.T) {
	_, _, err := newManager(testConfig(), "admin", slog.Default())
	assert.Error(t, err)
}

func TestNewManagerUnknownModule(t *testing.T) {
	cfg := testConfig()
	cfg.Chains["default"] = []config.Entry{{Module: "kerberos"}}

	_, _, err := newManager(cfg, config.DefaultChain, slog.Default())
	assert.ErrorContains(t, err, "kerberos")
}

func TestNewManagerWithoutRealms(t *testing.T) {
	cfg := config.Defaults()

	_, _, err := newManager(&cfg, config.DefaultChain, slog.Default())
	assert.Error(t, err)
}

func TestParsePermission(t *testing.T) {
	p, err := parsePermission("/admin/users:read,write")
	require.NoError(t, err)
	assert.Equal(t, "/admin/users", p.Name())
	assert.Equal(t, "read,write", p.Actions())

	p, err = parsePermission("/reports")
	require.NoError(t, err)
	assert.Equal(t, authz.AllActions, p.Actions())

	_, err = parsePermission(":read")
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
