package main

import (
	"log/slog"
	"strings"

	"github.com/pkg/errors"
	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/authz"
	"github.com/shrinex/warden/config"
	"github.com/shrinex/warden/login"
	"github.com/shrinex/warden/realm"
	"github.com/shrinex/warden/semgt"
)

// newManager assembles realms, the chain and session management from cfg.
// The returned func stops the session cleanup.
func newManager(cfg *config.Config, chain string, logger *slog.Logger) (*login.Manager, func(), error) {
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	entries, err := newEntries(cfg, chain, store, logger)
	if err != nil {
		return nil, nil, err
	}

	repository := semgt.NewRepository(cfg.Session.Timeout, cfg.Session.IdleTimeout, semgt.DefaultCleanupInterval)
	manager := login.NewBuilder().
		Chain(chain, entries...).
		Repository(repository).
		Registry(semgt.NewRegistry(repository)).
		Concurrency(cfg.Session.Concurrency).
		Logger(logger).
		Build()

	return manager, repository.StopCleanup, nil
}

func newStore(cfg *config.Config) (authc.Store, error) {
	if len(cfg.Realms) == 0 {
		return nil, errors.New("no realms configured")
	}

	realms := make([]authc.Realm, 0, len(cfg.Realms))
	for _, r := range cfg.Realms {
		users := make([]realm.User, 0, len(r.Users))
		for _, u := range r.Users {
			permissions := make([]authz.Permission, 0, len(u.Permissions))
			for _, p := range u.Permissions {
				permissions = append(permissions, authz.NewPermission(p.Name, p.Actions))
			}
			users = append(users, realm.User{
				Username:    u.Username,
				UniqueID:    u.UniqueID,
				Password:    u.Password,
				Permissions: permissions,
			})
		}

		m, err := realm.NewMemory(r.ID, users...)
		if err != nil {
			return nil, err
		}
		realms = append(realms, m)
	}

	return authc.NewAuthenticator(realms[0], realms[1:]...), nil
}

func newEntries(cfg *config.Config, chain string, store authc.Store, logger *slog.Logger) ([]login.Entry, error) {
	configured, ok := cfg.Chains[chain]
	if !ok {
		return nil, errors.Errorf("unknown chain %q", chain)
	}

	entries := make([]login.Entry, 0, len(configured))
	for i, e := range configured {
		flag, err := login.ParseFlag(e.Flag)
		if err != nil {
			return nil, errors.Wrapf(err, "chain %s entry %d", chain, i)
		}

		var factory login.Factory
		switch e.Module {
		case login.UsernamePasswordModuleName:
			factory = func() login.Module {
				return login.NewUsernamePasswordModule(store,
					login.WithStoreID(cfg.StoreID),
					login.WithLogger(logger))
			}
		default:
			return nil, errors.Errorf("chain %s entry %d: unknown module %q", chain, i, e.Module)
		}

		entries = append(entries, login.Entry{
			Name:    e.Module,
			Flag:    flag,
			Factory: factory,
			Options: login.NewOptions(e.Options),
		})
	}

	return entries, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parsePermission reads "name:actions", the actions defaulting to all
func parsePermission(s string) (authz.Permission, error) {
	name, actions, found := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if len(name) == 0 {
		return nil, errors.Errorf("invalid permission %q", s)
	}
	if !found || len(strings.TrimSpace(actions)) == 0 {
		actions = authz.AllActions
	}
	return authz.NewPermission(name, actions), nil
}
