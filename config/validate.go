package config

import (
	stderrors "errors"
	"strings"

	"github.com/pkg/errors"
)

var validFlags = map[string]bool{
	"": true, "required": true, "requisite": true, "sufficient": true, "optional": true,
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate reports every problem found, joined
func (c *Config) Validate() error {
	var errs []error

	if !validLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, errors.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}

	if len(strings.TrimSpace(c.StoreID)) == 0 {
		errs = append(errs, errors.New("store_id is required"))
	}

	realmIDs := make(map[string]bool)
	for i, r := range c.Realms {
		if len(strings.TrimSpace(r.ID)) == 0 {
			errs = append(errs, errors.Errorf("realms[%d].id is required", i))
		}
		realmIDs[r.ID] = true

		usernames := make(map[string]bool)
		for j, u := range r.Users {
			if len(strings.TrimSpace(u.Username)) == 0 {
				errs = append(errs, errors.Errorf("realms[%d].users[%d].username is required", i, j))
				continue
			}
			if usernames[u.Username] {
				errs = append(errs, errors.Errorf("realms[%d]: duplicate user %q", i, u.Username))
			}
			usernames[u.Username] = true

			for k, p := range u.Permissions {
				if len(strings.TrimSpace(p.Name)) == 0 {
					errs = append(errs, errors.Errorf("realms[%d].users[%d].permissions[%d].name is required", i, j, k))
				}
			}
		}
	}

	if len(c.Realms) != 0 && !realmIDs[c.StoreID] {
		errs = append(errs, errors.Errorf("no realm has store_id %q", c.StoreID))
	}

	if len(c.Chains) == 0 {
		errs = append(errs, errors.New("at least one chain is required"))
	}
	for name, entries := range c.Chains {
		if len(entries) == 0 {
			errs = append(errs, errors.Errorf("chains.%s has no entries", name))
		}
		for i, e := range entries {
			if len(strings.TrimSpace(e.Module)) == 0 {
				errs = append(errs, errors.Errorf("chains.%s[%d].module is required", name, i))
			}
			if !validFlags[strings.ToLower(strings.TrimSpace(e.Flag))] {
				errs = append(errs, errors.Errorf("chains.%s[%d].flag %q is invalid", name, i, e.Flag))
			}
		}
	}

	if c.Session.Timeout < 0 || c.Session.IdleTimeout < 0 {
		errs = append(errs, errors.New("session timeouts must not be negative"))
	}
	if c.Session.Concurrency < 0 {
		errs = append(errs, errors.New("session.concurrency must not be negative"))
	}

	return stderrors.Join(errs...)
}
