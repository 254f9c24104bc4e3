// Package config loads the YAML configuration of realms, login chains and
// sessions.
package config

import (
	"time"

	"github.com/shrinex/warden/authc"
	"github.com/shrinex/warden/semgt"
)

const DefaultChain = "default"

type (
	Config struct {
		LogLevel string             `yaml:"log_level"`
		StoreID  string             `yaml:"store_id"`
		Realms   []Realm            `yaml:"realms"`
		Chains   map[string][]Entry `yaml:"chains"`
		Session  Session            `yaml:"session"`
	}

	Realm struct {
		ID    string `yaml:"id"`
		Users []User `yaml:"users"`
	}

	User struct {
		Username    string       `yaml:"username"`
		UniqueID    string       `yaml:"unique_id"`
		Password    string       `yaml:"password"`
		Permissions []Permission `yaml:"permissions"`
	}

	Permission struct {
		Name    string `yaml:"name"`
		Actions string `yaml:"actions"`
	}

	// Entry is one module of a login chain
	Entry struct {
		Module  string            `yaml:"module"`
		Flag    string            `yaml:"flag"`
		Options map[string]string `yaml:"options"`
	}

	Session struct {
		Timeout     time.Duration `yaml:"timeout"`
		IdleTimeout time.Duration `yaml:"idle_timeout"`
		Concurrency int           `yaml:"concurrency"`
	}
)

// Defaults returns a config with one required username-password chain and
// no users
func Defaults() Config {
	return Config{
		LogLevel: "info",
		StoreID:  authc.PrimaryStore,
		Chains: map[string][]Entry{
			DefaultChain: {{Module: "username-password", Flag: "required"}},
		},
		Session: Session{
			Timeout:     semgt.DefaultTimeout,
			IdleTimeout: semgt.DefaultIdleTimeout,
		},
	}
}
