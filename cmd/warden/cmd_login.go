package main

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/shrinex/warden/callback"
	"github.com/shrinex/warden/config"
	"github.com/spf13/cobra"
)

type loginResult struct {
	Principal  string          `json:"principal"`
	Session    string          `json:"session"`
	Authorized map[string]bool `json:"authorized,omitempty"`
}

func loginCmd() *cobra.Command {
	var (
		chain  string
		checks []string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Prompt for credentials and run a login chain.",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, cleanup, err := newManager(rootConfig, chain, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			handler := callback.NewTerminalHandler(os.Stdin, cmd.ErrOrStderr())
			ctx, err := manager.Login(cmd.Context(), handler)
			if err != nil {
				return errors.Wrap(err, "login")
			}

			session, err := manager.Session(ctx)
			if err != nil {
				return err
			}

			result := loginResult{Session: session.Token()}
			if principals := session.Subject().Principals(); len(principals) != 0 {
				result.Principal = principals[0].Name()
			}

			for _, check := range checks {
				permission, err := parsePermission(check)
				if err != nil {
					return err
				}
				if result.Authorized == nil {
					result.Authorized = make(map[string]bool)
				}
				result.Authorized[check] = manager.IsAuthorized(ctx, permission)
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}

			_, err = manager.Logout(ctx)
			return err
		},
	}

	cmd.Flags().StringVar(&chain, "chain", config.DefaultChain, "Login chain to run.")
	cmd.Flags().StringArrayVar(&checks, "check", nil, "Permission to check after login, as name:actions.")

	return cmd
}
