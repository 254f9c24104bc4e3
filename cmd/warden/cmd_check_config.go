package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "Load and validate the config file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			users := 0
			for _, r := range rootConfig.Realms {
				users += len(r.Users)
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "config ok: %d realm(s), %d user(s), %d chain(s)\n",
				len(rootConfig.Realms), users, len(rootConfig.Chains))
			return err
		},
	}
}
