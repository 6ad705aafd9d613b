package main

import (
	"github.com/spf13/cobra"

	"github.com/socdash/socdash/internal/config"
)

func newMigrateCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the events and triage tables if they are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := conf()
			eventStore, err := openStore(cfg, nil)
			if err != nil {
				return err
			}
			defer eventStore.Close()
			return eventStore.Migrate(cfg.StoreDriver)
		},
	}
}
