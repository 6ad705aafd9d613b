package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/socdash/socdash/internal/config"
	"github.com/socdash/socdash/internal/seed"
)

func newSeedCmd(conf func() *config.Config) *cobra.Command {
	var (
		count  int
		spread time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo events into the event store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}

			eventStore, err := openStore(conf(), nil)
			if err != nil {
				return err
			}
			defer eventStore.Close()

			events := seed.Events(seed.Options{Count: count, Spread: spread})
			if err := eventStore.InsertEvents(cmd.Context(), events); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d demo events\n", len(events))
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1000, "number of events to insert")
	cmd.Flags().DurationVar(&spread, "spread", time.Hour, "spread observation times over this look-back")
	return cmd
}
