package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/socdash/socdash/internal/api"
	"github.com/socdash/socdash/internal/config"
	"github.com/socdash/socdash/internal/services"
)

func newSQLCmd(conf func() *config.Config) *cobra.Command {
	var execute bool

	cmd := &cobra.Command{
		Use:   "sql <request>",
		Short: "Draft SQL for a plain-language request and show the verdict",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := conf()
			out := cmd.OutOrStdout()

			_, pipeline, err := openModel(cfg)
			if err != nil {
				return err
			}

			candidate, err := pipeline.GenerateAndValidate(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if candidate.ExtractedSQL != nil {
				fmt.Fprintf(out, "Extracted: %s\n", *candidate.ExtractedSQL)
			}
			if !candidate.OK() {
				fmt.Fprintf(out, "Rejected: %s\n", candidate.Rejection.Reason)
				return nil
			}
			fmt.Fprintf(out, "Accepted: %s\n", candidate.Accepted.SQL())

			if !execute {
				return nil
			}
			eventStore, err := openStore(cfg, nil)
			if err != nil {
				return err
			}
			defer eventStore.Close()
			rows, err := services.NewQueryService(eventStore, pipeline, nil).Execute(cmd.Context(), candidate.Accepted)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(api.RowsToResponse(rows))
		},
	}

	cmd.Flags().BoolVar(&execute, "execute", false, "run the accepted statement against the event store")
	return cmd
}
