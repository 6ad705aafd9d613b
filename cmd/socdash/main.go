package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/socdash/socdash/internal/config"
	"github.com/socdash/socdash/internal/database"
	"github.com/socdash/socdash/internal/llm"
	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/store"
	"github.com/socdash/socdash/internal/sqlguard"
)

func main() {
	var cfg *config.Config

	root := &cobra.Command{
		Use:           "socdash",
		Short:         "IDS triage and threat hunting backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if it exists (ignore error if file doesn't exist)
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				log.Printf("Failed to load .env file: %v", err)
			}

			loaded, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = loaded
			return nil
		},
	}

	conf := func() *config.Config { return cfg }
	root.AddCommand(
		newServeCmd(conf),
		newMigrateCmd(conf),
		newSQLCmd(conf),
		newSeedCmd(conf),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore connects to the configured event store
func openStore(cfg *config.Config, m *metrics.Metrics) (*store.GormStore, error) {
	db, err := database.Connect(cfg.StoreDriver, cfg.StoreDSN(), database.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		return nil, err
	}
	return store.NewGormStore(db, cfg.StoreTimeout, m), nil
}

// openModel builds the language model client and the SQL pipeline around it
func openModel(cfg *config.Config) (llm.LanguageModel, *sqlguard.Pipeline, error) {
	model, err := llm.New(llm.Config{
		Provider: cfg.LLMProvider,
		BaseURL:  cfg.LLMBaseURL,
		Model:    cfg.LLMModel,
		APIKey:   cfg.LLMAPIKey,
		Timeout:  cfg.LLMTimeout,
	})
	if err != nil {
		return nil, nil, err
	}

	schema, err := llm.LoadSchema(cfg.SchemaFile)
	if err != nil {
		return nil, nil, err
	}
	return model, sqlguard.NewPipeline(model, llm.SQLPromptFunc(schema)), nil
}
