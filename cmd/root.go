package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/cra/internal/output"
	"github.com/joescharf/cra/internal/store"
	"github.com/joescharf/cra/internal/summarize"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store

	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cra",
	Short: "Code Review Assistant - static checks plus LLM review summaries",
	Long: `cra reviews batches of source files: a small set of static
lint-style checks runs over each file, an optional LLM pass produces a
prose summary, and the combined result is persisted as a review that can
be fetched, listed, exported, or deleted later.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/cra/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "cra")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CRA")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	home, _ := os.UserHomeDir()
	defaultConfigDir := filepath.Join(home, ".config", "cra")

	viper.SetDefault("db_path", filepath.Join(defaultConfigDir, "cra.db"))
	viper.SetDefault("port", 8080)
	viper.SetDefault("llm.enabled", true)
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.backend", "openai")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.total_chars", 16000)
	viper.SetDefault("llm.per_file_chars", 4000)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose

	// The store is initialized lazily so config/version commands run
	// without touching a db.
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// llmConfig builds the immutable summarization config from viper. The env
// fallback mirrors the config key so CRA_LLM_API_KEY or OPENAI_API_KEY both
// work.
func llmConfig() summarize.Config {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	return summarize.Config{
		Enabled:      viper.GetBool("llm.enabled"),
		APIKey:       apiKey,
		BaseURL:      viper.GetString("llm.base_url"),
		Model:        viper.GetString("llm.model"),
		Backend:      viper.GetString("llm.backend"),
		PerFileChars: viper.GetInt("llm.per_file_chars"),
		TotalChars:   viper.GetInt("llm.total_chars"),
	}
}
