package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage cra configuration.

Running bare 'cra config' is the same as 'cra config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

func configShowRun() error {
	settings := map[string]any{
		"db_path": viper.GetString("db_path"),
		"port":    viper.GetInt("port"),
		"llm": map[string]any{
			"enabled":        viper.GetBool("llm.enabled"),
			"backend":        viper.GetString("llm.backend"),
			"base_url":       viper.GetString("llm.base_url"),
			"model":          viper.GetString("llm.model"),
			"total_chars":    viper.GetInt("llm.total_chars"),
			"per_file_chars": viper.GetInt("llm.per_file_chars"),
			// api_key deliberately omitted
			"api_key_set": llmConfig().APIKey != "",
		},
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Fprint(ui.Out, string(data))
	return nil
}

const configTemplate = `# cra configuration
# db_path: ~/.config/cra/cra.db
# port: 8080

llm:
  # enabled: true
  # backend: openai        # or: anthropic
  # api_key: ""            # or set CRA_LLM_API_KEY / OPENAI_API_KEY
  # base_url: ""           # defaults to https://api.openai.com/v1
  # model: gpt-4o-mini
  # total_chars: 16000
  # per_file_chars: 4000
`

func configInitRun() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	configDir := filepath.Join(home, ".config", "cra")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	ui.Success("Wrote %s", path)
	return nil
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite existing config file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
