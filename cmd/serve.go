package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/cra/internal/api"
	"github.com/joescharf/cra/internal/review"
	"github.com/joescharf/cra/internal/rules"
	"github.com/joescharf/cra/internal/summarize"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review API server",
	Long: `Start the HTTP API server for uploading file batches and managing
reviews. By default it listens on port 8080. Use --port to change it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}

		cfg := llmConfig()
		orch := review.New(s, rules.Default(), summarize.New(cfg))
		srv := api.NewServer(s, orch, cfg)

		addr := fmt.Sprintf(":%d", viper.GetInt("port"))
		ui.Info("Serving review API at http://localhost%s", addr)
		return http.ListenAndServe(addr, srv.Router())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	_ = viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}
