package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tildes-reader/scraper"
)

var (
	cfg     *config
	logger  *slog.Logger
	scr     *scraper.Scraper
	baseURL string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "tildes",
	Short:         "tildes reads groups, topic listings and comment trees from tildes.net.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("base-url") {
			cfg.BaseURL = baseURL
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Timeout = timeout
		}

		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		}))
		slog.SetDefault(logger)

		scr = scraper.New(&http.Client{Timeout: cfg.Timeout}, cfg.BaseURL, logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", scraper.DefaultBaseURL, "Site to read from (env TILDES_BASE_URL).")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP client timeout (env TILDES_HTTP_TIMEOUT).")
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, allowed)
}
