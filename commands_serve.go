package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"tildes-reader/scraper"
	"tildes-reader/server"
)

var servePort string

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (env PORT, default 8080).")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves groups, listings and topics as a read-only JSON API.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.Port
		if servePort != "" {
			port = servePort
		}

		// Structured JSON logs for the long-running service
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: cfg.LogLevel,
		}))
		slog.SetDefault(logger)

		src := &server.ScraperSource{
			Scraper: scraper.New(&http.Client{Timeout: cfg.Timeout}, cfg.BaseURL, logger),
		}
		srv := server.New(&server.Config{
			Source: src,
			Logger: logger,
		})

		logger.Info("Serving site", "base_url", cfg.BaseURL, "port", port)
		return srv.ListenAndServe(port)
	},
}
