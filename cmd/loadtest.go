package main

import (
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/datastrike/internal/loadtest"
)

const (
	defaultMatches        = 50
	defaultEventsPerMatch = 1500
	defaultUploadTimeout  = 30 * time.Second
)

func newLoadTestCmd() *cobra.Command {
	cfg := &loadtest.Config{}
	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Upload synthetic matches to a running server and verify the summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := loadtest.Run(cmd.Context(), cfg)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Matches, "matches", defaultMatches, "number of match files to upload")
	f.IntVar(&cfg.EventsPerMatch, "events", defaultEventsPerMatch, "rows per match file")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "concurrent uploads")
	f.DurationVar(&cfg.Timeout, "timeout", defaultUploadTimeout, "HTTP request timeout")
	f.StringVar(&cfg.OutputDir, "output", "", "keep the generated files in this directory")
	f.Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "generator seed")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every verified upload")
	return cmd
}
