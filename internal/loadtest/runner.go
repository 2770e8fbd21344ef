package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/datastrike/pkg/logger"
)

const directoryPermission = 0o750

// ErrMismatch reports that at least one summary differed from the generated
// file.
var ErrMismatch = errors.New("period summary mismatch")

// Run executes the complete load test.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.Matches <= 0 || config.EventsPerMatch <= 0 {
		return nil, fmt.Errorf("matches and events must be positive, got %d and %d", config.Matches, config.EventsPerMatch)
	}
	workers := max(config.Workers, 1)
	log := logger.Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting load test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("matches", config.Matches),
		logger.Int("eventsPerMatch", config.EventsPerMatch),
		logger.Int("workers", workers),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.Timeout)
	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	matches, err := Generate(config.Seed, config.Matches, config.EventsPerMatch)
	if err != nil {
		return nil, fmt.Errorf("match generation failed: %w", err)
	}
	stats.MatchesGenerated = len(matches)
	stats.EventsGenerated = len(matches) * config.EventsPerMatch

	if config.OutputDir != "" {
		if err := saveMatches(config.OutputDir, matches); err != nil {
			log.Warn(ctx, "failed to save matches", logger.Error(err))
		}
	}

	var ok, failed, mismatched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, m := range matches {
		g.Go(func() error {
			got, err := client.UploadPeriods(gctx, config.BaseURL, m)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				log.Warn(gctx, "upload failed", logger.String("match", m.Name), logger.Error(err))
				return nil
			}
			if err := verify(m, got); err != nil {
				mismatched.Add(1)
				log.Warn(gctx, "summary mismatch", logger.Error(err))
				return nil
			}
			ok.Add(1)
			if config.Verbose {
				log.Info(gctx, "upload verified", logger.String("match", m.Name))
			}
			return nil
		})
	}
	waitErr := g.Wait()

	stats.UploadsOK = int(ok.Load())
	stats.UploadsFailed = int(failed.Load())
	stats.Mismatches = int(mismatched.Load())
	stats.Uploads = stats.UploadsOK + stats.UploadsFailed + stats.Mismatches
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if waitErr != nil {
		return stats, waitErr
	}
	if stats.Mismatches > 0 {
		return stats, fmt.Errorf("%w: %d of %d files", ErrMismatch, stats.Mismatches, stats.Uploads)
	}
	if stats.UploadsFailed > 0 {
		return stats, fmt.Errorf("%d of %d uploads failed", stats.UploadsFailed, stats.Uploads)
	}
	return stats, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

func saveMatches(dir string, matches []Match) error {
	if err := os.MkdirAll(dir, directoryPermission); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	for _, m := range matches {
		if err := os.WriteFile(filepath.Join(dir, m.Name), m.Body, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", m.Name, err)
		}
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var filesPerSecond float64
	if stats.Duration > 0 {
		filesPerSecond = float64(stats.Uploads) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("matchesGenerated", stats.MatchesGenerated),
		logger.Int("eventsGenerated", stats.EventsGenerated),
		logger.Int("uploads", stats.Uploads),
		logger.Int("uploadsOK", stats.UploadsOK),
		logger.Int("uploadsFailed", stats.UploadsFailed),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("filesPerSecond", filesPerSecond))
}
