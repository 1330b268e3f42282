package probe

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/okian/churnboard/pkg/logger"
)

// Run executes a complete probe against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Named("probe")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting churn probe",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Any("seed", cfg.Seed))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	cases := Generate(cfg)
	stats.Generated = len(cases)

	submit(ctx, cfg, client, cases, stats, log)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "probe finished",
		logger.Int("submitted", stats.Submitted),
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("inconsistent", stats.Inconsistent),
		logger.String("duration", stats.Duration.String()))
	return stats, ctx.Err()
}

type result int

const (
	resultSucceeded result = iota
	resultRejected
	resultFailed
	resultInconsistent
)

func submit(ctx context.Context, cfg *Config, client *HTTPClient, cases []Case, stats *Stats, log logger.Logger) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan Case, workers*2)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	record := func(r result, churn bool) {
		mu.Lock()
		defer mu.Unlock()
		stats.Submitted++
		switch r {
		case resultSucceeded:
			stats.Succeeded++
			if churn {
				stats.Churn++
			} else {
				stats.NoChurn++
			}
		case resultRejected:
			stats.Rejected++
		case resultFailed:
			stats.Failed++
		case resultInconsistent:
			stats.Inconsistent++
		}
	}

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tc := range jobs {
				status, resp, err := client.Predict(ctx, tc)
				switch {
				case err != nil:
					if cfg.Verbose {
						log.Warn(ctx, "request failed", logger.Error(err))
					}
					record(resultFailed, false)
				case !tc.Valid && status == http.StatusBadRequest:
					record(resultRejected, false)
				case !tc.Valid || status != http.StatusOK:
					if cfg.Verbose {
						log.Warn(ctx, "unexpected status", logger.Int("status", status), logger.Bool("valid_input", tc.Valid))
					}
					record(resultFailed, false)
				default:
					if err := Verify(resp); err != nil {
						log.Error(ctx, "inconsistent response", logger.Error(err))
						record(resultInconsistent, false)
						continue
					}
					record(resultSucceeded, resp.Label == 1)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, tc := range cases {
			select {
			case <-ctx.Done():
				return
			case jobs <- tc:
			}
		}
	}()

	wg.Wait()
}
