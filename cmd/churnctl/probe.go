package main

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/okian/churnboard/internal/probe"
)

var errProbeFailed = errors.New("probe found failures")

func newProbeCmd(_ *rootOptions) *cobra.Command {
	cfg := &probe.Config{
		BaseURL:      "http://localhost:9080",
		Requests:     1000,
		Workers:      runtime.NumCPU() * 2,
		Timeout:      10 * time.Second,
		Seed:         1,
		InvalidEvery: 20,
	}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Submit generated inputs to a running dashboard and check every answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := probe.Run(cmd.Context(), cfg)
			if stats != nil {
				printStats(cmd.OutOrStdout(), stats)
			}
			if err != nil {
				return err
			}
			if !stats.OK() {
				return errProbeFailed
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", cfg.BaseURL, "base URL of the dashboard")
	f.IntVar(&cfg.Requests, "requests", cfg.Requests, "number of inputs to submit")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent workers")
	f.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP request timeout")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "generator seed")
	f.IntVar(&cfg.InvalidEvery, "invalid-every", cfg.InvalidEvery, "make every n-th input invalid; 0 disables")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every failed request")
	return cmd
}

func printStats(w io.Writer, s *probe.Stats) {
	var rate float64
	if s.Duration > 0 {
		rate = float64(s.Submitted) / s.Duration.Seconds()
	}

	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"metric", "value"})
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, row := range [][2]string{
		{"generated", strconv.Itoa(s.Generated)},
		{"submitted", strconv.Itoa(s.Submitted)},
		{"succeeded", strconv.Itoa(s.Succeeded)},
		{"  churn", strconv.Itoa(s.Churn)},
		{"  no churn", strconv.Itoa(s.NoChurn)},
		{"rejected (expected)", strconv.Itoa(s.Rejected)},
		{"failed", strconv.Itoa(s.Failed)},
		{"inconsistent", strconv.Itoa(s.Inconsistent)},
		{"duration", s.Duration.Round(time.Millisecond).String()},
		{"requests/s", fmt.Sprintf("%.1f", rate)},
	} {
		t.Append(row[:])
	}
	t.Render()

	if s.OK() {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "PASS")
	} else {
		color.New(color.FgRed, color.Bold).Fprintln(w, "FAIL")
	}
}
