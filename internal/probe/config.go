// Package probe is a smoke and load client for a running dashboard. It
// submits generated inputs to /api/predict concurrently and checks that
// every answer is internally consistent.
package probe

import "time"

// Config holds configuration for a probe run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Requests     int           // Number of inputs to generate
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	Seed         uint64        // Generator seed; equal seeds give equal inputs
	InvalidEvery int           // Every n-th input gets an unknown salary tier; 0 disables
	Verbose      bool          // Log every failure
}

// Stats holds run statistics.
type Stats struct {
	Generated    int
	Submitted    int
	Succeeded    int
	Rejected     int // 400s for inputs generated invalid on purpose
	Failed       int // transport errors and unexpected statuses
	Inconsistent int // 200s whose body contradicts its own label
	Churn        int
	NoChurn      int
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

// OK reports whether every request behaved as expected.
func (s *Stats) OK() bool {
	return s.Failed == 0 && s.Inconsistent == 0 && s.Submitted == s.Generated
}
