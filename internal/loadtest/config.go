// Package loadtest drives a running datastrike server with synthetic match
// files and checks the period summaries it returns.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL        string        // Base URL of the service
	Matches        int           // Number of match files to generate
	EventsPerMatch int           // Rows per generated file
	Workers        int           // Number of concurrent uploads
	Timeout        time.Duration // HTTP request timeout
	OutputDir      string        // Keep generated files here when set
	Seed           uint64        // Generator seed; equal seeds give equal files
	Verbose        bool          // Log every upload
}

// Stats holds run statistics.
type Stats struct {
	MatchesGenerated int
	EventsGenerated  int
	Uploads          int
	UploadsOK        int
	UploadsFailed    int
	Mismatches       int
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
}
