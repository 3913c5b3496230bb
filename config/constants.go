package config

import "time"

const (
	// Directory paths for local/batch mode
	InputDir  = "input"
	OutputDir = "output"

	// Processing configuration
	MaxConcurrentJobs = 2
	JobBatchDelay     = 2 * time.Second

	// Finished reels
	OutputContentType = "video/mp4"

	// Request status retention in Redis
	StatusTTL = 24 * time.Hour
)
