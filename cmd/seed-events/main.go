package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/voluntree/voluntree/internal/seedevents"
)

// Default configuration constants.
const (
	defaultNumVolunteers   = 200
	defaultNumEvents       = 1000
	defaultInteractionsPer = 5
	defaultAttendedPer     = 3
	defaultRecommendLimit  = 10
	defaultWorkers         = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultProcessingWait  = 2 * time.Minute
	defaultRunTimeout      = 10 * time.Minute
)

func main() {
	var (
		baseURL      = flag.String("url", "http://localhost:9080", "Base URL of the service")
		volunteers   = flag.Int("volunteers", defaultNumVolunteers, "Number of volunteers to create")
		events       = flag.Int("events", defaultNumEvents, "Number of events to create")
		interactions = flag.Int("interactions", defaultInteractionsPer, "Interactions recorded per volunteer")
		attended     = flag.Int("attended", defaultAttendedPer, "Completed submissions per volunteer")
		limit        = flag.Int("limit", defaultRecommendLimit, "Recommendations requested per volunteer")
		workers      = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout      = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait         = flag.Duration("wait", defaultProcessingWait, "Max time to wait for the rebuild queue to drain")
		outputFile   = flag.String("output", "", "Output file for the generated dataset (default: seed_dataset_TIMESTAMP.json)")
		logFile      = flag.String("log", "", "Log file for seed output (default: seed_log_TIMESTAMP.log)")
		verbose      = flag.Bool("verbose", false, "Enable verbose logging")
		skipVerify   = flag.Bool("skip-verify", false, "Skip the recommendation verification step")
		help         = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seedevents.ShowHelp()
		return
	}

	// Setup logging
	if err := seedevents.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	// Create seed configuration
	config := &seedevents.Config{
		BaseURL:          *baseURL,
		NumVolunteers:    *volunteers,
		NumEvents:        *events,
		InteractionsPer:  *interactions,
		AttendedPer:      *attended,
		RecommendLimit:   *limit,
		Workers:          *workers,
		Timeout:          *timeout,
		ProcessingWait:   *wait,
		OutputFile:       *outputFile,
		LogFile:          *logFile,
		Verbose:          *verbose,
		SkipVerification: *skipVerify,
	}

	// Run the seed flow
	if err := seedevents.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Seed run failed: " + err.Error() + "\n")
		return
	}
}
