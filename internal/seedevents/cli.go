package seedevents

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/voluntree/voluntree/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "seed_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the seed events tool.
func ShowHelp() {
	os.Stdout.WriteString(`Voluntree Seed Tool
===================

A concurrent tool for seeding the Voluntree recommendation service and
verifying the recommendations it returns.

Usage:
  go run cmd/seed-events/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -volunteers int
        Number of volunteers to create (default 200)
  -events int
        Number of events to create (default 1000)
  -interactions int
        Interactions recorded per volunteer (default 5)
  -attended int
        Completed submissions per volunteer (default 3)
  -limit int
        Recommendations requested per volunteer (default 10)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        Max time to wait for the rebuild queue to drain (default 2m)
  -output string
        Output file for the generated dataset (default: seed_dataset_TIMESTAMP.json)
  -log string
        Log file for seed output (default: seed_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -skip-verify
        Skip the recommendation verification step
  -help
        Show this help message

Examples:
  # Seed with default settings
  go run cmd/seed-events/main.go

  # Seed a larger catalogue with more workers
  go run cmd/seed-events/main.go -events 10000 -volunteers 1000 -workers 16

  # Seed against a different instance with verbose output
  go run cmd/seed-events/main.go -url http://localhost:8080 -verbose
`)
}
