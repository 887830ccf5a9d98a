package seedevents

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/voluntree/voluntree/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete seed and verification flow.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting voluntree seed run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("volunteers", config.NumVolunteers),
		logger.Int("events", config.NumEvents),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Int("recommendLimit", config.RecommendLimit),
		logger.String("logFile", config.LogFile),
		logger.Bool("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate the dataset
	ds, err := generateDataset(ctx, config, stats)
	if err != nil {
		return fmt.Errorf("dataset generation failed: %w", err)
	}

	// Step 3: Seed volunteers, events, interactions and submissions
	if err := seedDataset(ctx, config, ds, stats); err != nil {
		return fmt.Errorf("dataset seeding failed: %w", err)
	}

	// Step 4: Trigger embedding rebuilds
	if err := triggerRebuilds(ctx, config, ds, stats); err != nil {
		return fmt.Errorf("rebuild triggering failed: %w", err)
	}

	// Step 5: Wait for the rebuild queue to drain
	if err := waitForProcessing(ctx, config); err != nil {
		return fmt.Errorf("waiting for processing failed: %w", err)
	}

	// Step 6: Retrieve recommendations
	results, err := retrieveRecommendations(ctx, config, ds, stats)
	if err != nil {
		return fmt.Errorf("recommendation retrieval failed: %w", err)
	}

	// Step 7: Verify results
	if !config.SkipVerification {
		if err := verifyResults(config, ds, results); err != nil {
			return fmt.Errorf("result verification failed: %w", err)
		}
	}

	// Step 8: Save the dataset to file
	if err := saveDatasetToFile(ctx, config, ds); err != nil {
		logger.Get().Warn(ctx, "failed to save dataset to file", logger.Error(err))
	}

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "seed run completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// statsResponse carries the queue fields from the /stats endpoint.
type statsResponse struct {
	QueueLength int   `json:"queueLength"`
	PendingJobs int64 `json:"pendingJobs"`
}

// waitForProcessing polls /stats until the rebuild queue drains or the
// configured wait expires.
func waitForProcessing(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "waiting for embedding rebuilds to finish",
		logger.String("maxWait", config.ProcessingWait.String()))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/stats"
	deadline := time.Now().Add(config.ProcessingWait)

	for {
		resp, err := client.Get(ctx, url)
		if err == nil {
			body, readErr := readResponseBody(resp)
			if readErr == nil && resp.StatusCode == StatusOK {
				var sr statsResponse
				if err := unmarshalJSON(body, &sr); err == nil && sr.QueueLength == 0 && sr.PendingJobs == 0 {
					logger.Get().Info(ctx, "rebuild queue drained")
					return nil
				}
			}
		}

		if time.Now().After(deadline) {
			logger.Get().Warn(ctx, "rebuild queue did not drain in time; continuing anyway")
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ProcessingPollInterval):
		}
	}
}

// saveDatasetToFile saves the generated dataset to a JSON file.
func saveDatasetToFile(ctx context.Context, config *Config, ds *Dataset) error {
	if len(ds.Volunteers) == 0 && len(ds.Events) == 0 {
		return fmt.Errorf("no dataset to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "seed_dataset_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := marshalJSON(ds)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}

	if err := os.WriteFile(filename, data, logFilePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	logger.Get().Info(ctx, "dataset saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final seed run statistics.
func displayFinalStats(stats *Stats) {
	var successRate float64

	if stats.ResultsRetrieved+stats.ResultsFailed > 0 {
		successRate = float64(stats.ResultsRetrieved) /
			float64(stats.ResultsRetrieved+stats.ResultsFailed) * PercentageMultiplier
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("volunteersCreated", stats.VolunteersCreated),
		logger.Int("eventsCreated", stats.EventsCreated),
		logger.Int("interactionsRecorded", stats.InteractionsRecorded),
		logger.Int("submissionsRecorded", stats.SubmissionsRecorded),
		logger.Int("rebuildsAccepted", stats.RebuildsAccepted),
		logger.Int("rebuildsCoalesced", stats.RebuildsCoalesced),
		logger.Int("rebuildsFailed", stats.RebuildsFailed),
		logger.Int("resultsRetrieved", stats.ResultsRetrieved),
		logger.Int("resultsFailed", stats.ResultsFailed),
		logger.Int("coldStarts", stats.ColdStarts),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("recommendationSuccessRate", successRate))
}
