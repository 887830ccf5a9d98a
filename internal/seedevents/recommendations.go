package seedevents

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// retrieveRecommendations fetches recommendations for every volunteer
// concurrently. Failed retrievals leave a nil entry.
func retrieveRecommendations(ctx context.Context, config *Config, ds *Dataset, stats *Stats) (map[string]*Result, error) {
	log.Printf("Retrieving recommendations for %d volunteers with %d workers...",
		len(ds.Volunteers), config.Workers)

	client := newHTTPClient(config.Timeout)

	results := make([]*Result, len(ds.Volunteers))
	var (
		retrieved int64
		failed    int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					volunteerID := ds.Volunteers[index].ID
					result, err := retrieveSingleRecommendation(ctx, client, config, volunteerID)

					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("failed to get recommendations for %s: %v", volunteerID, err)
						}
					} else {
						results[index] = result
						atomic.AddInt64(&retrieved, 1)
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&retrieved) + atomic.LoadInt64(&failed)
						log.Printf("Recommendations: %d/%d retrieved (success: %d, failed: %d)",
							total, len(ds.Volunteers), atomic.LoadInt64(&retrieved), atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range ds.Volunteers {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	byVolunteer := make(map[string]*Result, len(ds.Volunteers))
	for i, result := range results {
		if result != nil {
			byVolunteer[ds.Volunteers[i].ID] = result
			if len(result.Recommendations) == 0 {
				stats.ColdStarts++
			}
		}
	}

	stats.ResultsRetrieved = len(byVolunteer)
	stats.ResultsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("Recommendation retrieval completed: retrieved %d, failed %d, cold starts %d",
		stats.ResultsRetrieved, stats.ResultsFailed, stats.ColdStarts)

	return byVolunteer, nil
}

// retrieveSingleRecommendation fetches recommendations for one volunteer.
func retrieveSingleRecommendation(ctx context.Context, client *HTTPClient, config *Config, volunteerID string) (*Result, error) {
	url := fmt.Sprintf("%s/recommendations/%s?limit=%d", config.BaseURL, volunteerID, config.RecommendLimit)

	resp, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var result Result
	if err := unmarshalJSON(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}
