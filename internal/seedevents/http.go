package seedevents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// postAll sends the given payloads to url concurrently and returns how many
// were acknowledged with wantStatus.
func postAll(ctx context.Context, config *Config, url, label string, payloads []interface{}, wantStatus int) (ok int, failed int) {
	if len(payloads) == 0 {
		return 0, 0
	}

	log.Printf("Submitting %d %s with %d workers...", len(payloads), label, config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		successful int64
		failedCnt  int64
		submitted  int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	payloadChan := make(chan interface{}, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for payload := range payloadChan {
				select {
				case <-ctx.Done():
					return
				default:
					resp, err := client.Post(ctx, url, payload)
					atomic.AddInt64(&submitted, 1)
					if err != nil {
						atomic.AddInt64(&failedCnt, 1)
						if config.Verbose {
							log.Printf("failed to submit %s: %v", label, err)
						}
						continue
					}
					body, _ := readResponseBody(resp)
					if resp.StatusCode == wantStatus {
						atomic.AddInt64(&successful, 1)
					} else {
						atomic.AddInt64(&failedCnt, 1)
						if config.Verbose {
							log.Printf("unexpected status %d for %s: %s", resp.StatusCode, label, string(body))
						}
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						total := atomic.LoadInt64(&submitted)
						succ := atomic.LoadInt64(&successful)
						fail := atomic.LoadInt64(&failedCnt)
						log.Printf("Progress: %d/%d %s submitted (success: %d, failed: %d)",
							total, len(payloads), label, succ, fail)
					}
				}
			}
		}()
	}

	go func() {
		defer close(payloadChan)
		for _, payload := range payloads {
			select {
			case <-ctx.Done():
				return
			case payloadChan <- payload:
			}
		}
	}()

	wg.Wait()

	log.Printf("Submitted %s: success %d, failed %d",
		label, atomic.LoadInt64(&successful), atomic.LoadInt64(&failedCnt))

	return int(atomic.LoadInt64(&successful)), int(atomic.LoadInt64(&failedCnt))
}

// seedDataset pushes the generated dataset into the service.
func seedDataset(ctx context.Context, config *Config, ds *Dataset, stats *Stats) error {
	volunteers := make([]interface{}, len(ds.Volunteers))
	for i := range ds.Volunteers {
		volunteers[i] = ds.Volunteers[i]
	}
	ok, failed := postAll(ctx, config, config.BaseURL+"/volunteers", "volunteers", volunteers, StatusCreated)
	stats.VolunteersCreated = ok
	if ok == 0 && failed > 0 {
		return fmt.Errorf("all volunteer submissions failed")
	}

	events := make([]interface{}, len(ds.Events))
	for i := range ds.Events {
		events[i] = ds.Events[i]
	}
	ok, failed = postAll(ctx, config, config.BaseURL+"/events", "events", events, StatusCreated)
	stats.EventsCreated = ok
	if ok == 0 && failed > 0 {
		return fmt.Errorf("all event submissions failed")
	}

	interactions := make([]interface{}, len(ds.Interactions))
	for i := range ds.Interactions {
		interactions[i] = ds.Interactions[i]
	}
	ok, _ = postAll(ctx, config, config.BaseURL+"/interactions", "interactions", interactions, StatusCreated)
	stats.InteractionsRecorded = ok

	submissions := make([]interface{}, len(ds.Submissions))
	for i := range ds.Submissions {
		submissions[i] = ds.Submissions[i]
	}
	ok, _ = postAll(ctx, config, config.BaseURL+"/submissions", "submissions", submissions, StatusCreated)
	stats.SubmissionsRecorded = ok

	return nil
}

// triggerRebuilds requests embedding rebuilds for every volunteer and event.
func triggerRebuilds(ctx context.Context, config *Config, ds *Dataset, stats *Stats) error {
	log.Printf("Triggering embedding rebuilds for %d volunteers and %d events...",
		len(ds.Volunteers), len(ds.Events))

	client := newHTTPClient(config.Timeout)

	type rebuild struct {
		url  string
		body RebuildRequest
	}

	jobs := make([]rebuild, 0, len(ds.Volunteers)+len(ds.Events))
	for _, e := range ds.Events {
		jobs = append(jobs, rebuild{
			url:  config.BaseURL + "/embeddings/event",
			body: RebuildRequest{EventID: e.ID},
		})
	}
	for _, v := range ds.Volunteers {
		jobs = append(jobs, rebuild{
			url:  config.BaseURL + "/embeddings/volunteer",
			body: RebuildRequest{VolunteerID: v.ID},
		})
	}

	var (
		accepted  int64
		coalesced int64
		failed    int64
	)

	jobChan := make(chan rebuild, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range jobChan {
				select {
				case <-ctx.Done():
					return
				default:
					result := triggerSingleRebuild(ctx, client, job.url, job.body, config)
					switch result {
					case "accepted":
						atomic.AddInt64(&accepted, 1)
					case "coalesced":
						atomic.AddInt64(&coalesced, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}
				}
			}
		}()
	}

	go func() {
		defer close(jobChan)
		for _, job := range jobs {
			select {
			case <-ctx.Done():
				return
			case jobChan <- job:
			}
		}
	}()

	wg.Wait()

	stats.RebuildsAccepted = int(atomic.LoadInt64(&accepted))
	stats.RebuildsCoalesced = int(atomic.LoadInt64(&coalesced))
	stats.RebuildsFailed = int(atomic.LoadInt64(&failed))

	log.Printf("Rebuilds triggered: accepted %d, coalesced %d, failed %d",
		stats.RebuildsAccepted, stats.RebuildsCoalesced, stats.RebuildsFailed)

	if stats.RebuildsAccepted == 0 && stats.RebuildsFailed > 0 {
		return fmt.Errorf("all rebuild triggers failed")
	}
	return nil
}

// triggerSingleRebuild fires one rebuild request. A full queue is retried
// once after a short pause before it counts as a failure.
func triggerSingleRebuild(ctx context.Context, client *HTTPClient, url string, body RebuildRequest, config *Config) string {
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := client.Post(ctx, url, body)
		if err != nil {
			return "failed"
		}
		respBody, err := readResponseBody(resp)
		if err != nil {
			return "failed"
		}

		switch resp.StatusCode {
		case StatusAccepted:
			return "accepted"
		case StatusOK:
			var rr RebuildResponse
			if err := unmarshalJSON(respBody, &rr); err == nil && rr.Coalesced {
				return "coalesced"
			}
			return "accepted"
		case http.StatusTooManyRequests:
			// Queue is full; back off and retry once.
			select {
			case <-ctx.Done():
				return "failed"
			case <-time.After(ProcessingPollInterval):
			}
			continue
		default:
			if config.Verbose {
				log.Printf("rebuild failed with HTTP %d: %s", resp.StatusCode, string(respBody))
			}
			return "failed"
		}
	}
	return "failed"
}
