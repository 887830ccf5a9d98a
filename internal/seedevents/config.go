package seedevents

import "time"

// Config holds configuration for the seed run
type Config struct {
	BaseURL          string        // Base URL of the service
	NumVolunteers    int           // Number of volunteers to create
	NumEvents        int           // Number of events to create
	InteractionsPer  int           // Interactions recorded per volunteer
	AttendedPer      int           // Completed submissions per volunteer
	RecommendLimit   int           // Recommendations requested per volunteer
	Workers          int           // Number of concurrent workers
	Timeout          time.Duration // HTTP request timeout
	ProcessingWait   time.Duration // Max time to wait for the rebuild queue to drain
	OutputFile       string        // Output file for the generated dataset
	LogFile          string        // Log file for seed output
	Verbose          bool          // Enable verbose logging
	SkipVerification bool          // Skip the recommendation verification step
}

// Volunteer is the wire shape for volunteer ingestion.
type Volunteer struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Interests []string `json:"interests"`
	Skills    []string `json:"skills"`
}

// Event is the wire shape for event ingestion.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	PlaceName   string `json:"place_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
}

// Interaction is the wire shape for interaction ingestion.
type Interaction struct {
	VolunteerID string `json:"volunteer_id"`
	EventID     string `json:"event_id"`
	Type        string `json:"type"`
}

// Submission is the wire shape for submission ingestion.
type Submission struct {
	VolunteerID string `json:"volunteer_id"`
	EventID     string `json:"event_id"`
	Status      string `json:"status"`
}

// RebuildRequest is the wire shape for embedding rebuild triggers.
type RebuildRequest struct {
	VolunteerID string `json:"volunteer_id,omitempty"`
	EventID     string `json:"event_id,omitempty"`
}

// AckResponse is the response from ingestion endpoints.
type AckResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// RebuildResponse is the response from rebuild endpoints.
type RebuildResponse struct {
	Status    string `json:"status"`
	Coalesced bool   `json:"coalesced"`
}

// RecommendedEvent is an event inside a recommendation response.
type RecommendedEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	StartDate string `json:"start_date"`
}

// Recommendation is a single scored entry in a recommendation response.
type Recommendation struct {
	Event RecommendedEvent `json:"event"`
	Score float64          `json:"score"`
}

// Result is the full recommendation response for one volunteer.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
	Message         string           `json:"message,omitempty"`
	BasedOnEvents   int              `json:"based_on_events,omitempty"`
}

// Dataset holds everything generated during a seed run.
type Dataset struct {
	Volunteers   []Volunteer   `json:"volunteers"`
	Events       []Event       `json:"events"`
	Interactions []Interaction `json:"interactions"`
	Submissions  []Submission  `json:"submissions"`
}

// Stats holds seed run statistics
type Stats struct {
	VolunteersCreated    int
	EventsCreated        int
	InteractionsRecorded int
	SubmissionsRecorded  int
	RebuildsAccepted     int
	RebuildsCoalesced    int
	RebuildsFailed       int
	ResultsRetrieved     int
	ResultsFailed        int
	ColdStarts           int
	StartTime            time.Time
	EndTime              time.Time
	Duration             time.Duration
}
