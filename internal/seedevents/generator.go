package seedevents

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/voluntree/voluntree/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
)

// Constants for generated event scheduling.
const (
	eventStartOffsetDays = 60
	eventDurationHours   = 6
)

// categories must match the categories the service accepts.
var categories = []string{
	"ANIMALS", "ENVIRONMENT", "EDUCATION", "HEALTH", "CULTURE", "SPORT", "OTHER",
}

// interestPools holds interests themed per category so generated volunteers
// have embeddings that actually correlate with event categories.
var interestPools = map[string][]string{
	"ANIMALS":     {"animal welfare", "wildlife rescue", "shelter dogs", "bird watching"},
	"ENVIRONMENT": {"ecology", "reforestation", "river cleanup", "recycling"},
	"EDUCATION":   {"teaching", "mentoring", "literacy", "after-school tutoring"},
	"HEALTH":      {"elderly care", "blood donation", "mental health support", "first aid"},
	"CULTURE":     {"museum guiding", "local history", "music festivals", "theatre"},
	"SPORT":       {"marathon support", "youth football", "swimming coaching", "hiking"},
	"OTHER":       {"community outreach", "food banks", "disaster relief", "fundraising"},
}

var skillPool = []string{
	"organizing", "public speaking", "first aid", "photography", "cooking",
	"carpentry", "translation", "social media", "driving", "gardening",
}

var placePool = []string{
	"Riverside Park", "Central Library", "City Shelter", "Community Hall",
	"Green Valley", "Harbor Front", "Old Town Square", "Sports Arena",
}

var eventTitles = map[string][]string{
	"ANIMALS":     {"Shelter Dog Walking Day", "Wildlife Habitat Count", "Adoption Fair Support"},
	"ENVIRONMENT": {"River Cleanup Drive", "Tree Planting Marathon", "Recycling Workshop"},
	"EDUCATION":   {"Reading Buddies Session", "Math Tutoring Camp", "Coding for Kids"},
	"HEALTH":      {"Blood Donation Drive", "Elderly Home Visit", "First Aid Training"},
	"CULTURE":     {"Museum Night Volunteers", "Heritage Walk Guides", "Festival Stage Crew"},
	"SPORT":       {"Marathon Water Station", "Youth Football Referees", "Charity Swim Gala"},
	"OTHER":       {"Food Bank Sorting", "Winter Clothes Collection", "Community Kitchen Shift"},
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max).
func getRandomInt(maxExclusive int) int {
	if maxExclusive <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(maxExclusive)))
	return int(n.Int64())
}

// pick returns a random element from the pool.
func pick(pool []string) string {
	return pool[getRandomInt(len(pool))]
}

// pickSome returns up to n distinct random elements from the pool.
func pickSome(pool []string, n int) []string {
	if n >= len(pool) {
		out := make([]string, len(pool))
		copy(out, pool)
		return out
	}
	seen := make(map[int]struct{}, n)
	out := make([]string, 0, n)
	for len(out) < n {
		idx := getRandomInt(len(pool))
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		out = append(out, pool[idx])
	}
	return out
}

// generateDataset creates volunteers, events and the interaction history
// linking them. Each volunteer leans towards one category so that the
// recommendations have a signal to pick up.
func generateDataset(ctx context.Context, config *Config, stats *Stats) (*Dataset, error) {
	logger.Get().Info(ctx, "generating seed dataset",
		logger.Int("volunteers", config.NumVolunteers),
		logger.Int("events", config.NumEvents))

	ds := &Dataset{
		Volunteers: make([]Volunteer, config.NumVolunteers),
		Events:     make([]Event, config.NumEvents),
	}

	// Events are generated concurrently; each event gets a themed title and
	// a start date spread over the coming weeks so date filters have data.
	type eventResult struct {
		index int
		event Event
	}
	resultChan := make(chan eventResult, config.NumEvents)

	workerCount := minInt(config.Workers, config.NumEvents)
	if workerCount < 1 {
		workerCount = 1
	}
	eventsPerWorker := config.NumEvents / workerCount

	for worker := 0; worker < workerCount; worker++ {
		start := worker * eventsPerWorker
		end := start + eventsPerWorker
		if worker == workerCount-1 {
			end = config.NumEvents // Last worker gets remaining events
		}

		go func(start, end int) {
			for i := start; i < end; i++ {
				select {
				case <-ctx.Done():
					return
				default:
					resultChan <- eventResult{index: i, event: generateSingleEvent(i)}
				}
			}
		}(start, end)
	}

	for i := 0; i < config.NumEvents; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case result := <-resultChan:
			ds.Events[result.index] = result.event
		}
	}

	for i := 0; i < config.NumVolunteers; i++ {
		ds.Volunteers[i] = generateSingleVolunteer(i)
	}

	generateHistory(config, ds)

	logger.Get().Info(ctx, "generated seed dataset",
		logger.Int("volunteers", len(ds.Volunteers)),
		logger.Int("events", len(ds.Events)),
		logger.Int("interactions", len(ds.Interactions)),
		logger.Int("submissions", len(ds.Submissions)))

	return ds, nil
}

// generateSingleVolunteer creates a volunteer biased towards one category.
func generateSingleVolunteer(index int) Volunteer {
	category := categories[index%len(categories)]
	interests := pickSome(interestPools[category], 2)
	// One off-theme interest keeps profiles from being perfectly separable.
	if getRandomFloat() < 0.3 {
		other := categories[getRandomInt(len(categories))]
		interests = append(interests, pick(interestPools[other]))
	}

	return Volunteer{
		ID:        uuid.New().String(),
		Name:      "Volunteer " + strconv.Itoa(index+1),
		Interests: interests,
		Skills:    pickSome(skillPool, 1+getRandomInt(3)),
	}
}

// generateSingleEvent creates a single event with a themed title and a
// start date within the scheduling window.
func generateSingleEvent(index int) Event {
	category := categories[index%len(categories)]
	title := pick(eventTitles[category])

	startOffset := time.Duration(getRandomInt(eventStartOffsetDays*24)) * time.Hour
	start := time.Now().UTC().Add(24*time.Hour + startOffset).Truncate(time.Hour)
	end := start.Add(eventDurationHours * time.Hour)

	return Event{
		ID:          uuid.New().String(),
		Title:       title,
		Description: title + " organized by the local community, helpers welcome.",
		Category:    category,
		PlaceName:   pick(placePool),
		StartDate:   start.Format(time.RFC3339),
		EndDate:     end.Format(time.RFC3339),
	}
}

// generateHistory links volunteers to events through interactions and
// completed submissions, favouring events in the volunteer's category.
func generateHistory(config *Config, ds *Dataset) {
	if len(ds.Events) == 0 {
		return
	}

	interactionTypes := []string{"viewed", "interested", "registered", "completed"}

	for vi := range ds.Volunteers {
		v := &ds.Volunteers[vi]

		for i := 0; i < config.InteractionsPer; i++ {
			ev := ds.Events[pickThemedEvent(vi, len(ds.Events))]
			ds.Interactions = append(ds.Interactions, Interaction{
				VolunteerID: v.ID,
				EventID:     ev.ID,
				Type:        pick(interactionTypes),
			})
		}

		for i := 0; i < config.AttendedPer; i++ {
			ev := ds.Events[pickThemedEvent(vi, len(ds.Events))]
			ds.Submissions = append(ds.Submissions, Submission{
				VolunteerID: v.ID,
				EventID:     ev.ID,
				Status:      "COMPLETED",
			})
		}
	}
}

// pickThemedEvent favours events sharing the volunteer's category stride.
func pickThemedEvent(volunteerIndex, numEvents int) int {
	stride := len(categories)
	themed := volunteerIndex % stride
	// 70% themed, 30% anywhere.
	if getRandomFloat() < 0.7 {
		count := (numEvents - themed + stride - 1) / stride
		if count > 0 {
			return themed + getRandomInt(count)*stride
		}
	}
	return getRandomInt(numEvents)
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
