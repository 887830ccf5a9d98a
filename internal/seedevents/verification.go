package seedevents

import (
	"fmt"
	"log"
	"sort"
)

// verifyResults checks the retrieved recommendations for internal
// consistency: scores sorted descending, limits respected, and no
// recommendation pointing at an event the volunteer already attended.
func verifyResults(config *Config, ds *Dataset, results map[string]*Result) error {
	log.Println("Verifying recommendations...")

	if len(results) == 0 {
		return fmt.Errorf("no recommendations to verify")
	}

	attended := attendedByVolunteer(ds)

	var problems int
	for volunteerID, result := range results {
		if len(result.Recommendations) > config.RecommendLimit {
			problems++
			log.Printf("volunteer %s received %d recommendations, limit was %d",
				volunteerID, len(result.Recommendations), config.RecommendLimit)
		}

		for i := 1; i < len(result.Recommendations); i++ {
			if result.Recommendations[i].Score > result.Recommendations[i-1].Score {
				problems++
				log.Printf("volunteer %s has unsorted recommendations at position %d", volunteerID, i)
				break
			}
		}

		for _, rec := range result.Recommendations {
			if _, ok := attended[volunteerID][rec.Event.ID]; ok {
				problems++
				log.Printf("volunteer %s was recommended already-attended event %s",
					volunteerID, rec.Event.ID)
			}
		}
	}

	displayTopMatches(results, config.Verbose)

	if problems > 0 {
		return fmt.Errorf("verification found %d problems", problems)
	}

	log.Println("Recommendation verification completed")
	return nil
}

// attendedByVolunteer builds the attended event set per volunteer from
// the seeded submissions.
func attendedByVolunteer(ds *Dataset) map[string]map[string]struct{} {
	attended := make(map[string]map[string]struct{})
	for _, sub := range ds.Submissions {
		if sub.Status != "ACCEPTED" && sub.Status != "COMPLETED" {
			continue
		}
		set, ok := attended[sub.VolunteerID]
		if !ok {
			set = make(map[string]struct{})
			attended[sub.VolunteerID] = set
		}
		set[sub.EventID] = struct{}{}
	}
	return attended
}

// displayTopMatches shows the strongest matches across all volunteers.
func displayTopMatches(results map[string]*Result, verbose bool) {
	type match struct {
		volunteerID string
		rec         Recommendation
	}

	var top []match
	for volunteerID, result := range results {
		if len(result.Recommendations) > 0 {
			top = append(top, match{volunteerID: volunteerID, rec: result.Recommendations[0]})
		}
	}
	sort.Slice(top, func(i, j int) bool {
		return top[i].rec.Score > top[j].rec.Score
	})

	topN := 10
	if len(top) < topN {
		topN = len(top)
	}

	log.Printf("Top %d matches across all volunteers:", topN)
	for i := 0; i < topN; i++ {
		m := top[i]
		log.Printf("   %d. %s -> %s (%s) score %.3f",
			i+1, m.volunteerID, m.rec.Event.Title, m.rec.Event.Category, m.rec.Score)
	}

	if verbose && len(top) > 0 {
		sum := 0.0
		for _, m := range top {
			sum += m.rec.Score
		}
		log.Printf("Score statistics: average top score %.3f, best %.3f, worst %.3f",
			sum/float64(len(top)), top[0].rec.Score, top[len(top)-1].rec.Score)
	}
}
