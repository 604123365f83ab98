package tracker

import (
	"sort"

	"github.com/meltforce/traintrack/internal/models"
)

// Snapshot is one performance with absent measures reported as 0.
type Snapshot struct {
	Date     string  `json:"date"`
	Sets     float64 `json:"sets"`
	Reps     float64 `json:"reps"`
	Weight   float64 `json:"weight"`
	Duration float64 `json:"duration"`
	Comment  string  `json:"comment,omitempty"`
}

// ExerciseSummary holds lifetime statistics for one exercise name.
type ExerciseSummary struct {
	Name   string   `json:"name"`
	Count  int      `json:"count"`
	Latest Snapshot `json:"latest"`
	Best   Snapshot `json:"best"`
}

// ComputeSummary aggregates the client's whole history.
func (s *Store) ComputeSummary(clientID string) []ExerciseSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.sessions[clientID])
}

// Summarize groups entries by exact name and returns one summary per name,
// most frequent first; ties keep first-encounter order.
//
// Latest is the entry from the greatest session date (the first one seen
// wins on equal dates). Best is ranked by the first measure the entry
// records, in the order weight, reps, sets, duration, so a bodyweight set is
// never compared against a loaded one by weight.
func Summarize(sessions []models.Session) []ExerciseSummary {
	out := []ExerciseSummary{}
	index := make(map[string]int)

	for _, sess := range sessions {
		for _, e := range sess.Exercises {
			i, seen := index[e.Name]
			if !seen {
				i = len(out)
				index[e.Name] = i
				out = append(out, ExerciseSummary{Name: e.Name})
			}
			sum := &out[i]
			sum.Count++

			if !seen || sess.Date > sum.Latest.Date {
				sum.Latest = snapshot(sess.Date, e)
			}
			if !seen || beats(e, sum.Best) {
				sum.Best = snapshot(sess.Date, e)
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// beats applies the first rule whose measure e records.
func beats(e models.ExerciseEntry, best Snapshot) bool {
	switch {
	case e.Weight.Valid:
		return e.Weight.Value > best.Weight
	case e.Reps.Valid:
		return e.Reps.Value > best.Reps
	case e.Sets.Valid:
		return e.Sets.Value > best.Sets
	case e.Duration.Valid:
		return e.Duration.Value > best.Duration
	}
	return false
}

func snapshot(date string, e models.ExerciseEntry) Snapshot {
	return Snapshot{
		Date:     date,
		Sets:     e.Sets.OrZero(),
		Reps:     e.Reps.OrZero(),
		Weight:   e.Weight.OrZero(),
		Duration: e.Duration.OrZero(),
		Comment:  e.Comment,
	}
}
