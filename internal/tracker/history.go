package tracker

import (
	"strings"

	"github.com/meltforce/traintrack/internal/models"
)

// PerformanceSnapshot describes the most recent earlier performance of an
// exercise, shown next to a draft row.
type PerformanceSnapshot struct {
	Label      string `json:"label"`
	Date       string `json:"date"`
	SessionID  string `json:"sessionId"`
	Comment    string `json:"comment,omitempty"`
	HasComment bool   `json:"hasComment"`
}

// FindLastPerformance scans the client's sessions in stored order, skipping
// the session dated excludeDate, and returns the first entry whose name
// matches exerciseName ignoring case.
//
// "Last" relies on stored order: new sessions are inserted at the front, so
// scan order is creation recency, not date order.
func (s *Store) FindLastPerformance(clientID, exerciseName, excludeDate string) (PerformanceSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions[clientID] {
		if sess.Date == excludeDate {
			continue
		}
		for _, e := range sess.Exercises {
			if !strings.EqualFold(e.Name, exerciseName) {
				continue
			}
			return PerformanceSnapshot{
				Label:      FormatLabel(e),
				Date:       sess.Date,
				SessionID:  sess.ID,
				Comment:    e.Comment,
				HasComment: strings.TrimSpace(e.Comment) != "",
			}, true
		}
	}
	return PerformanceSnapshot{}, false
}

// FormatLabel renders the recorded measures of e, e.g.
// "3 sets · 8 reps · 60 kg · 45s". Entries without measures render as "—".
func FormatLabel(e models.ExerciseEntry) string {
	var parts []string
	if e.Sets.Valid {
		parts = append(parts, e.Sets.String()+" sets")
	}
	if e.Reps.Valid {
		parts = append(parts, e.Reps.String()+" reps")
	}
	if e.Weight.Valid {
		parts = append(parts, e.Weight.String()+" kg")
	}
	if e.Duration.Valid {
		parts = append(parts, e.Duration.String()+"s")
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " · ")
}
