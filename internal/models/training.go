package models

import "strings"

// Client is a person being trained.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Age       string `json:"age,omitempty"`
	Goal      string `json:"goal,omitempty"`
	StartDate string `json:"startDate"`
}

// Session is one client's workout for one calendar date.
type Session struct {
	ID        string          `json:"id"`
	ClientID  string          `json:"clientId"`
	Date      string          `json:"date"`
	Exercises []ExerciseEntry `json:"exercises"`
}

// SessionID derives the session key; at most one session exists per client per date.
func SessionID(date, clientID string) string {
	return date + "_" + clientID
}

// ExerciseEntry is one exercise's recorded numbers within a session.
type ExerciseEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Sets     Measure `json:"sets"`
	Reps     Measure `json:"reps"`
	Weight   Measure `json:"weight"`
	Duration Measure `json:"duration"`
	Comment  string  `json:"comment,omitempty"`
}

// HasData reports whether at least one of sets, reps, weight, duration or
// comment is present. Entries without data cannot be saved.
func (e ExerciseEntry) HasData() bool {
	return e.Sets.Valid || e.Reps.Valid || e.Weight.Valid || e.Duration.Valid || e.Comment != ""
}

// Normalized returns a copy with every measure reduced to its canonical form.
func (e ExerciseEntry) Normalized() ExerciseEntry {
	e.Name = strings.TrimSpace(e.Name)
	e.Sets = Some(e.Sets.OrZero())
	e.Reps = Some(e.Reps.OrZero())
	e.Weight = Some(e.Weight.OrZero())
	e.Duration = Some(e.Duration.OrZero())
	return e
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	s.Exercises = append(make([]ExerciseEntry, 0, len(s.Exercises)), s.Exercises...)
	return s
}
