// Package catalog suggests exercise names while the trainer types.
package catalog

import "strings"

// MinTermLength is the shortest term that produces suggestions.
const MinTermLength = 2

var defaultNames = []string{
	"Bench Press", "Squat", "Deadlift", "Overhead Press", "Barbell Row", "Pull-ups", "Chin-ups", "Dips",
	"Lunges", "Leg Press", "Lat Pulldown", "Cable Row", "Dumbbell Press", "Incline Press", "Decline Press",
	"Front Squat", "Romanian Deadlift", "Leg Curl", "Leg Extension", "Calf Raise", "Bicep Curl",
	"Tricep Extension", "Lateral Raise", "Face Pull", "Shrugs", "Plank", "Crunches", "Russian Twist",
	"Leg Raise", "Mountain Climbers", "Burpees", "Jump Squat", "Box Jump", "Kettlebell Swing", "Push-ups",
	"Hip Thrust", "Glute Bridge", "Bulgarian Split Squat", "Step-ups", "Farmer's Walk", "Battle Ropes",
	"Rowing Machine", "Treadmill", "Elliptical", "Cycling", "Cable Fly", "Pec Deck", "Hammer Curl",
	"Preacher Curl", "Skull Crusher", "Arnold Press", "Upright Row", "Reverse Fly", "Cable Crossover",
	"Hanging Leg Raise", "Incline Curl", "Spider Curl", "Concentration Curl", "Wrist Curl", "Good Morning",
	"Sumo Deadlift", "Trap Bar Deadlift", "Hack Squat", "Sissy Squat", "Nordic Curl", "GHR", "Reverse Lunge",
}

// Catalog is a fixed, ordered list of exercise names.
type Catalog struct {
	names []string
	lower []string
}

// Default returns the built-in exercise list.
func Default() *Catalog {
	return New(defaultNames)
}

// New builds a catalog over names, keeping their order.
func New(names []string) *Catalog {
	c := &Catalog{
		names: append([]string(nil), names...),
		lower: make([]string, len(names)),
	}
	for i, n := range names {
		c.lower[i] = strings.ToLower(n)
	}
	return c
}

// Match returns the names containing term, ignoring case, in catalog order.
// Terms shorter than MinTermLength match nothing.
func (c *Catalog) Match(term string) []string {
	if len([]rune(term)) < MinTermLength {
		return []string{}
	}
	term = strings.ToLower(term)
	out := []string{}
	for i, n := range c.lower {
		if strings.Contains(n, term) {
			out = append(out, c.names[i])
		}
	}
	return out
}

// Names returns a copy of the full list.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}
