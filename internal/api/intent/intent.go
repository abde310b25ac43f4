package intent

import (
	"strings"

	"github.com/tripcanvas/tripcanvas/internal/api/catalog"
)

// Signal is what the extractor derives from one piece of free-text input.
type Signal struct {
	Destination        *catalog.Destination
	TripPlanningIntent bool
}

var planningKeywords = []string{
	"plan", "trip", "travel", "visit", "go to", "vacation", "holiday",
}

// Detect scans raw input against the destination catalog and a fixed keyword
// set. It is pure and synchronous so it can run ahead of, and independently
// from, the remote chat call issued for the same input.
//
// Destination matching takes the first catalog entry whose name or country is
// a case-insensitive substring of the text. That can misfire on compound
// inputs ("Paris, Texas"); it is a documented heuristic, not a ranking.
func Detect(text string) Signal {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return Signal{}
	}
	return Signal{
		Destination:        catalog.FindInText(t),
		TripPlanningIntent: containsAny(t, planningKeywords),
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
