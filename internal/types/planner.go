package types

// PersonalizationResponse maps a questionnaire question ID to the ordered list
// of selected option IDs. Single-select questions store exactly one ID;
// multi-select store zero or more, including synthesized "custom_<text>" IDs
// for free-text additions.
type PersonalizationResponse map[string][]string

// Contains reports whether option is among the selections for question.
func (r PersonalizationResponse) Contains(question, option string) bool {
	for _, v := range r[question] {
		if v == option {
			return true
		}
	}
	return false
}

type ItineraryActivity struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
	Location string `json:"location"`
}

// ItineraryDay is one generated day. Activities keep a fixed canonical
// morning-to-evening ordering and are never reordered after generation.
type ItineraryDay struct {
	Day        int                 `json:"day"`
	Title      string              `json:"title"`
	Activities []ItineraryActivity `json:"activities"`
}

// AccommodationOption is one lodging shortlist entry. Exactly one option per
// generation run carries Highlighted: true.
type AccommodationOption struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Rating      float64  `json:"rating"`
	Price       string   `json:"price"`
	Image       string   `json:"image,omitempty"`
	Amenities   []string `json:"amenities"`
	MatchText   string   `json:"match_text"`
	Highlighted bool     `json:"highlighted"`
	Description string   `json:"description"`
}
