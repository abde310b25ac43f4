package types

// PriceEstimate is a rough nightly or per-trip price band in whole currency units.
type PriceEstimate struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// CTA is a call-to-action button on a recommendation card.
type CTA struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// RecommendationCard is a destination card shown on the canvas panel.
// Identity is the ID; a card whose ID is already present in the active set is
// never re-added.
type RecommendationCard struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	HeroImage    string         `json:"hero_image,omitempty"`
	Pitch        string         `json:"pitch,omitempty"`
	WhyMatch     string         `json:"why_match,omitempty"`
	Highlights   []string       `json:"highlights,omitempty"`
	Categories   []string       `json:"categories,omitempty"`
	Rating       float64        `json:"rating,omitempty"`
	PriceEstimate *PriceEstimate `json:"price_estimate,omitempty"`
	CTAPrimary   *CTA           `json:"cta_primary,omitempty"`
	CTASecondary *CTA           `json:"cta_secondary,omitempty"`
}

// Chip is a suggested quick-reply affordance. Selecting it flips the profile
// flag named by Value and removes the chip from the active set.
type Chip struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
