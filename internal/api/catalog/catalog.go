package catalog

import (
	"strings"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

// Destination is one static catalog entry used for enrichment and fallback.
type Destination struct {
	ID            string
	Name          string
	Country       string
	Aliases       []string
	HeroImage     string
	Pitch         string
	Highlights    []string
	Categories    []string
	Rating        float64
	PriceEstimate types.PriceEstimate
}

// Card builds a recommendation card from the catalog entry.
func (d Destination) Card() types.RecommendationCard {
	price := d.PriceEstimate
	return types.RecommendationCard{
		ID:            d.ID,
		Title:         d.Name + ", " + d.Country,
		HeroImage:     d.HeroImage,
		Pitch:         d.Pitch,
		Highlights:    append([]string(nil), d.Highlights...),
		Categories:    append([]string(nil), d.Categories...),
		Rating:        d.Rating,
		PriceEstimate: &price,
		CTAPrimary:    &types.CTA{Label: "Plan this trip", Action: "plan_trip"},
		CTASecondary:  &types.CTA{Label: "Tell me more", Action: "more_info"},
	}
}

// HasCategory reports whether the destination carries the category,
// case-insensitively.
func (d Destination) HasCategory(category string) bool {
	for _, c := range d.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// Destinations is the client-bundled catalog. Order matters: lookup takes the
// first match, so better-known entries come first.
var Destinations = []Destination{
	{
		ID:        "paris_france",
		Name:      "Paris",
		Country:   "France",
		Aliases:   []string{"city of light"},
		HeroImage: "https://images.unsplash.com/photo-1502602898657-3e91760cbb34",
		Pitch:     "Iconic boulevards, world-class museums and patisseries on every corner.",
		Highlights: []string{
			"Eiffel Tower at sunset",
			"Louvre Museum",
			"Montmartre and Sacre-Coeur",
			"Seine river cruise",
			"Le Marais food walk",
		},
		Categories:    []string{"City", "Culture", "Food"},
		Rating:        4.8,
		PriceEstimate: types.PriceEstimate{Min: 1200, Max: 2600},
	},
	{
		ID:        "goa_india",
		Name:      "Goa",
		Country:   "India",
		Aliases:   []string{"north goa", "south goa"},
		HeroImage: "https://images.unsplash.com/photo-1512343879784-a960bf40e7f2",
		Pitch:     "Palm-fringed beaches, Portuguese heritage and laid-back shacks.",
		Highlights: []string{
			"Palolem Beach",
			"Old Goa churches",
			"Anjuna flea market",
			"Dudhsagar Falls",
			"Spice plantation tour",
		},
		Categories:    []string{"Beach", "Relax", "Nightlife"},
		Rating:        4.6,
		PriceEstimate: types.PriceEstimate{Min: 500, Max: 1400},
	},
	{
		ID:        "tokyo_japan",
		Name:      "Tokyo",
		Country:   "Japan",
		Aliases:   []string{"edo"},
		HeroImage: "https://images.unsplash.com/photo-1540959733332-eab4deabeeaf",
		Pitch:     "Neon districts, serene shrines and the best food city on earth.",
		Highlights: []string{
			"Senso-ji Temple",
			"Shibuya Crossing",
			"Tsukiji outer market",
			"teamLab Planets",
			"Day trip to Hakone",
		},
		Categories:    []string{"City", "Culture", "Food"},
		Rating:        4.9,
		PriceEstimate: types.PriceEstimate{Min: 1600, Max: 3200},
	},
	{
		ID:        "bali_indonesia",
		Name:      "Bali",
		Country:   "Indonesia",
		Aliases:   []string{"ubud", "island of the gods"},
		HeroImage: "https://images.unsplash.com/photo-1537996194471-e657df975ab4",
		Pitch:     "Rice terraces, surf breaks and temple ceremonies at dawn.",
		Highlights: []string{
			"Tegallalang rice terraces",
			"Uluwatu Temple",
			"Canggu surf lesson",
			"Mount Batur sunrise trek",
			"Ubud monkey forest",
		},
		Categories:    []string{"Beach", "Nature", "Adventure"},
		Rating:        4.7,
		PriceEstimate: types.PriceEstimate{Min: 800, Max: 1800},
	},
	{
		ID:        "rome_italy",
		Name:      "Rome",
		Country:   "Italy",
		Aliases:   []string{"eternal city"},
		HeroImage: "https://images.unsplash.com/photo-1552832230-c0197dd311b5",
		Pitch:     "Two thousand years of history served with carbonara.",
		Highlights: []string{
			"Colosseum and Forum",
			"Vatican Museums",
			"Trastevere evening stroll",
			"Pantheon",
			"Villa Borghese gardens",
		},
		Categories:    []string{"City", "Culture", "History"},
		Rating:        4.7,
		PriceEstimate: types.PriceEstimate{Min: 1100, Max: 2400},
	},
	{
		ID:        "queenstown_new_zealand",
		Name:      "Queenstown",
		Country:   "New Zealand",
		Aliases:   []string{"adventure capital"},
		HeroImage: "https://images.unsplash.com/photo-1589871973318-9ca1258faa5d",
		Pitch:     "Bungy jumps, alpine lakes and Fiordland on the doorstep.",
		Highlights: []string{
			"Kawarau Bridge bungy",
			"Milford Sound cruise",
			"Ben Lomond hike",
			"Shotover jet boat",
			"Central Otago wine tour",
		},
		Categories:    []string{"Adventure", "Nature", "Mountains"},
		Rating:        4.8,
		PriceEstimate: types.PriceEstimate{Min: 1500, Max: 3000},
	},
	{
		ID:        "santorini_greece",
		Name:      "Santorini",
		Country:   "Greece",
		Aliases:   []string{"thira"},
		HeroImage: "https://images.unsplash.com/photo-1570077188670-e3a8d69ac5ff",
		Pitch:     "Whitewashed villages over a volcanic caldera.",
		Highlights: []string{
			"Oia sunset",
			"Caldera catamaran cruise",
			"Akrotiri ruins",
			"Red Beach",
			"Fira to Oia cliff walk",
		},
		Categories:    []string{"Beach", "Romance", "Islands"},
		Rating:        4.6,
		PriceEstimate: types.PriceEstimate{Min: 1300, Max: 2800},
	},
	{
		ID:        "marrakech_morocco",
		Name:      "Marrakech",
		Country:   "Morocco",
		Aliases:   []string{"red city"},
		HeroImage: "https://images.unsplash.com/photo-1597211684565-dca64d72bdfe",
		Pitch:     "Souks, riads and the Atlas mountains an hour away.",
		Highlights: []string{
			"Jemaa el-Fnaa square",
			"Bahia Palace",
			"Majorelle Garden",
			"Souk haggling crash course",
			"Atlas foothills day trip",
		},
		Categories:    []string{"Culture", "Markets", "Desert"},
		Rating:        4.5,
		PriceEstimate: types.PriceEstimate{Min: 700, Max: 1600},
	},
}

// Find returns the catalog entry matching name, or nil. Matching is
// case-insensitive against id, name, aliases, then substring containment of
// the name. First catalog-order match wins.
func Find(name string) *Destination {
	q := strings.ToLower(strings.TrimSpace(name))
	if q == "" {
		return nil
	}
	for i := range Destinations {
		d := &Destinations[i]
		if q == strings.ToLower(d.ID) || q == strings.ToLower(d.Name) {
			return d
		}
		for _, a := range d.Aliases {
			if q == strings.ToLower(a) {
				return d
			}
		}
	}
	// Looser pass: payload titles often arrive as "Paris, France".
	for i := range Destinations {
		d := &Destinations[i]
		if strings.Contains(q, strings.ToLower(d.Name)) {
			return d
		}
	}
	return nil
}

// FindInText returns the first catalog entry whose name or country appears in
// the text, case-insensitively. Ambiguous or compound inputs resolve to the
// first catalog-order match.
func FindInText(text string) *Destination {
	t := strings.ToLower(text)
	if t == "" {
		return nil
	}
	for i := range Destinations {
		d := &Destinations[i]
		if strings.Contains(t, strings.ToLower(d.Name)) || strings.Contains(t, strings.ToLower(d.Country)) {
			return d
		}
	}
	return nil
}

const defaultImage = "https://images.unsplash.com/photo-1488646953014-85cb44e25828"

var categoryImages = map[string]string{
	"beach":     "https://images.unsplash.com/photo-1507525428034-b723cf961d3e",
	"city":      "https://images.unsplash.com/photo-1449824913935-59a10b8d2000",
	"culture":   "https://images.unsplash.com/photo-1533929736458-ca588d08c8be",
	"nature":    "https://images.unsplash.com/photo-1441974231531-c6227db76b6e",
	"adventure": "https://images.unsplash.com/photo-1533692328991-08159ff19fca",
	"mountains": "https://images.unsplash.com/photo-1464822759023-fed622ff2c3b",
}

// FallbackImage resolves a display image when the original fails to load:
// destination name first, then category, then a hard-coded default.
func FallbackImage(name, category string) string {
	if d := Find(name); d != nil && d.HeroImage != "" {
		return d.HeroImage
	}
	if img, ok := categoryImages[strings.ToLower(strings.TrimSpace(category))]; ok {
		return img
	}
	return defaultImage
}
