// Package planner turns a questionnaire response set and trip constraints into
// a day-by-day itinerary and a lodging shortlist. Everything here is a pure
// function of its inputs: no I/O, no randomness, identical inputs always
// produce identical output.
package planner

import (
	"fmt"

	"github.com/tripcanvas/tripcanvas/internal/api/catalog"
	"github.com/tripcanvas/tripcanvas/internal/types"
)

const itineraryDays = 3

var slotTimes = []string{"9:00 AM", "1:00 PM", "7:30 PM"}

var dayTitles = []string{
	"Arrival & First Impressions",
	"Deep Dive",
	"Hidden Corners & Farewell",
}

// Generic activity pool used when no catalog entry matches the destination.
// Indexed by [day][slot].
var genericActivities = [itineraryDays][3]string{
	{"Orientation walk through the city center", "Lunch at a well-reviewed local restaurant", "Relaxed dinner near your accommodation"},
	{"Guided tour of the main sights", "Free time to explore at your own pace", "Evening food and drinks crawl"},
	{"Morning visit to a viewpoint or park", "Souvenir shopping and a last wander", "Farewell dinner with a view"},
}

var adventureActivities = [itineraryDays]string{
	"Adrenaline activity: ziplining, rafting or a via ferrata",
	"Full-day guided outdoor adventure",
	"Sunrise hike before departure",
}

var natureActivities = [itineraryDays]string{
	"Nature walk through nearby green spaces",
	"Day trip to the closest national park or reserve",
	"Botanical garden or waterfront morning",
}

var beachActivities = [itineraryDays]string{
	"Slow morning on the beach with a swim",
	"Beach hopping with a seafood shack lunch",
	"Final sunset session on the sand",
}

var localActivities = [itineraryDays]string{
	"Wander a residential neighborhood and its morning market",
	"Local market crawl with street-food tastings",
	"Coffee where the locals actually go",
}

// GenerateItinerary builds exactly three days of timed activities. Missing
// destination data degrades to the generic pool; a slot is never left blank.
func GenerateItinerary(details types.TripDetails, responses types.PersonalizationResponse, destinationName string) []types.ItineraryDay {
	dest := catalog.Find(destinationName)

	adventurous := responses.Contains("vacation_style", "adventurous")
	nature := responses.Contains("experience_type", "nature")
	local := responses.Contains("attraction_preference", "local")
	beach := responses.Contains("interests", "beach") && dest != nil && dest.HasCategory("Beach")

	days := make([]types.ItineraryDay, 0, itineraryDays)
	for day := 0; day < itineraryDays; day++ {
		activities := make([]types.ItineraryActivity, 0, len(slotTimes))
		for slot := range slotTimes {
			activities = append(activities, types.ItineraryActivity{
				Time:     slotTimes[slot],
				Activity: pickActivity(dest, day, slot, adventurous, nature, local, beach),
				Location: locationFor(dest, destinationName),
			})
		}
		days = append(days, types.ItineraryDay{
			Day:        day + 1,
			Title:      dayTitle(day, destinationName),
			Activities: activities,
		})
	}
	return days
}

// pickActivity selects a slot's activity. Preference predicates steer the
// morning slot; afternoons draw from the destination's highlight list by
// index; evenings stay generic.
func pickActivity(dest *catalog.Destination, day, slot int, adventurous, nature, local, beach bool) string {
	switch slot {
	case 0:
		if beach {
			return beachActivities[day]
		}
		if adventurous {
			return adventureActivities[day]
		}
		if nature {
			return natureActivities[day]
		}
		if local {
			return localActivities[day]
		}
		return highlightOrGeneric(dest, day, slot)
	case 1:
		if local && day == 1 {
			return localActivities[day]
		}
		return highlightOrGeneric(dest, day, slot)
	default:
		return genericActivities[day][slot]
	}
}

// highlightOrGeneric indexes into the destination's highlight list, falling
// back to the generic pool when the destination is unknown or the list runs
// short.
func highlightOrGeneric(dest *catalog.Destination, day, slot int) string {
	if dest == nil {
		return genericActivities[day][slot]
	}
	idx := day*2 + slot
	if idx >= len(dest.Highlights) {
		return genericActivities[day][slot]
	}
	return dest.Highlights[idx]
}

func locationFor(dest *catalog.Destination, fallback string) string {
	if dest != nil {
		return dest.Name
	}
	if fallback != "" {
		return fallback
	}
	return "Your destination"
}

func dayTitle(day int, destinationName string) string {
	if destinationName == "" {
		destinationName = "your destination"
	}
	if day == 0 {
		return fmt.Sprintf("%s: %s", destinationName, dayTitles[day])
	}
	return dayTitles[day]
}

type accommodationTier struct {
	Type      string
	Price     string
	Rating    float64
	Amenities []string
}

// Static per-tier tables. Price bands are display strings, never derived from
// the numeric budget field.
var tiers = map[string]accommodationTier{
	"luxury": {
		Type:      "5-star resort",
		Price:     "$350 - $600 / night",
		Rating:    4.9,
		Amenities: []string{"Spa", "Infinity pool", "Concierge", "Fine dining"},
	},
	"boutique": {
		Type:      "Boutique hotel",
		Price:     "$160 - $280 / night",
		Rating:    4.7,
		Amenities: []string{"Rooftop bar", "Designer rooms", "Breakfast included"},
	},
	"budget": {
		Type:      "Guesthouse",
		Price:     "$40 - $90 / night",
		Rating:    4.3,
		Amenities: []string{"Free WiFi", "Shared kitchen", "Central location"},
	},
	"city_hotel": {
		Type:      "City hotel",
		Price:     "$110 - $190 / night",
		Rating:    4.4,
		Amenities: []string{"Gym", "Business lounge", "Airport shuttle"},
	},
	"bnb": {
		Type:      "Bed & breakfast",
		Price:     "$70 - $130 / night",
		Rating:    4.6,
		Amenities: []string{"Homemade breakfast", "Garden", "Local hosts"},
	},
	"eco": {
		Type:      "Eco lodge",
		Price:     "$90 - $170 / night",
		Rating:    4.5,
		Amenities: []string{"Solar powered", "Farm-to-table meals", "Nature trails"},
	},
}

// recommendedTier resolves the highlighted pick from the accommodation
// question. Precedence when several are selected: luxury > boutique > budget.
func recommendedTier(responses types.PersonalizationResponse) string {
	for _, tier := range []string{"luxury", "boutique", "budget"} {
		if responses.Contains("accommodation", tier) {
			return tier
		}
	}
	return "boutique"
}

// GenerateAccommodations builds exactly three lodging options: the highlighted
// recommended pick, a fixed city-hotel alternative, and a third that is a
// bed & breakfast or an eco lodge depending on whether bnb was selected.
func GenerateAccommodations(details types.TripDetails, responses types.PersonalizationResponse, destinationName string) []types.AccommodationOption {
	dest := catalog.Find(destinationName)
	place := destinationName
	if dest != nil {
		place = dest.Name
	}
	if place == "" {
		place = "your destination"
	}

	recKey := recommendedTier(responses)
	rec := tiers[recKey]

	thirdKey := "eco"
	if responses.Contains("accommodation", "bnb") {
		thirdKey = "bnb"
	}
	third := tiers[thirdKey]
	cityHotel := tiers["city_hotel"]

	return []types.AccommodationOption{
		{
			ID:          "stay_recommended_" + recKey,
			Name:        fmt.Sprintf("The %s Signature Stay", place),
			Type:        rec.Type,
			Rating:      rec.Rating,
			Price:       rec.Price,
			Image:       catalog.FallbackImage(place, ""),
			Amenities:   append([]string(nil), rec.Amenities...),
			MatchText:   fmt.Sprintf("Matches your %s preference", recKey),
			Highlighted: true,
			Description: fmt.Sprintf("Our top pick for %s based on your questionnaire answers.", place),
		},
		{
			ID:          "stay_city_hotel",
			Name:        fmt.Sprintf("%s Central Hotel", place),
			Type:        cityHotel.Type,
			Rating:      cityHotel.Rating,
			Price:       cityHotel.Price,
			Image:       catalog.FallbackImage(place, "city"),
			Amenities:   append([]string(nil), cityHotel.Amenities...),
			MatchText:   "Solid all-rounder close to everything",
			Highlighted: false,
			Description: "A dependable mid-range base with quick access to the main sights.",
		},
		{
			ID:          "stay_" + thirdKey,
			Name:        fmt.Sprintf("%s %s", place, third.Type),
			Type:        third.Type,
			Rating:      third.Rating,
			Price:       third.Price,
			Image:       catalog.FallbackImage(place, "nature"),
			Amenities:   append([]string(nil), third.Amenities...),
			MatchText:   "A change of pace from a standard hotel",
			Highlighted: false,
			Description: "For travelers who want their stay to be part of the experience.",
		},
	}
}
