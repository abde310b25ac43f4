package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

func TestGenerateItineraryShape(t *testing.T) {
	destinations := []string{"Paris", "Goa", "Tokyo", "Nowhereville", ""}
	responseSets := []types.PersonalizationResponse{
		nil,
		{"vacation_style": {"adventurous"}},
		{"experience_type": {"nature"}, "attraction_preference": {"local"}},
		{"interests": {"beach", "custom_scuba diving"}},
	}
	for _, dest := range destinations {
		for _, resp := range responseSets {
			days := GenerateItinerary(types.TripDetails{Destination: dest}, resp, dest)
			require.Len(t, days, 3, "destination %q", dest)
			for i, day := range days {
				assert.Equal(t, i+1, day.Day)
				assert.NotEmpty(t, day.Title)
				require.NotEmpty(t, day.Activities)
				for _, act := range day.Activities {
					assert.NotEmpty(t, act.Time)
					assert.NotEmpty(t, act.Activity)
					assert.NotEmpty(t, act.Location)
				}
			}
		}
	}
}

func TestGenerateItineraryDeterministic(t *testing.T) {
	details := types.TripDetails{Destination: "Paris", Dates: "June 10-13", Travelers: "2 adults", Budget: "$2000"}
	responses := types.PersonalizationResponse{
		"vacation_style":  {"adventurous"},
		"experience_type": {"nature"},
	}
	first := GenerateItinerary(details, responses, "Paris")
	second := GenerateItinerary(details, responses, "Paris")
	assert.Equal(t, first, second)
}

func TestItineraryPreferenceBranches(t *testing.T) {
	details := types.TripDetails{Destination: "Queenstown"}

	adventurous := GenerateItinerary(details, types.PersonalizationResponse{"vacation_style": {"adventurous"}}, "Queenstown")
	assert.Equal(t, adventureActivities[0], adventurous[0].Activities[0].Activity)

	nature := GenerateItinerary(details, types.PersonalizationResponse{"experience_type": {"nature"}}, "Queenstown")
	assert.Equal(t, natureActivities[0], nature[0].Activities[0].Activity)

	local := GenerateItinerary(details, types.PersonalizationResponse{"attraction_preference": {"local"}}, "Queenstown")
	assert.Equal(t, localActivities[0], local[0].Activities[0].Activity)
}

func TestItineraryBeachSubstitution(t *testing.T) {
	responses := types.PersonalizationResponse{"interests": {"beach"}}

	// Goa carries the Beach category, so mornings become beach activities.
	goa := GenerateItinerary(types.TripDetails{}, responses, "Goa")
	assert.Equal(t, beachActivities[0], goa[0].Activities[0].Activity)

	// Rome does not, so the beach interest is ignored.
	rome := GenerateItinerary(types.TripDetails{}, responses, "Rome")
	assert.NotEqual(t, beachActivities[0], rome[0].Activities[0].Activity)
}

func TestItineraryUnknownDestinationDegrades(t *testing.T) {
	days := GenerateItinerary(types.TripDetails{}, nil, "Nowhereville")
	require.Len(t, days, 3)
	assert.Equal(t, genericActivities[0][0], days[0].Activities[0].Activity)
	assert.Equal(t, "Nowhereville", days[0].Activities[0].Location)
}

func TestGenerateAccommodationsShape(t *testing.T) {
	responseSets := []types.PersonalizationResponse{
		nil,
		{"accommodation": {"luxury"}},
		{"accommodation": {"budget", "bnb"}},
		{"accommodation": {"boutique", "luxury"}},
	}
	for _, resp := range responseSets {
		opts := GenerateAccommodations(types.TripDetails{}, resp, "Paris")
		require.Len(t, opts, 3)
		highlighted := 0
		for _, o := range opts {
			assert.NotEmpty(t, o.ID)
			assert.NotEmpty(t, o.Name)
			assert.NotEmpty(t, o.Price)
			assert.NotEmpty(t, o.Amenities)
			if o.Highlighted {
				highlighted++
			}
		}
		assert.Equal(t, 1, highlighted, "exactly one highlighted option per run")
	}
}

func TestAccommodationTierPrecedence(t *testing.T) {
	// luxury wins over budget when both are selected
	opts := GenerateAccommodations(types.TripDetails{}, types.PersonalizationResponse{"accommodation": {"budget", "luxury"}}, "Goa")
	assert.Equal(t, "stay_recommended_luxury", opts[0].ID)
	assert.True(t, opts[0].Highlighted)

	opts = GenerateAccommodations(types.TripDetails{}, types.PersonalizationResponse{"accommodation": {"budget", "boutique"}}, "Goa")
	assert.Equal(t, "stay_recommended_boutique", opts[0].ID)
}

func TestAccommodationThirdOption(t *testing.T) {
	withBnb := GenerateAccommodations(types.TripDetails{}, types.PersonalizationResponse{"accommodation": {"bnb"}}, "Goa")
	assert.Equal(t, "stay_bnb", withBnb[2].ID)
	assert.Equal(t, "Bed & breakfast", withBnb[2].Type)

	without := GenerateAccommodations(types.TripDetails{}, nil, "Goa")
	assert.Equal(t, "stay_eco", without[2].ID)
	assert.Equal(t, "Eco lodge", without[2].Type)
}

func TestAccommodationsDeterministic(t *testing.T) {
	resp := types.PersonalizationResponse{"accommodation": {"luxury", "bnb"}}
	first := GenerateAccommodations(types.TripDetails{Budget: "$5000"}, resp, "Santorini")
	second := GenerateAccommodations(types.TripDetails{Budget: "$5000"}, resp, "Santorini")
	assert.Equal(t, first, second)
}
