package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectParisTrip(t *testing.T) {
	sig := Detect("I want to plan a trip to Paris")
	require.NotNil(t, sig.Destination)
	assert.Equal(t, "paris_france", sig.Destination.ID)
	assert.True(t, sig.TripPlanningIntent)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantDestID string
		wantIntent bool
	}{
		{"keyword only", "thinking about a vacation", "", true},
		{"destination only", "tell me about Tokyo", "tokyo_japan", false},
		{"case insensitive keyword", "let's TRAVEL somewhere", "", true},
		{"go to phrase", "I'd like to go to Bali", "bali_indonesia", true},
		{"neither", "what's the weather like", "", false},
		{"empty", "", "", false},
		{"whitespace", "   ", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := Detect(tt.text)
			if tt.wantDestID == "" {
				assert.Nil(t, sig.Destination)
			} else {
				require.NotNil(t, sig.Destination)
				assert.Equal(t, tt.wantDestID, sig.Destination.ID)
			}
			assert.Equal(t, tt.wantIntent, sig.TripPlanningIntent)
		})
	}
}

func TestDetectFirstMatchWins(t *testing.T) {
	// Paris precedes Rome in catalog order, so a compound mention resolves to
	// the first entry.
	sig := Detect("Paris or Rome?")
	require.NotNil(t, sig.Destination)
	assert.Equal(t, "paris_france", sig.Destination.ID)
}
