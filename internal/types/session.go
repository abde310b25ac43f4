package types

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single transcript entry. IDs are unique within a session and
// insertion order is display order.
type Message struct {
	ID      string      `json:"id"`
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// TripDetails holds the four-field draft trip summary. Fields are
// independently settable with no cross-field validation.
type TripDetails struct {
	Destination string `json:"destination,omitempty"`
	Dates       string `json:"dates,omitempty"`
	Travelers   string `json:"travelers,omitempty"`
	Budget      string `json:"budget,omitempty"`
}

// IsComplete reports whether all four fields are set.
func (t TripDetails) IsComplete() bool {
	return t.Destination != "" && t.Dates != "" && t.Travelers != "" && t.Budget != ""
}

// UserProfile is a free-form key -> flag/value mapping accumulated from chip
// selections. The remote chat service's copy is authoritative after each turn.
type UserProfile map[string]any

// Clone returns a shallow copy so snapshot reads never alias session state.
func (p UserProfile) Clone() UserProfile {
	if p == nil {
		return nil
	}
	out := make(UserProfile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type SessionStatus string

const (
	StatusActive SessionStatus = "active"
	StatusClosed SessionStatus = "closed"
)

// Session bundles all per-tab conversation state. The ID is generated once at
// session start and is never rotated, including across "New Chat" resets, so
// the backend keeps its server-side conversation context.
type Session struct {
	ID                  string                `json:"id"`
	Messages            []Message             `json:"messages"`
	Recommendations     []RecommendationCard  `json:"recommendations"`
	Chips               []Chip                `json:"chips"`
	TripDetails         TripDetails           `json:"trip_details"`
	Profile             UserProfile           `json:"profile"`
	DetectedDestination string                `json:"detected_destination,omitempty"`
	TripPlanningIntent  bool                  `json:"trip_planning_intent"`
	PersonalizationOpen bool                  `json:"personalization_open"`
	Itinerary           []ItineraryDay        `json:"itinerary,omitempty"`
	Accommodations      []AccommodationOption `json:"accommodations,omitempty"`
	Status              SessionStatus         `json:"status"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// HasMessageID reports whether a transcript entry with the given ID exists.
func (s *Session) HasMessageID(id string) bool {
	for _, m := range s.Messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

// NewSessionID builds identifiers like "session_1716891234567_k3j9x1".
func NewSessionID() string {
	var sb strings.Builder
	for i := 0; i < 6; i++ {
		sb.WriteString(strconv.FormatInt(int64(rand.Intn(36)), 36))
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), sb.String())
}
