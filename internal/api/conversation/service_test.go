package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

// --- Mocks for Dependencies ---

type MockChatClient struct {
	mock.Mock
}

func (m *MockChatClient) Send(ctx context.Context, req types.ChatServiceRequest) (*types.ChatServiceResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatServiceResponse), args.Error(1)
}

func newTestService(client ChatClient) *ServiceImpl {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(NewCacheRepository(time.Hour), client, nil, logger)
}

func rawAction(t *testing.T, actionType types.UIActionType, payload any) types.UIAction {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return types.UIAction{Type: actionType, Payload: raw}
}

func emptyResponse() *types.ChatServiceResponse {
	return &types.ChatServiceResponse{
		ChatText:       "Sounds lovely!",
		UIActions:      []types.UIAction{},
		UpdatedProfile: types.UserProfile{"seen": true},
	}
}

// --- Tests ---

func TestCreateSessionSeedsWelcome(t *testing.T) {
	svc := newTestService(&MockChatClient{})
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	assert.Contains(t, session.ID, "session_")
	require.Len(t, session.Messages, 1)
	assert.Equal(t, types.RoleAssistant, session.Messages[0].Role)
	assert.Equal(t, types.StatusActive, session.Status)
}

func TestSendMessageEmptyTextIsNoOp(t *testing.T) {
	client := &MockChatClient{}
	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\t"} {
		got, err := svc.SendMessage(context.Background(), session.ID, text)
		require.NoError(t, err)
		assert.Len(t, got.Messages, 1, "transcript must stay at the welcome message")
	}
	client.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSendMessageAppendsUserAndAssistant(t *testing.T) {
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.MatchedBy(func(req types.ChatServiceRequest) bool {
		return req.Message == "hello there" && req.SessionID != ""
	})).Return(emptyResponse(), nil)

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	got, err := svc.SendMessage(context.Background(), session.ID, "hello there")
	require.NoError(t, err)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, types.RoleUser, got.Messages[1].Role)
	assert.Equal(t, "hello there", got.Messages[1].Content)
	assert.Equal(t, types.RoleAssistant, got.Messages[2].Role)
	assert.Equal(t, "Sounds lovely!", got.Messages[2].Content)

	// Remote profile is authoritative.
	assert.Equal(t, true, got.Profile["seen"])

	// Message IDs are unique.
	seen := map[string]bool{}
	for _, m := range got.Messages {
		assert.False(t, seen[m.ID])
		seen[m.ID] = true
	}
	client.AssertExpectations(t)
}

func TestSendMessageGoaFallback(t *testing.T) {
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.Anything).Return(emptyResponse(), nil)

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	got, err := svc.SendMessage(context.Background(), session.ID, "I want to plan a trip to Goa")
	require.NoError(t, err)

	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, "goa_india", got.Recommendations[0].ID)
	require.Len(t, got.Chips, len(DefaultChips))
	assert.Equal(t, DefaultChips, got.Chips)
	assert.Equal(t, "goa_india", got.DetectedDestination)
	assert.True(t, got.TripPlanningIntent)
}

func TestSendMessageProcessesUIActions(t *testing.T) {
	resp := &types.ChatServiceResponse{
		ChatText: "Here are some ideas",
		UIActions: []types.UIAction{
			rawAction(t, types.ActionCardAdd, types.RecommendationCard{ID: "paris_france", Title: "Paris"}),
			rawAction(t, types.ActionCardAdd, types.RecommendationCard{ID: "mystery_island", Title: "Mystery Island", Pitch: "Unknown to the catalog"}),
			rawAction(t, types.ActionPrompt, types.PromptPayload{Chips: []types.Chip{{Label: "Luxury", Value: "luxury"}}}),
			{Type: "confetti", Payload: json.RawMessage(`{"amount":"lots"}`)},
		},
		UpdatedProfile: types.UserProfile{},
	}
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.Anything).Return(resp, nil)

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	got, err := svc.SendMessage(context.Background(), session.ID, "show me somewhere nice")
	require.NoError(t, err)

	require.Len(t, got.Recommendations, 2)
	// Catalog enrichment fills in the card's hero image and highlights.
	assert.Equal(t, "paris_france", got.Recommendations[0].ID)
	assert.NotEmpty(t, got.Recommendations[0].HeroImage)
	assert.NotEmpty(t, got.Recommendations[0].Highlights)
	// Unknown destinations pass through as-is, never dropped.
	assert.Equal(t, "mystery_island", got.Recommendations[1].ID)
	assert.Equal(t, "Unknown to the catalog", got.Recommendations[1].Pitch)
	// Prompt replaces the chip set.
	require.Len(t, got.Chips, 1)
	assert.Equal(t, "luxury", got.Chips[0].Value)
}

func TestSendMessageCardMergeIsIdempotent(t *testing.T) {
	resp := &types.ChatServiceResponse{
		ChatText: "Paris again",
		UIActions: []types.UIAction{
			rawAction(t, types.ActionCardAdd, types.RecommendationCard{ID: "paris_france", Title: "Paris"}),
		},
	}
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.Anything).Return(resp, nil)

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	_, err = svc.SendMessage(context.Background(), session.ID, "paris please")
	require.NoError(t, err)
	got, err := svc.SendMessage(context.Background(), session.ID, "paris please again")
	require.NoError(t, err)

	assert.Len(t, got.Recommendations, 1)
}

func TestSendMessageFailureAppendsApology(t *testing.T) {
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	got, err := svc.SendMessage(context.Background(), session.ID, "hello?")
	require.NoError(t, err, "chat failures are recovered in-conversation")

	require.Len(t, got.Messages, 3)
	assert.Equal(t, types.RoleAssistant, got.Messages[2].Role)
	assert.Equal(t, apologyText, got.Messages[2].Content)

	// The guard was released: the next send goes straight through.
	client.ExpectedCalls = nil
	client.On("Send", mock.Anything, mock.Anything).Return(emptyResponse(), nil)
	after, err := svc.SendMessage(context.Background(), session.ID, "trying again")
	require.NoError(t, err)
	assert.Len(t, after.Messages, 5)
}

func TestSendMessageDropsConcurrentSends(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(emptyResponse(), nil).Once()

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.SendMessage(context.Background(), session.ID, "first")
	}()
	<-started

	// Second send while the first is in flight: dropped, no network call.
	got, err := svc.SendMessage(context.Background(), session.ID, "second")
	require.NoError(t, err)
	for _, m := range got.Messages {
		assert.NotEqual(t, "second", m.Content)
	}

	close(release)
	wg.Wait()
	client.AssertNumberOfCalls(t, "Send", 1)
}

func TestSelectChip(t *testing.T) {
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.MatchedBy(func(req types.ChatServiceRequest) bool {
		// The synthesized utterance carries the staged profile flag.
		flagged, _ := req.UserProfile["beach"].(bool)
		return req.Message == "I'm interested in beach & relaxation" && flagged
	})).Return(emptyResponse(), nil)

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)

	// Stage some chips first.
	lock := svc.stateLock(session.ID)
	lock.Lock()
	stored, err := svc.repo.GetSession(context.Background(), session.ID)
	require.NoError(t, err)
	stored.Chips = append([]types.Chip(nil), DefaultChips...)
	require.NoError(t, svc.repo.UpdateSession(context.Background(), stored))
	lock.Unlock()

	got, err := svc.SelectChip(context.Background(), session.ID, DefaultChips[0])
	require.NoError(t, err)

	assert.Equal(t, true, got.Profile["seen"], "remote profile replaces staged one")
	for _, c := range got.Chips {
		assert.NotEqual(t, "beach", c.Value, "selected chip is consumed")
	}
	client.AssertExpectations(t)
}

func TestTripDetailsCompletion(t *testing.T) {
	svc := newTestService(&MockChatClient{})
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	// Fields are settable independently, in any order.
	got, err := svc.SetTripDetails(ctx, session.ID, types.TripDetails{Budget: "$2000"})
	require.NoError(t, err)
	assert.False(t, got.TripDetails.IsComplete())

	got, err = svc.SetTripDetails(ctx, session.ID, types.TripDetails{Dates: "June 10-13", Travelers: "2 adults"})
	require.NoError(t, err)
	assert.False(t, got.TripDetails.IsComplete())

	// Setting the last missing field flips completeness.
	got, err = svc.SetTripDetails(ctx, session.ID, types.TripDetails{Destination: "Paris"})
	require.NoError(t, err)
	assert.True(t, got.TripDetails.IsComplete())
}

func TestApplyFiltersGatedOnCompleteness(t *testing.T) {
	svc := newTestService(&MockChatClient{})
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.ApplyFilters(ctx, session.ID)
	assert.ErrorIs(t, err, ErrTripDetailsIncomplete)

	_, err = svc.SetTripDetails(ctx, session.ID, types.TripDetails{
		Destination: "Paris", Dates: "June 10-13", Travelers: "2 adults", Budget: "$2000",
	})
	require.NoError(t, err)

	got, err := svc.ApplyFilters(ctx, session.ID)
	require.NoError(t, err)
	assert.True(t, got.PersonalizationOpen)
	last := got.Messages[len(got.Messages)-1]
	assert.Equal(t, types.RoleAssistant, last.Role)
	assert.Contains(t, last.Content, "Paris")
}

func TestPersonalizeGeneratesPlan(t *testing.T) {
	svc := newTestService(&MockChatClient{})
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.SetTripDetails(ctx, session.ID, types.TripDetails{
		Destination: "Goa", Dates: "June 10-13", Travelers: "2 adults", Budget: "$1500",
	})
	require.NoError(t, err)

	got, err := svc.Personalize(ctx, session.ID, types.PersonalizationResponse{
		"accommodation": {"luxury"},
		"interests":     {"beach"},
	})
	require.NoError(t, err)

	require.Len(t, got.Itinerary, 3)
	require.Len(t, got.Accommodations, 3)
	highlighted := 0
	for _, a := range got.Accommodations {
		if a.Highlighted {
			highlighted++
		}
	}
	assert.Equal(t, 1, highlighted)
	assert.False(t, got.PersonalizationOpen)
}

func TestResetChatKeepsSessionID(t *testing.T) {
	client := &MockChatClient{}
	client.On("Send", mock.Anything, mock.Anything).Return(emptyResponse(), nil)

	svc := newTestService(client)
	session, err := svc.CreateSession(context.Background())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.SendMessage(ctx, session.ID, "plan a trip to Goa")
	require.NoError(t, err)
	_, err = svc.SetTripDetails(ctx, session.ID, types.TripDetails{Destination: "Goa"})
	require.NoError(t, err)

	got, err := svc.ResetChat(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, session.ID, got.ID, "session identifier is never rotated")
	require.Len(t, got.Messages, 1)
	assert.Equal(t, types.RoleAssistant, got.Messages[0].Role)
	assert.Empty(t, got.Recommendations)
	assert.Empty(t, got.Chips)
	assert.Equal(t, types.TripDetails{}, got.TripDetails)
}

func TestGetSessionUnknownID(t *testing.T) {
	svc := newTestService(&MockChatClient{})
	_, err := svc.GetSession(context.Background(), "session_0_nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
