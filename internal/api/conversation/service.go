package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/tripcanvas/tripcanvas/app/observability/metrics"
	"github.com/tripcanvas/tripcanvas/internal/api/catalog"
	"github.com/tripcanvas/tripcanvas/internal/api/intent"
	"github.com/tripcanvas/tripcanvas/internal/api/planner"
	"github.com/tripcanvas/tripcanvas/internal/types"
)

const (
	welcomeText = "Hi! I'm your travel planning assistant. Tell me where you'd like to go, or describe the kind of trip you're dreaming of."
	apologyText = "Sorry, I'm having trouble reaching my travel brain right now. Please try that again in a moment."
)

// ErrTripDetailsIncomplete gates ApplyFilters until all four trip-detail
// fields are set.
var ErrTripDetailsIncomplete = fmt.Errorf("trip details are incomplete")

// DefaultChips are surfaced when the chat service returns no structured
// content but a destination was detected locally.
var DefaultChips = []types.Chip{
	{Label: "Beach & relaxation", Value: "beach"},
	{Label: "Culture & museums", Value: "culture"},
	{Label: "Food & nightlife", Value: "food"},
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service is the conversation state machine. Every operation loads the
// session, applies one transition and persists the result; callers receive
// snapshot copies, never live state.
type Service interface {
	CreateSession(ctx context.Context) (*types.Session, error)
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)
	SendMessage(ctx context.Context, sessionID, text string) (*types.Session, error)
	SelectChip(ctx context.Context, sessionID string, chip types.Chip) (*types.Session, error)
	SetTripDetails(ctx context.Context, sessionID string, patch types.TripDetails) (*types.Session, error)
	ApplyFilters(ctx context.Context, sessionID string) (*types.Session, error)
	Personalize(ctx context.Context, sessionID string, responses types.PersonalizationResponse) (*types.Session, error)
	ResetChat(ctx context.Context, sessionID string) (*types.Session, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger     *slog.Logger
	repo       Repository
	chatClient ChatClient
	metrics    *metrics.AppMetrics

	mu       sync.Mutex
	inFlight map[string]*semaphore.Weighted
	locks    map[string]*sync.Mutex
}

// NewService creates a new conversation service instance. appMetrics may be
// nil in tests.
func NewService(repo Repository, chatClient ChatClient, appMetrics *metrics.AppMetrics, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repo:       repo,
		chatClient: chatClient,
		metrics:    appMetrics,
		inFlight:   make(map[string]*semaphore.Weighted),
		locks:      make(map[string]*sync.Mutex),
	}
}

// sendGuard returns the per-session at-most-one-in-flight guard.
func (s *ServiceImpl) sendGuard(sessionID string) *semaphore.Weighted {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.inFlight[sessionID]
	if !ok {
		g = semaphore.NewWeighted(1)
		s.inFlight[sessionID] = g
	}
	return g
}

// stateLock serializes state transitions for one session; concurrent
// handlers never interleave partial updates.
func (s *ServiceImpl) stateLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

func (s *ServiceImpl) CreateSession(ctx context.Context) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "CreateSession")
	defer span.End()

	now := time.Now()
	session := &types.Session{
		ID:        types.NewSessionID(),
		Messages:  []types.Message{welcomeMessage()},
		Profile:   types.UserProfile{},
		Status:    types.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.SessionsStartedTotal.Add(ctx, 1)
	}
	span.SetAttributes(attribute.String("app.session.id", session.ID))
	s.logger.InfoContext(ctx, "Session created", slog.String("sessionID", session.ID))
	return snapshot(session), nil
}

func (s *ServiceImpl) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	lock := s.stateLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return snapshot(session), nil
}

// SendMessage runs one full chat turn. Blank input and sends issued while a
// prior call is still in flight are dropped, not queued; the returned session
// is simply the unchanged snapshot in those cases.
func (s *ServiceImpl) SendMessage(ctx context.Context, sessionID, text string) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "SendMessage", trace.WithAttributes(
		attribute.String("app.session.id", sessionID),
	))
	defer span.End()

	l := s.logger.With(slog.String("sessionID", sessionID))

	if strings.TrimSpace(text) == "" {
		l.DebugContext(ctx, "Ignoring empty message")
		return s.GetSession(ctx, sessionID)
	}

	guard := s.sendGuard(sessionID)
	if !guard.TryAcquire(1) {
		l.DebugContext(ctx, "Send already in flight, dropping message")
		span.SetAttributes(attribute.Bool("app.send.dropped", true))
		return s.GetSession(ctx, sessionID)
	}
	// Released unconditionally so the guard can never leak into a
	// permanently-busy state, whatever the remote call does.
	defer guard.Release(1)

	lock := s.stateLock(sessionID)
	lock.Lock()
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	appendMessage(session, types.RoleUser, text)

	// Local heuristics run regardless of network outcome.
	sig := intent.Detect(text)
	session.TripPlanningIntent = sig.TripPlanningIntent
	var detected *catalog.Destination
	if sig.Destination != nil {
		detected = sig.Destination
		session.DetectedDestination = sig.Destination.ID
	}

	// Commit the user message before the round trip so a snapshot taken
	// mid-call already shows it.
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to persist user message: %w", err)
	}

	req := types.ChatServiceRequest{
		Message:     text,
		SessionID:   session.ID,
		UserProfile: session.Profile.Clone(),
	}
	lock.Unlock()

	start := time.Now()
	resp, callErr := s.chatClient.Send(ctx, req)
	if s.metrics != nil {
		s.metrics.RemoteChatDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}

	lock.Lock()
	defer lock.Unlock()
	// Re-read: a reset may have landed while the call was out.
	session, err = s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if callErr != nil {
		l.WarnContext(ctx, "Chat service call failed, answering with apology",
			slog.Any("error", callErr))
		span.RecordError(callErr)
		span.SetStatus(codes.Error, "Chat service failure")
		if s.metrics != nil {
			s.metrics.ChatFailuresTotal.Add(ctx, 1)
		}
		appendMessage(session, types.RoleAssistant, apologyText)
		if err := s.repo.UpdateSession(ctx, session); err != nil {
			return nil, fmt.Errorf("failed to persist apology: %w", err)
		}
		return snapshot(session), nil
	}

	s.applyResponse(ctx, session, resp, detected)
	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist chat turn: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ChatTurnsTotal.Add(ctx, 1)
	}
	span.SetStatus(codes.Ok, "Chat turn completed")
	l.InfoContext(ctx, "Chat turn completed",
		slog.Int("ui_actions", len(resp.UIActions)),
		slog.Int("recommendations", len(session.Recommendations)))
	return snapshot(session), nil
}

// applyResponse merges one chat service response into the session: assistant
// text, UI actions in order, then the authoritative profile.
func (s *ServiceImpl) applyResponse(ctx context.Context, session *types.Session, resp *types.ChatServiceResponse, detected *catalog.Destination) {
	if resp.ChatText != "" {
		appendMessage(session, types.RoleAssistant, resp.ChatText)
	}

	var newCards []types.RecommendationCard
	var newChips []types.Chip
	chipsProduced := false

	for _, action := range resp.UIActions {
		switch action.Type {
		case types.ActionCardAdd:
			card, err := action.CardAdd()
			if err != nil {
				s.logger.WarnContext(ctx, "Skipping malformed card_add payload", slog.Any("error", err))
				continue
			}
			newCards = append(newCards, enrichCard(card))
		case types.ActionPrompt:
			p, err := action.Prompt()
			if err != nil {
				s.logger.WarnContext(ctx, "Skipping malformed prompt payload", slog.Any("error", err))
				continue
			}
			// Each prompt replaces the active set, so the last one wins.
			newChips = p.Chips
			chipsProduced = true
		default:
			s.logger.DebugContext(ctx, "Ignoring unknown UI action type",
				slog.String("type", string(action.Type)))
		}
	}

	// No structured content but a locally detected destination (this turn or
	// an earlier one): synthesize a card and the default chips so the user
	// always sees forward progress.
	if detected == nil && session.DetectedDestination != "" {
		detected = catalog.Find(session.DetectedDestination)
	}
	if len(resp.UIActions) == 0 && detected != nil {
		newCards = append(newCards, detected.Card())
		newChips = append([]types.Chip(nil), DefaultChips...)
		chipsProduced = true
	}

	session.Recommendations = MergeCards(session.Recommendations, newCards)
	if chipsProduced {
		session.Chips = newChips
	}
	if resp.UpdatedProfile != nil {
		session.Profile = resp.UpdatedProfile
	}
}

// SelectChip flags the chip's value in the profile, consumes the chip and
// feeds a synthesized utterance back through SendMessage.
func (s *ServiceImpl) SelectChip(ctx context.Context, sessionID string, chip types.Chip) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "SelectChip", trace.WithAttributes(
		attribute.String("app.session.id", sessionID),
		attribute.String("app.chip.value", chip.Value),
	))
	defer span.End()

	lock := s.stateLock(sessionID)
	lock.Lock()
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	if session.Profile == nil {
		session.Profile = types.UserProfile{}
	}
	session.Profile[chip.Value] = true

	remaining := session.Chips[:0:0]
	for _, c := range session.Chips {
		if c.Value != chip.Value {
			remaining = append(remaining, c)
		}
	}
	session.Chips = remaining

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to persist chip selection: %w", err)
	}
	lock.Unlock()

	utterance := fmt.Sprintf("I'm interested in %s", strings.ToLower(chip.Label))
	return s.SendMessage(ctx, sessionID, utterance)
}

// SetTripDetails applies a partial update; fields are independent and a blank
// field in the patch leaves the stored value untouched.
func (s *ServiceImpl) SetTripDetails(ctx context.Context, sessionID string, patch types.TripDetails) (*types.Session, error) {
	lock := s.stateLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if patch.Destination != "" {
		session.TripDetails.Destination = patch.Destination
	}
	if patch.Dates != "" {
		session.TripDetails.Dates = patch.Dates
	}
	if patch.Travelers != "" {
		session.TripDetails.Travelers = patch.Travelers
	}
	if patch.Budget != "" {
		session.TripDetails.Budget = patch.Budget
	}

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist trip details: %w", err)
	}
	return snapshot(session), nil
}

// ApplyFilters is gated on complete trip details. It announces the chosen
// destination in the transcript and opens the personalization flow.
func (s *ServiceImpl) ApplyFilters(ctx context.Context, sessionID string) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "ApplyFilters", trace.WithAttributes(
		attribute.String("app.session.id", sessionID),
	))
	defer span.End()

	lock := s.stateLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.TripDetails.IsComplete() {
		span.SetStatus(codes.Error, "Trip details incomplete")
		return nil, ErrTripDetailsIncomplete
	}

	appendMessage(session, types.RoleAssistant, fmt.Sprintf(
		"Great, %s it is! Let me ask you a few quick questions so I can tailor your trip.",
		session.TripDetails.Destination))
	session.PersonalizationOpen = true

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist filter application: %w", err)
	}
	return snapshot(session), nil
}

// Personalize runs the preference rule engine over the questionnaire answers
// and stores the generated itinerary and lodging shortlist on the session.
func (s *ServiceImpl) Personalize(ctx context.Context, sessionID string, responses types.PersonalizationResponse) (*types.Session, error) {
	ctx, span := otel.Tracer("ConversationService").Start(ctx, "Personalize", trace.WithAttributes(
		attribute.String("app.session.id", sessionID),
	))
	defer span.End()

	lock := s.stateLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dest := session.TripDetails.Destination
	session.Itinerary = planner.GenerateItinerary(session.TripDetails, responses, dest)
	session.Accommodations = planner.GenerateAccommodations(session.TripDetails, responses, dest)
	session.PersonalizationOpen = false
	appendMessage(session, types.RoleAssistant, fmt.Sprintf(
		"Here's your personalized %d-day plan for %s, with three places to stay.",
		len(session.Itinerary), displayDestination(dest)))

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist generated plan: %w", err)
	}

	if s.metrics != nil {
		s.metrics.ItinerariesGeneratedTotal.Add(ctx, 1)
	}
	span.SetAttributes(attribute.Int("app.itinerary.days", len(session.Itinerary)))
	s.logger.InfoContext(ctx, "Itinerary generated",
		slog.String("sessionID", sessionID),
		slog.String("destination", dest))
	return snapshot(session), nil
}

// ResetChat clears the transcript, recommendations, chips and trip details
// back to the seeded welcome state. The session identifier is deliberately
// kept, so the backend's conversation context stays addressable.
func (s *ServiceImpl) ResetChat(ctx context.Context, sessionID string) (*types.Session, error) {
	lock := s.stateLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.Messages = []types.Message{welcomeMessage()}
	session.Recommendations = nil
	session.Chips = nil
	session.TripDetails = types.TripDetails{}
	session.DetectedDestination = ""
	session.TripPlanningIntent = false
	session.PersonalizationOpen = false
	session.Itinerary = nil
	session.Accommodations = nil

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to persist chat reset: %w", err)
	}
	s.logger.InfoContext(ctx, "Chat reset", slog.String("sessionID", sessionID))
	return snapshot(session), nil
}

// enrichCard merges catalog data into a card_add payload. Catalog fields take
// precedence for overlapping keys; a payload with no catalog match is used
// as-is, never dropped.
func enrichCard(payload types.RecommendationCard) types.RecommendationCard {
	dest := catalog.Find(payload.ID)
	if dest == nil {
		dest = catalog.Find(payload.Title)
	}
	if dest == nil {
		return payload
	}

	enriched := dest.Card()
	if enriched.ID == "" {
		enriched.ID = payload.ID
	}
	if payload.WhyMatch != "" {
		enriched.WhyMatch = payload.WhyMatch
	}
	if payload.Pitch != "" && enriched.Pitch == "" {
		enriched.Pitch = payload.Pitch
	}
	return enriched
}

// appendMessage adds a transcript entry with a freshly generated ID, checked
// against existing IDs to guard against duplicate-submission races.
func appendMessage(session *types.Session, role types.MessageRole, content string) {
	id := uuid.New().String()
	for session.HasMessageID(id) {
		id = uuid.New().String()
	}
	session.Messages = append(session.Messages, types.Message{
		ID:      id,
		Role:    role,
		Content: content,
	})
}

func welcomeMessage() types.Message {
	return types.Message{
		ID:      "msg_welcome",
		Role:    types.RoleAssistant,
		Content: welcomeText,
	}
}

func displayDestination(dest string) string {
	if d := catalog.Find(dest); d != nil {
		return d.Name
	}
	if dest == "" {
		return "your destination"
	}
	return dest
}

// snapshot deep-copies the slices and maps a caller could otherwise mutate.
func snapshot(session *types.Session) *types.Session {
	out := *session
	out.Messages = append([]types.Message(nil), session.Messages...)
	out.Recommendations = append([]types.RecommendationCard(nil), session.Recommendations...)
	out.Chips = append([]types.Chip(nil), session.Chips...)
	out.Itinerary = append([]types.ItineraryDay(nil), session.Itinerary...)
	out.Accommodations = append([]types.AccommodationOption(nil), session.Accommodations...)
	out.Profile = session.Profile.Clone()
	return &out
}
