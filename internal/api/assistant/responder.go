// Package assistant implements the chat service contract in-process, so a
// single binary can run the whole conversation loop. The Gemini-backed
// responder is used when an API key is configured; otherwise a deterministic
// rule-based responder built on the intent extractor and the destination
// catalog answers every turn.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"github.com/tripcanvas/tripcanvas/internal/api/catalog"
	"github.com/tripcanvas/tripcanvas/internal/api/intent"
	"github.com/tripcanvas/tripcanvas/internal/types"
)

const defaultTemperature = float32(0.5)

// Responder produces one structured reply for one user turn.
type Responder interface {
	Respond(ctx context.Context, req types.ChatServiceRequest) (*types.ChatServiceResponse, error)
}

var _ Responder = (*RuleResponder)(nil)

// RuleResponder answers from the intent extractor and the static catalog.
// It is deterministic, which the conversation tests rely on.
type RuleResponder struct {
	logger *slog.Logger
}

func NewRuleResponder(logger *slog.Logger) *RuleResponder {
	return &RuleResponder{logger: logger}
}

func (r *RuleResponder) Respond(_ context.Context, req types.ChatServiceRequest) (*types.ChatServiceResponse, error) {
	sig := intent.Detect(req.Message)

	profile := req.UserProfile
	if profile == nil {
		profile = types.UserProfile{}
	}

	resp := &types.ChatServiceResponse{
		UpdatedProfile: profile,
	}

	switch {
	case sig.Destination != nil:
		resp.ChatText = fmt.Sprintf(
			"%s is a great choice! %s Want me to start planning the details?",
			sig.Destination.Name, sig.Destination.Pitch)
		resp.UIActions = append(resp.UIActions,
			cardAction(sig.Destination.Card()),
			promptAction([]types.Chip{
				{Label: "Set travel dates", Value: "wants_dates"},
				{Label: "Show me hotels", Value: "wants_hotels"},
				{Label: "Something else", Value: "wants_alternatives"},
			}))
	case sig.TripPlanningIntent:
		resp.ChatText = "Love it, let's plan something. Which of these sounds most like your trip?"
		chips := make([]types.Chip, 0, 3)
		for _, d := range catalog.Destinations[:3] {
			chips = append(chips, types.Chip{
				Label: d.Name + ", " + d.Country,
				Value: "interested_" + d.ID,
			})
		}
		resp.UIActions = append(resp.UIActions, promptAction(chips))
	default:
		resp.ChatText = "Tell me a destination you're curious about, or the kind of trip you want - beach, culture, adventure - and I'll take it from there."
	}

	return resp, nil
}

var _ Responder = (*GeminiResponder)(nil)

// GeminiResponder asks the model for the structured reply and falls back to
// the rule responder when the model call or parse fails, so /api/chat never
// returns an error for a well-formed request.
type GeminiResponder struct {
	aiClient *AIClient
	fallback *RuleResponder
	logger   *slog.Logger
}

func NewGeminiResponder(aiClient *AIClient, logger *slog.Logger) *GeminiResponder {
	return &GeminiResponder{
		aiClient: aiClient,
		fallback: NewRuleResponder(logger),
		logger:   logger,
	}
}

func (g *GeminiResponder) Respond(ctx context.Context, req types.ChatServiceRequest) (*types.ChatServiceResponse, error) {
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr(defaultTemperature)}
	raw, err := g.aiClient.GenerateText(ctx, buildChatPrompt(req), config)
	if err != nil {
		g.logger.WarnContext(ctx, "Gemini call failed, using rule responder", slog.Any("error", err))
		return g.fallback.Respond(ctx, req)
	}

	var resp types.ChatServiceResponse
	if err := json.Unmarshal([]byte(cleanJSONResponse(raw)), &resp); err != nil {
		g.logger.WarnContext(ctx, "Gemini response was not valid JSON, using rule responder",
			slog.Any("error", err), slog.Int("response_length", len(raw)))
		return g.fallback.Respond(ctx, req)
	}
	if resp.UpdatedProfile == nil {
		resp.UpdatedProfile = req.UserProfile
	}
	return &resp, nil
}

func buildChatPrompt(req types.ChatServiceRequest) string {
	profileJSON, _ := json.Marshal(req.UserProfile)
	return fmt.Sprintf(`You are a travel planning assistant. The user said: %q.
Their preference profile so far: %s.
Reply with JSON only, no markdown, matching this schema:
{"chat_text": string,
 "ui_actions": [{"type": "card_add"|"prompt", "payload": object}],
 "updated_profile": object}
A card_add payload has: id, title, pitch, highlights (string array).
A prompt payload has: {"chips": [{"label": string, "value": string}]}.
Carry every existing profile key into updated_profile.`, req.Message, profileJSON)
}

func cardAction(card types.RecommendationCard) types.UIAction {
	payload, _ := json.Marshal(card)
	return types.UIAction{Type: types.ActionCardAdd, Payload: payload}
}

func promptAction(chips []types.Chip) types.UIAction {
	payload, _ := json.Marshal(types.PromptPayload{Chips: chips})
	return types.UIAction{Type: types.ActionPrompt, Payload: payload}
}

// attrMessageLength exists for handler spans.
func attrMessageLength(msg string) attribute.KeyValue {
	return attribute.Int("app.message.length", len(msg))
}
