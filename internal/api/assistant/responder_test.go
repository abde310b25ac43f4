package assistant

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

func newRuleResponder() *RuleResponder {
	return NewRuleResponder(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRuleResponderDestinationMention(t *testing.T) {
	resp, err := newRuleResponder().Respond(context.Background(), types.ChatServiceRequest{
		Message:   "I want to plan a trip to Paris",
		SessionID: "session_1_abc",
	})
	require.NoError(t, err)

	assert.Contains(t, resp.ChatText, "Paris")
	require.Len(t, resp.UIActions, 2)
	assert.Equal(t, types.ActionCardAdd, resp.UIActions[0].Type)
	card, err := resp.UIActions[0].CardAdd()
	require.NoError(t, err)
	assert.Equal(t, "paris_france", card.ID)

	assert.Equal(t, types.ActionPrompt, resp.UIActions[1].Type)
	prompt, err := resp.UIActions[1].Prompt()
	require.NoError(t, err)
	assert.Len(t, prompt.Chips, 3)
}

func TestRuleResponderPlanningIntentOnly(t *testing.T) {
	resp, err := newRuleResponder().Respond(context.Background(), types.ChatServiceRequest{
		Message: "help me plan a vacation",
	})
	require.NoError(t, err)

	require.Len(t, resp.UIActions, 1)
	assert.Equal(t, types.ActionPrompt, resp.UIActions[0].Type)
}

func TestRuleResponderSmallTalk(t *testing.T) {
	resp, err := newRuleResponder().Respond(context.Background(), types.ChatServiceRequest{
		Message: "hello!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ChatText)
	assert.Empty(t, resp.UIActions)
}

func TestRuleResponderCarriesProfile(t *testing.T) {
	profile := types.UserProfile{"beach": true}
	resp, err := newRuleResponder().Respond(context.Background(), types.ChatServiceRequest{
		Message:     "hi",
		UserProfile: profile,
	})
	require.NoError(t, err)
	assert.Equal(t, true, resp.UpdatedProfile["beach"])

	// nil profile comes back as an empty map, never nil
	resp, err = newRuleResponder().Respond(context.Background(), types.ChatServiceRequest{Message: "hi"})
	require.NoError(t, err)
	assert.NotNil(t, resp.UpdatedProfile)
}

func TestRuleResponderDeterministic(t *testing.T) {
	req := types.ChatServiceRequest{Message: "take me to Tokyo"}
	first, err := newRuleResponder().Respond(context.Background(), req)
	require.NoError(t, err)
	second, err := newRuleResponder().Respond(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCleanJSONResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanJSONResponse("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONResponse("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanJSONResponse(`{"a":1}`))
}
