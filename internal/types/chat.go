package types

import "encoding/json"

// UIActionType tags the structured instructions the chat service sends back.
// Unknown types are skipped at the boundary, never an error.
type UIActionType string

const (
	ActionCardAdd UIActionType = "card_add"
	ActionPrompt  UIActionType = "prompt"
)

// UIAction is a tagged variant; Payload is narrowed by type with the helpers
// below.
type UIAction struct {
	Type    UIActionType    `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// PromptPayload is the payload of an ActionPrompt variant.
type PromptPayload struct {
	Chips []Chip `json:"chips"`
}

// CardAdd narrows the payload of an ActionCardAdd variant.
func (a UIAction) CardAdd() (RecommendationCard, error) {
	var card RecommendationCard
	err := json.Unmarshal(a.Payload, &card)
	return card, err
}

// Prompt narrows the payload of an ActionPrompt variant.
func (a UIAction) Prompt() (PromptPayload, error) {
	var p PromptPayload
	err := json.Unmarshal(a.Payload, &p)
	return p, err
}

// ChatServiceRequest is the body of POST {backendBase}/api/chat.
type ChatServiceRequest struct {
	Message     string      `json:"message"`
	SessionID   string      `json:"session_id"`
	UserProfile UserProfile `json:"user_profile"`
}

// ChatServiceResponse is the chat service's structured reply. UpdatedProfile
// is authoritative and replaces the local profile wholesale.
type ChatServiceResponse struct {
	ChatText       string      `json:"chat_text"`
	UIActions      []UIAction  `json:"ui_actions"`
	UpdatedProfile UserProfile `json:"updated_profile"`
}
