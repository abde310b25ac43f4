package assistant

import (
	"context"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

// LocalChatClient satisfies the conversation chat client contract by calling
// a Responder in-process, skipping the HTTP hop entirely.
type LocalChatClient struct {
	responder Responder
}

func NewLocalChatClient(responder Responder) *LocalChatClient {
	return &LocalChatClient{responder: responder}
}

func (c *LocalChatClient) Send(ctx context.Context, req types.ChatServiceRequest) (*types.ChatServiceResponse, error) {
	return c.responder.Respond(ctx, req)
}
