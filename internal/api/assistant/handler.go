package assistant

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripcanvas/tripcanvas/internal/api"
	"github.com/tripcanvas/tripcanvas/internal/types"
)

type HandlerImpl struct {
	responder Responder
	logger    *slog.Logger
}

func NewHandlerImpl(responder Responder, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		responder: responder,
		logger:    logger,
	}
}

// Chat serves POST /api/chat, the same contract an external chat backend
// would expose.
func (h *HandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AssistantHandler").Start(r.Context(), "Chat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/chat"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Chat"))

	var req types.ChatServiceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		l.ErrorContext(ctx, "Message is required")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Message is required")
		return
	}
	span.SetAttributes(attrMessageLength(req.Message))

	resp, err := h.responder.Respond(ctx, req)
	if err != nil {
		l.ErrorContext(ctx, "Responder failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Responder error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to produce a reply")
		return
	}

	span.SetStatus(codes.Ok, "Reply produced")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
