package conversation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/tripcanvas/tripcanvas/internal/api"
	"github.com/tripcanvas/tripcanvas/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateSession(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request)
	SendMessage(w http.ResponseWriter, r *http.Request)
	SelectChip(w http.ResponseWriter, r *http.Request)
	SetTripDetails(w http.ResponseWriter, r *http.Request)
	ApplyFilters(w http.ResponseWriter, r *http.Request)
	Personalize(w http.ResponseWriter, r *http.Request)
	ResetChat(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

func (h *HandlerImpl) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "CreateSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateSession"))

	session, err := h.service.CreateSession(ctx)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create session", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Service error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create session")
		return
	}

	span.SetAttributes(attribute.String("app.session.id", session.ID))
	span.SetStatus(codes.Ok, "Session created")
	api.WriteJSONResponse(w, r, http.StatusCreated, sessionPayload(session))
}

func (h *HandlerImpl) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "GetSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetSession"))

	sessionID := chi.URLParam(r, "sessionID")
	session, err := h.service.GetSession(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to load session")
		return
	}

	span.SetStatus(codes.Ok, "Success")
	api.WriteJSONResponse(w, r, http.StatusOK, sessionPayload(session))
}

func (h *HandlerImpl) SendMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "SendMessage", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}/messages"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SendMessage"))

	sessionID := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("app.session.id", sessionID))

	var req struct {
		Text string `json:"text"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.SendMessage(ctx, sessionID, req.Text)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to process message")
		return
	}

	span.SetStatus(codes.Ok, "Message processed")
	api.WriteJSONResponse(w, r, http.StatusOK, sessionPayload(session))
}

func (h *HandlerImpl) SelectChip(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "SelectChip", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}/chips"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SelectChip"))

	sessionID := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("app.session.id", sessionID))

	var chip types.Chip
	if err := api.DecodeJSONBody(w, r, &chip); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if chip.Value == "" {
		l.ErrorContext(ctx, "Chip value is required")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Chip value is required")
		return
	}

	session, err := h.service.SelectChip(ctx, sessionID, chip)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to process chip selection")
		return
	}

	span.SetStatus(codes.Ok, "Chip processed")
	api.WriteJSONResponse(w, r, http.StatusOK, sessionPayload(session))
}

func (h *HandlerImpl) SetTripDetails(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "SetTripDetails", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}/trip-details"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SetTripDetails"))

	sessionID := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("app.session.id", sessionID))

	var patch types.TripDetails
	if err := api.DecodeJSONBody(w, r, &patch); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.SetTripDetails(ctx, sessionID, patch)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to update trip details")
		return
	}

	span.SetAttributes(attribute.Bool("app.trip_details.complete", session.TripDetails.IsComplete()))
	span.SetStatus(codes.Ok, "Trip details updated")
	api.WriteJSONResponse(w, r, http.StatusOK, sessionPayload(session))
}

func (h *HandlerImpl) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "ApplyFilters", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}/apply-filters"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ApplyFilters"))

	sessionID := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("app.session.id", sessionID))

	session, err := h.service.ApplyFilters(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrTripDetailsIncomplete) {
			l.WarnContext(ctx, "Apply filters rejected, trip details incomplete")
			span.SetStatus(codes.Error, "Trip details incomplete")
			api.ErrorResponse(w, r, http.StatusConflict, "All four trip details must be set before applying filters")
			return
		}
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to apply filters")
		return
	}

	span.SetStatus(codes.Ok, "Filters applied")
	api.WriteJSONResponse(w, r, http.StatusOK, sessionPayload(session))
}

func (h *HandlerImpl) Personalize(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "Personalize", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}/personalize"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Personalize"))

	sessionID := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("app.session.id", sessionID))

	var req struct {
		Responses types.PersonalizationResponse `json:"responses"`
	}
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := h.service.Personalize(ctx, sessionID, req.Responses)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to generate plan")
		return
	}

	span.SetStatus(codes.Ok, "Plan generated")
	api.WriteJSONResponse(w, r, http.StatusOK, sessionPayload(session))
}

func (h *HandlerImpl) ResetChat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ConversationHandler").Start(r.Context(), "ResetChat", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/sessions/{sessionID}/reset"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ResetChat"))

	sessionID := chi.URLParam(r, "sessionID")
	span.SetAttributes(attribute.String("app.session.id", sessionID))

	session, err := h.service.ResetChat(ctx, sessionID)
	if err != nil {
		h.writeServiceError(ctx, w, r, l, span, err, "Failed to reset chat")
		return
	}

	span.SetStatus(codes.Ok, "Chat reset")
	api.WriteJSONResponse(w, r, http.StatusOK, sessionPayload(session))
}

func (h *HandlerImpl) writeServiceError(ctx context.Context, w http.ResponseWriter, r *http.Request, l *slog.Logger, span trace.Span, err error, msg string) {
	if errors.Is(err, ErrSessionNotFound) {
		l.WarnContext(ctx, "Session not found")
		span.SetStatus(codes.Error, "Session not found")
		api.ErrorResponse(w, r, http.StatusNotFound, "Session not found")
		return
	}
	l.ErrorContext(ctx, msg, slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "Service error")
	api.ErrorResponse(w, r, http.StatusInternalServerError, msg)
}

func sessionPayload(session *types.Session) any {
	return struct {
		Data *types.Session `json:"data"`
	}{Data: session}
}
