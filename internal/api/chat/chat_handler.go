package chat

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"

	"github.com/triplore/triplore/internal/api"
	"github.com/triplore/triplore/internal/api/auth"
	"github.com/triplore/triplore/internal/types"
)

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

// Chat handles POST /api/v1/chat.
func (h *HandlerImpl) Chat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "Chat")
	defer span.End()
	r = r.WithContext(ctx)

	userID, ok := auth.GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req types.ChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	for _, m := range req.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			api.ErrorResponse(w, r, http.StatusBadRequest, "message role must be user or assistant")
			return
		}
	}

	resp := h.service.Converse(ctx, userID, req.SessionID, req.Messages)
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// ClearChat handles POST /api/v1/chat/clear.
func (h *HandlerImpl) ClearChat(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ChatHandler").Start(r.Context(), "ClearChat")
	defer span.End()
	r = r.WithContext(ctx)

	if _, ok := auth.GetUserIDFromContext(ctx); !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req types.ClearChatRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.SessionID == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "session_id is required")
		return
	}

	h.service.Clear(ctx, req.SessionID)
	api.WriteJSONResponse(w, r, http.StatusNoContent, nil)
}
