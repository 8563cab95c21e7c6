package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/infrastructure/observability"
	"github.com/opschat/icinga-chatops/internal/usecase/chat"
)

// UserDirectory resolves chat user ids to display names.
type UserDirectory interface {
	UserDisplayName(ctx context.Context, userID string) string
}

// ChatHandler bridges the chat transport and the message router: it resolves
// the author, routes the message and records metrics.
type ChatHandler struct {
	router  *chat.Router
	users   UserDirectory
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(router *chat.Router, users UserDirectory, metrics *observability.Metrics, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		router:  router,
		users:   users,
		metrics: metrics,
		logger:  logger,
	}
}

// HandleMessage processes one inbound chat event. A nil return means the
// event was ignored.
func (h *ChatHandler) HandleMessage(ctx context.Context, ev entity.ChatEvent) *dto.ChatResponse {
	if ev.IsBot {
		return nil
	}

	start := time.Now()
	intent := entity.ParseIntent(ev.Text)

	author := h.users.UserDisplayName(ctx, ev.UserID)

	resp, err := h.router.Route(ctx, ev, author)
	if h.metrics != nil {
		h.metrics.RecordMessage(ctx, intent.Kind.String(), time.Since(start))
	}
	if err != nil {
		h.logger.Error("handling chat message",
			"user_id", ev.UserID,
			"intent", intent.Kind.String(),
			"error", err,
		)
		return dto.NewErrorResponse("Internal error", "something went wrong handling your message, please try again")
	}
	return resp
}
