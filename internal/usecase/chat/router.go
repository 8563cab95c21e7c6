package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
)

// StatusPresenter renders status query results into chat responses. Declared
// here so the routing layer depends on behavior, not on a concrete formatter.
type StatusPresenter interface {
	FormatStatus(objects []*entity.MonitoredObject, query *StatusQuery) *dto.ChatResponse
	FormatOverview(ov *Overview) *dto.ChatResponse
	FormatFilterSyntaxError(typ entity.ObjectType, tokens []string) *dto.ChatResponse
}

// Router classifies inbound chat messages and hands them to the matching use
// case. Messages that match no command continue an in-progress conversation
// if one exists.
type Router struct {
	store     repository.ConversationStore
	converse  *ConverseUseCase
	status    *StatusUseCase
	overview  *OverviewUseCase
	history   *HistoryUseCase
	presenter StatusPresenter
	logger    *slog.Logger
}

// NewRouter creates a new message router.
func NewRouter(
	store repository.ConversationStore,
	converse *ConverseUseCase,
	status *StatusUseCase,
	overview *OverviewUseCase,
	history *HistoryUseCase,
	presenter StatusPresenter,
	logger *slog.Logger,
) *Router {
	return &Router{
		store:     store,
		converse:  converse,
		status:    status,
		overview:  overview,
		history:   history,
		presenter: presenter,
		logger:    logger,
	}
}

// Route handles one inbound message and returns the response to post, or
// nil for messages the bot ignores (its own and other bots' messages).
func (r *Router) Route(ctx context.Context, ev entity.ChatEvent, author string) (*dto.ChatResponse, error) {
	if ev.IsBot {
		return nil, nil
	}

	text := entity.StripMention(ev.Text)
	if text == "" || ev.UserID == "" {
		r.logger.Warn("discarding malformed chat event", "user_id", ev.UserID, "channel_id", ev.ChannelID)
		return dto.NewErrorResponse("Slack message error", "received a message without text or user id"), nil
	}

	intent := entity.ParseIntent(text)
	r.logger.Debug("message routed", "user_id", ev.UserID, "intent", int(intent.Kind))

	switch intent.Kind {
	case entity.IntentHelp:
		return helpResponse(), nil

	case entity.IntentPing:
		return dto.NewResponse("pong"), nil

	case entity.IntentReset:
		if err := r.store.Delete(ctx, ev.UserID); err != nil {
			return nil, fmt.Errorf("resetting conversation: %w", err)
		}
		return dto.NewResponse("Your conversation has been reset."), nil

	case entity.IntentHostStatus:
		return r.statusQuery(ctx, entity.ObjectTypeHost, intent.Args)

	case entity.IntentServiceStatus:
		return r.statusQuery(ctx, entity.ObjectTypeService, intent.Args)

	case entity.IntentStatusOverview:
		ov, err := r.overview.Collect(ctx)
		if err != nil {
			return backendErrorResponse(err), nil
		}
		return r.presenter.FormatOverview(ov), nil

	case entity.IntentHistory:
		return r.history.Recent(ctx)

	case entity.IntentAcknowledge, entity.IntentDowntime:
		return r.converse.Process(ctx, ev.UserID, author, intent.Text)

	default:
		// Free-form text continues an in-progress conversation; without
		// one it is just an unknown command.
		conv, err := r.store.Find(ctx, ev.UserID)
		if err != nil {
			return nil, fmt.Errorf("looking up conversation: %w", err)
		}
		if conv != nil {
			return r.converse.Process(ctx, ev.UserID, author, intent.Text)
		}
		return dto.NewResponse("I didn't understand the command. Please use `help` for more details."), nil
	}
}

func (r *Router) statusQuery(ctx context.Context, typ entity.ObjectType, args string) (*dto.ChatResponse, error) {
	objects, query, err := r.status.Query(ctx, typ, strings.Fields(args))
	if err != nil {
		var syntaxErr *FilterSyntaxError
		if errors.As(err, &syntaxErr) {
			return r.presenter.FormatFilterSyntaxError(typ, syntaxErr.Tokens), nil
		}
		return backendErrorResponse(err), nil
	}
	return r.presenter.FormatStatus(objects, query), nil
}

func backendErrorResponse(err error) *dto.ChatResponse {
	return dto.NewErrorResponse("Icinga request error", err.Error())
}
