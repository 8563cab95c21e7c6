package slack

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/infrastructure/config"
)

// Handler consumes inbound chat events and produces the response to post.
// A nil response means the event is ignored.
type Handler interface {
	HandleMessage(ctx context.Context, ev entity.ChatEvent) *dto.ChatResponse
}

// Client connects to Slack via Socket Mode, feeds message events to the
// handler and posts the responses. It also resolves user display names with
// a process-local cache.
type Client struct {
	api     *slack.Client
	socket  *socketmode.Client
	handler Handler
	logger  *slog.Logger

	botUserID string

	cacheMu   sync.RWMutex
	userCache map[string]string
}

// NewClient creates a new Socket Mode client. The message handler is set
// separately with SetHandler, since the handler usually needs the client for
// user name lookups.
func NewClient(cfg config.SlackConfig, logger *slog.Logger) (*Client, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}
	if cfg.AppToken == "" {
		return nil, fmt.Errorf("app token is required")
	}

	api := slack.New(
		cfg.BotToken,
		slack.OptionDebug(cfg.Debug),
		slack.OptionAppLevelToken(cfg.AppToken),
	)
	socket := socketmode.New(
		api,
		socketmode.OptionDebug(cfg.Debug),
	)

	return &Client{
		api:       api,
		socket:    socket,
		logger:    logger,
		userCache: make(map[string]string),
	}, nil
}

// SetHandler sets the message handler. Must be called before Run.
func (c *Client) SetHandler(handler Handler) {
	c.handler = handler
}

// Run connects and processes events until the context is canceled.
func (c *Client) Run(ctx context.Context) error {
	authTest, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("auth test failed: %w", err)
	}
	c.botUserID = authTest.UserID
	c.logger.Info("connected to slack",
		"team", authTest.Team,
		"bot_user_id", c.botUserID,
	)

	go c.eventLoop(ctx)

	return c.socket.RunContext(ctx)
}

func (c *Client) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-c.socket.Events:
			if !ok {
				return
			}
			c.handleSocketEvent(ctx, evt)
		}
	}
}

func (c *Client) handleSocketEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		c.logger.Debug("connecting to slack")
	case socketmode.EventTypeConnected:
		c.logger.Info("slack socket mode connection established")
	case socketmode.EventTypeConnectionError:
		c.logger.Error("slack connection error", "data", fmt.Sprint(evt.Data))
	case socketmode.EventTypeEventsAPI:
		apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			c.logger.Error("unexpected events api payload type")
			return
		}
		// Ack before handling so Slack does not redeliver while a slow
		// backend query runs.
		if evt.Request != nil {
			c.socket.Ack(*evt.Request)
		}
		c.handleEventsAPI(ctx, apiEvent)
	default:
		c.logger.Debug("ignoring socket mode event", "type", string(evt.Type))
	}
}

// handleEventsAPI dispatches inner Events API events. Direct messages arrive
// as message events; channel traffic is only handled when the bot is
// mentioned, so the two paths never fire for the same message.
func (c *Client) handleEventsAPI(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	if apiEvent.Type != slackevents.CallbackEvent {
		return
	}

	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		if ev.ChannelType != "im" || ev.SubType != "" {
			return
		}
		c.dispatch(ctx, entity.ChatEvent{
			Text:      ev.Text,
			UserID:    ev.User,
			ChannelID: ev.Channel,
			IsBot:     ev.BotID != "" || ev.User == c.botUserID,
		})
	case *slackevents.AppMentionEvent:
		c.dispatch(ctx, entity.ChatEvent{
			Text:      ev.Text,
			UserID:    ev.User,
			ChannelID: ev.Channel,
			IsBot:     ev.BotID != "" || ev.User == c.botUserID,
		})
	}
}

func (c *Client) dispatch(ctx context.Context, chatEv entity.ChatEvent) {
	if c.handler == nil {
		return
	}
	resp := c.handler.HandleMessage(ctx, chatEv)
	if resp == nil {
		return
	}
	if err := c.PostResponse(ctx, chatEv.ChannelID, resp); err != nil {
		c.logger.Error("posting response", "channel_id", chatEv.ChannelID, "error", err)
	}
}

// PostResponse posts a chat response to the given channel, mapping blocks to
// mrkdwn sections and attachments to legacy colored attachments.
func (c *Client) PostResponse(ctx context.Context, channelID string, resp *dto.ChatResponse) error {
	options := []slack.MsgOption{
		slack.MsgOptionText(resp.Text, false),
	}

	if len(resp.Blocks) > 0 {
		blocks := make([]slack.Block, 0, len(resp.Blocks))
		for _, text := range resp.Blocks {
			blocks = append(blocks, slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
				nil, nil,
			))
		}
		options = append(options, slack.MsgOptionBlocks(blocks...))
	}

	if len(resp.Attachments) > 0 {
		attachments := make([]slack.Attachment, 0, len(resp.Attachments))
		for _, a := range resp.Attachments {
			fields := make([]slack.AttachmentField, 0, len(a.Fields))
			for _, f := range a.Fields {
				fields = append(fields, slack.AttachmentField{
					Title: f.Title,
					Value: f.Value,
					Short: f.Short,
				})
			}
			attachments = append(attachments, slack.Attachment{
				Color:    a.Color,
				Text:     a.Text,
				Fields:   fields,
				Fallback: a.Fallback,
				Footer:   a.Footer,
			})
		}
		options = append(options, slack.MsgOptionAttachments(attachments...))
	}

	if _, _, err := c.api.PostMessageContext(ctx, channelID, options...); err != nil {
		return fmt.Errorf("posting slack message: %w", err)
	}
	return nil
}

// UserDisplayName resolves a user id to a display name, falling back to the
// raw id when the lookup fails. Results are cached for the process lifetime.
func (c *Client) UserDisplayName(ctx context.Context, userID string) string {
	c.cacheMu.RLock()
	name, ok := c.userCache[userID]
	c.cacheMu.RUnlock()
	if ok {
		return name
	}

	user, err := c.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		c.logger.Warn("resolving user name", "user_id", userID, "error", err)
		return userID
	}

	name = user.Profile.DisplayName
	if name == "" {
		name = user.RealName
	}
	if name == "" {
		name = user.Name
	}

	c.cacheMu.Lock()
	c.userCache[userID] = name
	c.cacheMu.Unlock()
	return name
}
