package chat

import "github.com/opschat/icinga-chatops/internal/adapter/dto"

// colorInfo is the accent color of informational cards.
const colorInfo = "#03A8F3"

// helpCommands lists every chat command with its usage line. Rendered as one
// attachment field each so the card stays scannable.
var helpCommands = []dto.Field{
	{Title: "help", Value: "this command"},
	{Title: "ping", Value: "answers with pong, tells you the bot is alive"},
	{Title: "host status (hs)", Value: "request host status, e.g. `hs down web01`"},
	{Title: "service status (ss)", Value: "request service status, e.g. `ss critical web01`"},
	{Title: "status overview (so)", Value: "aggregated overview of all unhandled problems"},
	{Title: "acknowledge (ack)", Value: "acknowledge problems, e.g. `ack web01 until tomorrow need to replace disk`"},
	{Title: "downtime (dt)", Value: "schedule a downtime, e.g. `dt web01 from now until 22:00 disk replacement`"},
	{Title: "history", Value: "recently performed acknowledgements and downtimes"},
	{Title: "reset (abort)", Value: "abort your current acknowledgement or downtime conversation"},
}

// helpResponse renders the command reference card.
func helpResponse() *dto.ChatResponse {
	resp := dto.NewResponse("Bot help")
	resp.AddBlock("*Following commands are implemented*")
	resp.AddAttachment(dto.Attachment{
		Color:    colorInfo,
		Fields:   helpCommands,
		Fallback: "Bot help",
	})
	return resp
}
