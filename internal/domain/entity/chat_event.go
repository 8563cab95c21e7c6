package entity

// ChatEvent is an inbound message from the chat platform. Bot-originated
// events are discarded before they reach the use case layer.
type ChatEvent struct {
	Text      string
	UserID    string
	ChannelID string
	IsBot     bool
}
