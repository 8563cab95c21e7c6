package entity

import "time"

// Command is the mutating action a conversation is collecting input for.
type Command int

const (
	CommandNone Command = iota
	CommandAcknowledge
	CommandDowntime
)

// String returns the user-facing name of the command.
func (c Command) String() string {
	switch c {
	case CommandAcknowledge:
		return "Acknowledgement"
	case CommandDowntime:
		return "Downtime"
	default:
		return "None"
	}
}

// Conversation is one user's in-progress multi-turn action. Fields are filled
// in strict order: command, filter, filter result, start date (downtime
// only), end date, description, confirmation. A conversation never survives
// past cancellation or dispatch.
type Conversation struct {
	UserID string

	Command Command

	// Filter holds the raw user-supplied filter tokens; FilterResult the
	// matched objects. FilterResult is immutable once set.
	Filter       []string
	FilterResult []*MonitoredObject
	ObjectType   ObjectType

	// StartDate/EndDate are zero until parsed. EndNever marks the
	// "never expires" sentinel instead of a concrete end date.
	StartDate time.Time
	EndDate   time.Time
	EndNever  bool

	// Last input text that failed date parsing, used to distinguish
	// "never asked" from "asked and failed".
	StartDateParseFailed string
	EndDateParseFailed   string

	Description string

	ConfirmationSent bool
	Confirmed        bool
	Canceled         bool
}

// NewConversation creates an empty conversation for the given user.
func NewConversation(userID string) *Conversation {
	return &Conversation{UserID: userID}
}

// HasCommand reports whether the command field has been filled.
func (c *Conversation) HasCommand() bool { return c.Command != CommandNone }

// HasFilter reports whether filter tokens have been captured.
func (c *Conversation) HasFilter() bool { return c.Filter != nil }

// HasFilterResult reports whether object resolution succeeded.
func (c *Conversation) HasFilterResult() bool { return len(c.FilterResult) > 0 }

// HasStartDate reports whether the start date has been parsed.
func (c *Conversation) HasStartDate() bool { return !c.StartDate.IsZero() }

// HasEndDate reports whether an end date (or the never sentinel) is set.
func (c *Conversation) HasEndDate() bool { return c.EndNever || !c.EndDate.IsZero() }

// HasDescription reports whether the comment has been captured.
func (c *Conversation) HasDescription() bool { return c.Description != "" }

// ClearStartDate resets the start date and any remembered parse failure.
func (c *Conversation) ClearStartDate() {
	c.StartDate = time.Time{}
	c.StartDateParseFailed = ""
}

// ClearEndDate resets the end date, the never sentinel and any remembered
// parse failure.
func (c *Conversation) ClearEndDate() {
	c.EndDate = time.Time{}
	c.EndNever = false
	c.EndDateParseFailed = ""
}
