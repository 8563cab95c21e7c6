package entity

import (
	"regexp"
	"strings"
)

// IntentKind identifies what the user asked the bot to do.
type IntentKind int

const (
	IntentUnrecognized IntentKind = iota
	IntentHelp
	IntentPing
	IntentReset
	IntentHostStatus
	IntentServiceStatus
	IntentStatusOverview
	IntentAcknowledge
	IntentDowntime
	IntentHistory
)

// String returns a stable lowercase name, used as a metric label.
func (k IntentKind) String() string {
	switch k {
	case IntentHelp:
		return "help"
	case IntentPing:
		return "ping"
	case IntentReset:
		return "reset"
	case IntentHostStatus:
		return "host_status"
	case IntentServiceStatus:
		return "service_status"
	case IntentStatusOverview:
		return "status_overview"
	case IntentAcknowledge:
		return "acknowledge"
	case IntentDowntime:
		return "downtime"
	case IntentHistory:
		return "history"
	default:
		return "unrecognized"
	}
}

// Intent is the result of classifying an inbound message. Args holds the
// message remainder after the command words have been consumed; for
// IntentAcknowledge and IntentDowntime Text holds the full message so the
// conversation parser can consume the command token itself.
type Intent struct {
	Kind IntentKind
	Args string
	Text string
}

// mentionPattern matches a leading bot mention like "<@U024BE7LH> ...".
var mentionPattern = regexp.MustCompile(`^<@([WU][A-Z0-9]+?)>(.*)$`)

// StripMention removes a leading bot mention from a message.
func StripMention(text string) string {
	if m := mentionPattern.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
		return strings.TrimSpace(m[2])
	}
	return strings.TrimSpace(text)
}

// ParseIntent classifies a chat message. Multi-word commands are matched
// before their abbreviations so "service status critical" and "ss critical"
// yield the same intent and args.
func ParseIntent(text string) Intent {
	text = StripMention(text)
	lower := strings.ToLower(text)
	fields := strings.Fields(lower)
	if len(fields) == 0 {
		return Intent{Kind: IntentUnrecognized, Text: text}
	}

	rest := func(consumed int) string {
		f := strings.Fields(text)
		return strings.Join(f[consumed:], " ")
	}

	switch {
	case fields[0] == "help":
		return Intent{Kind: IntentHelp, Text: text}
	case fields[0] == "ping":
		return Intent{Kind: IntentPing, Text: text}
	case fields[0] == "reset" || fields[0] == "abort":
		return Intent{Kind: IntentReset, Text: text}
	case len(fields) >= 2 && fields[0] == "host" && fields[1] == "status":
		return Intent{Kind: IntentHostStatus, Args: rest(2), Text: text}
	case fields[0] == "hs":
		return Intent{Kind: IntentHostStatus, Args: rest(1), Text: text}
	case len(fields) >= 2 && fields[0] == "service" && fields[1] == "status":
		return Intent{Kind: IntentServiceStatus, Args: rest(2), Text: text}
	case fields[0] == "ss":
		return Intent{Kind: IntentServiceStatus, Args: rest(1), Text: text}
	case len(fields) >= 2 && fields[0] == "status" && fields[1] == "overview":
		return Intent{Kind: IntentStatusOverview, Text: text}
	case fields[0] == "so":
		return Intent{Kind: IntentStatusOverview, Text: text}
	case fields[0] == "history":
		return Intent{Kind: IntentHistory, Text: text}
	case strings.HasPrefix(fields[0], "ack"):
		return Intent{Kind: IntentAcknowledge, Text: text}
	case strings.HasPrefix(fields[0], "dt") || strings.HasPrefix(fields[0], "downtime"):
		return Intent{Kind: IntentDowntime, Text: text}
	default:
		return Intent{Kind: IntentUnrecognized, Text: text}
	}
}
