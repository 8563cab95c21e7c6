package presenter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/usecase/chat"
)

// defaultMaxDetailed is the result count up to which each object gets its own
// detail card. Larger result sets collapse into a condensed list.
const defaultMaxDetailed = 4

// Attachment colors per state code. Non-nominal host states get their own
// shades so DOWN and UNREACHABLE are distinguishable at a glance.
var (
	hostStateColors = map[int]string{
		0: dto.ColorGood,
		1: dto.ColorDanger,
		2: "#BC1414",
	}
	serviceStateColors = map[int]string{
		0: dto.ColorGood,
		1: dto.ColorWarning,
		2: dto.ColorDanger,
		3: "#E066FF",
	}
)

// StatusFormatter renders status query results as chat responses with links
// into the Icinga Web 2 frontend.
type StatusFormatter struct {
	webURL      string
	maxDetailed int
}

// NewStatusFormatter creates a formatter. webURL is the Icinga Web 2 base URL
// without a trailing slash; maxDetailed values below one fall back to the
// default threshold.
func NewStatusFormatter(webURL string, maxDetailed int) *StatusFormatter {
	if maxDetailed < 1 {
		maxDetailed = defaultMaxDetailed
	}
	return &StatusFormatter{
		webURL:      strings.TrimRight(webURL, "/"),
		maxDetailed: maxDetailed,
	}
}

var _ chat.StatusPresenter = (*StatusFormatter)(nil)

// FormatStatus renders a host or service status result: detail cards for
// small result sets, a condensed list for large ones, and a descriptive
// message when nothing matched.
func (f *StatusFormatter) FormatStatus(objects []*entity.MonitoredObject, query *chat.StatusQuery) *dto.ChatResponse {
	if len(objects) == 0 {
		return f.formatEmpty(query)
	}

	typeName := strings.ToLower(query.ObjectType.String())
	heading := fmt.Sprintf("Found %d matching %s%s", len(objects), typeName, plural(len(objects)))

	resp := dto.NewResponse(heading)
	resp.AddBlock(heading)

	if len(objects) > f.maxDetailed {
		var lines []string
		for _, obj := range objects {
			lines = append(lines, fmt.Sprintf("• %s: %s", f.objectLink(obj), obj.StateLabel()))
		}
		resp.AddBlock(strings.Join(lines, "\n"))
		return resp
	}

	for _, obj := range objects {
		resp.AddAttachment(f.detailCard(obj))
	}
	return resp
}

// formatEmpty phrases a zero-result answer. When the implicit problem filter
// was in effect, no matches is good news and says so.
func (f *StatusFormatter) formatEmpty(query *chat.StatusQuery) *dto.ChatResponse {
	qualifier := ""
	if query.DefaultApplied {
		qualifier = "problematic "
	} else if len(query.StateLabels) > 0 {
		qualifier = strings.Join(query.StateLabels, "/") + " "
	}

	text := fmt.Sprintf("No %s%s objects", qualifier, strings.ToLower(query.ObjectType.String()))
	if len(query.NameFilters) > 0 {
		text += fmt.Sprintf(" for '%s'", strings.Join(query.NameFilters, " "))
	}
	text += " found."
	if query.DefaultApplied {
		text += " Everything seems in good condition."
	}
	return dto.NewResponse(text)
}

// detailCard renders one object as a colored attachment with its check
// output and handling state.
func (f *StatusFormatter) detailCard(obj *entity.MonitoredObject) dto.Attachment {
	return dto.Attachment{
		Color:    stateColor(obj),
		Text:     "*" + f.objectLink(obj) + "*",
		Fallback: obj.DisplayName() + ": " + obj.StateLabel(),
		Fields: []dto.Field{
			{Title: "Output", Value: obj.LastCheckOutput},
			{Title: "Status", Value: obj.StateLabel(), Short: true},
			{Title: "Last State Change", Value: obj.LastStateChange.Format("2006-01-02 15:04"), Short: true},
			{Title: "Acknowledged", Value: yesNo(obj.IsAcknowledged()), Short: true},
			{Title: "In Downtime", Value: yesNo(obj.InDowntime()), Short: true},
		},
	}
}

// FormatOverview renders the aggregated fleet snapshot as one card per object
// type plus an unhandled-problems headline.
func (f *StatusFormatter) FormatOverview(ov *chat.Overview) *dto.ChatResponse {
	resp := dto.NewResponse("Status overview")
	resp.AddBlock(fmt.Sprintf("*Found %s unhandled problem%s*",
		countWord(ov.Unhandled()), plural(ov.Unhandled())))

	resp.AddAttachment(overviewCard(entity.ObjectTypeHost, ov.HostStates,
		ov.HostsAcknowledged, ov.HostsInDowntime, ov.UnhandledHosts))
	resp.AddAttachment(overviewCard(entity.ObjectTypeService, ov.ServiceStates,
		ov.ServicesAcknowledged, ov.ServicesInDowntime, ov.UnhandledServices))
	return resp
}

func overviewCard(typ entity.ObjectType, states map[int]int, acked, downtimed, unhandled int) dto.Attachment {
	typeName := strings.ToLower(typ.String())
	color := dto.ColorGood
	if unhandled > 0 {
		color = dto.ColorDanger
	}

	fields := make([]dto.Field, 0, entity.StateCount(typ)+2)
	for code := 0; code < entity.StateCount(typ); code++ {
		fields = append(fields, dto.Field{
			Title: entity.StateLabel(typ, code),
			Value: fmt.Sprintf("%d", states[code]),
			Short: true,
		})
	}
	fields = append(fields,
		dto.Field{Title: "ACKNOWLEDGED", Value: fmt.Sprintf("%d", acked), Short: true},
		dto.Field{Title: "IN DOWNTIME", Value: fmt.Sprintf("%d", downtimed), Short: true},
	)

	return dto.Attachment{
		Color:    color,
		Text:     fmt.Sprintf("*%s unhandled %s%s*", countWord(unhandled), typeName, plural(unhandled)),
		Fields:   fields,
		Fallback: typ.String() + " status",
	}
}

// FormatFilterSyntaxError explains rejected status filter keywords, e.g. a
// service state used with the host status command.
func (f *StatusFormatter) FormatFilterSyntaxError(typ entity.ObjectType, tokens []string) *dto.ChatResponse {
	noun, verb := "filter", "is"
	if len(tokens) > 1 {
		noun, verb = "filters", "are"
	}

	resp := dto.NewResponse("Command error")
	resp.AddBlock("*I'm having trouble understanding what you meant*")
	resp.AddAttachment(dto.Attachment{
		Color: dto.ColorDanger,
		Text: fmt.Sprintf("%s '%s' %s not valid for %s status commands,\ncheck `help` command",
			noun, strings.Join(tokens, "', '"), verb, strings.ToLower(typ.String())),
		Fallback: "Command error",
	})
	return resp
}

// objectLink renders the object name as an Icinga Web 2 monitoring link, or
// plain text when no web URL is configured.
func (f *StatusFormatter) objectLink(obj *entity.MonitoredObject) string {
	if f.webURL == "" {
		return obj.DisplayName()
	}

	hostName := obj.Name
	if obj.Type == entity.ObjectTypeService {
		hostName = obj.HostName
	}
	hostLink := fmt.Sprintf("<%s/monitoring/host/show?host=%s|%s>",
		f.webURL, url.QueryEscape(hostName), hostName)

	if obj.Type != entity.ObjectTypeService {
		return hostLink
	}
	serviceLink := fmt.Sprintf("<%s/monitoring/service/show?host=%s&service=%s|%s>",
		f.webURL, url.QueryEscape(hostName), url.QueryEscape(obj.Name), obj.Name)
	return hostLink + " | " + serviceLink
}

func stateColor(obj *entity.MonitoredObject) string {
	colors := hostStateColors
	if obj.Type == entity.ObjectTypeService {
		colors = serviceStateColors
	}
	if c, ok := colors[obj.State]; ok {
		return c
	}
	return dto.ColorDanger
}

// countWord spells zero as "no" for friendlier headlines.
func countWord(n int) string {
	if n == 0 {
		return "no"
	}
	return fmt.Sprintf("%d", n)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
