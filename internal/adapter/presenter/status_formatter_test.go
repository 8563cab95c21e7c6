package presenter

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/usecase/chat"
)

const testWebURL = "https://icinga.example.com/icingaweb2"

func host(name string, state int) *entity.MonitoredObject {
	return &entity.MonitoredObject{
		Type:            entity.ObjectTypeHost,
		Name:            name,
		State:           state,
		LastCheckOutput: "PING CRITICAL",
		LastStateChange: time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local),
	}
}

func service(hostName, name string, state int) *entity.MonitoredObject {
	return &entity.MonitoredObject{
		Type:            entity.ObjectTypeService,
		Name:            name,
		HostName:        hostName,
		State:           state,
		LastCheckOutput: "HTTP WARNING",
		LastStateChange: time.Date(2024, 3, 12, 9, 0, 0, 0, time.Local),
	}
}

func TestFormatStatus_DetailCards(t *testing.T) {
	f := NewStatusFormatter(testWebURL, 4)
	query := &chat.StatusQuery{ObjectType: entity.ObjectTypeHost, DefaultApplied: true}

	resp := f.FormatStatus([]*entity.MonitoredObject{host("web01", 1), host("web02", 2)}, query)

	assert.Equal(t, "Found 2 matching hosts", resp.Text)
	require.Len(t, resp.Attachments, 2)

	card := resp.Attachments[0]
	assert.Equal(t, dto.ColorDanger, card.Color)
	assert.Contains(t, card.Text, "<https://icinga.example.com/icingaweb2/monitoring/host/show?host=web01|web01>")
	assert.Equal(t, "web01: DOWN", card.Fallback)
	require.Len(t, card.Fields, 5)
	assert.Equal(t, "PING CRITICAL", card.Fields[0].Value)
	assert.Equal(t, "DOWN", card.Fields[1].Value)

	// UNREACHABLE gets its own shade.
	assert.Equal(t, "#BC1414", resp.Attachments[1].Color)
}

func TestFormatStatus_CondensedAboveThreshold(t *testing.T) {
	f := NewStatusFormatter("", 2)
	query := &chat.StatusQuery{ObjectType: entity.ObjectTypeHost, DefaultApplied: true}

	objects := []*entity.MonitoredObject{host("a", 1), host("b", 1), host("c", 1)}
	resp := f.FormatStatus(objects, query)

	assert.Empty(t, resp.Attachments)
	require.Len(t, resp.Blocks, 2)
	assert.Equal(t, "Found 3 matching hosts", resp.Blocks[0])
	assert.Contains(t, resp.Blocks[1], "• a: DOWN")
	assert.Contains(t, resp.Blocks[1], "• c: DOWN")
}

func TestFormatStatus_ServiceLinks(t *testing.T) {
	f := NewStatusFormatter(testWebURL, 4)
	query := &chat.StatusQuery{ObjectType: entity.ObjectTypeService, DefaultApplied: true}

	resp := f.FormatStatus([]*entity.MonitoredObject{service("web 01", "http", 1)}, query)

	require.Len(t, resp.Attachments, 1)
	text := resp.Attachments[0].Text
	assert.Contains(t, text, "host/show?host=web+01|web 01")
	assert.Contains(t, text, "service/show?host=web+01&service=http|http")
	assert.Equal(t, dto.ColorWarning, resp.Attachments[0].Color)
}

func TestFormatStatus_EmptyDefaultIsGoodNews(t *testing.T) {
	f := NewStatusFormatter(testWebURL, 4)

	resp := f.FormatStatus(nil, &chat.StatusQuery{
		ObjectType:     entity.ObjectTypeHost,
		DefaultApplied: true,
	})
	assert.Equal(t, "No problematic host objects found. Everything seems in good condition.", resp.Text)
}

func TestFormatStatus_EmptyExplicitQuery(t *testing.T) {
	f := NewStatusFormatter(testWebURL, 4)

	resp := f.FormatStatus(nil, &chat.StatusQuery{
		ObjectType:  entity.ObjectTypeService,
		StateLabels: []string{"CRITICAL"},
		NameFilters: []string{"web01"},
	})
	assert.Equal(t, "No CRITICAL service objects for 'web01' found.", resp.Text)
}

func TestFormatOverview(t *testing.T) {
	f := NewStatusFormatter(testWebURL, 4)
	ov := &chat.Overview{
		HostStates:         map[int]int{0: 10, 1: 2},
		ServiceStates:      map[int]int{0: 40, 2: 3},
		HostsAcknowledged:  1,
		ServicesInDowntime: 2,
		UnhandledHosts:     1,
		UnhandledServices:  0,
	}

	resp := f.FormatOverview(ov)

	require.Len(t, resp.Blocks, 1)
	assert.Equal(t, "*Found 1 unhandled problem*", resp.Blocks[0])
	require.Len(t, resp.Attachments, 2)

	hostCard := resp.Attachments[0]
	assert.Equal(t, dto.ColorDanger, hostCard.Color)
	assert.Equal(t, "*1 unhandled host*", hostCard.Text)
	require.Len(t, hostCard.Fields, 5)
	assert.Equal(t, dto.Field{Title: "UP", Value: "10", Short: true}, hostCard.Fields[0])
	assert.Equal(t, dto.Field{Title: "DOWN", Value: "2", Short: true}, hostCard.Fields[1])
	assert.Equal(t, dto.Field{Title: "ACKNOWLEDGED", Value: "1", Short: true}, hostCard.Fields[3])

	serviceCard := resp.Attachments[1]
	assert.Equal(t, dto.ColorGood, serviceCard.Color)
	assert.Equal(t, "*no unhandled services*", serviceCard.Text)
	require.Len(t, serviceCard.Fields, 6)
	assert.Equal(t, dto.Field{Title: "IN DOWNTIME", Value: "2", Short: true}, serviceCard.Fields[5])
}

func TestFormatOverview_AllClear(t *testing.T) {
	f := NewStatusFormatter(testWebURL, 4)
	ov := &chat.Overview{HostStates: map[int]int{}, ServiceStates: map[int]int{}}

	resp := f.FormatOverview(ov)
	assert.Equal(t, "*Found no unhandled problems*", resp.Blocks[0])
}

func TestFormatFilterSyntaxError(t *testing.T) {
	f := NewStatusFormatter(testWebURL, 4)

	resp := f.FormatFilterSyntaxError(entity.ObjectTypeHost, []string{"critical"})
	require.Len(t, resp.Attachments, 1)
	assert.Equal(t, "filter 'critical' is not valid for host status commands,\ncheck `help` command", resp.Attachments[0].Text)

	resp = f.FormatFilterSyntaxError(entity.ObjectTypeService, []string{"down", "unreachable"})
	assert.Equal(t, "filters 'down', 'unreachable' are not valid for service status commands,\ncheck `help` command", resp.Attachments[0].Text)
}

func TestObjectLink_NoWebURL(t *testing.T) {
	f := NewStatusFormatter("", 4)
	assert.Equal(t, "web01 - http", f.objectLink(service("web01", "http", 0)))
	assert.Equal(t, "web01", f.objectLink(host("web01", 0)))
}

func TestNewStatusFormatter_Defaults(t *testing.T) {
	f := NewStatusFormatter(testWebURL+"/", 0)
	assert.Equal(t, defaultMaxDetailed, f.maxDetailed)
	assert.Equal(t, testWebURL, f.webURL)

	// Threshold boundary: exactly maxDetailed objects still get cards.
	objects := make([]*entity.MonitoredObject, defaultMaxDetailed)
	for i := range objects {
		objects[i] = host(fmt.Sprintf("h%d", i), 1)
	}
	resp := f.FormatStatus(objects, &chat.StatusQuery{ObjectType: entity.ObjectTypeHost, DefaultApplied: true})
	assert.Len(t, resp.Attachments, defaultMaxDetailed)
}
