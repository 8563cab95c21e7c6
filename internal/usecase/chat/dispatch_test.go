package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
)

func TestDispatch_AcknowledgeWithExpiry(t *testing.T) {
	gw := &fakeGateway{}
	audit := &fakeAudit{}
	uc := NewDispatchUseCase(gw, audit, testLogger())

	end := time.Date(2099, 1, 2, 15, 4, 0, 0, time.Local)
	conv := &entity.Conversation{
		UserID:       "U1",
		Command:      entity.CommandAcknowledge,
		ObjectType:   entity.ObjectTypeHost,
		FilterResult: []*entity.MonitoredObject{problemHost("web01"), problemHost("web02")},
		EndDate:      end,
		Description:  "broken disk",
	}

	resp, err := uc.Execute(context.Background(), conv, "jane")
	require.NoError(t, err)
	assert.Equal(t, "Successfully acknowledged 2 host problems!", resp.Text)

	require.Len(t, gw.ackReqs, 1)
	req := gw.ackReqs[0]
	assert.Equal(t, `( host.name=="web01" || host.name=="web02" )`, req.FilterExpr)
	assert.Equal(t, "jane", req.Author)
	assert.Equal(t, "broken disk", req.Comment)
	assert.True(t, req.Sticky)
	require.NotNil(t, req.Expiry)
	assert.Equal(t, end, *req.Expiry)

	require.Len(t, audit.saved, 1)
	rec := audit.saved[0]
	assert.Equal(t, entity.CommandAcknowledge, rec.Action)
	assert.Equal(t, 2, rec.ObjectCount)
	assert.True(t, rec.Success)
	assert.Nil(t, rec.StartTime)
	require.NotNil(t, rec.EndTime)
	assert.Equal(t, end, *rec.EndTime)
}

func TestDispatch_AcknowledgeNeverExpires(t *testing.T) {
	gw := &fakeGateway{}
	audit := &fakeAudit{}
	uc := NewDispatchUseCase(gw, audit, testLogger())

	conv := &entity.Conversation{
		UserID:       "U1",
		Command:      entity.CommandAcknowledge,
		ObjectType:   entity.ObjectTypeHost,
		FilterResult: []*entity.MonitoredObject{problemHost("web01")},
		EndNever:     true,
		Description:  "known issue",
	}

	_, err := uc.Execute(context.Background(), conv, "jane")
	require.NoError(t, err)

	require.Len(t, gw.ackReqs, 1)
	assert.Nil(t, gw.ackReqs[0].Expiry)
	require.Len(t, audit.saved, 1)
	assert.Nil(t, audit.saved[0].EndTime)
}

func TestDispatch_DowntimeServicePair(t *testing.T) {
	gw := &fakeGateway{}
	audit := &fakeAudit{}
	uc := NewDispatchUseCase(gw, audit, testLogger())

	start := time.Date(2099, 1, 2, 8, 0, 0, 0, time.Local)
	end := start.Add(4 * time.Hour)
	conv := &entity.Conversation{
		UserID:       "U1",
		Command:      entity.CommandDowntime,
		ObjectType:   entity.ObjectTypeService,
		FilterResult: []*entity.MonitoredObject{problemService("web01", "http")},
		StartDate:    start,
		EndDate:      end,
		Description:  "maintenance",
	}

	resp, err := uc.Execute(context.Background(), conv, "jane")
	require.NoError(t, err)
	assert.Equal(t, "Successfully scheduled downtime for 1 object!", resp.Text)

	require.Len(t, gw.dtReqs, 1)
	req := gw.dtReqs[0]
	assert.Equal(t, `( host.name=="web01" && service.name=="http" )`, req.FilterExpr)
	assert.Equal(t, start, req.StartTime)
	assert.Equal(t, end, req.EndTime)
	assert.Equal(t, 4*time.Hour, req.Duration)
	assert.False(t, req.AllServices)

	require.Len(t, audit.saved, 1)
	require.NotNil(t, audit.saved[0].StartTime)
	assert.Equal(t, start, *audit.saved[0].StartTime)
}

func TestDispatch_HostDowntimeCoversServices(t *testing.T) {
	gw := &fakeGateway{}
	uc := NewDispatchUseCase(gw, &fakeAudit{}, testLogger())

	conv := &entity.Conversation{
		UserID:       "U1",
		Command:      entity.CommandDowntime,
		ObjectType:   entity.ObjectTypeHost,
		FilterResult: []*entity.MonitoredObject{problemHost("web01")},
		StartDate:    time.Date(2099, 1, 2, 8, 0, 0, 0, time.Local),
		EndDate:      time.Date(2099, 1, 2, 9, 0, 0, 0, time.Local),
		Description:  "reboot",
	}

	_, err := uc.Execute(context.Background(), conv, "jane")
	require.NoError(t, err)

	require.Len(t, gw.dtReqs, 1)
	assert.True(t, gw.dtReqs[0].AllServices)
}

func TestDispatch_BackendFailureIsAudited(t *testing.T) {
	gw := &fakeGateway{ackErr: errors.New("api unreachable")}
	audit := &fakeAudit{}
	uc := NewDispatchUseCase(gw, audit, testLogger())

	conv := &entity.Conversation{
		UserID:       "U1",
		Command:      entity.CommandAcknowledge,
		ObjectType:   entity.ObjectTypeHost,
		FilterResult: []*entity.MonitoredObject{problemHost("web01")},
		EndNever:     true,
		Description:  "oops",
	}

	resp, err := uc.Execute(context.Background(), conv, "jane")
	require.NoError(t, err)
	require.Len(t, resp.Attachments, 1)
	assert.Equal(t, "Icinga request error", resp.Attachments[0].Fallback)
	assert.Contains(t, resp.Attachments[0].Text, "api unreachable")

	require.Len(t, audit.saved, 1)
	assert.False(t, audit.saved[0].Success)
	assert.Equal(t, "api unreachable", audit.saved[0].Error)
}

func TestDispatch_AuditFailureDoesNotFailAction(t *testing.T) {
	gw := &fakeGateway{}
	audit := &fakeAudit{saveErr: errors.New("disk full")}
	uc := NewDispatchUseCase(gw, audit, testLogger())

	conv := &entity.Conversation{
		UserID:       "U1",
		Command:      entity.CommandAcknowledge,
		ObjectType:   entity.ObjectTypeHost,
		FilterResult: []*entity.MonitoredObject{problemHost("web01")},
		EndNever:     true,
		Description:  "fine",
	}

	resp, err := uc.Execute(context.Background(), conv, "jane")
	require.NoError(t, err)
	assert.Equal(t, "Successfully acknowledged 1 host problem!", resp.Text)
	require.Len(t, gw.ackReqs, 1)
}
