package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
)

func TestStatusQuery_DefaultProblemFilter(t *testing.T) {
	gw := &fakeGateway{hosts: []*entity.MonitoredObject{problemHost("web01")}}
	uc := NewStatusUseCase(gw, testLogger())

	objects, query, err := uc.Query(context.Background(), entity.ObjectTypeHost, nil)
	require.NoError(t, err)

	assert.Len(t, objects, 1)
	assert.True(t, query.DefaultApplied)
	require.Len(t, gw.listCalls, 1)
	assert.Equal(t, []string{"host.state != 0"}, gw.listCalls[0].filterExprs)
	assert.Empty(t, gw.listCalls[0].nameFilters)
}

func TestStatusQuery_StateKeywords(t *testing.T) {
	gw := &fakeGateway{}
	uc := NewStatusUseCase(gw, testLogger())

	_, query, err := uc.Query(context.Background(), entity.ObjectTypeHost, []string{"down", "web01"})
	require.NoError(t, err)

	assert.False(t, query.DefaultApplied)
	assert.Equal(t, []string{"DOWN"}, query.StateLabels)
	assert.Equal(t, []string{"web01"}, query.NameFilters)
	require.Len(t, gw.listCalls, 1)
	assert.Equal(t, []string{"host.state == 1"}, gw.listCalls[0].filterExprs)
	assert.Equal(t, []string{"web01"}, gw.listCalls[0].nameFilters)
}

func TestStatusQuery_MultipleStatesCombineAsAlternatives(t *testing.T) {
	gw := &fakeGateway{}
	uc := NewStatusUseCase(gw, testLogger())

	_, _, err := uc.Query(context.Background(), entity.ObjectTypeService, []string{"warn", "crit"})
	require.NoError(t, err)

	require.Len(t, gw.listCalls, 1)
	assert.Equal(t, []string{"( service.state == 1 || service.state == 2 )"}, gw.listCalls[0].filterExprs)
}

func TestStatusQuery_All(t *testing.T) {
	gw := &fakeGateway{}
	uc := NewStatusUseCase(gw, testLogger())

	_, query, err := uc.Query(context.Background(), entity.ObjectTypeService, []string{"all"})
	require.NoError(t, err)

	assert.True(t, query.ShowAll)
	assert.False(t, query.DefaultApplied)
	assert.Empty(t, gw.listCalls[0].filterExprs)
}

func TestStatusQuery_ForeignKeywordRejected(t *testing.T) {
	gw := &fakeGateway{}
	uc := NewStatusUseCase(gw, testLogger())

	_, _, err := uc.Query(context.Background(), entity.ObjectTypeHost, []string{"critical", "web01"})
	require.Error(t, err)

	var syntaxErr *FilterSyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Equal(t, []string{"critical"}, syntaxErr.Tokens)
	assert.Empty(t, gw.listCalls)
}

func TestStatusQuery_BackendError(t *testing.T) {
	gw := &fakeGateway{listErr: assert.AnError}
	uc := NewStatusUseCase(gw, testLogger())

	_, _, err := uc.Query(context.Background(), entity.ObjectTypeHost, nil)
	require.Error(t, err)

	var backendErr *BackendQueryError
	assert.ErrorAs(t, err, &backendErr)
}

func TestOverview_Collect(t *testing.T) {
	acked := problemHost("db01")
	acked.Acknowledgement = 1
	downtimed := problemService("web01", "http")
	downtimed.DowntimeDepth = 1

	gw := &fakeGateway{
		hosts: []*entity.MonitoredObject{
			{Type: entity.ObjectTypeHost, Name: "web01", State: 0},
			problemHost("web02"),
			acked,
		},
		services: []*entity.MonitoredObject{
			{Type: entity.ObjectTypeService, Name: "disk", HostName: "web01", State: 0},
			problemService("web02", "http"),
			downtimed,
		},
	}
	uc := NewOverviewUseCase(gw, testLogger())

	ov, err := uc.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, ov.HostStates[0])
	assert.Equal(t, 2, ov.HostStates[1])
	assert.Equal(t, 1, ov.HostsAcknowledged)
	assert.Equal(t, 1, ov.UnhandledHosts)

	assert.Equal(t, 1, ov.ServiceStates[0])
	assert.Equal(t, 2, ov.ServiceStates[2])
	assert.Equal(t, 1, ov.ServicesInDowntime)
	assert.Equal(t, 1, ov.UnhandledServices)

	assert.Equal(t, 2, ov.Unhandled())
}

func TestResolve_HostThenServiceFallback(t *testing.T) {
	gw := &fakeGateway{services: []*entity.MonitoredObject{problemService("web01", "http")}}
	uc := NewResolveFilterUseCase(gw, testLogger())

	objects, typ, err := uc.Resolve(context.Background(), entity.CommandDowntime, []string{"http"})
	require.NoError(t, err)

	assert.Equal(t, entity.ObjectTypeService, typ)
	assert.Len(t, objects, 1)
	// Host lookup came first and found nothing.
	require.Len(t, gw.listCalls, 2)
	assert.Equal(t, entity.ObjectTypeHost, gw.listCalls[0].typ)
	assert.Equal(t, entity.ObjectTypeService, gw.listCalls[1].typ)
}

func TestResolve_AckFiltersAcknowledged(t *testing.T) {
	acked := problemHost("db01")
	acked.Acknowledgement = 1
	gw := &fakeGateway{hosts: []*entity.MonitoredObject{problemHost("web01"), acked}}
	uc := NewResolveFilterUseCase(gw, testLogger())

	objects, _, err := uc.Resolve(context.Background(), entity.CommandAcknowledge, []string{"0"})
	require.NoError(t, err)

	require.Len(t, objects, 1)
	assert.Equal(t, "web01", objects[0].Name)
	// Acknowledgements only target problem objects.
	assert.Equal(t, []string{"host.state != 0"}, gw.listCalls[0].filterExprs)
}
