package icinga

import (
	"context"
	"strings"
	"time"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
	"github.com/opschat/icinga-chatops/internal/infrastructure/observability"
)

// InstrumentedGateway decorates a MonitoringGateway with query and action
// metrics.
type InstrumentedGateway struct {
	inner   repository.MonitoringGateway
	metrics *observability.Metrics
}

// NewInstrumentedGateway wraps gateway with metrics recording. A nil metrics
// pointer returns the gateway unchanged.
func NewInstrumentedGateway(gateway repository.MonitoringGateway, metrics *observability.Metrics) repository.MonitoringGateway {
	if metrics == nil {
		return gateway
	}
	return &InstrumentedGateway{inner: gateway, metrics: metrics}
}

// ListObjects implements repository.MonitoringGateway.
func (g *InstrumentedGateway) ListObjects(ctx context.Context, typ entity.ObjectType, filterExprs, nameFilters []string) ([]*entity.MonitoredObject, error) {
	start := time.Now()
	objects, err := g.inner.ListObjects(ctx, typ, filterExprs, nameFilters)
	g.metrics.RecordBackendQuery(ctx, "list_"+strings.ToLower(typ.String())+"s", time.Since(start), err == nil)
	return objects, err
}

// AcknowledgeProblem implements repository.MonitoringGateway.
func (g *InstrumentedGateway) AcknowledgeProblem(ctx context.Context, req repository.AcknowledgeRequest) error {
	start := time.Now()
	err := g.inner.AcknowledgeProblem(ctx, req)
	g.metrics.RecordBackendQuery(ctx, "acknowledge_problem", time.Since(start), err == nil)
	g.metrics.RecordAction(ctx, "acknowledge", err == nil)
	return err
}

// ScheduleDowntime implements repository.MonitoringGateway.
func (g *InstrumentedGateway) ScheduleDowntime(ctx context.Context, req repository.DowntimeRequest) error {
	start := time.Now()
	err := g.inner.ScheduleDowntime(ctx, req)
	g.metrics.RecordBackendQuery(ctx, "schedule_downtime", time.Since(start), err == nil)
	g.metrics.RecordAction(ctx, "downtime", err == nil)
	return err
}
