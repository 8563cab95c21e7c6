package chat

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type listCall struct {
	typ         entity.ObjectType
	filterExprs []string
	nameFilters []string
}

// fakeGateway is an in-memory MonitoringGateway that serves canned objects
// and records every call.
type fakeGateway struct {
	mu       sync.Mutex
	hosts    []*entity.MonitoredObject
	services []*entity.MonitoredObject

	listErr error
	ackErr  error
	dtErr   error

	listCalls []listCall
	ackReqs   []repository.AcknowledgeRequest
	dtReqs    []repository.DowntimeRequest
}

func (g *fakeGateway) ListObjects(ctx context.Context, typ entity.ObjectType, filterExprs, nameFilters []string) ([]*entity.MonitoredObject, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.listCalls = append(g.listCalls, listCall{typ: typ, filterExprs: filterExprs, nameFilters: nameFilters})
	if g.listErr != nil {
		return nil, g.listErr
	}
	if typ == entity.ObjectTypeHost {
		return append([]*entity.MonitoredObject{}, g.hosts...), nil
	}
	return append([]*entity.MonitoredObject{}, g.services...), nil
}

func (g *fakeGateway) AcknowledgeProblem(ctx context.Context, req repository.AcknowledgeRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ackReqs = append(g.ackReqs, req)
	return g.ackErr
}

func (g *fakeGateway) ScheduleDowntime(ctx context.Context, req repository.DowntimeRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dtReqs = append(g.dtReqs, req)
	return g.dtErr
}

// fakeAudit records saved audit entries.
type fakeAudit struct {
	mu      sync.Mutex
	saved   []*entity.AuditRecord
	saveErr error
}

func (a *fakeAudit) Save(ctx context.Context, rec *entity.AuditRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.saveErr != nil {
		return a.saveErr
	}
	a.saved = append(a.saved, rec)
	return nil
}

func (a *fakeAudit) FindRecent(ctx context.Context, limit int) ([]*entity.AuditRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]*entity.AuditRecord, 0, len(a.saved))
	for i := len(a.saved) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.saved[i])
	}
	return out, nil
}

func problemHost(name string) *entity.MonitoredObject {
	return &entity.MonitoredObject{Type: entity.ObjectTypeHost, Name: name, State: 1, LastCheckOutput: "CRITICAL"}
}

func problemService(host, name string) *entity.MonitoredObject {
	return &entity.MonitoredObject{Type: entity.ObjectTypeService, Name: name, HostName: host, State: 2, LastCheckOutput: "CRITICAL"}
}
