package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
	"github.com/opschat/icinga-chatops/internal/infrastructure/icinga"
)

// DispatchUseCase executes a fully confirmed conversation against the
// monitoring backend and records the outcome in the audit trail.
type DispatchUseCase struct {
	gateway repository.MonitoringGateway
	audit   repository.AuditRepository
	logger  *slog.Logger
	now     func() time.Time
}

// NewDispatchUseCase creates a new dispatcher.
func NewDispatchUseCase(gateway repository.MonitoringGateway, audit repository.AuditRepository, logger *slog.Logger) *DispatchUseCase {
	return &DispatchUseCase{
		gateway: gateway,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// Execute performs the acknowledgement or downtime collected by conv.
// The backend call targets exactly the objects captured at resolution time,
// pinned by name, not the original filter tokens.
func (uc *DispatchUseCase) Execute(ctx context.Context, conv *entity.Conversation, author string) (*dto.ChatResponse, error) {
	filterExpr := exactObjectFilter(conv.ObjectType, conv.FilterResult)

	var err error
	switch conv.Command {
	case entity.CommandAcknowledge:
		req := repository.AcknowledgeRequest{
			ObjectType: conv.ObjectType,
			FilterExpr: filterExpr,
			Author:     author,
			Comment:    conv.Description,
			Sticky:     true,
		}
		if !conv.EndNever {
			expiry := conv.EndDate
			req.Expiry = &expiry
		}
		err = uc.gateway.AcknowledgeProblem(ctx, req)
	case entity.CommandDowntime:
		err = uc.gateway.ScheduleDowntime(ctx, repository.DowntimeRequest{
			ObjectType:  conv.ObjectType,
			FilterExpr:  filterExpr,
			Author:      author,
			Comment:     conv.Description,
			StartTime:   conv.StartDate,
			EndTime:     conv.EndDate,
			Duration:    conv.EndDate.Sub(conv.StartDate),
			AllServices: conv.ObjectType == entity.ObjectTypeHost,
		})
	default:
		return dto.NewErrorResponse("Internal error", fmt.Sprintf("unknown command %d", conv.Command)), nil
	}

	uc.recordAudit(ctx, conv, author, filterExpr, err)

	if err != nil {
		uc.logger.Error("action dispatch failed",
			"command", conv.Command.String(),
			"object_type", conv.ObjectType.String(),
			"objects", len(conv.FilterResult),
			"error", err,
		)
		return dto.NewErrorResponse("Icinga request error", err.Error()), nil
	}

	uc.logger.Info("action dispatched",
		"command", conv.Command.String(),
		"object_type", conv.ObjectType.String(),
		"objects", len(conv.FilterResult),
		"author", author,
	)

	count := len(conv.FilterResult)
	if conv.Command == entity.CommandDowntime {
		return dto.NewResponse(fmt.Sprintf("Successfully scheduled downtime for %d object%s!", count, plural(count))), nil
	}
	return dto.NewResponse(fmt.Sprintf("Successfully acknowledged %d %s problem%s!",
		count, strings.ToLower(conv.ObjectType.String()), plural(count))), nil
}

// recordAudit persists the outcome. A failing audit store never fails the
// user-visible action; it only logs.
func (uc *DispatchUseCase) recordAudit(ctx context.Context, conv *entity.Conversation, author, filterExpr string, dispatchErr error) {
	rec := &entity.AuditRecord{
		ID:          uuid.NewString(),
		Action:      conv.Command,
		ObjectType:  conv.ObjectType,
		ObjectCount: len(conv.FilterResult),
		Author:      author,
		Comment:     conv.Description,
		FilterExpr:  filterExpr,
		Success:     dispatchErr == nil,
		CreatedAt:   uc.now(),
	}
	if conv.Command == entity.CommandDowntime {
		start, end := conv.StartDate, conv.EndDate
		rec.StartTime = &start
		rec.EndTime = &end
	} else if !conv.EndNever {
		end := conv.EndDate
		rec.EndTime = &end
	}
	if dispatchErr != nil {
		rec.Error = dispatchErr.Error()
	}

	if err := uc.audit.Save(ctx, rec); err != nil {
		uc.logger.Error("saving audit record", "record_id", rec.ID, "error", err)
	}
}

// exactObjectFilter pins the resolved objects by name so the backend call
// cannot drift from what the user confirmed, even if the original filter
// would match new objects by now.
func exactObjectFilter(typ entity.ObjectType, objects []*entity.MonitoredObject) string {
	clauses := make([]string, 0, len(objects))
	for _, obj := range objects {
		if typ == entity.ObjectTypeService {
			clauses = append(clauses, icinga.And(
				icinga.Eq("host.name", obj.HostName),
				icinga.Eq("service.name", obj.Name),
			))
		} else {
			clauses = append(clauses, icinga.Eq("host.name", obj.Name))
		}
	}
	return icinga.Or(clauses...)
}
