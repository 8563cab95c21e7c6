package chat

import (
	"context"
	"log/slog"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
)

// Default eligibility expressions for acknowledgements: only objects with a
// problem can be acknowledged.
const (
	hostProblemExpr    = "host.state != 0"
	serviceProblemExpr = "service.state != 0"
)

// ResolveFilterUseCase resolves raw user filter tokens into monitored
// objects, applying command-specific eligibility rules.
type ResolveFilterUseCase struct {
	gateway repository.MonitoringGateway
	logger  *slog.Logger
}

// NewResolveFilterUseCase creates a new filter resolver.
func NewResolveFilterUseCase(gateway repository.MonitoringGateway, logger *slog.Logger) *ResolveFilterUseCase {
	return &ResolveFilterUseCase{gateway: gateway, logger: logger}
}

// Resolve looks up the objects matching the filter tokens. A single token is
// tried as a host name first and retried as a service name on zero matches;
// a token pair queries services directly (host plus service name hint).
// Backend failures return a BackendQueryError, never an empty result.
func (uc *ResolveFilterUseCase) Resolve(ctx context.Context, cmd entity.Command, filter []string) ([]*entity.MonitoredObject, entity.ObjectType, error) {
	var hostExprs, serviceExprs []string
	if cmd == entity.CommandAcknowledge {
		hostExprs = []string{hostProblemExpr}
		serviceExprs = []string{serviceProblemExpr}
	}

	objectType := entity.ObjectTypeService
	var objects []*entity.MonitoredObject
	var err error

	if len(filter) == 1 {
		objectType = entity.ObjectTypeHost
		objects, err = uc.gateway.ListObjects(ctx, entity.ObjectTypeHost, hostExprs, filter)
		if err == nil && len(objects) == 0 {
			objectType = entity.ObjectTypeService
			objects, err = uc.gateway.ListObjects(ctx, entity.ObjectTypeService, serviceExprs, filter)
		}
	} else {
		objects, err = uc.gateway.ListObjects(ctx, entity.ObjectTypeService, serviceExprs, filter)
	}
	if err != nil {
		return nil, objectType, &BackendQueryError{Err: err}
	}

	// Already-acknowledged objects are not actionable for ACK. Downtimes
	// apply to any object regardless of state.
	if cmd == entity.CommandAcknowledge {
		actionable := objects[:0]
		for _, o := range objects {
			if !o.IsAcknowledged() {
				actionable = append(actionable, o)
			}
		}
		objects = actionable
	}

	uc.logger.Debug("filter resolved",
		"filter", filter,
		"object_type", objectType.String(),
		"matches", len(objects),
	)
	return objects, objectType, nil
}
