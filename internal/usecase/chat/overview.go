package chat

import (
	"context"
	"log/slog"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
)

// Overview is the aggregated fleet health snapshot behind `status overview`.
type Overview struct {
	// HostStates/ServiceStates count objects per numeric state code.
	HostStates    map[int]int
	ServiceStates map[int]int

	HostsAcknowledged    int
	HostsInDowntime      int
	ServicesAcknowledged int
	ServicesInDowntime   int

	UnhandledHosts    int
	UnhandledServices int
}

// Unhandled returns the total number of unhandled problems.
func (o *Overview) Unhandled() int {
	return o.UnhandledHosts + o.UnhandledServices
}

// OverviewUseCase computes the status overview from full host and service
// listings.
type OverviewUseCase struct {
	gateway repository.MonitoringGateway
	logger  *slog.Logger
}

// NewOverviewUseCase creates a new overview use case.
func NewOverviewUseCase(gateway repository.MonitoringGateway, logger *slog.Logger) *OverviewUseCase {
	return &OverviewUseCase{gateway: gateway, logger: logger}
}

// Collect lists every host and service and tallies their states.
func (uc *OverviewUseCase) Collect(ctx context.Context) (*Overview, error) {
	hosts, err := uc.gateway.ListObjects(ctx, entity.ObjectTypeHost, nil, nil)
	if err != nil {
		return nil, &BackendQueryError{Err: err}
	}
	services, err := uc.gateway.ListObjects(ctx, entity.ObjectTypeService, nil, nil)
	if err != nil {
		return nil, &BackendQueryError{Err: err}
	}

	ov := &Overview{
		HostStates:    map[int]int{},
		ServiceStates: map[int]int{},
	}
	for _, h := range hosts {
		ov.HostStates[h.State]++
		if h.IsAcknowledged() {
			ov.HostsAcknowledged++
		}
		if h.InDowntime() {
			ov.HostsInDowntime++
		}
		if h.IsUnhandled() {
			ov.UnhandledHosts++
		}
	}
	for _, s := range services {
		ov.ServiceStates[s.State]++
		if s.IsAcknowledged() {
			ov.ServicesAcknowledged++
		}
		if s.InDowntime() {
			ov.ServicesInDowntime++
		}
		if s.IsUnhandled() {
			ov.UnhandledServices++
		}
	}

	uc.logger.Debug("overview collected",
		"hosts", len(hosts),
		"services", len(services),
		"unhandled", ov.Unhandled(),
	)
	return ov, nil
}
