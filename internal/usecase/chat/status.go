package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
	"github.com/opschat/icinga-chatops/internal/infrastructure/icinga"
)

// State keywords accepted by the status commands, mapped to display labels.
// "all" and "problems" are meta keywords handled separately.
var (
	hostStateKeywords = map[string]string{
		"up":          "UP",
		"down":        "DOWN",
		"unreachable": "UNREACHABLE",
	}
	serviceStateKeywords = map[string]string{
		"ok":       "OK",
		"warning":  "WARNING",
		"warn":     "WARNING",
		"critical": "CRITICAL",
		"crit":     "CRITICAL",
		"unknown":  "UNKNOWN",
	}
)

// StatusQuery describes what a status command asked for, so the presenter
// can phrase the result accordingly.
type StatusQuery struct {
	ObjectType entity.ObjectType

	// StateLabels are the explicitly requested state names, empty when the
	// query fell back to the implicit problem filter or asked for all.
	StateLabels []string
	NameFilters []string

	ShowAll bool

	// DefaultApplied marks the implicit "problems only" filter, which is
	// used when neither a state keyword nor "all" was given.
	DefaultApplied bool
}

// StatusUseCase answers the one-shot host/service status commands.
type StatusUseCase struct {
	gateway repository.MonitoringGateway
	logger  *slog.Logger
}

// NewStatusUseCase creates a new status query use case.
func NewStatusUseCase(gateway repository.MonitoringGateway, logger *slog.Logger) *StatusUseCase {
	return &StatusUseCase{gateway: gateway, logger: logger}
}

// Query parses the command arguments into state keywords and name filters and
// lists the matching objects. A state keyword belonging to the other object
// type returns a FilterSyntaxError instead of being treated as a name.
func (uc *StatusUseCase) Query(ctx context.Context, typ entity.ObjectType, args []string) ([]*entity.MonitoredObject, *StatusQuery, error) {
	query := &StatusQuery{ObjectType: typ}

	keywords := hostStateKeywords
	foreign := serviceStateKeywords
	if typ == entity.ObjectTypeService {
		keywords = serviceStateKeywords
		foreign = hostStateKeywords
	}

	var badTokens []string
	for _, arg := range args {
		token := strings.ToLower(arg)
		switch {
		case token == "all":
			query.ShowAll = true
		case token == "problems":
			query.DefaultApplied = true
		default:
			if label, ok := keywords[token]; ok {
				query.StateLabels = append(query.StateLabels, label)
			} else if _, ok := foreign[token]; ok {
				badTokens = append(badTokens, arg)
			} else {
				query.NameFilters = append(query.NameFilters, arg)
			}
		}
	}
	if len(badTokens) > 0 {
		return nil, nil, &FilterSyntaxError{Tokens: badTokens}
	}

	exprs := uc.stateExprs(typ, query)

	objects, err := uc.gateway.ListObjects(ctx, typ, exprs, query.NameFilters)
	if err != nil {
		return nil, nil, &BackendQueryError{Err: err}
	}

	uc.logger.Debug("status query",
		"object_type", typ.String(),
		"states", query.StateLabels,
		"names", query.NameFilters,
		"matches", len(objects),
	)
	return objects, query, nil
}

// stateExprs builds the backend state predicates for the query. Explicit
// state keywords win over "all"; with neither, only problems are shown.
func (uc *StatusUseCase) stateExprs(typ entity.ObjectType, query *StatusQuery) []string {
	prefix := "host"
	if typ == entity.ObjectTypeService {
		prefix = "service"
	}

	if len(query.StateLabels) > 0 {
		query.ShowAll = false
		query.DefaultApplied = false
		// Multiple state keywords are alternatives, so they collapse into
		// one disjunction before the gateway AND-combines its inputs.
		exprs := make([]string, 0, len(query.StateLabels))
		for _, label := range query.StateLabels {
			code, _ := entity.StateCode(typ, label)
			exprs = append(exprs, fmt.Sprintf("%s.state == %d", prefix, code))
		}
		return []string{icinga.Or(exprs...)}
	}
	if query.ShowAll {
		query.DefaultApplied = false
		return nil
	}
	query.DefaultApplied = true
	return []string{prefix + ".state != 0"}
}
