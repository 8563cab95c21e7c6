package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opschat/icinga-chatops/internal/adapter/dto"
	"github.com/opschat/icinga-chatops/internal/domain/entity"
	"github.com/opschat/icinga-chatops/internal/domain/repository"
)

// historyLimit is how many audit records the history command shows.
const historyLimit = 10

// HistoryUseCase renders the recent action audit trail for the `history`
// command.
type HistoryUseCase struct {
	audit  repository.AuditRepository
	logger *slog.Logger
}

// NewHistoryUseCase creates a new history use case.
func NewHistoryUseCase(audit repository.AuditRepository, logger *slog.Logger) *HistoryUseCase {
	return &HistoryUseCase{audit: audit, logger: logger}
}

// Recent returns the most recent dispatched actions, newest first.
func (uc *HistoryUseCase) Recent(ctx context.Context) (*dto.ChatResponse, error) {
	records, err := uc.audit.FindRecent(ctx, historyLimit)
	if err != nil {
		uc.logger.Error("reading audit history", "error", err)
		return dto.NewErrorResponse("History lookup error", err.Error()), nil
	}

	if len(records) == 0 {
		return dto.NewResponse("No actions have been performed yet."), nil
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, fmt.Sprintf("*Last %d action%s*", len(records), plural(len(records))))
	for _, rec := range records {
		outcome := "✓"
		if !rec.Success {
			outcome = "✗"
		}
		line := fmt.Sprintf(">%s %s · %s · %d %s object%s · by %s · _%s_",
			outcome,
			formatDate(rec.CreatedAt),
			rec.Action,
			rec.ObjectCount,
			strings.ToLower(rec.ObjectType.String()),
			plural(rec.ObjectCount),
			rec.Author,
			rec.Comment,
		)
		if rec.Action == entity.CommandDowntime && rec.StartTime != nil && rec.EndTime != nil {
			line += fmt.Sprintf(" (%s until %s)", formatDate(*rec.StartTime), formatDate(*rec.EndTime))
		}
		lines = append(lines, line)
	}

	resp := dto.NewResponse(fmt.Sprintf("Last %d actions", len(records)))
	resp.AddBlock(strings.Join(lines, "\n"))
	return resp, nil
}
