package repository

import (
	"context"
	"time"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
)

// ConversationStore holds at most one in-progress conversation per user.
type ConversationStore interface {
	// Get returns the user's conversation, creating an empty one if none
	// exists.
	Get(ctx context.Context, userID string) (*entity.Conversation, error)

	// Find returns the user's conversation or nil, nil if none exists.
	Find(ctx context.Context, userID string) (*entity.Conversation, error)

	// Put persists the conversation for the user.
	Put(ctx context.Context, userID string, conv *entity.Conversation) error

	// Delete removes the user's conversation. Deleting a missing entry is
	// not an error.
	Delete(ctx context.Context, userID string) error

	// Lock serializes access per user id and returns the unlock function.
	// Callers must hold the lock for the whole parse/dispatch step so two
	// concurrent messages from the same user cannot operate on stale
	// copies of the same conversation.
	Lock(userID string) func()
}

// AcknowledgeRequest carries the parameters of an acknowledge-problem call.
type AcknowledgeRequest struct {
	ObjectType entity.ObjectType
	FilterExpr string
	Author     string
	Comment    string
	// Expiry is nil for acknowledgements that never expire.
	Expiry *time.Time
	Sticky bool
}

// DowntimeRequest carries the parameters of a schedule-downtime call.
type DowntimeRequest struct {
	ObjectType  entity.ObjectType
	FilterExpr  string
	Author      string
	Comment     string
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	AllServices bool
}

// MonitoringGateway is the monitoring backend consumed by the bot.
type MonitoringGateway interface {
	// ListObjects queries objects of the given type. filterExprs are
	// backend-native predicate strings AND-combined with the name filter
	// clause derived from nameFilters.
	ListObjects(ctx context.Context, typ entity.ObjectType, filterExprs, nameFilters []string) ([]*entity.MonitoredObject, error)

	// AcknowledgeProblem acknowledges the problems selected by the filter
	// expression.
	AcknowledgeProblem(ctx context.Context, req AcknowledgeRequest) error

	// ScheduleDowntime schedules a downtime for the objects selected by
	// the filter expression.
	ScheduleDowntime(ctx context.Context, req DowntimeRequest) error
}

// AuditRepository stores dispatched actions for the audit trail.
type AuditRepository interface {
	// Save persists a new audit record.
	Save(ctx context.Context, rec *entity.AuditRecord) error

	// FindRecent returns the most recent records, newest first.
	FindRecent(ctx context.Context, limit int) ([]*entity.AuditRecord, error)
}
