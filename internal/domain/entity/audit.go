package entity

import "time"

// AuditRecord captures one dispatched backend mutation, successful or not.
// Records are append-only; the `history` chat command reads them back.
type AuditRecord struct {
	ID          string
	Action      Command
	ObjectType  ObjectType
	ObjectCount int
	Author      string
	Comment     string
	FilterExpr  string

	// StartTime/EndTime are nil when not applicable (acknowledgements
	// without expiry).
	StartTime *time.Time
	EndTime   *time.Time

	Success   bool
	Error     string
	CreatedAt time.Time
}
