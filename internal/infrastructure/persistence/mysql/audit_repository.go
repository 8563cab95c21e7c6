package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
)

// AuditRepository provides a MySQL implementation of
// repository.AuditRepository.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new MySQL-backed audit repository.
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db.DB}
}

// Save persists a new audit record.
func (r *AuditRepository) Save(ctx context.Context, rec *entity.AuditRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (
			id, action, object_type, object_count, author, comment,
			filter_expr, start_time, end_time, success, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, int(rec.Action), int(rec.ObjectType), rec.ObjectCount,
		rec.Author, rec.Comment, rec.FilterExpr,
		rec.StartTime, rec.EndTime,
		rec.Success, rec.Error, rec.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// FindRecent returns the most recent records, newest first.
func (r *AuditRepository) FindRecent(ctx context.Context, limit int) ([]*entity.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, action, object_type, object_count, author, comment,
			filter_expr, start_time, end_time, success, error, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []*entity.AuditRecord
	for rows.Next() {
		var (
			rec        entity.AuditRecord
			action     int
			objectType int
			startTime  sql.NullTime
			endTime    sql.NullTime
		)
		err := rows.Scan(
			&rec.ID, &action, &objectType, &rec.ObjectCount,
			&rec.Author, &rec.Comment, &rec.FilterExpr,
			&startTime, &endTime, &rec.Success, &rec.Error, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		rec.Action = entity.Command(action)
		rec.ObjectType = entity.ObjectType(objectType)
		if startTime.Valid {
			t := startTime.Time
			rec.StartTime = &t
		}
		if endTime.Valid {
			t := endTime.Time
			rec.EndTime = &t
		}

		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	if records == nil {
		records = []*entity.AuditRecord{}
	}
	return records, nil
}
