package sqlite

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opschat/icinga-chatops/internal/domain/entity"
)

func setupRepo(t *testing.T) *AuditRepository {
	t.Helper()

	db, err := NewDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return NewAuditRepository(db)
}

func record(createdAt time.Time) *entity.AuditRecord {
	return &entity.AuditRecord{
		ID:          uuid.NewString(),
		Action:      entity.CommandAcknowledge,
		ObjectType:  entity.ObjectTypeHost,
		ObjectCount: 2,
		Author:      "jane",
		Comment:     "broken disk",
		FilterExpr:  `host.name=="web01"`,
		Success:     true,
		CreatedAt:   createdAt,
	}
}

func TestAuditRepository_SaveAndFindRecent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	end := time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC)
	rec := record(time.Date(2024, 3, 12, 10, 30, 0, 0, time.UTC))
	rec.EndTime = &end
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.FindRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, entity.CommandAcknowledge, got[0].Action)
	assert.Equal(t, entity.ObjectTypeHost, got[0].ObjectType)
	assert.Equal(t, 2, got[0].ObjectCount)
	assert.Equal(t, "jane", got[0].Author)
	assert.Equal(t, "broken disk", got[0].Comment)
	assert.True(t, got[0].Success)
	assert.Nil(t, got[0].StartTime)
	require.NotNil(t, got[0].EndTime)
	assert.True(t, end.Equal(*got[0].EndTime))
	assert.True(t, rec.CreatedAt.Equal(got[0].CreatedAt))
}

func TestAuditRepository_FindRecentOrderAndLimit(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := record(base.Add(time.Duration(i) * time.Minute))
		rec.Comment = fmt.Sprintf("action %d", i)
		require.NoError(t, repo.Save(ctx, rec))
	}

	got, err := repo.FindRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "action 4", got[0].Comment)
	assert.Equal(t, "action 3", got[1].Comment)
	assert.Equal(t, "action 2", got[2].Comment)
}

func TestAuditRepository_FindRecentEmpty(t *testing.T) {
	repo := setupRepo(t)

	got, err := repo.FindRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAuditRepository_FailedActionRoundTrip(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	rec := record(start)
	rec.Action = entity.CommandDowntime
	rec.ObjectType = entity.ObjectTypeService
	rec.StartTime = &start
	rec.EndTime = &end
	rec.Success = false
	rec.Error = "api unreachable"
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.FindRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, entity.CommandDowntime, got[0].Action)
	assert.False(t, got[0].Success)
	assert.Equal(t, "api unreachable", got[0].Error)
	require.NotNil(t, got[0].StartTime)
	assert.True(t, start.Equal(*got[0].StartTime))
}
