package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credstamp/internal/domain/model"
)

func TestRunRepo_AddAndListRecent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	first, err := repo.Add(ctx, model.Run{
		TemplateName: "welcome.pdf",
		CSVName:      "batch.csv",
		Mode:         model.ModeReplace,
		PageIndex:    0,
		RecordCount:  3,
		OutputKind:   model.OutputZIP,
		Status:       model.RunStatusOK,
		CreatedAt:    base,
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	second, err := repo.Add(ctx, model.Run{
		TemplateName: "welcome.pdf",
		CSVName:      "bad.csv",
		Mode:         model.ModeOverlay,
		PageIndex:    2,
		Status:       model.RunStatusError,
		Error:        "malformed credentials CSV: no credential rows",
		CreatedAt:    base.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, model.ModeOverlay, runs[0].Mode)
	assert.Equal(t, model.RunStatusError, runs[0].Status)
	assert.Equal(t, "malformed credentials CSV: no credential rows", runs[0].Error)
	assert.Equal(t, 2, runs[0].PageIndex)

	assert.Equal(t, first.ID, runs[1].ID)
	assert.Equal(t, "welcome.pdf", runs[1].TemplateName)
	assert.Equal(t, "batch.csv", runs[1].CSVName)
	assert.Equal(t, 3, runs[1].RecordCount)
	assert.Equal(t, model.OutputZIP, runs[1].OutputKind)
	assert.True(t, runs[1].CreatedAt.Equal(base))
}

func TestRunRepo_AddFillsCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)

	run, err := repo.Add(context.Background(), model.Run{
		TemplateName: "t.pdf",
		CSVName:      "c.csv",
		Mode:         model.ModeKeep,
		Status:       model.RunStatusOK,
	})
	require.NoError(t, err)
	assert.False(t, run.CreatedAt.IsZero())
}

func TestRunRepo_ListRecentLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := repo.Add(ctx, model.Run{
			TemplateName: "t.pdf",
			CSVName:      "c.csv",
			Mode:         model.ModeKeep,
			Status:       model.RunStatusOK,
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	runs, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].CreatedAt.After(runs[1].CreatedAt))
}

func TestRunRepo_ListRecentEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)

	runs, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
