package gormstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bpxgen/internal/model"
	"bpxgen/internal/pipeline"
	"bpxgen/internal/pkg/cellfixture"
	"bpxgen/internal/store"
	storemodel "bpxgen/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *GormStore {
	t.Helper()
	s, err := NewGormStore(filepath.Join(t.TempDir(), "db", "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	req := pipeline.DefaultRequest()
	req.Path = "cell.json"
	req.DegradationState = map[string]float64{pipeline.DegLLI: 0.1}
	res, err := pipeline.NewDeriver(nil, model.DefaultFactory{}).Derive(ctx, cellfixture.Single(), req)
	require.NoError(t, err)

	rec := store.NewRunRecord(req, res, nil)
	require.NoError(t, s.SaveRun(ctx, &rec))

	got, err := s.GetRun(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, storemodel.RunStatusOK, got.Status)
	assert.Equal(t, "cell.json", got.Source)
	assert.Equal(t, rec.ParamCount, got.ParamCount)
	assert.Equal(t, rec.Events, got.Events)
	assert.Equal(t, rec.Options, got.Options)
	assert.Equal(t, rec.Summary, got.Summary)
	assert.Equal(t, req.DegradationState, got.Request.DegradationState)
	assert.Equal(t, req.ModelType, got.Request.ModelType)
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestSaveFailedRun(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	req := pipeline.DefaultRequest()
	req.BlendedElectrode = [2]bool{true, false}
	_, err := pipeline.NewDeriver(nil, model.DefaultFactory{}).Derive(ctx, cellfixture.Single(), req)
	require.Error(t, err)

	rec := store.NewRunRecord(req, nil, err)
	require.NoError(t, s.SaveRun(ctx, &rec))

	got, err := s.GetRun(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, storemodel.RunStatusFailed, got.Status)
	assert.Equal(t, "phases", got.Stage)
	assert.Contains(t, got.Error, "blended")
}

func TestGetRunNotFound(t *testing.T) {
	_, err := openStore(t).GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	var ids []string
	for i := 0; i < 3; i++ {
		rec := store.NewRunRecord(pipeline.DefaultRequest(), nil, nil)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.SaveRun(ctx, &rec))
		ids = append(ids, rec.ID)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[1], runs[1].ID)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSaveRunRequiresID(t *testing.T) {
	assert.Error(t, openStore(t).SaveRun(context.Background(), &store.RunRecord{}))
}
