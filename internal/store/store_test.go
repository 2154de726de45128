package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joss/testsmith/internal/domain"
)

func openStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(class string) *domain.Run {
	return &domain.Run{
		SessionID: NewSessionID(),
		Target:    domain.TestTarget{Class: class, Package: "com.shop.order"},
		TestType:  "unit",
		Validated: true,
		Success:   true,
		Attempts: []domain.ValidationAttempt{
			{Index: 1, Phase: domain.PhaseCompile, Success: false, Failure: &domain.FailureRecord{
				Phase: domain.PhaseCompile, Kind: domain.FailCompilation, Message: "cannot find symbol",
			}},
			{Index: 2, Success: true},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	run := sampleRun("OrderServiceImpl")
	require.NoError(t, s.Save(ctx, run))
	require.NotEmpty(t, run.ID)
	require.False(t, run.CreatedAt.IsZero())

	got, err := s.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "OrderServiceImpl", got.Target.Class)
	assert.Equal(t, "com.shop.order", got.Target.Package)
	assert.True(t, got.Success)
	require.Len(t, got.Attempts, 2)
	assert.Equal(t, domain.FailCompilation, got.Attempts[0].Failure.Kind)
}

func TestGetMissingRun(t *testing.T) {
	s := openStore(t)

	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nfe *NotFoundError
	require.True(t, errors.As(err, &nfe))
	assert.Equal(t, "run", nfe.Entity)
}

func TestRecentOrderAndFilter(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	older := sampleRun("AlphaServiceImpl")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, s.Save(ctx, older))

	newer := sampleRun("BetaServiceImpl")
	require.NoError(t, s.Save(ctx, newer))

	runs, err := s.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "BetaServiceImpl", runs[0].Target.Class)

	runs, err = s.Recent(ctx, "AlphaServiceImpl", 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "AlphaServiceImpl", runs[0].Target.Class)
}

func TestRecentLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, sampleRun("OrderServiceImpl")))
	}

	runs, err := s.Recent(ctx, "", 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestCount(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.Save(ctx, sampleRun("OrderServiceImpl")))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRunIDsSortable(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	assert.Len(t, a, 26)
	assert.LessOrEqual(t, a, b)
}

func TestPing(t *testing.T) {
	s := openStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
