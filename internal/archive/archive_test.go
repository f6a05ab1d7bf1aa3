package archive

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/engine"
)

type chanStore struct {
	saved chan Result
	err   error
}

func (s *chanStore) Save(_ context.Context, r Result) error {
	s.saved <- r
	return s.err
}

func sampleResult(room string) Result {
	return Result{
		RoomID:     room,
		RoomName:   "table",
		FinishedAt: time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Scores: []engine.FinalScore{
			{PlayerID: "p1", Name: "Ana", Score: 212},
			{PlayerID: "p2", Name: "Bo", Score: 187},
		},
		WinnerID: "p1",
	}
}

func TestArchiver_SubmitDropsWhenFull(t *testing.T) {
	a := NewArchiver(NopStore{}, 1, zap.NewNop())
	assert.True(t, a.Submit(sampleResult("r1")))
	assert.False(t, a.Submit(sampleResult("r2")))
}

func TestArchiver_RunSavesAndDrains(t *testing.T) {
	store := &chanStore{saved: make(chan Result, 4)}
	a := NewArchiver(store, 4, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.True(t, a.Submit(sampleResult("r1")))
	select {
	case r := <-store.saved:
		assert.Equal(t, "r1", r.RoomID)
	case <-time.After(time.Second):
		t.Fatal("result not saved")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("archiver did not stop")
	}
}

func TestArchiver_StoreErrorIsNotFatal(t *testing.T) {
	store := &chanStore{saved: make(chan Result, 4), err: errors.New("db down")}
	a := NewArchiver(store, 4, zap.NewNop())
	require.True(t, a.Submit(sampleResult("r1")))
	require.True(t, a.Submit(sampleResult("r2")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.Run(ctx))
	assert.Len(t, store.saved, 2)
}

func TestToRecord(t *testing.T) {
	rec := toRecord(sampleResult("r1"))
	assert.Equal(t, "r1", rec.RoomID)
	assert.Equal(t, "p1", rec.WinnerID)
	require.Len(t, rec.Scores, 2)
	assert.Equal(t, ScoreRecord{Seat: 1, PlayerID: "p2", Name: "Bo", Total: 187}, rec.Scores[1])
}
