// Package archive records finished games off the game path. Rooms submit a
// Result without blocking; a single worker hands results to a Store.
package archive

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/engine"
)

type Result struct {
	RoomID     string
	RoomName   string
	FinishedAt time.Time
	Scores     []engine.FinalScore
	WinnerID   string
}

type Store interface {
	Save(ctx context.Context, r Result) error
}

// NopStore discards results. It is used when no database is configured.
type NopStore struct{}

func (NopStore) Save(context.Context, Result) error { return nil }

type Archiver struct {
	store   Store
	queue   chan Result
	timeout time.Duration
	log     *zap.Logger
}

func NewArchiver(store Store, queueSize int, log *zap.Logger) *Archiver {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Archiver{
		store:   store,
		queue:   make(chan Result, queueSize),
		timeout: 5 * time.Second,
		log:     log.Named("archive"),
	}
}

// Submit queues r and reports whether it was accepted. A full queue drops
// the result.
func (a *Archiver) Submit(r Result) bool {
	select {
	case a.queue <- r:
		return true
	default:
		a.log.Warn("archive queue full, dropping result", zap.String("room_id", r.RoomID))
		return false
	}
}

// Run saves queued results until ctx is cancelled, then drains what is left.
func (a *Archiver) Run(ctx context.Context) error {
	for {
		select {
		case r := <-a.queue:
			a.save(context.WithoutCancel(ctx), r)
		case <-ctx.Done():
			for {
				select {
				case r := <-a.queue:
					a.save(context.WithoutCancel(ctx), r)
				default:
					return nil
				}
			}
		}
	}
}

func (a *Archiver) save(ctx context.Context, r Result) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	if err := a.store.Save(ctx, r); err != nil {
		a.log.Error("save result", zap.String("room_id", r.RoomID), zap.Error(err))
		return
	}
	a.log.Debug("result saved", zap.String("room_id", r.RoomID), zap.String("winner_id", r.WinnerID))
}
