// Package hub keeps the registry of open rooms.
package hub

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/engine"
	"github.com/DoyleJ11/yaht-backend/internal/room"
	"github.com/DoyleJ11/yaht-backend/internal/types"
)

var ErrHubClosed = errors.New("hub closed")
var ErrRoomNotFound = errors.New("room not found")

type hubMsg interface{ isHubMsg() }

type register struct {
	room  *room.Room
	reply chan struct{}
}

type getRoom struct {
	id    string
	reply chan *room.Room
}

type listRooms struct {
	reply chan []*room.Room
}

type removeRoom struct {
	id string
}

type pruneRooms struct {
	reply chan int
}

func (register) isHubMsg() {}
func (getRoom) isHubMsg() {}
func (listRooms) isHubMsg() {}
func (removeRoom) isHubMsg() {}
func (pruneRooms) isHubMsg() {}

type Options struct {
	Results room.ResultSink
	// NewRand seeds each room's dice. Nil uses a crypto-seeded source.
	NewRand func() engine.Rand
}

type Hub struct {
	inbox   chan hubMsg
	rooms   map[string]*room.Room
	ctx     context.Context
	cancel  context.CancelFunc
	opts    Options
	log     *zap.Logger
	roomLog *zap.Logger
}

func NewHub(parent context.Context, opts Options, log *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan hubMsg, 64),
		rooms:   make(map[string]*room.Room),
		ctx:     ctx,
		cancel:  cancel,
		opts:    opts,
		log:     log.Named("hub"),
		roomLog: log.Named("room"),
	}
	go h.loop()
	return h
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return

		case m := <-h.inbox:
			// nothing is served once shutdown has begun
			if h.ctx.Err() != nil {
				h.closeAll()
				return
			}
			switch msg := m.(type) {
			case register:
				h.rooms[msg.room.ID()] = msg.room
				msg.reply <- struct{}{}

			case getRoom:
				msg.reply <- h.rooms[msg.id] // may be nil

			case listRooms:
				out := make([]*room.Room, 0, len(h.rooms))
				for _, r := range h.rooms {
					out = append(out, r)
				}
				msg.reply <- out

			case removeRoom:
				if _, ok := h.rooms[msg.id]; ok {
					delete(h.rooms, msg.id)
					h.log.Debug("room removed", zap.String("room_id", msg.id))
				}

			case pruneRooms:
				n := 0
				for id, r := range h.rooms {
					info := r.Info()
					if r.Closed() || info.PlayerCount+info.SpectatorCount == 0 {
						r.Close()
						delete(h.rooms, id)
						n++
					}
				}
				msg.reply <- n
			}
		}
	}
}

func (h *Hub) closeAll() {
	for _, r := range h.rooms {
		r.Close()
	}
	clear(h.rooms)
}

// Create opens a room with host seated as its first player.
func (h *Hub) Create(ctx context.Context, name string, maxPlayers int, password string, host room.Member) (*room.Room, error) {
	if h.ctx.Err() != nil {
		return nil, ErrHubClosed
	}
	opts := room.Options{
		ID:         uuid.NewString(),
		Name:       name,
		MaxPlayers: maxPlayers,
		Password:   password,
		Results:    h.opts.Results,
		OnClose:    h.remove,
	}
	if h.opts.NewRand != nil {
		opts.Rand = h.opts.NewRand()
	}
	r, err := room.New(h.ctx, opts, host, h.roomLog)
	if err != nil {
		return nil, err
	}

	reply := make(chan struct{}, 1)
	if _, err := call(ctx, h, register{room: r, reply: reply}, reply); err != nil {
		r.Close()
		return nil, err
	}
	r.Start()
	return r, nil
}

func (h *Hub) Get(ctx context.Context, id string) (*room.Room, error) {
	reply := make(chan *room.Room, 1)
	r, err := call(ctx, h, getRoom{id: id, reply: reply}, reply)
	if err != nil {
		return nil, err
	}
	if r == nil || r.Closed() {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// List is sorted by name.
func (h *Hub) List(ctx context.Context) ([]types.RoomInfo, error) {
	reply := make(chan []*room.Room, 1)
	rooms, err := call(ctx, h, listRooms{reply: reply}, reply)
	if err != nil {
		return nil, err
	}
	out := make([]types.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		if !r.Closed() {
			out = append(out, r.Info())
		}
	}
	slices.SortFunc(out, func(a, b types.RoomInfo) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.RoomID, b.RoomID))
	})
	return out, nil
}

func (h *Hub) PruneEmptyRooms(ctx context.Context) (int, error) {
	reply := make(chan int, 1)
	return call(ctx, h, pruneRooms{reply: reply}, reply)
}

// RunPruner sweeps every interval until ctx is done.
func (h *Hub) RunPruner(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := h.PruneEmptyRooms(ctx)
			if err != nil {
				if errors.Is(err, ErrHubClosed) || ctx.Err() != nil {
					return nil
				}
				return err
			}
			if n > 0 {
				h.log.Info("pruned rooms", zap.Int("count", n))
			}
		}
	}
}

// Shutdown stops the hub and every room it holds.
func (h *Hub) Shutdown() { h.cancel() }

// OnClose hook for rooms
func (h *Hub) remove(id string) {
	select {
	case h.inbox <- removeRoom{id: id}:
	case <-h.ctx.Done():
	}
}

func call[T any](ctx context.Context, h *Hub, m hubMsg, reply chan T) (T, error) {
	var zero T
	if h.ctx.Err() != nil {
		return zero, ErrHubClosed
	}
	select {
	case h.inbox <- m:
	case <-h.ctx.Done():
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-h.ctx.Done():
		return zero, ErrHubClosed
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
