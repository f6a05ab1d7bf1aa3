package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/room"
	"github.com/DoyleJ11/yaht-backend/internal/types"
)

// dispatch runs one client message. A returned error is reported to the
// client and does not end the connection, except errDisconnect.
func (s *Server) dispatch(ctx context.Context, c *Conn, m types.ClientMessage) error {
	switch m := m.(type) {
	case types.Hello:
		return ErrAlreadyGreeted

	case types.ListRooms:
		rooms, err := s.hub.List(ctx)
		if err != nil {
			return err
		}
		c.Send(types.RoomList{Rooms: rooms})
		return nil

	case types.CreateRoom:
		return s.createRoom(ctx, c, m)

	case types.JoinRoom:
		return s.enterRoom(ctx, c, m.RoomID, false, func(r *room.Room) error {
			return r.Join(ctx, c.member(), m.Password)
		})

	case types.SpectateRoom:
		return s.enterRoom(ctx, c, m.RoomID, true, func(r *room.Room) error {
			return r.Spectate(ctx, c.member())
		})

	case types.LeaveRoom:
		if c.room == nil {
			return ErrNotInRoom
		}
		return s.leaveRoom(ctx, c)

	case types.StartGame:
		return s.inRoom(c, func(r *room.Room) error { return r.StartGame(ctx, c.id) })

	case types.RollDice:
		return s.inRoom(c, func(r *room.Room) error { return r.Roll(ctx, c.id) })

	case types.HoldDice:
		return s.inRoom(c, func(r *room.Room) error { return r.Hold(ctx, c.id, m.Mask) })

	case types.ScoreCategory:
		return s.inRoom(c, func(r *room.Room) error { return r.Score(ctx, c.id, m.Category) })

	case types.Chat:
		return s.inRoom(c, func(r *room.Room) error { return r.Chat(ctx, c.id, m.Text) })

	case types.Ping:
		c.Send(types.Pong{})
		return nil

	case types.Disconnect:
		return errDisconnect

	default:
		return fmt.Errorf("%w: %s", types.ErrUnknownKind, m.Kind())
	}
}

func (s *Server) createRoom(ctx context.Context, c *Conn, m types.CreateRoom) error {
	name := strings.TrimSpace(m.Name)
	if name == "" {
		name = c.name + "'s room"
	}
	r, err := s.hub.Create(ctx, name, m.MaxPlayers, m.Password, c.member())
	if err != nil {
		return err
	}
	s.departPrevious(ctx, c, r)
	c.room, c.spectator = r, false
	c.log.Info("room created", zap.String("room_id", r.ID()), zap.String("room", name))
	return nil
}

// enterRoom moves c into the room with id. The current room is only left
// once the new one has accepted c, so a rejected move changes nothing.
func (s *Server) enterRoom(ctx context.Context, c *Conn, id string, spectator bool, enter func(*room.Room) error) error {
	r, err := s.hub.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := enter(r); err != nil {
		return err
	}
	s.departPrevious(ctx, c, r)
	c.room, c.spectator = r, spectator
	return nil
}

// departPrevious takes c out of its current room, unless that is next.
func (s *Server) departPrevious(ctx context.Context, c *Conn, next *room.Room) {
	prev := c.room
	if prev == nil || prev == next {
		return
	}
	err := prev.Depart(ctx, c.id)
	if err != nil && !errors.Is(err, room.ErrRoomClosed) && !errors.Is(err, room.ErrNotMember) {
		c.log.Warn("leave previous room", zap.String("room_id", prev.ID()), zap.Error(err))
	}
}

func (s *Server) leaveRoom(ctx context.Context, c *Conn) error {
	r := c.room
	c.room, c.spectator = nil, false
	err := r.Leave(ctx, c.id)
	if errors.Is(err, room.ErrRoomClosed) || errors.Is(err, room.ErrNotMember) {
		c.Send(types.RoomLeft{})
		return nil
	}
	return err
}

// inRoom runs a room action, forgetting the room if it has closed.
func (s *Server) inRoom(c *Conn, action func(*room.Room) error) error {
	if c.room == nil {
		return ErrNotInRoom
	}
	err := action(c.room)
	if errors.Is(err, room.ErrRoomClosed) {
		c.room, c.spectator = nil, false
	}
	return err
}
