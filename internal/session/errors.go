package session

import (
	"errors"

	"github.com/DoyleJ11/yaht-backend/internal/engine"
	"github.com/DoyleJ11/yaht-backend/internal/hub"
	"github.com/DoyleJ11/yaht-backend/internal/room"
	"github.com/DoyleJ11/yaht-backend/internal/types"
)

var ErrServerFull = errors.New("connection limit reached")
var ErrServerClosed = errors.New("server closed")
var ErrNotInRoom = errors.New("not in a room")
var ErrAlreadyGreeted = errors.New("already said hello")
var errDisconnect = errors.New("client disconnected")

// errorCodes maps each typed error to exactly one protocol code. Order
// matters only for wrapped errors matching more than one entry.
var errorCodes = []struct {
	err  error
	code types.ErrorCode
}{
	{room.ErrRoomFull, types.CodeRoomFull},
	{engine.ErrTooManyPlayers, types.CodeRoomFull},
	{hub.ErrRoomNotFound, types.CodeRoomNotFound},
	{room.ErrRoomClosed, types.CodeRoomNotFound},
	{room.ErrWrongPassword, types.CodeWrongPassword},
	{engine.ErrNotYourTurn, types.CodeNotYourTurn},
	{engine.ErrCategoryAlreadyScored, types.CodeCategoryAlreadyScored},
	{room.ErrGameInProgress, types.CodeGameAlreadyStarted},
	{engine.ErrGameAlreadyStarted, types.CodeGameAlreadyStarted},
	{engine.ErrNotEnoughPlayers, types.CodeNotEnoughPlayers},
	{room.ErrNameTaken, types.CodeNameTaken},
	{engine.ErrCannotRoll, types.CodeInvalidAction},
	{engine.ErrCannotHold, types.CodeInvalidAction},
	{engine.ErrCannotScore, types.CodeInvalidAction},
	{engine.ErrNoActiveTurn, types.CodeInvalidAction},
	{engine.ErrInvalidCategory, types.CodeInvalidAction},
	{engine.ErrGameNotInProgress, types.CodeInvalidAction},
	{engine.ErrUnknownPlayer, types.CodeInvalidAction},
	{room.ErrNotHost, types.CodeInvalidAction},
	{room.ErrSpectator, types.CodeInvalidAction},
	{room.ErrNotMember, types.CodeInvalidAction},
	{room.ErrEmptyChat, types.CodeInvalidAction},
	{ErrNotInRoom, types.CodeInvalidAction},
	{ErrAlreadyGreeted, types.CodeInvalidAction},
	{types.ErrUnknownKind, types.CodeInvalidAction},
	{types.ErrMalformed, types.CodeInvalidAction},
}

func errorCode(err error) types.ErrorCode {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return types.CodeInternalError
}

func errorReply(err error) types.ErrorMessage {
	code := errorCode(err)
	msg := err.Error()
	if code == types.CodeInternalError {
		msg = "internal error"
	}
	return types.ErrorMessage{Code: code, Message: msg}
}
