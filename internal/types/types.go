// Package types defines the wire schema shared by the server and clients:
// the client and server message unions, room views and error codes.
package types

import (
	"github.com/DoyleJ11/yaht-backend/internal/engine"
)

// ClientMessage is any message a client sends to the server.
type ClientMessage interface {
	Kind() string
	isClientMessage()
}

// ServerMessage is any message the server sends to a client.
type ServerMessage interface {
	Kind() string
	isServerMessage()
}

// Client -> server.

type Hello struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ListRooms struct{}

type CreateRoom struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"max_players"`
	Password   string `json:"password,omitempty"`
}

type JoinRoom struct {
	RoomID   string `json:"room_id"`
	Password string `json:"password,omitempty"`
}

type SpectateRoom struct {
	RoomID string `json:"room_id"`
}

type LeaveRoom struct{}

type StartGame struct{}

type RollDice struct{}

type HoldDice struct {
	Mask [engine.NumDice]bool `json:"mask"`
}

type ScoreCategory struct {
	Category engine.Category `json:"category"`
}

type Chat struct {
	Text string `json:"text"`
}

type Ping struct{}

type Disconnect struct{}

func (Hello) Kind() string { return "Hello" }
func (ListRooms) Kind() string { return "ListRooms" }
func (CreateRoom) Kind() string { return "CreateRoom" }
func (JoinRoom) Kind() string { return "JoinRoom" }
func (SpectateRoom) Kind() string { return "SpectateRoom" }
func (LeaveRoom) Kind() string { return "LeaveRoom" }
func (StartGame) Kind() string { return "StartGame" }
func (RollDice) Kind() string { return "RollDice" }
func (HoldDice) Kind() string { return "HoldDice" }
func (ScoreCategory) Kind() string { return "ScoreCategory" }
func (Chat) Kind() string { return "Chat" }
func (Ping) Kind() string { return "Ping" }
func (Disconnect) Kind() string { return "Disconnect" }

func (Hello) isClientMessage() {}
func (ListRooms) isClientMessage() {}
func (CreateRoom) isClientMessage() {}
func (JoinRoom) isClientMessage() {}
func (SpectateRoom) isClientMessage() {}
func (LeaveRoom) isClientMessage() {}
func (StartGame) isClientMessage() {}
func (RollDice) isClientMessage() {}
func (HoldDice) isClientMessage() {}
func (ScoreCategory) isClientMessage() {}
func (Chat) isClientMessage() {}
func (Ping) isClientMessage() {}
func (Disconnect) isClientMessage() {}

// Server -> client.

type Welcome struct {
	PlayerID      string `json:"player_id"`
	ServerVersion string `json:"server_version"`
}

type HandshakeError struct {
	Reason string `json:"reason"`
}

type RoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

type RoomJoined struct {
	RoomID string       `json:"room_id"`
	Room   RoomSnapshot `json:"room_snapshot"`
}

type RoomUpdate struct {
	Room RoomSnapshot `json:"room_snapshot"`
}

type RoomLeft struct{}

type GameStarted struct {
	Game engine.Snapshot `json:"game_snapshot"`
}

type GameState struct {
	Game engine.Snapshot `json:"game_snapshot"`
}

type TurnStarted struct {
	PlayerID   string `json:"player_id"`
	Name       string `json:"name"`
	TurnNumber int    `json:"turn_number"`
}

type DiceRolled struct {
	Dice           engine.DiceSet `json:"dice"`
	RollsRemaining int            `json:"rolls_remaining"`
}

type DiceHeld struct {
	Dice engine.DiceSet `json:"dice"`
}

type CategoryScored struct {
	PlayerID string          `json:"player_id"`
	Category engine.Category `json:"category"`
	Score    int             `json:"score"`
}

type TurnEnded struct {
	PlayerID string `json:"player_id"`
}

type GameOver struct {
	FinalScores []engine.FinalScore `json:"final_scores"`
	WinnerID    string              `json:"winner_id"`
}

type ChatMessage struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"` // unix seconds
}

type SystemMessage struct {
	Text string `json:"text"`
}

// ErrorMessage travels with kind "Error".
type ErrorMessage struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type Pong struct{}

type PlayerJoined struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type PlayerLeft struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
}

type SpectatorJoined struct {
	Name string `json:"name"`
}

type SpectatorLeft struct {
	Name string `json:"name"`
}

func (Welcome) Kind() string { return "Welcome" }
func (HandshakeError) Kind() string { return "HandshakeError" }
func (RoomList) Kind() string { return "RoomList" }
func (RoomJoined) Kind() string { return "RoomJoined" }
func (RoomUpdate) Kind() string { return "RoomUpdate" }
func (RoomLeft) Kind() string { return "RoomLeft" }
func (GameStarted) Kind() string { return "GameStarted" }
func (GameState) Kind() string { return "GameState" }
func (TurnStarted) Kind() string { return "TurnStarted" }
func (DiceRolled) Kind() string { return "DiceRolled" }
func (DiceHeld) Kind() string { return "DiceHeld" }
func (CategoryScored) Kind() string { return "CategoryScored" }
func (TurnEnded) Kind() string { return "TurnEnded" }
func (GameOver) Kind() string { return "GameOver" }
func (ChatMessage) Kind() string { return "ChatMessage" }
func (SystemMessage) Kind() string { return "SystemMessage" }
func (ErrorMessage) Kind() string { return "Error" }
func (Pong) Kind() string { return "Pong" }
func (PlayerJoined) Kind() string { return "PlayerJoined" }
func (PlayerLeft) Kind() string { return "PlayerLeft" }
func (SpectatorJoined) Kind() string { return "SpectatorJoined" }
func (SpectatorLeft) Kind() string { return "SpectatorLeft" }

func (Welcome) isServerMessage() {}
func (HandshakeError) isServerMessage() {}
func (RoomList) isServerMessage() {}
func (RoomJoined) isServerMessage() {}
func (RoomUpdate) isServerMessage() {}
func (RoomLeft) isServerMessage() {}
func (GameStarted) isServerMessage() {}
func (GameState) isServerMessage() {}
func (TurnStarted) isServerMessage() {}
func (DiceRolled) isServerMessage() {}
func (DiceHeld) isServerMessage() {}
func (CategoryScored) isServerMessage() {}
func (TurnEnded) isServerMessage() {}
func (GameOver) isServerMessage() {}
func (ChatMessage) isServerMessage() {}
func (SystemMessage) isServerMessage() {}
func (ErrorMessage) isServerMessage() {}
func (Pong) isServerMessage() {}
func (PlayerJoined) isServerMessage() {}
func (PlayerLeft) isServerMessage() {}
func (SpectatorJoined) isServerMessage() {}
func (SpectatorLeft) isServerMessage() {}

type ErrorCode string

const (
	CodeRoomFull              ErrorCode = "RoomFull"
	CodeRoomNotFound          ErrorCode = "RoomNotFound"
	CodeWrongPassword         ErrorCode = "WrongPassword"
	CodeNotYourTurn           ErrorCode = "NotYourTurn"
	CodeInvalidAction         ErrorCode = "InvalidAction"
	CodeCategoryAlreadyScored ErrorCode = "CategoryAlreadyScored"
	CodeGameAlreadyStarted    ErrorCode = "GameAlreadyStarted"
	CodeNotEnoughPlayers      ErrorCode = "NotEnoughPlayers"
	CodeNameTaken             ErrorCode = "NameTaken"
	CodeInternalError         ErrorCode = "InternalError"
)

type RoomState string

const (
	RoomWaiting  RoomState = "WaitingForPlayers"
	RoomInGame   RoomState = "InGame"
	RoomFinished RoomState = "Finished"
)

// RoomInfo is the browse-list view of a room.
type RoomInfo struct {
	RoomID         string    `json:"room_id"`
	Name           string    `json:"name"`
	PlayerCount    int       `json:"player_count"`
	MaxPlayers     int       `json:"max_players"`
	SpectatorCount int       `json:"spectator_count"`
	State          RoomState `json:"state"`
	HasPassword    bool      `json:"has_password"`
}

type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
}

// RoomSnapshot is the detail view sent only to members of the room.
type RoomSnapshot struct {
	RoomID      string       `json:"room_id"`
	Name        string       `json:"name"`
	HostID      string       `json:"host_id,omitempty"`
	Players     []PlayerInfo `json:"players"`
	Spectators  []string     `json:"spectators"`
	State       RoomState    `json:"state"`
	MaxPlayers  int          `json:"max_players"`
	HasPassword bool         `json:"has_password"`
}
