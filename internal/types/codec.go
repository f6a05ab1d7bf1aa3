package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown message type")
var ErrMalformed = errors.New("malformed message")

// envelope is the JSON object carried in every frame. Payload is omitted for
// messages without fields.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

var clientKinds = map[string]func(envelope) (ClientMessage, error){
	"Hello":         clientOf[Hello],
	"ListRooms":     clientOf[ListRooms],
	"CreateRoom":    clientOf[CreateRoom],
	"JoinRoom":      clientOf[JoinRoom],
	"SpectateRoom":  clientOf[SpectateRoom],
	"LeaveRoom":     clientOf[LeaveRoom],
	"StartGame":     clientOf[StartGame],
	"RollDice":      clientOf[RollDice],
	"HoldDice":      clientOf[HoldDice],
	"ScoreCategory": clientOf[ScoreCategory],
	"Chat":          clientOf[Chat],
	"Ping":          clientOf[Ping],
	"Disconnect":    clientOf[Disconnect],
}

var serverKinds = map[string]func(envelope) (ServerMessage, error){
	"Welcome":         serverOf[Welcome],
	"HandshakeError":  serverOf[HandshakeError],
	"RoomList":        serverOf[RoomList],
	"RoomJoined":      serverOf[RoomJoined],
	"RoomUpdate":      serverOf[RoomUpdate],
	"RoomLeft":        serverOf[RoomLeft],
	"GameStarted":     serverOf[GameStarted],
	"GameState":       serverOf[GameState],
	"TurnStarted":     serverOf[TurnStarted],
	"DiceRolled":      serverOf[DiceRolled],
	"DiceHeld":        serverOf[DiceHeld],
	"CategoryScored":  serverOf[CategoryScored],
	"TurnEnded":       serverOf[TurnEnded],
	"GameOver":        serverOf[GameOver],
	"ChatMessage":     serverOf[ChatMessage],
	"SystemMessage":   serverOf[SystemMessage],
	"Error":           serverOf[ErrorMessage],
	"Pong":            serverOf[Pong],
	"PlayerJoined":    serverOf[PlayerJoined],
	"PlayerLeft":      serverOf[PlayerLeft],
	"SpectatorJoined": serverOf[SpectatorJoined],
	"SpectatorLeft":   serverOf[SpectatorLeft],
}

func EncodeClient(m ClientMessage) ([]byte, error) { return encode(m.Kind(), m) }

func EncodeServer(m ServerMessage) ([]byte, error) { return encode(m.Kind(), m) }

func encode(kind string, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	env := envelope{Type: kind}
	if string(payload) != "{}" {
		env.Payload = payload
	}
	return json.Marshal(env)
}

// DecodeClient parses one frame into a client message.
func DecodeClient(b []byte) (ClientMessage, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	decode, ok := clientKinds[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
	return decode(env)
}

// DecodeServer parses one frame into a server message.
func DecodeServer(b []byte) (ServerMessage, error) {
	env, err := decodeEnvelope(b)
	if err != nil {
		return nil, err
	}
	decode, ok := serverKinds[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}
	return decode(env)
}

func clientOf[T ClientMessage](env envelope) (ClientMessage, error) {
	var m T
	if err := decodePayload(env, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func serverOf[T ServerMessage](env envelope) (ServerMessage, error) {
	var m T
	if err := decodePayload(env, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeEnvelope(b []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return env, nil
}

func decodePayload(env envelope, v any) error {
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, env.Type, err)
	}
	return nil
}
