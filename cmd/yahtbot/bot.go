package main

import (
	"go.uber.org/zap"

	"github.com/DoyleJ11/yaht-backend/internal/ai"
	"github.com/DoyleJ11/yaht-backend/internal/engine"
	"github.com/DoyleJ11/yaht-backend/internal/types"
)

// bot turns server events into the moves of one computer player. It holds
// only what a client can see.
type bot struct {
	id         string
	difficulty ai.Difficulty
	rng        engine.Rand
	log        *zap.Logger

	// host starts the game once this many players are seated; 0 never starts
	startAt int

	scorecard *engine.Scorecard
	myTurn    bool
	rollsUsed int
}

func newBot(id string, d ai.Difficulty, startAt int, rng engine.Rand, log *zap.Logger) *bot {
	return &bot{
		id:         id,
		difficulty: d,
		rng:        rng,
		log:        log,
		startAt:    startAt,
		scorecard:  engine.NewScorecard(),
	}
}

// handle returns the messages to send in response to m and whether the
// game is over.
func (b *bot) handle(m types.ServerMessage) ([]types.ClientMessage, bool) {
	switch m := m.(type) {
	case types.RoomJoined:
		return b.maybeStart(m.Room), false
	case types.RoomUpdate:
		return b.maybeStart(m.Room), false

	case types.GameStarted:
		b.syncScorecard(m.Game)
	case types.GameState:
		b.syncScorecard(m.Game)

	case types.TurnStarted:
		b.myTurn = m.PlayerID == b.id
		b.rollsUsed = 0
		if b.myTurn {
			return b.next(engine.NewDiceSet()), false
		}

	case types.DiceRolled:
		if b.myTurn {
			b.rollsUsed = engine.MaxRolls - m.RollsRemaining
			return b.next(m.Dice), false
		}

	case types.DiceHeld:
		if b.myTurn {
			return []types.ClientMessage{types.RollDice{}}, false
		}

	case types.CategoryScored:
		if m.PlayerID == b.id {
			b.myTurn = false
			_ = b.scorecard.Record(m.Category, m.Score)
			b.log.Info("scored", zap.String("category", string(m.Category)), zap.Int("score", m.Score))
		}

	case types.GameOver:
		for _, s := range m.FinalScores {
			b.log.Info("final score", zap.String("player", s.Name), zap.Int("score", s.Score))
		}
		b.log.Info("game over", zap.Bool("won", m.WinnerID == b.id))
		return nil, true

	case types.ErrorMessage:
		b.log.Warn("server error", zap.String("code", string(m.Code)), zap.String("message", m.Message))
		if b.myTurn && b.rollsUsed > 0 {
			if open := b.scorecard.Available(); len(open) > 0 {
				return []types.ClientMessage{types.ScoreCategory{Category: open[0]}}, false
			}
		}
	}
	return nil, false
}

func (b *bot) next(dice engine.DiceSet) []types.ClientMessage {
	a := ai.NextAction(dice, b.rollsUsed, b.scorecard, b.difficulty, b.rng)
	switch a.Kind {
	case ai.ActionHold:
		return []types.ClientMessage{types.HoldDice{Mask: a.Held}}
	case ai.ActionScore:
		return []types.ClientMessage{types.ScoreCategory{Category: a.Category}}
	default:
		return []types.ClientMessage{types.RollDice{}}
	}
}

func (b *bot) maybeStart(room types.RoomSnapshot) []types.ClientMessage {
	if b.startAt <= 0 || room.HostID != b.id || room.State != types.RoomWaiting {
		return nil
	}
	if len(room.Players) < b.startAt {
		return nil
	}
	return []types.ClientMessage{types.StartGame{}}
}

func (b *bot) syncScorecard(snap engine.Snapshot) {
	for _, p := range snap.Players {
		if p.ID != b.id {
			continue
		}
		sc := engine.NewScorecard()
		for c, v := range p.Scorecard.Scores {
			_ = sc.Record(c, v)
		}
		b.scorecard = sc
	}
}
