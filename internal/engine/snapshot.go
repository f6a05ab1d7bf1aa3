package engine

import "maps"

// Snapshot is the read-only projection of a Game sent to clients. It shares
// no memory with the live game.
type Snapshot struct {
	Phase              Phase            `json:"phase"`
	Players            []PlayerSnapshot `json:"players"`
	CurrentPlayerIndex int              `json:"current_player_index"`
	Dice               *DiceSet         `json:"dice,omitempty"`
	TurnPhase          TurnPhase        `json:"turn_phase,omitempty"`
	RollsUsed          int              `json:"rolls_used"`
	Round              int              `json:"round"`
	TotalRounds        int              `json:"total_rounds"`
}

type PlayerSnapshot struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Scorecard ScorecardSnapshot `json:"scorecard"`
	Connected bool              `json:"connected"`
}

type ScorecardSnapshot struct {
	Scores            map[Category]int `json:"scores"`
	YahtzeeBonusCount int              `json:"yahtzee_bonus_count"`
	UpperSubtotal     int              `json:"upper_subtotal"`
	UpperBonus        int              `json:"upper_bonus"`
	LowerTotal        int              `json:"lower_total"`
	GrandTotal        int              `json:"grand_total"`
}

func (s *Scorecard) Snapshot() ScorecardSnapshot {
	return ScorecardSnapshot{
		Scores:            maps.Clone(s.scores),
		YahtzeeBonusCount: s.yahtzeeBonus,
		UpperSubtotal:     s.UpperSubtotal(),
		UpperBonus:        s.UpperBonus(),
		LowerTotal:        s.LowerTotal(),
		GrandTotal:        s.GrandTotal(),
	}
}

func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{
		Phase:              g.phase,
		Players:            make([]PlayerSnapshot, 0, len(g.players)),
		CurrentPlayerIndex: g.current,
		Round:              g.round,
		TotalRounds:        g.totalRounds,
	}
	for _, p := range g.players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			ID:        p.ID,
			Name:      p.Name,
			Scorecard: p.Scorecard.Snapshot(),
			Connected: p.Connected,
		})
	}
	if g.turn != nil {
		dice := g.turn.dice
		snap.Dice = &dice
		snap.TurnPhase = g.turn.phase
		snap.RollsUsed = g.turn.rollsUsed
	}
	return snap
}
