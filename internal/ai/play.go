package ai

import "github.com/DoyleJ11/yaht-backend/internal/engine"

type ActionKind int

const (
	ActionRoll ActionKind = iota
	ActionHold
	ActionScore
)

// Action is the next move a computer player makes on its turn.
type Action struct {
	Kind     ActionKind
	Held     [engine.NumDice]bool
	Category engine.Category
}

// NextAction decides the next move from what a client can see: the dice, the
// rolls used so far and the player's own scorecard. Callers apply the action
// and ask again until a Score action ends the turn.
func NextAction(dice engine.DiceSet, rollsUsed int, sc *engine.Scorecard, d Difficulty, rng engine.Rand) Action {
	if rollsUsed == 0 {
		return Action{Kind: ActionRoll}
	}
	if rollsUsed < engine.MaxRolls {
		held := ChooseHolds(dice, sc, d, rng)
		if held == allHeld {
			return Action{Kind: ActionScore, Category: ChooseCategory(dice, sc, d, rng)}
		}
		if held != dice.HeldMask() {
			return Action{Kind: ActionHold, Held: held}
		}
		return Action{Kind: ActionRoll}
	}
	return Action{Kind: ActionScore, Category: ChooseCategory(dice, sc, d, rng)}
}

var allHeld = [engine.NumDice]bool{true, true, true, true, true}

// PlayTurn runs a full turn for playerID against g, calling observe after
// each applied action. A hold is always followed by a roll. If the chosen
// category is rejected it falls back to the first open one.
func PlayTurn(g *engine.Game, playerID string, d Difficulty, rng engine.Rand, observe func(Action)) (engine.Category, int, error) {
	if observe == nil {
		observe = func(Action) {}
	}
	p, ok := g.Player(playerID)
	if !ok {
		return "", 0, engine.ErrUnknownPlayer
	}
	for {
		turn, ok := g.Turn()
		if !ok {
			return "", 0, engine.ErrNoActiveTurn
		}
		a := NextAction(turn.Dice(), turn.RollsUsed(), p.Scorecard, d, rng)
		switch a.Kind {
		case ActionHold:
			if err := g.HoldDice(playerID, a.Held); err != nil {
				return "", 0, err
			}
			observe(a)
			fallthrough
		case ActionRoll:
			if err := g.RollDice(playerID, rng); err != nil {
				return "", 0, err
			}
			observe(Action{Kind: ActionRoll})
		case ActionScore:
			c := a.Category
			score, err := g.ScoreCategory(playerID, c)
			if err != nil {
				open := p.Scorecard.Available()
				if len(open) == 0 {
					return "", 0, err
				}
				c = open[0]
				if score, err = g.ScoreCategory(playerID, c); err != nil {
					return "", 0, err
				}
			}
			observe(Action{Kind: ActionScore, Category: c})
			return c, score, nil
		}
	}
}
