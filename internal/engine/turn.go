package engine

type TurnPhase string

const (
	TurnWaitingForRoll TurnPhase = "WaitingForRoll"
	TurnRolling        TurnPhase = "Rolling"
	TurnMustScore      TurnPhase = "MustScore"
	TurnDone           TurnPhase = "Done"
)

// Turn is one player's turn: WaitingForRoll -> Rolling(n) -> MustScore -> Done.
type Turn struct {
	playerID  string
	phase     TurnPhase
	dice      DiceSet
	rollsUsed int
}

func NewTurn(playerID string) *Turn {
	return &Turn{
		playerID: playerID,
		phase:    TurnWaitingForRoll,
		dice:     NewDiceSet(),
	}
}

func (t *Turn) PlayerID() string { return t.playerID }

func (t *Turn) Phase() TurnPhase { return t.phase }

func (t *Turn) Dice() DiceSet { return t.dice }

func (t *Turn) RollsUsed() int { return t.rollsUsed }

func (t *Turn) RollsRemaining() int { return MaxRolls - t.rollsUsed }

func (t *Turn) CanRoll() bool {
	return t.rollsUsed < MaxRolls && (t.phase == TurnWaitingForRoll || t.phase == TurnRolling)
}

func (t *Turn) CanHold() bool {
	return t.phase == TurnRolling
}

// CanScore is true once the player has rolled at least once.
func (t *Turn) CanScore() bool {
	return t.phase == TurnRolling || t.phase == TurnMustScore
}

func (t *Turn) Roll(rng Rand) error {
	if !t.CanRoll() {
		return ErrCannotRoll
	}
	if t.rollsUsed == 0 {
		t.dice.ReleaseAll()
	}
	t.dice.RollUnheld(rng)
	t.rollsUsed++
	if t.rollsUsed >= MaxRolls {
		t.phase = TurnMustScore
	} else {
		t.phase = TurnRolling
	}
	return nil
}

func (t *Turn) Hold(mask [NumDice]bool) error {
	if !t.CanHold() {
		return ErrCannotHold
	}
	t.dice.SetHeld(mask)
	return nil
}

func (t *Turn) finish() { t.phase = TurnDone }
