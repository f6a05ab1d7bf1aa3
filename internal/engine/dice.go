package engine

const (
	NumDice  = 5
	MaxRolls = 3
)

// Rand is the randomness source for dice. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

type Die struct {
	Value int  `json:"value"`
	Held  bool `json:"held"`
}

// Roll assigns a uniform value in 1..6 unless the die is held.
func (d *Die) Roll(rng Rand) {
	if d.Held {
		return
	}
	d.Value = rng.Intn(6) + 1
}

// DiceSet is always exactly five dice.
type DiceSet [NumDice]Die

func NewDiceSet() DiceSet {
	var d DiceSet
	for i := range d {
		d[i] = Die{Value: 1}
	}
	return d
}

func (d *DiceSet) RollUnheld(rng Rand) {
	for i := range d {
		d[i].Roll(rng)
	}
}

func (d *DiceSet) SetHeld(mask [NumDice]bool) {
	for i := range d {
		d[i].Held = mask[i]
	}
}

func (d *DiceSet) ReleaseAll() {
	for i := range d {
		d[i].Held = false
	}
}

func (d DiceSet) Values() [NumDice]int {
	var v [NumDice]int
	for i, die := range d {
		v[i] = die.Value
	}
	return v
}

func (d DiceSet) HeldMask() [NumDice]bool {
	var m [NumDice]bool
	for i, die := range d {
		m[i] = die.Held
	}
	return m
}
