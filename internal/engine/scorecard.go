package engine

import "maps"

// Scorecard records at most one score per category. It is only mutated
// through Record and AddYahtzeeBonus.
type Scorecard struct {
	scores       map[Category]int
	yahtzeeBonus int
}

func NewScorecard() *Scorecard {
	return &Scorecard{scores: make(map[Category]int, len(AllCategories))}
}

func (s *Scorecard) Record(c Category, score int) error {
	if !c.Valid() {
		return ErrInvalidCategory
	}
	if s.IsUsed(c) {
		return ErrCategoryAlreadyScored
	}
	s.scores[c] = score
	return nil
}

func (s *Scorecard) IsUsed(c Category) bool {
	_, ok := s.scores[c]
	return ok
}

func (s *Scorecard) Score(c Category) (int, bool) {
	v, ok := s.scores[c]
	return v, ok
}

func (s *Scorecard) AddYahtzeeBonus() { s.yahtzeeBonus++ }

func (s *Scorecard) YahtzeeBonusCount() int { return s.yahtzeeBonus }

func (s *Scorecard) YahtzeeBonusTotal() int { return s.yahtzeeBonus * YahtzeeBonusValue }

func (s *Scorecard) UpperSubtotal() int {
	total := 0
	for _, c := range UpperCategories {
		total += s.scores[c]
	}
	return total
}

func (s *Scorecard) UpperBonus() int {
	if s.UpperSubtotal() >= UpperBonusThreshold {
		return UpperBonusValue
	}
	return 0
}

func (s *Scorecard) LowerTotal() int {
	total := 0
	for c, v := range s.scores {
		if !c.IsUpper() {
			total += v
		}
	}
	return total
}

func (s *Scorecard) GrandTotal() int {
	return s.UpperSubtotal() + s.UpperBonus() + s.LowerTotal() + s.YahtzeeBonusTotal()
}

func (s *Scorecard) IsComplete() bool {
	return len(s.scores) == len(AllCategories)
}

// Available returns the unfilled categories in scorecard order.
func (s *Scorecard) Available() []Category {
	out := make([]Category, 0, len(AllCategories))
	for _, c := range AllCategories {
		if !s.IsUsed(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Scorecard) Clone() *Scorecard {
	return &Scorecard{scores: maps.Clone(s.scores), yahtzeeBonus: s.yahtzeeBonus}
}

type Player struct {
	ID        string
	Name      string
	Scorecard *Scorecard
	Connected bool
}

func NewPlayer(id, name string) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		Scorecard: NewScorecard(),
		Connected: true,
	}
}
