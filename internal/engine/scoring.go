package engine

import "fmt"

type Category string

const (
	CategoryOnes   Category = "Ones"
	CategoryTwos   Category = "Twos"
	CategoryThrees Category = "Threes"
	CategoryFours  Category = "Fours"
	CategoryFives  Category = "Fives"
	CategorySixes  Category = "Sixes"

	CategoryThreeOfAKind  Category = "ThreeOfAKind"
	CategoryFourOfAKind   Category = "FourOfAKind"
	CategoryFullHouse     Category = "FullHouse"
	CategorySmallStraight Category = "SmallStraight"
	CategoryLargeStraight Category = "LargeStraight"
	CategoryYahtzee       Category = "Yahtzee"
	CategoryChance        Category = "Chance"
)

// AllCategories lists the 13 categories in scorecard order.
var AllCategories = [...]Category{
	CategoryOnes,
	CategoryTwos,
	CategoryThrees,
	CategoryFours,
	CategoryFives,
	CategorySixes,
	CategoryThreeOfAKind,
	CategoryFourOfAKind,
	CategoryFullHouse,
	CategorySmallStraight,
	CategoryLargeStraight,
	CategoryYahtzee,
	CategoryChance,
}

var UpperCategories = [...]Category{
	CategoryOnes,
	CategoryTwos,
	CategoryThrees,
	CategoryFours,
	CategoryFives,
	CategorySixes,
}

const (
	UpperBonusThreshold = 63
	UpperBonusValue     = 35
	YahtzeeBonusValue   = 100

	FullHouseScore     = 25
	SmallStraightScore = 30
	LargeStraightScore = 40
	YahtzeeScore       = 50
)

var displayNames = map[Category]string{
	CategoryOnes:          "Ones",
	CategoryTwos:          "Twos",
	CategoryThrees:        "Threes",
	CategoryFours:         "Fours",
	CategoryFives:         "Fives",
	CategorySixes:         "Sixes",
	CategoryThreeOfAKind:  "3 of a Kind",
	CategoryFourOfAKind:   "4 of a Kind",
	CategoryFullHouse:     "Full House",
	CategorySmallStraight: "Sm. Straight",
	CategoryLargeStraight: "Lg. Straight",
	CategoryYahtzee:       "YAHTZEE",
	CategoryChance:        "Chance",
}

func (c Category) Valid() bool {
	_, ok := displayNames[c]
	return ok
}

func (c Category) IsUpper() bool {
	return c.FaceValue() > 0
}

// FaceValue is the die face an upper category counts, or 0 for lower categories.
func (c Category) FaceValue() int {
	switch c {
	case CategoryOnes:
		return 1
	case CategoryTwos:
		return 2
	case CategoryThrees:
		return 3
	case CategoryFours:
		return 4
	case CategoryFives:
		return 5
	case CategorySixes:
		return 6
	default:
		return 0
	}
}

func (c Category) DisplayName() string {
	if name, ok := displayNames[c]; ok {
		return name
	}
	return string(c)
}

// ParseCategory validates a wire category name.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ComputeScore returns the points the five values are worth in category c.
func ComputeScore(c Category, values [NumDice]int) int {
	switch c {
	case CategoryOnes, CategoryTwos, CategoryThrees, CategoryFours, CategoryFives, CategorySixes:
		face := c.FaceValue()
		return countOf(values, face) * face
	case CategoryThreeOfAKind:
		if hasNOfAKind(values, 3) {
			return sum(values)
		}
		return 0
	case CategoryFourOfAKind:
		if hasNOfAKind(values, 4) {
			return sum(values)
		}
		return 0
	case CategoryFullHouse:
		if isFullHouse(values) {
			return FullHouseScore
		}
		return 0
	case CategorySmallStraight:
		if hasRun(values, 4) {
			return SmallStraightScore
		}
		return 0
	case CategoryLargeStraight:
		if hasRun(values, 5) {
			return LargeStraightScore
		}
		return 0
	case CategoryYahtzee:
		if IsYahtzee(values) {
			return YahtzeeScore
		}
		return 0
	case CategoryChance:
		return sum(values)
	default:
		return 0
	}
}

// ComputeScoreJoker scores a Joker roll: Full House and the straights take
// their fixed value regardless of the dice shape. Everything else scores as usual.
func ComputeScoreJoker(c Category, values [NumDice]int, jokerActive bool) int {
	if !jokerActive {
		return ComputeScore(c, values)
	}
	switch c {
	case CategoryFullHouse:
		return FullHouseScore
	case CategorySmallStraight:
		return SmallStraightScore
	case CategoryLargeStraight:
		return LargeStraightScore
	default:
		return ComputeScore(c, values)
	}
}

func IsYahtzee(values [NumDice]int) bool {
	return hasNOfAKind(values, NumDice)
}
