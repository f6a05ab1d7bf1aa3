// Package ai picks holds and scoring categories for computer players. It is
// stateless and only uses the public engine contract, so the same functions
// drive the in-room stand-in for departed players and the yahtbot client.
package ai

import (
	"cmp"
	"slices"

	"github.com/DoyleJ11/yaht-backend/internal/engine"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"   // random choices
	Medium Difficulty = "medium" // greedy on the immediate score
	Hard   Difficulty = "hard"   // greedy with upper-bonus awareness
)

func ParseDifficulty(s string) (Difficulty, bool) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Hard:
		return d, true
	default:
		return "", false
	}
}

// ChooseHolds returns the hold mask for the next reroll.
func ChooseHolds(dice engine.DiceSet, sc *engine.Scorecard, d Difficulty, rng engine.Rand) [engine.NumDice]bool {
	if d == Easy {
		var held [engine.NumDice]bool
		for i := range held {
			held[i] = rng.Intn(10) < 3
		}
		return held
	}
	return greedyHolds(dice, sc, d)
}

// ChooseCategory returns an unfilled category to bank the dice into.
func ChooseCategory(dice engine.DiceSet, sc *engine.Scorecard, d Difficulty, rng engine.Rand) engine.Category {
	available := sc.Available()
	if len(available) == 0 {
		return engine.CategoryChance
	}
	if d == Easy {
		return available[rng.Intn(len(available))]
	}
	return greedyCategory(dice, sc, d)
}

type candidate struct {
	category engine.Category
	score    int
	priority int
}

func greedyCategory(dice engine.DiceSet, sc *engine.Scorecard, d Difficulty) engine.Category {
	values := dice.Values()
	available := sc.Available()

	scored := make([]candidate, 0, len(available))
	for _, c := range available {
		score := engine.ComputeScore(c, values)
		priority := score
		if d == Hard {
			priority = categoryPriority(c, score, sc)
		}
		scored = append(scored, candidate{category: c, score: score, priority: priority})
	}
	slices.SortStableFunc(scored, func(a, b candidate) int {
		if n := cmp.Compare(b.priority, a.priority); n != 0 {
			return n
		}
		return cmp.Compare(b.score, a.score)
	})

	if scored[0].score == 0 {
		return leastValuableZero(available, sc)
	}
	return scored[0].category
}

func categoryPriority(c engine.Category, score int, sc *engine.Scorecard) int {
	switch {
	case c == engine.CategoryYahtzee && score == engine.YahtzeeScore:
		return score + 100
	case c == engine.CategoryLargeStraight && score > 0:
		return score + 20
	case c == engine.CategoryFullHouse && score > 0:
		return score + 10
	case c.IsUpper():
		used := 0
		for _, u := range engine.UpperCategories {
			if sc.IsUsed(u) {
				used++
			}
		}
		remaining := len(engine.UpperCategories) - used
		if remaining == 0 {
			return score
		}
		needed := max(engine.UpperBonusThreshold-sc.UpperSubtotal(), 0)
		target := needed / remaining
		// three of a face is par for the bonus
		if score >= c.FaceValue()*3 {
			return score + 15
		}
		if score > 0 && score >= target {
			return score + 5
		}
		return score
	default:
		return score
	}
}

// leastValuableZero picks the category it hurts least to scratch.
func leastValuableZero(available []engine.Category, sc *engine.Scorecard) engine.Category {
	weight := func(c engine.Category) int {
		switch c {
		case engine.CategoryYahtzee:
			return -100
		case engine.CategoryLargeStraight:
			return -80
		case engine.CategoryFullHouse:
			return -60
		case engine.CategorySmallStraight:
			return -50
		case engine.CategoryFourOfAKind:
			return -40
		case engine.CategoryThreeOfAKind:
			return -30
		case engine.CategoryOnes:
			return 10
		case engine.CategoryTwos:
			return 5
		case engine.CategoryThrees:
			return 0
		case engine.CategoryChance:
			return -10
		default:
			if sc.UpperSubtotal() >= 50 {
				return -20
			}
			return 0
		}
	}

	best := available[0]
	for _, c := range available[1:] {
		if weight(c) > weight(best) {
			best = c
		}
	}
	return best
}

func greedyHolds(dice engine.DiceSet, sc *engine.Scorecard, d Difficulty) [engine.NumDice]bool {
	values := dice.Values()
	if len(sc.Available()) == 0 {
		return [engine.NumDice]bool{}
	}

	target := greedyCategory(dice, sc, d)
	counts := faceCounts(values)

	switch target {
	case engine.CategoryOnes, engine.CategoryTwos, engine.CategoryThrees,
		engine.CategoryFours, engine.CategoryFives, engine.CategorySixes:
		return holdMatching(values, target.FaceValue())
	case engine.CategoryThreeOfAKind, engine.CategoryFourOfAKind, engine.CategoryYahtzee:
		return holdMatching(values, mostCommonFace(counts))
	case engine.CategoryFullHouse:
		return holdFullHouse(values, counts)
	case engine.CategorySmallStraight, engine.CategoryLargeStraight:
		return holdForStraight(values, counts)
	default:
		var held [engine.NumDice]bool
		for i, v := range values {
			held[i] = v >= 4
		}
		return held
	}
}

func faceCounts(values [engine.NumDice]int) [7]int {
	var counts [7]int
	for _, v := range values {
		counts[v]++
	}
	return counts
}

// mostCommonFace breaks count ties toward the higher face.
func mostCommonFace(counts [7]int) int {
	best := 6
	for f := 6; f >= 1; f-- {
		if counts[f] > counts[best] {
			best = f
		}
	}
	return best
}

func holdMatching(values [engine.NumDice]int, face int) [engine.NumDice]bool {
	var held [engine.NumDice]bool
	for i, v := range values {
		held[i] = v == face
	}
	return held
}

func holdFullHouse(values [engine.NumDice]int, counts [7]int) [engine.NumDice]bool {
	type group struct{ face, count int }
	var groups []group
	for f := 1; f <= 6; f++ {
		if counts[f] >= 2 {
			groups = append(groups, group{f, counts[f]})
		}
	}
	if len(groups) < 2 {
		return holdMatching(values, mostCommonFace(counts))
	}
	slices.SortStableFunc(groups, func(a, b group) int { return cmp.Compare(b.count, a.count) })

	var held [engine.NumDice]bool
	triple, pair := 0, 0
	for i, v := range values {
		switch {
		case v == groups[0].face && triple < 3:
			held[i] = true
			triple++
		case v == groups[1].face && pair < 2:
			held[i] = true
			pair++
		}
	}
	return held
}

var straightRuns = [][]int{
	{1, 2, 3, 4, 5},
	{2, 3, 4, 5, 6},
	{1, 2, 3, 4},
	{2, 3, 4, 5},
	{3, 4, 5, 6},
}

func holdForStraight(values [engine.NumDice]int, counts [7]int) [engine.NumDice]bool {
	var best []int
	bestMatches := 0
	for _, run := range straightRuns {
		matches := 0
		for _, f := range run {
			if counts[f] > 0 {
				matches++
			}
		}
		if matches > bestMatches {
			best, bestMatches = run, matches
		}
	}

	var held [engine.NumDice]bool
	var used [7]bool
	for i, v := range values {
		if slices.Contains(best, v) && !used[v] {
			held[i] = true
			used[v] = true
		}
	}
	return held
}
