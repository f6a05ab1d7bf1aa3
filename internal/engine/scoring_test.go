package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeScore(t *testing.T) {
	cases := []struct {
		name     string
		category Category
		dice     [NumDice]int
		want     int
	}{
		{"ones pair", CategoryOnes, [5]int{1, 1, 3, 4, 5}, 2},
		{"ones none", CategoryOnes, [5]int{2, 3, 4, 5, 6}, 0},
		{"ones all", CategoryOnes, [5]int{1, 1, 1, 1, 1}, 5},
		{"twos", CategoryTwos, [5]int{2, 2, 3, 4, 5}, 4},
		{"threes", CategoryThrees, [5]int{3, 3, 3, 4, 5}, 9},
		{"fours", CategoryFours, [5]int{4, 4, 4, 4, 5}, 16},
		{"fives", CategoryFives, [5]int{5, 5, 5, 5, 5}, 25},
		{"sixes", CategorySixes, [5]int{6, 6, 1, 2, 3}, 12},

		{"three of a kind", CategoryThreeOfAKind, [5]int{3, 3, 3, 4, 5}, 18},
		{"three of a kind missing", CategoryThreeOfAKind, [5]int{1, 2, 3, 4, 5}, 0},
		{"three of a kind from four", CategoryThreeOfAKind, [5]int{3, 3, 3, 3, 5}, 17},
		{"three of a kind from five", CategoryThreeOfAKind, [5]int{2, 2, 2, 2, 2}, 10},
		{"four of a kind", CategoryFourOfAKind, [5]int{3, 3, 3, 3, 5}, 17},
		{"four of a kind missing", CategoryFourOfAKind, [5]int{3, 3, 3, 4, 5}, 0},
		{"four of a kind from five", CategoryFourOfAKind, [5]int{6, 6, 6, 6, 6}, 30},

		{"full house", CategoryFullHouse, [5]int{3, 3, 3, 5, 5}, 25},
		{"full house unordered", CategoryFullHouse, [5]int{5, 3, 5, 3, 3}, 25},
		{"full house two pair", CategoryFullHouse, [5]int{1, 1, 2, 2, 3}, 0},
		{"full house five of a kind", CategoryFullHouse, [5]int{3, 3, 3, 3, 3}, 0},
		{"full house four of a kind", CategoryFullHouse, [5]int{3, 3, 3, 3, 5}, 0},

		{"small straight low", CategorySmallStraight, [5]int{1, 2, 3, 4, 6}, 30},
		{"small straight mid", CategorySmallStraight, [5]int{2, 3, 4, 5, 1}, 30},
		{"small straight high", CategorySmallStraight, [5]int{3, 4, 5, 6, 1}, 30},
		{"small straight gap", CategorySmallStraight, [5]int{1, 2, 3, 5, 6}, 0},
		{"small straight inside large", CategorySmallStraight, [5]int{1, 2, 3, 4, 5}, 30},
		{"small straight with duplicate", CategorySmallStraight, [5]int{1, 2, 3, 4, 4}, 30},
		{"small straight duplicate high", CategorySmallStraight, [5]int{6, 4, 3, 5, 3}, 30},
		{"small straight no wrap", CategorySmallStraight, [5]int{5, 6, 1, 2, 2}, 0},

		{"large straight low", CategoryLargeStraight, [5]int{1, 2, 3, 4, 5}, 40},
		{"large straight high", CategoryLargeStraight, [5]int{6, 5, 4, 3, 2}, 40},
		{"large straight broken", CategoryLargeStraight, [5]int{1, 2, 3, 4, 6}, 0},
		{"large straight duplicate", CategoryLargeStraight, [5]int{2, 3, 4, 5, 5}, 0},
		{"large straight no wrap", CategoryLargeStraight, [5]int{3, 4, 5, 6, 1}, 0},

		{"yahtzee fives", CategoryYahtzee, [5]int{5, 5, 5, 5, 5}, 50},
		{"yahtzee ones", CategoryYahtzee, [5]int{1, 1, 1, 1, 1}, 50},
		{"yahtzee missing", CategoryYahtzee, [5]int{5, 5, 5, 5, 4}, 0},

		{"chance low", CategoryChance, [5]int{1, 2, 3, 4, 5}, 15},
		{"chance high", CategoryChance, [5]int{6, 6, 6, 6, 6}, 30},

		{"unknown category", Category("Bogus"), [5]int{6, 6, 6, 6, 6}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeScore(tc.category, tc.dice))
		})
	}
}

// forEachRoll visits all 6^5 dice quintuples.
func forEachRoll(fn func(v [NumDice]int)) {
	var v [NumDice]int
	var rec func(i int)
	rec = func(i int) {
		if i == NumDice {
			fn(v)
			return
		}
		for f := 1; f <= 6; f++ {
			v[i] = f
			rec(i + 1)
		}
	}
	rec(0)
}

func TestComputeScore_AllRolls(t *testing.T) {
	forEachRoll(func(v [NumDice]int) {
		counts := map[int]int{}
		total := 0
		for _, f := range v {
			counts[f]++
			total += f
		}
		maxCount := 0
		for _, c := range counts {
			maxCount = max(maxCount, c)
		}
		has := func(faces ...int) bool {
			for _, f := range faces {
				if counts[f] == 0 {
					return false
				}
			}
			return true
		}

		for _, c := range UpperCategories {
			face := c.FaceValue()
			require.Equal(t, counts[face]*face, ComputeScore(c, v), "%s %v", c, v)
		}

		want3, want4 := 0, 0
		if maxCount >= 3 {
			want3 = total
		}
		if maxCount >= 4 {
			want4 = total
		}
		require.Equal(t, want3, ComputeScore(CategoryThreeOfAKind, v), "%v", v)
		require.Equal(t, want4, ComputeScore(CategoryFourOfAKind, v), "%v", v)

		wantFH := 0
		if len(counts) == 2 && (maxCount == 3) {
			wantFH = FullHouseScore
		}
		require.Equal(t, wantFH, ComputeScore(CategoryFullHouse, v), "%v", v)

		wantSS := 0
		if has(1, 2, 3, 4) || has(2, 3, 4, 5) || has(3, 4, 5, 6) {
			wantSS = SmallStraightScore
		}
		require.Equal(t, wantSS, ComputeScore(CategorySmallStraight, v), "%v", v)

		wantLS := 0
		if has(1, 2, 3, 4, 5) || has(2, 3, 4, 5, 6) {
			wantLS = LargeStraightScore
		}
		require.Equal(t, wantLS, ComputeScore(CategoryLargeStraight, v), "%v", v)

		wantY := 0
		if maxCount == 5 {
			wantY = YahtzeeScore
		}
		require.Equal(t, wantY, ComputeScore(CategoryYahtzee, v), "%v", v)
		require.Equal(t, total, ComputeScore(CategoryChance, v), "%v", v)
	})
}

func TestComputeScoreJoker(t *testing.T) {
	yahtzee := [NumDice]int{4, 4, 4, 4, 4}

	cases := []struct {
		category Category
		joker    bool
		want     int
	}{
		{CategoryFullHouse, true, FullHouseScore},
		{CategorySmallStraight, true, SmallStraightScore},
		{CategoryLargeStraight, true, LargeStraightScore},
		{CategoryFours, true, 20},
		{CategoryThreeOfAKind, true, 20},
		{CategoryChance, true, 20},
		{CategoryYahtzee, true, 50},
		{CategoryOnes, true, 0},
		{CategoryFullHouse, false, 0},
		{CategorySmallStraight, false, 0},
		{CategoryLargeStraight, false, 0},
	}

	for _, tc := range cases {
		t.Run(string(tc.category), func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeScoreJoker(tc.category, yahtzee, tc.joker))
		})
	}
}

func TestCategory_Metadata(t *testing.T) {
	assert.Len(t, AllCategories, 13)
	assert.True(t, CategoryOnes.IsUpper())
	assert.True(t, CategorySixes.IsUpper())
	assert.False(t, CategoryThreeOfAKind.IsUpper())
	assert.False(t, CategoryYahtzee.IsUpper())
	assert.Equal(t, "Sm. Straight", CategorySmallStraight.DisplayName())

	_, err := ParseCategory("Sevens")
	require.ErrorIs(t, err, ErrInvalidCategory)

	var c Category
	require.NoError(t, json.Unmarshal([]byte(`"FullHouse"`), &c))
	assert.Equal(t, CategoryFullHouse, c)
	require.Error(t, json.Unmarshal([]byte(`"fullhouse"`), &c))
}
