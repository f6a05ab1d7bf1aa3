package engine

// valueCounts is indexed by face; index 0 is unused.
func valueCounts(values [NumDice]int) [7]int {
	var counts [7]int
	for _, v := range values {
		if v >= 1 && v <= 6 {
			counts[v]++
		}
	}
	return counts
}

func countOf(values [NumDice]int, face int) int {
	return valueCounts(values)[face]
}

func sum(values [NumDice]int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

func hasNOfAKind(values [NumDice]int, n int) bool {
	for _, c := range valueCounts(values) {
		if c >= n {
			return true
		}
	}
	return false
}

// isFullHouse needs a triple and a distinct pair, so five of a kind does not qualify.
func isFullHouse(values [NumDice]int) bool {
	three, two := false, false
	for _, c := range valueCounts(values) {
		switch c {
		case 3:
			three = true
		case 2:
			two = true
		}
	}
	return three && two
}

// hasRun reports whether some run of length consecutive faces is fully present.
func hasRun(values [NumDice]int, length int) bool {
	counts := valueCounts(values)
	for start := 1; start+length-1 <= 6; start++ {
		ok := true
		for face := start; face < start+length; face++ {
			if counts[face] == 0 {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
