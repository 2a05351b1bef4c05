package keyword

// EditDistance returns the number of single-rune edits turning a into b.
// With transpositions set, swapping two adjacent runes counts as one edit
// (optimal string alignment); otherwise it is plain Levenshtein distance.
func EditDistance(a, b string, transpositions bool) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Three rolling rows: two back (for transpositions), previous, current.
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			best := prev[j] + 1
			if v := curr[j-1] + 1; v < best {
				best = v
			}
			if v := prev[j-1] + cost; v < best {
				best = v
			}
			if transpositions && i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if v := prev2[j-2] + cost; v < best {
					best = v
				}
			}
			curr[j] = best
		}
		prev2, prev, curr = prev, curr, prev2
	}
	return prev[len(rb)]
}

// LevenshteinDistance is EditDistance without transpositions.
func LevenshteinDistance(a, b string) int {
	return EditDistance(a, b, false)
}

// DamerauLevenshteinDistance is EditDistance with adjacent transpositions.
func DamerauLevenshteinDistance(a, b string) int {
	return EditDistance(a, b, true)
}
