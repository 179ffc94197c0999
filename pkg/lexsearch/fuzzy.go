package lexsearch

// withinOneEdit reports whether two terms are identical or differ by a
// single character edit: one substitution, one insertion, or one deletion.
// Terms whose lengths differ by more than one character can never be within
// one edit, so they are rejected before any comparison. A full edit-distance
// matrix is unnecessary at this tolerance; a single pass over the runes
// suffices and allocates nothing beyond the rune slices.
func withinOneEdit(a, b string) bool {
	if a == b {
		return true
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	switch len(rb) - len(ra) {
	case 0:
		return oneSubstitution(ra, rb)
	case 1:
		return oneInsertion(ra, rb)
	default:
		return false
	}
}

// oneSubstitution checks equal-length terms for at most one differing rune.
func oneSubstitution(a, b []rune) bool {
	diffs := 0
	for i := range a {
		if a[i] != b[i] {
			diffs++
			if diffs > 1 {
				return false
			}
		}
	}
	return true
}

// oneInsertion checks whether the longer term b equals the shorter term a
// with exactly one extra rune inserted somewhere.
func oneInsertion(short, long []rune) bool {
	i, j := 0, 0
	skipped := false
	for i < len(short) {
		if short[i] == long[j] {
			i++
			j++
			continue
		}
		if skipped {
			return false
		}
		skipped = true
		j++
	}
	return true
}
