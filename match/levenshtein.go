package match

// Levenshtein returns the edit distance between a and b, counted in runes.
func Levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	v0 := make([]int, len(rb)+1)
	v1 := make([]int, len(rb)+1)
	for j := range v0 {
		v0[j] = j
	}

	for i := range ra {
		v1[0] = i + 1
		for j := range rb {
			cost := 1
			if ra[i] == rb[j] {
				cost = 0
			}
			v1[j+1] = min(v0[j+1]+1, v1[j]+1, v0[j]+cost)
		}
		v0, v1 = v1, v0
	}
	return v0[len(rb)]
}
