package domain

import "strings"

// TextSimilarity returns a 0-1 similarity score between two strings using
// the Sørensen-Dice coefficient over character bigrams. Whitespace is
// stripped before comparison, so word boundaries do not affect the score.
func TextSimilarity(first, second string) float64 {
	a := []rune(stripSpaces(first))
	b := []rune(stripSpaces(second))

	if string(a) == string(b) {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int, len(a)-1)
	for i := 0; i < len(a)-1; i++ {
		bigrams[string(a[i:i+2])]++
	}

	var intersection int
	for i := 0; i < len(b)-1; i++ {
		bg := string(b[i : i+2])
		if bigrams[bg] > 0 {
			bigrams[bg]--
			intersection++
		}
	}

	return 2 * float64(intersection) / float64(len(a)+len(b)-2)
}

func stripSpaces(s string) string {
	return strings.Join(strings.Fields(s), "")
}
