package chem

import (
	"fmt"
	"sort"
	"strings"
)

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// reducedFormula renders species counts as an empirical formula, dividing
// all counts by their greatest common divisor. Species appear in
// alphabetical order and unit counts are omitted, so {"H": 2} is "H2" and
// {"Al": 2, "O": 3} is "Al2O3".
func reducedFormula(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	divisor := 0
	for _, n := range counts {
		divisor = gcd(divisor, n)
	}
	species := make([]string, 0, len(counts))
	for sp := range counts {
		species = append(species, sp)
	}
	sort.Strings(species)

	var b strings.Builder
	for _, sp := range species {
		n := counts[sp] / divisor
		if n == 1 {
			b.WriteString(sp)
		} else {
			fmt.Fprintf(&b, "%s%d", sp, n)
		}
	}
	return b.String()
}
