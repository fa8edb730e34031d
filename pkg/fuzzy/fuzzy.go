package fuzzy

import (
	"strings"
)

// Distance calculates the edit distance between two strings: the number of
// single-character insertions, deletions and substitutions needed to turn
// one into the other.
func Distance(s1, s2 string) int {
	s1 = normalize(s1)
	s2 = normalize(s2)

	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	d := make([][]int, m+1)
	for i := range d {
		d[i] = make([]int, n+1)
	}
	for i := 0; i <= m; i++ {
		d[i][0] = i
	}
	for j := 0; j <= n; j++ {
		d[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			d[i][j] = min3(
				d[i-1][j]+1,
				d[i][j-1]+1,
				d[i-1][j-1]+cost,
			)
		}
	}
	return d[m][n]
}

// Match checks whether query fuzzy-matches text within the given maximum
// edit distance. Containment and word-prefix matches count regardless of
// distance.
func Match(query, text string, threshold int) bool {
	query = normalize(query)
	text = normalize(text)
	if query == "" || text == "" {
		return false
	}

	if strings.Contains(text, query) {
		return true
	}

	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, query) {
			return true
		}
		if Distance(query, word) <= threshold {
			return true
		}
	}
	return false
}

// Threshold picks a typo tolerance appropriate for the query length.
func Threshold(query string) int {
	switch {
	case len(query) <= 3:
		return 1
	case len(query) >= 8:
		return 3
	default:
		return 2
	}
}

// ScoreMessage scores how relevant an ingested message is to a search query.
// Subject hits outrank company hits outrank sender hits outrank snippet
// hits. Zero means no match.
func ScoreMessage(query, subject, company, from, snippet string) float64 {
	query = normalize(query)
	if query == "" {
		return 0
	}
	threshold := Threshold(query)
	score := 0.0

	if strings.Contains(normalize(subject), query) {
		score += 100
	} else if Match(query, subject, threshold) {
		score += 60
	}

	if strings.Contains(normalize(company), query) {
		score += 80
	} else if Match(query, company, threshold) {
		score += 45
	}

	if strings.Contains(normalize(from), query) {
		score += 50
	} else if Match(query, from, threshold) {
		score += 25
	}

	// Snippet is the weakest signal; bound it so long bodies cannot swamp
	// a subject hit.
	if Match(query, clip(snippet, 500), threshold) {
		score += 20
	}

	return score
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func clip(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
