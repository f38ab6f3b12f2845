package colour

import "strings"

// NameCount is a colour name with its pixel coverage.
type NameCount struct {
	Name   string  `json:"name"`
	Pixels int     `json:"pixels"`
	Share  float64 `json:"share"`
}

// before reports whether a ranks ahead of b: higher count first, then name ascending.
func before(a, b NameCount) bool {
	if a.Pixels != b.Pixels {
		return a.Pixels > b.Pixels
	}
	return a.Name < b.Name
}

// RankCounts returns up to n entries of counts ordered by descending pixel count,
// with names in exclude removed first. Ties are broken alphabetically by name.
// Exclusions match case-insensitively. Zero counts are never ranked.
func RankCounts(counts map[string]int, exclude []string, n int) []NameCount {
	if n <= 0 {
		return []NameCount{}
	}

	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[strings.ToLower(e)] = true
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	// Sorted buffer of at most n entries. Each candidate is inserted at its
	// position and anything pushed past n falls off the end.
	top := make([]NameCount, 0, n)
	for name, c := range counts {
		if c <= 0 || skip[strings.ToLower(name)] {
			continue
		}
		cand := NameCount{Name: name, Pixels: c}
		if len(top) == n && !before(cand, top[n-1]) {
			continue
		}

		pos := len(top)
		for pos > 0 && before(cand, top[pos-1]) {
			pos--
		}
		if len(top) < n {
			top = append(top, NameCount{})
		}
		copy(top[pos+1:], top[pos:len(top)-1])
		top[pos] = cand
	}

	for i := range top {
		top[i].Share = float64(top[i].Pixels) / float64(total)
	}
	return top
}

// Rank returns the names of the top n entries of counts, see RankCounts.
func Rank(counts map[string]int, exclude []string, n int) []string {
	ranked := RankCounts(counts, exclude, n)
	names := make([]string, len(ranked))
	for i, r := range ranked {
		names[i] = r.Name
	}
	return names
}
