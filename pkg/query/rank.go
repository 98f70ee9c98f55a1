package query

import "github.com/sahilm/fuzzy"

// rankSource implements fuzzy.Source over item names.
type rankSource []Item

func (s rankSource) String(i int) string {
	return fold(s[i].Card.FullName())
}

func (s rankSource) Len() int {
	return len(s)
}

// Rank orders items by fuzzy match quality of pattern against the card name
// and drops items that do not match at all. An empty pattern keeps the input
// order.
func Rank(items []Item, pattern string) []Item {
	return rank(items, pattern, false)
}

// rank appends the unmatched items after the matches when keepRest is set,
// so rules text hits from Search are not lost.
func rank(items []Item, pattern string, keepRest bool) []Item {
	pattern = fold(pattern)
	if pattern == "" {
		return Sort(items, SortNone)
	}

	matches := fuzzy.FindFrom(pattern, rankSource(items))
	out := make([]Item, 0, len(items))
	matched := make(map[int]bool, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
		matched[m.Index] = true
	}
	if keepRest {
		for i, it := range items {
			if !matched[i] {
				out = append(out, it)
			}
		}
	}
	return out
}
