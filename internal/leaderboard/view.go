package leaderboard

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Sort keys understood by Derive. Any other key leaves the order untouched.
const (
	SortByDate     = "date"
	SortByCategory = "category"
	SortByLeader   = "leader"
)

// SortKeys lists the sort keys offered in the UI, in cycling order.
var SortKeys = []string{SortByDate, SortByCategory, SortByLeader}

// NextSortKey returns the key after cur in SortKeys, wrapping around.
func NextSortKey(cur string) string {
	i := slices.Index(SortKeys, cur)
	return SortKeys[(i+1)%len(SortKeys)]
}

// Query selects a derived view. The zero Query keeps every entry in storage order.
type Query struct {
	Category string
	Search   string
	SortBy   string
}

// Derive filters by category, then by search text, then sorts. The input is not modified.
func Derive(entries []Entry, q Query) []Entry {
	needle := strings.ToLower(q.Search)
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if q.Category != "" && e.Category != q.Category {
			continue
		}
		if !matchesSearch(e, needle) {
			continue
		}
		out = append(out, e)
	}

	switch q.SortBy {
	case SortByDate:
		slices.SortStableFunc(out, func(a, b Entry) int { return b.Date.Compare(a.Date) })
	case SortByCategory:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b Entry) int { return c.CompareString(a.Category, b.Category) })
	case SortByLeader:
		c := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b Entry) int { return c.CompareString(a.Leader, b.Leader) })
	}
	return out
}

func matchesSearch(e Entry, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Leader), needle) ||
		strings.Contains(strings.ToLower(e.RunnerUp), needle) ||
		strings.Contains(strings.ToLower(e.Notes), needle)
}

// Emphasis classifies how prominently a leader name is shown.
type Emphasis int

const (
	EmphasisNeutral Emphasis = iota
	EmphasisModerate
	EmphasisStrong
)

func (e Emphasis) String() string {
	switch e {
	case EmphasisModerate:
		return "moderate"
	case EmphasisStrong:
		return "strong"
	default:
		return "neutral"
	}
}

// Highlight counts exact leader matches across all entries, unfiltered.
// More than three is strong, two or three is moderate.
func Highlight(entries []Entry, leader string) Emphasis {
	if leader == "" {
		return EmphasisNeutral
	}
	n := 0
	for _, e := range entries {
		if e.Leader == leader {
			n++
		}
	}
	return EmphasisFor(n)
}

// LeaderCounts tallies leader names for rendering many rows without rescanning.
func LeaderCounts(entries []Entry) map[string]int {
	out := make(map[string]int)
	for _, e := range entries {
		if e.Leader != "" {
			out[e.Leader]++
		}
	}
	return out
}

// EmphasisFor classifies a count produced by LeaderCounts.
func EmphasisFor(count int) Emphasis {
	switch {
	case count > 3:
		return EmphasisStrong
	case count > 1:
		return EmphasisModerate
	default:
		return EmphasisNeutral
	}
}
