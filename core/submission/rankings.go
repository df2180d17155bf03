package submission

import (
	"sort"
	"strings"
)

// Filter narrows subs down to those matching f (conjunctive: search AND
// class) and sorts by f.SortBy. The input slice is not modified.
func Filter(subs []Submission, f QueryFilter) []Submission {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	class := strings.TrimSpace(f.Class)

	result := make([]Submission, 0, len(subs))
	for _, sub := range subs {
		if term != "" && !matchesSearch(sub, term) {
			continue
		}
		if class != "" && strings.TrimSpace(sub.Class) != class {
			continue
		}
		result = append(result, sub)
	}

	switch f.SortBy {
	case SortOldest:
		sort.SliceStable(result, func(i, j int) bool { return result[i].SubmittedAt.Before(result[j].SubmittedAt) })
	case SortNameAsc:
		sort.SliceStable(result, func(i, j int) bool {
			return strings.ToLower(result[i].StudentName) < strings.ToLower(result[j].StudentName)
		})
	default: // newest
		sort.SliceStable(result, func(i, j int) bool { return result[i].SubmittedAt.After(result[j].SubmittedAt) })
	}
	return result
}

func matchesSearch(sub Submission, term string) bool {
	return strings.Contains(strings.ToLower(sub.StudentName), term) ||
		strings.Contains(strings.ToLower(sub.Class), term) ||
		strings.Contains(strings.ToLower(sub.RollNumber), term) ||
		strings.Contains(strings.ToLower(sub.VideoTitle), term)
}

// Stats summarizes the scores of a ranked set. All three are zero on an
// empty set; a degenerate but defined case.
type Stats struct {
	Avg float64 `json:"avg"`
	Max int     `json:"max"`
	Min int     `json:"min"`
}

// Rank restricts subs to graded records (optionally to one class), sorts by
// score descending with earlier SubmittedAt breaking ties, and computes
// mean/max/min over the ranked set.
func Rank(subs []Submission, class string) ([]Submission, Stats) {
	ranked := make([]Submission, 0, len(subs))
	for _, sub := range subs {
		if !sub.Graded() {
			continue
		}
		if class != "" && sub.Class != class {
			continue
		}
		ranked = append(ranked, sub)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if *ranked[i].Score != *ranked[j].Score {
			return *ranked[i].Score > *ranked[j].Score
		}
		return ranked[i].SubmittedAt.Before(ranked[j].SubmittedAt)
	})

	var stats Stats
	if len(ranked) == 0 {
		return ranked, stats
	}
	var sum int
	stats.Max = *ranked[0].Score
	stats.Min = *ranked[0].Score
	for _, sub := range ranked {
		score := *sub.Score
		sum += score
		if score > stats.Max {
			stats.Max = score
		}
		if score < stats.Min {
			stats.Min = score
		}
	}
	stats.Avg = float64(sum) / float64(len(ranked))
	return ranked, stats
}
