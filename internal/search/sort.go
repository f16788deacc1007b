package search

import (
	"sort"
	"time"

	"github.com/stahnma/gh-shelf/internal/model"
)

// DefaultSummarySize is the number of rows returned by Summarize when n <= 0.
const DefaultSummarySize = 10

func parseTime(s string) time.Time {
	t, err := time.Parse(model.TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// rankKey is the (-stars, -watchers, updated) tuple used to rank remote
// search results.
type rankKey struct {
	negStars    int
	negWatchers int
	updated     time.Time
}

func (k rankKey) greater(o rankKey) bool {
	if k.negStars != o.negStars {
		return k.negStars > o.negStars
	}
	if k.negWatchers != o.negWatchers {
		return k.negWatchers > o.negWatchers
	}
	return k.updated.After(o.updated)
}

// SortRanked orders remote search results by the tuple
// (-stargazers, -watchers, updated_at) reversed. The reversal is stable: equal
// tuples keep their input order. The resulting order puts the least starred
// repositories first and, on equal counts, the most recently updated first.
func SortRanked(repos []model.Repository) []model.Repository {
	type ranked struct {
		repo model.Repository
		key  rankKey
	}
	items := make([]ranked, 0, len(repos))
	for _, r := range repos {
		items = append(items, ranked{repo: r, key: rankKey{
			negStars:    -r.StargazersCount,
			negWatchers: -r.WatchersCount,
			updated:     parseTime(r.UpdatedAt),
		}})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key.greater(items[j].key)
	})

	out := make([]model.Repository, 0, len(items))
	for _, it := range items {
		out = append(out, it.repo)
	}
	return out
}

// Summarize returns the n most used repositories, ranked by last update,
// then stars, then last push, all descending. n <= 0 means DefaultSummarySize.
func Summarize(repos []model.Repository, n int) []model.Summary {
	if n <= 0 {
		n = DefaultSummarySize
	}
	sorted := make([]model.Repository, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		ta, tb := parseTime(a.UpdatedAt), parseTime(b.UpdatedAt)
		if !ta.Equal(tb) {
			return ta.After(tb)
		}
		if a.StargazersCount != b.StargazersCount {
			return a.StargazersCount > b.StargazersCount
		}
		return a.PushedAt > b.PushedAt
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	summary := make([]model.Summary, 0, len(sorted))
	for _, r := range sorted {
		summary = append(summary, model.Summary{
			Name:        r.Name,
			FullName:    r.FullName,
			UpdatedAt:   r.UpdatedAt,
			Stars:       r.StargazersCount,
			Language:    r.Language,
			Description: r.Description,
		})
	}
	return summary
}
