package github

import (
	gh "github.com/google/go-github/v68/github"
	"github.com/stahnma/gh-shelf/internal/model"
)

// ToModel converts an API repository into the flat record used everywhere
// else. Unset timestamps become empty strings.
func ToModel(r *gh.Repository) model.Repository {
	return model.Repository{
		ID:              r.GetID(),
		Name:            r.GetName(),
		FullName:        r.GetFullName(),
		Description:     r.Description,
		Language:        r.Language,
		StargazersCount: r.GetStargazersCount(),
		WatchersCount:   r.GetWatchersCount(),
		ForksCount:      r.GetForksCount(),
		UpdatedAt:       formatTimestamp(r.UpdatedAt),
		PushedAt:        formatTimestamp(r.PushedAt),
		HTMLURL:         r.GetHTMLURL(),
		CloneURL:        r.GetCloneURL(),
	}
}

// ToModels converts a page of API repositories, skipping nil entries.
func ToModels(repos []*gh.Repository) []model.Repository {
	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if r == nil {
			continue
		}
		out = append(out, ToModel(r))
	}
	return out
}

func formatTimestamp(ts *gh.Timestamp) string {
	if ts == nil || ts.IsZero() {
		return ""
	}
	return ts.UTC().Format(model.TimeLayout)
}
