package search

import (
	"fmt"
	"strings"

	"github.com/stahnma/gh-shelf/internal/model"
)

// Field selects which repository fields a query is matched against.
type Field string

const (
	FieldAll         Field = "all"
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldLanguage    Field = "language"
)

// Fields lists the accepted field selectors.
var Fields = []Field{FieldAll, FieldName, FieldDescription, FieldLanguage}

// ParseField converts a user supplied selector into a Field. An empty string
// selects all fields.
func ParseField(s string) (Field, error) {
	if s == "" {
		return FieldAll, nil
	}
	f := Field(strings.ToLower(s))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown search field %q (want one of all, name, description, language)", s)
}

func (f Field) values(r model.Repository) []*string {
	name := r.Name
	switch f {
	case FieldName:
		return []*string{&name}
	case FieldDescription:
		return []*string{r.Description}
	case FieldLanguage:
		return []*string{r.Language}
	default:
		return []*string{&name, r.Description, r.Language}
	}
}

// Filter returns the repositories matching query on the selected field.
// Matching is case-insensitive. Repositories with a field equal to the query
// come first, followed by repositories whose fields only contain the query;
// both groups keep their original relative order and every id is returned at
// most once. An empty query returns all repositories.
func Filter(repos []model.Repository, query string, field Field) []model.Repository {
	if query == "" {
		out := make([]model.Repository, len(repos))
		copy(out, repos)
		return out
	}
	query = strings.ToLower(query)

	exact := make(map[int64]bool)
	partial := make(map[int64]bool)
	for _, r := range repos {
		for _, v := range field.values(r) {
			if exactMatch(query, v) {
				exact[r.ID] = true
			} else if partialMatch(query, v) {
				partial[r.ID] = true
			}
		}
	}
	for id := range exact {
		delete(partial, id)
	}

	results := make([]model.Repository, 0, len(exact)+len(partial))
	emitted := make(map[int64]bool, len(exact)+len(partial))
	for _, set := range []map[int64]bool{exact, partial} {
		for _, r := range repos {
			if set[r.ID] && !emitted[r.ID] {
				emitted[r.ID] = true
				results = append(results, r)
			}
		}
	}
	return results
}

func exactMatch(query string, target *string) bool {
	if target == nil {
		return false
	}
	return query == strings.ToLower(*target)
}

func partialMatch(query string, target *string) bool {
	if target == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*target), query)
}

// Dedup keeps the first repository seen for each id.
func Dedup(repos []model.Repository) []model.Repository {
	seen := make(map[int64]bool, len(repos))
	unique := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		unique = append(unique, r)
	}
	return unique
}
