package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stahnma/gh-shelf/internal/model"
	"github.com/stahnma/gh-shelf/internal/search"
)

// WriteJSON writes v to w as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(output))
	return err
}

// WriteRepos writes one line per repository, highlighting query in the name
// and description.
func WriteRepos(w io.Writer, repos []model.Repository, query string) error {
	for _, r := range repos {
		line := fmt.Sprintf("%-40s ★%-6d %-12s %s",
			search.Highlight(r.FullName, query),
			r.StargazersCount,
			r.GetLanguage(),
			search.Highlight(oneLine(r.GetDescription()), query),
		)
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%d repositories\n", len(repos))
	return err
}

// WriteSummary writes the usage summary rows.
func WriteSummary(w io.Writer, rows []model.Summary) error {
	for i, s := range rows {
		lang := ""
		if s.Language != nil {
			lang = *s.Language
		}
		if _, err := fmt.Fprintf(w, "%2d. %-40s ★%-6d %-12s updated %s\n", i+1, s.FullName, s.Stars, lang, s.UpdatedAt); err != nil {
			return err
		}
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
