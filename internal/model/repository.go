package model

import "strings"

// TimeLayout is the timestamp format used by the GitHub REST API.
const TimeLayout = "2006-01-02T15:04:05Z"

// Repository is a flat repository record as returned by the GitHub REST API.
type Repository struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	FullName        string  `json:"full_name"`
	Description     *string `json:"description"`
	Language        *string `json:"language"`
	StargazersCount int     `json:"stargazers_count"`
	WatchersCount   int     `json:"watchers_count"`
	ForksCount      int     `json:"forks_count"`
	UpdatedAt       string  `json:"updated_at"`
	PushedAt        string  `json:"pushed_at"`
	HTMLURL         string  `json:"html_url"`
	CloneURL        string  `json:"clone_url"`
}

// Owner returns the owner part of FullName.
func (r Repository) Owner() string {
	owner, _, found := strings.Cut(r.FullName, "/")
	if !found {
		return ""
	}
	return owner
}

// GetDescription returns the description or "" when unset.
func (r Repository) GetDescription() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

// GetLanguage returns the language or "" when unset.
func (r Repository) GetLanguage() string {
	if r.Language == nil {
		return ""
	}
	return *r.Language
}

// Summary is one row of the repository usage summary.
type Summary struct {
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	UpdatedAt   string  `json:"updated_at"`
	Stars       int     `json:"stars"`
	Language    *string `json:"language"`
	Description *string `json:"description"`
}
