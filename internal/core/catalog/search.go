// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package catalog derives display lists from an in-memory snapshot of the
// movie collection. Every function here is pure: the same movies, query and
// filter specification always produce the same ordered output, the input
// slice is never modified and nothing can fail.
//
// Logic Flow:
//  1. Text matching keeps a movie when the trimmed, lower-cased query is a
//     substring of its title, genre, director, description or any cast member.
//  2. Each active dimension of the FilterSpec narrows the result (AND).
//     A narrowed range excludes movies that have no value for it.
//  3. The survivors are stably sorted by a single key.
package catalog

import (
	"slices"
	"strings"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// Search returns the movies matching query and every active dimension of
// spec, ordered by spec.SortBy and spec.SortOrder.
func Search(movies []*model.Movie, query string, spec model.FilterSpec) []*model.Movie {
	needle := normalizeQuery(query)
	out := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if m == nil {
			continue
		}
		if needle != "" && !matchesText(m, needle) {
			continue
		}
		if !passesFilters(m, spec) {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, comparator(spec.SortBy, spec.SortOrder))
	return out
}

// Matches reports whether a single movie satisfies the text predicate for query.
// An empty query matches everything.
func Matches(m *model.Movie, query string) bool {
	needle := normalizeQuery(query)
	return needle == "" || matchesText(m, needle)
}

// Genres returns the distinct genres present in movies, sorted.
func Genres(movies []*model.Movie) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range movies {
		if m == nil || m.Genre == "" {
			continue
		}
		if _, ok := seen[m.Genre]; ok {
			continue
		}
		seen[m.Genre] = struct{}{}
		out = append(out, m.Genre)
	}
	slices.Sort(out)
	return out
}

// normalizeQuery lower-cases the query and trims surrounding whitespace, so
// padding typed around a term never has to appear in a field. Inner spaces
// are kept.
func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func contains(field string, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func matchesText(m *model.Movie, needle string) bool {
	if contains(m.Title, needle) || contains(m.Genre, needle) {
		return true
	}
	if m.Director != nil && contains(*m.Director, needle) {
		return true
	}
	if m.Description != nil && contains(*m.Description, needle) {
		return true
	}
	for _, member := range m.Cast {
		if contains(member, needle) {
			return true
		}
	}
	return false
}

func passesFilters(m *model.Movie, spec model.FilterSpec) bool {
	if spec.GenreActive() && m.Genre != spec.Genre {
		return false
	}
	if spec.ReleaseYearActive() && (m.ReleaseYear == nil || !spec.ReleaseYear.Contains(*m.ReleaseYear)) {
		return false
	}
	if spec.RatingActive() && (m.Rating == nil || !spec.Rating.Contains(*m.Rating)) {
		return false
	}
	if spec.DurationActive() && (m.Duration == nil || !spec.Duration.Contains(*m.Duration)) {
		return false
	}
	// Quality is accepted but not matched; no stored field carries it.
	return true
}
