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

// Package model defines the core data structures for the storefront.
// This file, `transient.go`, contains the values that only ever live in
// memory: the filter specification a viewer browses with, the aggregate
// result of a bulk upload and the read-only shapes returned by the admin
// dashboard. None of these are persisted in their current form.
package model

import "time"

// These objects are used in memory by the engine and the API, but are not persisted to the dataset

// AllGenres is the genre sentinel that disables the genre predicate.
const AllGenres = "all"

// Full-range defaults for the narrowing dimensions of a FilterSpec.
const (
	MinReleaseYear = 1900
	MinRating      = 0.0
	MaxRating      = 10.0
	MinDuration    = 0
	MaxDuration    = 300
)

// SortKey names the attribute a result list is ordered by.
type SortKey string

const (
	SortByTitle       SortKey = "title"
	SortByReleaseYear SortKey = "release_year"
	SortByRating      SortKey = "rating"
	SortByDuration    SortKey = "duration"
	SortByCreateDate  SortKey = "created_at"
)

// ParseSortKey converts a query parameter into a SortKey.
func ParseSortKey(in string) (SortKey, bool) {
	switch k := SortKey(in); k {
	case SortByTitle, SortByReleaseYear, SortByRating, SortByDuration, SortByCreateDate:
		return k, true
	}
	return "", false
}

// SortOrder is the direction of a sort.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ParseSortOrder converts a query parameter into a SortOrder.
func ParseSortOrder(in string) (SortOrder, bool) {
	switch o := SortOrder(in); o {
	case Ascending, Descending:
		return o, true
	}
	return "", false
}

// Range is an inclusive [Min, Max] bound.
type Range[T int | float64] struct {
	Min T `json:"min"`
	Max T `json:"max"`
}

// Contains reports whether v lies inside the inclusive bound. An inverted
// range (Min > Max) contains nothing.
func (r Range[T]) Contains(v T) bool {
	return v >= r.Min && v <= r.Max
}

// Limits are the full-range defaults of every narrowing dimension. A
// dimension whose bound equals its limit is inactive.
type Limits struct {
	ReleaseYear Range[int]     `json:"release_year"`
	Rating      Range[float64] `json:"rating"`
	Duration    Range[int]     `json:"duration"`
}

// DefaultLimits returns the limits in effect at the given instant; the
// release-year ceiling follows the current calendar year.
func DefaultLimits(now time.Time) Limits {
	return Limits{
		ReleaseYear: Range[int]{Min: MinReleaseYear, Max: now.Year()},
		Rating:      Range[float64]{Min: MinRating, Max: MaxRating},
		Duration:    Range[int]{Min: MinDuration, Max: MaxDuration},
	}
}

// FilterSpec bundles all narrowing and sorting criteria for one browse or
// search operation. The zero value filters nothing and sorts by title.
type FilterSpec struct {
	Genre       string         `json:"genre"`
	ReleaseYear Range[int]     `json:"release_year"`
	Rating      Range[float64] `json:"rating"`
	Duration    Range[int]     `json:"duration"`
	// Quality is collected from viewers but no stored attribute describes
	// streaming qualities, so it never narrows a result.
	Quality   []string  `json:"quality,omitempty"`
	SortBy    SortKey   `json:"sort_by"`
	SortOrder SortOrder `json:"sort_order"`
	Limits    Limits    `json:"-"`
}

// DefaultFilterSpec returns a spec with every dimension at its full range,
// sorted by title ascending.
func DefaultFilterSpec(now time.Time) FilterSpec {
	limits := DefaultLimits(now)
	return FilterSpec{
		Genre:       AllGenres,
		ReleaseYear: limits.ReleaseYear,
		Rating:      limits.Rating,
		Duration:    limits.Duration,
		Quality:     make([]string, 0),
		SortBy:      SortByTitle,
		SortOrder:   Ascending,
		Limits:      limits,
	}
}

// GenreActive reports whether the genre predicate applies.
func (f FilterSpec) GenreActive() bool {
	return f.Genre != "" && f.Genre != AllGenres
}

// ReleaseYearActive reports whether the release-year bound differs from its default.
func (f FilterSpec) ReleaseYearActive() bool {
	return f.ReleaseYear != f.Limits.ReleaseYear
}

// RatingActive reports whether the rating bound differs from its default.
func (f FilterSpec) RatingActive() bool {
	return f.Rating != f.Limits.Rating
}

// DurationActive reports whether the duration bound differs from its default.
func (f FilterSpec) DurationActive() bool {
	return f.Duration != f.Limits.Duration
}

// BulkResult is the aggregate outcome of a bulk upload. Errors holds one
// human readable reason per failed record, in input order.
type BulkResult struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
	Ids     []string `json:"ids"`
}

// AnalyticsStats is the per-action event count shown on the admin dashboard.
type AnalyticsStats struct {
	TotalViews     int64 `json:"total_views"`
	TotalDownloads int64 `json:"total_downloads"`
	TotalStreams   int64 `json:"total_streams"`
	TotalSearches  int64 `json:"total_searches"`
}

// Add folds a count for one action into the totals.
func (s *AnalyticsStats) Add(action Action, count int64) {
	switch action {
	case ActionView:
		s.TotalViews += count
	case ActionDownload:
		s.TotalDownloads += count
	case ActionStream:
		s.TotalStreams += count
	case ActionSearch:
		s.TotalSearches += count
	}
}

// DownloadOption describes one quality a movie can be downloaded in.
type DownloadOption struct {
	Quality     string `json:"quality"`
	Size        string `json:"size"`
	Format      string `json:"format"`
	Description string `json:"description"`
	Recommended bool   `json:"recommended,omitempty"`
}

// PlaybackLink is a time limited URL handed to a player or download manager.
type PlaybackLink struct {
	Url       string     `json:"url"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}
