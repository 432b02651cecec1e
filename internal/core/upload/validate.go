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

// Package upload turns loosely-typed movie submissions into validated
// model.Movie records and hands them to the repository. It owns the two
// ways a movie enters the catalog: the ordinary single submission, which
// waits for moderation, and the administrator bulk import, which is
// approved on arrival.
package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// Submission is one decoded JSON movie object as received from a form post,
// an admin request body or a bulk batch file.
type Submission map[string]any

// Title returns the submitted title when it is a non-blank string.
func (s Submission) Title() (string, bool) {
	v, ok := s["title"].(string)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// DecodeSubmissions parses a JSON array of movie objects. Numbers are kept
// as json.Number so years and durations are not rounded through float64.
func DecodeSubmissions(data []byte) ([]Submission, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	subs := make([]Submission, 0)
	if err := decoder.Decode(&subs); err != nil {
		return nil, fmt.Errorf("expected a JSON array of movies: %w", err)
	}
	return subs, nil
}

// ValidationError describes a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidationErrors collects every field failure for one submission.
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// Add records a failure for field.
func (v *ValidationErrors) Add(field string, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message})
}

// HasErrors reports whether any failure has been collected.
func (v *ValidationErrors) HasErrors() bool { return len(v.Errors) > 0 }

// Error joins the failure messages with commas, in the order they were found.
func (v *ValidationErrors) Error() string {
	parts := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		parts[i] = e.Message
	}
	return strings.Join(parts, ", ")
}

// Field names accepted in a Submission.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldGenre       = "genre"
	FieldDirector    = "director"
	FieldCast        = "cast"
	FieldLegacyCast  = "movie_cast"
	FieldReleaseYear = "release_year"
	FieldDuration    = "duration"
	FieldRating      = "rating"
	FieldPosterUrl   = "poster_url"
	FieldTrailerUrl  = "trailer_url"
	FieldVideoUrl    = "video_url"
	FieldDownloadUrl = "download_url"
	FieldFeatured    = "featured"
	FieldPopular     = "popular"
	FieldLatest      = "latest"
)

// ReleaseYearLookahead is how many years past the current one a release may be announced.
const ReleaseYearLookahead = 5

// Validator checks submissions against the catalog rules. Now supplies the
// clock used for the release-year ceiling; a nil Now means time.Now.
type Validator struct {
	Now func() time.Time
}

func (v Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

// Validate converts sub into a movie with every mutable attribute populated.
// Store owned fields (identifier, status and timestamps) are left for the
// caller. When any rule fails the returned error is a *ValidationErrors
// listing every failure.
//
// Inputs:
//   - sub: the decoded submission.
//
// Outputs:
//   - *model.Movie: the validated movie, nil on failure.
//   - error: nil or *ValidationErrors.
func (v Validator) Validate(sub Submission) (*model.Movie, error) {
	errs := &ValidationErrors{}
	movie := &model.Movie{Cast: make([]string, 0)}

	if title, ok := sub.Title(); ok {
		movie.Title = title
	} else {
		errs.Add(FieldTitle, "Title is required and must be a string")
	}
	if genre, ok := sub[FieldGenre].(string); ok && strings.TrimSpace(genre) != "" {
		movie.Genre = strings.TrimSpace(genre)
	} else {
		errs.Add(FieldGenre, "Genre is required and must be a string")
	}

	maxYear := v.now().Year() + ReleaseYearLookahead
	if raw, present := sub.value(FieldReleaseYear); present {
		year, ok := asInt(raw)
		if !ok || year < model.MinReleaseYear || year > maxYear {
			errs.Add(FieldReleaseYear, fmt.Sprintf("Release year must be a valid number between %d and %d", model.MinReleaseYear, maxYear))
		} else {
			movie.ReleaseYear = &year
		}
	}
	if raw, present := sub.value(FieldDuration); present {
		duration, ok := asInt(raw)
		if !ok || duration <= 0 {
			errs.Add(FieldDuration, "Duration must be a positive number")
		} else {
			movie.Duration = &duration
		}
	}
	if raw, present := sub.value(FieldRating); present {
		rating, ok := asFloat(raw)
		if !ok || rating < model.MinRating || rating > model.MaxRating {
			errs.Add(FieldRating, fmt.Sprintf("Rating must be a number between %g and %g", model.MinRating, model.MaxRating))
		} else {
			movie.Rating = &rating
		}
	}

	castField := FieldCast
	raw, present := sub.value(FieldCast)
	if !present {
		castField = FieldLegacyCast
		raw, present = sub.value(FieldLegacyCast)
	}
	if present {
		cast, ok := asCast(raw)
		if !ok {
			errs.Add(castField, "Movie cast must be an array of strings")
		} else {
			movie.Cast = cast
		}
	}

	movie.Description = optionalText(sub, FieldDescription, errs)
	movie.Director = optionalText(sub, FieldDirector, errs)
	movie.PosterUrl = optionalUrl(sub, FieldPosterUrl, errs)
	movie.TrailerUrl = optionalUrl(sub, FieldTrailerUrl, errs)
	movie.VideoUrl = optionalUrl(sub, FieldVideoUrl, errs)
	movie.DownloadUrl = optionalUrl(sub, FieldDownloadUrl, errs)
	movie.Featured = optionalFlag(sub, FieldFeatured, errs)
	movie.Popular = optionalFlag(sub, FieldPopular, errs)
	movie.Latest = optionalFlag(sub, FieldLatest, errs)

	if errs.HasErrors() {
		return nil, errs
	}
	return movie, nil
}

// value returns the raw value for key; JSON null counts as absent.
func (s Submission) value(key string) (any, bool) {
	v, ok := s[key]
	return v, ok && v != nil
}

func asFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func asInt(raw any) (int, bool) {
	f, ok := asFloat(raw)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func asCast(raw any) ([]string, bool) {
	var items []any
	switch list := raw.(type) {
	case []any:
		items = list
	case []string:
		for _, s := range list {
			items = append(items, s)
		}
	default:
		return nil, false
	}
	cast := make([]string, 0, len(items))
	for _, item := range items {
		name, ok := item.(string)
		if !ok {
			return nil, false
		}
		if name = strings.TrimSpace(name); name != "" {
			cast = append(cast, name)
		}
	}
	return cast, true
}

func optionalText(sub Submission, field string, errs *ValidationErrors) *string {
	raw, present := sub.value(field)
	if !present {
		return nil
	}
	text, ok := raw.(string)
	if !ok {
		errs.Add(field, fmt.Sprintf("%s must be a string", label(field)))
		return nil
	}
	if text = strings.TrimSpace(text); text == "" {
		return nil
	}
	return &text
}

func optionalUrl(sub Submission, field string, errs *ValidationErrors) *string {
	text := optionalText(sub, field, errs)
	if text == nil {
		return nil
	}
	u, err := url.ParseRequestURI(*text)
	valid := err == nil && u.Host != "" && (u.Scheme == "http" || u.Scheme == "https" || u.Scheme == "gs")
	if !valid {
		errs.Add(field, fmt.Sprintf("%s must be a valid URL", label(field)))
		return nil
	}
	return text
}

func optionalFlag(sub Submission, field string, errs *ValidationErrors) bool {
	raw, present := sub.value(field)
	if !present {
		return false
	}
	flag, ok := raw.(bool)
	if !ok {
		errs.Add(field, fmt.Sprintf("%s must be true or false", label(field)))
	}
	return flag
}

// label turns a field key like poster_url into "Poster url".
func label(field string) string {
	words := strings.ReplaceAll(field, "_", " ")
	return strings.ToUpper(words[:1]) + words[1:]
}
