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
package upload_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
	"github.com/stretchr/testify/assert"
)

var fixedNow = func() time.Time { return time.Date(2024, 10, 11, 0, 0, 0, 0, time.UTC) }

func validator() upload.Validator {
	return upload.Validator{Now: fixedNow}
}

func messages(t *testing.T, err error) []string {
	t.Helper()
	var verrs *upload.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected *ValidationErrors, got %v", err)
	}
	out := make([]string, 0, len(verrs.Errors))
	for _, e := range verrs.Errors {
		out = append(out, e.Message)
	}
	return out
}

func TestValidateMinimal(t *testing.T) {
	movie, err := validator().Validate(upload.Submission{"title": "  Heat ", "genre": "Crime"})
	assert.NoError(t, err)
	assert.Equal(t, "Heat", movie.Title)
	assert.Equal(t, "Crime", movie.Genre)
	assert.Nil(t, movie.ReleaseYear)
	assert.Nil(t, movie.Rating)
	assert.Empty(t, movie.Cast)
	assert.False(t, movie.Featured)
}

func TestValidateFullRecord(t *testing.T) {
	sub := upload.Submission{
		"title":        "The Matrix",
		"genre":        "Sci-Fi",
		"description":  "A hacker learns the truth.",
		"director":     "The Wachowskis",
		"cast":         []any{"Keanu Reeves", " ", "Carrie-Anne Moss"},
		"release_year": json.Number("1999"),
		"duration":     136.0,
		"rating":       8.7,
		"poster_url":   "https://img.example/matrix.jpg",
		"video_url":    "gs://movies/matrix.mp4",
		"featured":     true,
		"latest":       nil,
	}
	movie, err := validator().Validate(sub)
	assert.NoError(t, err)
	assert.Equal(t, 1999, *movie.ReleaseYear)
	assert.Equal(t, 136, *movie.Duration)
	assert.Equal(t, 8.7, *movie.Rating)
	assert.Equal(t, []string{"Keanu Reeves", "Carrie-Anne Moss"}, movie.Cast)
	assert.Equal(t, "The Wachowskis", *movie.Director)
	assert.Equal(t, "gs://movies/matrix.mp4", *movie.VideoUrl)
	assert.Nil(t, movie.TrailerUrl)
	assert.True(t, movie.Featured)
	assert.False(t, movie.Latest)
}

func TestValidateRequiredFields(t *testing.T) {
	_, err := validator().Validate(upload.Submission{"title": 42, "genre": " "})
	assert.Equal(t, []string{
		"Title is required and must be a string",
		"Genre is required and must be a string",
	}, messages(t, err))
	assert.Equal(t, "Title is required and must be a string, Genre is required and must be a string", err.Error())
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   any
		message string
	}{
		{"year too early", "release_year", 1899, "Release year must be a valid number between 1900 and 2029"},
		{"year too late", "release_year", 2030, "Release year must be a valid number between 1900 and 2029"},
		{"year fractional", "release_year", 1999.5, "Release year must be a valid number between 1900 and 2029"},
		{"year text", "release_year", "1999", "Release year must be a valid number between 1900 and 2029"},
		{"duration zero", "duration", 0, "Duration must be a positive number"},
		{"duration negative", "duration", -90, "Duration must be a positive number"},
		{"rating high", "rating", 10.5, "Rating must be a number between 0 and 10"},
		{"rating negative", "rating", -1, "Rating must be a number between 0 and 10"},
		{"cast not list", "cast", "Keanu Reeves", "Movie cast must be an array of strings"},
		{"cast mixed", "cast", []any{"Keanu Reeves", 7}, "Movie cast must be an array of strings"},
		{"legacy cast", "movie_cast", 7, "Movie cast must be an array of strings"},
		{"director", "director", 7, "Director must be a string"},
		{"poster url", "poster_url", "not a url", "Poster url must be a valid URL"},
		{"ftp url", "video_url", "ftp://host/file.mp4", "Video url must be a valid URL"},
		{"flag", "popular", "yes", "Popular must be true or false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := upload.Submission{"title": "T", "genre": "G", tt.field: tt.value}
			_, err := validator().Validate(sub)
			assert.Equal(t, []string{tt.message}, messages(t, err))
		})
	}
}

func TestValidateBoundaries(t *testing.T) {
	sub := upload.Submission{"title": "T", "genre": "G", "release_year": 2029, "rating": 0, "duration": 1}
	movie, err := validator().Validate(sub)
	assert.NoError(t, err)
	assert.Equal(t, 2029, *movie.ReleaseYear)
	assert.Equal(t, 0.0, *movie.Rating)

	sub = upload.Submission{"title": "T", "genre": "G", "release_year": 1900, "rating": 10}
	_, err = validator().Validate(sub)
	assert.NoError(t, err)
}

func TestValidateLegacyCast(t *testing.T) {
	movie, err := validator().Validate(upload.Submission{"title": "T", "genre": "G", "movie_cast": []string{"A", "B"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, movie.Cast)
}

func TestValidateCollectsEveryFailure(t *testing.T) {
	_, err := validator().Validate(upload.Submission{"rating": 11, "duration": -1})
	assert.Len(t, messages(t, err), 4)
}
