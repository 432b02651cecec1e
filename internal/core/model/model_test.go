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

package model_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestNewMovie(t *testing.T) {
	movie := model.NewMovie()

	_, err := uuid.Parse(movie.Id)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, movie.Status)
	assert.WithinDuration(t, time.Now(), movie.CreateDate, time.Second)
	assert.Equal(t, movie.CreateDate, movie.UpdateDate)
	assert.Equal(t, 0, len(movie.Cast))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, model.StatusPending.CanTransitionTo(model.StatusApproved))
	assert.True(t, model.StatusPending.CanTransitionTo(model.StatusRejected))
	assert.False(t, model.StatusPending.CanTransitionTo(model.StatusPending))
	assert.False(t, model.StatusApproved.CanTransitionTo(model.StatusRejected))
	assert.False(t, model.StatusRejected.CanTransitionTo(model.StatusApproved))
	assert.False(t, model.Status("archived").Valid())
}

func TestReplaceMutableKeepsIdentityAndStatus(t *testing.T) {
	movie := model.NewMovie()
	movie.Title = "Before"
	movie.Status = model.StatusApproved
	created := movie.CreateDate

	movie.ReplaceMutable(&model.Movie{
		Id:       "other",
		Title:    "After",
		Genre:    "Drama",
		Cast:     []string{"A"},
		Status:   model.StatusRejected,
		Featured: true,
	})

	assert.NotEqual(t, "other", movie.Id)
	assert.Equal(t, "After", movie.Title)
	assert.Equal(t, "Drama", movie.Genre)
	assert.Equal(t, []string{"A"}, movie.Cast)
	assert.True(t, movie.Featured)
	assert.Equal(t, model.StatusApproved, movie.Status)
	assert.Equal(t, created, movie.CreateDate)
}

func TestDefaultFilterSpecIsInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	spec := model.DefaultFilterSpec(now)

	assert.Equal(t, 2026, spec.ReleaseYear.Max)
	assert.False(t, spec.GenreActive())
	assert.False(t, spec.ReleaseYearActive())
	assert.False(t, spec.RatingActive())
	assert.False(t, spec.DurationActive())

	spec.Rating = model.Range[float64]{Min: 5, Max: 10}
	assert.True(t, spec.RatingActive())

	var zero model.FilterSpec
	assert.False(t, zero.GenreActive())
	assert.False(t, zero.ReleaseYearActive())
}

func TestRangeContains(t *testing.T) {
	r := model.Range[int]{Min: 1990, Max: 2000}
	assert.True(t, r.Contains(1990))
	assert.True(t, r.Contains(2000))
	assert.False(t, r.Contains(2001))

	inverted := model.Range[float64]{Min: 8, Max: 2}
	assert.False(t, inverted.Contains(5))
}

func TestAnalyticsStatsAdd(t *testing.T) {
	var stats model.AnalyticsStats
	stats.Add(model.ActionView, 3)
	stats.Add(model.ActionSearch, 2)
	stats.Add(model.Action("unknown"), 9)

	assert.Equal(t, int64(3), stats.TotalViews)
	assert.Equal(t, int64(2), stats.TotalSearches)
	assert.Equal(t, int64(0), stats.TotalDownloads)
}
