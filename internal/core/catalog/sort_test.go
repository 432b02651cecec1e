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

package catalog_test

import (
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/catalog"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func sortedBy(key model.SortKey, order model.SortOrder) model.FilterSpec {
	spec := model.DefaultFilterSpec(now)
	spec.SortBy = key
	spec.SortOrder = order
	return spec
}

func TestSortMissingValuesPlacement(t *testing.T) {
	old := movie("old", "Old")
	old.Rating = model.Ptr(3.0)
	high := movie("high", "High")
	high.Rating = model.Ptr(9.5)
	unrated := movie("unrated", "Unrated")
	collection := []*model.Movie{unrated, high, old}

	asc := catalog.Search(collection, "", sortedBy(model.SortByRating, model.Ascending))
	assert.Equal(t, []string{"old", "high", "unrated"}, ids(asc))

	desc := catalog.Search(collection, "", sortedBy(model.SortByRating, model.Descending))
	assert.Equal(t, []string{"unrated", "high", "old"}, ids(desc))
}

func TestSortTitleIgnoresCase(t *testing.T) {
	collection := []*model.Movie{movie("b", "banana"), movie("a", "Apple"), movie("c", "cherry")}

	out := catalog.Search(collection, "", sortedBy(model.SortByTitle, model.Ascending))
	assert.Equal(t, []string{"a", "b", "c"}, ids(out))

	out = catalog.Search(collection, "", sortedBy(model.SortByTitle, model.Descending))
	assert.Equal(t, []string{"c", "b", "a"}, ids(out))
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	first := movie("first", "Same")
	first.ReleaseYear = model.Ptr(2010)
	second := movie("second", "same")
	second.ReleaseYear = model.Ptr(2010)
	third := movie("third", "SAME")
	third.ReleaseYear = model.Ptr(2010)
	collection := []*model.Movie{first, second, third}

	for _, order := range []model.SortOrder{model.Ascending, model.Descending} {
		for _, key := range []model.SortKey{model.SortByTitle, model.SortByReleaseYear, model.SortByRating} {
			out := catalog.Search(collection, "", sortedBy(key, order))
			assert.Equal(t, []string{"first", "second", "third"}, ids(out), "%s %s", key, order)
		}
	}
}

func TestSortByDurationAndCreateDate(t *testing.T) {
	short := movie("short", "Short")
	short.Duration = model.Ptr(80)
	short.CreateDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	long := movie("long", "Long")
	long.Duration = model.Ptr(180)
	long.CreateDate = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	undated := movie("undated", "Undated")
	collection := []*model.Movie{long, undated, short}

	out := catalog.Search(collection, "", sortedBy(model.SortByDuration, model.Ascending))
	assert.Equal(t, []string{"short", "long", "undated"}, ids(out))

	out = catalog.Search(collection, "", sortedBy(model.SortByCreateDate, model.Descending))
	assert.Equal(t, []string{"undated", "long", "short"}, ids(out))
}
