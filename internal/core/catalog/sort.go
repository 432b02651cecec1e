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

package catalog

import (
	"cmp"
	"strings"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// comparator builds the ordering used by Search. A missing value compares
// greater than any present one, so it lands last ascending and first
// descending. Equal keys compare as 0 and keep their input order under a
// stable sort.
func comparator(key model.SortKey, order model.SortOrder) func(a, b *model.Movie) int {
	ascending := compareAscending(key)
	if order == model.Descending {
		return func(a, b *model.Movie) int { return -ascending(a, b) }
	}
	return ascending
}

func compareAscending(key model.SortKey) func(a, b *model.Movie) int {
	switch key {
	case model.SortByReleaseYear:
		return func(a, b *model.Movie) int { return compareOptional(a.ReleaseYear, b.ReleaseYear) }
	case model.SortByRating:
		return func(a, b *model.Movie) int { return compareOptional(a.Rating, b.Rating) }
	case model.SortByDuration:
		return func(a, b *model.Movie) int { return compareOptional(a.Duration, b.Duration) }
	case model.SortByCreateDate:
		return func(a, b *model.Movie) int {
			switch az, bz := a.CreateDate.IsZero(), b.CreateDate.IsZero(); {
			case az && bz:
				return 0
			case az:
				return 1
			case bz:
				return -1
			}
			return a.CreateDate.Compare(b.CreateDate)
		}
	default:
		return func(a, b *model.Movie) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	}
}

func compareOptional[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*a, *b)
}
