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

import "github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"

// MaxSuggestions is the number of type-ahead entries shown under the search box.
const MaxSuggestions = 6

// Suggest returns at most limit movies matching query, in collection order.
// It applies the same text predicate as Search and no range filtering. A
// blank query yields no suggestions; a non-positive limit falls back to
// MaxSuggestions.
func Suggest(movies []*model.Movie, query string, limit int) []*model.Movie {
	if limit <= 0 {
		limit = MaxSuggestions
	}
	needle := normalizeQuery(query)
	out := make([]*model.Movie, 0, limit)
	if needle == "" {
		return out
	}
	for _, m := range movies {
		if len(out) == limit {
			break
		}
		if m != nil && matchesText(m, needle) {
			out = append(out, m)
		}
	}
	return out
}
