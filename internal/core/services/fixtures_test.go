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
package services_test

import (
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

var base = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

// movie builds an approved movie created age hours before base.
func movie(id string, title string, genre string, age int) *model.Movie {
	return &model.Movie{
		Id:         id,
		Title:      title,
		Genre:      genre,
		Cast:       []string{},
		Status:     model.StatusApproved,
		CreateDate: base.Add(-time.Duration(age) * time.Hour),
		UpdateDate: base,
	}
}

func ids(movies []*model.Movie) []string {
	out := make([]string, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.Id)
	}
	return out
}
