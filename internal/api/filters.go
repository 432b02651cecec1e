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
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// Query parameters understood by the browse endpoint.
const (
	ParamQuery       = "q"
	ParamGenre       = "genre"
	ParamYearMin     = "year_min"
	ParamYearMax     = "year_max"
	ParamRatingMin   = "rating_min"
	ParamRatingMax   = "rating_max"
	ParamDurationMin = "duration_min"
	ParamDurationMax = "duration_max"
	ParamQuality     = "quality"
	ParamSort        = "sort"
	ParamOrder       = "order"
)

// ParseFilterSpec builds a FilterSpec from query parameters. Absent
// parameters keep their full-range default; malformed ones are an error.
func ParseFilterSpec(values url.Values, now time.Time) (model.FilterSpec, error) {
	spec := model.DefaultFilterSpec(now)

	if genre := strings.TrimSpace(values.Get(ParamGenre)); genre != "" {
		spec.Genre = genre
	}
	var err error
	if spec.ReleaseYear.Min, err = intParam(values, ParamYearMin, spec.ReleaseYear.Min); err != nil {
		return spec, err
	}
	if spec.ReleaseYear.Max, err = intParam(values, ParamYearMax, spec.ReleaseYear.Max); err != nil {
		return spec, err
	}
	if spec.Rating.Min, err = floatParam(values, ParamRatingMin, spec.Rating.Min); err != nil {
		return spec, err
	}
	if spec.Rating.Max, err = floatParam(values, ParamRatingMax, spec.Rating.Max); err != nil {
		return spec, err
	}
	if spec.Duration.Min, err = intParam(values, ParamDurationMin, spec.Duration.Min); err != nil {
		return spec, err
	}
	if spec.Duration.Max, err = intParam(values, ParamDurationMax, spec.Duration.Max); err != nil {
		return spec, err
	}

	for _, raw := range values[ParamQuality] {
		for _, q := range strings.Split(raw, ",") {
			if q = strings.TrimSpace(q); q != "" {
				spec.Quality = append(spec.Quality, q)
			}
		}
	}

	if raw := values.Get(ParamSort); raw != "" {
		key, ok := model.ParseSortKey(raw)
		if !ok {
			return spec, fmt.Errorf("invalid %s: %q", ParamSort, raw)
		}
		spec.SortBy = key
	}
	if raw := values.Get(ParamOrder); raw != "" {
		order, ok := model.ParseSortOrder(raw)
		if !ok {
			return spec, fmt.Errorf("invalid %s: %q", ParamOrder, raw)
		}
		spec.SortOrder = order
	}
	return spec, nil
}

func intParam(values url.Values, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

func floatParam(values url.Values, name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}
