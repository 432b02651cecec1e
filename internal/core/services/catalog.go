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

// Package services contains the business logic for interacting with data sources.
// This file, `catalog.go`, defines the CatalogService, which serves the
// public side of the storefront. It fetches a snapshot from the repository,
// hides movies that have not been approved and hands the rest to the pure
// catalog engine.
package services

import (
	"context"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/catalog"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// CatalogService answers browse, search and detail requests from viewers.
type CatalogService struct {
	Repository MovieRepository
}

// NewCatalogService returns a CatalogService reading through repo.
func NewCatalogService(repo MovieRepository) *CatalogService {
	return &CatalogService{Repository: repo}
}

// Browse returns the approved movies matching query and spec.
//
// Inputs:
//   - ctx: request context.
//   - query: free text; blank matches everything.
//   - spec: narrowing and ordering criteria.
//
// Outputs:
//   - []*model.Movie: the ordered result, empty when nothing matches.
//   - error: a repository failure.
func (s *CatalogService) Browse(ctx context.Context, query string, spec model.FilterSpec) ([]*model.Movie, error) {
	movies, err := s.approved(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Search(movies, query, spec), nil
}

// Suggest returns the type-ahead entries for query.
func (s *CatalogService) Suggest(ctx context.Context, query string) ([]*model.Movie, error) {
	movies, err := s.approved(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Suggest(movies, query, catalog.MaxSuggestions), nil
}

// Genres returns the distinct genres of the approved catalog.
func (s *CatalogService) Genres(ctx context.Context) ([]string, error) {
	movies, err := s.approved(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.Genres(movies), nil
}

// Shelf returns the approved movies on a curated shelf.
func (s *CatalogService) Shelf(ctx context.Context, flag model.Flag) ([]*model.Movie, error) {
	return s.Repository.ListByFlag(ctx, flag)
}

// ByGenre returns the best rated approved movies of a genre.
func (s *CatalogService) ByGenre(ctx context.Context, genre string) ([]*model.Movie, error) {
	return s.Repository.ListByGenre(ctx, genre)
}

// Get returns an approved movie, or (nil, nil) when it does not exist or is
// still hidden from viewers.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.Movie, error) {
	movie, err := s.Repository.GetMovie(ctx, id)
	if err != nil || movie == nil {
		return nil, err
	}
	if movie.Status != model.StatusApproved {
		return nil, nil
	}
	return movie, nil
}

func (s *CatalogService) approved(ctx context.Context) ([]*model.Movie, error) {
	movies, err := s.Repository.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	return onlyApproved(movies), nil
}

func onlyApproved(movies []*model.Movie) []*model.Movie {
	out := make([]*model.Movie, 0, len(movies))
	for _, m := range movies {
		if m.Status == model.StatusApproved {
			out = append(out, m)
		}
	}
	return out
}
