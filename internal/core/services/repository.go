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
// This file, `repository.go`, defines the data-access contract every movie
// store satisfies, the sentinel errors shared by the services and the
// ordering rules of the curated shelves.
package services

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

var (
	// ErrNotFound is wrapped when an operation targets a movie that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a moderation change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrNoAsset is returned when a movie has no media for the requested playback.
	ErrNoAsset = errors.New("movie has no media asset")
	// ErrNotAnImage is returned when an uploaded poster is not an image.
	ErrNotAnImage = errors.New("file is not an image")
	// ErrPosterTooLarge is returned when an uploaded poster exceeds MaxPosterBytes.
	ErrPosterTooLarge = errors.New("poster exceeds the size limit")
)

// Shelf and genre listing sizes.
const (
	ShelfLimit = 10
	GenreLimit = 12
)

// MovieRepository is the data-access boundary for movies and their
// moderation records. Every method may fail with a backend error. A single
// lookup that finds nothing returns (nil, nil); listings that find nothing
// return an empty slice.
type MovieRepository interface {
	// ListMovies returns every movie, newest first.
	ListMovies(ctx context.Context) ([]*model.Movie, error)
	// GetMovie returns one movie or (nil, nil) when it does not exist.
	GetMovie(ctx context.Context, id string) (*model.Movie, error)
	// ListByFlag returns the approved movies on a curated shelf, see ShelfOrder.
	ListByFlag(ctx context.Context, flag model.Flag) ([]*model.Movie, error)
	// ListByGenre returns the best rated approved movies of one genre, at most
	// GenreLimit.
	ListByGenre(ctx context.Context, genre string) ([]*model.Movie, error)
	// CreateMovie stores a movie. A pending movie also opens a content
	// approval credited to submittedBy.
	CreateMovie(ctx context.Context, movie *model.Movie, submittedBy string) (string, error)
	// UpdateMovie replaces the stored movie with the given record.
	UpdateMovie(ctx context.Context, id string, movie *model.Movie) error
	// DeleteMovie removes the movie's approval records, then the movie.
	DeleteMovie(ctx context.Context, id string) error
	// SetModerationStatus records a review on the movie and its approval record.
	SetModerationStatus(ctx context.Context, id string, status model.Status, moderatorId string) error
	// ListApprovals returns approval records newest first; an empty status lists all.
	ListApprovals(ctx context.Context, status model.Status) ([]*model.ContentApproval, error)
}

// ShelfOrder applies the shelf rules to an in-memory collection: featured is
// newest first and unbounded, popular is best rated first and latest is most
// recent release first, both capped at ShelfLimit. Missing values go last.
// Only approved movies are kept, and they are kept before the cap applies.
// Stores that cannot push the ordering into a query use it directly.
func ShelfOrder(movies []*model.Movie, flag model.Flag) []*model.Movie {
	out := make([]*model.Movie, 0)
	for _, m := range movies {
		if m.Status == model.StatusApproved && m.HasFlag(flag) {
			out = append(out, m)
		}
	}
	switch flag {
	case model.FlagPopular:
		slices.SortStableFunc(out, byRatingDesc)
	case model.FlagLatest:
		slices.SortStableFunc(out, func(a, b *model.Movie) int { return descendingNilLast(a.ReleaseYear, b.ReleaseYear) })
	default:
		slices.SortStableFunc(out, func(a, b *model.Movie) int { return b.CreateDate.Compare(a.CreateDate) })
		return out
	}
	if len(out) > ShelfLimit {
		out = out[:ShelfLimit]
	}
	return out
}

// GenreOrder applies the genre listing rule to an in-memory collection,
// approved movies only.
func GenreOrder(movies []*model.Movie, genre string) []*model.Movie {
	out := make([]*model.Movie, 0)
	for _, m := range movies {
		if m.Status == model.StatusApproved && m.Genre == genre {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, byRatingDesc)
	if len(out) > GenreLimit {
		out = out[:GenreLimit]
	}
	return out
}

func byRatingDesc(a, b *model.Movie) int {
	return descendingNilLast(a.Rating, b.Rating)
}

func descendingNilLast[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*b, *a)
}
