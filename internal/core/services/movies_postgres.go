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
// This file, `movies_postgres.go`, implements MovieRepository on top of a
// Postgres connection pool. Writes that touch both the movies table and the
// content_approvals table run in a single transaction.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// PostgresMovieRepository stores movies in Postgres.
type PostgresMovieRepository struct {
	Pool *pgxpool.Pool // Shared connection pool, owned by cloud.ServiceClients.
}

// NewPostgresMovieRepository wraps an existing pool.
func NewPostgresMovieRepository(pool *pgxpool.Pool) *PostgresMovieRepository {
	return &PostgresMovieRepository{Pool: pool}
}

// ListMovies returns every movie, newest first.
func (r *PostgresMovieRepository) ListMovies(ctx context.Context) ([]*model.Movie, error) {
	return r.queryMovies(ctx, PgListMovies)
}

// GetMovie returns a single movie, or (nil, nil) when the id is unknown.
func (r *PostgresMovieRepository) GetMovie(ctx context.Context, id string) (*model.Movie, error) {
	movie, err := scanMovie(r.Pool.QueryRow(ctx, PgGetMovie, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie %s: %w", id, err)
	}
	return movie, nil
}

// ListByFlag returns the approved movies on a curated shelf.
func (r *PostgresMovieRepository) ListByFlag(ctx context.Context, flag model.Flag) ([]*model.Movie, error) {
	switch flag {
	case model.FlagFeatured:
		return r.queryMovies(ctx, PgListFeatured)
	case model.FlagPopular:
		return r.queryMovies(ctx, PgListPopular, ShelfLimit)
	case model.FlagLatest:
		return r.queryMovies(ctx, PgListLatest, ShelfLimit)
	}
	return nil, fmt.Errorf("unknown shelf %q", flag)
}

// ListByGenre returns the best rated approved movies of a genre.
func (r *PostgresMovieRepository) ListByGenre(ctx context.Context, genre string) ([]*model.Movie, error) {
	return r.queryMovies(ctx, PgListByGenre, genre, GenreLimit)
}

// CreateMovie inserts the movie and, for a pending movie, its approval record.
//
// Inputs:
//   - ctx: request context.
//   - movie: a fully populated record, typically from model.NewMovie.
//   - submittedBy: the user credited in the approval record.
//
// Outputs:
//   - string: the stored identifier.
//   - error: any failure; nothing is written in that case.
func (r *PostgresMovieRepository) CreateMovie(ctx context.Context, movie *model.Movie, submittedBy string) (string, error) {
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, PgInsertMovie, movieArgs(movie)...); err != nil {
			return fmt.Errorf("insert movie: %w", err)
		}
		if movie.Status != model.StatusPending {
			return nil
		}
		approval := model.NewContentApproval(movie.Id, submittedBy)
		_, err := tx.Exec(ctx, PgInsertApproval,
			approval.Id, approval.MovieId, string(approval.Status), approval.SubmittedBy, approval.SubmittedAt)
		if err != nil {
			return fmt.Errorf("insert approval: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to create movie %q: %w", movie.Title, err)
	}
	return movie.Id, nil
}

// UpdateMovie rewrites the mutable columns of a movie.
func (r *PostgresMovieRepository) UpdateMovie(ctx context.Context, id string, movie *model.Movie) error {
	tag, err := r.Pool.Exec(ctx, PgUpdateMovie,
		id, movie.Title, movie.Description, movie.Genre, movie.Director, movie.Cast,
		movie.ReleaseYear, movie.Duration, movie.PosterUrl, movie.TrailerUrl, movie.VideoUrl, movie.DownloadUrl,
		movie.Rating, movie.Featured, movie.Popular, movie.Latest, movie.UpdateDate)
	if err != nil {
		return fmt.Errorf("failed to update movie %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("movie %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMovie removes the approval records and then the movie.
func (r *PostgresMovieRepository) DeleteMovie(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, PgDeleteApprovals, id); err != nil {
			return fmt.Errorf("delete approvals: %w", err)
		}
		tag, err := tx.Exec(ctx, PgDeleteMovie, id)
		if err != nil {
			return fmt.Errorf("delete movie: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete movie %s: %w", id, err)
	}
	return nil
}

// SetModerationStatus stamps the review on the movie and its approval record.
func (r *PostgresMovieRepository) SetModerationStatus(ctx context.Context, id string, status model.Status, moderatorId string) error {
	at := time.Now().UTC()
	err := pgx.BeginFunc(ctx, r.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, PgModerateMovie, id, string(status), moderatorId, at)
		if err != nil {
			return fmt.Errorf("moderate movie: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		if _, err = tx.Exec(ctx, PgModerateApproval, id, string(status), moderatorId, at); err != nil {
			return fmt.Errorf("moderate approval: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set status of movie %s: %w", id, err)
	}
	return nil
}

// ListApprovals returns approval records, newest first.
func (r *PostgresMovieRepository) ListApprovals(ctx context.Context, status model.Status) ([]*model.ContentApproval, error) {
	rows, err := r.Pool.Query(ctx, PgListApprovals, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	approvals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.ContentApproval, error) {
		a := &model.ContentApproval{}
		var s string
		err := row.Scan(&a.Id, &a.MovieId, &s, &a.SubmittedBy, &a.SubmittedAt, &a.ReviewedBy, &a.ReviewedAt, &a.ReviewNotes)
		a.Status = model.Status(s)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read approvals: %w", err)
	}
	return approvals, nil
}

func (r *PostgresMovieRepository) queryMovies(ctx context.Context, sql string, args ...any) ([]*model.Movie, error) {
	rows, err := r.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	movies, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*model.Movie, error) {
		return scanMovie(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read movies: %w", err)
	}
	return movies, nil
}

func scanMovie(row pgx.Row) (*model.Movie, error) {
	m := &model.Movie{}
	var status string
	var cast []string
	err := row.Scan(&m.Id, &m.Title, &m.Description, &m.Genre, &m.Director, &cast, &m.ReleaseYear, &m.Duration,
		&m.PosterUrl, &m.TrailerUrl, &m.VideoUrl, &m.DownloadUrl, &m.Rating, &m.Featured, &m.Popular, &m.Latest,
		&status, &m.ApprovedBy, &m.ApprovedAt, &m.CreateDate, &m.UpdateDate)
	if err != nil {
		return nil, err
	}
	m.Status = model.Status(status)
	m.Cast = cast
	if m.Cast == nil {
		m.Cast = make([]string, 0)
	}
	return m, nil
}

func movieArgs(m *model.Movie) []any {
	return []any{
		m.Id, m.Title, m.Description, m.Genre, m.Director, m.Cast, m.ReleaseYear, m.Duration,
		m.PosterUrl, m.TrailerUrl, m.VideoUrl, m.DownloadUrl, m.Rating, m.Featured, m.Popular, m.Latest,
		string(m.Status), m.ApprovedBy, m.ApprovedAt, m.CreateDate, m.UpdateDate,
	}
}
