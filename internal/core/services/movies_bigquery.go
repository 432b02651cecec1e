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
// This file, `movies_bigquery.go`, implements MovieRepository on BigQuery.
// Reads go through the row iterator and every write is a parameterized DML
// statement, so rows are immediately visible to later updates and deletes.
// Writes that touch both tables run as one multi-statement transaction.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"google.golang.org/api/iterator"
)

// BigQueryMovieRepository stores movies and approvals in a BigQuery dataset.
type BigQueryMovieRepository struct {
	BigqueryClient *bigquery.Client // Client for interacting with Google BigQuery.
	DatasetName    string           // The dataset holding both tables (e.g., "storefront_ds").
	MovieTable     string           // The movies table.
	ApprovalTable  string           // The content approvals table.
}

// GetFQN (Get Fully Qualified Name) returns the queryable name of a table in
// the repository's dataset, formatted with dots instead of colons.
func (r *BigQueryMovieRepository) GetFQN(table string) string {
	fqn := r.BigqueryClient.Dataset(r.DatasetName).Table(table).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// movieRow mirrors a row of the movies table, with nullable columns typed
// for BigQuery.
type movieRow struct {
	Id          string                 `bigquery:"id"`
	Title       string                 `bigquery:"title"`
	Description bigquery.NullString    `bigquery:"description"`
	Genre       string                 `bigquery:"genre"`
	Director    bigquery.NullString    `bigquery:"director"`
	Cast        []string               `bigquery:"movie_cast"`
	ReleaseYear bigquery.NullInt64     `bigquery:"release_year"`
	Duration    bigquery.NullInt64     `bigquery:"duration"`
	PosterUrl   bigquery.NullString    `bigquery:"poster_url"`
	TrailerUrl  bigquery.NullString    `bigquery:"trailer_url"`
	VideoUrl    bigquery.NullString    `bigquery:"video_url"`
	DownloadUrl bigquery.NullString    `bigquery:"download_url"`
	Rating      bigquery.NullFloat64   `bigquery:"rating"`
	Featured    bool                   `bigquery:"featured"`
	Popular     bool                   `bigquery:"popular"`
	Latest      bool                   `bigquery:"latest"`
	Status      string                 `bigquery:"status"`
	ApprovedBy  bigquery.NullString    `bigquery:"approved_by"`
	ApprovedAt  bigquery.NullTimestamp `bigquery:"approved_at"`
	CreateDate  time.Time              `bigquery:"created_at"`
	UpdateDate  time.Time              `bigquery:"updated_at"`
}

func (row *movieRow) toMovie() *model.Movie {
	m := &model.Movie{
		Id:          row.Id,
		Title:       row.Title,
		Description: fromNullString(row.Description),
		Genre:       row.Genre,
		Director:    fromNullString(row.Director),
		Cast:        append(make([]string, 0, len(row.Cast)), row.Cast...),
		PosterUrl:   fromNullString(row.PosterUrl),
		TrailerUrl:  fromNullString(row.TrailerUrl),
		VideoUrl:    fromNullString(row.VideoUrl),
		DownloadUrl: fromNullString(row.DownloadUrl),
		Featured:    row.Featured,
		Popular:     row.Popular,
		Latest:      row.Latest,
		Status:      model.Status(row.Status),
		ApprovedBy:  fromNullString(row.ApprovedBy),
		CreateDate:  row.CreateDate,
		UpdateDate:  row.UpdateDate,
	}
	if row.ReleaseYear.Valid {
		m.ReleaseYear = model.Ptr(int(row.ReleaseYear.Int64))
	}
	if row.Duration.Valid {
		m.Duration = model.Ptr(int(row.Duration.Int64))
	}
	if row.Rating.Valid {
		m.Rating = model.Ptr(row.Rating.Float64)
	}
	if row.ApprovedAt.Valid {
		m.ApprovedAt = model.Ptr(row.ApprovedAt.Timestamp)
	}
	return m
}

type approvalRow struct {
	Id          string                 `bigquery:"id"`
	MovieId     string                 `bigquery:"movie_id"`
	Status      string                 `bigquery:"status"`
	SubmittedBy bigquery.NullString    `bigquery:"submitted_by"`
	SubmittedAt time.Time              `bigquery:"submitted_at"`
	ReviewedBy  bigquery.NullString    `bigquery:"reviewed_by"`
	ReviewedAt  bigquery.NullTimestamp `bigquery:"reviewed_at"`
	ReviewNotes bigquery.NullString    `bigquery:"review_notes"`
}

// ListMovies returns every movie, newest first.
func (r *BigQueryMovieRepository) ListMovies(ctx context.Context) ([]*model.Movie, error) {
	return r.queryMovies(ctx, fmt.Sprintf(BqListMovies, r.GetFQN(r.MovieTable)))
}

// GetMovie returns a single movie, or (nil, nil) when the id is unknown.
func (r *BigQueryMovieRepository) GetMovie(ctx context.Context, id string) (*model.Movie, error) {
	movies, err := r.queryMovies(ctx, fmt.Sprintf(BqGetMovie, r.GetFQN(r.MovieTable)),
		bigquery.QueryParameter{Name: "id", Value: id})
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, nil
	}
	return movies[0], nil
}

// ListByFlag returns the approved movies on a curated shelf.
func (r *BigQueryMovieRepository) ListByFlag(ctx context.Context, flag model.Flag) ([]*model.Movie, error) {
	table := r.GetFQN(r.MovieTable)
	limit := bigquery.QueryParameter{Name: "limit", Value: ShelfLimit}
	switch flag {
	case model.FlagFeatured:
		return r.queryMovies(ctx, fmt.Sprintf(BqListFeatured, table))
	case model.FlagPopular:
		return r.queryMovies(ctx, fmt.Sprintf(BqListPopular, table), limit)
	case model.FlagLatest:
		return r.queryMovies(ctx, fmt.Sprintf(BqListLatest, table), limit)
	}
	return nil, fmt.Errorf("unknown shelf %q", flag)
}

// ListByGenre returns the best rated approved movies of a genre.
func (r *BigQueryMovieRepository) ListByGenre(ctx context.Context, genre string) ([]*model.Movie, error) {
	return r.queryMovies(ctx, fmt.Sprintf(BqListByGenre, r.GetFQN(r.MovieTable)),
		bigquery.QueryParameter{Name: "genre", Value: genre},
		bigquery.QueryParameter{Name: "limit", Value: GenreLimit})
}

// CreateMovie inserts the movie. A pending movie and its approval record are
// written by one transactional script.
func (r *BigQueryMovieRepository) CreateMovie(ctx context.Context, movie *model.Movie, submittedBy string) (string, error) {
	params := append(movieParams(movie),
		bigquery.QueryParameter{Name: "status", Value: string(movie.Status)},
		bigquery.QueryParameter{Name: "approved_by", Value: toNullString(movie.ApprovedBy)},
		bigquery.QueryParameter{Name: "approved_at", Value: toNullTimestamp(movie.ApprovedAt)},
		bigquery.QueryParameter{Name: "created_at", Value: movie.CreateDate},
	)
	sql := fmt.Sprintf(BqInsertMovie, r.GetFQN(r.MovieTable))
	if movie.Status == model.StatusPending {
		approval := model.NewContentApproval(movie.Id, submittedBy)
		// The approval shares @id and @status with the movie row.
		params = append(params,
			bigquery.QueryParameter{Name: "approval_id", Value: approval.Id},
			bigquery.QueryParameter{Name: "submitted_by", Value: approval.SubmittedBy},
			bigquery.QueryParameter{Name: "submitted_at", Value: approval.SubmittedAt})
		sql = fmt.Sprintf(BqCreatePendingMovie, r.GetFQN(r.MovieTable), r.GetFQN(r.ApprovalTable))
	}
	if _, err := r.runDML(ctx, sql, params...); err != nil {
		return "", fmt.Errorf("failed to create movie %q: %w", movie.Title, err)
	}
	return movie.Id, nil
}

// UpdateMovie rewrites the mutable columns of a movie.
func (r *BigQueryMovieRepository) UpdateMovie(ctx context.Context, id string, movie *model.Movie) error {
	params := movieParams(movie)
	params[0] = bigquery.QueryParameter{Name: "id", Value: id}
	affected, err := r.runDML(ctx, fmt.Sprintf(BqUpdateMovie, r.GetFQN(r.MovieTable)), params...)
	if err != nil {
		return fmt.Errorf("failed to update movie %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("movie %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteMovie removes the movie and its approval records in one transaction.
func (r *BigQueryMovieRepository) DeleteMovie(ctx context.Context, id string) error {
	sql := fmt.Sprintf(BqDeleteMovieScript, r.GetFQN(r.MovieTable), r.GetFQN(r.ApprovalTable))
	if err := r.runScript(ctx, sql, bigquery.QueryParameter{Name: "id", Value: id}); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("movie %s: %w", id, err)
		}
		return fmt.Errorf("failed to delete movie %s: %w", id, err)
	}
	return nil
}

// SetModerationStatus stamps the review on the movie and its approval record
// in one transaction.
func (r *BigQueryMovieRepository) SetModerationStatus(ctx context.Context, id string, status model.Status, moderatorId string) error {
	sql := fmt.Sprintf(BqModerateScript, r.GetFQN(r.MovieTable), r.GetFQN(r.ApprovalTable))
	err := r.runScript(ctx, sql,
		bigquery.QueryParameter{Name: "id", Value: id},
		bigquery.QueryParameter{Name: "status", Value: string(status)},
		bigquery.QueryParameter{Name: "moderator", Value: moderatorId},
		bigquery.QueryParameter{Name: "at", Value: time.Now().UTC()})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("movie %s: %w", id, err)
		}
		return fmt.Errorf("failed to set status of movie %s: %w", id, err)
	}
	return nil
}

// ListApprovals returns approval records, newest first.
func (r *BigQueryMovieRepository) ListApprovals(ctx context.Context, status model.Status) ([]*model.ContentApproval, error) {
	q := r.BigqueryClient.Query(fmt.Sprintf(BqListApprovals, r.GetFQN(r.ApprovalTable)))
	q.Parameters = []bigquery.QueryParameter{{Name: "status", Value: string(status)}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	out := make([]*model.ContentApproval, 0)
	for {
		var row approvalRow
		err = itr.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read approvals: %w", err)
		}
		a := &model.ContentApproval{
			Id:          row.Id,
			MovieId:     row.MovieId,
			Status:      model.Status(row.Status),
			SubmittedBy: row.SubmittedBy.StringVal,
			SubmittedAt: row.SubmittedAt,
			ReviewedBy:  fromNullString(row.ReviewedBy),
			ReviewNotes: fromNullString(row.ReviewNotes),
		}
		if row.ReviewedAt.Valid {
			a.ReviewedAt = model.Ptr(row.ReviewedAt.Timestamp)
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *BigQueryMovieRepository) queryMovies(ctx context.Context, sql string, params ...bigquery.QueryParameter) ([]*model.Movie, error) {
	q := r.BigqueryClient.Query(sql)
	q.Parameters = params
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	out := make([]*model.Movie, 0)
	for {
		var row movieRow
		err = itr.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read movies: %w", err)
		}
		out = append(out, row.toMovie())
	}
	return out, nil
}

// runDML executes a data manipulation statement, waits for it and returns
// the number of rows it touched.
func (r *BigQueryMovieRepository) runDML(ctx context.Context, sql string, params ...bigquery.QueryParameter) (int64, error) {
	q := r.BigqueryClient.Query(sql)
	q.Parameters = params
	job, err := q.Run(ctx)
	if err != nil {
		return 0, err
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, err
	}
	if err = status.Err(); err != nil {
		return 0, err
	}
	if stats, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return stats.NumDMLAffectedRows, nil
	}
	return 0, nil
}

// runScript executes a multi-statement transaction. A script that raised
// BqNotFoundMessage was rolled back and is reported as ErrNotFound.
func (r *BigQueryMovieRepository) runScript(ctx context.Context, sql string, params ...bigquery.QueryParameter) error {
	_, err := r.runDML(ctx, sql, params...)
	if err != nil && strings.Contains(err.Error(), BqNotFoundMessage) {
		return ErrNotFound
	}
	return err
}

// movieParams binds the mutable columns plus id and updated_at. The id is
// always the first parameter.
func movieParams(m *model.Movie) []bigquery.QueryParameter {
	return []bigquery.QueryParameter{
		{Name: "id", Value: m.Id},
		{Name: "title", Value: m.Title},
		{Name: "description", Value: toNullString(m.Description)},
		{Name: "genre", Value: m.Genre},
		{Name: "director", Value: toNullString(m.Director)},
		{Name: "movie_cast", Value: append(make([]string, 0, len(m.Cast)), m.Cast...)},
		{Name: "release_year", Value: toNullInt64(m.ReleaseYear)},
		{Name: "duration", Value: toNullInt64(m.Duration)},
		{Name: "poster_url", Value: toNullString(m.PosterUrl)},
		{Name: "trailer_url", Value: toNullString(m.TrailerUrl)},
		{Name: "video_url", Value: toNullString(m.VideoUrl)},
		{Name: "download_url", Value: toNullString(m.DownloadUrl)},
		{Name: "rating", Value: toNullFloat64(m.Rating)},
		{Name: "featured", Value: m.Featured},
		{Name: "popular", Value: m.Popular},
		{Name: "latest", Value: m.Latest},
		{Name: "updated_at", Value: m.UpdateDate},
	}
}

func fromNullString(v bigquery.NullString) *string {
	if !v.Valid {
		return nil
	}
	return model.Ptr(v.StringVal)
}

func toNullString(v *string) bigquery.NullString {
	if v == nil {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: *v, Valid: true}
}

func toNullInt64(v *int) bigquery.NullInt64 {
	if v == nil {
		return bigquery.NullInt64{}
	}
	return bigquery.NullInt64{Int64: int64(*v), Valid: true}
}

func toNullFloat64(v *float64) bigquery.NullFloat64 {
	if v == nil {
		return bigquery.NullFloat64{}
	}
	return bigquery.NullFloat64{Float64: *v, Valid: true}
}

func toNullTimestamp(v *time.Time) bigquery.NullTimestamp {
	if v == nil {
		return bigquery.NullTimestamp{}
	}
	return bigquery.NullTimestamp{Timestamp: *v, Valid: true}
}
