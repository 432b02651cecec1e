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
// This file, `queries.go`, centralizes the SQL used by the movie and analytics
// stores. Postgres statements use positional `$n` parameters. BigQuery
// statements take the fully qualified table names through `fmt.Sprintf` and
// every value through named `@param` query parameters.
package services

// movieColumns is the column list shared by every movie SELECT. The cast is
// stored as movie_cast because CAST is a reserved word in both dialects.
const movieColumns = "id, title, description, genre, director, movie_cast, release_year, duration, " +
	"poster_url, trailer_url, video_url, download_url, rating, featured, popular, latest, " +
	"status, approved_by, approved_at, created_at, updated_at"

// Postgres statements.
const (
	PgListMovies = "SELECT " + movieColumns + " FROM movies ORDER BY created_at DESC"

	PgGetMovie = "SELECT " + movieColumns + " FROM movies WHERE id = $1"

	PgListFeatured = "SELECT " + movieColumns + " FROM movies WHERE featured AND status = 'approved' ORDER BY created_at DESC"

	PgListPopular = "SELECT " + movieColumns + " FROM movies WHERE popular AND status = 'approved' ORDER BY rating DESC NULLS LAST LIMIT $1"

	PgListLatest = "SELECT " + movieColumns + " FROM movies WHERE latest AND status = 'approved' ORDER BY release_year DESC NULLS LAST LIMIT $1"

	PgListByGenre = "SELECT " + movieColumns + " FROM movies WHERE genre = $1 AND status = 'approved' ORDER BY rating DESC NULLS LAST LIMIT $2"

	PgInsertMovie = `INSERT INTO movies (` + movieColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	PgUpdateMovie = `UPDATE movies SET title = $2, description = $3, genre = $4, director = $5, movie_cast = $6,
release_year = $7, duration = $8, poster_url = $9, trailer_url = $10, video_url = $11, download_url = $12,
rating = $13, featured = $14, popular = $15, latest = $16, updated_at = $17 WHERE id = $1`

	PgDeleteApprovals = "DELETE FROM content_approvals WHERE movie_id = $1"

	PgDeleteMovie = "DELETE FROM movies WHERE id = $1"

	PgInsertApproval = `INSERT INTO content_approvals (id, movie_id, status, submitted_by, submitted_at)
VALUES ($1, $2, $3, $4, $5)`

	PgModerateMovie = "UPDATE movies SET status = $2, approved_by = $3, approved_at = $4, updated_at = $4 WHERE id = $1"

	PgModerateApproval = "UPDATE content_approvals SET status = $2, reviewed_by = $3, reviewed_at = $4 WHERE movie_id = $1"

	PgListApprovals = `SELECT id, movie_id, status, submitted_by, submitted_at, reviewed_by, reviewed_at, review_notes
FROM content_approvals WHERE ($1 = '' OR status = $1) ORDER BY submitted_at DESC`
)

// BigQuery statements. The first %s is always the movies table.
const (
	BqListMovies = "SELECT " + movieColumns + " FROM `%s` ORDER BY created_at DESC"

	BqGetMovie = "SELECT " + movieColumns + " FROM `%s` WHERE id = @id"

	BqListFeatured = "SELECT " + movieColumns + " FROM `%s` WHERE featured AND status = 'approved' ORDER BY created_at DESC"

	BqListPopular = "SELECT " + movieColumns + " FROM `%s` WHERE popular AND status = 'approved' ORDER BY rating DESC NULLS LAST LIMIT @limit"

	BqListLatest = "SELECT " + movieColumns + " FROM `%s` WHERE latest AND status = 'approved' ORDER BY release_year DESC NULLS LAST LIMIT @limit"

	BqListByGenre = "SELECT " + movieColumns + " FROM `%s` WHERE genre = @genre AND status = 'approved' ORDER BY rating DESC NULLS LAST LIMIT @limit"

	BqInsertMovie = "INSERT INTO `%s` (" + movieColumns + ") VALUES (@id, @title, @description, @genre, @director, " +
		"@movie_cast, @release_year, @duration, @poster_url, @trailer_url, @video_url, @download_url, @rating, " +
		"@featured, @popular, @latest, @status, @approved_by, @approved_at, @created_at, @updated_at)"

	// BqInsertApproval runs against the approvals table.
	BqInsertApproval = "INSERT INTO `%s` (id, movie_id, status, submitted_by, submitted_at) " +
		"VALUES (@approval_id, @id, @status, @submitted_by, @submitted_at)"

	BqUpdateMovie = "UPDATE `%s` SET title = @title, description = @description, genre = @genre, director = @director, " +
		"movie_cast = @movie_cast, release_year = @release_year, duration = @duration, poster_url = @poster_url, " +
		"trailer_url = @trailer_url, video_url = @video_url, download_url = @download_url, rating = @rating, " +
		"featured = @featured, popular = @popular, latest = @latest, updated_at = @updated_at WHERE id = @id"

	// BqDeleteApprovals runs against the approvals table.
	BqDeleteApprovals = "DELETE FROM `%s` WHERE movie_id = @id"

	BqDeleteMovie = "DELETE FROM `%s` WHERE id = @id"

	BqModerateMovie = "UPDATE `%s` SET status = @status, approved_by = @moderator, approved_at = @at, updated_at = @at WHERE id = @id"

	// BqModerateApproval runs against the approvals table.
	BqModerateApproval = "UPDATE `%s` SET status = @status, reviewed_by = @moderator, reviewed_at = @at WHERE movie_id = @id"

	// BqCreatePendingMovie inserts a pending movie and opens its approval in
	// one transaction. The second %s is the approvals table.
	BqCreatePendingMovie = "BEGIN TRANSACTION;\n" +
		BqInsertMovie + ";\n" +
		BqInsertApproval + ";\n" +
		"COMMIT TRANSACTION;"

	// BqDeleteMovieScript drops the movie and its approvals in one
	// transaction. The second %s is the approvals table. A missing movie
	// aborts and rolls back the script.
	BqDeleteMovieScript = "BEGIN TRANSACTION;\n" +
		BqDeleteMovie + ";\n" +
		"IF @@row_count = 0 THEN RAISE USING MESSAGE = '" + BqNotFoundMessage + "'; END IF;\n" +
		BqDeleteApprovals + ";\n" +
		"COMMIT TRANSACTION;"

	// BqModerateScript stamps the movie and its approval in one transaction.
	// The second %s is the approvals table.
	BqModerateScript = "BEGIN TRANSACTION;\n" +
		BqModerateMovie + ";\n" +
		"IF @@row_count = 0 THEN RAISE USING MESSAGE = '" + BqNotFoundMessage + "'; END IF;\n" +
		BqModerateApproval + ";\n" +
		"COMMIT TRANSACTION;"

	// BqNotFoundMessage is raised by a script whose target movie is absent.
	BqNotFoundMessage = "movie not found"

	// BqListApprovals runs against the approvals table.
	BqListApprovals = "SELECT id, movie_id, status, submitted_by, submitted_at, reviewed_by, reviewed_at, review_notes " +
		"FROM `%s` WHERE (@status = '' OR status = @status) ORDER BY submitted_at DESC"

	// BqAnalyticsStats runs against the analytics table.
	BqAnalyticsStats = "SELECT action, COUNT(*) AS total FROM `%s` GROUP BY action"

	// BqRecentEvents runs against the analytics table.
	BqRecentEvents = "SELECT id, user_id, movie_id, action, metadata, user_agent, created_at FROM `%s` ORDER BY created_at DESC LIMIT @limit"
)
