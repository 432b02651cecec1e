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

package upload

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
)

// UntitledLabel stands in for a missing title in bulk failure reasons.
const UntitledLabel = "Untitled"

// MovieStore is the slice of the movie repository the uploader writes through.
type MovieStore interface {
	GetMovie(ctx context.Context, id string) (*model.Movie, error)
	CreateMovie(ctx context.Context, movie *model.Movie, submittedBy string) (string, error)
	UpdateMovie(ctx context.Context, id string, movie *model.Movie) error
}

// Uploader validates submissions and writes them to the store.
type Uploader struct {
	Store     MovieStore
	Validator Validator
}

// NewUploader returns an Uploader using the wall clock for validation.
func NewUploader(store MovieStore) *Uploader {
	return &Uploader{Store: store}
}

// Submit validates a single submission and creates it in the pending state,
// where it waits in the moderation queue.
//
// Inputs:
//   - ctx: request context.
//   - sub: the decoded submission.
//   - submitterId: the user credited with the submission.
//
// Outputs:
//   - string: the new movie's identifier.
//   - error: *ValidationErrors when the submission is rejected, otherwise a store failure.
func (u *Uploader) Submit(ctx context.Context, sub Submission, submitterId string) (string, error) {
	movie, err := u.Validator.Validate(sub)
	if err != nil {
		return "", err
	}
	record := model.NewMovie()
	record.ReplaceMutable(movie)
	record.UpdateDate = record.CreateDate
	record.Status = model.StatusPending

	id, err := u.Store.CreateMovie(ctx, record, submitterId)
	if err != nil {
		return "", fmt.Errorf("failed to create movie %q: %w", record.Title, err)
	}
	return id, nil
}

// Update validates sub and replaces every mutable attribute of an existing
// movie with it. The moderation state is not touched.
func (u *Uploader) Update(ctx context.Context, id string, sub Submission) (*model.Movie, error) {
	movie, err := u.Validator.Validate(sub)
	if err != nil {
		return nil, err
	}
	existing, err := u.Store.GetMovie(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load movie %s: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("movie %s: %w", id, services.ErrNotFound)
	}
	existing.ReplaceMutable(movie)
	if err = u.Store.UpdateMovie(ctx, id, existing); err != nil {
		return nil, fmt.Errorf("failed to update movie %s: %w", id, err)
	}
	return existing, nil
}

// BulkImport writes a batch of submissions one after another, each approved
// on arrival. A rejected or failed record is reported and the batch carries on
// with the next one, so the result always accounts for every record in order.
// Every record gets a fresh id; see BulkImportFrom for replayable batches.
//
// Inputs:
//   - ctx: request context. Cancellation stops the batch; the remaining
//     records are reported as failed.
//   - subs: the batch, in file order.
//
// Outputs:
//   - *model.BulkResult: success and failure counts, one reason per failure
//     formatted as "Movie <position> (<title>): <reasons>", and the created ids.
func (u *Uploader) BulkImport(ctx context.Context, subs []Submission) *model.BulkResult {
	return u.BulkImportFrom(ctx, "", subs)
}

// BulkImportFrom is BulkImport for a batch read from a named source. A
// non-empty source derives each record's id from the source and the record's
// position, and a record whose id is already stored counts as imported. Running
// the same source twice therefore leaves the catalog as one run did.
func (u *Uploader) BulkImportFrom(ctx context.Context, source string, subs []Submission) *model.BulkResult {
	result := &model.BulkResult{Errors: make([]string, 0), Ids: make([]string, 0)}
	for i, sub := range subs {
		position := i + 1
		title, ok := sub.Title()
		if !ok {
			title = UntitledLabel
		}
		if err := ctx.Err(); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Movie %d (%s): %v", position, title, err))
			continue
		}

		movie, err := u.Validator.Validate(sub)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Movie %d (%s): %v", position, title, err))
			continue
		}

		record := model.NewMovie()
		if source != "" {
			record.Id = RecordId(source, position)
			existing, err := u.Store.GetMovie(ctx, record.Id)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("Movie %d (%s): %v", position, title, err))
				continue
			}
			if existing != nil {
				result.Success++
				result.Ids = append(result.Ids, existing.Id)
				continue
			}
		}
		record.ReplaceMutable(movie)
		record.UpdateDate = record.CreateDate
		record.Status = model.StatusApproved
		record.ApprovedAt = model.Ptr(time.Now().UTC())

		id, err := u.Store.CreateMovie(ctx, record, "")
		if err != nil {
			slog.ErrorContext(ctx, "bulk import record failed", "position", position, "title", title, "error", err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Movie %d (%s): %v", position, title, err))
			continue
		}
		result.Success++
		result.Ids = append(result.Ids, id)
	}
	return result
}

// RecordId is the stable id of the record at a 1-based position of a source.
func RecordId(source string, position int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", source, position))).String()
}
