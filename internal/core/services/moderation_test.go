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
	"context"
	"testing"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func pendingSubmission(t *testing.T, repo *test.MemoryRepository, title string) string {
	t.Helper()
	m := model.NewMovie()
	m.Title = title
	m.Genre = "Drama"
	id, err := repo.CreateMovie(context.Background(), m, "viewer-1")
	assert.NoError(t, err)
	return id
}

func TestReviewApproves(t *testing.T) {
	ctx := context.Background()
	repo := test.NewMemoryRepository()
	id := pendingSubmission(t, repo, "Submitted")
	svc := services.NewModerationService(repo)

	assert.NoError(t, svc.Review(ctx, id, model.StatusApproved, "mod-1"))

	m, _ := repo.GetMovie(ctx, id)
	assert.Equal(t, model.StatusApproved, m.Status)
	assert.Equal(t, "mod-1", *m.ApprovedBy)
	approval := repo.Approvals()[0]
	assert.Equal(t, model.StatusApproved, approval.Status)
	assert.Equal(t, "mod-1", *approval.ReviewedBy)
	assert.NotNil(t, approval.ReviewedAt)
}

func TestReviewRejectsInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	repo := test.NewMemoryRepository()
	id := pendingSubmission(t, repo, "Submitted")
	svc := services.NewModerationService(repo)

	assert.ErrorIs(t, svc.Review(ctx, id, model.StatusPending, "mod-1"), services.ErrInvalidTransition)
	assert.NoError(t, svc.Review(ctx, id, model.StatusRejected, "mod-1"))
	assert.ErrorIs(t, svc.Review(ctx, id, model.StatusApproved, "mod-1"), services.ErrInvalidTransition)
	assert.ErrorIs(t, svc.Review(ctx, "missing", model.StatusApproved, "mod-1"), services.ErrNotFound)
}

func TestQueueListsPendingWithMovies(t *testing.T) {
	ctx := context.Background()
	repo := test.NewMemoryRepository()
	first := pendingSubmission(t, repo, "First")
	second := pendingSubmission(t, repo, "Second")
	third := pendingSubmission(t, repo, "Third")
	svc := services.NewModerationService(repo)
	assert.NoError(t, svc.Review(ctx, second, model.StatusApproved, "mod-1"))

	queue, err := svc.Queue(ctx)
	assert.NoError(t, err)
	assert.Len(t, queue, 2)
	assert.Equal(t, third, queue[0].MovieId)
	assert.Equal(t, "Third", queue[0].Movie.Title)
	assert.Equal(t, first, queue[1].MovieId)
}

func TestDeleteRemovesMovieAndApprovals(t *testing.T) {
	ctx := context.Background()
	repo := test.NewMemoryRepository()
	id := pendingSubmission(t, repo, "Doomed")
	svc := services.NewModerationService(repo)

	assert.NoError(t, svc.Delete(ctx, id))
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, repo.Approvals())
	assert.ErrorIs(t, svc.Delete(ctx, id), services.ErrNotFound)
}
