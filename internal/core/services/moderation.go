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

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// ModerationService moves submitted movies through review.
type ModerationService struct {
	Repository MovieRepository
}

// NewModerationService returns a ModerationService writing through repo.
func NewModerationService(repo MovieRepository) *ModerationService {
	return &ModerationService{Repository: repo}
}

// Review approves or rejects a pending movie on behalf of moderatorId.
// It fails with ErrNotFound for an unknown id and ErrInvalidTransition when
// the movie is not pending or status is not a review outcome.
func (s *ModerationService) Review(ctx context.Context, id string, status model.Status, moderatorId string) error {
	movie, err := s.Repository.GetMovie(ctx, id)
	if err != nil {
		return err
	}
	if movie == nil {
		return fmt.Errorf("movie %s: %w", id, ErrNotFound)
	}
	if !movie.Status.CanTransitionTo(status) {
		return fmt.Errorf("movie %s is %s, cannot become %s: %w", id, movie.Status, status, ErrInvalidTransition)
	}
	if err = s.Repository.SetModerationStatus(ctx, id, status, moderatorId); err != nil {
		return err
	}
	slog.InfoContext(ctx, "movie reviewed", "movie_id", id, "status", status, "moderator", moderatorId)
	return nil
}

// Queue lists the pending approvals with their movies attached. Approvals
// whose movie has since disappeared are skipped.
func (s *ModerationService) Queue(ctx context.Context) ([]*model.ContentApproval, error) {
	approvals, err := s.Repository.ListApprovals(ctx, model.StatusPending)
	if err != nil {
		return nil, err
	}
	out := make([]*model.ContentApproval, 0, len(approvals))
	for _, a := range approvals {
		movie, err := s.Repository.GetMovie(ctx, a.MovieId)
		if err != nil {
			return nil, err
		}
		if movie == nil {
			continue
		}
		a.Movie = movie
		out = append(out, a)
	}
	return out, nil
}

// Delete removes a movie and its approval history.
func (s *ModerationService) Delete(ctx context.Context, id string) error {
	if err := s.Repository.DeleteMovie(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "movie deleted", "movie_id", id)
	return nil
}
