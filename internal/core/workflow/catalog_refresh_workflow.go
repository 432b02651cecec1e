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
package workflow

import (
	goctx "context"
	"log/slog"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// SnapshotRefresher rebuilds the catalog snapshot.
type SnapshotRefresher interface {
	Refresh(ctx goctx.Context) ([]*model.Movie, error)
}

// CatalogRefreshWorkflow reloads the cached catalog snapshot on a timer so
// that viewers rarely pay for a cold read.
type CatalogRefreshWorkflow struct {
	cor.BaseCommand
	refresher SnapshotRefresher
	interval  time.Duration
}

func NewCatalogRefreshWorkflow(refresher SnapshotRefresher, interval time.Duration) *CatalogRefreshWorkflow {
	return &CatalogRefreshWorkflow{
		BaseCommand: *cor.NewBaseCommand("catalog-refresh-workflow"),
		refresher:   refresher,
		interval:    interval,
	}
}

// IsExecutable only needs a Go context; the workflow has no input.
func (w *CatalogRefreshWorkflow) IsExecutable(context cor.Context) bool {
	return context != nil && context.GetContext() != nil
}

// Execute rebuilds the snapshot once and outputs the number of movies in it.
func (w *CatalogRefreshWorkflow) Execute(context cor.Context) {
	movies, err := w.refresher.Refresh(context.GetContext())
	if err != nil {
		w.Fail(context, err)
		return
	}
	slog.DebugContext(context.GetContext(), "catalog snapshot refreshed", "movies", len(movies))
	w.Succeed(context, len(movies))
}

// StartTimer runs Execute every interval until ctx ends. A non-positive
// interval disables the timer.
func (w *CatalogRefreshWorkflow) StartTimer(ctx goctx.Context) {
	if w.interval <= 0 {
		slog.Info("catalog refresh disabled")
		return
	}
	tracer := otel.Tracer("catalog-refresh")
	ticker := time.NewTicker(w.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				traceCtx, span := tracer.Start(ctx, "catalog-refresh")
				chainCtx := cor.NewBaseContext()
				chainCtx.SetContext(traceCtx)

				w.Execute(chainCtx)

				if chainCtx.HasErrors() {
					span.SetStatus(codes.Error, "failed to refresh catalog snapshot")
					for _, e := range chainCtx.GetErrors() {
						slog.WarnContext(traceCtx, "catalog refresh failed", "error", e)
					}
				} else {
					span.SetStatus(codes.Ok, "refreshed catalog snapshot")
				}
				span.End()
			case <-ctx.Done():
				return
			}
		}
	}()
}
