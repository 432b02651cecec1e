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
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAnalyticsStats(t *testing.T) {
	ctx := context.Background()
	events := &test.MemoryEventStore{}
	svc := services.NewAnalyticsService(events)

	for _, action := range []model.Action{model.ActionView, model.ActionView, model.ActionStream, model.ActionSearch} {
		svc.Track(ctx, model.NewAnalyticsEvent(action, "m1"))
	}

	stats, err := svc.Stats(ctx)
	assert.NoError(t, err)
	assert.Equal(t, model.AnalyticsStats{TotalViews: 2, TotalStreams: 1, TotalSearches: 1}, *stats)
}

func TestAnalyticsRecent(t *testing.T) {
	ctx := context.Background()
	events := &test.MemoryEventStore{}
	svc := services.NewAnalyticsService(events)
	for i := 0; i < services.DefaultRecentEvents+5; i++ {
		svc.Track(ctx, model.NewAnalyticsEvent(model.ActionView, "m1"))
	}
	last := model.NewAnalyticsEvent(model.ActionDownload, "m2")
	svc.Track(ctx, last)

	recent, err := svc.Recent(ctx, 0)
	assert.NoError(t, err)
	assert.Len(t, recent, services.DefaultRecentEvents)
	assert.Equal(t, last.Id, recent[0].Id)

	recent, err = svc.Recent(ctx, 3)
	assert.NoError(t, err)
	assert.Len(t, recent, 3)
}

func TestAnalyticsTrackSwallowsFailures(t *testing.T) {
	events := &test.MemoryEventStore{Err: errors.New("quota exceeded")}
	svc := services.NewAnalyticsService(events)

	assert.NotPanics(t, func() { svc.Track(context.Background(), model.NewAnalyticsEvent(model.ActionView, "m1")) })
	_, err := svc.Stats(context.Background())
	assert.ErrorContains(t, err, "quota exceeded")
}
