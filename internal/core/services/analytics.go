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
// This file, `analytics.go`, records viewer interactions (views, streams,
// downloads and searches) in an append-only BigQuery table and aggregates
// them for the admin dashboard.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"google.golang.org/api/iterator"
)

// DefaultRecentEvents is how many events the dashboard activity feed shows.
const DefaultRecentEvents = 20

// EventStore persists and aggregates analytics events.
type EventStore interface {
	Insert(ctx context.Context, event *model.AnalyticsEvent) error
	CountByAction(ctx context.Context) (map[model.Action]int64, error)
	Recent(ctx context.Context, limit int) ([]*model.AnalyticsEvent, error)
}

// BigQueryEventStore keeps events in a BigQuery table. Inserts use the
// streaming inserter; events are never updated.
type BigQueryEventStore struct {
	BigqueryClient *bigquery.Client
	DatasetName    string
	EventTable     string
}

// GetFQN returns the dotted, fully qualified name of the analytics table.
func (s *BigQueryEventStore) GetFQN() string {
	fqn := s.BigqueryClient.Dataset(s.DatasetName).Table(s.EventTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

func (s *BigQueryEventStore) Insert(ctx context.Context, event *model.AnalyticsEvent) error {
	inserter := s.BigqueryClient.Dataset(s.DatasetName).Table(s.EventTable).Inserter()
	return inserter.Put(ctx, event)
}

func (s *BigQueryEventStore) CountByAction(ctx context.Context) (map[model.Action]int64, error) {
	itr, err := s.BigqueryClient.Query(fmt.Sprintf(BqAnalyticsStats, s.GetFQN())).Read(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[model.Action]int64)
	for {
		var row struct {
			Action string `bigquery:"action"`
			Total  int64  `bigquery:"total"`
		}
		err = itr.Next(&row)
		if errors.Is(err, iterator.Done) {
			return counts, nil
		}
		if err != nil {
			return nil, err
		}
		counts[model.Action(row.Action)] = row.Total
	}
}

func (s *BigQueryEventStore) Recent(ctx context.Context, limit int) ([]*model.AnalyticsEvent, error) {
	q := s.BigqueryClient.Query(fmt.Sprintf(BqRecentEvents, s.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "limit", Value: limit}}
	itr, err := q.Read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*model.AnalyticsEvent, 0, limit)
	for {
		event := &model.AnalyticsEvent{}
		err = itr.Next(event)
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
}

// AnalyticsService is the entry point for recording and reporting viewer activity.
type AnalyticsService struct {
	Events EventStore
}

// NewAnalyticsService returns an AnalyticsService over events.
func NewAnalyticsService(events EventStore) *AnalyticsService {
	return &AnalyticsService{Events: events}
}

// Track records an event. A failure is logged and swallowed so that a
// viewer's request never fails because analytics is unavailable.
func (s *AnalyticsService) Track(ctx context.Context, event *model.AnalyticsEvent) {
	if err := s.Events.Insert(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to track analytics event", "action", event.Action, "movie_id", event.MovieId, "error", err)
	}
}

// Stats returns the per-action totals.
func (s *AnalyticsService) Stats(ctx context.Context) (*model.AnalyticsStats, error) {
	counts, err := s.Events.CountByAction(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analytics: %w", err)
	}
	stats := &model.AnalyticsStats{}
	for action, count := range counts {
		stats.Add(action, count)
	}
	return stats, nil
}

// Recent returns the newest events; a non-positive limit uses DefaultRecentEvents.
func (s *AnalyticsService) Recent(ctx context.Context, limit int) ([]*model.AnalyticsEvent, error) {
	if limit <= 0 {
		limit = DefaultRecentEvents
	}
	events, err := s.Events.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics events: %w", err)
	}
	return events, nil
}
