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
// This file, `cache.go`, adds a read-through snapshot of the full movie list
// in front of any MovieRepository. Browsing and search work on that snapshot,
// so most page views never reach the backing store. Every write drops the
// snapshot; the next read or the refresh workflow rebuilds it.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	goredis "github.com/redis/go-redis/v9"
)

// SnapshotKey is the cache key of the serialized movie list.
const SnapshotKey = "storefront:movies:snapshot"

// ErrCacheMiss is returned by a SnapshotStore when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// SnapshotStore is the minimal key/value surface the cache needs.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// RedisSnapshotStore adapts a go-redis client to SnapshotStore.
type RedisSnapshotStore struct {
	c *goredis.Client
}

// NewRedisSnapshotStore wraps a go-redis client.
func NewRedisSnapshotStore(c *goredis.Client) *RedisSnapshotStore {
	return &RedisSnapshotStore{c: c}
}

func (s *RedisSnapshotStore) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := s.c.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (s *RedisSnapshotStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.c.Set(ctx, key, value, ttl).Err()
}

func (s *RedisSnapshotStore) Del(ctx context.Context, keys ...string) error {
	return s.c.Del(ctx, keys...).Err()
}

// CachedMovieRepository serves ListMovies from a snapshot and derives the
// shelf and genre listings from it. Single lookups and writes go to the
// backing repository. A cache outage degrades to direct reads.
//
// A refresh that overlaps a write may have read the store before the write
// landed and then store its snapshot after the write dropped the old one.
// Every finished write bumps a counter ahead of the drop; a refresh that sees
// the counter move while it worked drops the snapshot it just stored.
type CachedMovieRepository struct {
	MovieRepository               // The backing store.
	Store           SnapshotStore // Where the snapshot lives.
	TTL             time.Duration // Snapshot lifetime; zero keeps it until the next write.

	writes atomic.Int64 // Writes finished by this process.
}

// NewCachedMovieRepository wraps repo with a snapshot kept in store.
func NewCachedMovieRepository(repo MovieRepository, store SnapshotStore, ttl time.Duration) *CachedMovieRepository {
	return &CachedMovieRepository{MovieRepository: repo, Store: store, TTL: ttl}
}

// ListMovies returns the cached snapshot, loading it on a miss.
func (c *CachedMovieRepository) ListMovies(ctx context.Context) ([]*model.Movie, error) {
	b, err := c.Store.Get(ctx, SnapshotKey)
	if err == nil {
		var movies []*model.Movie
		if err = json.Unmarshal(b, &movies); err == nil {
			return movies, nil
		}
		slog.WarnContext(ctx, "discarding unreadable movie snapshot", "error", err)
	} else if !errors.Is(err, ErrCacheMiss) {
		slog.WarnContext(ctx, "movie snapshot unavailable", "error", err)
	}
	return c.Refresh(ctx)
}

// Refresh reloads the snapshot from the backing store and returns it.
func (c *CachedMovieRepository) Refresh(ctx context.Context) ([]*model.Movie, error) {
	started := c.writes.Load()
	movies, err := c.MovieRepository.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(movies)
	if err != nil {
		return nil, fmt.Errorf("failed to encode movie snapshot: %w", err)
	}
	if err = c.Store.Set(ctx, SnapshotKey, b, c.TTL); err != nil {
		slog.WarnContext(ctx, "failed to store movie snapshot", "error", err)
		return movies, nil
	}
	if c.writes.Load() != started {
		slog.DebugContext(ctx, "movie snapshot raced a write, dropping it")
		c.invalidate(ctx)
	}
	return movies, nil
}

// ListByFlag derives a shelf from the snapshot.
func (c *CachedMovieRepository) ListByFlag(ctx context.Context, flag model.Flag) ([]*model.Movie, error) {
	movies, err := c.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	return ShelfOrder(movies, flag), nil
}

// ListByGenre derives a genre listing from the snapshot.
func (c *CachedMovieRepository) ListByGenre(ctx context.Context, genre string) ([]*model.Movie, error) {
	movies, err := c.ListMovies(ctx)
	if err != nil {
		return nil, err
	}
	return GenreOrder(movies, genre), nil
}

func (c *CachedMovieRepository) CreateMovie(ctx context.Context, movie *model.Movie, submittedBy string) (string, error) {
	defer c.endWrite(ctx)
	return c.MovieRepository.CreateMovie(ctx, movie, submittedBy)
}

func (c *CachedMovieRepository) UpdateMovie(ctx context.Context, id string, movie *model.Movie) error {
	defer c.endWrite(ctx)
	return c.MovieRepository.UpdateMovie(ctx, id, movie)
}

func (c *CachedMovieRepository) DeleteMovie(ctx context.Context, id string) error {
	defer c.endWrite(ctx)
	return c.MovieRepository.DeleteMovie(ctx, id)
}

func (c *CachedMovieRepository) SetModerationStatus(ctx context.Context, id string, status model.Status, moderatorId string) error {
	defer c.endWrite(ctx)
	return c.MovieRepository.SetModerationStatus(ctx, id, status, moderatorId)
}

// endWrite drops the snapshot once the write has landed.
func (c *CachedMovieRepository) endWrite(ctx context.Context) {
	c.writes.Add(1)
	c.invalidate(ctx)
}

func (c *CachedMovieRepository) invalidate(ctx context.Context) {
	if err := c.Store.Del(ctx, SnapshotKey); err != nil {
		slog.WarnContext(ctx, "failed to drop movie snapshot", "error", err)
	}
}
