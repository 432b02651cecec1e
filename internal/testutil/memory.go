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

package test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
)

// MemoryRepository is an in-memory services.MovieRepository. Every value
// crossing its boundary is copied, so callers cannot alias stored records.
// Setting Err makes every call fail with it.
type MemoryRepository struct {
	mu        sync.Mutex
	movies    map[string]*model.Movie
	approvals []*model.ContentApproval
	Err       error
	Calls     int // Number of ListMovies calls that reached the store.
}

// NewMemoryRepository returns a repository seeded with movies as given.
func NewMemoryRepository(movies ...*model.Movie) *MemoryRepository {
	r := &MemoryRepository{movies: make(map[string]*model.Movie)}
	for _, m := range movies {
		r.movies[m.Id] = cloneMovie(m)
	}
	return r
}

func (r *MemoryRepository) ListMovies(_ context.Context) ([]*model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	if r.Err != nil {
		return nil, r.Err
	}
	return r.sorted(), nil
}

func (r *MemoryRepository) GetMovie(_ context.Context, id string) (*model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	m, ok := r.movies[id]
	if !ok {
		return nil, nil
	}
	return cloneMovie(m), nil
}

func (r *MemoryRepository) ListByFlag(_ context.Context, flag model.Flag) ([]*model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return services.ShelfOrder(r.sorted(), flag), nil
}

func (r *MemoryRepository) ListByGenre(_ context.Context, genre string) ([]*model.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return services.GenreOrder(r.sorted(), genre), nil
}

func (r *MemoryRepository) CreateMovie(_ context.Context, movie *model.Movie, submittedBy string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return "", r.Err
	}
	if _, ok := r.movies[movie.Id]; ok {
		return "", fmt.Errorf("movie %s already exists", movie.Id)
	}
	r.movies[movie.Id] = cloneMovie(movie)
	if movie.Status == model.StatusPending {
		r.approvals = append(r.approvals, model.NewContentApproval(movie.Id, submittedBy))
	}
	return movie.Id, nil
}

func (r *MemoryRepository) UpdateMovie(_ context.Context, id string, movie *model.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.movies[id]; !ok {
		return fmt.Errorf("movie %s: %w", id, services.ErrNotFound)
	}
	stored := cloneMovie(movie)
	stored.Id = id
	r.movies[id] = stored
	return nil
}

func (r *MemoryRepository) DeleteMovie(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.movies[id]; !ok {
		return fmt.Errorf("movie %s: %w", id, services.ErrNotFound)
	}
	delete(r.movies, id)
	r.approvals = slices.DeleteFunc(r.approvals, func(a *model.ContentApproval) bool { return a.MovieId == id })
	return nil
}

func (r *MemoryRepository) SetModerationStatus(_ context.Context, id string, status model.Status, moderatorId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	m, ok := r.movies[id]
	if !ok {
		return fmt.Errorf("movie %s: %w", id, services.ErrNotFound)
	}
	at := time.Now().UTC()
	m.Status = status
	m.ApprovedBy = model.Ptr(moderatorId)
	m.ApprovedAt = model.Ptr(at)
	m.UpdateDate = at
	for _, a := range r.approvals {
		if a.MovieId == id {
			a.Status = status
			a.ReviewedBy = model.Ptr(moderatorId)
			a.ReviewedAt = model.Ptr(at)
		}
	}
	return nil
}

func (r *MemoryRepository) ListApprovals(_ context.Context, status model.Status) ([]*model.ContentApproval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]*model.ContentApproval, 0)
	for i := len(r.approvals) - 1; i >= 0; i-- {
		a := r.approvals[i]
		if status == "" || a.Status == status {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

// Approvals returns a copy of every approval record in insertion order.
func (r *MemoryRepository) Approvals() []model.ContentApproval {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ContentApproval, 0, len(r.approvals))
	for _, a := range r.approvals {
		out = append(out, *a)
	}
	return out
}

// Len is the number of stored movies.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movies)
}

func (r *MemoryRepository) sorted() []*model.Movie {
	out := make([]*model.Movie, 0, len(r.movies))
	for _, m := range r.movies {
		out = append(out, cloneMovie(m))
	}
	slices.SortFunc(out, func(a, b *model.Movie) int {
		if c := b.CreateDate.Compare(a.CreateDate); c != 0 {
			return c
		}
		return compareStrings(a.Id, b.Id)
	})
	return out
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cloneMovie(m *model.Movie) *model.Movie {
	c := *m
	c.Cast = slices.Clone(m.Cast)
	return &c
}

// MemoryEventStore is an in-memory services.EventStore.
type MemoryEventStore struct {
	mu     sync.Mutex
	Events []*model.AnalyticsEvent
	Err    error
}

func (s *MemoryEventStore) Insert(_ context.Context, event *model.AnalyticsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Events = append(s.Events, event)
	return nil
}

func (s *MemoryEventStore) CountByAction(_ context.Context) (map[model.Action]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	counts := make(map[model.Action]int64)
	for _, e := range s.Events {
		counts[e.Action]++
	}
	return counts, nil
}

// Recent returns the newest events first, at most limit.
func (s *MemoryEventStore) Recent(_ context.Context, limit int) ([]*model.AnalyticsEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*model.AnalyticsEvent, 0, limit)
	for i := len(s.Events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.Events[i])
	}
	return out, nil
}

// MemoryObject is one object held by MemoryObjectStore.
type MemoryObject struct {
	ContentType string
	Data        []byte
}

// MemoryObjectStore is an in-memory services.ObjectStore keyed by "bucket/object".
type MemoryObjectStore struct {
	mu       sync.Mutex
	Objects  map[string]MemoryObject
	ReadErr  error
	WriteErr error
}

func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{Objects: make(map[string]MemoryObject)}
}

// Put seeds an object.
func (s *MemoryObjectStore) Put(bucket string, object string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Objects[bucket+"/"+object] = MemoryObject{Data: data}
}

func (s *MemoryObjectStore) Read(_ context.Context, bucket string, object string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	o, ok := s.Objects[bucket+"/"+object]
	if !ok {
		return nil, fmt.Errorf("gs://%s/%s: object doesn't exist", bucket, object)
	}
	return o.Data, nil
}

func (s *MemoryObjectStore) Exists(_ context.Context, bucket string, object string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReadErr != nil {
		return false, s.ReadErr
	}
	_, ok := s.Objects[bucket+"/"+object]
	return ok, nil
}

func (s *MemoryObjectStore) Write(_ context.Context, bucket string, object string, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	s.Objects[bucket+"/"+object] = MemoryObject{ContentType: contentType, Data: slices.Clone(data)}
	return nil
}

// MemorySnapshotStore is an in-memory services.SnapshotStore. TTLs are recorded, not enforced.
type MemorySnapshotStore struct {
	mu      sync.Mutex
	Values  map[string][]byte
	LastTTL time.Duration
	Err     error
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{Values: make(map[string][]byte)}
}

func (s *MemorySnapshotStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	v, ok := s.Values[key]
	if !ok {
		return nil, services.ErrCacheMiss
	}
	return v, nil
}

func (s *MemorySnapshotStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Values[key] = value
	s.LastTTL = ttl
	return nil
}

func (s *MemorySnapshotStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, k := range keys {
		delete(s.Values, k)
	}
	return nil
}

// Has reports whether key is present.
func (s *MemorySnapshotStore) Has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Values[key]
	return ok
}

// FakeSigner is a services.URLSigner producing predictable URLs.
type FakeSigner struct {
	Err error
}

func (s *FakeSigner) SignURL(_ context.Context, bucket string, object string, expires time.Time) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return fmt.Sprintf("https://signed.example/%s/%s?expires=%d", bucket, object, expires.Unix()), nil
}
