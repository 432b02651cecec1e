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

// Package model defines the core data structures for the storefront.
// This file, `persistent.go`, holds the records that are owned by the
// external store: movies, their moderation queue entries and the analytics
// events recorded while viewers browse, stream and download.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the moderation state of a movie.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether a moderator may move a movie from s to next.
// Only pending movies can be reviewed and a review always ends in approved or rejected.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

// Flag names one of the curated shelves a movie can be placed on.
type Flag string

const (
	FlagFeatured Flag = "featured"
	FlagPopular  Flag = "popular"
	FlagLatest   Flag = "latest"
)

// ParseFlag converts a shelf name into a Flag.
func ParseFlag(in string) (Flag, bool) {
	switch f := Flag(in); f {
	case FlagFeatured, FlagPopular, FlagLatest:
		return f, true
	}
	return "", false
}

// Movie is the sole entity of consequence in the catalog. Optional attributes
// are pointers; a nil pointer means the value was never supplied.
type Movie struct {
	Id          string     `json:"id"`                     // Opaque, immutable identifier.
	Title       string     `json:"title"`                  // Required display title.
	Description *string    `json:"description,omitempty"`  // Free-text synopsis.
	Genre       string     `json:"genre"`                  // Required single genre.
	Director    *string    `json:"director,omitempty"`     // Credited director.
	Cast        []string   `json:"cast,omitempty"`         // Credited order, never blank entries.
	ReleaseYear *int       `json:"release_year,omitempty"` // Conventionally 1900..currentYear+5.
	Duration    *int       `json:"duration,omitempty"`     // Runtime in minutes.
	PosterUrl   *string    `json:"poster_url,omitempty"`
	TrailerUrl  *string    `json:"trailer_url,omitempty"`
	VideoUrl    *string    `json:"video_url,omitempty"`
	DownloadUrl *string    `json:"download_url,omitempty"`
	Rating      *float64   `json:"rating,omitempty"` // Conventionally 0..10.
	Featured    bool       `json:"featured"`
	Popular     bool       `json:"popular"`
	Latest      bool       `json:"latest"`
	Status      Status     `json:"status"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	CreateDate  time.Time  `json:"created_at"`
	UpdateDate  time.Time  `json:"updated_at"`
}

// NewMovie returns a movie with a fresh identifier and store timestamps set to now.
func NewMovie() *Movie {
	now := time.Now().UTC()
	return &Movie{
		Id:         uuid.NewString(),
		Cast:       make([]string, 0),
		Status:     StatusPending,
		CreateDate: now,
		UpdateDate: now,
	}
}

// HasFlag reports whether the movie sits on the given shelf.
func (m *Movie) HasFlag(f Flag) bool {
	switch f {
	case FlagFeatured:
		return m.Featured
	case FlagPopular:
		return m.Popular
	case FlagLatest:
		return m.Latest
	}
	return false
}

// ReplaceMutable copies every editable attribute of src onto m. The identifier,
// moderation state and creation date are left untouched.
func (m *Movie) ReplaceMutable(src *Movie) {
	m.Title = src.Title
	m.Description = src.Description
	m.Genre = src.Genre
	m.Director = src.Director
	m.Cast = append([]string(nil), src.Cast...)
	m.ReleaseYear = src.ReleaseYear
	m.Duration = src.Duration
	m.PosterUrl = src.PosterUrl
	m.TrailerUrl = src.TrailerUrl
	m.VideoUrl = src.VideoUrl
	m.DownloadUrl = src.DownloadUrl
	m.Rating = src.Rating
	m.Featured = src.Featured
	m.Popular = src.Popular
	m.Latest = src.Latest
	m.UpdateDate = time.Now().UTC()
}

// ContentApproval is the moderation queue record created for every movie
// that enters the catalog through the ordinary (pending) path.
type ContentApproval struct {
	Id          string     `json:"id"`
	MovieId     string     `json:"movie_id"`
	Status      Status     `json:"status"`
	SubmittedBy string     `json:"submitted_by"`
	SubmittedAt time.Time  `json:"submitted_at"`
	ReviewedBy  *string    `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes *string    `json:"review_notes,omitempty"`
	Movie       *Movie     `json:"movie,omitempty"` // Populated by queue listings.
}

// NewContentApproval opens a pending review for the given movie.
func NewContentApproval(movieId string, submittedBy string) *ContentApproval {
	return &ContentApproval{
		Id:          uuid.NewString(),
		MovieId:     movieId,
		Status:      StatusPending,
		SubmittedBy: submittedBy,
		SubmittedAt: time.Now().UTC(),
	}
}

// Action is the kind of viewer interaction recorded by analytics.
type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionStream   Action = "stream"
	ActionSearch   Action = "search"
)

// ParseAction converts an action name into an Action.
func ParseAction(in string) (Action, bool) {
	switch a := Action(in); a {
	case ActionView, ActionDownload, ActionStream, ActionSearch:
		return a, true
	}
	return "", false
}

// AnalyticsEvent is one append-only row in the analytics table.
type AnalyticsEvent struct {
	Id         string    `json:"id" bigquery:"id"`
	UserId     string    `json:"user_id,omitempty" bigquery:"user_id"`
	MovieId    string    `json:"movie_id,omitempty" bigquery:"movie_id"`
	Action     Action    `json:"action" bigquery:"action"`
	Metadata   string    `json:"metadata,omitempty" bigquery:"metadata"` // JSON encoded details (quality, query, results).
	UserAgent  string    `json:"user_agent,omitempty" bigquery:"user_agent"`
	CreateDate time.Time `json:"created_at" bigquery:"created_at"`
}

// NewAnalyticsEvent stamps an event with an identifier and the current time.
func NewAnalyticsEvent(action Action, movieId string) *AnalyticsEvent {
	return &AnalyticsEvent{
		Id:         uuid.NewString(),
		MovieId:    movieId,
		Action:     action,
		CreateDate: time.Now().UTC(),
	}
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}
