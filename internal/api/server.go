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
// Package api exposes the storefront over HTTP with gin. Public routes
// serve the catalog, playback links and analytics collection; the admin
// routes behind a bearer token manage movies, moderation, posters and the
// dashboard.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/middleware"
)

// Server holds the services the handlers delegate to.
type Server struct {
	Repository services.MovieRepository // Unfiltered store, used by the admin listing.
	Catalog    *services.CatalogService
	Uploader   *upload.Uploader
	Moderation *services.ModerationService
	Analytics  *services.AnalyticsService
	Playback   *services.PlaybackService
	Posters    *services.PosterService
	Auth       *middleware.Authenticator
	AdminRoles []string
	Now        func() time.Time // Clock for filter defaults; nil means time.Now.
}

func (s *Server) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Register mounts every route on r, normally the "/api/v1" group.
func (s *Server) Register(r *gin.RouterGroup) {
	movies := r.Group("/movies")
	{
		movies.GET("", s.browse)
		movies.GET("/suggest", s.suggest)
		movies.GET("/genres", s.genres)
		movies.GET("/shelves/:flag", s.shelf)
		movies.GET("/:id", s.movie)
		movies.GET("/:id/stream", s.stream)
		movies.GET("/:id/download", s.download)
	}
	r.GET("/genres/:genre/movies", s.byGenre)
	r.GET("/downloads/options", s.downloadOptions)
	r.POST("/analytics/events", s.trackEvent)

	admin := r.Group("/admin", s.Auth.Authenticate(), middleware.RequireRole(s.AdminRoles...))
	{
		admin.GET("/movies", s.adminMovies)
		admin.POST("/movies", s.createMovie)
		admin.PUT("/movies/:id", s.updateMovie)
		admin.DELETE("/movies/:id", s.deleteMovie)
		admin.POST("/movies/bulk", s.bulkImport)
		admin.GET("/movies/bulk/template", s.bulkTemplate)
		admin.POST("/movies/:id/approve", s.approve)
		admin.POST("/movies/:id/reject", s.reject)
		admin.GET("/approvals", s.approvals)
		admin.POST("/posters", s.uploadPoster)
		admin.GET("/stats", s.stats)
		admin.GET("/analytics/recent", s.recentEvents)
	}
}
