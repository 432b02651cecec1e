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
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/middleware"
)

// MaxBulkBytes bounds the body of a bulk import request.
const MaxBulkBytes = 10 * 1024 * 1024

func (s *Server) adminMovies(c *gin.Context) {
	movies, err := s.Repository.ListMovies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if status := c.Query("status"); status != "" {
		if !model.Status(status).Valid() {
			badRequest(c, "unknown status: "+status)
			return
		}
		filtered := make([]*model.Movie, 0, len(movies))
		for _, m := range movies {
			if m.Status == model.Status(status) {
				filtered = append(filtered, m)
			}
		}
		movies = filtered
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies, "total": len(movies)})
}

func (s *Server) createMovie(c *gin.Context) {
	var sub upload.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, "invalid movie: "+err.Error())
		return
	}
	id, err := s.Uploader.Submit(c.Request.Context(), sub, c.GetString(middleware.ContextUserId))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id, "status": model.StatusPending})
}

func (s *Server) updateMovie(c *gin.Context) {
	var sub upload.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		badRequest(c, "invalid movie: "+err.Error())
		return
	}
	movie, err := s.Uploader.Update(c.Request.Context(), c.Param("id"), sub)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

func (s *Server) deleteMovie(c *gin.Context) {
	if err := s.Moderation.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) bulkImport(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBulkBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "bulk file too large"})
			return
		}
		badRequest(c, "failed to read body")
		return
	}
	subs, err := upload.DecodeSubmissions(body)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	result := s.Uploader.BulkImport(c.Request.Context(), subs)
	c.JSON(http.StatusOK, result)
}

func (s *Server) bulkTemplate(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="movie_template.json"`)
	c.IndentedJSON(http.StatusOK, model.GetBulkUploadTemplate())
}

func (s *Server) approve(c *gin.Context) {
	s.review(c, model.StatusApproved)
}

func (s *Server) reject(c *gin.Context) {
	s.review(c, model.StatusRejected)
}

func (s *Server) review(c *gin.Context, status model.Status) {
	id := c.Param("id")
	if err := s.Moderation.Review(c.Request.Context(), id, status, c.GetString(middleware.ContextUserId)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": status})
}

func (s *Server) approvals(c *gin.Context) {
	queue, err := s.Moderation.Queue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approvals": queue})
}

func (s *Server) uploadPoster(c *gin.Context) {
	header, err := c.FormFile("poster")
	if err != nil {
		badRequest(c, "missing poster file")
		return
	}
	if header.Size > services.MaxPosterBytes {
		respondError(c, services.ErrPosterTooLarge)
		return
	}
	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, err)
		return
	}
	url, err := s.Posters.Upload(c.Request.Context(), header.Filename, content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
