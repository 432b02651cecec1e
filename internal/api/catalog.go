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
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/middleware"
)

func (s *Server) browse(c *gin.Context) {
	spec, err := ParseFilterSpec(c.Request.URL.Query(), s.now())
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	query := c.Query(ParamQuery)
	movies, err := s.Catalog.Browse(c.Request.Context(), query, spec)
	if err != nil {
		respondError(c, err)
		return
	}
	if strings.TrimSpace(query) != "" {
		s.track(c, model.ActionSearch, "", map[string]any{"query": query, "results": len(movies)})
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies, "total": len(movies)})
}

func (s *Server) suggest(c *gin.Context) {
	movies, err := s.Catalog.Suggest(c.Request.Context(), c.Query(ParamQuery))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": movies})
}

func (s *Server) genres(c *gin.Context) {
	genres, err := s.Catalog.Genres(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"genres": genres})
}

func (s *Server) shelf(c *gin.Context) {
	flag, ok := model.ParseFlag(c.Param("flag"))
	if !ok {
		badRequest(c, "unknown shelf: "+c.Param("flag"))
		return
	}
	movies, err := s.Catalog.Shelf(c.Request.Context(), flag)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

func (s *Server) byGenre(c *gin.Context) {
	movies, err := s.Catalog.ByGenre(c.Request.Context(), c.Param("genre"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

func (s *Server) movie(c *gin.Context) {
	movie, ok := s.lookup(c)
	if !ok {
		return
	}
	s.track(c, model.ActionView, movie.Id, nil)
	c.JSON(http.StatusOK, movie)
}

func (s *Server) stream(c *gin.Context) {
	movie, ok := s.lookup(c)
	if !ok {
		return
	}
	link, err := s.Playback.StreamURL(c.Request.Context(), movie)
	if err != nil {
		respondError(c, err)
		return
	}
	s.track(c, model.ActionStream, movie.Id, nil)
	c.JSON(http.StatusOK, link)
}

func (s *Server) download(c *gin.Context) {
	movie, ok := s.lookup(c)
	if !ok {
		return
	}
	link, err := s.Playback.DownloadURL(c.Request.Context(), movie)
	if err != nil {
		respondError(c, err)
		return
	}
	var metadata map[string]any
	if quality := c.Query("quality"); quality != "" {
		metadata = map[string]any{"quality": quality}
	}
	s.track(c, model.ActionDownload, movie.Id, metadata)
	c.JSON(http.StatusOK, link)
}

func (s *Server) downloadOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"options": model.GetDownloadOptions()})
}

// lookup resolves :id to a publicly visible movie, answering 404 itself.
func (s *Server) lookup(c *gin.Context) (*model.Movie, bool) {
	movie, err := s.Catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if movie == nil {
		notFound(c)
		return nil, false
	}
	return movie, true
}

// track records a viewer interaction attributed to the caller, if known.
func (s *Server) track(c *gin.Context, action model.Action, movieId string, metadata map[string]any) {
	event := model.NewAnalyticsEvent(action, movieId)
	event.UserId = c.GetString(middleware.ContextUserId)
	event.UserAgent = c.Request.UserAgent()
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			event.Metadata = string(raw)
		}
	}
	s.Analytics.Track(c.Request.Context(), event)
}
