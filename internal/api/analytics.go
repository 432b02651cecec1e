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
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/middleware"
)

// EventRequest is the body of POST /analytics/events.
type EventRequest struct {
	Action   string         `json:"action" binding:"required"`
	MovieId  string         `json:"movie_id"`
	UserId   string         `json:"user_id"`
	Metadata map[string]any `json:"metadata"`
}

func (s *Server) trackEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid event: "+err.Error())
		return
	}
	action, ok := model.ParseAction(req.Action)
	if !ok {
		badRequest(c, "unknown action: "+req.Action)
		return
	}
	if req.UserId != "" {
		c.Set(middleware.ContextUserId, req.UserId)
	}
	s.track(c, action, req.MovieId, req.Metadata)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (s *Server) stats(c *gin.Context) {
	stats, err := s.Analytics.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) recentEvents(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			badRequest(c, "invalid limit: "+raw)
			return
		}
	}
	events, err := s.Analytics.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
