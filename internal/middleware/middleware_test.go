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
package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/middleware"
	"github.com/stretchr/testify/assert"
	zassert "github.com/zeebo/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protected(auth *middleware.Authenticator) *gin.Engine {
	r := gin.New()
	r.GET("/admin", auth.Authenticate(), middleware.RequireRole("admin", "moderator"), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(middleware.ContextUserId))
	})
	return r
}

func get(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticateAcceptsValidToken(t *testing.T) {
	auth := middleware.NewAuthenticator(cloud.Auth{JwtSecret: "s3cret", Issuer: "storefront"})
	token, err := auth.Sign("mod-1", "moderator", time.Hour)
	assert.NoError(t, err)

	w := get(protected(auth), "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "mod-1", w.Body.String())
}

func TestAuthenticateRejects(t *testing.T) {
	auth := middleware.NewAuthenticator(cloud.Auth{JwtSecret: "s3cret", Issuer: "storefront"})
	other := middleware.NewAuthenticator(cloud.Auth{JwtSecret: "other", Issuer: "storefront"})
	wrongIssuer := middleware.NewAuthenticator(cloud.Auth{JwtSecret: "s3cret", Issuer: "elsewhere"})

	forged, _ := other.Sign("mod-1", "admin", time.Hour)
	expired, _ := auth.Sign("mod-1", "admin", -time.Minute)
	foreign, _ := wrongIssuer.Sign("mod-1", "admin", time.Hour)
	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x", "role": "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, header := range map[string]string{
		"missing":   "",
		"scheme":    "Basic abc",
		"empty":     "Bearer ",
		"forged":    "Bearer " + forged,
		"expired":   "Bearer " + expired,
		"issuer":    "Bearer " + foreign,
		"alg none":  "Bearer " + unsigned,
		"malformed": "Bearer not.a.token",
	} {
		w := get(protected(auth), header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, name)
	}
}

func TestRequireRoleForbids(t *testing.T) {
	auth := middleware.NewAuthenticator(cloud.Auth{JwtSecret: "s3cret"})
	token, _ := auth.Sign("viewer-1", "viewer", time.Hour)

	w := get(protected(auth), "Bearer "+token)
	zassert.Equal(t, w.Code, http.StatusForbidden)
}

func TestAuthenticatorWithoutSecret(t *testing.T) {
	auth := middleware.NewAuthenticator(cloud.Auth{})
	_, err := auth.Sign("a", "admin", time.Hour)
	assert.ErrorIs(t, err, middleware.ErrNoSecret)
	assert.Equal(t, http.StatusUnauthorized, get(protected(auth), "Bearer abc").Code)
}

func limited(l *middleware.IPRateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(l.Handler())
	r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestRateLimiterPerClient(t *testing.T) {
	l := middleware.NewIPRateLimiter(cloud.RateLimit{RequestsPerMinute: 1, Burst: 2})
	r := limited(l)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.RemoteAddr = ip + ":5000"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, send("10.0.0.2"))

	assert.Equal(t, 2, l.Sweep(time.Now().Add(-time.Minute)))
	assert.Equal(t, 0, l.Sweep(time.Now().Add(time.Minute)))
}

func TestRateLimiterDisabled(t *testing.T) {
	l := middleware.NewIPRateLimiter(cloud.RateLimit{})
	assert.Nil(t, l)
	r := limited(l)
	for i := 0; i < 100; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}
