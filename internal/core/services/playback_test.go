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
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	test "github.com/jaycherian/gcp-go-movie-storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func playback(signer services.URLSigner) *services.PlaybackService {
	return &services.PlaybackService{Signer: signer, Expiry: 30 * time.Minute, Now: func() time.Time { return base }}
}

func TestStreamURLSignsStorageObjects(t *testing.T) {
	m := movie("m", "M", "Drama", 0)
	m.VideoUrl = model.Ptr("gs://movies/full/m.mp4")

	link, err := playback(&test.FakeSigner{}).StreamURL(context.Background(), m)
	assert.NoError(t, err)
	expires := base.Add(30 * time.Minute)
	assert.Equal(t, expires, *link.ExpiresAt)
	assert.Equal(t, "https://signed.example/movies/full/m.mp4?expires=1727785800", link.Url)
}

func TestDownloadURLFallsBackToVideo(t *testing.T) {
	m := movie("m", "M", "Drama", 0)
	m.VideoUrl = model.Ptr("https://storage.googleapis.com/movies/m.mp4")

	link, err := playback(&test.FakeSigner{}).DownloadURL(context.Background(), m)
	assert.NoError(t, err)
	assert.Contains(t, link.Url, "signed.example/movies/m.mp4")

	m.DownloadUrl = model.Ptr("gs://downloads/m-1080p.mp4")
	link, err = playback(&test.FakeSigner{}).DownloadURL(context.Background(), m)
	assert.NoError(t, err)
	assert.Contains(t, link.Url, "signed.example/downloads/m-1080p.mp4")
}

func TestPlaybackExternalAndMissing(t *testing.T) {
	m := movie("m", "M", "Drama", 0)

	_, err := playback(&test.FakeSigner{}).StreamURL(context.Background(), m)
	assert.ErrorIs(t, err, services.ErrNoAsset)

	m.VideoUrl = model.Ptr("https://cdn.example/m.mp4")
	link, err := playback(&test.FakeSigner{}).StreamURL(context.Background(), m)
	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example/m.mp4", link.Url)
	assert.Nil(t, link.ExpiresAt)

	m.VideoUrl = model.Ptr("gs://movies/m.mp4")
	_, err = playback(&test.FakeSigner{Err: errors.New("no key")}).StreamURL(context.Background(), m)
	assert.EqualError(t, err, "no key")
}

func TestDefaultLinkLifetime(t *testing.T) {
	m := movie("m", "M", "Drama", 0)
	m.VideoUrl = model.Ptr("gs://movies/m.mp4")
	svc := &services.PlaybackService{Signer: &test.FakeSigner{}, Now: func() time.Time { return base }}

	link, err := svc.StreamURL(context.Background(), m)
	assert.NoError(t, err)
	assert.Equal(t, base.Add(services.DefaultLinkLifetime), *link.ExpiresAt)
}

func TestParseGCSURL(t *testing.T) {
	tests := []struct {
		in     string
		bucket string
		object string
		ok     bool
	}{
		{"gs://b/o.mp4", "b", "o.mp4", true},
		{"gs://b/dir/o.mp4", "b", "dir/o.mp4", true},
		{"https://storage.googleapis.com/b/o.mp4?x=1", "b", "o.mp4", true},
		{"https://storage.mtls.cloud.google.com/b/o.mp4#t=10", "b", "o.mp4", true},
		{"gs://b", "", "", false},
		{"gs:///o.mp4", "", "", false},
		{"https://cdn.example/b/o.mp4", "", "", false},
	}
	for _, tt := range tests {
		bucket, object, ok := services.ParseGCSURL(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.bucket, bucket, tt.in)
		assert.Equal(t, tt.object, object, tt.in)
	}
}
