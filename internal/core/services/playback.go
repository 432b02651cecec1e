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
// This file, `playback.go`, turns a movie's stored media locations into links
// a player or download manager can use. Media kept in Google Cloud Storage
// is private, so those links are time-limited V4 signed URLs. Media hosted
// elsewhere is handed out as is.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
)

// DefaultLinkLifetime applies when PlaybackService.Expiry is unset.
const DefaultLinkLifetime = 60 * time.Minute

// gcsPrefixes are the URL forms recognised as Cloud Storage objects.
var gcsPrefixes = []string{
	"gs://",
	"https://storage.googleapis.com/",
	"https://storage.mtls.cloud.google.com/",
}

// URLSigner produces signed GET URLs for Cloud Storage objects.
type URLSigner interface {
	SignURL(ctx context.Context, bucket string, object string, expires time.Time) (string, error)
}

// GCSURLSigner signs with the storage client. When SignerEmail is set the
// signature is produced by the IAM Credentials SignBlob API on behalf of that
// service account, which is how workloads without a private key sign on GCP.
type GCSURLSigner struct {
	StorageClient *storage.Client                   // Client for interacting with Google Cloud Storage.
	IAMClient     *credentials.IamCredentialsClient // Client for interacting with IAM, used for signing URLs.
	SignerEmail   string                            // The service account email used to sign URLs.
}

func (s *GCSURLSigner) SignURL(ctx context.Context, bucket string, object string, expires time.Time) (string, error) {
	opts := &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  http.MethodGet,
		Expires: expires,
	}
	if s.SignerEmail != "" && s.IAMClient != nil {
		opts.GoogleAccessID = s.SignerEmail
		opts.SignBytes = func(b []byte) ([]byte, error) {
			req := &credentialspb.SignBlobRequest{
				Name:    fmt.Sprintf("projects/-/serviceAccounts/%s", s.SignerEmail),
				Payload: b,
			}
			resp, err := s.IAMClient.SignBlob(ctx, req)
			if err != nil {
				return nil, fmt.Errorf("IAMClient.SignBlob: %w", err)
			}
			return resp.SignedBlob, nil
		}
	}
	u, err := s.StorageClient.Bucket(bucket).SignedURL(object, opts)
	if err != nil {
		return "", fmt.Errorf("Bucket(%q).SignedURL(%q): %w", bucket, object, err)
	}
	return u, nil
}

// PlaybackService hands out stream and download links.
type PlaybackService struct {
	Signer URLSigner
	Expiry time.Duration
	Now    func() time.Time
}

// StreamURL returns a link to the movie's video.
func (s *PlaybackService) StreamURL(ctx context.Context, movie *model.Movie) (*model.PlaybackLink, error) {
	return s.link(ctx, movie.VideoUrl)
}

// DownloadURL returns a link to the movie's download file, falling back to
// the video when no separate download exists.
func (s *PlaybackService) DownloadURL(ctx context.Context, movie *model.Movie) (*model.PlaybackLink, error) {
	if movie.DownloadUrl != nil && *movie.DownloadUrl != "" {
		return s.link(ctx, movie.DownloadUrl)
	}
	return s.link(ctx, movie.VideoUrl)
}

func (s *PlaybackService) link(ctx context.Context, location *string) (*model.PlaybackLink, error) {
	if location == nil || *location == "" {
		return nil, ErrNoAsset
	}
	bucket, object, ok := ParseGCSURL(*location)
	if !ok {
		return &model.PlaybackLink{Url: *location}, nil
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	expiry := s.Expiry
	if expiry <= 0 {
		expiry = DefaultLinkLifetime
	}
	expires := now().Add(expiry).UTC()
	u, err := s.Signer.SignURL(ctx, bucket, object, expires)
	if err != nil {
		return nil, err
	}
	return &model.PlaybackLink{Url: u, ExpiresAt: &expires}, nil
}

// ParseGCSURL splits a Cloud Storage location into bucket and object. It
// reports false for anything that is not a recognised storage URL or that
// lacks an object name.
func ParseGCSURL(location string) (bucket string, object string, ok bool) {
	for _, prefix := range gcsPrefixes {
		if !strings.HasPrefix(location, prefix) {
			continue
		}
		path := strings.TrimPrefix(location, prefix)
		if i := strings.IndexAny(path, "?#"); i >= 0 {
			path = path[:i]
		}
		parts := strings.SplitN(path, "/", 2)
		if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
			return "", "", false
		}
		return parts[0], parts[1], true
	}
	return "", "", false
}
