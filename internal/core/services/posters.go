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

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// MaxPosterBytes is the largest poster accepted (5 MiB).
const MaxPosterBytes = 5 * 1024 * 1024

// PosterFolder is the object prefix posters are written under.
const PosterFolder = "posters"

// ObjectStore reads, writes and checks for whole objects in a bucket.
type ObjectStore interface {
	Read(ctx context.Context, bucket string, object string) ([]byte, error)
	Write(ctx context.Context, bucket string, object string, contentType string, data []byte) error
	Exists(ctx context.Context, bucket string, object string) (bool, error)
}

// PosterService stores poster images and returns their public URL.
type PosterService struct {
	Objects ObjectStore
	Bucket  string
}

// Upload sniffs content, rejects anything that is not an image or is larger
// than MaxPosterBytes, and writes it under a fresh name.
//
// Inputs:
//   - ctx: request context.
//   - filename: the client's file name, only used for logging.
//   - content: the raw file.
//
// Outputs:
//   - string: the public URL of the stored poster.
//   - error: ErrNotAnImage, ErrPosterTooLarge or a storage failure.
func (s *PosterService) Upload(ctx context.Context, filename string, content []byte) (string, error) {
	if len(content) > MaxPosterBytes {
		return "", ErrPosterTooLarge
	}
	if !filetype.IsImage(content) {
		return "", ErrNotAnImage
	}
	kind, err := filetype.Match(content)
	if err != nil {
		return "", fmt.Errorf("failed to detect poster type: %w", err)
	}
	object := fmt.Sprintf("%s/poster_%s.%s", PosterFolder, uuid.NewString(), kind.Extension)
	if err = s.Objects.Write(ctx, s.Bucket, object, kind.MIME.Value, content); err != nil {
		return "", fmt.Errorf("failed to store poster %s: %w", filename, err)
	}
	slog.InfoContext(ctx, "poster stored", "file", filename, "object", object, "type", kind.MIME.Value)
	return PublicURL(s.Bucket, object), nil
}

// PublicURL is the browser-facing address of a Cloud Storage object.
func PublicURL(bucket string, object string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, object)
}
