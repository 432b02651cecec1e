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

// Package cloud contains data structures and utilities for interacting with Google Cloud services.
// This file covers Google Cloud Storage (GCS): the payload of a GCS Pub/Sub
// notification, a simplified internal representation of the object it names,
// and GCSObjectStore, which reads and writes whole objects.
//
// Structs:
//   - GCSPubSubNotification: Maps to the JSON payload from GCS event notifications.
//   - GCSObject: A simplified internal model for GCS objects used in processing workflows.
//   - GCSObjectStore: Whole-object reads, writes and existence checks against a storage client.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
)

// GetGCSObjectName returns the chain context key under which commands share
// the GCSObject being processed.
func GetGCSObjectName() string {
	return "__GCS__OBJ__"
}

// GCSPubSubNotification is the JSON message GCS publishes when an object in
// a watched bucket is finalized. Only the fields the workflows read are mapped.
type GCSPubSubNotification struct {
	Kind        string                 `json:"kind"`        // The kind of the object, typically "storage#object".
	ID          string                 `json:"id"`          // The full ID of the object, including bucket and generation.
	Name        string                 `json:"name"`        // The name of the object within the bucket.
	Bucket      string                 `json:"bucket"`      // The name of the bucket containing the object.
	Generation  string                 `json:"generation"`  // The generation number of the object's content.
	ContentType string                 `json:"contentType"` // The MIME type of the object's content.
	TimeCreated string                 `json:"timeCreated"` // The creation time of the object.
	Size        string                 `json:"size"`        // The size of the object in bytes, as a decimal string.
	MD5Hash     string                 `json:"md5Hash"`     // The MD5 hash of the object's content.
	MetaData    map[string]interface{} `json:"metadata"`    // User-provided metadata, if any.
}

// GCSObject is the lightweight view of a notified object passed between commands.
type GCSObject struct {
	Bucket     string // The name of the GCS bucket.
	Name       string // The name of the object.
	MIMEType   string // The MIME type of the object (e.g., "application/json").
	Size       int64  // Size in bytes, 0 when unknown.
	Generation string // The content generation, empty when unknown.
}

// GCSObjectStore reads and writes whole objects. MaxReadBytes bounds Read;
// zero means unbounded.
type GCSObjectStore struct {
	StorageClient *storage.Client
	MaxReadBytes  int64
}

// Read downloads an object into memory.
func (s *GCSObjectStore) Read(ctx context.Context, bucket string, object string) ([]byte, error) {
	reader, err := s.StorageClient.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	var src io.Reader = reader
	if s.MaxReadBytes > 0 {
		if reader.Attrs.Size > s.MaxReadBytes {
			return nil, fmt.Errorf("gs://%s/%s is %d bytes, limit is %d", bucket, object, reader.Attrs.Size, s.MaxReadBytes)
		}
		src = io.LimitReader(reader, s.MaxReadBytes)
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read gs://%s/%s: %w", bucket, object, err)
	}
	return data, nil
}

// Exists reports whether the object is present.
func (s *GCSObjectStore) Exists(ctx context.Context, bucket string, object string) (bool, error) {
	_, err := s.StorageClient.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat gs://%s/%s: %w", bucket, object, err)
	}
	return true, nil
}

// Write uploads data as a new object version.
func (s *GCSObjectStore) Write(ctx context.Context, bucket string, object string, contentType string, data []byte) error {
	writer := s.StorageClient.Bucket(bucket).Object(object).NewWriter(ctx)
	writer.ContentType = contentType
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write gs://%s/%s: %w", bucket, object, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize gs://%s/%s: %w", bucket, object, err)
	}
	return nil
}
