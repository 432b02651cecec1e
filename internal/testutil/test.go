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

// Package test holds the shared fixtures of the package tests: the test
// configuration, canned Pub/Sub payloads and in-memory stand-ins for every
// storage boundary.
package test

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
)

type StateManager struct {
	config *cloud.Config
}

var state = &StateManager{}

func HandleErr(err error, t *testing.T) {
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// GetTestBatchMessageText is the notification Cloud Storage publishes when a
// bulk import file lands in the batch bucket.
func GetTestBatchMessageText() string {
	return `{
  "kind": "storage#object",
  "id": "movie_batch_imports/catalog-2024-10.json/1728615848664286",
  "selfLink": "https://www.googleapis.com/storage/v1/b/movie_batch_imports/o/catalog-2024-10.json",
  "name": "catalog-2024-10.json",
  "bucket": "movie_batch_imports",
  "generation": "1728615848664286",
  "metageneration": "1",
  "contentType": "application/json",
  "timeCreated": "2024-10-11T03:04:08.672Z",
  "updated": "2024-10-11T03:04:08.672Z",
  "storageClass": "STANDARD",
  "size": "812",
  "md5Hash": "67c1rAU+1RYZzK5zp8iBkA==",
  "metadata": { "uploaded_by": "admin" },
  "etag": "CN658+yrhYkDEAE="
}`
}

// GetTestBatchFile is a three record import whose second record lacks a genre.
func GetTestBatchFile() string {
	return `[
  {"title": "The Matrix", "genre": "Sci-Fi", "release_year": 1999, "duration": 136, "rating": 8.7,
   "cast": ["Keanu Reeves", "Laurence Fishburne"], "featured": true},
  {"title": "Nameless Genre", "release_year": 2001},
  {"title": "Inception", "genre": "Sci-Fi", "release_year": 2010, "rating": 8.8, "popular": true}
]`
}

// SetupOS points the configuration loader at the repository's configs
// directory with the "test" runtime overlay.
func SetupOS() (err error) {
	err = os.Setenv(cloud.EnvConfigFilePrefix, findConfigDir())
	if err != nil {
		return err
	}
	err = os.Setenv(cloud.EnvConfigRuntime, "test")
	return err
}

// GetConfig loads the test configuration once per test binary.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		cloud.ApplyEnvOverrides(config)
		state.config = config
	}
	return state.config
}

// findConfigDir walks up from the working directory to the module root.
func findConfigDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "configs"
	}
	for {
		if _, err = os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "configs")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "configs"
		}
		dir = parent
	}
}
