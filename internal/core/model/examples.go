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

// Package model defines the core data structures for the storefront.
// This file, `examples.go`, provides canned data: the bulk upload template
// handed to administrators and the fixed list of download qualities.
package model

// GetBulkUploadTemplate returns the example batch administrators download
// before preparing a bulk upload. The shape matches what the bulk importer
// accepts, so the template itself is a valid batch.
func GetBulkUploadTemplate() []map[string]any {
	return []map[string]any{
		{
			"title":        "Example Movie 1",
			"description":  "This is an example movie description",
			"genre":        "Action",
			"director":     "John Director",
			"cast":         []string{"Actor 1", "Actor 2", "Actor 3"},
			"release_year": 2024,
			"duration":     120,
			"poster_url":   "https://example.com/poster1.jpg",
			"trailer_url":  "https://example.com/trailer1.mp4",
			"video_url":    "https://example.com/movie1.mp4",
			"download_url": "https://example.com/download1.mp4",
		},
		{
			"title":        "Example Movie 2",
			"description":  "Another example movie",
			"genre":        "Comedy",
			"director":     "Jane Director",
			"cast":         []string{"Actor 4", "Actor 5"},
			"release_year": 2023,
			"duration":     95,
			"poster_url":   "https://example.com/poster2.jpg",
			"trailer_url":  "https://example.com/trailer2.mp4",
			"video_url":    "https://example.com/movie2.mp4",
			"download_url": "https://example.com/download2.mp4",
		},
	}
}

// GetDownloadOptions returns the qualities offered in the download dialog.
func GetDownloadOptions() []DownloadOption {
	return []DownloadOption{
		{Quality: "4K Ultra HD", Size: "8.5 GB", Format: "MP4", Description: "Best quality for large screens"},
		{Quality: "Full HD 1080p", Size: "3.2 GB", Format: "MP4", Description: "Perfect balance of quality and size", Recommended: true},
		{Quality: "HD 720p", Size: "1.8 GB", Format: "MP4", Description: "Good quality, smaller file size"},
		{Quality: "SD 480p", Size: "850 MB", Format: "MP4", Description: "Compact size for mobile devices"},
	}
}
