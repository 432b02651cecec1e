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

package commands

import (
	"fmt"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
)

// BatchImport hands the decoded submissions to the uploader. Rejected records
// are part of the result, not a command failure; the message is acknowledged
// and the report explains them. Records are keyed by the source file version,
// so a redelivered notification imports nothing twice.
type BatchImport struct {
	cor.BaseCommand
	uploader *upload.Uploader
}

func NewBatchImport(name string, uploader *upload.Uploader) *BatchImport {
	return &BatchImport{BaseCommand: *cor.NewBaseCommand(name), uploader: uploader}
}

func (c *BatchImport) Execute(context cor.Context) {
	subs, ok := context.Get(c.GetInputParam()).([]upload.Submission)
	if !ok {
		c.Fail(context, fmt.Errorf("expected submissions under %q", c.GetInputParam()))
		return
	}
	source := ""
	if obj, ok := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject); ok {
		source = SourceKey(obj)
	}
	result := c.uploader.BulkImportFrom(context.GetContext(), source, subs)
	slog.InfoContext(context.GetContext(), "bulk import finished",
		"records", len(subs), "success", result.Success, "failed", result.Failed)
	c.Succeed(context, result)
}

// SourceKey names one version of an import file: bucket, object and
// generation. Uploading a new version of the file yields a new key.
func SourceKey(obj *cloud.GCSObject) string {
	return fmt.Sprintf("gs://%s/%s#%s", obj.Bucket, obj.Name, obj.Generation)
}
