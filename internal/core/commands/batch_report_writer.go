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
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
)

// BatchReport is the document written next to every processed import file.
type BatchReport struct {
	Source      string    `json:"source"`
	ProcessedAt time.Time `json:"processed_at"`
	*model.BulkResult
}

// BatchReportWriter stores the import outcome as "<file>.report.json" in
// the report bucket and outputs the report's object name.
type BatchReportWriter struct {
	cor.BaseCommand
	objects services.ObjectStore
	bucket  string
}

func NewBatchReportWriter(name string, objects services.ObjectStore, bucket string) *BatchReportWriter {
	return &BatchReportWriter{BaseCommand: *cor.NewBaseCommand(name), objects: objects, bucket: bucket}
}

func (c *BatchReportWriter) Execute(context cor.Context) {
	result, ok := context.Get(c.GetInputParam()).(*model.BulkResult)
	if !ok {
		c.Fail(context, fmt.Errorf("expected a bulk result under %q", c.GetInputParam()))
		return
	}
	source, ok := context.Get(cloud.GetGCSObjectName()).(*cloud.GCSObject)
	if !ok {
		c.Fail(context, fmt.Errorf("no source object in context"))
		return
	}

	bucket := c.bucket
	if bucket == "" {
		bucket = source.Bucket
	}
	name := ReportName(source.Name)
	report := &BatchReport{
		Source:      fmt.Sprintf("gs://%s/%s", source.Bucket, source.Name),
		ProcessedAt: time.Now().UTC(),
		BulkResult:  result,
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		c.Fail(context, fmt.Errorf("failed to encode report: %w", err))
		return
	}
	if err = c.objects.Write(context.GetContext(), bucket, name, "application/json", data); err != nil {
		c.Fail(context, err)
		return
	}
	slog.InfoContext(context.GetContext(), "bulk import report written", "bucket", bucket, "name", name)
	c.Succeed(context, name)
}

// ReportName derives the report object name from an import file name.
func ReportName(source string) string {
	return strings.TrimSuffix(source, BatchFileSuffix) + BatchReportSuffix
}
