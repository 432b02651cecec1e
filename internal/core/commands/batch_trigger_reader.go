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

// Package commands contains the individual cor.Command steps the background
// workflows are assembled from. This file holds the first step of a bulk
// import: turning the Cloud Storage notification into a GCSObject.
package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
)

// Object name suffixes recognised by the import pipeline.
const (
	BatchFileSuffix   = ".json"
	BatchReportSuffix = ".report.json"
)

// BatchTriggerToGCSObject parses an OBJECT_FINALIZE notification. Objects that
// are not import files, including the reports the pipeline itself writes,
// produce no output, so the remaining commands are skipped and the message
// is acknowledged.
type BatchTriggerToGCSObject struct {
	cor.BaseCommand
}

func NewBatchTriggerToGCSObject(name string) *BatchTriggerToGCSObject {
	return &BatchTriggerToGCSObject{BaseCommand: *cor.NewBaseCommand(name)}
}

func (c *BatchTriggerToGCSObject) Execute(context cor.Context) {
	in, ok := context.Get(c.GetInputParam()).(string)
	if !ok {
		c.Fail(context, fmt.Errorf("expected a notification string under %q", c.GetInputParam()))
		return
	}

	var out cloud.GCSPubSubNotification
	if err := json.Unmarshal([]byte(in), &out); err != nil {
		c.Fail(context, fmt.Errorf("failed to unmarshal GCS notification: %w", err))
		return
	}

	if !IsBatchFile(out.Name) {
		slog.InfoContext(context.GetContext(), "ignoring object", "bucket", out.Bucket, "name", out.Name)
		return
	}

	msg := &cloud.GCSObject{Bucket: out.Bucket, Name: out.Name, MIMEType: out.ContentType, Generation: out.Generation}
	context.Add(cloud.GetGCSObjectName(), msg)
	c.Succeed(context, msg)
}

// IsBatchFile reports whether an object name is an import file.
func IsBatchFile(name string) bool {
	return strings.HasSuffix(name, BatchFileSuffix) && !strings.HasSuffix(name, BatchReportSuffix)
}
