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
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
)

// BatchReportCheck passes an import file on only while it has no report. A
// file that already has one was imported by an earlier delivery of the same
// notification, so the command produces no output and the message is
// acknowledged without touching the catalog again.
type BatchReportCheck struct {
	cor.BaseCommand
	objects services.ObjectStore
	bucket  string
}

func NewBatchReportCheck(name string, objects services.ObjectStore, bucket string) *BatchReportCheck {
	return &BatchReportCheck{BaseCommand: *cor.NewBaseCommand(name), objects: objects, bucket: bucket}
}

func (c *BatchReportCheck) Execute(context cor.Context) {
	obj, ok := context.Get(c.GetInputParam()).(*cloud.GCSObject)
	if !ok {
		c.Fail(context, fmt.Errorf("expected a GCS object under %q", c.GetInputParam()))
		return
	}
	bucket := c.bucket
	if bucket == "" {
		bucket = obj.Bucket
	}
	name := ReportName(obj.Name)
	done, err := c.objects.Exists(context.GetContext(), bucket, name)
	if err != nil {
		c.Fail(context, err)
		return
	}
	if done {
		slog.InfoContext(context.GetContext(), "import file already processed",
			"bucket", obj.Bucket, "name", obj.Name, "report", name)
		return
	}
	c.Succeed(context, obj)
}
