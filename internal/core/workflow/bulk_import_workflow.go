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
// Package workflow assembles commands into the background pipelines the
// server runs: the bulk import triggered by files dropped into the batch
// bucket, and the timer that keeps the catalog snapshot warm.
package workflow

import (
	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
)

// BulkImportWorkflow imports a JSON file of movies announced by a Cloud
// Storage notification.
//
// Logic Flow:
//  1. Parse the notification; anything but an import file ends the run.
//  2. End the run when the file already has a report.
//  3. Read the file from the bucket.
//  4. Decode it into submissions.
//  5. Import every record as approved, collecting per-record failures.
//  6. Write "<file>.report.json" to the report bucket.
//
// A broken notification, an unreadable file or a failed report write fails
// the run and the message is redelivered. Rejected records do not. Record ids
// are derived from the file version, so a redelivery imports nothing twice.
type BulkImportWorkflow struct {
	cor.BaseCommand
	objects      services.ObjectStore
	uploader     *upload.Uploader
	reportBucket string
	chain        cor.Chain
}

func (w *BulkImportWorkflow) Execute(context cor.Context) {
	w.chain.Execute(context)
}

func (w *BulkImportWorkflow) initializeChain() {
	out := cor.NewBaseChain(w.GetName())
	out.AddCommand(commands.NewBatchTriggerToGCSObject("batch-trigger-reader"))
	out.AddCommand(commands.NewBatchReportCheck("batch-report-check", w.objects, w.reportBucket))
	out.AddCommand(commands.NewGCSObjectReader("batch-file-reader", w.objects))
	out.AddCommand(commands.NewBatchFileToSubmissions("batch-file-decoder"))
	out.AddCommand(commands.NewBatchImport("batch-import", w.uploader))
	out.AddCommand(commands.NewBatchReportWriter("batch-report-writer", w.objects, w.reportBucket))
	w.chain = out
}

// NewBulkImportWorkflow builds the import pipeline. Reports go to the
// configured report bucket, or next to the import file when none is set.
func NewBulkImportWorkflow(
	config *cloud.Config,
	objects services.ObjectStore,
	uploader *upload.Uploader) *BulkImportWorkflow {

	out := &BulkImportWorkflow{
		BaseCommand:  *cor.NewBaseCommand("bulk-import-workflow"),
		objects:      objects,
		uploader:     uploader,
		reportBucket: config.Storage.ReportBucket,
	}
	out.initializeChain()
	return out
}
