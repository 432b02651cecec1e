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
package workflow_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/workflow"
	test "github.com/jaycherian/gcp-go-movie-storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func run(command cor.Command, input string) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, input)
	command.Execute(ctx)
	return ctx
}

func TestBulkImportWorkflow(t *testing.T) {
	config := cloud.NewConfig()
	config.Storage.ReportBucket = "movie_reports"
	objects := test.NewMemoryObjectStore()
	objects.Put("movie_batch_imports", "catalog-2024-10.json", []byte(test.GetTestBatchFile()))
	repo := test.NewMemoryRepository()

	wf := workflow.NewBulkImportWorkflow(config, objects, upload.NewUploader(repo))
	ctx := run(wf, test.GetTestBatchMessageText())

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, 2, repo.Len())

	stored, ok := objects.Objects["movie_reports/catalog-2024-10.report.json"]
	assert.True(t, ok)
	var report commands.BatchReport
	assert.NoError(t, json.Unmarshal(stored.Data, &report))
	assert.Equal(t, 2, report.Success)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Errors[0], "Movie 2 (Nameless Genre): Genre is required and must be a string")
}

func TestBulkImportWorkflowSkipsReports(t *testing.T) {
	objects := test.NewMemoryObjectStore()
	repo := test.NewMemoryRepository()
	wf := workflow.NewBulkImportWorkflow(cloud.NewConfig(), objects, upload.NewUploader(repo))

	ctx := run(wf, `{"bucket": "movie_reports", "name": "catalog.report.json"}`)
	assert.False(t, ctx.HasErrors())
	assert.Empty(t, objects.Objects)
	assert.Equal(t, 0, repo.Len())
}

func TestBulkImportWorkflowMissingFile(t *testing.T) {
	repo := test.NewMemoryRepository()
	wf := workflow.NewBulkImportWorkflow(cloud.NewConfig(), test.NewMemoryObjectStore(), upload.NewUploader(repo))

	ctx := run(wf, test.GetTestBatchMessageText())
	assert.True(t, ctx.HasErrors())
	assert.Contains(t, ctx.GetErrors(), "batch-file-reader")
	assert.Equal(t, 0, repo.Len())
}

func TestBulkImportWorkflowRedelivery(t *testing.T) {
	config := cloud.NewConfig()
	config.Storage.ReportBucket = "movie_reports"
	objects := test.NewMemoryObjectStore()
	objects.Put("movie_batch_imports", "catalog-2024-10.json", []byte(test.GetTestBatchFile()))
	repo := test.NewMemoryRepository()
	wf := workflow.NewBulkImportWorkflow(config, objects, upload.NewUploader(repo))

	// The report cannot be written, so the message is nacked and comes back.
	objects.WriteErr = errors.New("bucket unavailable")
	for i := 0; i < 2; i++ {
		ctx := run(wf, test.GetTestBatchMessageText())
		assert.Contains(t, ctx.GetErrors(), "batch-report-writer")
		assert.Equal(t, 2, repo.Len())
	}

	objects.WriteErr = nil
	ctx := run(wf, test.GetTestBatchMessageText())
	assert.False(t, ctx.HasErrors())
	assert.Equal(t, 2, repo.Len())
	var report commands.BatchReport
	assert.NoError(t, json.Unmarshal(objects.Objects["movie_reports/catalog-2024-10.report.json"].Data, &report))
	assert.Equal(t, 2, report.Success)
	assert.Equal(t, 1, report.Failed)

	// A late duplicate after the report exists is acknowledged untouched.
	before := objects.Objects["movie_reports/catalog-2024-10.report.json"]
	ctx = run(wf, test.GetTestBatchMessageText())
	assert.False(t, ctx.HasErrors())
	assert.Equal(t, 2, repo.Len())
	assert.Equal(t, before, objects.Objects["movie_reports/catalog-2024-10.report.json"])
}

type failingRefresher struct{}

func (failingRefresher) Refresh(context.Context) ([]*model.Movie, error) {
	return nil, errors.New("store offline")
}

func TestCatalogRefreshWorkflow(t *testing.T) {
	ctx := context.Background()
	m := model.NewMovie()
	m.Title = "Heat"
	repo := test.NewMemoryRepository(m)
	snapshots := test.NewMemorySnapshotStore()
	cached := services.NewCachedMovieRepository(repo, snapshots, time.Minute)

	wf := workflow.NewCatalogRefreshWorkflow(cached, time.Minute)
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	assert.True(t, wf.IsExecutable(chainCtx))
	wf.Execute(chainCtx)

	assert.False(t, chainCtx.HasErrors())
	assert.Equal(t, 1, chainCtx.Get(cor.CtxOut))
	assert.True(t, snapshots.Has(services.SnapshotKey))

	failed := workflow.NewCatalogRefreshWorkflow(failingRefresher{}, time.Minute)
	chainCtx = cor.NewBaseContext()
	chainCtx.SetContext(ctx)
	failed.Execute(chainCtx)
	assert.EqualError(t, chainCtx.GetErrors()["catalog-refresh-workflow"], "store offline")
}

func TestCatalogRefreshTimer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo := test.NewMemoryRepository()
	snapshots := test.NewMemorySnapshotStore()
	cached := services.NewCachedMovieRepository(repo, snapshots, 0)

	workflow.NewCatalogRefreshWorkflow(cached, 10*time.Millisecond).StartTimer(ctx)
	assert.Eventually(t, func() bool { return snapshots.Has(services.SnapshotKey) }, time.Second, 5*time.Millisecond)
}
