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
package commands_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/commands"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/cor"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/model"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
	test "github.com/jaycherian/gcp-go-movie-storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func newContext(input interface{}) cor.Context {
	ctx := cor.NewBaseContext()
	ctx.SetContext(context.Background())
	ctx.Add(cor.CtxIn, input)
	return ctx
}

func TestBatchTriggerReader(t *testing.T) {
	ctx := newContext(test.GetTestBatchMessageText())
	commands.NewBatchTriggerToGCSObject("trigger").Execute(ctx)

	assert.False(t, ctx.HasErrors())
	obj := ctx.Get(cor.CtxOut).(*cloud.GCSObject)
	assert.Equal(t, "movie_batch_imports", obj.Bucket)
	assert.Equal(t, "catalog-2024-10.json", obj.Name)
	assert.Equal(t, "application/json", obj.MIMEType)
	assert.Equal(t, "1728615848664286", obj.Generation)
	assert.Same(t, obj, ctx.Get(cloud.GetGCSObjectName()))
}

func TestBatchTriggerReaderIgnoresReports(t *testing.T) {
	for _, name := range []string{"catalog.report.json", "poster.png"} {
		msg, _ := json.Marshal(map[string]string{"bucket": "b", "name": name})
		ctx := newContext(string(msg))
		commands.NewBatchTriggerToGCSObject("trigger").Execute(ctx)

		assert.False(t, ctx.HasErrors(), name)
		assert.Nil(t, ctx.Get(cor.CtxOut), name)
	}
}

func TestBatchTriggerReaderBadMessage(t *testing.T) {
	ctx := newContext("{not json")
	commands.NewBatchTriggerToGCSObject("trigger").Execute(ctx)
	assert.ErrorContains(t, ctx.GetErrors()["trigger"], "failed to unmarshal GCS notification")
}

func TestIsBatchFile(t *testing.T) {
	assert.True(t, commands.IsBatchFile("imports/2024.json"))
	assert.False(t, commands.IsBatchFile("imports/2024.report.json"))
	assert.False(t, commands.IsBatchFile("imports/2024.csv"))
	assert.Equal(t, "imports/2024.report.json", commands.ReportName("imports/2024.json"))
}

func TestGCSObjectReader(t *testing.T) {
	objects := test.NewMemoryObjectStore()
	objects.Put("b", "f.json", []byte("[]"))

	ctx := newContext(&cloud.GCSObject{Bucket: "b", Name: "f.json"})
	commands.NewGCSObjectReader("reader", objects).Execute(ctx)
	assert.Equal(t, []byte("[]"), ctx.Get(cor.CtxOut))

	ctx = newContext(&cloud.GCSObject{Bucket: "b", Name: "missing.json"})
	commands.NewGCSObjectReader("reader", objects).Execute(ctx)
	assert.True(t, ctx.HasErrors())
}

func TestDecodeBatchFile(t *testing.T) {
	subs, err := upload.DecodeSubmissions([]byte(test.GetTestBatchFile()))
	assert.NoError(t, err)
	assert.Len(t, subs, 3)
	assert.Equal(t, json.Number("1999"), subs[0]["release_year"])

	_, err = upload.DecodeSubmissions([]byte(`{"title": "not a list"}`))
	assert.Error(t, err)

	subs, err = upload.DecodeSubmissions([]byte("[]"))
	assert.NoError(t, err)
	assert.Empty(t, subs)
}

func TestBatchImportCommand(t *testing.T) {
	repo := test.NewMemoryRepository()
	subs, _ := upload.DecodeSubmissions([]byte(test.GetTestBatchFile()))

	ctx := newContext(subs)
	commands.NewBatchImport("import", upload.NewUploader(repo)).Execute(ctx)

	result := ctx.Get(cor.CtxOut).(*model.BulkResult)
	assert.Equal(t, 2, result.Success)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, repo.Len())
}

func TestBatchReportWriter(t *testing.T) {
	objects := test.NewMemoryObjectStore()
	result := &model.BulkResult{Success: 1, Failed: 1, Errors: []string{"Movie 2 (X): bad"}, Ids: []string{"a"}}

	ctx := newContext(result)
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: "in", Name: "batch.json"})
	commands.NewBatchReportWriter("report", objects, "reports").Execute(ctx)

	assert.False(t, ctx.HasErrors())
	assert.Equal(t, "batch.report.json", ctx.Get(cor.CtxOut))
	stored := objects.Objects["reports/batch.report.json"]
	assert.Equal(t, "application/json", stored.ContentType)

	var report map[string]any
	assert.NoError(t, json.Unmarshal(stored.Data, &report))
	assert.Equal(t, "gs://in/batch.json", report["source"])
	assert.Equal(t, 1.0, report["success"])
	assert.Equal(t, []any{"Movie 2 (X): bad"}, report["errors"])
}

func TestBatchReportWriterFallsBackToSourceBucket(t *testing.T) {
	objects := test.NewMemoryObjectStore()
	ctx := newContext(&model.BulkResult{})
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: "in", Name: "batch.json"})
	commands.NewBatchReportWriter("report", objects, "").Execute(ctx)
	assert.Contains(t, objects.Objects, "in/batch.report.json")

	objects.WriteErr = errors.New("denied")
	ctx = newContext(&model.BulkResult{})
	ctx.Add(cloud.GetGCSObjectName(), &cloud.GCSObject{Bucket: "in", Name: "batch.json"})
	commands.NewBatchReportWriter("report", objects, "").Execute(ctx)
	assert.EqualError(t, ctx.GetErrors()["report"], "denied")
}

func TestBatchReportCheck(t *testing.T) {
	objects := test.NewMemoryObjectStore()
	obj := &cloud.GCSObject{Bucket: "in", Name: "batch.json"}
	check := commands.NewBatchReportCheck("check", objects, "reports")

	ctx := newContext(obj)
	check.Execute(ctx)
	assert.False(t, ctx.HasErrors())
	assert.Same(t, obj, ctx.Get(cor.CtxOut))

	objects.Put("reports", "batch.report.json", []byte("{}"))
	ctx = newContext(obj)
	check.Execute(ctx)
	assert.False(t, ctx.HasErrors())
	assert.Nil(t, ctx.Get(cor.CtxOut))

	objects.ReadErr = errors.New("denied")
	ctx = newContext(obj)
	check.Execute(ctx)
	assert.EqualError(t, ctx.GetErrors()["check"], "denied")
}

func TestBatchImportCommandKeysRecordsBySource(t *testing.T) {
	repo := test.NewMemoryRepository()
	subs, _ := upload.DecodeSubmissions([]byte(test.GetTestBatchFile()))
	obj := &cloud.GCSObject{Bucket: "in", Name: "batch.json", Generation: "7"}
	assert.Equal(t, "gs://in/batch.json#7", commands.SourceKey(obj))

	for i := 0; i < 2; i++ {
		ctx := newContext(subs)
		ctx.Add(cloud.GetGCSObjectName(), obj)
		commands.NewBatchImport("import", upload.NewUploader(repo)).Execute(ctx)
		assert.False(t, ctx.HasErrors())
	}
	assert.Equal(t, 2, repo.Len())
	m, _ := repo.GetMovie(context.Background(), upload.RecordId("gs://in/batch.json#7", 1))
	assert.Equal(t, "The Matrix", m.Title)
}
