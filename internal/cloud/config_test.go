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
package cloud_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	test "github.com/jaycherian/gcp-go-movie-storefront/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigOverlaysRuntimeFile(t *testing.T) {
	config := test.GetConfig()

	// Base file values survive.
	assert.Equal(t, "movie-storefront", config.Application.Name)
	assert.Equal(t, cloud.DriverPostgres, config.Store.Driver)
	assert.Equal(t, "user_analytics", config.BigQueryDataSource.AnalyticsTable)
	assert.Equal(t, []string{"admin", "moderator"}, config.Auth.AdminRoles)
	if assert.Contains(t, config.TopicSubscriptions, "BatchTopic") {
		assert.Equal(t, "movie_batch_imports_sub", config.TopicSubscriptions["BatchTopic"].Name)
	}

	// The test overlay wins.
	assert.Equal(t, "movie-storefront-test", config.Application.GoogleProjectId)
	assert.Equal(t, "movie_reports", config.Storage.ReportBucket)
	assert.Equal(t, "test-secret", config.Auth.JwtSecret)
	assert.Equal(t, 15*time.Minute, config.Storage.SignedUrlLifetime())
}

func TestNewConfigDefaults(t *testing.T) {
	config := cloud.NewConfig()
	assert.Equal(t, ":8080", config.Application.ListenAddress)
	assert.Equal(t, time.Hour, config.Storage.SignedUrlLifetime())
	assert.False(t, config.Cache.Enabled)
	assert.NotNil(t, config.TopicSubscriptions)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv(cloud.EnvDatabaseUrl, "postgres://prod/db")
	t.Setenv(cloud.EnvRedisUrl, "redis://cache:6379/1")
	t.Setenv(cloud.EnvJwtSecret, "")

	config := cloud.NewConfig()
	config.Auth.JwtSecret = "from-file"
	cloud.ApplyEnvOverrides(config)

	assert.Equal(t, "postgres://prod/db", config.Store.PostgresUrl)
	assert.Equal(t, "redis://cache:6379/1", config.Cache.RedisUrl)
	assert.Equal(t, "from-file", config.Auth.JwtSecret)
}

func TestGCSNotificationPayload(t *testing.T) {
	var n cloud.GCSPubSubNotification
	test.HandleErr(json.Unmarshal([]byte(test.GetTestBatchMessageText()), &n), t)
	assert.Equal(t, "movie_batch_imports", n.Bucket)
	assert.Equal(t, "catalog-2024-10.json", n.Name)
	assert.Equal(t, "application/json", n.ContentType)
	assert.Equal(t, "admin", n.MetaData["uploaded_by"])
}
