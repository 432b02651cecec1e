// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main contains the logic for setting up and starting the Pub/Sub message listeners.
//
// Functions:
//   - SetupListeners: Attaches the bulk import workflow to the batch topic
//     listener and starts it.
package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/workflow"
)

// BatchTopic is the subscription key, under [topic_subscriptions], of the
// notifications for the bulk import bucket.
const BatchTopic = "BatchTopic"

// SetupListeners starts the background Pub/Sub listeners. Every movie file
// finalized in the batch bucket is imported and a report is written next to
// it. Receiving stops when ctx is canceled.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients) {
	listener, ok := cloudClients.PubSubListeners[BatchTopic]
	if !ok {
		slog.Warn("no bulk import subscription configured", "key", BatchTopic)
		return
	}
	bulkImport := workflow.NewBulkImportWorkflow(config, state.objects, state.uploader)
	listener.SetCommand(bulkImport)
	listener.Listen(ctx)
}
