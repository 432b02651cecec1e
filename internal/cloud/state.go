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
package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

// ServiceClients holds every long-lived client the server shares between
// requests and background workflows. Postgres and Redis are only connected
// when the configuration asks for them.
type ServiceClients struct {
	StorageClient   *storage.Client                   // Client for Google Cloud Storage (GCS).
	PubsubClient    *pubsub.Client                    // Client for Google Cloud Pub/Sub.
	BigQueryClient  *bigquery.Client                  // Client for Google Cloud BigQuery.
	IAMClient       *credentials.IamCredentialsClient // Signs GCS URLs on behalf of a service account.
	PostgresPool    *pgxpool.Pool                     // Movie store pool, nil unless the driver is "postgres".
	RedisClient     *goredis.Client                   // Snapshot cache, nil unless caching is enabled.
	PubSubListeners map[string]*PubSubListener        // Listeners keyed by the logical name used in the config.
}

// Close releases every client that was opened.
func (c *ServiceClients) Close() {
	if c.PostgresPool != nil {
		c.PostgresPool.Close()
	}
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
	if c.BigQueryClient != nil {
		_ = c.BigQueryClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
}

// NewCloudServiceClients opens the clients required by config. On failure
// every client opened so far is closed again.
func NewCloudServiceClients(ctx context.Context, config *Config) (cloud *ServiceClients, err error) {
	clients := &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	defer func() {
		if err != nil {
			clients.Close()
		}
	}()

	slog.Info("connecting to Google Cloud",
		"project", config.Application.GoogleProjectId, "location", config.Application.GoogleLocation)

	if clients.StorageClient, err = storage.NewClient(ctx); err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	if clients.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	if clients.BigQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	if config.Application.SignerServiceAccountEmail != "" {
		if clients.IAMClient, err = credentials.NewIamCredentialsClient(ctx); err != nil {
			return nil, fmt.Errorf("iam credentials client: %w", err)
		}
	}

	if config.Store.Driver == DriverPostgres {
		if clients.PostgresPool, err = NewPostgresPool(ctx, config.Store); err != nil {
			return nil, err
		}
	}
	if config.Cache.Enabled {
		if clients.RedisClient, err = NewRedisClient(ctx, config.Cache); err != nil {
			return nil, err
		}
	}

	for subKey, values := range config.TopicSubscriptions {
		actual, err := NewPubSubListener(clients.PubsubClient, values.Name, nil)
		if err != nil {
			return nil, err
		}
		clients.PubSubListeners[subKey] = actual
	}
	return clients, nil
}

// NewPostgresPool opens and pings a pgx pool for the movie store.
func NewPostgresPool(ctx context.Context, store Store) (*pgxpool.Pool, error) {
	if store.PostgresUrl == "" {
		return nil, fmt.Errorf("store driver %q needs a postgres_url or %s", DriverPostgres, EnvDatabaseUrl)
	}
	cfg, err := pgxpool.ParseConfig(store.PostgresUrl)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if store.MaxConns > 0 {
		cfg.MaxConns = store.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// NewRedisClient connects to the snapshot cache.
func NewRedisClient(ctx context.Context, cache Cache) (*goredis.Client, error) {
	if cache.RedisUrl == "" {
		return nil, fmt.Errorf("cache is enabled but no redis_url or %s is set", EnvRedisUrl)
	}
	opt, err := goredis.ParseURL(cache.RedisUrl)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opt)
	if err = rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
