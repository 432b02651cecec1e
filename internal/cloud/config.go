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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the storefront's components: the HTTP server, the movie store, Google
// Cloud services, the catalog cache, authentication and Pub/Sub topics.
//
// Structs:
//   - Store: Which movie store backs the catalog and how to reach Postgres.
//   - BigQueryDataSource: Configuration for the BigQuery dataset and tables.
//   - Storage: Configuration for Google Cloud Storage buckets.
//   - Cache: Configuration for the Redis catalog snapshot.
//   - Auth: Verification settings for admin bearer tokens.
//   - RateLimit: Per-client request budget.
//   - Telemetry: Logging and OpenTelemetry switches.
//   - TopicSubscription: Configuration for a single Pub/Sub topic subscription.
//   - Config: The top-level struct that aggregates all other configuration structs.
package cloud

import "time"

// Store driver names.
const (
	DriverPostgres = "postgres"
	DriverBigQuery = "bigquery"
)

// Store selects the movie repository implementation.
type Store struct {
	Driver      string `toml:"driver"`       // "postgres" or "bigquery".
	PostgresUrl string `toml:"postgres_url"` // Connection string, overridden by DATABASE_URL.
	MaxConns    int32  `toml:"max_conns"`    // Upper bound of the Postgres pool; 0 keeps the pgx default.
}

// BigQueryDataSource represents the configuration for a BigQuery data source.
type BigQueryDataSource struct {
	DatasetName    string `toml:"dataset"`         // The name of the BigQuery dataset.
	MovieTable     string `toml:"movie_table"`     // Movies, used when the store driver is "bigquery".
	ApprovalTable  string `toml:"approval_table"`  // Content approvals, used with the "bigquery" driver.
	AnalyticsTable string `toml:"analytics_table"` // Append-only viewer events, used with every driver.
}

// TopicSubscription represents the configuration for a Pub/Sub topic subscription.
type TopicSubscription struct {
	Name             string `toml:"name"`               // The name of the Pub/Sub subscription.
	DeadLetterTopic  string `toml:"dead_letter_topic"`  // The name of the dead-letter topic for the subscription.
	TimeoutInSeconds int    `toml:"timeout_in_seconds"` // The timeout for the subscription in seconds.
}

// Storage represents the configuration for storage buckets.
type Storage struct {
	PosterBucket      string `toml:"poster_bucket"`       // Public bucket poster images are written to.
	BatchInputBucket  string `toml:"batch_input_bucket"`  // Bucket administrators drop bulk import files into.
	ReportBucket      string `toml:"report_bucket"`       // Bucket bulk import reports are written to.
	SignedUrlMinutes  int    `toml:"signed_url_minutes"`  // Lifetime of stream and download links.
	MaxBatchFileBytes int64  `toml:"max_batch_file_bytes"` // Largest bulk import file read from the bucket.
}

// SignedUrlLifetime returns the configured link lifetime.
func (s Storage) SignedUrlLifetime() time.Duration {
	return time.Duration(s.SignedUrlMinutes) * time.Minute
}

// Cache configures the Redis snapshot placed in front of the movie store.
type Cache struct {
	Enabled                bool   `toml:"enabled"`                  // Whether reads go through the snapshot.
	RedisUrl               string `toml:"redis_url"`                // redis:// URL, overridden by REDIS_URL.
	TTLSeconds             int    `toml:"ttl_seconds"`              // Snapshot lifetime; 0 keeps it until the next write.
	RefreshIntervalSeconds int    `toml:"refresh_interval_seconds"` // How often the warmer rebuilds the snapshot; 0 disables it.
}

// Auth configures verification of admin bearer tokens.
type Auth struct {
	JwtSecret  string   `toml:"jwt_secret"`  // HS256 key, overridden by AUTH_JWT_SECRET.
	Issuer     string   `toml:"issuer"`      // Expected "iss" claim; empty accepts any issuer.
	AdminRoles []string `toml:"admin_roles"` // Roles allowed on admin routes.
}

// RateLimit configures the per-client request budget.
type RateLimit struct {
	RequestsPerMinute int `toml:"requests_per_minute"` // Sustained rate; 0 disables limiting.
	Burst             int `toml:"burst"`               // Requests allowed above the sustained rate.
}

// Telemetry switches the observability exporters.
type Telemetry struct {
	Enabled  bool   `toml:"enabled"`   // Export traces and metrics to Google Cloud.
	LogFile  string `toml:"log_file"`  // Optional file the JSON log is mirrored to.
	LogLevel string `toml:"log_level"` // debug, info, warn or error.
}

// Config represents the overall configuration for the application, loaded from TOML files.
// It acts as the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name                      string   `toml:"name"`                         // The name of the application.
		GoogleProjectId           string   `toml:"google_project_id"`            // The Google Cloud project ID.
		GoogleLocation            string   `toml:"location"`                     // The Google Cloud location.
		ListenAddress             string   `toml:"listen_address"`               // host:port the HTTP server binds.
		AllowedOrigins            []string `toml:"allowed_origins"`              // CORS origins.
		SignerServiceAccountEmail string   `toml:"signer_service_account_email"` // The service account email used for signing GCS URLs.
	} `toml:"application"`
	Store              Store                        `toml:"store"`                 // Movie store selection.
	Storage            Storage                      `toml:"storage"`               // Storage configuration.
	BigQueryDataSource BigQueryDataSource           `toml:"big_query_data_source"` // BigQuery data source configuration.
	Cache              Cache                        `toml:"cache"`                 // Catalog snapshot cache.
	Auth               Auth                         `toml:"auth"`                  // Admin token verification.
	RateLimit          RateLimit                    `toml:"rate_limit"`            // Per-client request budget.
	Telemetry          Telemetry                    `toml:"telemetry"`             // Logging and exporters.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"`   // Pub/Sub subscriptions keyed by a logical name (e.g., "BatchTopic").
}

// NewConfig returns a Config holding the defaults every file overlays.
// The subscription map is initialized so the loader can populate it.
func NewConfig() *Config {
	c := &Config{
		Store:              Store{Driver: DriverPostgres},
		Storage:            Storage{SignedUrlMinutes: 60, MaxBatchFileBytes: 10 << 20},
		Cache:              Cache{TTLSeconds: 300, RefreshIntervalSeconds: 120},
		Auth:               Auth{AdminRoles: []string{"admin", "moderator"}},
		RateLimit:          RateLimit{RequestsPerMinute: 600, Burst: 60},
		Telemetry:          Telemetry{LogLevel: "info"},
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
	c.Application.Name = "movie-storefront"
	c.Application.ListenAddress = ":8080"
	c.Application.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	return c
}
