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

// Package main contains the setup and initialization logic for the application's state.
// This file is responsible for creating and managing a centralized state manager
// that holds all shared dependencies: configuration, Google Cloud service clients,
// the movie store and the HTTP server's services.
//
// Functions:
//   - SetupOS: Points the configuration loader at the configs directory.
//   - GetConfig: A singleton function that loads the application's configuration
//     from TOML files and the environment.
//   - InitState: Creates all service clients and wires the storefront services.
//   - NewMovieRepository: Selects the movie store named by the configuration.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/api"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/services"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/upload"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/core/workflow"
	"github.com/jaycherian/gcp-go-movie-storefront/internal/middleware"
)

// StateManager holds all the shared dependencies for the application.
type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	server    *api.Server
	objects   *cloud.GCSObjectStore
	uploader  *upload.Uploader
	limiter   *middleware.IPRateLimiter
	refresher *workflow.CatalogRefreshWorkflow // nil unless the snapshot cache is enabled.
}

var state = &StateManager{}

// SetupOS sets the environment variables the configuration loader uses to
// find the TOML files. An explicit runtime in the environment wins.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig loads the configuration once and returns the cached copy afterwards.
func GetConfig() *cloud.Config {
	if state.config == nil {
		err := SetupOS()
		if err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(config)
		cloud.ApplyEnvOverrides(config)
		state.config = config
	}
	return state.config
}

// InitState initializes the entire application state.
//
// This function performs the following steps:
//  1. Initializes the Google Cloud, Postgres and Redis clients.
//  2. Selects the movie store and wraps it in the snapshot cache when enabled.
//  3. Instantiates the storefront services and the HTTP server around them.
func InitState(ctx context.Context) error {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		return err
	}
	state.cloud = cloudClients

	repo, err := NewMovieRepository(config, cloudClients)
	if err != nil {
		cloudClients.Close()
		return err
	}
	if cloudClients.RedisClient != nil {
		cached := services.NewCachedMovieRepository(repo,
			services.NewRedisSnapshotStore(cloudClients.RedisClient),
			time.Duration(config.Cache.TTLSeconds)*time.Second)
		state.refresher = workflow.NewCatalogRefreshWorkflow(cached,
			time.Duration(config.Cache.RefreshIntervalSeconds)*time.Second)
		repo = cached
	}

	state.objects = &cloud.GCSObjectStore{
		StorageClient: cloudClients.StorageClient,
		MaxReadBytes:  config.Storage.MaxBatchFileBytes,
	}
	state.uploader = upload.NewUploader(repo)
	state.limiter = middleware.NewIPRateLimiter(config.RateLimit)

	state.server = &api.Server{
		Repository: repo,
		Catalog:    services.NewCatalogService(repo),
		Uploader:   state.uploader,
		Moderation: services.NewModerationService(repo),
		Analytics: services.NewAnalyticsService(&services.BigQueryEventStore{
			BigqueryClient: cloudClients.BigQueryClient,
			DatasetName:    config.BigQueryDataSource.DatasetName,
			EventTable:     config.BigQueryDataSource.AnalyticsTable,
		}),
		Playback: &services.PlaybackService{
			Signer: &services.GCSURLSigner{
				StorageClient: cloudClients.StorageClient,
				IAMClient:     cloudClients.IAMClient,
				SignerEmail:   config.Application.SignerServiceAccountEmail,
			},
			Expiry: config.Storage.SignedUrlLifetime(),
		},
		Posters:    &services.PosterService{Objects: state.objects, Bucket: config.Storage.PosterBucket},
		Auth:       middleware.NewAuthenticator(config.Auth),
		AdminRoles: config.Auth.AdminRoles,
	}
	return nil
}

// NewMovieRepository returns the store selected by config.Store.Driver.
func NewMovieRepository(config *cloud.Config, clients *cloud.ServiceClients) (services.MovieRepository, error) {
	switch config.Store.Driver {
	case cloud.DriverPostgres:
		return services.NewPostgresMovieRepository(clients.PostgresPool), nil
	case cloud.DriverBigQuery:
		return &services.BigQueryMovieRepository{
			BigqueryClient: clients.BigQueryClient,
			DatasetName:    config.BigQueryDataSource.DatasetName,
			MovieTable:     config.BigQueryDataSource.MovieTable,
			ApprovalTable:  config.BigQueryDataSource.ApprovalTable,
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", config.Store.Driver)
}
