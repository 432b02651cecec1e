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
// *****************************************************************************************************//
// Package main is the entry point for the movie storefront backend server.
//
// This application sets up and runs a web server using the Gin framework. It provides a REST API
// for browsing and searching the movie catalog, streaming and downloading movies, and an admin
// surface for uploading, moderating and reporting on the catalog. The server is instrumented with
// OpenTelemetry for logging, tracing, and metrics.
//
// The main function initializes the application's configuration, sets up logging and telemetry,
// and initializes the application state, including clients for Google Cloud services, Postgres
// and Redis. The server also starts the Pub/Sub listener that imports bulk movie files dropped
// into Cloud Storage, and the timer that keeps the catalog snapshot warm.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jaycherian/gcp-go-movie-storefront/internal/telemetry"
)

// main orchestrates the setup of logging, telemetry, configuration, cloud services,
// the web server, API routes, and background workers. It also handles graceful
// shutdown of the server upon receiving an interrupt signal.
func main() {
	// Load application configuration from TOML files and the environment.
	config := GetConfig()

	// Initialize structured logging for the application.
	closeLog, err := telemetry.SetupLogging(config.Telemetry)
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer func() { _ = closeLog() }()
	slog.Info("logging initialized", "level", config.Telemetry.LogLevel)

	// Root context for the application; canceling it stops every background worker.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry for distributed tracing and metrics.
	shutdownTelemetry, err := telemetry.SetupOpenTelemetry(ctx, config)
	if err != nil {
		slog.Error("failed to setup OpenTelemetry", "error", err)
		log.Fatal(err)
	}
	slog.Info("tracing initialized", "exporting", config.Telemetry.Enabled)

	// Initialize the application's state, including all service clients and services.
	if err = InitState(ctx); err != nil {
		slog.Error("failed to initialize state", "error", err)
		log.Fatal(err)
	}
	defer state.cloud.Close()
	slog.Info("initialized state", "store", config.Store.Driver, "cache", config.Cache.Enabled)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Creates a span for every request.
	r.Use(otelgin.Middleware(config.Application.Name))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.Application.AllowedOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	if state.limiter != nil {
		r.Use(state.limiter.Handler())
		state.limiter.StartCleanup(ctx)
	}

	Health(r)
	apiV1 := r.Group("/api/v1")
	{
		state.server.Register(apiV1)
	}

	// Background workers: the snapshot warmer and the bulk import listener.
	if state.refresher != nil {
		state.refresher.StartTimer(ctx)
	}
	SetupListeners(ctx, state.config, state.cloud)

	srv := &http.Server{
		Addr:         config.Application.ListenAddress,
		Handler:      r,
		ReadTimeout:  20 * time.Second,
		WriteTimeout: 20 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen", "error", err)
			cancel()
		}
	}()
	slog.Info("server ready", "address", config.Application.ListenAddress)

	// Block until an interrupt or a listen failure.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	// Give active requests 5 seconds to complete.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	cancel()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		slog.Error("telemetry shutdown failed", "error", err)
	}

	slog.Info("server exiting")
}
